package agents

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lexcodex/remedy/framework"
)

const configDirName = "remedy_cfg"

// ConfigDir returns the workspace-local configuration directory.
func ConfigDir(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, configDirName)
}

// DefaultConfigPath returns remedy_cfg/config.yaml within the workspace.
func DefaultConfigPath(workspace string) string {
	return filepath.Join(ConfigDir(workspace), "config.yaml")
}

// PipelineConfig matches remedy_cfg/config.yaml inside the workspace.
type PipelineConfig struct {
	Version    string           `yaml:"version"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Execution  ExecutionConfig  `yaml:"execution"`
	Validation ValidationConfig `yaml:"validation"`
	Risk       RiskConfig       `yaml:"risk"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	History    HistoryConfig    `yaml:"history"`
	Intake     IntakeConfig     `yaml:"intake"`
}

// AnalysisConfig tunes the planning stage.
type AnalysisConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
	ContextWindow int `yaml:"context_window"`
}

// ExecutionConfig tunes the execution stage.
type ExecutionConfig struct {
	ChunkSize int `yaml:"chunk_size"`
}

// ValidationConfig tunes the validation stage.
type ValidationConfig struct {
	MaxAttempts        int      `yaml:"max_attempts"`
	TestTimeoutSeconds int      `yaml:"test_timeout_seconds"`
	TestCommand        []string `yaml:"test_command"`
}

// RiskConfig caps the risk level of plans that may be executed.
type RiskConfig struct {
	Threshold string `yaml:"threshold"`
}

// TelemetryConfig describes the event log output.
type TelemetryConfig struct {
	Path string `yaml:"path"`
}

// HistoryConfig describes the run-history database.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// IntakeConfig describes how issues reach the pipeline.
type IntakeConfig struct {
	LSPCommand    []string `yaml:"lsp_command"`
	LSPLanguageID string   `yaml:"lsp_language_id"`
}

// DefaultPipelineConfig seeds every tuning knob with its built-in default.
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		Version: "v1",
		Analysis: AnalysisConfig{
			MaxConcurrent: 10,
			ContextWindow: 20,
		},
		Execution: ExecutionConfig{
			ChunkSize: 10,
		},
		Validation: ValidationConfig{
			MaxAttempts:        3,
			TestTimeoutSeconds: 60,
		},
		Risk:    RiskConfig{Threshold: "medium"},
		History: HistoryConfig{Path: filepath.Join(configDirName, "history.db")},
	}
}

// LoadPipelineConfig reads config.yaml, filling defaults for anything the
// file leaves out. A missing file returns os.ErrNotExist with defaults.
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	cfg := DefaultPipelineConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	return cfg, nil
}

func (c *PipelineConfig) normalize() {
	def := DefaultPipelineConfig()
	if c.Analysis.MaxConcurrent <= 0 {
		c.Analysis.MaxConcurrent = def.Analysis.MaxConcurrent
	}
	if c.Analysis.ContextWindow <= 0 {
		c.Analysis.ContextWindow = def.Analysis.ContextWindow
	}
	if c.Execution.ChunkSize <= 0 {
		c.Execution.ChunkSize = def.Execution.ChunkSize
	}
	if c.Validation.MaxAttempts <= 0 {
		c.Validation.MaxAttempts = def.Validation.MaxAttempts
	}
	if c.Validation.TestTimeoutSeconds <= 0 {
		c.Validation.TestTimeoutSeconds = def.Validation.TestTimeoutSeconds
	}
	if c.Risk.Threshold == "" {
		c.Risk.Threshold = def.Risk.Threshold
	}
	if c.History.Path == "" {
		c.History.Path = def.History.Path
	}
}

// TestTimeout returns the behavioral test deadline as a duration.
func (c *PipelineConfig) TestTimeout() time.Duration {
	return time.Duration(c.Validation.TestTimeoutSeconds) * time.Second
}

// RiskThreshold parses the configured execution risk cap.
func (c *PipelineConfig) RiskThreshold() framework.RiskLevel {
	return framework.ParseRiskLevel(c.Risk.Threshold)
}
