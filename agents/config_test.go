package agents

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcodex/remedy/framework"
)

func TestLoadPipelineConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadPipelineConfig(filepath.Join(t.TempDir(), "config.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	require.NotNil(t, cfg)
	assert.Equal(t, 10, cfg.Analysis.MaxConcurrent)
	assert.Equal(t, 3, cfg.Validation.MaxAttempts)
	assert.Equal(t, framework.RiskMedium, cfg.RiskThreshold())
}

func TestLoadPipelineConfigFillsOmittedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `version: v1
analysis:
  max_concurrent: 4
validation:
  test_command: ["python3", "-m", "pytest"]
risk:
  threshold: low
intake:
  lsp_command: ["pylsp"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadPipelineConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Analysis.MaxConcurrent)
	assert.Equal(t, 20, cfg.Analysis.ContextWindow)
	assert.Equal(t, 10, cfg.Execution.ChunkSize)
	assert.Equal(t, []string{"python3", "-m", "pytest"}, cfg.Validation.TestCommand)
	assert.Equal(t, 60*time.Second, cfg.TestTimeout())
	assert.Equal(t, framework.RiskLow, cfg.RiskThreshold())
	assert.Equal(t, []string{"pylsp"}, cfg.Intake.LSPCommand)
	assert.NotEmpty(t, cfg.History.Path)
}

func TestLoadPipelineConfigRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analysis: [not a map"), 0o644))

	cfg, err := LoadPipelineConfig(path)
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestConfigPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("ws", "remedy_cfg"), ConfigDir("ws"))
	assert.Equal(t, filepath.Join("ws", "remedy_cfg", "config.yaml"), DefaultConfigPath("ws"))
	assert.Equal(t, filepath.Join(".", "remedy_cfg"), ConfigDir(""))
}
