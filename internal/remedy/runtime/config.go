package runtime

import (
	"fmt"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lexcodex/remedy/agents"
)

// Config describes one runtime instance. Paths are resolved against the
// project before anything opens.
type Config struct {
	// ProjectPath is the workspace the pipeline repairs. Defaults to ".".
	ProjectPath string
	// ConfigPath overrides the default remedy_cfg/config.yaml location.
	ConfigPath string
	// LogPath overrides the default remedy_cfg/remedy.log location.
	LogPath string
	// Proactive enables the architectural planning pre-pass in dispatch
	// mode.
	Proactive bool
	// Registerer receives the specialist metrics. Nil keeps them on a
	// private registry.
	Registerer prometheus.Registerer
}

// Normalize fills defaults and resolves paths to absolute form.
func (c *Config) Normalize() error {
	if c.ProjectPath == "" {
		c.ProjectPath = "."
	}
	abs, err := filepath.Abs(c.ProjectPath)
	if err != nil {
		return fmt.Errorf("resolve project path: %w", err)
	}
	c.ProjectPath = abs
	if c.ConfigPath == "" {
		c.ConfigPath = agents.DefaultConfigPath(c.ProjectPath)
	}
	if c.LogPath == "" {
		c.LogPath = filepath.Join(agents.ConfigDir(c.ProjectPath), "remedy.log")
	}
	return nil
}

// resolve joins a config-relative path against the project root.
func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.ProjectPath, path)
}
