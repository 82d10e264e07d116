package framework

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// AgentContext carries the shared, read-mostly state every specialist is
// bound to for one pipeline run: where the project lives, tuning knobs, and
// where human-readable progress goes.
type AgentContext struct {
	ProjectPath string
	Config      map[string]any
	Console     *Console
	Telemetry   Telemetry
}

// NewAgentContext builds a context with a stderr console and no telemetry.
func NewAgentContext(projectPath string) *AgentContext {
	return &AgentContext{
		ProjectPath: projectPath,
		Config:      map[string]any{},
		Console:     NewConsole(os.Stderr),
	}
}

// ConfigString reads a string config value with a fallback.
func (c *AgentContext) ConfigString(key, fallback string) string {
	if c == nil || c.Config == nil {
		return fallback
	}
	if v, ok := c.Config[key].(string); ok {
		return v
	}
	return fallback
}

// ConfigInt reads an integer config value with a fallback.
func (c *AgentContext) ConfigInt(key string, fallback int) int {
	if c == nil || c.Config == nil {
		return fallback
	}
	switch v := c.Config[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}

// Emit forwards an event to the attached telemetry sink, if any.
func (c *AgentContext) Emit(event Event) {
	if c == nil || c.Telemetry == nil {
		return
	}
	c.Telemetry.Emit(event)
}

// Console is the reporting handle shared across specialists. Output is
// serialized so concurrent stages don't interleave lines.
type Console struct {
	mu  sync.Mutex
	out io.Writer

	info *color.Color
	warn *color.Color
	fail *color.Color
	good *color.Color
}

// NewConsole wraps a writer with colorized reporting helpers.
func NewConsole(out io.Writer) *Console {
	return &Console{
		out:  out,
		info: color.New(color.FgCyan),
		warn: color.New(color.FgYellow),
		fail: color.New(color.FgRed, color.Bold),
		good: color.New(color.FgGreen),
	}
}

func (c *Console) Infof(format string, args ...any)    { c.printf(c.info, format, args...) }
func (c *Console) Warnf(format string, args ...any)    { c.printf(c.warn, format, args...) }
func (c *Console) Errorf(format string, args ...any)   { c.printf(c.fail, format, args...) }
func (c *Console) Successf(format string, args ...any) { c.printf(c.good, format, args...) }

func (c *Console) printf(style *color.Color, format string, args ...any) {
	if c == nil || c.out == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, style.Sprintf(format, args...))
}
