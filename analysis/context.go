// Package analysis turns issues into fix plans: it extracts file context,
// detects structural anti-patterns, dispatches to fix strategies, and scores
// risk. Analysis never fails a batch; an issue whose analysis blows up gets
// the deterministic fallback plan instead.
package analysis

import (
	"os"
	"strings"

	"github.com/lexcodex/remedy/framework/syntax"
)

// FileContext is the bundle of information strategies work from.
type FileContext struct {
	Path        string
	Content     string
	Window      []string
	WindowStart int
	Imports     []string
	TopLevel    []string
	Exists      bool
}

// ExtractContext reads the issue's file and slices a window of lines around
// the issue. A missing or unreadable file yields an empty context; analysis
// treats that as "nothing known", not as a failure.
func ExtractContext(path string, line, window int) FileContext {
	fc := FileContext{Path: path}
	if path == "" {
		return fc
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fc
	}
	fc.Exists = true
	fc.Content = string(data)

	lines := strings.Split(fc.Content, "\n")
	if line > 0 {
		start := line - window
		if start < 1 {
			start = 1
		}
		end := line + window
		if end > len(lines) {
			end = len(lines)
		}
		if start <= len(lines) {
			fc.WindowStart = start
			fc.Window = lines[start-1 : end]
		}
	}

	lang := syntax.Detect(path)
	for _, imp := range syntax.ImportDecls(fc.Content, lang) {
		fc.Imports = append(fc.Imports, imp.Name)
	}
	for _, decl := range syntax.TopLevel(fc.Content, lang) {
		fc.TopLevel = append(fc.TopLevel, decl.Name)
	}
	return fc
}

// Line returns the 1-based source line from the extracted content, or ""
// when out of range.
func (fc FileContext) Line(n int) string {
	if !fc.Exists || n < 1 {
		return ""
	}
	lines := strings.Split(fc.Content, "\n")
	if n > len(lines) {
		return ""
	}
	return lines[n-1]
}
