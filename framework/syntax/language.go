// Package syntax provides the lightweight source-structure checks the
// pipeline relies on: language detection, parse/balance validation, and
// top-level scanning for imports and definitions.
package syntax

import "path/filepath"

// Language identifies a source language well enough to pick a checker.
type Language string

const (
	LangGo         Language = "go"
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangJava       Language = "java"
	LangC          Language = "c"
	LangRust       Language = "rust"
	LangUnknown    Language = "unknown"
)

var extensionMap = map[string]Language{
	".go":   LangGo,
	".py":   LangPython,
	".js":   LangJavaScript,
	".jsx":  LangJavaScript,
	".ts":   LangTypeScript,
	".tsx":  LangTypeScript,
	".java": LangJava,
	".c":    LangC,
	".h":    LangC,
	".cpp":  LangC,
	".rs":   LangRust,
}

// Detect returns the best-effort language for a path.
func Detect(path string) Language {
	if path == "" {
		return LangUnknown
	}
	if lang, ok := extensionMap[filepath.Ext(filepath.Base(path))]; ok {
		return lang
	}
	return LangUnknown
}

// IsSource reports whether the path looks like program source at all.
// Non-source content takes validation's lightweight bypass path.
func IsSource(path string) bool {
	return Detect(path) != LangUnknown
}
