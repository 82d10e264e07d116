package validation

import (
	"fmt"
	"strings"

	"github.com/lexcodex/remedy/framework"
	"github.com/lexcodex/remedy/framework/syntax"
)

// absolutePathPrefixes flags machine-specific paths that would break the
// code on any other checkout.
var absolutePathPrefixes = []string{"/home/", "/Users/", "/tmp/", "C:\\"}

// CheckLogic applies structural heuristics that a syntax check cannot
// catch. Offenses collect rather than short-circuit so a rejection names
// every problem at once.
func CheckLogic(content, filePath string) framework.ValidationResult {
	var errs []string
	lang := syntax.Detect(filePath)

	decls := syntax.TopLevel(content, lang)
	seen := make(map[string]int, len(decls))
	for _, d := range decls {
		if prev, ok := seen[d.Name]; ok {
			errs = append(errs, fmt.Sprintf("duplicate top-level definition %q (lines %d and %d)", d.Name, prev, d.Line))
			continue
		}
		seen[d.Name] = d.Line
	}

	if len(decls) > 0 {
		firstDecl := decls[0].Line
		for _, imp := range syntax.ImportDecls(content, lang) {
			if imp.Line > firstDecl {
				errs = append(errs, fmt.Sprintf("misplaced import at line %d (after first definition at line %d)", imp.Line, firstDecl))
			}
		}
	}

	errs = append(errs, emptyBlocks(content)...)
	errs = append(errs, leftoverMarkers(content)...)
	errs = append(errs, hardcodedPaths(content)...)

	if len(errs) > 0 {
		return framework.Invalid(errs...)
	}
	return framework.Validated()
}

// emptyBlocks reports block openers with no body: a colon-terminated line
// whose following content dedents immediately, or an opening brace closed
// on the next non-blank line.
func emptyBlocks(content string) []string {
	var errs []string
	lines := strings.Split(content, "\n")
	for i, raw := range lines {
		line := strings.TrimRight(raw, " \t")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//") {
			continue
		}
		switch {
		case strings.HasSuffix(trimmed, ":"):
			next, ok := nextContentLine(lines, i+1)
			if !ok || indentOf(lines[next]) <= indentOf(raw) {
				errs = append(errs, fmt.Sprintf("empty block at line %d: %s", i+1, trimmed))
			}
		case strings.HasSuffix(trimmed, "{"):
			next, ok := nextContentLine(lines, i+1)
			if ok && strings.TrimSpace(lines[next]) == "}" {
				errs = append(errs, fmt.Sprintf("empty block at line %d: %s", i+1, trimmed))
			}
		}
	}
	return errs
}

func leftoverMarkers(content string) []string {
	var errs []string
	for i, line := range strings.Split(content, "\n") {
		upper := strings.ToUpper(line)
		if strings.Contains(upper, "TODO") || strings.Contains(upper, "FIXME") {
			errs = append(errs, fmt.Sprintf("unresolved marker at line %d: %s", i+1, strings.TrimSpace(line)))
		}
	}
	return errs
}

func hardcodedPaths(content string) []string {
	var errs []string
	for i, line := range strings.Split(content, "\n") {
		for _, prefix := range absolutePathPrefixes {
			if strings.Contains(line, `"`+prefix) || strings.Contains(line, `'`+prefix) {
				errs = append(errs, fmt.Sprintf("hard-coded absolute path at line %d", i+1))
				break
			}
		}
	}
	return errs
}

func nextContentLine(lines []string, from int) (int, bool) {
	for i := from; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "" {
			return i, true
		}
	}
	return 0, false
}

func indentOf(line string) int {
	count := 0
	for _, r := range line {
		switch r {
		case ' ':
			count++
		case '\t':
			count += 4
		default:
			return count
		}
	}
	return count
}
