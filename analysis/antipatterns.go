package analysis

import (
	"fmt"

	"github.com/lexcodex/remedy/framework/syntax"
)

// DetectAntiPatterns scans the file context for structural problems worth
// flagging before any edit is attempted. Warnings feed risk assessment and
// the cautious-approach escalation; they never fail analysis outright.
func DetectAntiPatterns(fc FileContext) []string {
	if !fc.Exists {
		return nil
	}
	var warnings []string
	lang := syntax.Detect(fc.Path)

	seen := map[string]int{}
	for _, decl := range syntax.TopLevel(fc.Content, lang) {
		seen[decl.Name]++
	}
	for name, count := range seen {
		if count > 1 {
			warnings = append(warnings, fmt.Sprintf("duplicate top-level definition %q (%d occurrences)", name, count))
		}
	}

	if err := syntax.Balance(fc.Content); err != nil {
		warnings = append(warnings, fmt.Sprintf("unclosed or mismatched nesting: %v", err))
	}

	if line := misplacedImportLine(fc, lang); line > 0 {
		warnings = append(warnings, fmt.Sprintf("misplaced import at line %d (after first definition)", line))
	}
	return warnings
}

// misplacedImportLine finds an import that appears after the first top-level
// definition, which usually means an edit dropped it mid-file.
func misplacedImportLine(fc FileContext, lang syntax.Language) int {
	decls := syntax.TopLevel(fc.Content, lang)
	if len(decls) == 0 {
		return 0
	}
	firstDef := decls[0].Line
	for _, imp := range syntax.ImportDecls(fc.Content, lang) {
		if imp.Line > firstDef {
			return imp.Line
		}
	}
	return 0
}
