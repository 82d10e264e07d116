package syntax

import (
	"strings"
)

// Decl is a top-level declaration or import found by the line scanner, with
// its 1-based line number.
type Decl struct {
	Name string
	Line int
}

// TopLevel scans for top-level definition names. This is deliberately a
// line-based heuristic: the analysis stage needs names and positions, not a
// full AST, and it must cope with files that don't currently parse.
func TopLevel(content string, lang Language) []Decl {
	var decls []Decl
	for i, line := range strings.Split(content, "\n") {
		if line == "" || line[0] == ' ' || line[0] == '\t' {
			continue
		}
		name := declName(strings.TrimRight(line, " \t"), lang)
		if name != "" {
			decls = append(decls, Decl{Name: name, Line: i + 1})
		}
	}
	return decls
}

// ImportDecls scans for import statements with their positions.
func ImportDecls(content string, lang Language) []Decl {
	var decls []Decl
	inBlock := false
	for i, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case inBlock:
			if line == ")" {
				inBlock = false
				continue
			}
			if line != "" && !strings.HasPrefix(line, "//") {
				decls = append(decls, Decl{Name: strings.Trim(line, `"`), Line: i + 1})
			}
		case lang == LangGo && strings.HasPrefix(line, "import ("):
			inBlock = true
		case strings.HasPrefix(line, "import "):
			decls = append(decls, Decl{Name: line, Line: i + 1})
		case lang == LangPython && strings.HasPrefix(line, "from ") && strings.Contains(line, " import "):
			decls = append(decls, Decl{Name: line, Line: i + 1})
		}
	}
	return decls
}

func declName(line string, lang Language) string {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return ""
	}
	keyword := fields[0]
	rest := fields[1]
	switch lang {
	case LangPython:
		if keyword == "def" || keyword == "class" {
			return trimDeclName(rest)
		}
	case LangGo:
		switch keyword {
		case "func":
			// Skip a receiver clause.
			if strings.HasPrefix(rest, "(") {
				if idx := strings.Index(line, ")"); idx >= 0 {
					after := strings.Fields(line[idx+1:])
					if len(after) > 0 {
						return trimDeclName(after[0])
					}
				}
				return ""
			}
			return trimDeclName(rest)
		case "type", "var", "const":
			return trimDeclName(rest)
		}
	case LangJavaScript, LangTypeScript:
		if keyword == "function" || keyword == "class" {
			return trimDeclName(rest)
		}
	default:
		if keyword == "def" || keyword == "class" || keyword == "function" || keyword == "func" {
			return trimDeclName(rest)
		}
	}
	return ""
}

func trimDeclName(token string) string {
	for i := 0; i < len(token); i++ {
		switch token[i] {
		case '(', ':', '{', '[', '<', '=':
			return token[:i]
		}
	}
	return token
}
