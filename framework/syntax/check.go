package syntax

import (
	"fmt"
	"go/parser"
	"go/token"
	"strings"
)

// Check validates that content is structurally sound for its language. Go
// sources must parse; everything else gets the balance scanner, which is the
// strongest check available without a per-language grammar.
func Check(content, path string) error {
	if Detect(path) == LangGo {
		fset := token.NewFileSet()
		if _, err := parser.ParseFile(fset, path, content, parser.AllErrors); err != nil {
			return fmt.Errorf("parse: %w", err)
		}
		return nil
	}
	return Balance(content)
}

// Balance scans for unmatched brackets and unterminated quotes. Quoted
// regions are skipped so string contents never count against bracket
// nesting.
func Balance(content string) error {
	var stack []byte
	var quote byte
	escaped := false

	for i := 0; i < len(content); i++ {
		ch := content[i]
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == quote:
				quote = 0
			case ch == '\n' && quote != '`':
				// Single-line string left open; the quote itself is
				// the defect the caller needs reported.
				return fmt.Errorf("unterminated %q string", string(quote))
			}
			continue
		}
		if ch == '#' || (ch == '/' && i+1 < len(content) && content[i+1] == '/') {
			for i < len(content) && content[i] != '\n' {
				i++
			}
			continue
		}
		if (ch == '"' || ch == '\'') && strings.HasPrefix(content[i:], strings.Repeat(string(ch), 3)) {
			end := strings.Index(content[i+3:], strings.Repeat(string(ch), 3))
			if end < 0 {
				return fmt.Errorf("unterminated %q block string", string(ch))
			}
			i += 3 + end + 2
			continue
		}
		switch ch {
		case '"', '\'', '`':
			quote = ch
		case '(', '[', '{':
			stack = append(stack, ch)
		case ')', ']', '}':
			if len(stack) == 0 {
				return fmt.Errorf("unmatched closing %q", string(ch))
			}
			open := stack[len(stack)-1]
			if closerFor(open) != ch {
				return fmt.Errorf("mismatched %q closed by %q", string(open), string(ch))
			}
			stack = stack[:len(stack)-1]
		}
	}
	if quote != 0 {
		return fmt.Errorf("unterminated %q string", string(quote))
	}
	if len(stack) > 0 {
		return fmt.Errorf("unclosed %q", string(stack[len(stack)-1]))
	}
	return nil
}

// BalancedDelta reports whether applying new in place of old keeps the
// bracket and quote counts stable. Used as the structural pre-check on a
// single proposed change, where neither side is a complete file.
func BalancedDelta(old, new string) error {
	for _, pair := range [][2]byte{{'(', ')'}, {'[', ']'}, {'{', '}'}} {
		oldDelta := strings.Count(old, string(pair[0])) - strings.Count(old, string(pair[1]))
		newDelta := strings.Count(new, string(pair[0])) - strings.Count(new, string(pair[1]))
		if oldDelta != newDelta {
			return fmt.Errorf("change shifts %q nesting", string(pair[0]))
		}
	}
	for _, q := range []string{`"`, "'", "`"} {
		if strings.Count(old, q)%2 != strings.Count(new, q)%2 {
			return fmt.Errorf("change unbalances %s quotes", q)
		}
	}
	return nil
}

func closerFor(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	default:
		return '}'
	}
}
