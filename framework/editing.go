package framework

import (
	"fmt"
	"strings"
)

// ApplyChange splices a validated ChangeSpec into file content. The old code
// must still match what the change was planned against; a mismatch means the
// file moved underneath the plan and the edit is refused.
func ApplyChange(content string, change ChangeSpec) (string, error) {
	lines := strings.Split(content, "\n")
	if change.StartLine > len(lines) {
		return "", fmt.Errorf("change starts at line %d but file has %d lines", change.StartLine, len(lines))
	}
	end := change.EndLine
	if end > len(lines) {
		end = len(lines)
	}
	current := strings.Join(lines[change.StartLine-1:end], "\n")
	if strings.TrimSpace(current) != strings.TrimSpace(change.OldCode) {
		return "", fmt.Errorf("lines %d-%d no longer match planned code", change.StartLine, end)
	}

	var out []string
	out = append(out, lines[:change.StartLine-1]...)
	if change.NewCode != "" {
		out = append(out, strings.Split(change.NewCode, "\n")...)
	}
	out = append(out, lines[end:]...)
	return strings.Join(out, "\n"), nil
}

// ApplyChanges applies a plan's changes back-to-front so earlier changes
// don't shift the line numbers of later ones.
func ApplyChanges(content string, changes []ChangeSpec) (string, error) {
	ordered := make([]ChangeSpec, len(changes))
	copy(ordered, changes)
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if ordered[j].StartLine > ordered[i].StartLine {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}
	var err error
	for _, change := range ordered {
		content, err = ApplyChange(content, change)
		if err != nil {
			return "", err
		}
	}
	return content, nil
}

// ReadLine extracts a single 1-based line from content, or "" when the line
// does not exist.
func ReadLine(content string, line int) string {
	if line < 1 {
		return ""
	}
	lines := strings.Split(content, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}
