package analysis

import (
	"fmt"
	"strings"

	"github.com/lexcodex/remedy/framework"
)

// Strategy attempts to turn one issue plus its file context into zero or one
// concrete change. Returning (nil, nil) is the expected "no automatic fix"
// outcome and must not be conflated with an internal error.
type Strategy interface {
	Name() string
	Propose(fc FileContext, issue framework.Issue) (*framework.ChangeSpec, error)
}

// DefaultStrategies returns the built-in strategy set keyed by approach
// name. Approaches without a strategy simply produce empty plans.
func DefaultStrategies() map[string]Strategy {
	strategies := map[string]Strategy{}
	for _, s := range []Strategy{
		whitespaceStrategy{},
		markerStrategy{},
		debugPrintStrategy{},
	} {
		strategies[s.Name()] = s
	}
	return strategies
}

// whitespaceStrategy trims trailing whitespace on the reported line.
type whitespaceStrategy struct{}

func (whitespaceStrategy) Name() string { return "restyle" }

func (whitespaceStrategy) Propose(fc FileContext, issue framework.Issue) (*framework.ChangeSpec, error) {
	line := fc.Line(issue.LineNumber)
	trimmed := strings.TrimRight(line, " \t")
	if trimmed == line || strings.TrimSpace(line) == "" {
		return nil, nil
	}
	change, err := framework.NewChangeSpec(issue.LineNumber, issue.LineNumber, line, trimmed,
		"trim trailing whitespace")
	if err != nil {
		return nil, err
	}
	return &change, nil
}

// markerStrategy removes a trailing TODO/FIXME comment from the reported
// line, keeping any code before it.
type markerStrategy struct{}

func (markerStrategy) Name() string { return "document" }

func (markerStrategy) Propose(fc FileContext, issue framework.Issue) (*framework.ChangeSpec, error) {
	line := fc.Line(issue.LineNumber)
	if strings.TrimSpace(line) == "" {
		return nil, nil
	}
	cleaned := line
	for _, marker := range []string{"# TODO", "# FIXME", "// TODO", "// FIXME"} {
		if idx := strings.Index(cleaned, marker); idx >= 0 {
			cleaned = strings.TrimRight(cleaned[:idx], " \t")
		}
	}
	if cleaned == line {
		return nil, nil
	}
	change, err := framework.NewChangeSpec(issue.LineNumber, issue.LineNumber, line, cleaned,
		"remove stale review marker")
	if err != nil {
		return nil, err
	}
	return &change, nil
}

// debugPrintStrategy deletes a leftover debug print statement.
type debugPrintStrategy struct{}

func (debugPrintStrategy) Name() string { return "prune" }

var debugPrefixes = []string{"print(", "console.log(", "fmt.Println(", "fmt.Printf("}

func (debugPrintStrategy) Propose(fc FileContext, issue framework.Issue) (*framework.ChangeSpec, error) {
	line := fc.Line(issue.LineNumber)
	stripped := strings.TrimSpace(line)
	for _, prefix := range debugPrefixes {
		if strings.HasPrefix(stripped, prefix) {
			change, err := framework.NewChangeSpec(issue.LineNumber, issue.LineNumber, line, "",
				fmt.Sprintf("remove debug output %q", stripped))
			if err != nil {
				return nil, err
			}
			return &change, nil
		}
	}
	return nil, nil
}
