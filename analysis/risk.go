package analysis

import (
	"strings"

	"github.com/lexcodex/remedy/framework"
)

// AssessRisk scores a plan from its anti-pattern warnings, total edited line
// count, and the issue's severity. Rules compose via max-of-levels: once any
// rule raises the level, no other rule can lower it.
func AssessRisk(warnings []string, editedLines int, severity framework.Priority) framework.RiskLevel {
	risk := framework.RiskNone

	for _, warning := range warnings {
		lowered := strings.ToLower(warning)
		switch {
		case strings.Contains(lowered, "duplicate"),
			strings.Contains(lowered, "syntax error"),
			strings.Contains(lowered, "unclosed"):
			risk = framework.MaxRisk(risk, framework.RiskHigh)
		case strings.Contains(lowered, "misplaced"):
			risk = framework.MaxRisk(risk, framework.RiskMedium)
		}
	}

	switch {
	case editedLines > 30:
		risk = framework.MaxRisk(risk, framework.RiskHigh)
	case editedLines > 15:
		risk = framework.MaxRisk(risk, framework.RiskMedium)
	}

	switch severity {
	case framework.PriorityCritical:
		risk = framework.MaxRisk(risk, framework.RiskHigh)
	case framework.PriorityHigh:
		risk = framework.MaxRisk(risk, framework.RiskMedium)
	}

	return risk
}
