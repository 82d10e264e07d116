package agents

import (
	"context"
	"fmt"
	"os"

	"github.com/lexcodex/remedy/framework"
)

// SecuritySpecialist never rewrites code automatically: security findings
// always go to a human, but it enriches the outcome with the offending line
// so review starts with context.
type SecuritySpecialist struct {
	ctx *framework.AgentContext
}

// NewSecuritySpecialist binds the specialist to a run context.
func NewSecuritySpecialist(ctx *framework.AgentContext) *SecuritySpecialist {
	return &SecuritySpecialist{ctx: ctx}
}

func (s *SecuritySpecialist) Name() string { return "security" }

func (s *SecuritySpecialist) SupportedTypes() map[framework.IssueType]bool {
	return map[framework.IssueType]bool{framework.IssueSecurity: true}
}

func (s *SecuritySpecialist) CanHandle(issue framework.Issue) (float64, error) {
	if issue.Type != framework.IssueSecurity {
		return 0, nil
	}
	return 0.8, nil
}

// AnalyzeAndFix records the finding for manual review. Nothing was
// repaired, so the result reports failure with the offending line attached.
func (s *SecuritySpecialist) AnalyzeAndFix(_ context.Context, issue framework.Issue) (*framework.FixResult, error) {
	detail := issue.Message
	if issue.FilePath != "" && issue.LineNumber > 0 {
		if data, err := os.ReadFile(issue.FilePath); err == nil {
			if line := framework.ReadLine(string(data), issue.LineNumber); line != "" {
				detail = fmt.Sprintf("%s (line %d: %s)", issue.Message, issue.LineNumber, line)
			}
		}
	}
	res := framework.FixFailure(fmt.Sprintf("security issue %s requires manual review", issue.ID))
	res.Recommendations = append(res.Recommendations, detail)
	return res, nil
}
