package agents

import (
	"context"
	"fmt"

	"github.com/lexcodex/remedy/framework"
)

// ArchitectSpecialist covers the architecturally significant issue types.
// It produces cross-issue strategies in proactive mode and structured
// refactoring guidance reactively; large restructurings are not applied
// automatically.
type ArchitectSpecialist struct {
	ctx *framework.AgentContext
}

// NewArchitectSpecialist binds the specialist to a run context.
func NewArchitectSpecialist(ctx *framework.AgentContext) *ArchitectSpecialist {
	return &ArchitectSpecialist{ctx: ctx}
}

func (a *ArchitectSpecialist) Name() string { return "architect" }

func (a *ArchitectSpecialist) SupportedTypes() map[framework.IssueType]bool {
	return map[framework.IssueType]bool{
		framework.IssueComplexity:  true,
		framework.IssueDuplication: true,
		framework.IssuePerformance: true,
	}
}

func (a *ArchitectSpecialist) CanHandle(issue framework.Issue) (float64, error) {
	if !a.SupportedTypes()[issue.Type] {
		return 0, nil
	}
	if issue.Severity >= framework.PriorityHigh {
		return 0.6, nil
	}
	return 0.4, nil
}

// AnalyzeAndFix emits guidance rather than edits.
func (a *ArchitectSpecialist) AnalyzeAndFix(_ context.Context, issue framework.Issue) (*framework.FixResult, error) {
	res := framework.FixFailure(fmt.Sprintf("issue %s (%s) needs a guided refactor", issue.ID, issue.Type))
	res.Recommendations = append(res.Recommendations, a.guidance(issue)...)
	return res, nil
}

// PlanArchitecture builds the proactive strategy for a group of
// architecturally significant issues.
func (a *ArchitectSpecialist) PlanArchitecture(_ context.Context, issues []framework.Issue) (*ArchitecturalPlan, error) {
	if len(issues) == 0 {
		return nil, fmt.Errorf("no architectural issues to plan for")
	}
	counts := map[framework.IssueType]int{}
	for _, issue := range issues {
		counts[issue.Type]++
	}
	plan := &ArchitecturalPlan{
		Strategy: fmt.Sprintf("incremental refactor across %d issue(s)", len(issues)),
		ValidationSteps: []string{
			"run syntax validation on every touched file",
			"run the project's test suite after the final change",
		},
	}
	if counts[framework.IssueDuplication] > 0 {
		plan.Patterns = append(plan.Patterns, "extract shared helper")
	}
	if counts[framework.IssueComplexity] > 0 {
		plan.Patterns = append(plan.Patterns, "split long functions at branch boundaries")
	}
	if counts[framework.IssuePerformance] > 0 {
		plan.Patterns = append(plan.Patterns, "hoist repeated work out of hot loops")
	}
	return plan, nil
}

func (a *ArchitectSpecialist) guidance(issue framework.Issue) []string {
	switch issue.Type {
	case framework.IssueDuplication:
		return []string{fmt.Sprintf("extract the duplicated block near %s:%d into a shared helper", issue.FilePath, issue.LineNumber)}
	case framework.IssuePerformance:
		return []string{fmt.Sprintf("profile %s before optimizing; the reported hot spot is line %d", issue.FilePath, issue.LineNumber)}
	default:
		return []string{fmt.Sprintf("decompose the function around %s:%d; aim for single-purpose helpers", issue.FilePath, issue.LineNumber)}
	}
}
