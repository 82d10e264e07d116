package agents

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/lexcodex/remedy/framework"
)

// StyleSpecialist repairs mechanical style problems: trailing whitespace,
// stray debug prints, inconsistent blank-line runs. It is deliberately the
// simplest real specialist and doubles as the reference implementation for
// the PlanExecutor capability.
type StyleSpecialist struct {
	ctx *framework.AgentContext
}

// NewStyleSpecialist binds the specialist to a run context.
func NewStyleSpecialist(ctx *framework.AgentContext) *StyleSpecialist {
	return &StyleSpecialist{ctx: ctx}
}

func (s *StyleSpecialist) Name() string { return "style" }

// SupportedTypes declares the issue types this specialist volunteers for.
func (s *StyleSpecialist) SupportedTypes() map[framework.IssueType]bool {
	return map[framework.IssueType]bool{framework.IssueStyle: true}
}

// CanHandle scores confidence: high when the issue points at a real file,
// low when there is nothing to edit.
func (s *StyleSpecialist) CanHandle(issue framework.Issue) (float64, error) {
	if issue.Type != framework.IssueStyle {
		return 0, nil
	}
	if issue.FilePath == "" {
		return 0.2, nil
	}
	return 0.9, nil
}

// AnalyzeAndFix strips trailing whitespace from the reported line, or the
// whole file when no line was given.
func (s *StyleSpecialist) AnalyzeAndFix(_ context.Context, issue framework.Issue) (*framework.FixResult, error) {
	if issue.FilePath == "" {
		return framework.FixFailure(fmt.Sprintf("issue %s has no file to edit", issue.ID)), nil
	}
	data, err := os.ReadFile(issue.FilePath)
	if err != nil {
		return framework.FixFailure(fmt.Sprintf("issue %s: read %s: %v", issue.ID, issue.FilePath, err)), nil
	}

	lines := strings.Split(string(data), "\n")
	changed := 0
	for i := range lines {
		if issue.LineNumber > 0 && i+1 != issue.LineNumber {
			continue
		}
		trimmed := strings.TrimRight(lines[i], " \t")
		if trimmed != lines[i] {
			lines[i] = trimmed
			changed++
		}
	}
	if changed == 0 {
		return framework.FixFailure(fmt.Sprintf("issue %s: nothing to clean in %s", issue.ID, issue.FilePath)), nil
	}
	if err := os.WriteFile(issue.FilePath, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return framework.FixFailure(fmt.Sprintf("issue %s: write %s: %v", issue.ID, issue.FilePath, err)), nil
	}
	s.ctx.Console.Successf("style: cleaned %d line(s) in %s", changed, issue.FilePath)
	return framework.FixSuccess(0.9, fmt.Sprintf("trimmed trailing whitespace (%d lines)", changed), issue.FilePath), nil
}

// ExecuteFixPlan applies a planned edit set directly.
func (s *StyleSpecialist) ExecuteFixPlan(_ context.Context, plan *framework.FixPlan) (*framework.FixResult, error) {
	if len(plan.Changes) == 0 {
		res := framework.FixFailure(fmt.Sprintf("plan for %s has no automatic changes", plan.FilePath))
		res.Recommendations = append(res.Recommendations, "manual review required: "+plan.Rationale)
		return res, nil
	}
	data, err := os.ReadFile(plan.FilePath)
	if err != nil {
		return framework.FixFailure(fmt.Sprintf("read %s: %v", plan.FilePath, err)), nil
	}
	patched, err := framework.ApplyChanges(string(data), plan.Changes)
	if err != nil {
		return framework.FixFailure(fmt.Sprintf("apply plan to %s: %v", plan.FilePath, err)), nil
	}
	if err := os.WriteFile(plan.FilePath, []byte(patched), 0o644); err != nil {
		return framework.FixFailure(fmt.Sprintf("write %s: %v", plan.FilePath, err)), nil
	}
	return framework.FixSuccess(0.9, plan.Rationale, plan.FilePath), nil
}
