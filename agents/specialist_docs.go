package agents

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/lexcodex/remedy/framework"
)

// DocsSpecialist handles documentation hygiene: missing trailing newlines
// and stale TODO/FIXME markers left behind by earlier fixes.
type DocsSpecialist struct {
	ctx *framework.AgentContext
}

// NewDocsSpecialist binds the specialist to a run context.
func NewDocsSpecialist(ctx *framework.AgentContext) *DocsSpecialist {
	return &DocsSpecialist{ctx: ctx}
}

func (d *DocsSpecialist) Name() string { return "docs" }

func (d *DocsSpecialist) SupportedTypes() map[framework.IssueType]bool {
	return map[framework.IssueType]bool{framework.IssueDocumentation: true}
}

func (d *DocsSpecialist) CanHandle(issue framework.Issue) (float64, error) {
	if issue.Type != framework.IssueDocumentation {
		return 0, nil
	}
	if issue.FilePath == "" {
		return 0.1, nil
	}
	return 0.7, nil
}

// AnalyzeAndFix ensures the file ends with exactly one newline and prunes
// the marker the issue points at.
func (d *DocsSpecialist) AnalyzeAndFix(_ context.Context, issue framework.Issue) (*framework.FixResult, error) {
	if issue.FilePath == "" {
		return framework.FixFailure(fmt.Sprintf("issue %s has no file to edit", issue.ID)), nil
	}
	data, err := os.ReadFile(issue.FilePath)
	if err != nil {
		return framework.FixFailure(fmt.Sprintf("issue %s: read %s: %v", issue.ID, issue.FilePath, err)), nil
	}
	content := string(data)
	var applied []string

	if issue.LineNumber > 0 {
		line := framework.ReadLine(content, issue.LineNumber)
		cleaned := pruneMarker(line)
		if cleaned != line {
			lines := strings.Split(content, "\n")
			lines[issue.LineNumber-1] = cleaned
			content = strings.Join(lines, "\n")
			applied = append(applied, fmt.Sprintf("removed stale marker at line %d", issue.LineNumber))
		}
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
		applied = append(applied, "added trailing newline")
	}
	if len(applied) == 0 {
		return framework.FixFailure(fmt.Sprintf("issue %s: no documentation fix applies to %s", issue.ID, issue.FilePath)), nil
	}
	if err := os.WriteFile(issue.FilePath, []byte(content), 0o644); err != nil {
		return framework.FixFailure(fmt.Sprintf("issue %s: write %s: %v", issue.ID, issue.FilePath, err)), nil
	}
	return framework.FixSuccess(0.7, strings.Join(applied, "; "), issue.FilePath), nil
}

// ExecuteFixPlan applies a planned edit set directly.
func (d *DocsSpecialist) ExecuteFixPlan(_ context.Context, plan *framework.FixPlan) (*framework.FixResult, error) {
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
	return framework.FixSuccess(0.7, plan.Rationale, plan.FilePath), nil
}

// pruneMarker drops a trailing TODO/FIXME comment from a line, leaving code
// before the comment intact.
func pruneMarker(line string) string {
	for _, marker := range []string{"# TODO", "# FIXME", "// TODO", "// FIXME"} {
		if idx := strings.Index(line, marker); idx >= 0 {
			return strings.TrimRight(line[:idx], " \t")
		}
	}
	return line
}
