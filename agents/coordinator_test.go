package agents

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcodex/remedy/framework"
)

func newTestCoordinator(t *testing.T, reg *Registry) *Coordinator {
	t.Helper()
	return NewCoordinator(reg, NewTracker(nil), framework.NewAgentContext(t.TempDir()), CoordinatorConfig{})
}

func registryWith(specialists ...*stubSpecialist) *Registry {
	reg := NewRegistry()
	for _, s := range specialists {
		specialist := s
		reg.Register(specialist.name, func(ctx *framework.AgentContext) framework.SubAgent {
			return specialist
		})
	}
	return reg
}

func supporting(types ...framework.IssueType) map[framework.IssueType]bool {
	m := make(map[framework.IssueType]bool, len(types))
	for _, t := range types {
		m[t] = true
	}
	return m
}

func TestHandleIssuesUnknownTypeNamesIt(t *testing.T) {
	reg := registryWith(&stubSpecialist{name: "style", types: supporting(framework.IssueStyle)})
	coordinator := newTestCoordinator(t, reg)

	issue := framework.NewIssue(framework.IssueSecurity, framework.PriorityHigh, "tainted input")
	result, err := coordinator.HandleIssues(context.Background(), []framework.Issue{issue})
	require.NoError(t, err)
	assert.False(t, result.Success)
	require.Len(t, result.RemainingIssues, 1)
	assert.Contains(t, result.RemainingIssues[0], `"security"`)
	assert.Contains(t, result.RemainingIssues[0], issue.ID)
}

func TestHandleIssuesConfidenceErrorCountsAsZero(t *testing.T) {
	var winner string
	broken := &stubSpecialist{
		name:  "broken",
		types: supporting(framework.IssueStyle),
		handle: func(framework.Issue) (float64, error) {
			return 0.99, errors.New("confidence probe failed")
		},
		fix: func(ctx context.Context, issue framework.Issue) (*framework.FixResult, error) {
			winner = "broken"
			return framework.FixSuccess(0.9, "fix", issue.FilePath), nil
		},
	}
	healthy := &stubSpecialist{
		name:  "healthy",
		types: supporting(framework.IssueStyle),
		handle: func(framework.Issue) (float64, error) {
			return 0.3, nil
		},
		fix: func(ctx context.Context, issue framework.Issue) (*framework.FixResult, error) {
			winner = "healthy"
			return framework.FixSuccess(0.3, "fix", issue.FilePath), nil
		},
	}
	coordinator := newTestCoordinator(t, registryWith(broken, healthy))

	issue := framework.NewIssue(framework.IssueStyle, framework.PriorityLow, "whitespace")
	result, err := coordinator.HandleIssues(context.Background(), []framework.Issue{issue})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "healthy", winner)
}

func TestHandleIssuesTieGoesToEarliestRegistered(t *testing.T) {
	var winner string
	mk := func(name string) *stubSpecialist {
		return &stubSpecialist{
			name:  name,
			types: supporting(framework.IssueStyle),
			handle: func(framework.Issue) (float64, error) {
				return 0.8, nil
			},
			fix: func(ctx context.Context, issue framework.Issue) (*framework.FixResult, error) {
				winner = name
				return framework.FixSuccess(0.8, "fix", issue.FilePath), nil
			},
		}
	}
	coordinator := newTestCoordinator(t, registryWith(mk("first"), mk("second")))

	issue := framework.NewIssue(framework.IssueStyle, framework.PriorityLow, "whitespace")
	_, err := coordinator.HandleIssues(context.Background(), []framework.Issue{issue})
	require.NoError(t, err)
	assert.Equal(t, "first", winner)
}

func TestHandleIssuesPanicDowngradedToFailure(t *testing.T) {
	panicky := &stubSpecialist{
		name:  "panicky",
		types: supporting(framework.IssueStyle),
		fix: func(ctx context.Context, issue framework.Issue) (*framework.FixResult, error) {
			panic("boom")
		},
	}
	sibling := &stubSpecialist{
		name:  "sibling",
		types: supporting(framework.IssueDocumentation),
		handle: func(framework.Issue) (float64, error) {
			return 0.9, nil
		},
	}
	coordinator := newTestCoordinator(t, registryWith(panicky, sibling))

	issues := []framework.Issue{
		framework.NewIssue(framework.IssueStyle, framework.PriorityLow, "whitespace"),
		framework.NewIssue(framework.IssueDocumentation, framework.PriorityLow, "missing newline"),
	}
	result, err := coordinator.HandleIssues(context.Background(), issues)
	require.NoError(t, err)
	assert.False(t, result.Success)
	require.Len(t, result.RemainingIssues, 1)
	assert.Contains(t, result.RemainingIssues[0], "panic")
	// The sibling issue still got its fix applied.
	assert.Len(t, result.FixesApplied, 1)
}

func TestHandleIssuesEveryIssueGetsOutcome(t *testing.T) {
	flaky := &stubSpecialist{
		name:  "flaky",
		types: supporting(framework.IssueStyle),
		handle: func(framework.Issue) (float64, error) {
			return 0.7, nil
		},
		fix: func(ctx context.Context, issue framework.Issue) (*framework.FixResult, error) {
			if issue.Message == "fail" {
				return nil, fmt.Errorf("cannot fix %s", issue.ID)
			}
			return framework.FixSuccess(0.7, "fixed "+issue.ID, issue.FilePath), nil
		},
	}
	coordinator := newTestCoordinator(t, registryWith(flaky))

	issues := []framework.Issue{
		framework.NewIssue(framework.IssueStyle, framework.PriorityLow, "ok"),
		framework.NewIssue(framework.IssueStyle, framework.PriorityLow, "fail"),
		framework.NewIssue(framework.IssueStyle, framework.PriorityLow, "ok"),
	}
	result, err := coordinator.HandleIssues(context.Background(), issues)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Len(t, result.FixesApplied, 2)
	assert.Len(t, result.RemainingIssues, 1)
}

func TestHandleIssuesEmptyBatch(t *testing.T) {
	coordinator := newTestCoordinator(t, DefaultRegistry())
	result, err := coordinator.HandleIssues(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
}
