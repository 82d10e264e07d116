package execution

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcodex/remedy/framework"
)

// recordingSpecialist notes the interval during which each file was worked
// on so tests can assert serialization.
type recordingSpecialist struct {
	types map[framework.IssueType]bool
	hold  time.Duration

	mu        sync.Mutex
	intervals map[string][][2]time.Time
}

func newRecordingSpecialist(hold time.Duration, types ...framework.IssueType) *recordingSpecialist {
	supported := make(map[framework.IssueType]bool, len(types))
	for _, t := range types {
		supported[t] = true
	}
	return &recordingSpecialist{
		types:     supported,
		hold:      hold,
		intervals: make(map[string][][2]time.Time),
	}
}

func (r *recordingSpecialist) Name() string                                 { return "recorder" }
func (r *recordingSpecialist) SupportedTypes() map[framework.IssueType]bool { return r.types }
func (r *recordingSpecialist) CanHandle(framework.Issue) (float64, error)   { return 1, nil }

func (r *recordingSpecialist) AnalyzeAndFix(ctx context.Context, issue framework.Issue) (*framework.FixResult, error) {
	start := time.Now()
	time.Sleep(r.hold)
	r.mu.Lock()
	r.intervals[issue.FilePath] = append(r.intervals[issue.FilePath], [2]time.Time{start, time.Now()})
	r.mu.Unlock()
	return framework.FixSuccess(0.9, "recorded", issue.FilePath), nil
}

func stylePlan(path string) *framework.FixPlan {
	return &framework.FixPlan{
		FilePath:  path,
		IssueType: string(framework.IssueStyle),
		Rationale: "test plan",
	}
}

func TestExecuteAllSerializesSameFile(t *testing.T) {
	recorder := newRecordingSpecialist(15*time.Millisecond, framework.IssueStyle)
	executor := NewExecutor(framework.NewAgentContext(t.TempDir()), []framework.SubAgent{recorder}, 10)

	plans := []*framework.FixPlan{
		stylePlan("shared.py"), stylePlan("shared.py"),
		stylePlan("shared.py"), stylePlan("other.py"),
	}
	results := executor.ExecuteAll(context.Background(), plans)

	require.Len(t, results, 4)
	for _, res := range results {
		assert.True(t, res.Success)
	}

	shared := recorder.intervals["shared.py"]
	require.Len(t, shared, 3)
	for i := 1; i < len(shared); i++ {
		// Each critical section must start only after the previous ended.
		assert.False(t, shared[i][0].Before(shared[i-1][1]),
			"interval %d overlaps its predecessor", i)
	}
}

func TestExecuteAllMissingSpecialist(t *testing.T) {
	recorder := newRecordingSpecialist(0, framework.IssueStyle)
	executor := NewExecutor(framework.NewAgentContext(t.TempDir()), []framework.SubAgent{recorder}, 10)

	plans := []*framework.FixPlan{
		{FilePath: "a.py", IssueType: string(framework.IssueSecurity)},
		stylePlan("b.py"),
	}
	results := executor.ExecuteAll(context.Background(), plans)

	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	require.Len(t, results[0].RemainingIssues, 1)
	assert.Contains(t, results[0].RemainingIssues[0], `"security"`)
	assert.True(t, results[1].Success)
}

type panicSpecialist struct {
	types map[framework.IssueType]bool
}

func (p *panicSpecialist) Name() string                                 { return "panicky" }
func (p *panicSpecialist) SupportedTypes() map[framework.IssueType]bool { return p.types }
func (p *panicSpecialist) CanHandle(framework.Issue) (float64, error)   { return 1, nil }
func (p *panicSpecialist) AnalyzeAndFix(context.Context, framework.Issue) (*framework.FixResult, error) {
	panic("executor must contain this")
}

func TestExecuteAllPanicIsolation(t *testing.T) {
	panicky := &panicSpecialist{types: map[framework.IssueType]bool{framework.IssueSecurity: true}}
	recorder := newRecordingSpecialist(0, framework.IssueStyle)
	executor := NewExecutor(framework.NewAgentContext(t.TempDir()), []framework.SubAgent{panicky, recorder}, 10)

	plans := []*framework.FixPlan{
		{FilePath: "a.py", IssueType: string(framework.IssueSecurity)},
		stylePlan("b.py"),
	}
	results := executor.ExecuteAll(context.Background(), plans)

	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].RemainingIssues[0], "panic")
	assert.True(t, results[1].Success)
}

func TestExecuteAllChunking(t *testing.T) {
	recorder := newRecordingSpecialist(0, framework.IssueStyle)
	executor := NewExecutor(framework.NewAgentContext(t.TempDir()), []framework.SubAgent{recorder}, 2)

	var plans []*framework.FixPlan
	for i := 0; i < 7; i++ {
		plans = append(plans, stylePlan("f.py"))
	}
	results := executor.ExecuteAll(context.Background(), plans)
	require.Len(t, results, 7)
	for _, res := range results {
		assert.True(t, res.Success)
	}
}
