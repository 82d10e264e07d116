package runtime

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcodex/remedy/framework"
)

func newTestRuntime(t *testing.T, dir string) *Runtime {
	t.Helper()
	rt, err := New(context.Background(), Config{ProjectPath: dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })
	return rt
}

func writeProjectFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func styleIssueAt(path string, line int) framework.Issue {
	issue := framework.NewIssue(framework.IssueStyle, framework.PriorityLow, "trailing whitespace")
	issue.FilePath = path
	issue.LineNumber = line
	return issue
}

func TestConfigNormalize(t *testing.T) {
	cfg := Config{}
	require.NoError(t, cfg.Normalize())
	assert.True(t, filepath.IsAbs(cfg.ProjectPath))
	assert.NotEmpty(t, cfg.ConfigPath)
	assert.NotEmpty(t, cfg.LogPath)

	assert.Equal(t, "/abs/path.db", cfg.resolve("/abs/path.db"))
	assert.Equal(t, filepath.Join(cfg.ProjectPath, "rel.db"), cfg.resolve("rel.db"))
}

func TestRunAcceptsStyleFix(t *testing.T) {
	dir := t.TempDir()
	path := writeProjectFile(t, dir, "demo.py", "def f():   \n    return 1\n")
	rt := newTestRuntime(t, dir)

	report, err := rt.Run(context.Background(), []framework.Issue{styleIssueAt(path, 1)})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Accepted)
	assert.Equal(t, 0, report.Rejected)
	require.Len(t, report.Outcomes, 1)
	assert.True(t, report.Outcomes[0].Accepted)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "def f():\n    return 1\n", string(data))
}

func TestRunRollsBackRejectedEdit(t *testing.T) {
	dir := t.TempDir()
	// The whitespace fix succeeds, but the file still carries content the
	// validator rejects on both secondary checks, forcing a rollback.
	original := "x = eval(data)  # TODO sanitize\ny = 1   \n"
	path := writeProjectFile(t, dir, "tainted.py", original)
	rt := newTestRuntime(t, dir)

	report, err := rt.Run(context.Background(), []framework.Issue{styleIssueAt(path, 2)})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Accepted)
	assert.Equal(t, 1, report.Rejected)
	require.Len(t, report.Outcomes, 1)
	assert.Contains(t, report.Outcomes[0].Detail, "validation rejected")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
}

func TestRunSameFileRejectionRollsBackEveryPlan(t *testing.T) {
	dir := t.TempDir()
	// Two fixable whitespace plans land on one file whose content the
	// validator rejects. The file-level verdict must reject both plans and
	// restore the original; no outcome may claim a fix that the rollback
	// removed from disk.
	original := "x = eval(data)  # TODO sanitize\ny = 1   \nz = 2   \n"
	path := writeProjectFile(t, dir, "tainted.py", original)
	rt := newTestRuntime(t, dir)

	report, err := rt.Run(context.Background(), []framework.Issue{
		styleIssueAt(path, 2),
		styleIssueAt(path, 3),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Accepted)
	assert.Equal(t, 2, report.Rejected)
	require.Len(t, report.Outcomes, 2)
	for _, out := range report.Outcomes {
		assert.False(t, out.Accepted)
		assert.Contains(t, out.Detail, "validation rejected")
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
}

func TestRunSameFileFixesShareAcceptance(t *testing.T) {
	dir := t.TempDir()
	path := writeProjectFile(t, dir, "demo.py", "a = 1   \nb = 2   \n")
	rt := newTestRuntime(t, dir)

	report, err := rt.Run(context.Background(), []framework.Issue{
		styleIssueAt(path, 1),
		styleIssueAt(path, 2),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Accepted)
	assert.Equal(t, 0, report.Rejected)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a = 1\nb = 2\n", string(data))
}

func TestRunSecurityIssueGoesToManualReview(t *testing.T) {
	dir := t.TempDir()
	path := writeProjectFile(t, dir, "auth.py", "token = input()\n")
	rt := newTestRuntime(t, dir)

	issue := framework.NewIssue(framework.IssueSecurity, framework.PriorityMedium, "unvalidated input")
	issue.FilePath = path
	issue.LineNumber = 1

	report, err := rt.Run(context.Background(), []framework.Issue{issue})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Accepted)
	assert.Equal(t, 1, report.Rejected)
	assert.Contains(t, report.Outcomes[0].Detail, "manual review")
}

func TestRunRecordsHistory(t *testing.T) {
	dir := t.TempDir()
	path := writeProjectFile(t, dir, "demo.py", "a = 1   \n")
	rt := newTestRuntime(t, dir)

	report, err := rt.Run(context.Background(), []framework.Issue{styleIssueAt(path, 1)})
	require.NoError(t, err)

	runs, err := rt.Store.RecentRuns(5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, report.RunID, runs[0].ID)
	assert.Equal(t, 1, runs[0].Issues)
	assert.Equal(t, report.Accepted, runs[0].Fixed)

	outcomes, err := rt.Store.Outcomes(report.RunID)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	// The specialist's confidence travels with the outcome into the store.
	require.Len(t, report.Outcomes, 1)
	assert.InDelta(t, 0.9, report.Outcomes[0].Confidence, 0.001)
	assert.InDelta(t, 0.9, outcomes[0].Confidence, 0.001)
}

func TestDispatchUsesCoordinator(t *testing.T) {
	dir := t.TempDir()
	path := writeProjectFile(t, dir, "demo.py", "a = 1   \n")
	rt := newTestRuntime(t, dir)

	result, err := rt.Dispatch(context.Background(), []framework.Issue{styleIssueAt(path, 1)})
	require.NoError(t, err)
	assert.True(t, result.Success)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a = 1\n", string(data))
}
