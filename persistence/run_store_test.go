package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *RunStore {
	t.Helper()
	store, err := OpenRunStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunStoreRoundTrip(t *testing.T) {
	store := openTestStore(t)

	runID, err := store.BeginRun("/work/project", 3)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	require.NoError(t, store.RecordOutcome(OutcomeRecord{
		RunID: runID, IssueID: "i-1", IssueType: "style", FilePath: "a.py",
		Accepted: true, Attempts: 1, Confidence: 0.9, Detail: "trimmed whitespace",
	}))
	require.NoError(t, store.RecordOutcome(OutcomeRecord{
		RunID: runID, IssueID: "i-2", IssueType: "security", FilePath: "b.py",
		Accepted: false, Attempts: 3, Detail: "manual review",
	}))
	require.NoError(t, store.FinishRun(runID, 1, 2))

	runs, err := store.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)
	assert.Equal(t, 3, runs[0].Issues)
	assert.Equal(t, 1, runs[0].Fixed)
	assert.Equal(t, 2, runs[0].Rejected)

	outcomes, err := store.Outcomes(runID)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
}

func TestRecordOutcomeUpsert(t *testing.T) {
	store := openTestStore(t)
	runID, err := store.BeginRun("/work/project", 1)
	require.NoError(t, err)

	require.NoError(t, store.RecordOutcome(OutcomeRecord{
		RunID: runID, IssueID: "i-1", Accepted: false, Attempts: 1, Detail: "first try",
	}))
	require.NoError(t, store.RecordOutcome(OutcomeRecord{
		RunID: runID, IssueID: "i-1", Accepted: true, Attempts: 3, Detail: "retry succeeded",
	}))

	outcomes, err := store.Outcomes(runID)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Accepted)
	assert.Equal(t, 3, outcomes[0].Attempts)
	assert.Equal(t, "retry succeeded", outcomes[0].Detail)
}

func TestFinishRunUnknownID(t *testing.T) {
	store := openTestStore(t)
	require.Error(t, store.FinishRun("no-such-run", 0, 0))
}

func TestRecentRunsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	first, err := store.BeginRun("/work/a", 1)
	require.NoError(t, err)
	second, err := store.BeginRun("/work/b", 1)
	require.NoError(t, err)

	runs, err := store.RecentRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	// Both runs may share a timestamp at second resolution; accept either
	// as long as the limit holds.
	assert.Contains(t, []string{first, second}, runs[0].ID)
}
