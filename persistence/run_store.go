// Package persistence records pipeline run history in SQLite so operators
// can audit what the tool changed and when.
package persistence

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// RunRecord summarizes one pipeline invocation.
type RunRecord struct {
	ID          string
	ProjectPath string
	StartedAt   time.Time
	FinishedAt  time.Time
	Issues      int
	Fixed       int
	Rejected    int
}

// OutcomeRecord is the per-issue result within a run.
type OutcomeRecord struct {
	RunID      string
	IssueID    string
	IssueType  string
	FilePath   string
	Accepted   bool
	Attempts   int
	Confidence float64
	Detail     string
}

// RunStore persists run history in a SQLite database.
type RunStore struct {
	db *sql.DB
}

// OpenRunStore opens/creates the database at dbPath.
func OpenRunStore(dbPath string) (*RunStore, error) {
	if dbPath == "" {
		return nil, errors.New("run store path required")
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, err
	}
	store := &RunStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *RunStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		project_path TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP,
		issues INTEGER DEFAULT 0,
		fixed INTEGER DEFAULT 0,
		rejected INTEGER DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS outcomes (
		run_id TEXT NOT NULL,
		issue_id TEXT NOT NULL,
		issue_type TEXT,
		file_path TEXT,
		accepted BOOLEAN,
		attempts INTEGER,
		confidence REAL,
		detail TEXT,
		PRIMARY KEY(run_id, issue_id),
		FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (s *RunStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun records the start of a pipeline invocation and returns its id.
func (s *RunStore) BeginRun(projectPath string, issues int) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO runs (id, project_path, started_at, issues) VALUES (?, ?, ?, ?)`,
		id, projectPath, time.Now().UTC(), issues,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// RecordOutcome upserts the result for one issue within a run.
func (s *RunStore) RecordOutcome(outcome OutcomeRecord) error {
	if outcome.RunID == "" || outcome.IssueID == "" {
		return errors.New("run id and issue id required")
	}
	_, err := s.db.Exec(`
	INSERT INTO outcomes (run_id, issue_id, issue_type, file_path, accepted, attempts, confidence, detail)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id, issue_id) DO UPDATE SET
		accepted=excluded.accepted,
		attempts=excluded.attempts,
		confidence=excluded.confidence,
		detail=excluded.detail
	`,
		outcome.RunID, outcome.IssueID, outcome.IssueType, outcome.FilePath,
		outcome.Accepted, outcome.Attempts, outcome.Confidence, outcome.Detail,
	)
	return err
}

// FinishRun stamps the run with its end time and tallies.
func (s *RunStore) FinishRun(runID string, fixed, rejected int) error {
	res, err := s.db.Exec(
		`UPDATE runs SET finished_at = ?, fixed = ?, rejected = ? WHERE id = ?`,
		time.Now().UTC(), fixed, rejected, runID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.New("unknown run id " + runID)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *RunStore) RecentRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(`
	SELECT id, project_path, started_at, COALESCE(finished_at, started_at), issues, fixed, rejected
	FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.ProjectPath, &r.StartedAt, &r.FinishedAt, &r.Issues, &r.Fixed, &r.Rejected); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Outcomes returns the per-issue results for a run.
func (s *RunStore) Outcomes(runID string) ([]OutcomeRecord, error) {
	rows, err := s.db.Query(`
	SELECT run_id, issue_id, issue_type, file_path, accepted, attempts, confidence, detail
	FROM outcomes WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []OutcomeRecord
	for rows.Next() {
		var o OutcomeRecord
		if err := rows.Scan(&o.RunID, &o.IssueID, &o.IssueType, &o.FilePath, &o.Accepted, &o.Attempts, &o.Confidence, &o.Detail); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}
