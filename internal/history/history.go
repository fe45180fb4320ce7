// Package history keeps a local ledger of job runs in SQLite, one row per
// run, fed by the CLI wrapping the job callbacks.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Outcome is the terminal state recorded for a run.
const (
	OutcomeCompleted = "completed"
	OutcomeAborted   = "aborted"
	OutcomeFailed    = "failed"
)

// Run is one recorded job execution.
type Run struct {
	ID         string
	Kind       string
	Target     string
	Backend    string
	Total      int
	Succeeded  int
	Failed     int
	Outcome    string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Store wraps the history database.
type Store struct {
	db *sql.DB
}

// Open connects to the database at path, creating it and its directory as
// needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Start records a new run and returns its id.
func (s *Store) Start(ctx context.Context, kind, target, backend string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, target, backend, outcome, started_at)
		 VALUES (?, ?, ?, ?, '', ?)`,
		id, kind, target, backend, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return id, nil
}

// SetTotal stores the selected chapter count once the pipeline reports it.
func (s *Store) SetTotal(ctx context.Context, id string, total int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET total = ? WHERE id = ?`, total, id)
	return err
}

// Finish closes out a run with its counters and outcome.
func (s *Store) Finish(ctx context.Context, id string, succeeded, failed int, outcome string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET succeeded = ?, failed = ?, outcome = ?, finished_at = ? WHERE id = ?`,
		succeeded, failed, outcome, time.Now().UTC(), id)
	return err
}

// ListRecent returns the most recent runs, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, target, backend, total, succeeded, failed, outcome, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.Kind, &r.Target, &r.Backend, &r.Total, &r.Succeeded, &r.Failed, &r.Outcome, &r.StartedAt, &finished); err != nil {
			return nil, err
		}
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Clear deletes every recorded run and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM runs`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
