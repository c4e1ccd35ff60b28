// Package store records pipeline invocations in a local SQLite ledger.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Run is one recorded pipeline invocation.
type Run struct {
	ID         string
	Command    string
	Args       string
	Films      int
	Status     string
	Error      string
	CreatedAt  time.Time
	FinishedAt *time.Time
}

// Run statuses.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// Store is the SQLite-backed run ledger.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the ledger database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "store: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: exec %s", pragma)
		}
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	command     TEXT NOT NULL,
	args        TEXT NOT NULL DEFAULT '',
	films       INTEGER NOT NULL DEFAULT 0,
	status      TEXT NOT NULL DEFAULT 'running',
	error       TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	finished_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

func (s *Store) migrate() error {
	_, err := s.db.Exec(migration)
	return eris.Wrap(err, "store: migrate")
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// StartRun inserts a running ledger row and returns its id.
func (s *Store) StartRun(ctx context.Context, command, args string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, command, args, status) VALUES (?, ?, ?, ?)`,
		id, command, args, StatusRunning,
	)
	if err != nil {
		return "", eris.Wrap(err, "store: start run")
	}
	return id, nil
}

// FinishRun marks a run complete or failed with its final film count.
func (s *Store) FinishRun(ctx context.Context, id string, films int, runErr error) error {
	status := StatusComplete
	errMsg := ""
	if runErr != nil {
		status = StatusFailed
		errMsg = runErr.Error()
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET films = ?, status = ?, error = ?, finished_at = datetime('now') WHERE id = ?`,
		films, status, errMsg, id,
	)
	return eris.Wrap(err, "store: finish run")
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, command, args, films, status, error, created_at, finished_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "store: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.Command, &r.Args, &r.Films, &r.Status, &r.Error, &r.CreatedAt, &finished); err != nil {
			return nil, eris.Wrap(err, "store: scan run")
		}
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "store: iterate runs")
}
