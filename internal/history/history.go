// Package history persists a best-effort, read-only audit trail of
// Coordinator runs to a SQLite database. It is grounded on the teacher
// project's internal/sync state database (state.go, baseline.go): the same
// WAL-mode, sole-writer SQLite setup and goose migration flow, retargeted
// from "authoritative sync baseline" to "observability log that a sync can
// run correctly without". A missing or corrupt history database degrades to
// "no history available"; it is never consulted by the differ or resolver.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver, registers as "sqlite"

	"rsyncsync/internal/executor"
)

// Record describes the outcome of one Coordinator run.
type Record struct {
	RunID     string
	Profile   string
	StartedAt time.Time
	EndedAt   time.Time
	DryRun    bool
	Summary   executor.Summary
	Err       string
}

// Store is the sole writer to the history database for one profile.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if necessary) the history database at dbPath and
// applies pending migrations.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)",
		dbPath,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("history: opening database %s: %w", dbPath, err)
	}

	db.SetMaxOpenConns(1)

	if err := runMigrations(context.Background(), db, logger); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

const sqlInsertRun = `INSERT INTO runs
	(run_id, profile, started_at, ended_at, dry_run, pushed, pulled,
	 deleted_local, deleted_remote, conflicts, skipped, errors, err_message)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Record inserts one run record.
func (s *Store) Record(ctx context.Context, r Record) error {
	_, err := s.db.ExecContext(ctx, sqlInsertRun,
		r.RunID, r.Profile, r.StartedAt.UnixNano(), r.EndedAt.UnixNano(), r.DryRun,
		r.Summary.Pushed, r.Summary.Pulled, r.Summary.DeletedLocal, r.Summary.DeletedRemote,
		r.Summary.Conflicts, r.Summary.Skipped, r.Summary.Errors, r.Err,
	)
	if err != nil {
		return fmt.Errorf("history: recording run: %w", err)
	}

	return nil
}

const sqlListRuns = `SELECT run_id, profile, started_at, ended_at, dry_run, pushed, pulled,
	deleted_local, deleted_remote, conflicts, skipped, errors, err_message
	FROM runs WHERE profile = ? ORDER BY started_at DESC LIMIT ?`

// List returns up to limit most recent runs for profile, newest first.
func (s *Store) List(ctx context.Context, profile string, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, sqlListRuns, profile, limit)
	if err != nil {
		return nil, fmt.Errorf("history: listing runs: %w", err)
	}
	defer rows.Close()

	var records []Record

	for rows.Next() {
		var (
			r                  Record
			startedNS, endedNS int64
		)

		if err := rows.Scan(
			&r.RunID, &r.Profile, &startedNS, &endedNS, &r.DryRun,
			&r.Summary.Pushed, &r.Summary.Pulled, &r.Summary.DeletedLocal, &r.Summary.DeletedRemote,
			&r.Summary.Conflicts, &r.Summary.Skipped, &r.Summary.Errors, &r.Err,
		); err != nil {
			return nil, fmt.Errorf("history: scanning run row: %w", err)
		}

		r.StartedAt = time.Unix(0, startedNS).UTC()
		r.EndedAt = time.Unix(0, endedNS).UTC()
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterating runs: %w", err)
	}

	return records, nil
}
