// Package ledger persists a record of every orchestrator run to a local
// SQLite database, so repeated invocations over the same audio file can be
// audited after the fact.
package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps a SQLite connection holding the run ledger.
type DB struct {
	*sql.DB
}

// Open connects to (and if necessary creates) the ledger database at path.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping ledger: %w", err)
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
		return nil, fmt.Errorf("failed to initialize ledger schema: %w", err)
	}

	return &DB{DB: db}, nil
}

// Run is one recorded orchestrator invocation.
type Run struct {
	ID          int64
	AudioRef    string
	Engine      string
	Detector    string
	StartedAt   time.Time
	FinishedAt  time.Time
	NumSegments int
	Language    string
	Err         string
}

// RecordRun inserts a completed or failed run. Err is empty on success.
func (db *DB) RecordRun(ctx context.Context, run Run) (int64, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO runs (audio_ref, engine, detector, started_at, finished_at, num_segments, language, err)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.AudioRef, run.Engine, run.Detector, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.NumSegments, run.Language, run.Err)
	if err != nil {
		return 0, fmt.Errorf("failed to record run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted run id: %w", err)
	}
	return id, nil
}

// RunsForAudio returns every recorded run against ref, most recent first.
func (db *DB) RunsForAudio(ctx context.Context, ref string) ([]Run, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, audio_ref, engine, detector, started_at, finished_at, num_segments, language, err
		FROM runs
		WHERE audio_ref = ?
		ORDER BY started_at DESC
	`, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.AudioRef, &r.Engine, &r.Detector, &r.StartedAt, &r.FinishedAt, &r.NumSegments, &r.Language, &r.Err); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.DB.Close()
}
