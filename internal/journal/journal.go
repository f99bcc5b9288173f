// Package journal records tracker activity in a per-repository SQLite
// database so the status and view commands can reconstruct what happened
// without parsing log files.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Entry kinds.
const (
	KindStart         = "start"
	KindStop          = "stop"
	KindCommit        = "commit"
	KindBranchCreated = "branch_created"
	KindBranchPruned  = "branch_pruned"
	KindError         = "error"
)

// Entry is one recorded tracker event.
type Entry struct {
	ID     int64
	RunID  string
	Time   time.Time
	Kind   string
	Detail string
}

// schema contains the DDL executed on first open. Using IF NOT EXISTS makes
// it safe to run on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS events (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id      TEXT NOT NULL,
    occurred_at TIMESTAMP NOT NULL,
    kind        TEXT NOT NULL,
    detail      TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS events_occurred_at ON events(occurred_at);
`

// Journal is an append-only activity log backed by a local SQLite database
// in WAL mode.
type Journal struct {
	db *sql.DB
}

// Open opens (or creates) the journal database at dbPath, enables WAL mode
// and a busy timeout, and creates the schema if needed.
func Open(ctx context.Context, dbPath string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("journal: create directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("journal: open database: %w", err)
	}

	// SQLite supports a single writer; one connection avoids SQLITE_BUSY
	// contention between pooled connections that each need their own PRAGMAs.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("journal: %s: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: create schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Record appends an entry.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO events (run_id, occurred_at, kind, detail) VALUES (?, ?, ?, ?)",
		e.RunID, e.Time.UTC().Format(time.RFC3339Nano), e.Kind, e.Detail)
	if err != nil {
		return fmt.Errorf("journal: record %s: %w", e.Kind, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		"SELECT id, run_id, occurred_at, kind, detail FROM events ORDER BY id DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("journal: query recent: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts string
		if err := rows.Scan(&e.ID, &e.RunID, &ts, &e.Kind, &e.Detail); err != nil {
			return nil, fmt.Errorf("journal: scan entry: %w", err)
		}
		if e.Time, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("journal: parse timestamp %q: %w", ts, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountByKind returns how many entries of the given kind exist.
func (j *Journal) CountByKind(ctx context.Context, kind string) (int, error) {
	var n int
	err := j.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM events WHERE kind = ?", kind).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("journal: count %s: %w", kind, err)
	}
	return n, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
