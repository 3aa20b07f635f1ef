// Package history maintains a local SQLite index of completed runs so
// repeated CI invocations can be inspected after the fact without
// trawling artifact directories. Recording is best-effort and opt-in;
// it never changes a run's outcome.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/probekit/appctl/internal/result"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema (runs table + started index)
const currentSchemaVersion = 1

// Entry is one recorded run.
type Entry struct {
	RunID     string        `json:"run_id"`
	Command   string        `json:"command"`
	Target    string        `json:"target"`
	Status    result.Status `json:"status"`
	ErrorCode string        `json:"error_code,omitempty"`
	TotalMS   int64         `json:"total_ms"`
	StartedAt time.Time     `json:"started_at"`
}

// Store is the run-history index.
// Uses SQLite with WAL mode; the connection pool is capped at one
// writer to avoid SQLITE_BUSY under concurrent daemon recording.
type Store struct {
	db *sql.DB
}

// Open creates or opens the history database at path. Applies required
// pragmas and migrations; idempotent.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to history database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts one completed run. Duplicate run IDs are rejected by
// the primary key: run IDs are unique per invocation by contract.
func (s *Store) Record(ctx context.Context, res *result.CommandResult) error {
	code := ""
	if res.Error != nil {
		code = string(res.Error.Code)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, command, target, status, error_code, total_ms, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		res.RunID, res.Command, res.Target, string(res.Status), code,
		res.Timing.Total, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", res.RunID, err)
	}
	return nil
}

// Recent returns the most recent runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, command, target, status, error_code, total_ms, started_at
		FROM runs ORDER BY started_at DESC, run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var status, started string
		if err := rows.Scan(&e.RunID, &e.Command, &e.Target, &status, &e.ErrorCode, &e.TotalMS, &started); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.Status = result.Status(status)
		if ts, err := time.Parse(time.RFC3339Nano, started); err == nil {
			e.StartedAt = ts
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("executing %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and stamps the schema
// version. Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("setting user_version: %w", err)
	}
	return nil
}
