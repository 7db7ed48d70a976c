package storage

import (
	"context"
	"database/sql"
	"fmt"
	"minelens/internal/structures"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

const timestampLayout = "2006-01-02 15:04:05"

// SQLiteStorage keeps the recompute audit log and alert resolutions.
type SQLiteStorage struct {
	db *sql.DB
}

// parseTimestamp accepts both the RFC3339 form modernc returns for DATETIME
// columns and the plain UTC form this package writes.
func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse(timestampLayout, s); err == nil {
		return t
	}
	return time.Time{}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// NewStorageProvider opens the database configured under storage.dbPath.
func NewStorageProvider(conf *structures.Config) (*SQLiteStorage, error) {
	if dir := filepath.Dir(conf.Storage.DbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database dir: %w", err)
		}
	}
	return NewSQLiteStorage(conf.Storage.DbPath)
}

// NewSQLiteStorage opens a SQLite database at the given path, runs
// migrations, and enables WAL mode.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// single connection avoids SQLITE_BUSY between our own writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &SQLiteStorage{db: db}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

func (s *SQLiteStorage) migrate() error {
	// totals are u64 and stored as TEXT since INTEGER is signed
	schema := `
	CREATE TABLE IF NOT EXISTS recompute_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		dry_run INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		total TEXT NOT NULL DEFAULT '0',
		counted INTEGER NOT NULL DEFAULT 0,
		skipped_zero INTEGER NOT NULL DEFAULT 0,
		malformed INTEGER NOT NULL DEFAULT 0,
		signature TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_recompute_runs_started_at ON recompute_runs(started_at);

	CREATE TABLE IF NOT EXISTS resolved_alerts (
		id TEXT PRIMARY KEY,
		resolved_at DATETIME NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// InsertRecomputeRun stores run and sets its ID.
func (s *SQLiteStorage) InsertRecomputeRun(ctx context.Context, run *RecomputeRun) error {
	query := `
	INSERT INTO recompute_runs (
		started_at, finished_at, dry_run, status, total,
		counted, skipped_zero, malformed, signature, error
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		formatTimestamp(run.StartedAt), formatTimestamp(run.FinishedAt), run.DryRun, run.Status,
		strconv.FormatUint(run.Total, 10),
		run.Counted, run.SkippedZero, run.Malformed, run.Signature, run.Error,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	run.ID = id
	return nil
}

// RecentRecomputeRuns returns up to limit runs, newest first.
func (s *SQLiteStorage) RecentRecomputeRuns(ctx context.Context, limit int) ([]*RecomputeRun, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
	SELECT id, started_at, finished_at, dry_run, status, total,
		counted, skipped_zero, malformed, signature, error
	FROM recompute_runs
	ORDER BY id DESC
	LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]*RecomputeRun, 0)
	for rows.Next() {
		r := &RecomputeRun{}
		var startedAt, finishedAt, total string
		err := rows.Scan(&r.ID, &startedAt, &finishedAt, &r.DryRun, &r.Status, &total,
			&r.Counted, &r.SkippedZero, &r.Malformed, &r.Signature, &r.Error)
		if err != nil {
			return nil, err
		}
		r.StartedAt = parseTimestamp(startedAt)
		r.FinishedAt = parseTimestamp(finishedAt)
		if r.Total, err = strconv.ParseUint(total, 10, 64); err != nil {
			return nil, fmt.Errorf("run %d: bad total %q: %w", r.ID, total, err)
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// ResolveAlert records id as resolved; resolving twice keeps the first time.
func (s *SQLiteStorage) ResolveAlert(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO resolved_alerts (id, resolved_at) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`,
		id, formatTimestamp(at))
	return err
}

// ResolvedAlerts returns resolution times keyed by alert id.
func (s *SQLiteStorage) ResolvedAlerts(ctx context.Context) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, resolved_at FROM resolved_alerts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	resolved := make(map[string]time.Time)
	for rows.Next() {
		var id, at string
		if err := rows.Scan(&id, &at); err != nil {
			return nil, err
		}
		resolved[id] = parseTimestamp(at)
	}
	return resolved, rows.Err()
}

// PruneResolvedAlerts drops resolutions older than cutoff.
func (s *SQLiteStorage) PruneResolvedAlerts(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM resolved_alerts WHERE resolved_at < ?`, formatTimestamp(cutoff))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
