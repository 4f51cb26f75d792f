// Package history records the outcome of checker runs in a SQLite database.
// Only outcomes are stored; struct declarations never outlive their run.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"mlccheck/internal/logging"
)

// Status is the outcome of a run.
type Status string

const (
	StatusOK     Status = "ok"     // every file validated
	StatusFailed Status = "failed" // a lifecycle violation was found
	StatusError  Status = "error"  // the run could not complete (I/O, extraction)
)

// Run is one recorded checker invocation.
type Run struct {
	ID          string
	StartedAt   time.Time
	Duration    time.Duration
	Files       []string
	Annotations int
	Warnings    int
	Status      Status
	Message     string
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Store manages the run history database.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// Open creates or opens a history store at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, dbPath: dbPath}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logging.History("opened run history at %s", dbPath)
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		files_json TEXT NOT NULL,
		annotations INTEGER NOT NULL,
		warnings INTEGER NOT NULL,
		status TEXT NOT NULL,
		message TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`)
	return err
}

// Record stores r, assigning an ID when it has none.
func (s *Store) Record(ctx context.Context, r *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = NewRunID()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	files, err := json.Marshal(r.Files)
	if err != nil {
		return fmt.Errorf("failed to encode files: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, duration_ms, files_json, annotations, warnings, status, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.StartedAt.UnixMilli(), r.Duration.Milliseconds(), string(files),
		r.Annotations, r.Warnings, string(r.Status), r.Message)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	logging.Get(logging.CategoryHistory).With("run_id", r.ID).Info("recorded run with status %s", r.Status)
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, duration_ms, files_json, annotations, warnings, status, message
		FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r         Run
			startedMs int64
			durMs     int64
			filesJSON string
			status    string
			message   sql.NullString
		)
		if err := rows.Scan(&r.ID, &startedMs, &durMs, &filesJSON, &r.Annotations, &r.Warnings, &status, &message); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(filesJSON), &r.Files); err != nil {
			logging.HistoryError("run %s has unreadable file list: %v", r.ID, err)
		}
		r.StartedAt = time.UnixMilli(startedMs)
		r.Duration = time.Duration(durMs) * time.Millisecond
		r.Status = Status(status)
		r.Message = message.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
