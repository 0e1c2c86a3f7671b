// Package history provides SQLite-backed storage for past delegation runs.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ShayCichocki/dispatch/pkg/models"
)

// Run is one recorded delegation run.
type Run struct {
	// ID is the unique identifier for this run.
	ID string
	// Task is the overall task the caller submitted.
	Task string
	// Analysis is the orchestrator's decomposition rationale.
	Analysis string
	// Model is the model name the run used.
	Model string
	// Workers holds the per-task results, in dispatch order.
	Workers []models.WorkerResult
	// InputTokens and OutputTokens are the run's total token usage.
	InputTokens  int64
	OutputTokens int64
	// CreatedAt is when the run completed.
	CreatedAt time.Time
}

// Store provides SQLite-backed storage for delegation runs.
type Store struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// DefaultDBPath returns the XDG data path for the history database.
func DefaultDBPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "dispatch", "history.db")
}

// Open opens the history database at the given path, creating parent
// directories and the schema if needed. WAL mode is enabled for
// concurrent reads.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	store := &Store{
		conn: conn,
		path: path,
	}

	if err := store.migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	return store, nil
}

// Path returns the path to the database file.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	task TEXT NOT NULL,
	analysis TEXT,
	model TEXT,
	input_tokens INTEGER NOT NULL DEFAULT 0,
	output_tokens INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS worker_results (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	kind TEXT NOT NULL,
	description TEXT NOT NULL,
	output TEXT,
	PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// migrate creates the schema.
func (s *Store) migrate() error {
	if _, err := s.conn.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SaveRun records a completed run and returns its generated ID.
func (s *Store) SaveRun(run *Run) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := run.ID
	if id == "" {
		id = uuid.New().String()
	}
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO runs (id, task, analysis, model, input_tokens, output_tokens, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, run.Task, run.Analysis, run.Model, run.InputTokens, run.OutputTokens, createdAt,
	)
	if err != nil {
		tx.Rollback()
		return "", fmt.Errorf("insert run: %w", err)
	}

	for i, w := range run.Workers {
		_, err = tx.Exec(
			`INSERT INTO worker_results (run_id, position, kind, description, output)
			 VALUES (?, ?, ?, ?, ?)`,
			id, i, w.Kind, w.Description, w.Output,
		)
		if err != nil {
			tx.Rollback()
			return "", fmt.Errorf("insert worker result %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}

	return id, nil
}

// GetRun loads one run with its worker results.
func (s *Store) GetRun(id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run := &Run{}
	row := s.conn.QueryRow(
		`SELECT id, task, analysis, model, input_tokens, output_tokens, created_at
		 FROM runs WHERE id = ?`, id,
	)
	err := row.Scan(&run.ID, &run.Task, &run.Analysis, &run.Model,
		&run.InputTokens, &run.OutputTokens, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	rows, err := s.conn.Query(
		`SELECT kind, description, output FROM worker_results
		 WHERE run_id = ? ORDER BY position`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("query worker results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var w models.WorkerResult
		if err := rows.Scan(&w.Kind, &w.Description, &w.Output); err != nil {
			return nil, fmt.Errorf("scan worker result: %w", err)
		}
		run.Workers = append(run.Workers, w)
	}
	return run, rows.Err()
}

// ListRuns returns the most recent runs, newest first, without their
// worker results.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.conn.Query(
		`SELECT id, task, analysis, model, input_tokens, output_tokens, created_at
		 FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		err := rows.Scan(&run.ID, &run.Task, &run.Analysis, &run.Model,
			&run.InputTokens, &run.OutputTokens, &run.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run and its worker results.
func (s *Store) DeleteRun(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.conn.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}
