package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const createAttemptsTableSQL = `
CREATE TABLE IF NOT EXISTS upload_attempts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	archive_id TEXT,
	endpoint TEXT NOT NULL,
	outcome TEXT NOT NULL,
	status_note TEXT,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_attempts_created ON upload_attempts(created_at)`

// SQLiteJournal persists upload attempts in a local SQLite database
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal opens (creating if necessary) the journal database at the
// given path and ensures the schema exists
func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	if _, err := db.Exec(createAttemptsTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create attempts table: %w", err)
	}

	return &SQLiteJournal{db: db}, nil
}

// Record appends an attempt to the journal
func (j *SQLiteJournal) Record(ctx context.Context, attempt Attempt) error {
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO upload_attempts (kind, archive_id, endpoint, outcome, status_note, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := j.db.ExecContext(ctx, query,
		string(attempt.Kind), attempt.ArchiveID, attempt.Endpoint,
		string(attempt.Outcome), attempt.StatusNote, attempt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record upload attempt: %w", err)
	}

	return nil
}

// Recent returns up to limit attempts, newest first
func (j *SQLiteJournal) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	if limit < 1 {
		limit = 50
	}

	query := `
		SELECT kind, archive_id, endpoint, outcome, status_note, created_at
		FROM upload_attempts
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := j.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query upload attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var attempt Attempt
		var kind, outcome string
		if err := rows.Scan(&kind, &attempt.ArchiveID, &attempt.Endpoint, &outcome, &attempt.StatusNote, &attempt.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan upload attempt: %w", err)
		}
		attempt.Kind = AttemptKind(kind)
		attempt.Outcome = Outcome(outcome)
		attempts = append(attempts, attempt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating upload attempts: %w", err)
	}

	return attempts, nil
}

// Close closes the underlying database
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
