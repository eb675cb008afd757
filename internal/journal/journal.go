// Package journal persists an audit log of milestone operations in
// SQLite.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Journal is the SQLite-backed operation log.
type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database.
func Open(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	j := &Journal{db: db}
	if err := j.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) initSchema() error {
	_, err := j.db.Exec(`
		CREATE TABLE IF NOT EXISTS operations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			action TEXT NOT NULL,
			branch TEXT NOT NULL,
			commit_hash TEXT,
			note TEXT,
			status TEXT NOT NULL,
			error_message TEXT,
			created_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	_, err = j.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_branch_created
		ON operations(branch, created_at DESC)
	`)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

// Record inserts one operation and returns its row id.
func (j *Journal) Record(ctx context.Context, entry *Entry) (int64, error) {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := j.db.ExecContext(ctx, `
		INSERT INTO operations
		(action, branch, commit_hash, note, status, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		entry.Action,
		entry.Branch,
		entry.CommitHash,
		entry.Note,
		entry.Status,
		entry.ErrorMessage,
		createdAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert journal entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

// Recent returns the most recent operations, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, action, branch, commit_hash, note, status, error_message, created_at
		FROM operations
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// RecentForBranch returns the most recent operations on one branch,
// newest first.
func (j *Journal) RecentForBranch(ctx context.Context, branch string, limit int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, action, branch, commit_hash, note, status, error_message, created_at
		FROM operations
		WHERE branch = ?
		ORDER BY id DESC
		LIMIT ?
	`, branch, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal for branch: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var entry Entry
		var createdAtStr string

		err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&entry.Branch,
			&entry.CommitHash,
			&entry.Note,
			&entry.Status,
			&entry.ErrorMessage,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}

		createdAt, err := time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
		}
		entry.CreatedAt = createdAt

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return entries, nil
}
