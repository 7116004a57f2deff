// Package storage provides the SQLite implementation of the attempt journal.
package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/xvierd/forest-cli/internal/ports"
	"modernc.org/sqlite"
)

// MemoryDSN keeps the journal inside the process.
const MemoryDSN = ":memory:"

// sqliteJournal implements the ports.Journal interface using SQLite.
type sqliteJournal struct {
	db *sql.DB
}

// Ensure sqliteJournal implements ports.Journal.
var _ ports.Journal = (*sqliteJournal)(nil)

// New opens a journal at dsn. An in-memory database lives only as long as
// its single connection, so the pool is pinned to one connection.
func New(dsn string) (ports.Journal, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if dsn != MemoryDSN {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set WAL mode: %w", err)
		}
	}

	journal := &sqliteJournal{db: db}
	if err := journal.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return journal, nil
}

// NewMemory creates a new in-memory journal.
func NewMemory() (ports.Journal, error) {
	return New(MemoryDSN)
}

// Close closes the database connection.
func (j *sqliteJournal) Close() error {
	return j.db.Close()
}

// Migrate creates the database schema.
func (j *sqliteJournal) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS attempts (
		id TEXT PRIMARY KEY,
		outcome TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		ended_at DATETIME NOT NULL,
		focused_seconds INTEGER NOT NULL,
		tree_id TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_attempts_ended ON attempts(ended_at);
	CREATE INDEX IF NOT EXISTS idx_attempts_outcome ON attempts(outcome);
	`

	if _, err := j.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// isConstraintError checks if an error is a primary key or unique
// constraint violation.
func isConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == 1555 || code == 2067 // SQLITE_CONSTRAINT_PRIMARYKEY, SQLITE_CONSTRAINT_UNIQUE
}
