// Package sqlite provides a SQLite-backed implementation of the storage
// interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/teedon/cooperative-manager-sub000/internal/storage"
)

// Ensure SQLiteStore implements the storage interfaces
var (
	_ storage.Store         = (*SQLiteStore)(nil)
	_ storage.SettingsStore = (*SQLiteStore)(nil)
	_ storage.UserStore     = (*SQLiteStore)(nil)
)

// SQLiteStore implements the storage interfaces using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// dbtx abstracts *sql.DB and *sql.Tx so query helpers work inside and outside
// transactions.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// database/sql opens extra pooled connections on demand, and per-connection
	// pragmas would not carry over to them. A single connection keeps the
	// pragmas in force everywhere and queues concurrent WithCircleTx callers
	// instead of surfacing SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Wait for the writer lock instead of failing fast; WithCircleTx holds
	// write transactions for whole engine operations.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// WithCircleTx runs fn inside a write transaction pinned to one circle.
// SQLite allows a single writer at a time, so taking the write lock up front
// (by touching the circle row) serializes every read-check-write sequence,
// which is the per-circle mutual exclusion the engine requires.
func (s *SQLiteStore) WithCircleTx(ctx context.Context, circleID string, fn func(tx storage.CircleTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Touch the row to promote to a write transaction immediately and to
	// verify the circle exists.
	res, err := tx.ExecContext(ctx, "UPDATE circles SET id = id WHERE id = ?", circleID)
	if err != nil {
		return fmt.Errorf("failed to lock circle: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to lock circle: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("circle %s: %w", circleID, storage.ErrNotFound)
	}

	if err := fn(&circleTx{tx: tx, circleID: circleID}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
