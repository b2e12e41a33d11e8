// Package sqlite provides SQLite-based implementations of the shelfscout
// pattern store, proxy cache and run history.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open opens the database connection and creates the schema if needed.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit to one connection.
	conn.SetMaxOpenConns(1)

	// Verify connection
	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Set busy timeout to wait 5 seconds before failing on lock contention.
	// This prevents immediate "database is locked" errors.
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Enable WAL mode for file-based databases for better write performance.
	// WAL is ~7x faster for writes and allows concurrent reads during writes.
	// Trade-off: creates additional -wal and -shm files alongside the database.
	// Note: WAL mode is not supported for in-memory databases.
	if db.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Enable foreign key constraints
	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.db = conn

	// Create schema
	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// BeginTx starts a transaction.
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, nil)
}

// Stats returns database statistics.
func (db *DB) Stats() sql.DBStats {
	return db.db.Stats()
}

// createSchema creates the database tables if they don't exist.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS domain_patterns (
			domain TEXT PRIMARY KEY,
			success_count INTEGER NOT NULL DEFAULT 0,
			failure_count INTEGER NOT NULL DEFAULT 0,
			last_success TEXT,
			last_failure TEXT,
			last_error TEXT NOT NULL DEFAULT '',
			attempted_paths TEXT NOT NULL DEFAULT '[]',
			learned TEXT NOT NULL DEFAULT '{}'
		);

		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			timestamp TEXT NOT NULL,
			summary TEXT NOT NULL DEFAULT '{}',
			platforms TEXT NOT NULL DEFAULT '{}',
			comparison TEXT,
			recommendations TEXT NOT NULL DEFAULT '[]'
		);

		CREATE TABLE IF NOT EXISTS run_domains (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL DEFAULT 0,
			domain TEXT NOT NULL,
			url TEXT NOT NULL DEFAULT '',
			platform TEXT NOT NULL DEFAULT '',
			success INTEGER NOT NULL DEFAULT 0,
			detection_success INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			description_length INTEGER NOT NULL DEFAULT 0,
			estimated_length INTEGER NOT NULL DEFAULT 0,
			capture_rate INTEGER NOT NULL DEFAULT 0,
			quality TEXT NOT NULL DEFAULT '',
			quality_score INTEGER NOT NULL DEFAULT 0,
			extracted_sources TEXT NOT NULL DEFAULT '[]',
			missed_content TEXT NOT NULL DEFAULT '[]',
			issues TEXT NOT NULL DEFAULT '[]',
			content_hash TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_run_domains_run_id ON run_domains(run_id);
		CREATE INDEX IF NOT EXISTS idx_run_domains_domain ON run_domains(domain);

		CREATE TABLE IF NOT EXISTS proxy_cache (
			country TEXT PRIMARY KEY,
			timestamp TEXT NOT NULL,
			count INTEGER NOT NULL DEFAULT 0,
			proxies TEXT NOT NULL DEFAULT '[]'
		);
	`

	_, err := db.db.Exec(schema)
	return err
}
