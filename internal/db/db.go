// Package db opens the application's SQLite database and keeps its
// schema current.
package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the SQL connection pool together with the database file
// location, which the backup exporter needs.
type DB struct {
	*sql.DB
	path string
}

// Open connects to the SQLite database at path, applies pragmas and
// migrations, and returns a ready-to-use handle. The pragmas ride on
// the DSN so every pooled connection gets them, not just the first.
func Open(ctx context.Context, path string) (*DB, error) {
	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	database := &DB{DB: conn, path: path}
	if err := database.applyMigrations(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return database, nil
}

// Path returns the location of the database file on disk.
func (d *DB) Path() string {
	return d.path
}
