package db

import (
	"context"
	"fmt"
)

type migration struct {
	version string
	sql     string
}

// migrations is the ordered, append-only list of schema steps. Each
// step runs at most once, recorded in schema_migrations.
var migrations = []migration{
	{
		version: "0001_users",
		sql: `CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			is_admin INTEGER NOT NULL DEFAULT 0
		)`,
	},
	{
		version: "0002_projects",
		sql: `CREATE TABLE IF NOT EXISTS projects (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL,
			slug TEXT UNIQUE NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now','localtime')),
			description TEXT,
			status TEXT NOT NULL DEFAULT 'pending'
		)`,
	},
	{
		version: "0003_photos",
		sql: `CREATE TABLE IF NOT EXISTS photos (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			filepath TEXT,
			filename TEXT,
			display_name TEXT NOT NULL,
			description TEXT,
			uploaded_at TEXT NOT NULL DEFAULT (datetime('now','localtime')),
			uploaded_by INTEGER,
			project_id INTEGER,
			FOREIGN KEY (uploaded_by) REFERENCES users(id),
			FOREIGN KEY (project_id) REFERENCES projects(id)
		)`,
	},
}

func (d *DB) applyMigrations(ctx context.Context) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)"); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	for _, m := range migrations {
		var count int
		row := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM schema_migrations WHERE version = ?", m.version)
		if err := row.Scan(&count); err != nil {
			return fmt.Errorf("scan migration version: %w", err)
		}
		if count > 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			return fmt.Errorf("record migration %s: %w", m.version, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migrations: %w", err)
	}
	return nil
}
