package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/bcrypt"

	"fototeca/internal/models"
)

// Seed ensures a default administrator and the General project exist,
// and backfills photo rows that predate per-project folders. Safe to
// run on every startup.
func (d *DB) Seed(ctx context.Context, uploadsRoot string) error {
	var adminID int
	err := d.QueryRowContext(ctx, `SELECT id FROM users WHERE is_admin = 1 LIMIT 1`).Scan(&adminID)
	if errors.Is(err, sql.ErrNoRows) {
		hash, hashErr := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		if hashErr != nil {
			return hashErr
		}
		if _, err := d.ExecContext(ctx,
			`INSERT INTO users (username, password_hash, is_admin) VALUES (?, ?, 1)`,
			"admin", string(hash)); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	} else if err != nil {
		return err
	}

	var generalID int
	err = d.QueryRowContext(ctx, `SELECT id FROM projects WHERE slug = ?`, models.DefaultProjectSlug).Scan(&generalID)
	if errors.Is(err, sql.ErrNoRows) {
		res, insErr := d.ExecContext(ctx,
			`INSERT INTO projects (name, slug, description, status) VALUES (?, ?, ?, ?)`,
			"General", models.DefaultProjectSlug, "Default project", models.StatusPending)
		if insErr != nil {
			return fmt.Errorf("seed default project: %w", insErr)
		}
		id64, idErr := res.LastInsertId()
		if idErr != nil {
			return idErr
		}
		generalID = int(id64)
	} else if err != nil {
		return err
	}

	// Rows from before projects existed.
	if _, err := d.ExecContext(ctx,
		`UPDATE photos SET project_id = ? WHERE project_id IS NULL`, generalID); err != nil {
		return fmt.Errorf("backfill project ids: %w", err)
	}
	if _, err := d.ExecContext(ctx,
		`UPDATE photos SET filepath = (? || '/' || filename)
		 WHERE (filepath IS NULL OR filepath = '') AND filename IS NOT NULL`,
		models.DefaultProjectSlug); err != nil {
		return fmt.Errorf("backfill file paths: %w", err)
	}

	return os.MkdirAll(filepath.Join(uploadsRoot, models.DefaultProjectSlug), 0755)
}
