package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"fototeca/internal/db"
	"fototeca/internal/models"
	"fototeca/internal/names"
)

// ProjectService manages projects and the per-project directories under
// the uploads root.
type ProjectService struct {
	db          *db.DB
	uploadsRoot string
}

func NewProjectService(database *db.DB, uploadsRoot string) *ProjectService {
	return &ProjectService{db: database, uploadsRoot: uploadsRoot}
}

// Create inserts a project and makes its uploads directory. Slug
// collisions get a numeric suffix (_2, _3, ...); a concurrent duplicate
// name surfaces as ErrDuplicateName.
func (s *ProjectService) Create(ctx context.Context, name, description, status string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrMissingName
	}
	if status == "" {
		status = models.StatusPending
	}

	slug := names.Slugify(name)
	base := slug
	for i := 2; ; i++ {
		var one int
		err := s.db.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE slug = ?`, slug).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			break
		}
		if err != nil {
			return nil, err
		}
		slug = fmt.Sprintf("%s_%d", base, i)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (name, slug, description, status) VALUES (?, ?, ?, ?)`,
		name, slug, description, status)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateName
	}
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Join(s.uploadsRoot, slug), 0755); err != nil {
		return nil, fmt.Errorf("create project directory: %w", err)
	}
	return s.GetByID(ctx, int(id))
}

func (s *ProjectService) GetByID(ctx context.Context, id int) (*models.Project, error) {
	var p models.Project
	var description sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, slug, created_at, description, status FROM projects WHERE id = ?`,
		id).Scan(&p.ID, &p.Name, &p.Slug, &p.CreatedAt, &description, &p.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Description = description.String
	return &p, nil
}

// Update renames a project in place. The slug and the on-disk directory
// never change.
func (s *ProjectService) Update(ctx context.Context, id int, name, description, status string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrMissingName
	}
	if status == "" {
		status = models.StatusPending
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, description = ?, status = ? WHERE id = ?`,
		name, description, status, id)
	if isUniqueViolation(err) {
		return ErrDuplicateName
	}
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a project and relocates its photos into the default
// project, renaming on destination collision with a timestamp prefix.
// File moves are best-effort: a photo whose file could not be moved
// keeps its old path fields so the record never points at a location
// the file was not actually moved to.
func (s *ProjectService) Delete(ctx context.Context, id int) error {
	proj, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if proj.Slug == models.DefaultProjectSlug {
		return ErrDefaultProject
	}

	var generalID int
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM projects WHERE slug = ?`, models.DefaultProjectSlug).Scan(&generalID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("default project: %w", ErrNotFound)
	}
	if err != nil {
		return err
	}

	type photoRow struct {
		id       int
		filepath string
		filename string
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filepath, filename FROM photos WHERE project_id = ?`, id)
	if err != nil {
		return err
	}
	var photos []photoRow
	for rows.Next() {
		var (
			ph     photoRow
			fp, fn sql.NullString
		)
		if err := rows.Scan(&ph.id, &fp, &fn); err != nil {
			rows.Close()
			return err
		}
		ph.filepath = strings.TrimSpace(fp.String)
		ph.filename = strings.TrimSpace(fn.String)
		photos = append(photos, ph)
	}
	if err := rows.Close(); err != nil {
		return err
	}

	generalDir := filepath.Join(s.uploadsRoot, models.DefaultProjectSlug)
	if err := os.MkdirAll(generalDir, 0755); err != nil {
		return err
	}

	for _, ph := range photos {
		oldRel := ph.filepath
		if oldRel == "" && ph.filename != "" {
			oldRel = proj.Slug + "/" + ph.filename
		}

		oldName := ph.filename
		if oldRel != "" {
			oldName = path.Base(oldRel)
		}
		if oldName == "" {
			oldName = fmt.Sprintf("%d.jpg", time.Now().Unix())
		}

		newRel := models.DefaultProjectSlug + "/" + oldName
		var oldAbs, newAbs string
		if oldRel != "" {
			oldAbs = filepath.Join(s.uploadsRoot, filepath.FromSlash(oldRel))
			if _, statErr := os.Stat(oldAbs); statErr == nil {
				newAbs = filepath.Join(s.uploadsRoot, filepath.FromSlash(newRel))
				if _, dstErr := os.Stat(newAbs); dstErr == nil {
					newRel = fmt.Sprintf("%s/%d_%s", models.DefaultProjectSlug, time.Now().Unix(), oldName)
					newAbs = filepath.Join(s.uploadsRoot, filepath.FromSlash(newRel))
				}
				// Copy first; the source is removed only after the record
				// update commits.
				if copyErr := copyFile(oldAbs, newAbs); copyErr != nil {
					newAbs = ""
				}
			}
		}

		if newAbs != "" {
			_, err = s.db.ExecContext(ctx,
				`UPDATE photos SET project_id = ?, filepath = ?, filename = ? WHERE id = ?`,
				generalID, newRel, path.Base(newRel), ph.id)
		} else {
			_, err = s.db.ExecContext(ctx,
				`UPDATE photos SET project_id = ? WHERE id = ?`, generalID, ph.id)
		}
		if err != nil {
			if newAbs != "" {
				_ = os.Remove(newAbs)
			}
			return err
		}
		if newAbs != "" {
			_ = os.Remove(oldAbs)
		}
	}

	_, err = s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	return err
}

// List returns all projects ordered by name, for pickers.
func (s *ProjectService) List(ctx context.Context) ([]models.Project, error) {
	return s.list(ctx, "name ASC")
}

// ListByNewest returns all projects newest first, for the admin panel.
func (s *ProjectService) ListByNewest(ctx context.Context) ([]models.Project, error) {
	return s.list(ctx, "id DESC")
}

func (s *ProjectService) list(ctx context.Context, order string) ([]models.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, slug, created_at, description, status FROM projects ORDER BY `+order)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		var description sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.CreatedAt, &description, &p.Status); err != nil {
			return nil, err
		}
		p.Description = description.String
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
