package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"fototeca/internal/db"
	"fototeca/internal/models"
	"fototeca/internal/names"
)

// timeLayout matches SQLite's datetime() text format, so date()
// comparisons keep working on stored timestamps.
const timeLayout = "2006-01-02 15:04:05"

const photoColumns = `p.id, p.filepath, p.filename, p.display_name, p.description,
	p.uploaded_at, p.uploaded_by, p.project_id, pr.name, pr.slug`

// PhotoService manages photo records and their files under the uploads
// root. Every rename or move of a file is mirrored into the record's
// filepath and filename fields.
type PhotoService struct {
	db          *db.DB
	uploadsRoot string
}

func NewPhotoService(database *db.DB, uploadsRoot string) *PhotoService {
	return &PhotoService{db: database, uploadsRoot: uploadsRoot}
}

// Filters narrows the dashboard listing. Zero values mean "no filter";
// the filters are conjunctive. Dates are YYYY-MM-DD, inclusive, at
// calendar-day granularity.
type Filters struct {
	Query     string
	ProjectID int
	DateFrom  string
	DateTo    string
}

// Upload stores a new image under its project's directory and inserts
// the record. The stored filename is derived from the display name plus
// a unix-timestamp suffix.
func (s *PhotoService) Upload(ctx context.Context, file io.Reader, originalFilename, displayName, description string, projectID, uploaderID int) (*models.Photo, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, ErrMissingName
	}
	if !names.AllowedImage(originalFilename) {
		return nil, ErrBadExtension
	}

	var slug string
	err := s.db.QueryRowContext(ctx, `SELECT slug FROM projects WHERE id = ?`, projectID).Scan(&slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	base := names.BaseFromDisplayName(displayName, now)
	finalName := names.TimestampedFilename(base, names.Ext(originalFilename), now)

	dir := filepath.Join(s.uploadsRoot, slug)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dstPath := filepath.Join(dir, finalName)
	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("save upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	rel := slug + "/" + finalName
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO photos (filepath, filename, display_name, description, uploaded_at, uploaded_by, project_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rel, finalName, displayName, description, now.Format(timeLayout), uploaderID, projectID)
	if err != nil {
		// Don't leave the file behind if the record failed.
		_ = os.Remove(dstPath)
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, int(id))
}

func (s *PhotoService) GetByID(ctx context.Context, id int) (*models.Photo, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+photoColumns+`
		 FROM photos p
		 LEFT JOIN projects pr ON pr.id = p.project_id
		 WHERE p.id = ?`, id)
	photo, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return photo, nil
}

// List returns photos matching the filters, newest first, joined with
// their project name. Text search is a case-insensitive substring match
// over display name and description.
func (s *PhotoService) List(ctx context.Context, f Filters) ([]models.Photo, error) {
	query := `SELECT ` + photoColumns + `
		 FROM photos p
		 LEFT JOIN projects pr ON pr.id = p.project_id`

	var (
		where []string
		args  []any
	)
	if f.Query != "" {
		where = append(where, "(p.display_name LIKE ? OR p.description LIKE ?)")
		pattern := "%" + f.Query + "%"
		args = append(args, pattern, pattern)
	}
	if f.ProjectID != 0 {
		where = append(where, "p.project_id = ?")
		args = append(args, f.ProjectID)
	}
	if f.DateFrom != "" {
		where = append(where, "date(p.uploaded_at) >= date(?)")
		args = append(args, f.DateFrom)
	}
	if f.DateTo != "" {
		where = append(where, "date(p.uploaded_at) <= date(?)")
		args = append(args, f.DateTo)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []models.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, *photo)
	}
	return photos, rows.Err()
}

// Edit updates a photo's metadata and, when the display name or the
// project changed, renames or moves the stored file to match. It
// reports fileMissing=true when the stored file could not be found; the
// path fields stay untouched in that case so the record keeps pointing
// at the last known location. A failing move aborts the whole edit.
func (s *PhotoService) Edit(ctx context.Context, id int, displayName, description string, projectID int) (fileMissing bool, err error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return false, ErrMissingName
	}

	photo, err := s.GetByID(ctx, id)
	if err != nil {
		return false, err
	}

	var newSlug string
	err = s.db.QueryRowContext(ctx, `SELECT slug FROM projects WHERE id = ?`, projectID).Scan(&newSlug)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, err
	}

	oldRel := photo.ResolvedPath()
	oldName := photo.Filename
	if oldRel != "" {
		oldName = path.Base(oldRel)
	}

	ext := names.Ext(oldName)
	if !names.AllowedExt(ext) {
		ext = "jpg"
	}

	projectChanged := photo.ProjectID != projectID
	nameChanged := !strings.EqualFold(strings.TrimSpace(photo.DisplayName), displayName)

	newName := oldName
	newRel := oldRel
	var oldAbs, newAbs string
	if projectChanged || nameChanged {
		now := time.Now()
		base := names.BaseFromDisplayName(displayName, now)
		if nameChanged {
			newName = names.TimestampedFilename(base, ext, now)
		}
		newRel = newSlug + "/" + newName

		if err := os.MkdirAll(filepath.Join(s.uploadsRoot, newSlug), 0755); err != nil {
			return false, err
		}

		switch {
		case oldRel == "":
			fileMissing = true
			newRel, newName = oldRel, oldName
		case newRel == oldRel:
			// Same destination, nothing to move.
		default:
			oldAbs = filepath.Join(s.uploadsRoot, filepath.FromSlash(oldRel))
			if _, statErr := os.Stat(oldAbs); os.IsNotExist(statErr) {
				fileMissing = true
				newRel, newName = oldRel, oldName
			} else if statErr != nil {
				return false, statErr
			} else {
				newAbs = filepath.Join(s.uploadsRoot, filepath.FromSlash(newRel))
				if _, dstErr := os.Stat(newAbs); dstErr == nil {
					newName = names.TimestampedFilename(base, ext, time.Now())
					newRel = newSlug + "/" + newName
					newAbs = filepath.Join(s.uploadsRoot, filepath.FromSlash(newRel))
				}
				// Copy first; the source stays in place until the record
				// update commits.
				if copyErr := copyFile(oldAbs, newAbs); copyErr != nil {
					return false, fmt.Errorf("move photo file: %w", copyErr)
				}
			}
		}
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE photos SET display_name = ?, description = ?, project_id = ?, filepath = ?, filename = ?
		 WHERE id = ?`,
		displayName, description, projectID, newRel, newName, id)
	if newAbs != "" {
		if err != nil {
			_ = os.Remove(newAbs)
		} else {
			_ = os.Remove(oldAbs)
		}
	}
	return fileMissing, err
}

// copyFile duplicates src to dst, removing a partial dst on failure.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}

// Delete unlinks the stored file (best-effort) and removes the record.
func (s *PhotoService) Delete(ctx context.Context, id int) error {
	photo, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rel := photo.ResolvedPath(); rel != "" {
		_ = os.Remove(filepath.Join(s.uploadsRoot, filepath.FromSlash(rel)))
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM photos WHERE id = ?`, id)
	return err
}

func scanPhoto(row interface{ Scan(dest ...any) error }) (*models.Photo, error) {
	var (
		p           models.Photo
		fp          sql.NullString
		fn          sql.NullString
		description sql.NullString
		uploadedBy  sql.NullInt64
		projectID   sql.NullInt64
		projectName sql.NullString
		projectSlug sql.NullString
	)
	err := row.Scan(&p.ID, &fp, &fn, &p.DisplayName, &description,
		&p.UploadedAt, &uploadedBy, &projectID, &projectName, &projectSlug)
	if err != nil {
		return nil, err
	}
	p.Filepath = fp.String
	p.Filename = fn.String
	p.Description = description.String
	if uploadedBy.Valid {
		v := int(uploadedBy.Int64)
		p.UploadedBy = &v
	}
	p.ProjectID = int(projectID.Int64)
	p.ProjectName = projectName.String
	p.ProjectSlug = projectSlug.String
	return &p, nil
}
