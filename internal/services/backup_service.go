package services

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// BackupService assembles a zip archive of the database file and every
// uploaded file.
type BackupService struct {
	dbPath      string
	uploadsRoot string
}

func NewBackupService(dbPath, uploadsRoot string) *BackupService {
	return &BackupService{dbPath: dbPath, uploadsRoot: uploadsRoot}
}

// Archive writes the backup zip to w: the database as backup/app.db and
// the uploads tree under backup/uploads/, relative paths preserved.
func (s *BackupService) Archive(w io.Writer) error {
	zw := zip.NewWriter(w)

	if _, err := os.Stat(s.dbPath); err == nil {
		if err := addFile(zw, s.dbPath, "backup/app.db"); err != nil {
			return err
		}
	}

	if _, err := os.Stat(s.uploadsRoot); err == nil {
		err := filepath.WalkDir(s.uploadsRoot, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(s.uploadsRoot, p)
			if err != nil {
				return err
			}
			return addFile(zw, p, "backup/uploads/"+filepath.ToSlash(rel))
		})
		if err != nil {
			return err
		}
	}

	return zw.Close()
}

func addFile(zw *zip.Writer, src, name string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	entry, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, f)
	return err
}
