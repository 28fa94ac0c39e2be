package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fototeca/internal/db"
)

// newTestEnv opens a seeded database in a temp directory and returns it
// together with the uploads root for that environment.
func newTestEnv(t *testing.T) (*db.DB, string) {
	t.Helper()
	dir := t.TempDir()
	database, err := db.Open(context.Background(), filepath.Join(dir, "app.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	uploads := filepath.Join(dir, "uploads")
	if err := database.Seed(context.Background(), uploads); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return database, uploads
}

func writeUploadFile(t *testing.T, uploadsRoot, rel string) {
	t.Helper()
	abs := filepath.Join(uploadsRoot, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte("image-bytes"), 0644); err != nil {
		t.Fatal(err)
	}
}

func fileExists(t *testing.T, uploadsRoot, rel string) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(uploadsRoot, filepath.FromSlash(rel)))
	return err == nil
}

func uploadSample(t *testing.T, photos *PhotoService, displayName string, projectID int) int {
	t.Helper()
	photo, err := photos.Upload(context.Background(),
		testReader(), "source.jpg", displayName, "", projectID, 1)
	if err != nil {
		t.Fatalf("upload %q: %v", displayName, err)
	}
	return photo.ID
}

func testReader() *strings.Reader {
	return strings.NewReader("image-bytes")
}
