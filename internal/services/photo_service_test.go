package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestUploadPhoto(t *testing.T) {
	database, uploads := newTestEnv(t)
	projects := NewProjectService(database, uploads)
	photos := NewPhotoService(database, uploads)
	ctx := context.Background()

	proj, err := projects.Create(ctx, "Roof", "", "")
	if err != nil {
		t.Fatal(err)
	}

	photo, err := photos.Upload(ctx, testReader(), "IMG_001.JPG", "Panel 1", "east row", proj.ID, 1)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.HasPrefix(photo.Filename, "panel_1_") || !strings.HasSuffix(photo.Filename, ".jpg") {
		t.Errorf("filename = %q, want panel_1_<unix>.jpg", photo.Filename)
	}
	if photo.Filepath != "roof/"+photo.Filename {
		t.Errorf("filepath = %q, want under roof/", photo.Filepath)
	}
	if photo.ProjectName != "Roof" {
		t.Errorf("joined project name = %q", photo.ProjectName)
	}
	if !fileExists(t, uploads, photo.Filepath) {
		t.Errorf("stored file missing: %s", photo.Filepath)
	}
	if _, err := time.Parse(timeLayout, photo.UploadedAt); err != nil {
		t.Errorf("uploaded_at %q not in %q layout: %v", photo.UploadedAt, timeLayout, err)
	}
}

func TestUploadValidation(t *testing.T) {
	database, uploads := newTestEnv(t)
	photos := NewPhotoService(database, uploads)
	ctx := context.Background()

	var generalID int
	if err := database.QueryRow(`SELECT id FROM projects WHERE slug = 'general'`).Scan(&generalID); err != nil {
		t.Fatal(err)
	}

	if _, err := photos.Upload(ctx, testReader(), "a.jpg", "  ", "", generalID, 1); !errors.Is(err, ErrMissingName) {
		t.Errorf("blank display name: err = %v, want ErrMissingName", err)
	}
	if _, err := photos.Upload(ctx, testReader(), "a.gif", "Pic", "", generalID, 1); !errors.Is(err, ErrBadExtension) {
		t.Errorf("gif upload: err = %v, want ErrBadExtension", err)
	}
	if _, err := photos.Upload(ctx, testReader(), "a.jpg", "Pic", "", 9999, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing project: err = %v, want ErrNotFound", err)
	}
}

func TestListFilters(t *testing.T) {
	database, uploads := newTestEnv(t)
	projects := NewProjectService(database, uploads)
	photos := NewPhotoService(database, uploads)
	ctx := context.Background()

	roof, err := projects.Create(ctx, "Roof", "", "")
	if err != nil {
		t.Fatal(err)
	}
	yard, err := projects.Create(ctx, "Yard", "", "")
	if err != nil {
		t.Fatal(err)
	}
	uploadSample(t, photos, "Panel east", roof.ID)
	uploadSample(t, photos, "Fence gate", yard.ID)

	all, err := photos.List(ctx, Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("unfiltered list = %d photos, want 2", len(all))
	}
	if all[0].DisplayName != "Fence gate" {
		t.Errorf("ordering not newest first: %+v", all)
	}

	byText, err := photos.List(ctx, Filters{Query: "panel"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byText) != 1 || byText[0].DisplayName != "Panel east" {
		t.Errorf("text filter: %+v", byText)
	}

	byProject, err := photos.List(ctx, Filters{ProjectID: yard.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(byProject) != 1 || byProject[0].DisplayName != "Fence gate" {
		t.Errorf("project filter: %+v", byProject)
	}

	today := time.Now().Format("2006-01-02")
	byDate, err := photos.List(ctx, Filters{DateFrom: today, DateTo: today})
	if err != nil {
		t.Fatal(err)
	}
	if len(byDate) != 2 {
		t.Errorf("date filter for today = %d photos, want 2", len(byDate))
	}

	none, err := photos.List(ctx, Filters{DateTo: "2000-01-01"})
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("ancient date filter matched %d photos", len(none))
	}

	combined, err := photos.List(ctx, Filters{Query: "panel", ProjectID: yard.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(combined) != 0 {
		t.Errorf("conjunctive filters matched %d photos", len(combined))
	}
}

func TestEditPhotoRename(t *testing.T) {
	database, uploads := newTestEnv(t)
	projects := NewProjectService(database, uploads)
	photos := NewPhotoService(database, uploads)
	ctx := context.Background()

	proj, err := projects.Create(ctx, "Roof", "", "")
	if err != nil {
		t.Fatal(err)
	}
	id := uploadSample(t, photos, "Panel 1", proj.ID)
	before, err := photos.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}

	missing, err := photos.Edit(ctx, id, "Panel renamed", "new desc", proj.ID)
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if missing {
		t.Error("fileMissing reported for an existing file")
	}

	after, err := photos.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if after.DisplayName != "Panel renamed" || after.Description != "new desc" {
		t.Errorf("metadata not updated: %+v", after)
	}
	if !strings.HasPrefix(after.Filename, "panel_renamed_") {
		t.Errorf("filename = %q, want panel_renamed_<unix>.jpg", after.Filename)
	}
	if !fileExists(t, uploads, after.Filepath) {
		t.Errorf("renamed file missing: %s", after.Filepath)
	}
	if fileExists(t, uploads, before.Filepath) {
		t.Errorf("old file still present: %s", before.Filepath)
	}
}

func TestEditPhotoDescriptionOnly(t *testing.T) {
	database, uploads := newTestEnv(t)
	projects := NewProjectService(database, uploads)
	photos := NewPhotoService(database, uploads)
	ctx := context.Background()

	proj, err := projects.Create(ctx, "Roof", "", "")
	if err != nil {
		t.Fatal(err)
	}
	id := uploadSample(t, photos, "Panel 1", proj.ID)
	before, err := photos.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}

	missing, err := photos.Edit(ctx, id, before.DisplayName, "only the description", proj.ID)
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if missing {
		t.Error("fileMissing reported for an existing file")
	}

	after, err := photos.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if after.Description != "only the description" {
		t.Errorf("description = %q", after.Description)
	}
	// Neither the file nor the path fields move.
	if after.Filepath != before.Filepath || after.Filename != before.Filename {
		t.Errorf("path fields changed: %q/%q -> %q/%q",
			before.Filepath, before.Filename, after.Filepath, after.Filename)
	}
	if !fileExists(t, uploads, before.Filepath) {
		t.Errorf("file moved on a description-only edit: %s", before.Filepath)
	}
}

func TestEditPhotoMove(t *testing.T) {
	database, uploads := newTestEnv(t)
	projects := NewProjectService(database, uploads)
	photos := NewPhotoService(database, uploads)
	ctx := context.Background()

	roof, err := projects.Create(ctx, "Roof", "", "")
	if err != nil {
		t.Fatal(err)
	}
	yard, err := projects.Create(ctx, "Yard", "", "")
	if err != nil {
		t.Fatal(err)
	}
	id := uploadSample(t, photos, "Panel 1", roof.ID)
	before, err := photos.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := photos.Edit(ctx, id, "Panel 1", "", yard.ID); err != nil {
		t.Fatalf("Edit: %v", err)
	}

	after, err := photos.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if after.ProjectID != yard.ID {
		t.Errorf("project not changed: %+v", after)
	}
	// Name unchanged, so the filename carries over to the new directory.
	if after.Filename != before.Filename {
		t.Errorf("filename changed on a pure move: %q -> %q", before.Filename, after.Filename)
	}
	if after.Filepath != "yard/"+before.Filename {
		t.Errorf("filepath = %q, want yard/%s", after.Filepath, before.Filename)
	}
	if !fileExists(t, uploads, after.Filepath) {
		t.Errorf("moved file missing: %s", after.Filepath)
	}
}

func TestEditPhotoMissingFile(t *testing.T) {
	database, uploads := newTestEnv(t)
	projects := NewProjectService(database, uploads)
	photos := NewPhotoService(database, uploads)
	ctx := context.Background()

	roof, err := projects.Create(ctx, "Roof", "", "")
	if err != nil {
		t.Fatal(err)
	}
	yard, err := projects.Create(ctx, "Yard", "", "")
	if err != nil {
		t.Fatal(err)
	}
	id := uploadSample(t, photos, "Panel 1", roof.ID)
	before, err := photos.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(uploads, filepath.FromSlash(before.Filepath))); err != nil {
		t.Fatal(err)
	}

	missing, err := photos.Edit(ctx, id, "Panel 1", "still here", yard.ID)
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if !missing {
		t.Error("fileMissing not reported")
	}

	after, err := photos.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if after.ProjectID != yard.ID || after.Description != "still here" {
		t.Errorf("metadata not updated: %+v", after)
	}
	// The record keeps pointing at the last known location.
	if after.Filepath != before.Filepath || after.Filename != before.Filename {
		t.Errorf("path fields rewritten without a move: %+v", after)
	}
}

func TestDeletePhoto(t *testing.T) {
	database, uploads := newTestEnv(t)
	projects := NewProjectService(database, uploads)
	photos := NewPhotoService(database, uploads)
	ctx := context.Background()

	proj, err := projects.Create(ctx, "Roof", "", "")
	if err != nil {
		t.Fatal(err)
	}
	id := uploadSample(t, photos, "Panel 1", proj.ID)
	photo, err := photos.GetByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}

	if err := photos.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := photos.GetByID(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("record survived delete: err = %v", err)
	}
	if fileExists(t, uploads, photo.Filepath) {
		t.Errorf("file survived delete: %s", photo.Filepath)
	}

	if err := photos.Delete(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing photo: err = %v, want ErrNotFound", err)
	}
}

func TestResolvePathLegacy(t *testing.T) {
	database, uploads := newTestEnv(t)
	photos := NewPhotoService(database, uploads)
	ctx := context.Background()

	var generalID int
	if err := database.QueryRow(`SELECT id FROM projects WHERE slug = 'general'`).Scan(&generalID); err != nil {
		t.Fatal(err)
	}
	// A legacy row with a filename but no filepath.
	res, err := database.ExecContext(ctx,
		`INSERT INTO photos (filename, display_name, project_id) VALUES (?, ?, ?)`,
		"legacy.jpg", "Legacy", generalID)
	if err != nil {
		t.Fatal(err)
	}
	id64, _ := res.LastInsertId()

	photo, err := photos.GetByID(ctx, int(id64))
	if err != nil {
		t.Fatal(err)
	}
	if got := photo.ResolvedPath(); got != "general/legacy.jpg" {
		t.Errorf("ResolvedPath = %q, want general/legacy.jpg", got)
	}
}
