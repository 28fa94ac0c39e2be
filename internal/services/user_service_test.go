package services

import (
	"context"
	"errors"
	"testing"
)

func TestAuthenticate(t *testing.T) {
	database, _ := newTestEnv(t)
	users := NewUserService(database)
	ctx := context.Background()

	user, err := users.Authenticate(ctx, "admin", "admin123")
	if err != nil {
		t.Fatalf("seeded admin login failed: %v", err)
	}
	if !user.IsAdmin {
		t.Error("seeded admin is not flagged admin")
	}

	if _, err := users.Authenticate(ctx, "admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("bad password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := users.Authenticate(ctx, "nobody", "admin123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestCreateUser(t *testing.T) {
	database, _ := newTestEnv(t)
	users := NewUserService(database)
	ctx := context.Background()

	if err := users.Create(ctx, "alice", "s3cret", false); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := users.Authenticate(ctx, "alice", "s3cret"); err != nil {
		t.Errorf("created user cannot log in: %v", err)
	}

	if err := users.Create(ctx, "alice", "other", false); !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate username: err = %v, want ErrUserExists", err)
	}
}

func TestDeleteUser(t *testing.T) {
	database, _ := newTestEnv(t)
	users := NewUserService(database)
	ctx := context.Background()

	admin, err := users.Authenticate(ctx, "admin", "admin123")
	if err != nil {
		t.Fatal(err)
	}

	if err := users.Delete(ctx, admin.ID, admin.ID); !errors.Is(err, ErrSelfDelete) {
		t.Errorf("self delete: err = %v, want ErrSelfDelete", err)
	}

	if err := users.Create(ctx, "bob", "pw", false); err != nil {
		t.Fatal(err)
	}
	all, err := users.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var bobID int
	for _, u := range all {
		if u.Username == "bob" {
			bobID = u.ID
		}
	}
	if err := users.Delete(ctx, admin.ID, bobID); err != nil {
		t.Fatalf("delete bob: %v", err)
	}
	if _, err := users.GetByID(ctx, bobID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted user still readable: err = %v", err)
	}
}

func TestDeleteLastAdmin(t *testing.T) {
	database, _ := newTestEnv(t)
	users := NewUserService(database)
	ctx := context.Background()

	admin, err := users.Authenticate(ctx, "admin", "admin123")
	if err != nil {
		t.Fatal(err)
	}
	if err := users.Create(ctx, "carol", "pw", false); err != nil {
		t.Fatal(err)
	}
	all, err := users.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var carolID int
	for _, u := range all {
		if u.Username == "carol" {
			carolID = u.ID
		}
	}

	// carol is not an admin, so admin stays the only one.
	if err := users.Delete(ctx, carolID, admin.ID); !errors.Is(err, ErrLastAdmin) {
		t.Errorf("last admin delete: err = %v, want ErrLastAdmin", err)
	}
}

func TestDeleteUserClearsUploader(t *testing.T) {
	database, uploads := newTestEnv(t)
	users := NewUserService(database)
	photos := NewPhotoService(database, uploads)
	ctx := context.Background()

	admin, err := users.Authenticate(ctx, "admin", "admin123")
	if err != nil {
		t.Fatal(err)
	}
	if err := users.Create(ctx, "dave", "pw", false); err != nil {
		t.Fatal(err)
	}
	dave, err := users.Authenticate(ctx, "dave", "pw")
	if err != nil {
		t.Fatal(err)
	}

	var generalID int
	if err := database.QueryRow(`SELECT id FROM projects WHERE slug = 'general'`).Scan(&generalID); err != nil {
		t.Fatal(err)
	}
	photo, err := photos.Upload(ctx, testReader(), "pic.jpg", "Dave's pic", "", generalID, dave.ID)
	if err != nil {
		t.Fatal(err)
	}

	if err := users.Delete(ctx, admin.ID, dave.ID); err != nil {
		t.Fatalf("delete dave: %v", err)
	}
	got, err := photos.GetByID(ctx, photo.ID)
	if err != nil {
		t.Fatalf("photo gone after uploader delete: %v", err)
	}
	if got.UploadedBy != nil {
		t.Errorf("uploaded_by = %v, want nil", *got.UploadedBy)
	}
}

func TestChangePassword(t *testing.T) {
	database, _ := newTestEnv(t)
	users := NewUserService(database)
	ctx := context.Background()

	admin, err := users.Authenticate(ctx, "admin", "admin123")
	if err != nil {
		t.Fatal(err)
	}

	if err := users.ChangePassword(ctx, admin.ID, "nope", "newpass"); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("wrong current password: err = %v, want ErrWrongPassword", err)
	}

	if err := users.ChangePassword(ctx, admin.ID, "admin123", "newpass"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := users.Authenticate(ctx, "admin", "newpass"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
	if _, err := users.Authenticate(ctx, "admin", "admin123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password still accepted")
	}
}
