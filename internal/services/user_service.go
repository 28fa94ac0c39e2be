package services

import (
	"context"
	"database/sql"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"fototeca/internal/db"
	"fototeca/internal/models"
)

// UserService manages accounts and credentials.
type UserService struct {
	db *db.DB
}

func NewUserService(database *db.DB) *UserService {
	return &UserService{db: database}
}

// Authenticate checks a username/password pair. Unknown users and bad
// passwords both return ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, is_admin FROM users WHERE username = ?`,
		username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.IsAdmin)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, is_admin FROM users WHERE id = ?`,
		id).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.IsAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create adds an account with a bcrypt-hashed password.
func (s *UserService) Create(ctx context.Context, username, password string, isAdmin bool) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, is_admin) VALUES (?, ?, ?)`,
		username, string(hash), isAdmin)
	if isUniqueViolation(err) {
		return ErrUserExists
	}
	return err
}

// Delete removes an account. Deleting yourself or the last remaining
// administrator is refused. The victim's photos survive with their
// uploader reference cleared.
func (s *UserService) Delete(ctx context.Context, actorID, targetID int) error {
	if actorID == targetID {
		return ErrSelfDelete
	}

	target, err := s.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if target.IsAdmin {
		var admins int
		if err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM users WHERE is_admin = 1`).Scan(&admins); err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE photos SET uploaded_by = NULL WHERE uploaded_by = ?`, targetID); err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, targetID)
	return err
}

// ChangePassword rehashes the password after verifying the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID int, currentPassword, newPassword string) error {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, string(hash), userID)
	return err
}

// List returns all accounts, newest first.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, is_admin FROM users ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.IsAdmin); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
