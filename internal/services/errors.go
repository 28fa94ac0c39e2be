package services

import (
	"errors"
	"strings"
)

// Sentinel errors handlers translate into flash messages.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("username already exists")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSelfDelete         = errors.New("cannot delete your own account")
	ErrLastAdmin          = errors.New("cannot delete the last administrator")

	ErrNotFound       = errors.New("not found")
	ErrMissingName    = errors.New("name is required")
	ErrDuplicateName  = errors.New("duplicate name")
	ErrDefaultProject = errors.New("default project cannot be deleted")
	ErrBadExtension   = errors.New("file type not allowed")
)

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
