package models

// User is an account that can log in. Administrators additionally
// manage accounts, projects, and photos.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	IsAdmin      bool   `json:"is_admin"`
}
