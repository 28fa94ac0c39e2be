package models

// DefaultProjectSlug identifies the seeded, undeletable fallback
// project that orphaned photos are moved into.
const DefaultProjectSlug = "general"

// StatusPending is the status assigned to new projects.
const StatusPending = "pending"

// Project is a named collection of photos, mapped 1:1 to a directory
// under the uploads root via its slug. The slug never changes after
// creation, even when the project is renamed.
type Project struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	CreatedAt   string `json:"created_at"`
	Description string `json:"description"`
	Status      string `json:"status"`
}
