package models

import "strings"

// Photo is an uploaded image and its metadata. Filepath is relative to
// the uploads root ("<project-slug>/<filename>"); Filename is the bare
// name kept for rows that predate per-project folders and stays in sync
// with Filepath.
type Photo struct {
	ID          int    `json:"id"`
	Filepath    string `json:"filepath"`
	Filename    string `json:"filename"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	UploadedAt  string `json:"uploaded_at"`
	UploadedBy  *int   `json:"uploaded_by"`
	ProjectID   int    `json:"project_id"`

	// Joined from projects for display.
	ProjectName string `json:"project_name,omitempty"`
	ProjectSlug string `json:"project_slug,omitempty"`
}

// ResolvedPath returns the photo's path relative to the uploads root,
// falling back to the default project directory for legacy rows that
// predate per-project folders.
func (p Photo) ResolvedPath() string {
	if fp := strings.TrimSpace(p.Filepath); fp != "" {
		return fp
	}
	if fn := strings.TrimSpace(p.Filename); fn != "" {
		return DefaultProjectSlug + "/" + fn
	}
	return ""
}
