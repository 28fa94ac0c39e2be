package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"fototeca/internal/services"
)

// AdminPanel lists all users and projects.
func (h *Handlers) AdminPanel(c *fiber.Ctx) error {
	users, err := h.users.List(c.Context())
	if err != nil {
		return err
	}
	projects, err := h.projects.ListByNewest(c.Context())
	if err != nil {
		return err
	}
	return h.render(c, "admin", fiber.Map{
		"Users":    users,
		"Projects": projects,
	})
}

// CreateUser adds an account from the admin panel form.
func (h *Handlers) CreateUser(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")
	isAdmin := c.FormValue("is_admin") == "on"

	if username == "" || password == "" {
		h.flash(c, "error", "Username and password are required.")
		return c.Redirect("/admin")
	}

	err := h.users.Create(c.Context(), username, password, isAdmin)
	switch {
	case errors.Is(err, services.ErrUserExists):
		h.flash(c, "error", "That username already exists.")
	case err != nil:
		h.flash(c, "error", "Could not create the user.")
	default:
		h.flash(c, "success", "User created.")
	}
	return c.Redirect("/admin")
}

// DeleteUser removes an account, keeping its photos around with the
// uploader reference cleared.
func (h *Handlers) DeleteUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		h.flash(c, "error", "User not found.")
		return c.Redirect("/admin")
	}

	err = h.users.Delete(c.Context(), currentUser(c).ID, id)
	switch {
	case errors.Is(err, services.ErrSelfDelete):
		h.flash(c, "error", "You cannot delete your own account.")
	case errors.Is(err, services.ErrLastAdmin):
		h.flash(c, "error", "You cannot delete the last administrator.")
	case errors.Is(err, services.ErrNotFound):
		h.flash(c, "error", "User not found.")
	case err != nil:
		h.flash(c, "error", "Could not delete the user.")
	default:
		h.flash(c, "success", "User deleted.")
	}
	return c.Redirect("/admin")
}

// CreateProject adds a project from the admin panel form.
func (h *Handlers) CreateProject(c *fiber.Ctx) error {
	name := c.FormValue("project_name")
	description := strings.TrimSpace(c.FormValue("project_description"))
	status := strings.TrimSpace(c.FormValue("project_status"))

	_, err := h.projects.Create(c.Context(), name, description, status)
	switch {
	case errors.Is(err, services.ErrMissingName):
		h.flash(c, "error", "The project name is required.")
	case errors.Is(err, services.ErrDuplicateName):
		h.flash(c, "error", "That project already exists.")
	case err != nil:
		h.flash(c, "error", "Could not create the project.")
	default:
		h.flash(c, "success", "Project created.")
	}
	return c.Redirect("/admin")
}

// EditProjectPage renders the project edit form.
func (h *Handlers) EditProjectPage(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		h.flash(c, "error", "Project not found.")
		return c.Redirect("/admin")
	}
	project, err := h.projects.GetByID(c.Context(), id)
	if err != nil {
		h.flash(c, "error", "Project not found.")
		return c.Redirect("/admin")
	}
	return h.render(c, "edit_project", fiber.Map{"Project": project})
}

// EditProject renames a project in place. The slug and directory stay.
func (h *Handlers) EditProject(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		h.flash(c, "error", "Project not found.")
		return c.Redirect("/admin")
	}

	name := c.FormValue("name")
	description := strings.TrimSpace(c.FormValue("description"))
	status := strings.TrimSpace(c.FormValue("status"))

	err = h.projects.Update(c.Context(), id, name, description, status)
	switch {
	case errors.Is(err, services.ErrMissingName):
		h.flash(c, "error", "The name is required.")
		return c.Redirect(fmt.Sprintf("/admin/projects/%d/edit", id))
	case errors.Is(err, services.ErrDuplicateName):
		h.flash(c, "error", "A project with that name already exists.")
	case errors.Is(err, services.ErrNotFound):
		h.flash(c, "error", "Project not found.")
	case err != nil:
		h.flash(c, "error", "Could not update the project.")
	default:
		h.flash(c, "success", "Project updated.")
	}
	return c.Redirect("/admin")
}

// DeleteProject removes a project; its photos move to General.
func (h *Handlers) DeleteProject(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		h.flash(c, "error", "Project not found.")
		return c.Redirect("/admin")
	}

	err = h.projects.Delete(c.Context(), id)
	switch {
	case errors.Is(err, services.ErrDefaultProject):
		h.flash(c, "error", "The General project cannot be deleted.")
	case errors.Is(err, services.ErrNotFound):
		h.flash(c, "error", "Project not found.")
	case err != nil:
		h.flash(c, "error", "Could not delete the project.")
	default:
		h.flash(c, "success", "Project deleted. Its photos were moved to General.")
	}
	return c.Redirect("/admin")
}

// Backup streams the full backup archive as a zip download.
func (h *Handlers) Backup(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.backups.Archive(&buf); err != nil {
		h.flash(c, "error", "Backup failed.")
		return c.Redirect("/admin")
	}
	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="backup_fotos.zip"`)
	return c.Send(buf.Bytes())
}
