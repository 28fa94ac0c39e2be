package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"fototeca/internal/services"
)

// Dashboard renders the filtered photo listing.
func (h *Handlers) Dashboard(c *fiber.Ctx) error {
	filters := services.Filters{
		Query:    strings.TrimSpace(c.Query("q")),
		DateFrom: strings.TrimSpace(c.Query("date_from")),
		DateTo:   strings.TrimSpace(c.Query("date_to")),
	}
	if raw := strings.TrimSpace(c.Query("project_id")); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			filters.ProjectID = id
		}
	}

	photos, err := h.photos.List(c.Context(), filters)
	if err != nil {
		return err
	}
	projects, err := h.projects.List(c.Context())
	if err != nil {
		return err
	}
	return h.render(c, "dashboard", fiber.Map{
		"Photos":   photos,
		"Projects": projects,
		"Filters":  filters,
	})
}

// UploadPage renders the upload form.
func (h *Handlers) UploadPage(c *fiber.Ctx) error {
	projects, err := h.projects.List(c.Context())
	if err != nil {
		return err
	}
	return h.render(c, "upload", fiber.Map{"Projects": projects})
}

// Upload stores a submitted image in the selected project.
func (h *Handlers) Upload(c *fiber.Ctx) error {
	projectID, err := strconv.Atoi(strings.TrimSpace(c.FormValue("project_id")))
	if err != nil {
		h.flash(c, "error", "Select a project.")
		return c.Redirect("/upload")
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		h.flash(c, "error", "Select an image.")
		return c.Redirect("/upload")
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.flash(c, "error", "Could not read the uploaded file.")
		return c.Redirect("/upload")
	}
	defer file.Close()

	_, err = h.photos.Upload(c.Context(), file, fileHeader.Filename,
		c.FormValue("display_name"), strings.TrimSpace(c.FormValue("description")),
		projectID, currentUser(c).ID)
	switch {
	case errors.Is(err, services.ErrMissingName):
		h.flash(c, "error", "The display name is required.")
		return c.Redirect("/upload")
	case errors.Is(err, services.ErrBadExtension):
		h.flash(c, "error", "File type not allowed. Use JPG/PNG/WEBP.")
		return c.Redirect("/upload")
	case errors.Is(err, services.ErrNotFound):
		h.flash(c, "error", "Invalid project.")
		return c.Redirect("/upload")
	case err != nil:
		h.flash(c, "error", "Could not save the image.")
		return c.Redirect("/upload")
	}

	h.flash(c, "success", "Image uploaded.")
	return c.Redirect("/dashboard")
}

// EditPhotoPage renders the photo edit form.
func (h *Handlers) EditPhotoPage(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		h.flash(c, "error", "Photo not found.")
		return c.Redirect("/dashboard")
	}
	photo, err := h.photos.GetByID(c.Context(), id)
	if err != nil {
		h.flash(c, "error", "Photo not found.")
		return c.Redirect("/dashboard")
	}
	projects, err := h.projects.List(c.Context())
	if err != nil {
		return err
	}
	return h.render(c, "edit_photo", fiber.Map{
		"Photo":    photo,
		"Projects": projects,
	})
}

// EditPhoto updates a photo's details, moving or renaming its file when
// the project or display name changed.
func (h *Handlers) EditPhoto(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		h.flash(c, "error", "Photo not found.")
		return c.Redirect("/dashboard")
	}
	editURL := fmt.Sprintf("/photos/%d/edit", id)

	projectID, err := strconv.Atoi(strings.TrimSpace(c.FormValue("project_id")))
	if err != nil {
		h.flash(c, "error", "Select a project.")
		return c.Redirect(editURL)
	}

	fileMissing, err := h.photos.Edit(c.Context(), id,
		c.FormValue("display_name"), strings.TrimSpace(c.FormValue("description")), projectID)
	switch {
	case errors.Is(err, services.ErrMissingName):
		h.flash(c, "error", "The display name is required.")
		return c.Redirect(editURL)
	case errors.Is(err, services.ErrNotFound):
		h.flash(c, "error", "Photo or project not found.")
		return c.Redirect("/dashboard")
	case err != nil:
		h.flash(c, "error", "Could not move or rename the file: "+err.Error())
		return c.Redirect(editURL)
	}

	if fileMissing {
		h.flash(c, "error", "Warning: the stored file was not found, only the details were updated.")
	} else {
		h.flash(c, "success", "Photo updated.")
	}
	return c.Redirect("/dashboard")
}

// DeletePhoto removes a photo record and its file.
func (h *Handlers) DeletePhoto(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		h.flash(c, "error", "Photo not found.")
		return c.Redirect("/dashboard")
	}

	err = h.photos.Delete(c.Context(), id)
	switch {
	case errors.Is(err, services.ErrNotFound):
		h.flash(c, "error", "Photo not found.")
	case err != nil:
		h.flash(c, "error", "Could not delete the photo.")
	default:
		h.flash(c, "success", "Photo deleted.")
	}
	return c.Redirect("/dashboard")
}

// ServeUpload sends a stored image to a logged-in user. The path is
// normalized so requests cannot escape the uploads root.
func (h *Handlers) ServeUpload(c *fiber.Ctx) error {
	rel, err := url.QueryUnescape(c.Params("*"))
	if err != nil {
		return fiber.ErrBadRequest
	}
	rel = filepath.Clean(filepath.FromSlash(rel))
	if rel == "." || filepath.IsAbs(rel) || strings.HasPrefix(rel, "..") {
		return fiber.ErrBadRequest
	}
	return c.SendFile(filepath.Join(h.uploadsRoot, rel))
}
