package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"fototeca/internal/services"
)

// Home redirects to the dashboard or the login page.
func (h *Handlers) Home(c *fiber.Ctx) error {
	if sess, err := h.sessions.Get(c); err == nil {
		if _, ok := sess.Get(sessionUserKey).(int); ok {
			return c.Redirect("/dashboard")
		}
	}
	return c.Redirect("/login")
}

// LoginPage renders the login form.
func (h *Handlers) LoginPage(c *fiber.Ctx) error {
	return h.render(c, "login", nil)
}

// Login authenticates the submitted credentials and opens a session.
func (h *Handlers) Login(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")

	user, err := h.users.Authenticate(c.Context(), username, password)
	if err != nil {
		h.flash(c, "error", "Invalid username or password.")
		return c.Redirect("/login")
	}

	sess, err := h.sessions.Get(c)
	if err != nil {
		return fiber.ErrInternalServerError
	}
	sess.Set(sessionUserKey, user.ID)
	if err := sess.Save(); err != nil {
		return fiber.ErrInternalServerError
	}
	return c.Redirect("/dashboard")
}

// Logout ends the session.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	if sess, err := h.sessions.Get(c); err == nil {
		_ = sess.Destroy()
	}
	return c.Redirect("/login")
}

// ChangePasswordPage renders the password form.
func (h *Handlers) ChangePasswordPage(c *fiber.Ctx) error {
	return h.render(c, "change_password", nil)
}

// ChangePassword rehashes the password after re-checking the current
// one.
func (h *Handlers) ChangePassword(c *fiber.Ctx) error {
	current := c.FormValue("current_password")
	newPassword := c.FormValue("new_password")
	confirm := c.FormValue("new_password2")

	if newPassword != confirm {
		h.flash(c, "error", "The new passwords do not match.")
		return c.Redirect("/account/password")
	}

	err := h.users.ChangePassword(c.Context(), currentUser(c).ID, current, newPassword)
	switch {
	case errors.Is(err, services.ErrWrongPassword):
		h.flash(c, "error", "Your current password is incorrect.")
		return c.Redirect("/account/password")
	case err != nil:
		h.flash(c, "error", "Could not update the password.")
		return c.Redirect("/account/password")
	}

	h.flash(c, "success", "Password updated.")
	return c.Redirect("/dashboard")
}
