// Package handlers translates HTTP requests into service operations and
// renders the HTML surface. Errors reach the user as flash messages
// followed by a redirect.
package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"

	"fototeca/internal/models"
	"fototeca/internal/services"
)

const (
	sessionUserKey  = "user_id"
	flashMessageKey = "flash_message"
	flashLevelKey   = "flash_level"

	localUser = "current_user"
)

// Handlers wires the HTTP routes to the user, project, photo, and
// backup services.
type Handlers struct {
	sessions    *session.Store
	users       *services.UserService
	projects    *services.ProjectService
	photos      *services.PhotoService
	backups     *services.BackupService
	uploadsRoot string
}

func New(sessions *session.Store, users *services.UserService, projects *services.ProjectService,
	photos *services.PhotoService, backups *services.BackupService, uploadsRoot string) *Handlers {
	return &Handlers{
		sessions:    sessions,
		users:       users,
		projects:    projects,
		photos:      photos,
		backups:     backups,
		uploadsRoot: uploadsRoot,
	}
}

// NewSessionStore builds the cookie-keyed session store used for logins
// and flash messages.
func NewSessionStore() *session.Store {
	return session.New(session.Config{
		Expiration:     24 * time.Hour,
		KeyLookup:      "cookie:fototeca_session",
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		KeyGenerator:   uuid.NewString,
	})
}

// RequireLogin loads the logged-in user into the request context and
// redirects to the login page when there is none.
func (h *Handlers) RequireLogin(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return c.Redirect("/login")
	}
	userID, ok := sess.Get(sessionUserKey).(int)
	if !ok {
		return c.Redirect("/login")
	}
	user, err := h.users.GetByID(c.Context(), userID)
	if err != nil {
		_ = sess.Destroy()
		return c.Redirect("/login")
	}
	c.Locals(localUser, user)
	return c.Next()
}

// RequireAdmin turns non-administrators away with a warning on the
// dashboard. Must run after RequireLogin.
func (h *Handlers) RequireAdmin(c *fiber.Ctx) error {
	user := currentUser(c)
	if user == nil || !user.IsAdmin {
		h.flash(c, "error", "Administrators only.")
		return c.Redirect("/dashboard")
	}
	return c.Next()
}

func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUser).(*models.User)
	return user
}

func (h *Handlers) flash(c *fiber.Ctx, level, message string) {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return
	}
	sess.Set(flashMessageKey, message)
	sess.Set(flashLevelKey, level)
	_ = sess.Save()
}

func (h *Handlers) popFlash(c *fiber.Ctx) (message, level string) {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return "", ""
	}
	message, _ = sess.Get(flashMessageKey).(string)
	level, _ = sess.Get(flashLevelKey).(string)
	if message != "" {
		sess.Delete(flashMessageKey)
		sess.Delete(flashLevelKey)
		_ = sess.Save()
	}
	return message, level
}

// render draws a view inside the main layout with the flash message and
// current user injected.
func (h *Handlers) render(c *fiber.Ctx, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	message, level := h.popFlash(c)
	data["FlashMessage"] = message
	data["FlashLevel"] = level
	data["CurrentUser"] = currentUser(c)
	return c.Render(name, data, "layouts/main")
}
