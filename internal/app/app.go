// Package app assembles and runs the web application.
package app

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/base64"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"

	"fototeca/internal/config"
	"fototeca/internal/db"
	"fototeca/internal/handlers"
	"fototeca/internal/services"
)

//go:embed views
var viewsFS embed.FS

// New builds the fiber application with all routes wired. Split from
// Run so tests can drive it through app.Test.
func New(cfg *config.Config, database *db.DB) *fiber.App {
	views, err := fs.Sub(viewsFS, "views")
	if err != nil {
		log.Fatalf("Failed to load views: %v", err)
	}
	engine := html.NewFileSystem(http.FS(views), ".html")

	app := fiber.New(fiber.Config{
		Views: engine,
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(encryptcookie.New(encryptcookie.Config{
		Key: cookieKey(cfg.SecretKey),
	}))

	userService := services.NewUserService(database)
	projectService := services.NewProjectService(database, cfg.UploadsDir)
	photoService := services.NewPhotoService(database, cfg.UploadsDir)
	backupService := services.NewBackupService(database.Path(), cfg.UploadsDir)

	sessions := handlers.NewSessionStore()
	h := handlers.New(sessions, userService, projectService, photoService, backupService, cfg.UploadsDir)

	app.Get("/", h.Home)
	app.Get("/login", h.LoginPage)
	app.Post("/login", h.Login)
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/logout", h.RequireLogin, h.Logout)
	app.Get("/account/password", h.RequireLogin, h.ChangePasswordPage)
	app.Post("/account/password", h.RequireLogin, h.ChangePassword)
	app.Get("/dashboard", h.RequireLogin, h.Dashboard)
	app.Get("/uploads/*", h.RequireLogin, h.ServeUpload)

	app.Get("/upload", h.RequireLogin, h.RequireAdmin, h.UploadPage)
	app.Post("/upload", h.RequireLogin, h.RequireAdmin, h.Upload)
	app.Get("/photos/:id/edit", h.RequireLogin, h.RequireAdmin, h.EditPhotoPage)
	app.Post("/photos/:id/edit", h.RequireLogin, h.RequireAdmin, h.EditPhoto)
	app.Post("/photos/:id/delete", h.RequireLogin, h.RequireAdmin, h.DeletePhoto)

	app.Get("/admin", h.RequireLogin, h.RequireAdmin, h.AdminPanel)
	app.Post("/admin/users/create", h.RequireLogin, h.RequireAdmin, h.CreateUser)
	app.Post("/admin/users/:id/delete", h.RequireLogin, h.RequireAdmin, h.DeleteUser)
	app.Post("/admin/projects/create", h.RequireLogin, h.RequireAdmin, h.CreateProject)
	app.Get("/admin/projects/:id/edit", h.RequireLogin, h.RequireAdmin, h.EditProjectPage)
	app.Post("/admin/projects/:id/edit", h.RequireLogin, h.RequireAdmin, h.EditProject)
	app.Post("/admin/projects/:id/delete", h.RequireLogin, h.RequireAdmin, h.DeleteProject)
	app.Get("/admin/backup", h.RequireLogin, h.RequireAdmin, h.Backup)

	return app
}

// Run starts the application and blocks until shutdown.
func Run() {
	cfg := config.Load()

	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("Failed to create data directories: %v", err)
	}

	database, err := db.Open(context.Background(), cfg.DBPath())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	if err := database.Seed(context.Background(), cfg.UploadsDir); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	app := New(cfg, database)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c
	log.Println("Gracefully shutting down...")
	_ = app.Shutdown()
	log.Println("Server shutdown complete")
}

// cookieKey derives the 32-byte cookie encryption key from the
// configured secret.
func cookieKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return base64.StdEncoding.EncodeToString(sum[:])
}
