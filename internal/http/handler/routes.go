package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"docvault/internal/service"
)

// validate checks request DTOs before they reach the services.
var validate = validator.New()

// Services bundles the domain services consumed by the HTTP layer.
type Services struct {
	Documents  service.DocumentService
	Metadata   service.MetadataService
	Categories service.CategoryService
}

// RegisterRoutes attaches all HTTP routes to the provided Fiber app. Handlers
// stay thin: parse, validate, call the service, map the result.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc Services) {
	// Health endpoint: checks DB connectivity only.
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	})

	// Simple liveness probe.
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	registerDocumentRoutes(app, svc.Documents)
	registerMetadataRoutes(app, svc.Metadata)
	registerCategoryRoutes(app, svc.Categories)
}
