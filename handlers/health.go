package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/webmovil/escolar-api/database"
)

// HandleCheckHealth reports liveness plus database reachability.
func HandleCheckHealth(c *fiber.Ctx, store database.Storage) error {
	if err := store.HealthCheck(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "degraded",
			"error":  err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
