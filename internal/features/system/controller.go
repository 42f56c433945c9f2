package system

import (
	"context"
	"time"

	"crm-notifications/internal/database"
	"crm-notifications/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SystemController struct {
	mongodb *database.MongodbDB
	started time.Time
}

// NewSystemController accepts a nil database for in-memory runs
func NewSystemController(mongodb *database.MongodbDB) *SystemController {
	return &SystemController{
		mongodb: mongodb,
		started: time.Now(),
	}
}

// Health godoc
func (c *SystemController) Health(ctx *fiber.Ctx) error {
	storage := "memory"
	if c.mongodb != nil && c.mongodb.Client != nil {
		pingCtx, cancel := context.WithTimeout(ctx.Context(), 2*time.Second)
		defer cancel()
		if err := c.mongodb.Client.Ping(pingCtx, nil); err != nil {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":  "unavailable",
				"storage": "mongo",
				"error":   err.Error(),
			})
		}
		storage = "mongo"
	}
	return ctx.JSON(fiber.Map{
		"status":  "ok",
		"storage": storage,
		"uptime":  int64(time.Since(c.started).Seconds()),
	})
}

// GetCurrentUser godoc
func (c *SystemController) GetCurrentUser(ctx *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	return ctx.JSON(fiber.Map{"user_id": userID})
}
