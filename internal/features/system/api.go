package system

import (
	"crm-notifications/internal/common/api"
	"crm-notifications/internal/config"
	"crm-notifications/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SystemApi struct {
	controller *SystemController
	config     *config.Config
}

func NewSystemApi(controller *SystemController, cfg *config.Config) api.Route {
	return &SystemApi{
		controller: controller,
		config:     cfg,
	}
}

func (h *SystemApi) Setup(app *fiber.App) {
	app.Get("/api/health", h.controller.Health)
	app.Get("/api/me", middleware.AuthMiddleware(h.config.SkipAuth), h.controller.GetCurrentUser)
}
