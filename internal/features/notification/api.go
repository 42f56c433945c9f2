package notification

import (
	"crm-notifications/internal/common/api"
	"crm-notifications/internal/config"
	"crm-notifications/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type NotificationApi struct {
	controller *NotificationController
	config     *config.Config
}

func NewNotificationApi(controller *NotificationController, config *config.Config) api.Route {
	return &NotificationApi{
		controller: controller,
		config:     config,
	}
}

func (h *NotificationApi) Setup(app *fiber.App) {
	group := app.Group("/api/notifications", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", h.controller.List)
	group.Get("/non-displayed", h.controller.NonDisplayedCount)
	group.Put("/display", h.controller.Display)
	group.Put("/read", h.controller.Read)
	group.Get("/ws", h.controller.UpgradeGuard, websocket.New(h.controller.LiveFeed))
}
