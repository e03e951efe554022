package notification

import (
	"go-formflow/internal/common/api"
	"go-formflow/internal/config"
	"go-formflow/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type NotificationApi struct {
	controller *NotificationController
	ws         *WebSocketController
	config     *config.Config
}

func NewNotificationApi(controller *NotificationController, ws *WebSocketController, config *config.Config) api.Route {
	return &NotificationApi{
		controller: controller,
		ws:         ws,
		config:     config,
	}
}

func (h *NotificationApi) Setup(app *fiber.App) {
	group := app.Group("/api/notifications", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", h.controller.List)
	group.Get("/unread-count", h.controller.GetUnreadCount)
	group.Put("/:id/read", h.controller.MarkAsRead)
	group.Post("/mark-all-read", h.controller.MarkAllAsRead)

	// Websocket stream authenticates via query token, not the header
	// middleware, since browsers cannot set headers on ws upgrades.
	app.Get("/ws/notifications", websocket.New(h.ws.HandleWebSocket))
}
