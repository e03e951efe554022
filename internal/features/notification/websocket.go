package notification

import (
	"context"

	"go-formflow/pkg/utils"

	"github.com/gofiber/contrib/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// WebSocketController pushes unread-count refreshes to a connected
// client. The client sends any message to request a refresh; the server
// answers with the current count.
type WebSocketController struct {
	service NotificationService
	logger  *zap.Logger
}

func NewWebSocketController(service NotificationService, logger *zap.Logger) *WebSocketController {
	return &WebSocketController{service: service, logger: logger}
}

func (h *WebSocketController) HandleWebSocket(c *websocket.Conn) {
	token := c.Query("token")
	claims, err := utils.ValidateToken(token)
	if err != nil {
		c.WriteJSON(map[string]string{"error": "invalid token"})
		c.Close()
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		c.Close()
		return
	}

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}

		count, err := h.service.GetUnreadCount(context.Background(), userID)
		if err != nil {
			h.logger.Warn("unread count lookup failed", zap.Error(err))
			continue
		}

		if err := c.WriteJSON(map[string]int64{"unread": count}); err != nil {
			break
		}
	}
}
