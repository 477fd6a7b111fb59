package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jshan/storefront-backend/internal/errors"
	"github.com/jshan/storefront-backend/internal/middleware"
	"github.com/jshan/storefront-backend/internal/ws"
)

type OrderFeedController struct {
	hub            *ws.Hub
	allowedOrigins map[string]bool
}

func NewOrderFeedController(hub *ws.Hub, allowedOrigins []string) *OrderFeedController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}
	return &OrderFeedController{
		hub:            hub,
		allowedOrigins: allowed,
	}
}

func (ctrl *OrderFeedController) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return ctrl.allowedOrigins[origin] || ctrl.allowedOrigins["*"]
		},
	}
}

// Connect upgrades to a WebSocket that streams the user's order status
// changes
// GET /api/v1/ws/orders
func (ctrl *OrderFeedController) Connect(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		errors.Unauthorized(c, "")
		return
	}

	upgrader := ctrl.upgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err, map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	client := &ws.Client{
		Hub:    ctrl.hub,
		Conn:   &ws.Conn{Conn: conn},
		UserID: userID,
		Send:   make(chan []byte, 256),
	}

	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("Order feed connection established", map[string]interface{}{
		"user_id": userID,
	})
}
