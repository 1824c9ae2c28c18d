package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rknair/cloudpuff-backend/internal/middleware"
	"github.com/rknair/cloudpuff-backend/internal/realtime"
)

// WSController upgrades storefront connections into hub sessions.
// Authentication is optional: guests receive catalog broadcasts,
// authenticated users additionally receive their notifications.
type WSController struct {
	hub            *realtime.Hub
	allowedOrigins []string
}

func NewWSController(hub *realtime.Hub, allowedOrigins []string) *WSController {
	return &WSController{
		hub:            hub,
		allowedOrigins: allowedOrigins,
	}
}

func (ctrl *WSController) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range ctrl.allowedOrigins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			return false
		},
	}
}

// Connect upgrades the request and starts the session pumps
// GET /ws
func (ctrl *WSController) Connect(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	// Zero means guest
	userID, _ := middleware.GetUserID(c)

	upgrader := ctrl.upgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("WebSocket upgrade failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	client := &realtime.Client{
		Hub:    ctrl.hub,
		Conn:   &realtime.Conn{Conn: conn},
		UserID: userID,
		Send:   make(chan []byte, 256),
	}

	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
