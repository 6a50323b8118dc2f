package handlers

import (
	"net/http"

	"vibelingo_backend/internal/logger"
	"vibelingo_backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origin is enforced by the reverse proxy in production
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WS upgrades the connection and streams reward events for the
// authenticated account. Runs behind the JWT middleware.
func (h *Handler) WS(hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, ok := getAccountID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade failed", "account_id", accountID, "error", err)
			return
		}

		client := ws.NewClient(accountID, conn)
		hub.Register(client)

		go client.WritePump()
		go client.ReadPump(hub)
	}
}
