package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/vestalabs/habitat/logging"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// HandleWebSocket upgrades the connection and registers it with the
// hub. The hub owns all writes; the read loop only drains control
// frames until the client goes away.
func (a *API) HandleWebSocket(c *gin.Context) {
	if a.Hub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live updates disabled"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Default().Warn("websocket upgrade failed", "error", err)
		return
	}

	a.Hub.Register(conn, c.Query("client_id"))

	go func() {
		defer func() {
			a.Hub.Unregister(conn)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
