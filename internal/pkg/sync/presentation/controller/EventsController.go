package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"chatsync/internal/infrastructure/realtime"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The facade only listens on the loopback interface.
		return true
	},
}

const eventsReadTimeout = 60 * time.Second

// EventsController handles the websocket endpoint a UI subscribes to for
// change notifications. The socket is push-only; inbound frames beyond
// pongs are ignored.
type EventsController struct {
	Hub *realtime.Hub
}

func NewEventsController(hub *realtime.Hub) *EventsController {
	return &EventsController{Hub: hub}
}

func (h *EventsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; nothing more to do.
			return
		}

		conn := realtime.NewConnection(ws)
		h.Hub.Attach(conn)
		defer func() {
			h.Hub.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(1 << 20)
		_ = ws.SetReadDeadline(time.Now().Add(eventsReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(eventsReadTimeout))
		})

		// Drain the socket so control frames are processed; the read loop
		// ends when the subscriber disconnects.
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}
}
