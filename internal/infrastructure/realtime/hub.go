package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"chatsync/internal/pkg/sync/application/state"
)

// changeFrame is the JSON shape pushed to UI subscribers for each engine
// change notification.
type changeFrame struct {
	Kind           string `json:"kind"`
	ConversationID int64  `json:"conversation_id,omitempty"`
}

// Hub fans engine change notifications out to every attached UI socket, so a
// frontend can recompute its views without polling the HTTP endpoints. Each
// subscriber gets every frame; a subscriber that stops draining is dropped.
type Hub struct {
	log zerolog.Logger

	mu    sync.Mutex
	conns map[string]*Connection
}

// NewHub constructs a hub with no subscribers.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:   log.With().Str("component", "realtime_hub").Logger(),
		conns: make(map[string]*Connection),
	}
}

// Run consumes the engine's change feed until the context is canceled or the
// feed is closed, broadcasting each change to all attached connections.
func (h *Hub) Run(ctx context.Context, changes <-chan state.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			payload, err := json.Marshal(changeFrame{
				Kind:           string(c.Kind),
				ConversationID: c.ConversationID,
			})
			if err != nil {
				h.log.Error().Err(err).Msg("encode change frame")
				continue
			}
			h.broadcast(payload)
		}
	}
}

// Attach registers a connection and starts its write loop.
func (h *Hub) Attach(conn *Connection) {
	h.mu.Lock()
	h.conns[conn.ID] = conn
	h.mu.Unlock()

	conn.Start()
	h.log.Debug().Str("connection_id", conn.ID).Msg("subscriber attached")
}

// Detach removes a connection if it is still tracked.
func (h *Hub) Detach(conn *Connection) {
	h.mu.Lock()
	delete(h.conns, conn.ID)
	h.mu.Unlock()
}

// Close terminates all tracked connections and clears hub state.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*Connection, 0, len(h.conns))
	for _, conn := range h.conns {
		conns = append(conns, conn)
	}
	h.conns = make(map[string]*Connection)
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close(websocket.CloseGoingAway, "hub shutdown")
	}
}

func (h *Hub) broadcast(payload []byte) {
	h.mu.Lock()
	conns := make([]*Connection, 0, len(h.conns))
	for _, conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		if err := conn.Send(payload); err != nil {
			h.Detach(conn)
		}
	}
}
