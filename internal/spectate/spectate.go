// Package spectate implements a read-only WebSocket broadcast feed: a
// tap on the board's rendered rows, pushed to every connected
// spectator whenever a player mutates the board. It carries no
// commands of its own and never touches the Board's monitor directly,
// it only ever receives already-rendered rows from the caller.
package spectate

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Frame is one JSON message pushed to every spectator.
type Frame struct {
	Rows []string `json:"rows"`
}

var upgrader = websocket.Upgrader{
	// Spectators are read-only observers of a single shared, public
	// board; there is no session state to protect against
	// cross-origin hijacking here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub tracks connected spectators and fans a render out to all of
// them. Its mutex is entirely independent of the Board's monitor: a
// slow or gone spectator write never holds the Board lock, though a
// player whose command triggers a broadcast waits for it before that
// command's reply is sent.
type Hub struct {
	mu         sync.Mutex
	spectators map[*websocket.Conn]bool
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		spectators: make(map[*websocket.Conn]bool),
		logger:     logger,
	}
}

// Handler upgrades incoming HTTP requests to WebSocket connections and
// registers them as spectators. Anything the spectator sends is read
// and discarded; a spectator's only effective interaction is
// (eventually) closing the connection.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("spectate: upgrade failed", zap.Error(err))
			return
		}
		h.mu.Lock()
		h.spectators[conn] = true
		h.mu.Unlock()

		// Drain and discard anything the spectator sends, so the
		// connection's read side notices a close or error promptly.
		go func() {
			for {
				if _, _, err := conn.NextReader(); err != nil {
					h.remove(conn)
					return
				}
			}
		}()
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.spectators, conn)
	h.mu.Unlock()
	conn.Close()
}

// Broadcast pushes rows to every connected spectator. The whole write
// loop runs under h.mu, so concurrent broadcasts never write to the
// same connection at once. A write failure disconnects that spectator
// only; it never propagates to the caller.
func (h *Hub) Broadcast(rows []string) {
	payload, err := json.Marshal(Frame{Rows: rows})
	if err != nil {
		h.logger.Error("spectate: failed to encode frame", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.spectators {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			delete(h.spectators, c)
			c.Close()
		}
	}
}
