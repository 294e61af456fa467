package gameserver

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/greyhaven/thornwall/internal/game/combat"
)

// Hub fans combat events out to websocket subscribers, keyed by match
// id. Events are written in emission order; UI narration depends on it.
// All methods are safe for concurrent use.
type Hub struct {
	logger *zap.Logger

	mu   sync.Mutex
	subs map[string]map[*websocket.Conn]bool
}

// NewHub creates an empty Hub.
//
// Precondition: logger must be non-nil.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger: logger,
		subs:   make(map[string]map[*websocket.Conn]bool),
	}
}

// Subscribe registers a connection for a match's event stream.
func (h *Hub) Subscribe(matchID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[matchID] == nil {
		h.subs[matchID] = make(map[*websocket.Conn]bool)
	}
	h.subs[matchID][conn] = true
}

// Unsubscribe removes a connection and closes it.
func (h *Hub) Unsubscribe(matchID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(matchID, conn)
}

// Broadcast writes the event list to every subscriber of the match.
// Connections that fail to write are dropped.
func (h *Hub) Broadcast(matchID string, events []combat.Event) {
	if len(events) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.subs[matchID] {
		if err := conn.WriteJSON(events); err != nil {
			h.logger.Warn("dropping websocket subscriber",
				zap.String("match_id", matchID),
				zap.Error(err),
			)
			h.removeLocked(matchID, conn)
		}
	}
}

// SubscriberCount returns the number of live subscribers for a match.
func (h *Hub) SubscriberCount(matchID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[matchID])
}

func (h *Hub) removeLocked(matchID string, conn *websocket.Conn) {
	if set, ok := h.subs[matchID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.subs, matchID)
		}
	}
	_ = conn.Close()
}
