// Package realtime pushes poke messages over websockets. A poke carries no
// data; it only tells connected clients of a tenant that a pull is worth
// doing now instead of at the next poll interval.
package realtime

import (
	"net/http"
	"sync"

	"github.com/declanlscott/printdesk-sub002/internal/logger"
	"github.com/gorilla/websocket"
)

// PokeMessage is the single message type the hub sends.
type PokeMessage struct {
	Type          string `json:"type"`
	ClientGroupID string `json:"clientGroupId,omitempty"`
}

// Hub tracks websocket subscribers per tenant and fans poke messages out
// to them.
type Hub struct {
	mu       sync.RWMutex
	conns    map[*websocket.Conn]string // conn -> tenant id
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewHub constructs a [Hub].
func NewHub(logger *logger.Logger) *Hub {
	logger.Debug().Msg("creating realtime hub")
	return &Hub{
		conns:  make(map[*websocket.Conn]string),
		logger: logger,
	}
}

// Subscribe upgrades the request to a websocket and keeps the connection
// registered until the peer closes it. It blocks for the lifetime of the
// connection.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, tenantID string) error {
	log := logger.FromRequest(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Err(err).Msg("websocket upgrade failed")
		return err
	}

	h.mu.Lock()
	h.conns[conn] = tenantID
	h.mu.Unlock()

	log.Debug().Str("tenant_id", tenantID).Msg("realtime subscriber connected")

	// drain the connection; subscribers never send meaningful frames
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	_ = conn.Close()

	log.Debug().Str("tenant_id", tenantID).Msg("realtime subscriber disconnected")
	return nil
}

// Notify implements the sync engine's Notifier interface: it sends a poke
// to every subscriber of the tenant. Send failures drop the connection;
// the peer will reconnect.
func (h *Hub) Notify(tenantID, clientGroupID string) {
	message := PokeMessage{Type: "poke", ClientGroupID: clientGroupID}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, tenant := range h.conns {
		if tenant != tenantID {
			continue
		}
		if err := conn.WriteJSON(message); err != nil {
			h.logger.Warn().Err(err).Str("tenant_id", tenantID).Msg("dropping unreachable realtime subscriber")
			delete(h.conns, conn)
			_ = conn.Close()
		}
	}
}

// SubscriberCount reports how many connections a tenant currently holds.
func (h *Hub) SubscriberCount(tenantID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, tenant := range h.conns {
		if tenant == tenantID {
			count++
		}
	}

	return count
}
