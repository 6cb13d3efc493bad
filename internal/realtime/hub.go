// internal/realtime/hub.go
package realtime

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
)

const sendBuffer = 256

type Client struct {
	ID     string
	UserID uuid.UUID // uuid.Nil sampai client announce
	Conn   *WebSocketConn
	Send   chan []byte
}

func NewClient(conn *WebSocketConn) *Client {
	return &Client{
		ID:   uuid.New().String(),
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
	}
}

// Hub is the presence registry: which live connection belongs to which user.
// It is ephemeral and only used for best-effort delivery.
type Hub struct {
	clients  map[string]*Client
	presence map[uuid.UUID]*Client
	mu       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:  make(map[string]*Client),
		presence: make(map[uuid.UUID]*Client),
	}
}

func (h *Hub) RegisterClient(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()
	log.Printf("[Realtime] client registered: %s", client.ID)
}

// Announce maps userID to client, replacing whatever connection the user had before.
func (h *Hub) Announce(userID uuid.UUID, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		h.clients[client.ID] = client
	}
	if client.UserID != uuid.Nil && client.UserID != userID {
		if cur, ok := h.presence[client.UserID]; ok && cur == client {
			delete(h.presence, client.UserID)
		}
	}
	client.UserID = userID
	h.presence[userID] = client
	log.Printf("[Realtime] user %s online (client %s)", userID, client.ID)
}

// UnregisterClient drops the connection. The presence entry is removed only
// if it still points at this connection.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	old, ok := h.clients[client.ID]
	if !ok {
		return
	}
	delete(h.clients, client.ID)
	for uid, c := range h.presence {
		if c == old {
			delete(h.presence, uid)
		}
	}
	close(old.Send)
	log.Printf("[Realtime] client unregistered: %s", client.ID)
}

func (h *Hub) Online(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.presence[userID]
	return ok
}

// Deliver queues an encoded frame for userID. It never blocks: an offline
// user or a full queue drops the frame.
func (h *Hub) Deliver(userID uuid.UUID, payload []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.presence[userID]
	if !ok {
		return false
	}
	select {
	case client.Send <- payload:
		return true
	default:
		log.Printf("[Realtime] send queue full for user %s, dropping", userID)
		return false
	}
}

// Notify implements bids.Notifier for a single instance.
func (h *Hub) Notify(_ context.Context, userID uuid.UUID, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	h.Deliver(userID, b)
	return nil
}
