package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/gigflow_be/internal/realtime"
)

var pongFrame = []byte(`{"type":"` + realtime.EventPong + `"}`)

type RealtimeHandler struct {
	Hub *realtime.Hub
}

func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{Hub: hub}
}

// Routes mounts GET /ws. optionalAuth resolves the session cookie, if any,
// into Locals("userId") before the upgrade so the socket knows who is behind it.
func (h *RealtimeHandler) Routes(r fiber.Router, optionalAuth fiber.Handler) {
	r.Get("/ws", optionalAuth, h.Upgrade, websocket.New(h.WebSocketHandler))
}

func (h *RealtimeHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

func (h *RealtimeHandler) WebSocketHandler(c *websocket.Conn) {
	sessionUser := uuid.Nil
	if s, ok := c.Locals("userId").(string); ok {
		sessionUser, _ = uuid.Parse(s)
	}

	client := realtime.NewClient(realtime.NewWebSocketConn(c))
	h.Hub.RegisterClient(client)

	done := make(chan struct{})
	go func() {
		client.Conn.WritePump(client.Send)
		close(done)
	}()

	defer func() {
		h.Hub.UnregisterClient(client)
		// tunggu write pump selesai sebelum conn dilepas fiber
		<-done
	}()

	for {
		var msg realtime.InboundMessage
		if err := client.Conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[Realtime] read error for client %s: %v", client.ID, err)
			}
			return
		}

		switch msg.Type {
		case realtime.EventAddNewUser:
			uid, err := uuid.Parse(strings.TrimSpace(msg.UserID))
			if err != nil {
				log.Printf("[Realtime] client %s announced invalid user id %q", client.ID, msg.UserID)
				continue
			}
			if sessionUser != uuid.Nil && uid != sessionUser {
				log.Printf("[Realtime] client %s announced %s but session is %s, ignored", client.ID, uid, sessionUser)
				continue
			}
			h.Hub.Announce(uid, client)
		case realtime.EventPing:
			select {
			case client.Send <- pongFrame:
			default:
			}
		}
	}
}
