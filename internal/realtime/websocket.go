// internal/realtime/websocket.go
package realtime

import (
	"log"
	"time"

	"github.com/gofiber/websocket/v2"
)

const writeWait = 10 * time.Second

// WebSocketConn wraps websocket.Conn (biar hub.go tidak perlu import websocket)
type WebSocketConn struct {
	Conn *websocket.Conn
}

func NewWebSocketConn(c *websocket.Conn) *WebSocketConn {
	return &WebSocketConn{Conn: c}
}

// WritePump copies frames from send to the socket until send is closed or a write fails.
func (w *WebSocketConn) WritePump(send <-chan []byte) {
	for msg := range send {
		_ = w.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := w.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Println("[Realtime] websocket write error:", err)
			return
		}
	}
	_ = w.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (w *WebSocketConn) ReadJSON(v interface{}) error {
	return w.Conn.ReadJSON(v)
}
