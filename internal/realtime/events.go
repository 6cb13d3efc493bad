package realtime

// Client -> server event types.
const (
	EventAddNewUser = "addNewUser"
	EventPing       = "ping"
)

// Server -> client.
const EventPong = "pong"

type InboundMessage struct {
	Type   string `json:"type"`
	UserID string `json:"userId,omitempty"`
}
