package websocket

import "encoding/json"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionActivity Action = "student_activity"
	ActionPing     Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventActivity Event = "activity_ok"
	EventPong     Event = "pong"
	EventRoom     Event = "room_event"
)

type ActivityResponse struct {
	Event  Event  `json:"event"`
	Status string `json:"status"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

// RoomEventResponse forwards a session room notification to a student.
type RoomEventResponse struct {
	Event   Event           `json:"event"`
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
}
