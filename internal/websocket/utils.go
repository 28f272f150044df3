package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	// ReadWait is how long a connection may stay silent. Clients ping well
	// within it.
	ReadWait = 2 * time.Minute
)

// Conn serializes writes from the read loop and the room relay onto one
// gorilla connection, which allows a single concurrent writer.
type Conn struct {
	*websocket.Conn
	mu sync.Mutex
}

// Wrap prepares conn for concurrent writers.
func Wrap(conn *websocket.Conn) *Conn {
	return &Conn{Conn: conn}
}

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func (c *Conn) WriteTyped(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.SetWriteDeadline(time.Now().Add(writeWait))
	return c.WriteJSON(v)
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func (c *Conn) WriteError(errMsg string) error {
	return c.WriteTyped(ErrorResponse{Event: EventError, Error: errMsg})
}

// ReadTyped reads and decodes one message, extending the read deadline.
func (c *Conn) ReadTyped(v interface{}) error {
	_ = c.SetReadDeadline(time.Now().Add(ReadWait))
	return c.ReadJSON(v)
}
