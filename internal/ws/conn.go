package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chat-gateway/internal/domain"
)

const writeTimeout = 10 * time.Second

// Conn adapta una conexión gorilla al contrato Channel. Las escrituras se
// serializan con un mutex porque gorilla no admite escritores concurrentes.
type Conn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func NewConn(conn *websocket.Conn) *Conn {
	return &Conn{conn: conn}
}

func (c *Conn) Send(ev domain.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(ev)
}

func (c *Conn) Close() error {
	return c.conn.Close()
}
