// Package ws adapts gorilla/websocket connections to the relay core.
package ws

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"signal-relay/internal/core"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("connection closed")
)

// Conn wraps one websocket with a buffered outbound queue. The write pump
// is the only goroutine touching the socket for writes; everyone else goes
// through TrySend.
type Conn struct {
	ws   *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newConn(ws *websocket.Conn, sendBuf int) *Conn {
	return &Conn{
		ws:   ws,
		send: make(chan core.Frame, sendBuf),
	}
}

func (c *Conn) Open() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed
}

func (c *Conn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *Conn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.ws.Close()
	c.mu.Unlock()
}
