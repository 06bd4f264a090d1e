package gateway

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/hireloop/sessiongate/internal/relay"
)

var ErrBackpressure = errors.New("backpressure")

// transport is the unit the gateway fans frames into. The websocket
// implementation below is the production one; tests substitute fakes
// so the state machine runs without sockets.
type transport interface {
	TrySend(relay.Frame) error
	Close()
}

type wsConn struct {
	conn *websocket.Conn
	send chan relay.Frame

	mu     sync.RWMutex
	closed bool
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{conn: conn, send: make(chan relay.Frame, 32)}
}

func (c *wsConn) TrySend(f relay.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

// Close stops accepting frames and closes the send channel. The
// socket itself stays open until the writePump has drained what was
// already queued, so a final frame (force-disconnect in particular)
// still reaches the peer.
func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
}
