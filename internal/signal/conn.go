package signal

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

var errBackpressure = errors.New("send buffer full")
var errConnClosed = errors.New("connection closed")

// wsConn wraps one websocket connection behind the app.Conn interface.
// Writes go through a buffered channel drained by the server's write
// pump; TrySend never blocks and reports backpressure instead.
type wsConn struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func newWsConn(id string, conn *websocket.Conn, sendBuffer int) *wsConn {
	return &wsConn{
		id:   id,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) TrySend(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errConnClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return errBackpressure
	}
}

// Close is idempotent and safe from any goroutine; closing the send
// channel stops the write pump, closing the socket unblocks the reader.
func (c *wsConn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
	return c.conn.Close()
}
