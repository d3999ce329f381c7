package chat

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Client represents one live connection to the broadcast hub.
// The registry owns it from Add to Remove; the gateway only drives its I/O.
type Client struct {
	ConnID string          // unique connection ID (snowflake)
	WS     *websocket.Conn // nil in unit tests
	Send   chan []byte     // outbound queue, drained by a single writer goroutine

	done      chan struct{}
	closeOnce sync.Once
}

// NewClient creates a client with a buffered outbound queue.
func NewClient(connID string, ws *websocket.Conn, sendQueueSize int) *Client {
	if sendQueueSize <= 0 {
		sendQueueSize = defaultSendQueueSize
	}
	return &Client{
		ConnID: connID,
		WS:     ws,
		Send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
	}
}

// Done is closed when the client has been torn down.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// close tears the client down exactly once: the send queue is closed so the
// writer goroutine drains and exits, then the socket is closed.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		close(c.Send)
		closeQuiet(c.WS)
	})
}

func closeQuiet(c *websocket.Conn) {
	if c != nil {
		_ = c.Close()
	}
}
