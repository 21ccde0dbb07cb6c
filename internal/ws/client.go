package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 64
)

var (
	errBufferFull    = errors.New("session send buffer full")
	errSessionClosed = errors.New("session closed")
)

// envelope is the wire framing: one JSON object per text message.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Client is one live WebSocket session. It satisfies directory.Session:
// Send enqueues without blocking, so one slow consumer never stalls a
// broadcast to the others.
type Client struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte

	// mu serializes enqueues against close: a broadcaster may hold a session
	// snapshot taken before this client left the directory, so its Send can
	// arrive after disconnect and must see the closed flag, never a closed
	// channel.
	mu     sync.Mutex
	closed bool
}

func newClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}
}

func (c *Client) UserID() string { return c.userID }

// Send marshals the event envelope and queues it for the write pump. A full
// buffer or an already-closed session drops the message for this session
// only.
func (c *Client) Send(event string, payload any) error {
	msg, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		return fmt.Errorf("marshaling %s event: %w", event, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errSessionClosed
	}
	select {
	case c.send <- msg:
		return nil
	default:
		return errBufferFull
	}
}

// close signals the write pump to finish. The channel is closed under the
// same mutex Send enqueues under, so an in-flight delivery either lands
// before the close or observes the closed flag. Safe to call more than once.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// readPump consumes inbound frames until the peer goes away. The server
// pushes far more than it reads; inbound payloads are ignored.
func (c *Client) readPump() {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket read error", "user_id", c.userID, "error", err)
			}
			return
		}
	}
}

// writePump drains the send queue to the connection and keeps the peer alive
// with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Debug("websocket write error", "user_id", c.userID, "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
