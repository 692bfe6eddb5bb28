package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Viewers only send keepalive pings
	maxMessageSize = 512

	// A viewer reloads on the first new_email it sees, so a short queue is enough
	sendBufferSize = 16
)

// Client is one open inbox viewer
type Client struct {
	id     string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger *slog.Logger

	// closed tells the write loop to hang up; send itself is never closed
	closed    chan struct{}
	closeOnce sync.Once
}

// NewClient creates a viewer bound to hub
func NewClient(hub *Hub, conn *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		id:     uuid.NewString(),
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		logger: logger,
		closed: make(chan struct{}),
	}
}

// ID identifies the viewer in logs
func (c *Client) ID() string {
	return c.id
}

// readLoop answers pings and detects disconnects. It unregisters the viewer on exit.
func (c *Client) readLoop() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) && c.logger != nil {
				c.logger.Warn("viewer connection lost", slog.String("viewer", c.id), slog.Any("error", err))
			}
			return
		}
		c.handleMessage(data)
	}
}

// writeLoop drains the send queue and keeps the connection alive
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.closed:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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

// handleMessage answers application-level pings. Anything else is ignored.
func (c *Client) handleMessage(data []byte) {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type != MessageTypePing {
		if c.logger != nil {
			c.logger.Debug("ignoring viewer message", slog.String("viewer", c.id))
		}
		return
	}
	c.queue(WSMessage{Type: MessageTypePong})
}

// queue hands msg to the write loop, dropping it when the viewer is not keeping up
func (c *Client) queue(msg WSMessage) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		return false
	}

	if c.isClosed() {
		return false
	}

	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// close stops the write loop. Safe to call more than once.
func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.closed) })
}

// isClosed reports whether the hub has let go of the viewer
func (c *Client) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}
