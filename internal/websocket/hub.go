package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/welldanyogia/webrana-catchmail/internal/models"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeNewEmail MessageType = "new_email"
	MessageTypePing     MessageType = "ping"
	MessageTypePong     MessageType = "pong"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type  MessageType      `json:"type"`
	Email *NewEmailPayload `json:"email,omitempty"`
}

// NewEmailPayload represents the payload for new email notifications
type NewEmailPayload struct {
	ID         uint   `json:"id"`
	Sender     string `json:"sender"`
	Subject    string `json:"subject,omitempty"`
	ReceivedAt string `json:"received_at"`
}

// Hub maintains the set of connected inbox viewers and broadcasts to them
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Broadcast to every client
	broadcast chan []byte

	// Closed once Run has returned
	done chan struct{}

	mu sync.RWMutex

	logger *slog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the hub's main loop and returns when ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				client.close()
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("viewer connected", slog.String("viewer", client.ID()))
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.close()
			}
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("viewer disconnected", slog.String("viewer", client.ID()))
			}

		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// Client buffer full, skip
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.close()
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// NotifyNewEmail tells every connected viewer that an email arrived.
// It never blocks the caller; notifications are dropped when the queue is full.
func (h *Hub) NotifyNewEmail(email *models.Email) {
	h.BroadcastNewEmail(&NewEmailPayload{
		ID:         email.ID,
		Sender:     email.Sender,
		Subject:    email.Subject,
		ReceivedAt: email.ReceivedAt,
	})
}

// BroadcastNewEmail queues a new email notification for all clients
func (h *Hub) BroadcastNewEmail(payload *NewEmailPayload) {
	data, err := json.Marshal(WSMessage{Type: MessageTypeNewEmail, Email: payload})
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to marshal broadcast message", slog.Any("error", err))
		}
		return
	}

	select {
	case h.broadcast <- data:
	default:
		if h.logger != nil {
			h.logger.Warn("broadcast queue full, dropping notification",
				slog.Uint64("email_id", uint64(payload.ID)))
		}
	}
}
