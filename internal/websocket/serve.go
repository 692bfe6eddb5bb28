package websocket

import (
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
)

// Serve upgrades the request to a WebSocket connection and attaches it to the hub.
// The pumps keep running after Serve returns.
func (h *Hub) Serve(upgrader websocket.Upgrader, w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("websocket upgrade failed: %w", err)
	}

	client := NewClient(h, conn, h.logger)
	h.Register(client)

	go client.writeLoop()
	go client.readLoop()

	return nil
}
