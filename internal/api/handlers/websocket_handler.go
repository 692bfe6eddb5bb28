package handlers

import (
	"log/slog"

	gws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-catchmail/internal/websocket"
)

// WebSocketHandler attaches browsers to the live inbox feed
type WebSocketHandler struct {
	hub      *websocket.Hub
	upgrader gws.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *websocket.Hub, upgrader gws.Upgrader, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, upgrader: upgrader, logger: logger}
}

// Serve handles GET /ws
func (h *WebSocketHandler) Serve(c echo.Context) error {
	if err := h.hub.Serve(h.upgrader, c.Response(), c.Request()); err != nil {
		// The upgrader has already written the HTTP error response
		if h.logger != nil {
			h.logger.Debug("websocket connection refused", slog.Any("error", err))
		}
	}
	return nil
}
