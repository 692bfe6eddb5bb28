package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-catchmail/internal/services"
)

// CleanupHandler exposes the retention sweep to operators
type CleanupHandler struct {
	sweeper services.Sweeper
}

// NewCleanupHandler creates a new CleanupHandler
func NewCleanupHandler(sweeper services.Sweeper) *CleanupHandler {
	return &CleanupHandler{sweeper: sweeper}
}

// Cleanup handles GET /cleanup
func (h *CleanupHandler) Cleanup(c echo.Context) error {
	result := h.sweeper.Sweep(c.Request().Context())

	status := http.StatusOK
	if !result.Success {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, result)
}
