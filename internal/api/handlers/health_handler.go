package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-catchmail/internal/api/response"
	"github.com/welldanyogia/webrana-catchmail/internal/database"
	apperrors "github.com/welldanyogia/webrana-catchmail/internal/errors"
	"gorm.io/gorm"
)

// Machine-readable health reasons
const (
	ReasonDBUnreachable = "db_unreachable"
	ReasonSchemaMissing = "schema_missing"
)

// HealthHandler handles health check and schema initialization requests
type HealthHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *gorm.DB, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string            `json:"status"`
	Reason   string            `json:"reason,omitempty"`
	Error    string            `json:"error,omitempty"`
	Services map[string]string `json:"services"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c echo.Context) error {
	ctx := c.Request().Context()

	err := database.Ping(ctx, h.db)
	exists := false
	if err == nil {
		exists, err = database.HasSchema(ctx, h.db)
	}
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("health check failed", slog.String("reason", ReasonDBUnreachable), slog.Any("error", err))
		}
		return c.JSON(http.StatusInternalServerError, HealthResponse{
			Status: "unhealthy",
			Reason: ReasonDBUnreachable,
			Error:  err.Error(),
			Services: map[string]string{
				"database": "unhealthy",
				"schema":   "unknown",
			},
		})
	}

	if !exists {
		return c.JSON(http.StatusInternalServerError, HealthResponse{
			Status: "unhealthy",
			Reason: ReasonSchemaMissing,
			Error:  apperrors.ErrSchemaMissing.Error(),
			Services: map[string]string{
				"database": "healthy",
				"schema":   "missing",
			},
		})
	}

	return c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
		Services: map[string]string{
			"database": "healthy",
			"schema":   "healthy",
		},
	})
}

// DBInit handles GET /db-init
func (h *HealthHandler) DBInit(c echo.Context) error {
	if err := database.InitSchema(c.Request().Context(), h.db); err != nil {
		if h.logger != nil {
			h.logger.Error("schema initialization failed", slog.Any("error", err))
		}
		return response.InternalError(c, err.Error())
	}

	return response.SuccessWithMessage(c, map[string]string{"table": "emails"}, "schema ready")
}
