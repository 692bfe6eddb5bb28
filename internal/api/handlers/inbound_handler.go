package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	apperrors "github.com/welldanyogia/webrana-catchmail/internal/errors"
	"github.com/welldanyogia/webrana-catchmail/internal/logger"
	"github.com/welldanyogia/webrana-catchmail/internal/models"
	"github.com/welldanyogia/webrana-catchmail/internal/services"
)

// Envelope headers accepted by POST /inbound
const (
	HeaderEnvelopeTo   = "X-Envelope-To"
	HeaderEnvelopeFrom = "X-Envelope-From"
)

// DefaultMaxInboundBytes caps the raw message accepted over HTTP
const DefaultMaxInboundBytes int64 = 25 * 1024 * 1024

// Receiver stores inbound messages
type Receiver interface {
	Receive(ctx context.Context, env services.Envelope) (*models.Email, error)
}

// InboundHandler accepts raw messages pushed over HTTP
type InboundHandler struct {
	intake   Receiver
	maxBytes int64
	security *logger.SecurityLogger
	logger   *slog.Logger
}

// InboundConfig holds configuration for the inbound handler
type InboundConfig struct {
	MaxBytes       int64
	SecurityLogger *logger.SecurityLogger
	Logger         *slog.Logger
}

// NewInboundHandler creates a new InboundHandler
func NewInboundHandler(intake Receiver, cfg InboundConfig) *InboundHandler {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxInboundBytes
	}
	return &InboundHandler{
		intake:   intake,
		maxBytes: cfg.MaxBytes,
		security: cfg.SecurityLogger,
		logger:   cfg.Logger,
	}
}

// InboundResponse reports the outcome of one delivery
type InboundResponse struct {
	Status   int    `json:"status"`
	Accepted bool   `json:"accepted"`
	ID       uint   `json:"id,omitempty"`
	Code     string `json:"code,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Receive handles POST /inbound.
// The envelope comes from the to/from query parameters or the X-Envelope-* headers;
// the request body is the raw RFC 5322 message.
func (h *InboundHandler) Receive(c echo.Context) error {
	req := c.Request()
	to := envelopeValue(c, "to", HeaderEnvelopeTo)
	from := envelopeValue(c, "from", HeaderEnvelopeFrom)

	body := http.MaxBytesReader(c.Response(), req.Body, h.maxBytes)
	defer body.Close()

	email, err := h.intake.Receive(req.Context(), services.Envelope{
		To:   to,
		From: from,
		Raw:  body,
	})

	status := services.StatusFor(err)
	if err == nil {
		return c.JSON(status, InboundResponse{Status: status, Accepted: true, ID: email.ID})
	}

	if errors.Is(err, services.ErrRejected) {
		h.security.RecipientRejected(c.RealIP(), to)
	} else if h.logger != nil {
		h.logger.Error("inbound delivery failed",
			slog.String("to", to),
			slog.String("from", from),
			slog.Any("error", err))
	}

	return c.JSON(status, InboundResponse{
		Status: status,
		Code:   apperrors.GetErrorCode(err),
		Error:  err.Error(),
	})
}

func envelopeValue(c echo.Context, param, header string) string {
	if v := strings.TrimSpace(c.QueryParam(param)); v != "" {
		return v
	}
	return strings.TrimSpace(c.Request().Header.Get(header))
}
