// Package smtp receives mail for the target inbox over SMTP.
package smtp

import (
	"context"
	"log/slog"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/welldanyogia/webrana-catchmail/internal/logger"
	"github.com/welldanyogia/webrana-catchmail/internal/models"
	"github.com/welldanyogia/webrana-catchmail/internal/services"
)

// DefaultProcessTimeout bounds parsing and storing one message
const DefaultProcessTimeout = 30 * time.Second

// Receiver is the intake surface the SMTP session delivers into
type Receiver interface {
	Accepts(to string) bool
	Receive(ctx context.Context, env services.Envelope) (*models.Email, error)
}

// Backend implements the go-smtp Backend interface
type Backend struct {
	intake         Receiver
	processTimeout time.Duration
	security       *logger.SecurityLogger
	logger         *slog.Logger
}

// BackendConfig holds configuration for the SMTP backend
type BackendConfig struct {
	Intake         Receiver
	ProcessTimeout time.Duration
	// Security records refused recipients; may be nil
	Security *logger.SecurityLogger
	Logger   *slog.Logger
}

// NewBackend creates a new SMTP backend
func NewBackend(cfg *BackendConfig) *Backend {
	timeout := cfg.ProcessTimeout
	if timeout <= 0 {
		timeout = DefaultProcessTimeout
	}
	return &Backend{
		intake:         cfg.Intake,
		processTimeout: timeout,
		security:       cfg.Security,
		logger:         cfg.Logger,
	}
}

// NewSession starts a session for one client connection
func (b *Backend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	remote := c.Conn().RemoteAddr().String()
	if b.logger != nil {
		b.logger.Debug("new SMTP connection", slog.String("remote_addr", remote))
	}
	return NewSession(b, remote), nil
}
