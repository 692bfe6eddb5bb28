package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/welldanyogia/webrana-catchmail/internal/errors"
	"github.com/welldanyogia/webrana-catchmail/internal/models"
	"github.com/welldanyogia/webrana-catchmail/internal/parser"
	"github.com/welldanyogia/webrana-catchmail/internal/repository"
	"github.com/welldanyogia/webrana-catchmail/internal/validator"
)

// Intake errors, shared with the application error codes
var (
	ErrRejected = apperrors.ErrRecipientRejected
	ErrParse    = apperrors.ErrParseFailed
)

// Intake status codes reported to the transport
const (
	StatusAccepted = http.StatusOK
	StatusRejected = 550
	StatusFailed   = http.StatusInternalServerError
)

// Envelope is one inbound delivery as handed over by a transport
type Envelope struct {
	To   string
	From string
	Raw  io.Reader
}

// Notifier is told about every stored email
type Notifier interface {
	NotifyNewEmail(email *models.Email)
}

// IntakeConfig holds configuration for the intake service
type IntakeConfig struct {
	TargetEmail string
	// Now overrides the clock used to stamp received_at
	Now    func() time.Time
	Logger *slog.Logger
}

// IntakeService gates, parses and stores inbound messages
type IntakeService struct {
	repo     repository.EmailRepository
	sweeper  Sweeper
	notifier Notifier
	target   string
	now      func() time.Time
	logger   *slog.Logger
}

// NewIntakeService creates a new IntakeService. sweeper and notifier may be nil.
func NewIntakeService(repo repository.EmailRepository, sweeper Sweeper, notifier Notifier, cfg IntakeConfig) *IntakeService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &IntakeService{
		repo:     repo,
		sweeper:  sweeper,
		notifier: notifier,
		target:   strings.TrimSpace(cfg.TargetEmail),
		now:      cfg.Now,
		logger:   cfg.Logger,
	}
}

// Target returns the single inbox address this service accepts
func (s *IntakeService) Target() string {
	return s.target
}

// Accepts reports whether mail for the envelope recipient should be kept.
// Comparison is exact after trimming.
func (s *IntakeService) Accepts(to string) bool {
	return s.target != "" && validator.NormalizeEnvelopeAddress(to) == s.target
}

// Receive stores one inbound message and runs a retention sweep afterwards.
// It returns ErrRejected for foreign recipients and ErrParse for unreadable messages.
func (s *IntakeService) Receive(ctx context.Context, env Envelope) (*models.Email, error) {
	if !s.Accepts(env.To) {
		if s.logger != nil {
			s.logger.Info("rejected message for foreign recipient",
				slog.String("to", env.To),
				slog.String("from", env.From))
		}
		return nil, fmt.Errorf("%w: %s", ErrRejected, env.To)
	}

	if env.Raw == nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, parser.ErrEmptyMessage)
	}

	parsed, err := parser.ParseEmail(env.Raw)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to parse message",
				slog.String("from", env.From),
				slog.Any("error", err))
		}
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	sender := parsed.SenderEmail
	if sender == "" {
		sender = validator.NormalizeEnvelopeAddress(env.From)
	}

	email := &models.Email{
		Recipient:  s.target,
		Sender:     sender,
		Subject:    parsed.Subject,
		Body:       parsed.BodyText,
		HTML:       parsed.BodyHTML,
		ReceivedAt: models.FormatReceivedAt(s.now()),
	}

	if err := s.repo.Create(ctx, email); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to store message", slog.Any("error", err))
		}
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("message stored",
			slog.Uint64("email_id", uint64(email.ID)),
			slog.String("sender", email.Sender),
			slog.Int("mime_warnings", len(parsed.Warnings)))
	}

	if s.notifier != nil {
		s.notifier.NotifyNewEmail(email)
	}

	if s.sweeper != nil {
		if result := s.sweeper.Sweep(ctx); !result.Success && s.logger != nil {
			s.logger.Warn("post-intake sweep failed", slog.String("error", result.Error))
		}
	}

	return email, nil
}

// StatusFor maps a Receive error to the transport status code
func StatusFor(err error) int {
	switch {
	case err == nil:
		return StatusAccepted
	case errors.Is(err, ErrRejected):
		return StatusRejected
	default:
		return StatusFailed
	}
}
