package smtp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/emersion/go-smtp"
	"github.com/welldanyogia/webrana-catchmail/internal/services"
	"github.com/welldanyogia/webrana-catchmail/internal/validator"
)

var (
	errRecipientRejected = &smtp.SMTPError{
		Code:         550,
		EnhancedCode: smtp.EnhancedCode{5, 1, 1},
		Message:      "Recipient not accepted here",
	}
	errNoRecipients = &smtp.SMTPError{
		Code:         503,
		EnhancedCode: smtp.EnhancedCode{5, 5, 1},
		Message:      "No recipients specified",
	}
	errUnparseable = &smtp.SMTPError{
		Code:         554,
		EnhancedCode: smtp.EnhancedCode{5, 6, 0},
		Message:      "Failed to parse message",
	}
	errTemporary = &smtp.SMTPError{
		Code:         451,
		EnhancedCode: smtp.EnhancedCode{4, 3, 0},
		Message:      "Temporary error, try again later",
	}
)

// Session implements the go-smtp Session interface
type Session struct {
	backend    *Backend
	remoteAddr string
	from       string
	recipient  string
}

// NewSession creates a session for the client at remoteAddr
func NewSession(backend *Backend, remoteAddr string) *Session {
	return &Session{backend: backend, remoteAddr: remoteAddr}
}

// Mail handles the MAIL FROM command
func (s *Session) Mail(from string, opts *smtp.MailOptions) error {
	s.from = from
	if s.backend.logger != nil {
		s.backend.logger.Debug("MAIL FROM", slog.String("from", from))
	}
	return nil
}

// Rcpt handles the RCPT TO command. Only the target inbox is accepted.
func (s *Session) Rcpt(to string, opts *smtp.RcptOptions) error {
	if !s.backend.intake.Accepts(to) {
		s.backend.security.RecipientRejected(s.remoteAddr, to)
		return errRecipientRejected
	}

	s.recipient = validator.NormalizeEnvelopeAddress(to)
	if s.backend.logger != nil {
		s.backend.logger.Debug("RCPT TO", slog.String("to", to))
	}
	return nil
}

// Data handles the DATA command - receives the email content
func (s *Session) Data(r io.Reader) error {
	if s.recipient == "" {
		return errNoRecipients
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		if s.backend.logger != nil {
			s.backend.logger.Warn("failed to read DATA", slog.Any("error", err))
		}
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.backend.processTimeout)
	defer cancel()

	email, err := s.backend.intake.Receive(ctx, services.Envelope{
		To:   s.recipient,
		From: s.from,
		Raw:  bytes.NewReader(raw),
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRejected):
			return errRecipientRejected
		case errors.Is(err, services.ErrParse):
			return errUnparseable
		default:
			return errTemporary
		}
	}

	if s.backend.logger != nil {
		s.backend.logger.Info("email received",
			slog.Uint64("email_id", uint64(email.ID)),
			slog.String("from", s.from),
			slog.Int("size", len(raw)))
	}
	return nil
}

// Reset resets the session state
func (s *Session) Reset() {
	s.from = ""
	s.recipient = ""
}

// Logout handles the end of the session
func (s *Session) Logout() error {
	return nil
}
