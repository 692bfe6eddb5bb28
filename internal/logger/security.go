// Package logger provides structured and security-event logging for catchmail.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Security event types, recorded in the event_type attribute
const (
	EventAuthFailure       = "auth_failure"
	EventAuthDisabled      = "auth_disabled"
	EventRateLimit         = "rate_limit_exceeded"
	EventInvalidOrigin     = "invalid_origin"
	EventRecipientRejected = "recipient_rejected"
)

const redacted = "[REDACTED]"

// SecurityLogger records security-relevant events as structured log lines.
// Credentials are never written. A nil *SecurityLogger discards everything.
type SecurityLogger struct {
	logger *slog.Logger
}

// NewSecurityLogger creates a SecurityLogger on handler.
// A nil handler writes JSON to stdout.
func NewSecurityLogger(handler slog.Handler) *SecurityLogger {
	if handler == nil {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &SecurityLogger{logger: slog.New(handler).With(slog.String("component", "security"))}
}

// AuthFailure records a rejected API request. reason never carries the presented key.
func (s *SecurityLogger) AuthFailure(ip, path, reason string) {
	s.event(slog.LevelWarn, EventAuthFailure, ip,
		slog.String("path", path),
		slog.String("reason", reason))
}

// AuthDisabled records that the API runs without a key
func (s *SecurityLogger) AuthDisabled(reason string) {
	s.event(slog.LevelWarn, EventAuthDisabled, "", slog.String("reason", reason))
}

// RateLimitExceeded records a request refused by the limiter
func (s *SecurityLogger) RateLimitExceeded(ip, path string) {
	s.event(slog.LevelWarn, EventRateLimit, ip, slog.String("path", path))
}

// InvalidOrigin records a live-update connection refused for its Origin
func (s *SecurityLogger) InvalidOrigin(ip, origin string) {
	s.event(slog.LevelWarn, EventInvalidOrigin, ip, slog.String("origin", origin))
}

// RecipientRejected records an inbound message that was not for the target inbox.
// Rejection is routine, so it is logged at info.
func (s *SecurityLogger) RecipientRejected(ip, recipient string) {
	s.event(slog.LevelInfo, EventRecipientRejected, ip, slog.String("recipient", recipient))
}

// Event records an arbitrary event. Values under credential-like keys are redacted.
func (s *SecurityLogger) Event(eventType, ip string, details map[string]string) {
	attrs := make([]slog.Attr, 0, len(details))
	for k, v := range details {
		if isSensitiveKey(k) {
			v = redacted
		}
		attrs = append(attrs, slog.String(k, v))
	}
	s.event(slog.LevelWarn, eventType, ip, attrs...)
}

func (s *SecurityLogger) event(level slog.Level, eventType, ip string, attrs ...slog.Attr) {
	if s == nil {
		return
	}
	base := []slog.Attr{slog.String("event_type", eventType)}
	if ip != "" {
		base = append(base, slog.String("ip", ip))
	}
	s.logger.LogAttrs(context.Background(), level, "security_event", append(base, attrs...)...)
}

var sensitiveKeys = []string{"password", "api_key", "apikey", "token", "secret", "authorization", "credential", "cookie", "session"}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}
