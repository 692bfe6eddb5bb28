package websocket

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

// ParseAllowedOrigins splits a comma-separated origin list, dropping blanks
func ParseAllowedOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, origin := range parts {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// OriginReporter records rejected cross-origin connection attempts
type OriginReporter interface {
	InvalidOrigin(ip, origin string)
}

// NewSecureUpgrader creates a WebSocket upgrader with origin validation.
// Same-origin pages are always allowed; other origins must be listed in allowedOrigins.
func NewSecureUpgrader(allowedOrigins string, reporter OriginReporter) websocket.Upgrader {
	allowed := ParseAllowedOrigins(allowedOrigins)

	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")

			// Non-browser clients send no Origin
			if origin == "" {
				return true
			}

			if u, err := url.Parse(origin); err == nil && u.Host == r.Host && u.Path == "" {
				return true
			}

			for _, o := range allowed {
				if o == origin {
					return true
				}
			}

			if reporter != nil {
				reporter.InvalidOrigin(r.RemoteAddr, origin)
			}
			return false
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// DefaultUpgrader returns an upgrader that allows all origins (for development)
func DefaultUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}
