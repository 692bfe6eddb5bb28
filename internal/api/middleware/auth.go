// Package middleware provides HTTP middleware for the catchmail server.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-catchmail/internal/logger"
)

// HeaderAPIKey is the alternative header carrying the API key
const HeaderAPIKey = "X-API-Key"

// APIKeyAuth guards a route group with a shared key taken from the X-API-Key
// header or an Authorization bearer token. An empty apiKey leaves the group open.
func APIKeyAuth(apiKey string, sec *logger.SecurityLogger) echo.MiddlewareFunc {
	if apiKey == "" {
		sec.AuthDisabled("API_KEY not set")
	}
	expected := []byte(apiKey)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if apiKey == "" {
				return next(c)
			}

			token := requestToken(c.Request())
			switch {
			case token == "":
				return unauthorized(c, sec, "missing credentials", "missing authorization header")
			case subtle.ConstantTimeCompare([]byte(token), expected) != 1:
				return unauthorized(c, sec, "invalid API key", "invalid API key")
			}
			return next(c)
		}
	}
}

func unauthorized(c echo.Context, sec *logger.SecurityLogger, reason, msg string) error {
	sec.AuthFailure(c.RealIP(), c.Request().URL.Path, reason)
	return echo.NewHTTPError(http.StatusUnauthorized, map[string]string{
		"error": msg,
		"code":  "UNAUTHORIZED",
	})
}

// requestToken prefers X-API-Key over the bearer token
func requestToken(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get(HeaderAPIKey)); key != "" {
		return key
	}
	auth := r.Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}
