package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// DefaultCORSOrigin is used when no origins are configured
const DefaultCORSOrigin = "http://localhost:8080"

// CORSOrigins splits a comma-separated origin list.
// Wildcards are dropped in production.
func CORSOrigins(allowedOrigins, appEnv string) []string {
	origins := make([]string, 0)
	for _, origin := range strings.Split(allowedOrigins, ",") {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" && appEnv == "production" {
			continue
		}
		origins = append(origins, origin)
	}

	if len(origins) == 0 {
		origins = []string{DefaultCORSOrigin}
	}
	return origins
}

// SecureCORS returns CORS middleware for the JSON API
func SecureCORS(allowedOrigins, appEnv string) echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: CORSOrigins(allowedOrigins, appEnv),
		AllowMethods: []string{echo.GET, echo.POST, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, HeaderAPIKey},
		MaxAge:       300,
	})
}
