package api

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-catchmail/internal/api/handlers"
	"github.com/welldanyogia/webrana-catchmail/internal/api/middleware"
	"github.com/welldanyogia/webrana-catchmail/internal/logger"
	"github.com/welldanyogia/webrana-catchmail/internal/services"
	"github.com/welldanyogia/webrana-catchmail/internal/web"
	"github.com/welldanyogia/webrana-catchmail/internal/websocket"
	"gorm.io/gorm"
)

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	DB       *gorm.DB
	Inbox    *services.InboxService
	Intake   handlers.Receiver
	Sweeper  services.Sweeper
	Hub      *websocket.Hub
	Renderer echo.Renderer
	Logger   *slog.Logger
	Security *logger.SecurityLogger
	// Security configuration
	APIKey         string  // API key for /inbound and /api (empty = disabled)
	AllowedOrigins string  // Comma-separated CORS and WebSocket origins
	AppEnv         string  // "production" drops wildcard origins
	RateLimit      float64 // Requests per second per IP (0 = disabled)
	RateBurst      int     // Burst size for rate limiter
	// Done stops background middleware work such as limiter cleanup
	Done <-chan struct{}
}

// NewRouter creates and configures the Echo router with all routes
func NewRouter(cfg *RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = cfg.Renderer

	// 1. Request IDs first so every log line carries one
	e.Use(middleware.RequestID())

	// 2. Request logging
	if cfg.Logger != nil {
		e.Use(middleware.RequestLogger(cfg.Logger))
	}

	// 3. Recover from panics
	e.Use(middleware.Recover())

	// 4. Security headers (applied to all responses)
	e.Use(middleware.SecureHeaders())

	// 5. Rate limiting
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiter(cfg.RateLimit, cfg.RateBurst, cfg.Security, cfg.Done))
	}

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Logger)
	emailHandler := handlers.NewEmailHandler(cfg.Inbox, cfg.Logger)
	cleanupHandler := handlers.NewCleanupHandler(cfg.Sweeper)
	inboundHandler := handlers.NewInboundHandler(cfg.Intake, handlers.InboundConfig{
		SecurityLogger: cfg.Security,
		Logger:         cfg.Logger,
	})

	// Operational routes
	e.GET("/health", healthHandler.Health)
	e.GET("/db-init", healthHandler.DBInit)
	e.GET("/cleanup", cleanupHandler.Cleanup)

	// Inbox pages
	e.GET("/", emailHandler.Latest)
	e.GET("/emails", emailHandler.List)
	e.GET("/emails/:id", emailHandler.Get)
	e.StaticFS("/static", web.Static())

	// Live updates
	if cfg.Hub != nil {
		var reporter websocket.OriginReporter
		if cfg.Security != nil {
			reporter = cfg.Security
		}
		upgrader := websocket.NewSecureUpgrader(cfg.AllowedOrigins, reporter)
		e.GET("/ws", handlers.NewWebSocketHandler(cfg.Hub, upgrader, cfg.Logger).Serve)
	}

	// Machine routes require the API key when one is configured
	auth := middleware.APIKeyAuth(cfg.APIKey, cfg.Security)

	e.POST("/inbound", inboundHandler.Receive, auth)

	api := e.Group("/api", middleware.SecureCORS(cfg.AllowedOrigins, cfg.AppEnv), auth)
	api.GET("/emails", emailHandler.APIList)
	api.GET("/emails/:id", emailHandler.APIGet)

	return e
}
