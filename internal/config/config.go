package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/welldanyogia/webrana-catchmail/internal/validator"
)

// Defaults applied when the corresponding variable is unset
const (
	DefaultRetentionMinutes = 15
	DefaultDisplayTimezone  = "UTC"
	DefaultDisplayName      = "Catchmail"
	MaxDisplayNameLength    = 80
	DefaultDatabaseURL      = "sqlite://catchmail.db"
	DefaultCleanupInterval  = time.Minute
)

// Config holds all configuration for the application
type Config struct {
	// Inbox
	TargetEmail      string
	RetentionMinutes int
	CleanupInterval  time.Duration

	// Display
	DisplayName     string
	DisplayTimezone string
	Location        *time.Location

	// Database
	DatabaseURL string

	// Server ports
	APIPort  int
	SMTPPort int

	// Logging
	Debug bool

	// Security
	APIKey         string
	AllowedOrigins string
	AppEnv         string

	// Rate Limiting
	RateLimitRequests float64
	RateLimitBurst    int
}

// Load reads configuration from environment variables.
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	// Required: TARGET_EMAIL
	cfg.TargetEmail = strings.TrimSpace(os.Getenv("TARGET_EMAIL"))
	if cfg.TargetEmail == "" {
		return nil, fmt.Errorf("TARGET_EMAIL is required but not set")
	}

	// RETENTION_MINUTES (default: 15)
	retention := os.Getenv("RETENTION_MINUTES")
	if retention == "" {
		cfg.RetentionMinutes = DefaultRetentionMinutes
	} else {
		minutes, err := strconv.Atoi(retention)
		if err != nil {
			return nil, fmt.Errorf("RETENTION_MINUTES must be a valid integer: %w", err)
		}
		cfg.RetentionMinutes = minutes
	}

	// CLEANUP_INTERVAL (default: 1m)
	interval := os.Getenv("CLEANUP_INTERVAL")
	if interval == "" {
		cfg.CleanupInterval = DefaultCleanupInterval
	} else {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return nil, fmt.Errorf("CLEANUP_INTERVAL must be a valid duration: %w", err)
		}
		cfg.CleanupInterval = d
	}

	// DISPLAY_NAME (default: Catchmail)
	cfg.DisplayName = validator.SanitizeString(os.Getenv("DISPLAY_NAME"), MaxDisplayNameLength)
	if cfg.DisplayName == "" {
		cfg.DisplayName = DefaultDisplayName
	}

	// DISPLAY_TIMEZONE (default: UTC)
	cfg.DisplayTimezone = os.Getenv("DISPLAY_TIMEZONE")
	if cfg.DisplayTimezone == "" {
		cfg.DisplayTimezone = DefaultDisplayTimezone
	}
	loc, err := time.LoadLocation(cfg.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("DISPLAY_TIMEZONE must be a valid IANA zone: %w", err)
	}
	cfg.Location = loc

	// DATABASE_URL (default: sqlite://catchmail.db)
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = DefaultDatabaseURL
	}

	// API_PORT (default: 8080)
	apiPort := os.Getenv("API_PORT")
	if apiPort == "" {
		cfg.APIPort = 8080
	} else {
		port, err := strconv.Atoi(apiPort)
		if err != nil {
			return nil, fmt.Errorf("API_PORT must be a valid integer: %w", err)
		}
		cfg.APIPort = port
	}

	// SMTP_PORT (default: 2525)
	smtpPort := os.Getenv("SMTP_PORT")
	if smtpPort == "" {
		cfg.SMTPPort = 2525
	} else {
		port, err := strconv.Atoi(smtpPort)
		if err != nil {
			return nil, fmt.Errorf("SMTP_PORT must be a valid integer: %w", err)
		}
		cfg.SMTPPort = port
	}

	// DEBUG (default: false)
	debug := os.Getenv("DEBUG")
	if debug != "" {
		enabled, err := strconv.ParseBool(debug)
		if err != nil {
			return nil, fmt.Errorf("DEBUG must be a valid boolean: %w", err)
		}
		cfg.Debug = enabled
	}

	// Security configuration
	cfg.APIKey = os.Getenv("API_KEY")
	cfg.AllowedOrigins = os.Getenv("ALLOWED_ORIGINS")
	cfg.AppEnv = os.Getenv("APP_ENV")
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}

	// Rate limiting configuration
	if rps := os.Getenv("RATE_LIMIT_REQUESTS"); rps != "" {
		if v, err := strconv.ParseFloat(rps, 64); err == nil {
			cfg.RateLimitRequests = v
		}
	} else {
		cfg.RateLimitRequests = 10.0
	}

	if burst := os.Getenv("RATE_LIMIT_BURST"); burst != "" {
		if v, err := strconv.Atoi(burst); err == nil {
			cfg.RateLimitBurst = v
		}
	} else {
		cfg.RateLimitBurst = 20
	}

	return cfg, nil
}

// LoadWithValidation loads and validates configuration, failing fast on errors
func LoadWithValidation() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProduction(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validator.ValidateEmail(c.TargetEmail); err != nil {
		return fmt.Errorf("TargetEmail is invalid: %w", err)
	}
	if c.RetentionMinutes <= 0 {
		return fmt.Errorf("RetentionMinutes must be positive")
	}
	if c.CleanupInterval <= 0 {
		return fmt.Errorf("CleanupInterval must be positive")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DatabaseURL cannot be empty")
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("APIPort must be between 1 and 65535")
	}
	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		return fmt.Errorf("SMTPPort must be between 1 and 65535")
	}
	if c.Location == nil {
		return fmt.Errorf("Location cannot be nil")
	}
	return nil
}

// ValidateProduction performs additional validation for production environment
func (c *Config) ValidateProduction() error {
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY is required in production")
	}

	if strings.Contains(c.AllowedOrigins, "*") {
		return fmt.Errorf("wildcard (*) origins are not allowed in production")
	}

	if strings.Contains(c.DatabaseURL, "sslmode=disable") {
		return fmt.Errorf("sslmode=disable is not allowed in production")
	}

	return nil
}

// Retention returns the retention window as a duration
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionMinutes) * time.Minute
}

// LogLevel returns the slog level implied by the debug toggle
func (c *Config) LogLevel() slog.Level {
	if c.Debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// LogConfig logs configuration values (excluding secrets)
func (c *Config) LogConfig(logger *slog.Logger) {
	logger.Info("configuration loaded",
		slog.String("target_email", c.TargetEmail),
		slog.Int("retention_minutes", c.RetentionMinutes),
		slog.Duration("cleanup_interval", c.CleanupInterval),
		slog.String("display_name", c.DisplayName),
		slog.String("display_timezone", c.DisplayTimezone),
		slog.Int("api_port", c.APIPort),
		slog.Int("smtp_port", c.SMTPPort),
		slog.Bool("debug", c.Debug),
		slog.String("app_env", c.AppEnv),
		slog.Bool("api_key_set", c.APIKey != ""),
		slog.Float64("rate_limit_rps", c.RateLimitRequests),
		slog.Int("rate_limit_burst", c.RateLimitBurst),
	)
}
