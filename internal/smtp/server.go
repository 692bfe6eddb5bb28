package smtp

import (
	"crypto/tls"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/emersion/go-smtp"
)

// Server limits applied when the configuration leaves them unset
const (
	DefaultMaxMessageSize = 25 * 1024 * 1024
	DefaultMaxRecipients  = 10
	DefaultReadTimeout    = 60 * time.Second
	DefaultWriteTimeout   = 60 * time.Second
	DefaultMaxLineLength  = 2000
)

// ServerConfig holds the listener settings of the SMTP server
type ServerConfig struct {
	Addr           string
	Domain         string
	MaxMessageSize int64
	MaxRecipients  int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowInsecure  bool
	// TLSConfig enables STARTTLS when set
	TLSConfig *tls.Config
}

// NewSecureServer builds a go-smtp server for backend, filling unset limits with defaults
func NewSecureServer(backend *Backend, cfg *ServerConfig) *smtp.Server {
	s := smtp.NewServer(backend)

	s.Addr = cfg.Addr
	s.Domain = cfg.Domain
	s.MaxMessageBytes = orDefault(cfg.MaxMessageSize, DefaultMaxMessageSize)
	s.MaxRecipients = orDefault(cfg.MaxRecipients, DefaultMaxRecipients)
	s.ReadTimeout = orDefault(cfg.ReadTimeout, DefaultReadTimeout)
	s.WriteTimeout = orDefault(cfg.WriteTimeout, DefaultWriteTimeout)
	s.MaxLineLength = DefaultMaxLineLength
	s.AllowInsecureAuth = cfg.AllowInsecure
	s.TLSConfig = cfg.TLSConfig

	return s
}

func orDefault[T int | int64 | time.Duration](v, def T) T {
	if v > 0 {
		return v
	}
	return def
}

// LoadServerConfigFromEnv reads SMTP_* environment variables.
// defaultAddr is used when SMTP_ADDR is unset. Malformed values are errors.
func LoadServerConfigFromEnv(defaultAddr string) (*ServerConfig, error) {
	cfg := &ServerConfig{
		Addr:   getEnvOrDefault("SMTP_ADDR", defaultAddr),
		Domain: getEnvOrDefault("SMTP_DOMAIN", "localhost"),
	}

	var err error
	if cfg.AllowInsecure, err = envBool("SMTP_ALLOW_INSECURE"); err != nil {
		return nil, err
	}
	if cfg.MaxMessageSize, err = envInt[int64]("SMTP_MAX_MESSAGE_SIZE"); err != nil {
		return nil, err
	}
	if cfg.MaxRecipients, err = envInt[int]("SMTP_MAX_RECIPIENTS"); err != nil {
		return nil, err
	}
	if cfg.ReadTimeout, err = envDuration("SMTP_READ_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.WriteTimeout, err = envDuration("SMTP_WRITE_TIMEOUT"); err != nil {
		return nil, err
	}

	certFile, keyFile := os.Getenv("SMTP_TLS_CERT"), os.Getenv("SMTP_TLS_KEY")
	if certFile != "" && keyFile != "" {
		cert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load SMTP TLS key pair: %w", err)
		}
		cfg.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envBool(key string) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

func envInt[T int | int64](key string) (T, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return T(n), nil
}

func envDuration(key string) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}
