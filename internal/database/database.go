package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/welldanyogia/webrana-catchmail/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connection pool configuration
const (
	DefaultMaxIdleConns    = 10
	DefaultMaxOpenConns    = 100
	DefaultConnMaxLifetime = time.Hour
	DefaultConnMaxIdleTime = 10 * time.Minute
)

const sqliteScheme = "sqlite://"

// Connect opens the datastore named by databaseURL.
// sqlite:// URLs use the embedded driver; anything else is handed to PostgreSQL.
func Connect(databaseURL string, debug bool) (*gorm.DB, error) {
	env := os.Getenv("APP_ENV")
	if env == "production" && !IsSQLite(databaseURL) {
		if err := validateSSLMode(databaseURL); err != nil {
			return nil, err
		}
	}

	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialectorFor(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := configureConnectionPool(db, IsSQLite(databaseURL)); err != nil {
		return nil, err
	}

	slog.Info("Connected to database successfully", slog.String("dialect", db.Dialector.Name()))
	return db, nil
}

// IsSQLite reports whether databaseURL selects the embedded SQLite driver
func IsSQLite(databaseURL string) bool {
	return strings.HasPrefix(databaseURL, sqliteScheme)
}

func dialectorFor(databaseURL string) gorm.Dialector {
	if IsSQLite(databaseURL) {
		return sqlite.Open(strings.TrimPrefix(databaseURL, sqliteScheme))
	}
	return postgres.Open(databaseURL)
}

// validateSSLMode ensures SSL is enabled in production
func validateSSLMode(databaseURL string) error {
	if strings.Contains(databaseURL, "sslmode=disable") {
		return fmt.Errorf("SSL mode cannot be disabled in production")
	}
	return nil
}

// configureConnectionPool sets up connection pool limits.
// SQLite gets a single connection so in-memory databases are shared and writes serialize.
func configureConnectionPool(db *gorm.DB, singleConn bool) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if singleConn {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
		return nil
	}

	sqlDB.SetMaxIdleConns(DefaultMaxIdleConns)
	sqlDB.SetMaxOpenConns(DefaultMaxOpenConns)
	sqlDB.SetConnMaxLifetime(DefaultConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(DefaultConnMaxIdleTime)

	return nil
}

// schemaStatements returns the idempotent DDL for the given dialect
func schemaStatements(dialect string) []string {
	table := models.Email{}.TableName()

	if dialect == "postgres" {
		return []string{
			`CREATE TABLE IF NOT EXISTS ` + table + ` (
				id BIGSERIAL PRIMARY KEY,
				recipient TEXT NOT NULL,
				sender TEXT NOT NULL DEFAULT '',
				subject TEXT NOT NULL DEFAULT '',
				body TEXT NOT NULL DEFAULT '',
				html TEXT NOT NULL DEFAULT '',
				received_at TEXT COLLATE "C" NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_emails_recipient_received ON ` + table + ` (recipient, received_at, id)`,
			`CREATE INDEX IF NOT EXISTS idx_emails_received_at ON ` + table + ` (received_at)`,
		}
	}

	return []string{
		`CREATE TABLE IF NOT EXISTS ` + table + ` (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			recipient TEXT NOT NULL,
			sender TEXT NOT NULL DEFAULT '',
			subject TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL DEFAULT '',
			html TEXT NOT NULL DEFAULT '',
			received_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_emails_recipient_received ON ` + table + ` (recipient, received_at, id)`,
		`CREATE INDEX IF NOT EXISTS idx_emails_received_at ON ` + table + ` (received_at)`,
	}
}

// InitSchema creates the emails table and its indexes when absent.
// Safe to call repeatedly and from concurrent callers.
func InitSchema(ctx context.Context, db *gorm.DB) error {
	slog.Debug("Initializing database schema...")

	for _, stmt := range schemaStatements(db.Dialector.Name()) {
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			// PostgreSQL can still race on the catalog when two CREATE ... IF NOT EXISTS
			// run at once; the loser sees a duplicate. The object exists either way.
			if isAlreadyExistsError(err) {
				continue
			}
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	slog.Debug("Database schema ready")
	return nil
}

// HasSchema reports whether the emails table exists.
// A failed catalog lookup is returned as an error, not as a missing table.
func HasSchema(ctx context.Context, db *gorm.DB) (bool, error) {
	query := `SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
	if db.Dialector.Name() == "postgres" {
		query = `SELECT count(*) FROM information_schema.tables WHERE table_schema = CURRENT_SCHEMA() AND table_name = ? AND table_type = 'BASE TABLE'`
	}

	var count int64
	if err := db.WithContext(ctx).Raw(query, models.Email{}.TableName()).Scan(&count).Error; err != nil {
		return false, fmt.Errorf("schema lookup failed: %w", err)
	}
	return count > 0, nil
}

// Ping performs a trivial round-trip query against the datastore
func Ping(ctx context.Context, db *gorm.DB) error {
	var one int
	if err := db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		return fmt.Errorf("database round-trip failed: %w", err)
	}
	return nil
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// isAlreadyExistsError checks if the error is a duplicate catalog entry
func isAlreadyExistsError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "already exists") ||
		strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "23505") // PostgreSQL unique violation code
}
