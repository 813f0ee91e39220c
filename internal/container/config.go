// Package container provides dependency injection and lifecycle management
// for the quote service.
package container

import (
	"fmt"
	"time"

	"github.com/wmartinez/presupuestos/internal/domain/entity"
)

// Config holds all configuration for the Container.
// It aggregates configurations for all subsystems.
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Counter configuration
	Counter CounterConfig

	// Storage configuration
	Storage StorageConfig

	// Quote template configuration
	Quote QuoteConfig

	// Server configuration
	Server ServerConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file
	Path string

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime
	ConnMaxLifetime time.Duration
}

// CounterConfig holds the document number store settings.
type CounterConfig struct {
	// Backend is sqlite, redis or memory
	Backend string

	// Key names the counter row or redis key
	Key string

	// Default is the number of the first document
	Default int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// StorageConfig holds file storage settings.
type StorageConfig struct {
	// DownloadsDir receives the finalized PDFs
	DownloadsDir string
}

// QuoteConfig holds the document template settings.
type QuoteConfig struct {
	// BackgroundPath is the full-page image drawn under every page
	BackgroundPath string

	// AssetTimeout bounds the background load
	AssetTimeout time.Duration

	Signature      string
	DepositPercent int

	// FontFamily is a core PDF font
	FontFamily string

	// ThumbnailDPI is the resolution of PNG previews
	ThumbnailDPI float64
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host to bind to
	Host string

	// Port to listen on
	Port int

	// ReadTimeout for HTTP server
	ReadTimeout time.Duration

	// WriteTimeout for HTTP server
	WriteTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:         "data/presupuestos.db",
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
		Counter: CounterConfig{
			Backend:   entity.CounterBackendSQLite,
			Key:       entity.DefaultCounterKey,
			Default:   entity.DefaultFirstNumber,
			RedisAddr: "localhost:6379",
		},
		Storage: StorageConfig{
			DownloadsDir: "downloads",
		},
		Quote: QuoteConfig{
			BackgroundPath: "assets/fondobase.png",
			AssetTimeout:   10 * time.Second,
			Signature:      "Wilson Martínez",
			DepositPercent: 60,
			FontFamily:     "Helvetica",
			ThumbnailDPI:   72,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	switch c.Counter.Backend {
	case entity.CounterBackendSQLite, entity.CounterBackendRedis, entity.CounterBackendMemory:
	default:
		return fmt.Errorf("unknown counter backend %q", c.Counter.Backend)
	}
	if c.Counter.Default < 1 {
		return fmt.Errorf("counter.default must be positive")
	}

	if c.Storage.DownloadsDir == "" {
		return fmt.Errorf("storage.downloads_dir is required")
	}
	if c.Quote.BackgroundPath == "" {
		return fmt.Errorf("quote.background_path is required")
	}

	return nil
}
