package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/wmartinez/presupuestos/internal/domain/entity"
)

// EnvPrefix prefixes every environment override, e.g. PRESUPUESTOS_SERVER_PORT
const EnvPrefix = "PRESUPUESTOS"

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Counter  CounterConfig  `mapstructure:"counter"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Quote    QuoteConfig    `mapstructure:"quote"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// CounterConfig selects where the running document number lives
type CounterConfig struct {
	Backend       string `mapstructure:"backend"` // sqlite, redis or memory
	Key           string `mapstructure:"key"`
	Default       int    `mapstructure:"default"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

// StorageConfig holds file storage configuration
type StorageConfig struct {
	DownloadsDir string `mapstructure:"downloads_dir"`
}

// QuoteConfig holds the document template settings
type QuoteConfig struct {
	BackgroundPath string        `mapstructure:"background_path"`
	AssetTimeout   time.Duration `mapstructure:"asset_timeout"`
	Signature      string        `mapstructure:"signature"`
	DepositPercent int           `mapstructure:"deposit_percent"`
	FontFamily     string        `mapstructure:"font_family"`
	ThumbnailDPI   float64       `mapstructure:"thumbnail_dpi"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load reads .env files, then configPath (optional when empty or missing),
// then PRESUPUESTOS_* environment variables.
func Load(configPath string, envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles...); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvVars(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFiles loads the given .env files, skipping missing ones.
// Variables already set in the environment win.
func loadEnvFiles(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := gotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	// Database defaults
	v.SetDefault("database.path", "data/presupuestos.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", 0)

	// Counter defaults
	v.SetDefault("counter.backend", entity.CounterBackendSQLite)
	v.SetDefault("counter.key", entity.DefaultCounterKey)
	v.SetDefault("counter.default", entity.DefaultFirstNumber)
	v.SetDefault("counter.redis_addr", "localhost:6379")
	v.SetDefault("counter.redis_password", "")
	v.SetDefault("counter.redis_db", 0)

	// Storage defaults
	v.SetDefault("storage.downloads_dir", "downloads")

	// Quote defaults
	v.SetDefault("quote.background_path", "assets/fondobase.png")
	v.SetDefault("quote.asset_timeout", 10*time.Second)
	v.SetDefault("quote.signature", "Wilson Martínez")
	v.SetDefault("quote.deposit_percent", 60)
	v.SetDefault("quote.font_family", "Helvetica")
	v.SetDefault("quote.thumbnail_dpi", 72.0)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds the variables deployments set without the prefix
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("counter.redis_addr", EnvPrefix+"_COUNTER_REDIS_ADDR", "REDIS_ADDR")
	_ = v.BindEnv("counter.redis_password", EnvPrefix+"_COUNTER_REDIS_PASSWORD", "REDIS_PASSWORD")
	_ = v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	switch c.Counter.Backend {
	case entity.CounterBackendSQLite, entity.CounterBackendRedis, entity.CounterBackendMemory:
	default:
		return fmt.Errorf("counter.backend %q is not one of sqlite, redis, memory", c.Counter.Backend)
	}
	if c.Counter.Key == "" {
		return fmt.Errorf("counter.key is required")
	}
	if c.Counter.Default < 1 {
		return fmt.Errorf("counter.default must be positive")
	}
	if c.Counter.Backend == entity.CounterBackendRedis && c.Counter.RedisAddr == "" {
		return fmt.Errorf("counter.redis_addr is required for the redis backend")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Storage.DownloadsDir == "" {
		return fmt.Errorf("storage.downloads_dir is required")
	}

	if c.Quote.BackgroundPath == "" {
		return fmt.Errorf("quote.background_path is required")
	}
	if c.Quote.DepositPercent < 0 || c.Quote.DepositPercent > 100 {
		return fmt.Errorf("quote.deposit_percent must be between 0 and 100")
	}

	return nil
}
