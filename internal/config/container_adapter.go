package config

import (
	"github.com/wmartinez/presupuestos/internal/container"
)

// ToContainerConfig converts the application Config to a container.Config.
// This provides a bridge between the file-based config loaded by viper
// and the container's configuration structure.
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
		},
		Counter: container.CounterConfig{
			Backend:       c.Counter.Backend,
			Key:           c.Counter.Key,
			Default:       c.Counter.Default,
			RedisAddr:     c.Counter.RedisAddr,
			RedisPassword: c.Counter.RedisPassword,
			RedisDB:       c.Counter.RedisDB,
		},
		Storage: container.StorageConfig{
			DownloadsDir: c.Storage.DownloadsDir,
		},
		Quote: container.QuoteConfig{
			BackgroundPath: c.Quote.BackgroundPath,
			AssetTimeout:   c.Quote.AssetTimeout,
			Signature:      c.Quote.Signature,
			DepositPercent: c.Quote.DepositPercent,
			FontFamily:     c.Quote.FontFamily,
			ThumbnailDPI:   c.Quote.ThumbnailDPI,
		},
		Server: container.ServerConfig{
			Host:         c.Server.Host,
			Port:         c.Server.Port,
			ReadTimeout:  c.Server.ReadTimeout,
			WriteTimeout: c.Server.WriteTimeout,
		},
	}
}
