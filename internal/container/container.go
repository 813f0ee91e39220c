package container

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wmartinez/presupuestos/internal/application/port"
	"github.com/wmartinez/presupuestos/internal/application/service"
	"github.com/wmartinez/presupuestos/internal/infrastructure/persistence/sqlite"
)

// Container manages all application dependencies and lifecycle.
// Components are initialized in dependency order and torn down in reverse.
type Container struct {
	config *Config
	logger *zap.Logger

	// Infrastructure - Data
	sqlDB   *sql.DB
	db      *sqlite.DB
	counter *CounterBundle

	// Infrastructure - Storage and documents
	storage   *StorageBundle
	documents *DocumentBundle

	// Application
	services *ServiceBundle

	// Lifecycle
	mu     sync.RWMutex
	ready  atomic.Bool
	closed atomic.Bool
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components:
// 1. Database, migrations and the counter backend
// 2. Storage
// 3. Document components
// 4. Application services
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}

	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	// Step 1: Initialize database and counter
	if err := c.initDatabase(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.logger.Info("Database initialized", zap.String("counter_backend", c.counter.Backend))

	// Step 2: Initialize storage
	if err := c.initStorage(); err != nil {
		c.closeResources()
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.logger.Info("Storage initialized")

	// Step 3: Initialize document components
	documents, err := ProvideDocuments(&c.config.Quote, c.logger)
	if err != nil {
		c.closeResources()
		return fmt.Errorf("failed to initialize documents: %w", err)
	}
	c.documents = documents
	c.logger.Info("Document components initialized")

	// Step 4: Initialize application services
	services, err := ProvideServices(&ServiceDeps{
		TxManager: c.db,
		SqlDB:     c.sqlDB,
		Counter:   c.counter.Counter,
		Storage:   c.storage,
		Documents: c.documents,
		QuoteCfg:  &c.config.Quote,
		Logger:    c.logger,
	})
	if err != nil {
		c.closeResources()
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	c.services = services
	c.logger.Info("Application services initialized")

	c.ready.Store(true)
	c.logger.Info("Container started successfully")

	return nil
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	errs := c.closeResources()

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

func (c *Container) closeResources() []error {
	var errs []error

	if c.counter != nil && c.counter.redis != nil {
		if err := c.counter.redis.Close(); err != nil {
			c.logger.Error("Failed to close redis counter", zap.Error(err))
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
		c.counter.redis = nil
	}

	if c.sqlDB != nil {
		if err := c.sqlDB.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		} else {
			c.logger.Info("Database closed")
		}
		c.sqlDB = nil
	}

	return errs
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	set := func(name string, healthy bool, message string) {
		status.Components[name] = ComponentHealth{Healthy: healthy, Message: message}
		if !healthy {
			status.Overall = false
		}
	}

	// Check database
	if c.sqlDB == nil {
		set("database", false, "not initialized")
	} else if err := c.sqlDB.PingContext(ctx); err != nil {
		set("database", false, fmt.Sprintf("ping failed: %v", err))
	} else {
		set("database", true, "")
	}

	// Check counter; a degraded counter keeps numbering so it does not fail the check
	switch {
	case c.counter == nil:
		set("counter", false, "not initialized")
	case c.counter.redis != nil:
		if err := c.counter.redis.Ping(ctx); err != nil {
			set("counter", true, fmt.Sprintf("redis unreachable, numbering in memory: %v", err))
		} else {
			set("counter", true, c.counter.Backend)
		}
	case c.counter.Counter.Degraded():
		set("counter", true, "degraded: numbering in memory")
	default:
		set("counter", true, c.counter.Backend)
	}

	// Check downloads directory
	if info, err := os.Stat(c.config.Storage.DownloadsDir); err != nil || !info.IsDir() {
		set("storage", false, "downloads directory missing")
	} else {
		set("storage", true, "")
	}

	// Check background asset
	if _, err := os.Stat(c.config.Quote.BackgroundPath); err != nil {
		set("background", false, "background image missing")
	} else {
		set("background", true, "")
	}

	return status
}

// HealthReport adapts Health to the HTTP health reporter.
func (c *Container) HealthReport(ctx context.Context) (bool, interface{}) {
	status := c.Health(ctx)
	return status.Overall, status.Components
}

func (c *Container) initDatabase(ctx context.Context) error {
	dbBundle, err := ProvideDatabase(&c.config.Database, c.logger)
	if err != nil {
		return err
	}

	c.sqlDB = dbBundle.SqlDB
	c.db = dbBundle.TransactionMgr

	counterBundle, err := ProvideCounter(ctx, &c.config.Counter, c.sqlDB, c.logger)
	if err != nil {
		c.closeResources()
		return err
	}
	c.counter = counterBundle

	return nil
}

func (c *Container) initStorage() error {
	storageBundle, err := ProvideStorage(&c.config.Storage, c.logger)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(c.config.Storage.DownloadsDir, 0755); err != nil {
		return fmt.Errorf("failed to create downloads directory: %w", err)
	}

	c.storage = storageBundle
	return nil
}

// Getters for accessing container components

// DB returns the transaction manager.
func (c *Container) DB() port.TransactionManager {
	return c.db
}

// Counter returns the document number store.
func (c *Container) Counter() port.CounterStore {
	if c.counter == nil {
		return nil
	}
	return c.counter.Counter
}

// FileStorage returns the downloads store.
func (c *Container) FileStorage() port.FileStorage {
	return c.storage.FileStorage
}

// Thumbnailer returns the preview rasterizer.
func (c *Container) Thumbnailer() port.Thumbnailer {
	return c.documents.Thumbnailer
}

// QuoteService returns the generation service.
func (c *Container) QuoteService() service.QuoteService {
	return c.services.Quote
}

// RegisterService returns the register service.
func (c *Container) RegisterService() service.RegisterService {
	return c.services.Register
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *Config {
	return c.config
}

// ServiceLogger returns the container's logger behind the key-value interface.
func (c *Container) ServiceLogger() service.Logger {
	return &zapLoggerAdapter{logger: c.logger}
}

// zapLoggerAdapter adapts zap.Logger to the key-value Logger interfaces.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Warn(msg string, keysAndValues ...interface{}) {
	a.logger.Warn(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		if err, ok := keysAndValues[i+1].(error); ok {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
