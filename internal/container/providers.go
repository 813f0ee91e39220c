package container

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wmartinez/presupuestos/internal/application/port"
	"github.com/wmartinez/presupuestos/internal/application/service"
	"github.com/wmartinez/presupuestos/internal/domain/entity"
	"github.com/wmartinez/presupuestos/internal/infrastructure/export"
	"github.com/wmartinez/presupuestos/internal/infrastructure/pdfdoc"
	"github.com/wmartinez/presupuestos/internal/infrastructure/persistence/counter"
	"github.com/wmartinez/presupuestos/internal/infrastructure/persistence/repository"
	"github.com/wmartinez/presupuestos/internal/infrastructure/persistence/sqlite"
	"github.com/wmartinez/presupuestos/internal/infrastructure/storage"
	"github.com/wmartinez/presupuestos/internal/quote"
	"github.com/wmartinez/presupuestos/migrations"
	"github.com/wmartinez/presupuestos/pkg/database"
)

const redisConnectTimeout = 3 * time.Second

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	SqlDB          *sql.DB
	TransactionMgr *sqlite.DB
}

// CounterBundle holds the document number store.
type CounterBundle struct {
	// Counter is the resilient wrapper handed to services
	Counter *counter.ResilientCounter

	// Backend is the backend actually in use after startup fallbacks
	Backend string

	// redis is kept for health checks and shutdown
	redis *counter.RedisCounter
}

// StorageBundle holds storage-related components.
type StorageBundle struct {
	FileStorage port.FileStorage
	Assets      port.AssetLoader
}

// DocumentBundle holds the PDF components.
type DocumentBundle struct {
	Composer    *quote.Composer
	Inspector   port.DocumentInspector
	Thumbnailer port.Thumbnailer
	Exporter    port.RegisterExporter
}

// ProvideDatabase opens the database, runs the embedded migrations and
// wraps the connection in a transaction manager.
func ProvideDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(db, logger).RunMigrations(migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		SqlDB:          db.DB,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideCounter opens the configured counter backend. A backend that cannot
// be opened falls back to process memory with a warning.
func ProvideCounter(ctx context.Context, cfg *CounterConfig, sqlDB *sql.DB, logger *zap.Logger) (*CounterBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("counter config is required")
	}

	bundle := &CounterBundle{Backend: cfg.Backend}
	var store port.CounterStore

	switch cfg.Backend {
	case entity.CounterBackendSQLite:
		if sqlDB == nil {
			return nil, fmt.Errorf("sqlite counter requires a database")
		}
		store = repository.NewCounterRepository(sqlDB, cfg.Key, cfg.Default, logger)

	case entity.CounterBackendRedis:
		connectCtx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
		defer cancel()

		rc, err := counter.NewRedisCounter(connectCtx, counter.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.Key, cfg.Default, logger)
		if err != nil {
			logger.Warn("Counter backend unavailable, numbering continues in memory",
				zap.String("backend", cfg.Backend),
				zap.Error(err))
			store = counter.NewMemoryCounter(cfg.Default)
			bundle.Backend = entity.CounterBackendMemory
			break
		}
		store = rc
		bundle.redis = rc

	case entity.CounterBackendMemory:
		store = counter.NewMemoryCounter(cfg.Default)

	default:
		return nil, fmt.Errorf("unknown counter backend %q", cfg.Backend)
	}

	bundle.Counter = counter.NewResilientCounter(store, cfg.Default, logger)
	return bundle, nil
}

// ProvideStorage creates the downloads store and the asset loader.
func ProvideStorage(cfg *StorageConfig, logger *zap.Logger) (*StorageBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storage config is required")
	}

	return &StorageBundle{
		FileStorage: storage.NewLocalFileStorage(cfg.DownloadsDir, logger),
		Assets:      storage.NewLocalAssetLoader(logger),
	}, nil
}

// ProvideDocuments creates the composer over the fpdf canvas and the
// inspection, thumbnail and export components.
func ProvideDocuments(cfg *QuoteConfig, logger *zap.Logger) (*DocumentBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("quote config is required")
	}

	tpl := quote.DefaultTemplate()
	if cfg.Signature != "" {
		tpl.Signature = cfg.Signature
	}
	tpl.DepositPercent = cfg.DepositPercent

	return &DocumentBundle{
		Composer:    quote.NewComposer(pdfdoc.NewCanvasFactory(cfg.FontFamily), tpl, logger),
		Inspector:   pdfdoc.NewInspector(logger),
		Thumbnailer: pdfdoc.NewFitzThumbnailer(cfg.ThumbnailDPI, logger),
		Exporter:    export.NewExcelRegisterExporter(logger),
	}, nil
}

// ServiceDeps holds dependencies for creating services.
type ServiceDeps struct {
	TxManager port.TransactionManager
	SqlDB     *sql.DB
	Counter   port.CounterStore
	Storage   *StorageBundle
	Documents *DocumentBundle
	QuoteCfg  *QuoteConfig
	Logger    *zap.Logger
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Quote    service.QuoteService
	Register service.RegisterService
	Slot     *quote.ErrorSlot
}

// ProvideServices creates the application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service deps are required")
	}
	if deps.Storage == nil || deps.Documents == nil || deps.QuoteCfg == nil {
		return nil, fmt.Errorf("storage, documents and quote config are required")
	}

	serviceLogger := &zapLoggerAdapter{logger: deps.Logger}
	quotes := repository.NewQuoteRepository(deps.SqlDB, deps.Logger)
	slot := &quote.ErrorSlot{}

	quoteService := service.NewQuoteService(
		slot,
		deps.Documents.Composer,
		deps.Storage.Assets,
		deps.Documents.Inspector,
		deps.Counter,
		quotes,
		deps.Storage.FileStorage,
		deps.TxManager,
		service.QuoteConfig{
			BackgroundPath: deps.QuoteCfg.BackgroundPath,
			AssetTimeout:   deps.QuoteCfg.AssetTimeout,
		},
		serviceLogger,
	)

	registerService := service.NewRegisterService(
		quotes,
		deps.Storage.FileStorage,
		deps.Documents.Exporter,
		serviceLogger,
	)

	return &ServiceBundle{
		Quote:    quoteService,
		Register: registerService,
		Slot:     slot,
	}, nil
}
