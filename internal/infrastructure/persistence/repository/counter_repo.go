package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wmartinez/presupuestos/internal/application/port"
	"github.com/wmartinez/presupuestos/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// CounterRepository implements port.CounterStore on the counters table.
// Inside a WithTransaction context it reads and writes through the transaction.
type CounterRepository struct {
	db           *sql.DB
	name         string
	defaultValue int
	logger       *zap.Logger
}

// NewCounterRepository creates a counter stored under name, reporting defaultValue until first saved
func NewCounterRepository(db *sql.DB, name string, defaultValue int, logger *zap.Logger) *CounterRepository {
	return &CounterRepository{
		db:           db,
		name:         name,
		defaultValue: defaultValue,
		logger:       logger,
	}
}

// Load returns the stored next number
func (r *CounterRepository) Load(ctx context.Context) (int, error) {
	var value int
	err := r.getExecutor(ctx).QueryRowContext(ctx,
		"SELECT value FROM counters WHERE name = ?", r.name).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return r.defaultValue, nil
	}
	if err != nil {
		r.logger.Error("Failed to load counter", zap.String("name", r.name), zap.Error(err))
		return 0, fmt.Errorf("failed to load counter %s: %w", r.name, err)
	}

	return value, nil
}

// Save stores next, creating the row on first use
func (r *CounterRepository) Save(ctx context.Context, next int) error {
	query := `
		INSERT INTO counters (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`

	if _, err := r.getExecutor(ctx).ExecContext(ctx, query, r.name, next); err != nil {
		r.logger.Error("Failed to save counter",
			zap.String("name", r.name),
			zap.Int("value", next),
			zap.Error(err))
		return fmt.Errorf("failed to save counter %s: %w", r.name, err)
	}

	return nil
}

// getExecutor returns appropriate executor based on context
func (r *CounterRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFor(ctx, r.db)
}

// Verify interface compliance
var _ port.CounterStore = (*CounterRepository)(nil)
