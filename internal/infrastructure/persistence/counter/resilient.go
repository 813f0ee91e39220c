package counter

import (
	"context"
	"sync/atomic"

	"github.com/wmartinez/presupuestos/internal/application/port"
	"go.uber.org/zap"
)

// ResilientCounter delegates to a persistent store and degrades to process memory
// when the store fails. The memory copy tracks the last value seen so numbering
// continues from there; after a failure the store is retried on the next call.
type ResilientCounter struct {
	store    port.CounterStore
	memory   *MemoryCounter
	degraded atomic.Bool
	logger   *zap.Logger
}

// NewResilientCounter wraps store. defaultValue seeds the memory copy.
func NewResilientCounter(store port.CounterStore, defaultValue int, logger *zap.Logger) *ResilientCounter {
	return &ResilientCounter{
		store:  store,
		memory: NewMemoryCounter(defaultValue),
		logger: logger,
	}
}

// Load never fails: a store error is logged and the memory copy is returned
func (c *ResilientCounter) Load(ctx context.Context) (int, error) {
	n, err := c.store.Load(ctx)
	if err != nil {
		c.markDegraded("load", err)
		return c.memory.Load(ctx)
	}

	// numbers handed out while degraded must not be reissued
	if c.degraded.Load() {
		if mem, _ := c.memory.Load(ctx); mem > n {
			if err := c.store.Save(ctx, mem); err != nil {
				c.markDegraded("save", err)
				return mem, nil
			}
			n = mem
		}
	}

	c.markHealthy()
	_ = c.memory.Save(ctx, n)
	return n, nil
}

// Save never fails: a store error is logged and only the memory copy is updated
func (c *ResilientCounter) Save(ctx context.Context, next int) error {
	_ = c.memory.Save(ctx, next)

	if err := c.store.Save(ctx, next); err != nil {
		c.markDegraded("save", err)
		return nil
	}

	c.markHealthy()
	return nil
}

// Degraded reports whether the last store operation failed
func (c *ResilientCounter) Degraded() bool {
	return c.degraded.Load()
}

func (c *ResilientCounter) markDegraded(op string, err error) {
	if !c.degraded.Swap(true) {
		c.logger.Warn("Counter storage unavailable, using in-memory counter",
			zap.String("operation", op),
			zap.Error(err))
		return
	}
	c.logger.Debug("Counter storage still unavailable", zap.String("operation", op), zap.Error(err))
}

func (c *ResilientCounter) markHealthy() {
	if c.degraded.Swap(false) {
		c.logger.Info("Counter storage recovered")
	}
}

var _ port.CounterStore = (*ResilientCounter)(nil)
