package counter

import (
	"context"
	"sync"

	"github.com/wmartinez/presupuestos/internal/application/port"
)

// MemoryCounter is a process-local counter. It never fails.
type MemoryCounter struct {
	mu    sync.Mutex
	value int
}

// NewMemoryCounter creates a counter holding initial
func NewMemoryCounter(initial int) *MemoryCounter {
	return &MemoryCounter{value: initial}
}

func (c *MemoryCounter) Load(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, nil
}

func (c *MemoryCounter) Save(ctx context.Context, next int) error {
	c.mu.Lock()
	c.value = next
	c.mu.Unlock()
	return nil
}

var _ port.CounterStore = (*MemoryCounter)(nil)
