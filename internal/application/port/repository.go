package port

import (
	"context"
	"errors"

	"github.com/wmartinez/presupuestos/internal/domain/entity"
)

// ErrNotFound is returned by repositories when a row does not exist
var ErrNotFound = errors.New("not found")

// CounterStore persists the number of the next document to be finalized
type CounterStore interface {
	// Load returns the stored next number, or the configured default when nothing is stored
	Load(ctx context.Context) (int, error)

	// Save stores next as the number of the next document
	Save(ctx context.Context, next int) error
}

// QuoteRepository defines persistence operations for QuoteRecord
type QuoteRepository interface {
	Create(ctx context.Context, record *entity.QuoteRecord) error
	GetByNumber(ctx context.Context, number int) (*entity.QuoteRecord, error)
	List(ctx context.Context, limit, offset int) ([]*entity.QuoteRecord, error)
	Count(ctx context.Context) (int, error)
	// MaxNumber returns the highest registered document number, 0 when empty
	MaxNumber(ctx context.Context) (int, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
