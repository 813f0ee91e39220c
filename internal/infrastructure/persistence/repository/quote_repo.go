package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wmartinez/presupuestos/internal/application/port"
	"github.com/wmartinez/presupuestos/internal/domain/entity"
	"github.com/wmartinez/presupuestos/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// QuoteRepository implements port.QuoteRepository
type QuoteRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewQuoteRepository creates a new quote repository
func NewQuoteRepository(db *sql.DB, logger *zap.Logger) port.QuoteRepository {
	return &QuoteRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a finalized quote. The number must be unique.
func (r *QuoteRepository) Create(ctx context.Context, record *entity.QuoteRecord) error {
	query := `
		INSERT INTO quotes (
			number, client_name, quote_date, price, includes,
			file_name, pages, dropped_lines, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		record.Number,
		record.ClientName,
		record.QuoteDate,
		record.Price,
		record.Includes,
		record.FileName,
		record.Pages,
		record.DroppedLines,
		record.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create quote", zap.Int("number", record.Number), zap.Error(err))
		return fmt.Errorf("failed to create quote: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	record.ID = id
	return nil
}

// GetByNumber retrieves a quote by its document number
func (r *QuoteRepository) GetByNumber(ctx context.Context, number int) (*entity.QuoteRecord, error) {
	query := `
		SELECT id, number, client_name, quote_date, price, includes,
			file_name, pages, dropped_lines, created_at
		FROM quotes
		WHERE number = ?
	`

	record, err := scanQuote(r.getExecutor(ctx).QueryRowContext(ctx, query, number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("quote %d: %w", number, port.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get quote", zap.Int("number", number), zap.Error(err))
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	return record, nil
}

// List returns quotes newest first
func (r *QuoteRepository) List(ctx context.Context, limit, offset int) ([]*entity.QuoteRecord, error) {
	query := `
		SELECT id, number, client_name, quote_date, price, includes,
			file_name, pages, dropped_lines, created_at
		FROM quotes
		ORDER BY number DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list quotes", zap.Error(err))
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	var records []*entity.QuoteRecord
	for rows.Next() {
		record, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// Count returns the number of finalized quotes
func (r *QuoteRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.getExecutor(ctx).QueryRowContext(ctx, "SELECT COUNT(*) FROM quotes").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count quotes: %w", err)
	}
	return count, nil
}

// MaxNumber returns the highest registered document number, 0 when the register is empty
func (r *QuoteRepository) MaxNumber(ctx context.Context) (int, error) {
	var max int
	if err := r.getExecutor(ctx).QueryRowContext(ctx, "SELECT COALESCE(MAX(number), 0) FROM quotes").Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to read highest quote number: %w", err)
	}
	return max, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuote(row rowScanner) (*entity.QuoteRecord, error) {
	var record entity.QuoteRecord
	var createdAt sql.NullTime

	err := row.Scan(
		&record.ID,
		&record.Number,
		&record.ClientName,
		&record.QuoteDate,
		&record.Price,
		&record.Includes,
		&record.FileName,
		&record.Pages,
		&record.DroppedLines,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if createdAt.Valid {
		record.CreatedAt = createdAt.Time
	}
	return &record, nil
}

// getExecutor returns appropriate executor based on context
func (r *QuoteRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFor(ctx, r.db)
}

// Verify interface compliance
var _ port.QuoteRepository = (*QuoteRepository)(nil)
