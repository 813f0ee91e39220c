package service

import (
	"context"
	"fmt"

	"github.com/wmartinez/presupuestos/internal/application/port"
	"github.com/wmartinez/presupuestos/internal/domain/entity"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
	exportPageSize   = maxListLimit
)

// RegisterPage is one page of the finalized quote register
type RegisterPage struct {
	Quotes []*entity.QuoteRecord `json:"quotes"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

// RegisterService exposes the register of finalized quotes
type RegisterService interface {
	List(ctx context.Context, limit, offset int) (*RegisterPage, error)
	Download(ctx context.Context, number int) (*entity.QuoteRecord, []byte, error)
	Export(ctx context.Context) ([]byte, error)
}

type registerServiceImpl struct {
	quotes   port.QuoteRepository
	files    port.FileStorage
	exporter port.RegisterExporter
	logger   Logger
}

// NewRegisterService creates a new RegisterService
func NewRegisterService(
	quotes port.QuoteRepository,
	files port.FileStorage,
	exporter port.RegisterExporter,
	logger Logger,
) RegisterService {
	return &registerServiceImpl{
		quotes:   quotes,
		files:    files,
		exporter: exporter,
		logger:   logger,
	}
}

// List returns quotes newest first. limit is clamped to [1, 200].
func (s *registerServiceImpl) List(ctx context.Context, limit, offset int) (*RegisterPage, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	quotes, err := s.quotes.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list quotes", "error", err)
		return nil, err
	}

	total, err := s.quotes.Count(ctx)
	if err != nil {
		s.logger.Error("Failed to count quotes", "error", err)
		return nil, err
	}

	if quotes == nil {
		quotes = []*entity.QuoteRecord{}
	}

	return &RegisterPage{
		Quotes: quotes,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

// Download returns the register entry and saved PDF of a finalized quote
func (s *registerServiceImpl) Download(ctx context.Context, number int) (*entity.QuoteRecord, []byte, error) {
	record, err := s.quotes.GetByNumber(ctx, number)
	if err != nil {
		return nil, nil, err
	}

	content, err := s.files.Read(ctx, record.FileName)
	if err != nil {
		s.logger.Error("Failed to read stored quote", "number", number, "file_name", record.FileName, "error", err)
		return nil, nil, fmt.Errorf("quote %d file: %w", number, err)
	}

	return record, content, nil
}

// Export returns the whole register as a spreadsheet, reading it page by page
func (s *registerServiceImpl) Export(ctx context.Context) ([]byte, error) {
	var quotes []*entity.QuoteRecord
	for offset := 0; ; offset += exportPageSize {
		page, err := s.quotes.List(ctx, exportPageSize, offset)
		if err != nil {
			s.logger.Error("Failed to list quotes for export", "offset", offset, "error", err)
			return nil, err
		}
		quotes = append(quotes, page...)
		if len(page) < exportPageSize {
			break
		}
	}

	out, err := s.exporter.Export(ctx, quotes)
	if err != nil {
		s.logger.Error("Failed to export register", "error", err)
		return nil, err
	}

	s.logger.Info("Register exported", "rows", len(quotes))
	return out, nil
}
