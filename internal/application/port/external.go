package port

import (
	"context"

	"github.com/wmartinez/presupuestos/internal/domain/entity"
)

// DocumentReport describes a rendered PDF as seen by an independent reader
type DocumentReport struct {
	Pages     int
	Validated bool   // the structure passed validation
	Text      string // extracted plain text, may be empty
}

// DocumentInspector verifies rendered documents
type DocumentInspector interface {
	Inspect(ctx context.Context, content []byte) (*DocumentReport, error)
}

// Thumbnailer rasterises a PDF page to PNG
type Thumbnailer interface {
	Render(ctx context.Context, content []byte, page int) ([]byte, error)
}

// RegisterExporter writes the quote register as a spreadsheet
type RegisterExporter interface {
	Export(ctx context.Context, records []*entity.QuoteRecord) ([]byte, error)
}
