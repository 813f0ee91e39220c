package pdfdoc

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
	"github.com/wmartinez/presupuestos/internal/application/port"
	"go.uber.org/zap"
)

const defaultThumbnailDPI = 72.0

// FitzThumbnailer renders PDF pages to PNG with MuPDF
type FitzThumbnailer struct {
	dpi    float64
	logger *zap.Logger
}

// NewFitzThumbnailer creates a thumbnailer rendering at dpi (72 when zero)
func NewFitzThumbnailer(dpi float64, logger *zap.Logger) *FitzThumbnailer {
	if dpi <= 0 {
		dpi = defaultThumbnailDPI
	}
	return &FitzThumbnailer{
		dpi:    dpi,
		logger: logger,
	}
}

// Render rasterises the 1-based page of content to PNG
func (t *FitzThumbnailer) Render(ctx context.Context, content []byte, page int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if page < 1 || page > doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range (1-%d)", page, doc.NumPage())
	}

	img, err := doc.ImageDPI(page-1, t.dpi)
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", page, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode page %d: %w", page, err)
	}

	t.logger.Debug("Rendered thumbnail",
		zap.Int("page", page),
		zap.Float64("dpi", t.dpi),
		zap.Int("size", buf.Len()))

	return buf.Bytes(), nil
}

var _ port.Thumbnailer = (*FitzThumbnailer)(nil)
