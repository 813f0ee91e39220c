package pdfdoc

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/wmartinez/presupuestos/internal/application/port"
	"go.uber.org/zap"
)

var disableConfigDir sync.Once

// Inspector validates rendered PDFs with pdfcpu and extracts their text with ledongthuc/pdf.
// When pdfcpu rejects a document the page count is taken from the text reader instead.
type Inspector struct {
	conf   *model.Configuration
	logger *zap.Logger
}

// NewInspector creates an inspector with relaxed validation
func NewInspector(logger *zap.Logger) *Inspector {
	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	return &Inspector{
		conf:   conf,
		logger: logger,
	}
}

// Inspect validates content and reports its page count and plain text
func (i *Inspector) Inspect(ctx context.Context, content []byte) (*port.DocumentReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	report := &port.DocumentReport{}

	if err := api.Validate(bytes.NewReader(content), i.conf); err != nil {
		i.logger.Warn("PDF validation failed", zap.Error(err))
	} else {
		report.Validated = true
		pages, err := api.PageCount(bytes.NewReader(content), i.conf)
		if err != nil {
			i.logger.Warn("pdfcpu page count failed", zap.Error(err))
		} else {
			report.Pages = pages
		}
	}

	text, pages, err := extractText(content)
	if err != nil {
		if !report.Validated {
			return nil, fmt.Errorf("failed to read pdf: %w", err)
		}
		i.logger.Debug("Text extraction failed", zap.Error(err))
		return report, nil
	}

	if report.Pages == 0 {
		report.Pages = pages
	}
	report.Text = text

	return report, nil
}

// extractText returns the plain text of every page and the page count
func extractText(content []byte) (string, int, error) {
	reader, err := lpdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", 0, fmt.Errorf("failed to open pdf: %w", err)
	}

	pageCount := reader.NumPage()

	var sb strings.Builder
	for n := 1; n <= pageCount; n++ {
		page := reader.Page(n)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strings.TrimSpace(text))
	}

	return sb.String(), pageCount, nil
}

var _ port.DocumentInspector = (*Inspector)(nil)
