package export

import (
	"context"
	"fmt"

	"github.com/wmartinez/presupuestos/internal/application/port"
	"github.com/wmartinez/presupuestos/internal/domain/entity"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// RegisterSheet is the worksheet holding the quote register
const RegisterSheet = "Presupuestos"

var registerHeader = []interface{}{
	"Nº", "Cliente", "Fecha", "Precio", "Incluye", "Archivo", "Páginas", "Líneas omitidas", "Creado",
}

// ExcelRegisterExporter writes the quote register as an .xlsx workbook
type ExcelRegisterExporter struct {
	logger *zap.Logger
}

// NewExcelRegisterExporter creates a new exporter
func NewExcelRegisterExporter(logger *zap.Logger) *ExcelRegisterExporter {
	return &ExcelRegisterExporter{logger: logger}
}

// Export returns a workbook with a header row followed by one row per record
func (e *ExcelRegisterExporter) Export(ctx context.Context, records []*entity.QuoteRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.Warn("Failed to close workbook", zap.Error(err))
		}
	}()

	if err := f.SetSheetName("Sheet1", RegisterSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := e.setRow(f, 1, registerHeader); err != nil {
		return nil, err
	}

	for i, r := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := []interface{}{
			r.Number,
			r.ClientName,
			r.QuoteDate,
			r.Price,
			r.Includes,
			r.FileName,
			r.Pages,
			r.DroppedLines,
			r.CreatedAt.Format("2006-01-02 15:04"),
		}
		if err := e.setRow(f, i+2, row); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(RegisterSheet, "B", "F", 24); err != nil {
		e.logger.Debug("Failed to set column width", zap.Error(err))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Debug("Register exported", zap.Int("rows", len(records)))
	return buf.Bytes(), nil
}

func (e *ExcelRegisterExporter) setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("invalid row %d: %w", row, err)
	}
	if err := f.SetSheetRow(RegisterSheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

var _ port.RegisterExporter = (*ExcelRegisterExporter)(nil)
