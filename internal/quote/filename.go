package quote

import (
	"fmt"

	"github.com/wmartinez/presupuestos/internal/domain/entity"
	"github.com/wmartinez/presupuestos/pkg/utils"
)

// FileName returns the download name of a finalized quote,
// Presupuesto_{number}_{client}.pdf
func FileName(number int, clientName string) string {
	return fmt.Sprintf("%s_%d_%s%s",
		entity.QuoteFileNamePrefix,
		number,
		utils.SanitizeFileComponent(clientName),
		entity.QuoteFileExtension)
}
