package quote

import "fmt"

const (
	mmPerPoint = 25.4 / 72

	// baseline distance as a multiple of the font size
	lineHeightFactor = 1.15
)

// Template holds the coordinates, sizes and fixed texts of the quote page.
// All lengths are millimetres on an A4 portrait page.
type Template struct {
	PageWidth   float64
	PageHeight  float64
	MarginLeft  float64
	MarginRight float64

	TitleY      float64
	DateY       float64
	NumberY     float64
	TopContentY float64
	BottomY     float64
	LineHeight  float64

	IntroToHeadingGap float64
	HeadingToBoxGap   float64
	BoxPaddingTop     float64
	BoxPaddingBottom  float64
	BoxToLegalGap     float64
	ParagraphGap      float64
	BoxLineWidth      float64

	// lines whose baseline lies below BottomY minus the clearance are dropped
	DescriptionClearance float64
	LegalClearance       float64

	FooterX    float64
	FooterY    float64
	FooterGray int

	HeaderFontSize  float64
	TitleFontSize   float64
	IntroFontSize   float64
	HeadingFontSize float64
	BodyFontSize    float64
	FooterFontSize  float64

	IntroText      string
	HeadingText    string
	Signature      string
	DepositPercent int
}

// DefaultTemplate returns the quote layout
func DefaultTemplate() Template {
	return Template{
		PageWidth:   210,
		PageHeight:  297,
		MarginLeft:  20,
		MarginRight: 20,

		TitleY:      67.5,
		DateY:       72.5,
		NumberY:     283,
		TopContentY: 90,
		BottomY:     290,
		LineHeight:  6,

		IntroToHeadingGap: 8,
		HeadingToBoxGap:   6,
		BoxPaddingTop:     6,
		BoxPaddingBottom:  6,
		BoxToLegalGap:     12,
		ParagraphGap:      2,
		BoxLineWidth:      0.5,

		DescriptionClearance: 20,
		LegalClearance:       10,

		FooterX:    5,
		FooterY:    293,
		FooterGray: 80,

		HeaderFontSize:  11,
		TitleFontSize:   16,
		IntroFontSize:   11.5,
		HeadingFontSize: 13,
		BodyFontSize:    11,
		FooterFontSize:  10,

		IntroText:      "Es un placer para nosotros presentarle el presupuesto detallado para el servicio que ha solicitado.",
		HeadingText:    "Descripción",
		Signature:      "Wilson Martínez",
		DepositPercent: 60,
	}
}

// ContentWidth is the horizontal space between the side margins
func (t Template) ContentWidth() float64 {
	return t.PageWidth - t.MarginLeft - t.MarginRight
}

// IntroLineSpacing is the baseline distance between intro sub-lines, derived from
// the intro font size. The heading position still reserves LineHeight per sub-line.
func (t Template) IntroLineSpacing() float64 {
	return t.IntroFontSize * lineHeightFactor * mmPerPoint
}

// DescriptionCutoff is the lowest baseline a description sub-line may use
func (t Template) DescriptionCutoff() float64 {
	return t.BottomY - t.DescriptionClearance
}

// LegalCutoff is the lowest baseline a legal sub-line may use
func (t Template) LegalCutoff() float64 {
	return t.BottomY - t.LegalClearance
}

// LegalLines returns the closing block with price and includes interpolated.
// Empty strings are paragraph separators.
func (t Template) LegalLines(price, includes string) []string {
	return []string{
		fmt.Sprintf("- El costo total del presupuesto es de %s.", price),
		"",
		fmt.Sprintf("- El presente presupuesto incluye %s.", includes),
		"",
		fmt.Sprintf("- Para la confirmación del trabajo, requerimos una seña del %d%% del total del presupuesto.", t.DepositPercent),
		"",
		"Por favor, no dude en ponerse en contacto con nosotros si tiene alguna pregunta o necesita aclaraciones adicionales.",
		"Agradecemos su confianza en nosotros y esperamos poder servirle pronto.",
		"",
		"Atentamente,",
		t.Signature,
	}
}

// NumberLabel is the document number as printed on the page
func NumberLabel(number int) string {
	return fmt.Sprintf("Nº %d", number)
}

// TitleText is the page title for a client
func TitleText(clientName string) string {
	return fmt.Sprintf("Presupuesto %s", clientName)
}

// FooterLabel is the page counter stamped on every page
func FooterLabel(page, total int) string {
	return fmt.Sprintf("%d / %d", page, total)
}
