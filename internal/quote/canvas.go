package quote

// Align is the horizontal anchor of a text run relative to its x coordinate
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Image is a decoded-by-reference raster asset ready to be placed on a page
type Image struct {
	Name string // registration key inside the document
	Type string // "PNG" or "JPG"
	Data []byte
}

// Canvas draws on fixed-size pages. Coordinates are in the canvas unit with the
// origin at the top-left corner; y is the text baseline.
type Canvas interface {
	LineSplitter

	AddPage()
	SetFontSize(size float64)
	SetTextGray(level int)
	SetDrawGray(level int)
	SetLineWidth(width float64)

	DrawImage(img *Image, x, y, w, h float64) error
	Text(x, y float64, text string, align Align)
	Rect(x, y, w, h float64)

	PageCount() int
	SetPage(page int)

	// Export finishes the document and returns its bytes
	Export() ([]byte, error)
}

// CanvasFactory returns a fresh, empty canvas for every composition
type CanvasFactory func() Canvas
