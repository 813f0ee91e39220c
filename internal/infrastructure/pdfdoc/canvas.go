package pdfdoc

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/wmartinez/presupuestos/internal/quote"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

const defaultFontFamily = "Helvetica"

// FpdfCanvas implements quote.Canvas on top of an A4 portrait fpdf document.
// Core fonts are cp1252, so every string is transcoded before it is measured or drawn.
type FpdfCanvas struct {
	pdf     *fpdf.Fpdf
	encoder *encoding.Encoder
}

// NewCanvasFactory returns a factory producing a fresh canvas per document
func NewCanvasFactory(fontFamily string) quote.CanvasFactory {
	if fontFamily == "" {
		fontFamily = defaultFontFamily
	}
	return func() quote.Canvas {
		return NewFpdfCanvas(fontFamily)
	}
}

// NewFpdfCanvas creates an empty canvas with automatic page breaking disabled
func NewFpdfCanvas(fontFamily string) *FpdfCanvas {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetFont(fontFamily, "", 11)
	pdf.SetCreator("presupuestos", true)

	return &FpdfCanvas{
		pdf:     pdf,
		encoder: encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()),
	}
}

// encode transcodes UTF-8 text to the cp1252 bytes fpdf core fonts expect.
// Decomposed accents are composed first so that they map to a single byte.
func (c *FpdfCanvas) encode(s string) string {
	out, err := c.encoder.String(norm.NFC.String(s))
	if err != nil {
		return s
	}
	return out
}

func (c *FpdfCanvas) width(s string) float64 {
	return c.pdf.GetStringWidth(c.encode(s))
}

// SplitText wraps text greedily at single spaces so that no sub-line is wider
// than width. Runs of spaces are kept inside a sub-line and dropped at a break.
// A single word wider than width is broken between runes.
func (c *FpdfCanvas) SplitText(text string, width float64) []string {
	if strings.TrimSpace(text) == "" {
		return []string{""}
	}
	if c.width(text) <= width {
		return []string{text}
	}

	var lines []string
	current, open := "", false
	for _, word := range strings.Split(text, " ") {
		// a wrapped sub-line never starts with spaces
		if !open && word == "" && len(lines) > 0 {
			continue
		}
		candidate := word
		if open {
			candidate = current + " " + word
		}
		if c.width(candidate) <= width {
			current, open = candidate, true
			continue
		}

		if open {
			if line := strings.TrimRight(current, " "); line != "" {
				lines = append(lines, line)
			}
			current, open = "", false
		}

		if word == "" {
			continue
		}
		if c.width(word) <= width {
			current, open = word, true
			continue
		}

		pieces := c.breakWord(word, width)
		lines = append(lines, pieces[:len(pieces)-1]...)
		current, open = pieces[len(pieces)-1], true
	}

	if open && strings.TrimSpace(current) != "" {
		lines = append(lines, current)
	}
	return lines
}

func (c *FpdfCanvas) breakWord(word string, width float64) []string {
	var pieces []string
	runes := []rune(word)
	start := 0
	for i := 1; i <= len(runes); i++ {
		if c.width(string(runes[start:i])) > width && i-1 > start {
			pieces = append(pieces, string(runes[start:i-1]))
			start = i - 1
		}
	}
	return append(pieces, string(runes[start:]))
}

func (c *FpdfCanvas) AddPage() {
	c.pdf.AddPage()
}

func (c *FpdfCanvas) SetFontSize(size float64) {
	c.pdf.SetFontSize(size)
}

func (c *FpdfCanvas) SetTextGray(level int) {
	c.pdf.SetTextColor(level, level, level)
}

func (c *FpdfCanvas) SetDrawGray(level int) {
	c.pdf.SetDrawColor(level, level, level)
}

func (c *FpdfCanvas) SetLineWidth(w float64) {
	c.pdf.SetLineWidth(w)
}

// DrawImage registers img under its name and places it at x, y scaled to w by h
func (c *FpdfCanvas) DrawImage(img *quote.Image, x, y, w, h float64) error {
	if img == nil || len(img.Data) == 0 {
		return fmt.Errorf("empty image")
	}

	opts := fpdf.ImageOptions{ImageType: img.Type, ReadDpi: false}
	c.pdf.RegisterImageOptionsReader(img.Name, opts, bytes.NewReader(img.Data))
	if c.pdf.Err() {
		return fmt.Errorf("failed to register image %s: %w", img.Name, c.pdf.Error())
	}

	c.pdf.ImageOptions(img.Name, x, y, w, h, false, opts, 0, "")
	if c.pdf.Err() {
		return fmt.Errorf("failed to place image %s: %w", img.Name, c.pdf.Error())
	}
	return nil
}

// Text draws text with its baseline at y, anchored at x according to align
func (c *FpdfCanvas) Text(x, y float64, text string, align quote.Align) {
	encoded := c.encode(text)
	w := c.pdf.GetStringWidth(encoded)

	switch align {
	case quote.AlignCenter:
		x -= w / 2
	case quote.AlignRight:
		x -= w
	}
	c.pdf.Text(x, y, encoded)
}

func (c *FpdfCanvas) Rect(x, y, w, h float64) {
	c.pdf.Rect(x, y, w, h, "D")
}

func (c *FpdfCanvas) PageCount() int {
	return c.pdf.PageCount()
}

func (c *FpdfCanvas) SetPage(page int) {
	c.pdf.SetPage(page)
}

// Export serializes the document. The canvas must not be used afterwards.
func (c *FpdfCanvas) Export() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

var _ quote.Canvas = (*FpdfCanvas)(nil)
