package quote

import (
	"errors"
)

type drawnText struct {
	page  int
	x, y  float64
	text  string
	align Align
	size  float64
}

// fakeCanvas records drawing calls. Every rune is charWidth wide.
type fakeCanvas struct {
	charWidth float64
	autoPages int // pages the canvas adds on its own
	imageErr  error
	exportErr error

	pages        int
	current      int
	addPageCalls int
	fontSize     float64
	textGray     int
	texts        []drawnText
	rects        [][4]float64
	images       []*Image
}

func newFakeCanvas() *fakeCanvas {
	return &fakeCanvas{charWidth: 2}
}

func (f *fakeCanvas) factory() CanvasFactory {
	return func() Canvas { return f }
}

func (f *fakeCanvas) SplitText(text string, width float64) []string {
	max := int(width / f.charWidth)
	runes := []rune(text)
	if max < 1 {
		max = 1
	}
	var parts []string
	for len(runes) > max {
		parts = append(parts, string(runes[:max]))
		runes = runes[max:]
	}
	return append(parts, string(runes))
}

func (f *fakeCanvas) AddPage() {
	f.addPageCalls++
	f.pages++
	f.current = f.pages
}

func (f *fakeCanvas) SetFontSize(size float64) { f.fontSize = size }
func (f *fakeCanvas) SetTextGray(level int)    { f.textGray = level }
func (f *fakeCanvas) SetDrawGray(level int)    {}
func (f *fakeCanvas) SetLineWidth(w float64)   {}

func (f *fakeCanvas) DrawImage(img *Image, x, y, w, h float64) error {
	if f.imageErr != nil {
		return f.imageErr
	}
	f.images = append(f.images, img)
	return nil
}

func (f *fakeCanvas) Text(x, y float64, text string, align Align) {
	f.texts = append(f.texts, drawnText{page: f.current, x: x, y: y, text: text, align: align, size: f.fontSize})
}

func (f *fakeCanvas) Rect(x, y, w, h float64) {
	f.rects = append(f.rects, [4]float64{x, y, w, h})
}

func (f *fakeCanvas) PageCount() int { return f.pages + f.autoPages }
func (f *fakeCanvas) SetPage(page int) { f.current = page }

func (f *fakeCanvas) Export() ([]byte, error) {
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	return []byte("%PDF-fake"), nil
}

func (f *fakeCanvas) find(text string) (drawnText, bool) {
	for _, t := range f.texts {
		if t.text == text {
			return t, true
		}
	}
	return drawnText{}, false
}

var errBoom = errors.New("boom")
