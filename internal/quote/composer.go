package quote

import (
	"context"
	"fmt"

	"github.com/wmartinez/presupuestos/internal/domain/entity"
	"go.uber.org/zap"
)

// Document is a rendered quote
type Document struct {
	Content      []byte
	Pages        int
	DroppedLines int // sub-lines skipped for falling below the cut-off
}

// Composer draws the quote template onto a fresh canvas
type Composer struct {
	newCanvas CanvasFactory
	template  Template
	logger    *zap.Logger
}

// NewComposer creates a composer using factory for every document
func NewComposer(factory CanvasFactory, template Template, logger *zap.Logger) *Composer {
	return &Composer{
		newCanvas: factory,
		template:  template,
		logger:    logger,
	}
}

// Template returns the layout in use
func (c *Composer) Template() Template {
	return c.template
}

// Compose renders form as document number on top of background.
// Content that does not fit above the cut-off lines is dropped, never moved to a new page.
func (c *Composer) Compose(ctx context.Context, form entity.QuoteForm, number int, background *Image) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if number < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNumber, number)
	}
	if background == nil || len(background.Data) == 0 {
		return nil, ErrAssetLoad
	}

	t := c.template
	cv := c.newCanvas()
	cv.AddPage()

	if err := cv.DrawImage(background, 0, 0, t.PageWidth, t.PageHeight); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetLoad, err)
	}

	width := t.ContentWidth()
	right := t.PageWidth - t.MarginRight
	centerX := t.PageWidth / 2

	// header band
	cv.SetFontSize(t.HeaderFontSize)
	cv.Text(right, t.NumberY, NumberLabel(number), AlignRight)
	cv.Text(right, t.DateY, form.Date.String(), AlignRight)

	cv.SetFontSize(t.TitleFontSize)
	cv.Text(t.MarginLeft, t.TitleY, TitleText(form.ClientName), AlignLeft)

	// intro paragraph
	cv.SetFontSize(t.IntroFontSize)
	intro := cv.SplitText(t.IntroText, width)
	y := t.TopContentY
	for _, line := range intro {
		cv.Text(centerX, y, line, AlignCenter)
		y += t.IntroLineSpacing()
	}
	headingY := t.TopContentY + float64(len(intro))*t.LineHeight + t.IntroToHeadingGap

	cv.SetFontSize(t.HeadingFontSize)
	cv.Text(centerX, headingY, t.HeadingText, AlignCenter)

	// description box
	cv.SetFontSize(t.BodyFontSize)
	desc := Wrap(cv, SplitParagraphs(form.Description), width, t.LineHeight)

	boxY := headingY + t.HeadingToBoxGap
	boxHeight := desc.TotalHeight + t.BoxPaddingTop + t.BoxPaddingBottom

	cv.SetDrawGray(0)
	cv.SetLineWidth(t.BoxLineWidth)
	cv.Rect(t.MarginLeft, boxY, width, boxHeight)

	dropped := 0
	boxCenter := t.MarginLeft + width/2
	y = CenteredStart(boxY, boxHeight, desc.TotalHeight, t.BoxPaddingTop, t.BoxPaddingBottom)
	for _, line := range desc.Lines {
		if line.Blank {
			y += t.LineHeight
			continue
		}
		for _, part := range line.Parts {
			if y > t.DescriptionCutoff() {
				dropped++
				continue
			}
			cv.Text(boxCenter, y, part, AlignCenter)
			y += t.LineHeight
		}
	}

	// legal block
	legal := Wrap(cv, t.LegalLines(form.Price, form.Includes), width, t.LineHeight)
	placed, legalDropped, _ := PlaceBlock(legal, boxY+boxHeight+t.BoxToLegalGap, t.LegalCutoff(), t.LineHeight, t.ParagraphGap)
	for _, p := range placed {
		cv.Text(centerX, p.Y, p.Text, AlignCenter)
	}
	dropped += legalDropped

	// footers on every physical page
	pages := cv.PageCount()
	cv.SetFontSize(t.FooterFontSize)
	cv.SetTextGray(t.FooterGray)
	for i := 1; i <= pages; i++ {
		cv.SetPage(i)
		cv.Text(t.FooterX, t.FooterY, FooterLabel(i, pages), AlignLeft)
	}

	content, err := cv.Export()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	if dropped > 0 {
		c.logger.Warn("Quote content exceeded the page and was dropped",
			zap.Int("number", number),
			zap.Int("dropped_lines", dropped))
	}

	c.logger.Debug("Quote composed",
		zap.Int("number", number),
		zap.Int("pages", pages),
		zap.Int("description_lines", desc.SubLineCount()),
		zap.Float64("box_height", boxHeight),
		zap.Int("size", len(content)))

	return &Document{
		Content:      content,
		Pages:        pages,
		DroppedLines: dropped,
	}, nil
}
