package quote

import "strings"

// LineSplitter wraps one logical line into sub-lines no wider than width,
// measured with the canvas's current font.
type LineSplitter interface {
	SplitText(text string, width float64) []string
}

// WrappedLine is one input line after wrapping. Blank lines carry no parts.
type WrappedLine struct {
	Blank bool
	Parts []string
}

// WrappedLayout is the wrapped form of a paragraph block
type WrappedLayout struct {
	Lines       []WrappedLine
	TotalHeight float64
}

// SubLineCount returns the number of drawable sub-lines
func (l WrappedLayout) SubLineCount() int {
	n := 0
	for _, line := range l.Lines {
		n += len(line.Parts)
	}
	return n
}

// Wrap lays out lines at contentWidth. A blank line adds one lineHeight of gap,
// any other line adds lineHeight per wrapped sub-line.
func Wrap(splitter LineSplitter, lines []string, contentWidth, lineHeight float64) WrappedLayout {
	layout := WrappedLayout{Lines: make([]WrappedLine, 0, len(lines))}

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			layout.Lines = append(layout.Lines, WrappedLine{Blank: true})
			layout.TotalHeight += lineHeight
			continue
		}

		parts := splitter.SplitText(line, contentWidth)
		layout.Lines = append(layout.Lines, WrappedLine{Parts: parts})
		layout.TotalHeight += float64(len(parts)) * lineHeight
	}

	return layout
}

// CenteredStart returns the baseline of the first sub-line so that contentHeight
// sits centered between the paddings of a box. The result is not clamped: content
// taller than the padded area overflows the box.
func CenteredStart(boxTop, boxHeight, contentHeight, paddingTop, paddingBottom float64) float64 {
	return boxTop + paddingTop + (boxHeight-paddingTop-paddingBottom-contentHeight)/2
}

// SplitParagraphs splits free text on newlines, tolerating CRLF input
func SplitParagraphs(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Placement is a sub-line positioned at baseline Y
type Placement struct {
	Text string
	Y    float64
}

// PlaceBlock positions the sub-lines of a paragraph block from baseline y down.
// Sub-lines below cutoff are dropped and counted. A blank line advances one
// lineHeight only while y is still within the cut-off, and every line is followed
// by gap. end is the baseline after the last line.
func PlaceBlock(layout WrappedLayout, y, cutoff, lineHeight, gap float64) (placed []Placement, dropped int, end float64) {
	for _, line := range layout.Lines {
		if line.Blank {
			if y <= cutoff {
				y += lineHeight
			}
			y += gap
			continue
		}
		for _, part := range line.Parts {
			if y > cutoff {
				dropped++
				continue
			}
			placed = append(placed, Placement{Text: part, Y: y})
			y += lineHeight
		}
		y += gap
	}
	return placed, dropped, y
}
