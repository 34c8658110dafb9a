package compose

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/andigenesis/brainrot-generator/internal/captions"
	"github.com/andigenesis/brainrot-generator/internal/timing"
)

const (
	// horizontalMargin keeps caption text clear of the frame edges.
	horizontalMargin = 80
	// anchorRatio places the caption band's vertical center in the lower
	// third of a portrait frame.
	anchorRatio = 0.75
)

// wordBox is a laid-out word: its text plus the baseline origin where the
// drawer starts the string.
type wordBox struct {
	text string
	x, y int
}

// blockLayout holds the word positions for one caption block. Layouts are
// computed once per job and shared read-only across render workers.
type blockLayout struct {
	words []wordBox
}

// ParseFont parses raw TTF/OTF data. Pass nil to use the bundled bold face.
func ParseFont(data []byte) (*opentype.Font, error) {
	if data == nil {
		data = gobold.TTF
	}
	fnt, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return fnt, nil
}

// newFace creates a rendering face for one worker. Faces buffer glyph
// rasterizations and are not safe for concurrent use, so every worker gets
// its own.
func newFace(fnt *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return face, nil
}

// layoutBlocks measures every caption block up front with a single face.
// Words wrap greedily within the frame margins; each block is centered
// horizontally line by line and anchored vertically as a band around the
// lower-third line.
func layoutBlocks(timeline *captions.Timeline, face font.Face, width, height int) []blockLayout {
	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()
	ascent := metrics.Ascent.Ceil()
	spaceWidth := font.MeasureString(face, " ").Ceil()
	maxLine := width - 2*horizontalMargin

	layouts := make([]blockLayout, timeline.Len())
	for bi, block := range timeline.Blocks() {
		lines := wrapWords(block.Words, face, spaceWidth, maxLine)

		bandHeight := len(lines) * lineHeight
		top := int(float64(height)*anchorRatio) - bandHeight/2

		var boxes []wordBox
		for li, line := range lines {
			x := (width - line.width) / 2
			y := top + li*lineHeight + ascent
			for _, w := range line.words {
				boxes = append(boxes, wordBox{text: w.text, x: x + w.offset, y: y})
			}
		}
		layouts[bi] = blockLayout{words: boxes}
	}
	return layouts
}

type measuredWord struct {
	text   string
	offset int
	width  int
}

type measuredLine struct {
	words []measuredWord
	width int
}

func wrapWords(words []timing.WordSpan, face font.Face, spaceWidth, maxLine int) []measuredLine {
	var lines []measuredLine
	var cur measuredLine
	for _, span := range words {
		text := span.Text
		w := font.MeasureString(face, text).Ceil()
		if len(cur.words) > 0 && cur.width+spaceWidth+w > maxLine {
			lines = append(lines, cur)
			cur = measuredLine{}
		}
		offset := cur.width
		if len(cur.words) > 0 {
			offset += spaceWidth
		}
		cur.words = append(cur.words, measuredWord{text: text, offset: offset, width: w})
		cur.width = offset + w
	}
	if len(cur.words) > 0 {
		lines = append(lines, cur)
	}
	return lines
}

// fixedPoint converts pixel coordinates to the drawer's fixed-point dot.
func fixedPoint(x, y int) fixed.Point26_6 {
	return fixed.P(x, y)
}
