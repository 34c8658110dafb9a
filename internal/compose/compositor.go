package compose

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"github.com/andigenesis/brainrot-generator/internal/captions"
)

// Options configures a Compositor for one job.
type Options struct {
	Width    int
	Height   int
	FPS      int
	Font     *opentype.Font
	FontSize float64
	// TextColor paints non-emphasized caption words, HighlightColor the
	// word being spoken.
	TextColor      color.RGBA
	HighlightColor color.RGBA
	Workers        int
}

// Compositor renders caption and overlay layers onto decoded backdrop
// frames. All state is immutable after New, so RenderInto is safe to call
// concurrently as long as each caller supplies its own font face.
type Compositor struct {
	opts        Options
	timeline    *captions.Timeline
	layouts     []blockLayout
	overlays    []overlay
	totalFrames int
}

// New builds a compositor: it lays out every caption block once and loads
// and prescales every overlay image. totalMS is the narration duration that
// the output must cover.
func New(opts Options, timeline *captions.Timeline, spans []OverlaySpan, totalMS int64) (*Compositor, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", opts.Width, opts.Height)
	}
	if opts.FPS <= 0 {
		return nil, fmt.Errorf("invalid frame rate %d", opts.FPS)
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 72
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Font == nil {
		fnt, err := ParseFont(nil)
		if err != nil {
			return nil, err
		}
		opts.Font = fnt
	}

	measure, err := newFace(opts.Font, opts.FontSize)
	if err != nil {
		return nil, err
	}
	layouts := layoutBlocks(timeline, measure, opts.Width, opts.Height)

	overlays, err := loadOverlays(spans, opts.Width, opts.Height)
	if err != nil {
		return nil, err
	}

	return &Compositor{
		opts:        opts,
		timeline:    timeline,
		layouts:     layouts,
		overlays:    overlays,
		totalFrames: frameCount(totalMS, opts.FPS),
	}, nil
}

// frameCount rounds the duration up so the video never runs shorter than
// the narration.
func frameCount(totalMS int64, fps int) int {
	return int((totalMS*int64(fps) + 999) / 1000)
}

// TotalFrames reports how many frames the job renders.
func (c *Compositor) TotalFrames() int { return c.totalFrames }

// FrameSize reports the byte length of one raw RGBA frame.
func (c *Compositor) FrameSize() int { return c.opts.Width * c.opts.Height * 4 }

// frameTimeMS maps a frame index to the timestamp of its display instant.
func (c *Compositor) frameTimeMS(idx int) int64 {
	return int64(idx) * 1000 / int64(c.opts.FPS)
}

// RenderInto composites captions and overlays for frame idx directly onto
// buf, a raw RGBA backdrop frame. The face must be private to the caller.
func (c *Compositor) RenderInto(buf []byte, idx int, face font.Face) error {
	if len(buf) != c.FrameSize() {
		return fmt.Errorf("frame %d: got %d bytes, want %d", idx, len(buf), c.FrameSize())
	}
	frame := &image.RGBA{
		Pix:    buf,
		Stride: c.opts.Width * 4,
		Rect:   image.Rect(0, 0, c.opts.Width, c.opts.Height),
	}
	tMS := c.frameTimeMS(idx)

	for _, ov := range c.overlays {
		if alpha := ov.alphaAt(tMS); alpha > 0 {
			blendOverlay(frame, ov, alpha)
		}
	}

	pos := c.timeline.Resolve(tMS)
	c.drawBlock(frame, face, pos)
	return nil
}

func blendOverlay(dst *image.RGBA, ov overlay, alpha uint8) {
	r := ov.img.Bounds().Add(ov.origin)
	if alpha == 255 {
		draw.Draw(dst, r, ov.img, image.Point{}, draw.Over)
		return
	}
	mask := image.NewUniform(color.Alpha{A: alpha})
	draw.DrawMask(dst, r, ov.img, image.Point{}, mask, image.Point{}, draw.Over)
}

// strokeOffsets are the compass directions used to paint the caption
// outline before the fill pass.
var strokeOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

func (c *Compositor) drawBlock(frame *image.RGBA, face font.Face, pos captions.Position) {
	if pos.Block < 0 || pos.Block >= len(c.layouts) {
		return
	}
	layout := c.layouts[pos.Block]

	stroke := int(c.opts.FontSize / 24)
	if stroke < 2 {
		stroke = 2
	}
	outline := &font.Drawer{Dst: frame, Src: image.NewUniform(color.RGBA{A: 255}), Face: face}
	fill := &font.Drawer{Dst: frame, Face: face}

	for wi, box := range layout.words {
		for _, off := range strokeOffsets {
			outline.Dot = fixedPoint(box.x+off[0]*stroke, box.y+off[1]*stroke)
			outline.DrawString(box.text)
		}
		if wi == pos.Word {
			fill.Src = image.NewUniform(c.opts.HighlightColor)
		} else {
			fill.Src = image.NewUniform(c.opts.TextColor)
		}
		fill.Dot = fixedPoint(box.x, box.y)
		fill.DrawString(box.text)
	}
}
