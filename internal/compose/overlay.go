package compose

import (
	"fmt"
	"image"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// OverlaySpan times a prerendered overlay image against the narration.
// The image fades in over FadeMS after StartMS and fades out over FadeMS
// before EndMS.
type OverlaySpan struct {
	ImagePath string
	StartMS   int64
	EndMS     int64
	FadeMS    int64
}

const (
	// overlayWidthRatio sizes overlay cards to 70% of the frame width.
	overlayWidthRatio = 0.7
	// overlayTopRatio places the overlay band below the frame's top edge,
	// clear of the caption band lower down.
	overlayTopRatio = 0.08
)

// overlay is a loaded span: the PNG decoded and prescaled to its on-frame
// size so workers only blend, never resample.
type overlay struct {
	span   OverlaySpan
	img    *image.RGBA
	origin image.Point
}

func loadOverlays(spans []OverlaySpan, width, height int) ([]overlay, error) {
	overlays := make([]overlay, 0, len(spans))
	for _, span := range spans {
		if span.EndMS <= span.StartMS {
			continue
		}
		img, err := loadOverlayImage(span.ImagePath, width)
		if err != nil {
			return nil, err
		}
		x := (width - img.Bounds().Dx()) / 2
		y := int(float64(height) * overlayTopRatio)
		overlays = append(overlays, overlay{span: span, img: img, origin: image.Pt(x, y)})
	}
	return overlays, nil
}

func loadOverlayImage(path string, frameWidth int) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open overlay %s: %w", path, err)
	}
	defer f.Close()

	src, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode overlay %s: %w", path, err)
	}

	bounds := src.Bounds()
	targetW := int(float64(frameWidth) * overlayWidthRatio)
	targetH := bounds.Dy() * targetW / bounds.Dx()
	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst, nil
}

// alphaAt reports the overlay's blend alpha at a timestamp: 0 outside the
// span, 255 in the middle, ramping linearly across the fade windows.
func (o overlay) alphaAt(tMS int64) uint8 {
	if tMS < o.span.StartMS || tMS >= o.span.EndMS {
		return 0
	}
	if o.span.FadeMS <= 0 {
		return 255
	}
	if in := tMS - o.span.StartMS; in < o.span.FadeMS {
		return uint8(255 * in / o.span.FadeMS)
	}
	if out := o.span.EndMS - tMS; out < o.span.FadeMS {
		return uint8(255 * out / o.span.FadeMS)
	}
	return 255
}
