package render

import (
	"context"
	"errors"
	"testing"

	"github.com/andigenesis/brainrot-generator/internal/services"
	"github.com/andigenesis/brainrot-generator/internal/timing"
)

func TestHoldTailExtendsLastSpan(t *testing.T) {
	spans := []timing.WordSpan{
		{Text: "one", StartMS: 0, EndMS: 500},
		{Text: "two", StartMS: 500, EndMS: 1000},
	}
	out := holdTail(spans, 1500, 3000)
	if out[1].EndMS != 2500 {
		t.Fatalf("last span end = %d, want 2500", out[1].EndMS)
	}
	if out[0].EndMS != 500 {
		t.Fatalf("earlier span changed: end = %d", out[0].EndMS)
	}
}

func TestHoldTailCappedAtAudioEnd(t *testing.T) {
	spans := []timing.WordSpan{{Text: "word", StartMS: 0, EndMS: 9500}}
	out := holdTail(spans, 1500, 10000)
	if out[0].EndMS != 10000 {
		t.Fatalf("last span end = %d, want 10000", out[0].EndMS)
	}
}

func TestHoldTailNoopWhenDisabled(t *testing.T) {
	spans := []timing.WordSpan{{Text: "word", StartMS: 0, EndMS: 800}}
	out := holdTail(spans, 0, 10000)
	if out[0].EndMS != 800 {
		t.Fatalf("span end = %d, want 800", out[0].EndMS)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	opts.applyDefaults()
	if opts.CaptionBlockSize != 6 {
		t.Fatalf("block size = %d, want 6", opts.CaptionBlockSize)
	}
	if opts.Width != 1080 || opts.Height != 1920 {
		t.Fatalf("resolution = %dx%d, want 1080x1920", opts.Width, opts.Height)
	}
	if opts.FPS != 24 {
		t.Fatalf("fps = %d, want 24", opts.FPS)
	}
	if opts.Workers < 1 {
		t.Fatalf("workers = %d", opts.Workers)
	}
	if opts.Preset != "medium" || opts.CRF != 23 {
		t.Fatalf("encode settings = %s/%d", opts.Preset, opts.CRF)
	}
}

func TestRenderRejectsZeroDuration(t *testing.T) {
	r := New("ffmpeg", "ffprobe", nil)
	_, err := r.Render(context.Background(), Job{AudioDurationMS: 0}, Options{}, nil)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRenderInvalidTimingFailsBeforeExternalTools(t *testing.T) {
	r := New("ffmpeg", "ffprobe", nil)
	job := Job{
		AudioDurationMS: 1000,
		Timing:          timing.Precise(nil),
		WorkDir:         t.TempDir(),
	}
	_, err := r.Render(context.Background(), job, Options{}, nil)
	if !errors.Is(err, timing.ErrTimingDataInvalid) {
		t.Fatalf("expected timing data error, got %v", err)
	}
}
