package render

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/andigenesis/brainrot-generator/internal/background"
	"github.com/andigenesis/brainrot-generator/internal/captions"
	"github.com/andigenesis/brainrot-generator/internal/compose"
	"github.com/andigenesis/brainrot-generator/internal/logging"
	"github.com/andigenesis/brainrot-generator/internal/media/ffmpeg"
	"github.com/andigenesis/brainrot-generator/internal/media/ffprobe"
	"github.com/andigenesis/brainrot-generator/internal/mux"
	"github.com/andigenesis/brainrot-generator/internal/services"
	"github.com/andigenesis/brainrot-generator/internal/timing"
)

// Options control one render run. Zero values fall back to the defaults
// below.
type Options struct {
	CaptionBlockSize int
	Width            int
	Height           int
	FPS              int
	Workers          int
	CRF              int
	Preset           string
	FontData         []byte
	FontSize         float64
	TextColor        color.RGBA
	HighlightColor   color.RGBA
	OverlaySpans     []compose.OverlaySpan
	BackgroundSeed   int64
	RequestedClip    string
	// TailHoldMS extends the final caption's display past its spoken end,
	// capped at the audio duration.
	TailHoldMS int64
}

func (o *Options) applyDefaults() {
	if o.CaptionBlockSize <= 0 {
		o.CaptionBlockSize = captions.DefaultBlockSize
	}
	if o.Width <= 0 {
		o.Width = 1080
	}
	if o.Height <= 0 {
		o.Height = 1920
	}
	if o.FPS <= 0 {
		o.FPS = 24
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.CRF <= 0 {
		o.CRF = 23
	}
	if o.Preset == "" {
		o.Preset = "medium"
	}
	if o.FontSize <= 0 {
		o.FontSize = 72
	}
	if o.TextColor == (color.RGBA{}) {
		o.TextColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	if o.HighlightColor == (color.RGBA{}) {
		o.HighlightColor = color.RGBA{R: 255, G: 210, B: 0, A: 255}
	}
	if o.TailHoldMS < 0 {
		o.TailHoldMS = 0
	}
}

// Job names the inputs of one render run. WorkDir receives intermediate
// files and must exist; OutPath is the final muxed video.
type Job struct {
	AudioPath       string
	AudioDurationMS int64
	Timing          timing.Source
	BackgroundPool  []string
	WorkDir         string
	OutPath         string
}

// Result reports what a completed run produced.
type Result struct {
	OutputPath  string
	Timeline    *captions.Timeline
	Plan        background.Plan
	Approximate bool
	Frames      int
}

// ProgressFunc receives percent (0-100) and a short stage message.
type ProgressFunc func(percent int, message string)

// Renderer runs the stage sequence. It holds no per-job state and is safe
// to share across jobs.
type Renderer struct {
	ffmpeg        *ffmpeg.Runner
	ffprobeBinary string
	logger        *slog.Logger
}

func New(ffmpegBinary, ffprobeBinary string, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		ffmpeg:        ffmpeg.NewRunner(ffmpegBinary, logger),
		ffprobeBinary: ffprobeBinary,
		logger:        logging.NewComponentLogger(logger, "render"),
	}
}

// Render runs timing normalization, caption windowing, background
// preparation, frame compositing, and the final mux. On any error or
// cancellation it removes whatever it wrote, including OutPath.
func (r *Renderer) Render(ctx context.Context, job Job, opts Options, progress ProgressFunc) (Result, error) {
	opts.applyDefaults()
	report := func(pct int, msg string) {
		if progress != nil {
			progress(pct, msg)
		}
	}
	if job.AudioDurationMS <= 0 {
		return Result{}, services.Wrap(services.ErrValidation, "render", "validate", "audio duration must be positive", nil)
	}

	result, err := r.run(ctx, job, opts, report)
	if err != nil {
		os.Remove(job.OutPath)
		return Result{}, err
	}
	report(100, "render complete")
	return result, nil
}

func (r *Renderer) run(ctx context.Context, job Job, opts Options, report ProgressFunc) (Result, error) {
	timingResult, err := timing.Normalize(job.Timing)
	if err != nil {
		return Result{}, services.Wrap(services.ErrValidation, "render", "normalize timing", "", err)
	}
	spans := holdTail(timingResult.Spans, opts.TailHoldMS, job.AudioDurationMS)
	report(10, "timing normalized")

	timeline, err := captions.Build(spans, opts.CaptionBlockSize)
	if err != nil {
		return Result{}, services.Wrap(services.ErrValidation, "render", "window captions", "", err)
	}
	report(20, "captions windowed")

	selector := background.NewSelector(job.BackgroundPool, opts.BackgroundSeed, r.probeDuration)
	plan, err := selector.Choose(ctx, job.AudioDurationMS, opts.RequestedClip)
	if err != nil {
		return Result{}, services.Wrap(services.ErrNotFound, "render", "select background", "", err)
	}
	report(30, "background selected")

	preparedPath := filepath.Join(job.WorkDir, "background.mp4")
	defer os.Remove(preparedPath)
	prepareArgs := ffmpeg.PrepareBackgroundArgs(plan, opts.Width, opts.Height, opts.FPS, preparedPath)
	if err := r.ffmpeg.Run(ctx, prepareArgs); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "render", "prepare background", "", err)
	}
	report(40, "background prepared")

	silentPath := filepath.Join(job.WorkDir, "frames.mp4")
	defer os.Remove(silentPath)
	frames, err := r.composeFrames(ctx, opts, timeline, job.AudioDurationMS, preparedPath, silentPath, func(done, total int) {
		// Compositing spans the 40-90 band of overall progress.
		report(40+done*50/total, fmt.Sprintf("composited %d/%d frames", done, total))
	})
	if err != nil {
		return Result{}, err
	}
	report(90, "frames composed")

	muxer := mux.New(r.ffmpeg, r.ffprobeBinary, r.logger)
	muxReq := mux.Request{
		VideoPath: silentPath,
		AudioPath: job.AudioPath,
		OutPath:   job.OutPath,
		FrameMS:   int64(1000 / opts.FPS),
	}
	if err := muxer.Run(ctx, muxReq); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "render", "mux", "", err)
	}
	report(95, "muxed")

	return Result{
		OutputPath:  job.OutPath,
		Timeline:    timeline,
		Plan:        plan,
		Approximate: timingResult.Approximate,
		Frames:      frames,
	}, nil
}

// composeFrames decodes the prepared background once, composites captions
// across the worker pool, and pipes ordered frames into the encoder.
func (r *Renderer) composeFrames(ctx context.Context, opts Options, timeline *captions.Timeline, totalMS int64, preparedPath, silentPath string, progress func(done, total int)) (int, error) {
	fnt, err := compose.ParseFont(opts.FontData)
	if err != nil {
		return 0, services.Wrap(services.ErrConfiguration, "render", "load font", "", err)
	}
	comp, err := compose.New(compose.Options{
		Width:          opts.Width,
		Height:         opts.Height,
		FPS:            opts.FPS,
		Font:           fnt,
		FontSize:       opts.FontSize,
		TextColor:      opts.TextColor,
		HighlightColor: opts.HighlightColor,
		Workers:        opts.Workers,
	}, timeline, opts.OverlaySpans, totalMS)
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "render", "compose", "", err)
	}

	decProc, decOut, err := r.ffmpeg.StartReader(ctx, ffmpeg.DecodeFramesArgs(preparedPath, opts.Width, opts.Height, opts.FPS))
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "render", "compose", "start background decode", err)
	}
	encProc, encIn, err := r.ffmpeg.StartWriter(ctx, ffmpeg.EncodeFramesArgs(opts.Width, opts.Height, opts.FPS, opts.CRF, opts.Preset, silentPath))
	if err != nil {
		decProc.Kill()
		return 0, services.Wrap(services.ErrExternalTool, "render", "compose", "start frame encode", err)
	}

	renderErr := comp.Render(ctx, decOut, encIn, progress)

	encIn.Close()
	decOut.Close()
	decProc.Kill()

	if renderErr != nil {
		encProc.Kill()
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, services.Wrap(services.ErrExternalTool, "render", "compose", "", renderErr)
	}
	if err := encProc.Wait(); err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "render", "compose",
			"frame encode failed", fmt.Errorf("%w: %v", compose.ErrEncodeFailure, err))
	}
	return comp.TotalFrames(), nil
}

// holdTail extends the final span's display window so the last caption
// does not vanish the instant its word ends.
func holdTail(spans []timing.WordSpan, holdMS, audioMS int64) []timing.WordSpan {
	if len(spans) == 0 || holdMS <= 0 {
		return spans
	}
	last := &spans[len(spans)-1]
	end := last.EndMS + holdMS
	if end > audioMS {
		end = audioMS
	}
	if end > last.EndMS {
		last.EndMS = end
	}
	return spans
}

func (r *Renderer) probeDuration(ctx context.Context, path string) (int64, error) {
	probe, err := ffprobe.Inspect(ctx, r.ffprobeBinary, path)
	if err != nil {
		return 0, err
	}
	return probe.DurationMS(), nil
}
