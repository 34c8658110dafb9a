package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/andigenesis/brainrot-generator/internal/background"
	"github.com/andigenesis/brainrot-generator/internal/captions"
	"github.com/andigenesis/brainrot-generator/internal/config"
	"github.com/andigenesis/brainrot-generator/internal/logging"
	"github.com/andigenesis/brainrot-generator/internal/media/ffmpeg"
	"github.com/andigenesis/brainrot-generator/internal/mux"
	"github.com/andigenesis/brainrot-generator/internal/overlays"
	"github.com/andigenesis/brainrot-generator/internal/queue"
	"github.com/andigenesis/brainrot-generator/internal/services"
	"github.com/andigenesis/brainrot-generator/internal/stage"
	"github.com/andigenesis/brainrot-generator/internal/timing"
)

// progressPersistInterval throttles how often long stages flush progress
// rows to the queue database.
const progressPersistInterval = 2 * time.Second

// ComposeStage renders caption frames over the prepared background and
// encodes the silent video. It is the pipeline's heavy stage; progress maps
// to the 50-90 band.
type ComposeStage struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	renderer *Renderer
}

// NewComposeStage builds the compose stage handler.
func NewComposeStage(cfg *config.Config, store *queue.Store, logger *slog.Logger) *ComposeStage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ComposeStage{
		cfg:      cfg,
		store:    store,
		logger:   logger.With(logging.String("component", "compose-stage")),
		renderer: New(cfg.FFmpegBinary(), cfg.FFprobeBinary(), logger),
	}
}

func (c *ComposeStage) Prepare(ctx context.Context, job *queue.Job) error {
	job.InitProgress("Composing", "Preparing frame composition")
	return nil
}

func (c *ComposeStage) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, c.logger)

	spans, err := timing.DecodeSpans(job.TimingJSON)
	if err != nil || len(spans) == 0 {
		return services.Wrap(services.ErrValidation, "composing", "decode timing", "Stored word timing missing or unreadable", err)
	}
	if strings.TrimSpace(job.BackgroundClip) == "" {
		return services.Wrap(services.ErrValidation, "composing", "validate inputs", "No background clip selected; run planning before composing", nil)
	}
	if job.NarrationMS <= 0 {
		return services.Wrap(services.ErrValidation, "composing", "validate inputs", "Narration duration missing", nil)
	}

	opts, err := c.options(job)
	if err != nil {
		return err
	}

	spans = holdTail(spans, opts.TailHoldMS, job.NarrationMS)
	timeline, err := captions.Build(spans, opts.CaptionBlockSize)
	if err != nil {
		return services.Wrap(services.ErrValidation, "composing", "window captions", "", err)
	}

	workDir := job.StagingRoot(c.cfg.Paths.StagingDir)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "composing", "ensure staging dir", "Failed to create staging directory", err)
	}

	selector := background.NewSelector([]string{job.BackgroundClip}, opts.BackgroundSeed, c.renderer.probeDuration)
	plan, err := selector.Choose(ctx, job.NarrationMS, job.BackgroundClip)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "composing", "plan background", "Selected background clip unusable", err)
	}

	preparedPath := filepath.Join(workDir, "background.mp4")
	defer os.Remove(preparedPath)
	prepareArgs := ffmpeg.PrepareBackgroundArgs(plan, opts.Width, opts.Height, opts.FPS, preparedPath)
	if err := c.renderer.ffmpeg.Run(ctx, prepareArgs); err != nil {
		return services.Wrap(services.ErrExternalTool, "composing", "prepare background", "", err)
	}
	c.persistProgress(ctx, job, "Background prepared", 55)

	silentPath := filepath.Join(workDir, "composed.mp4")
	throttle := newProgressThrottle()
	frames, err := c.renderer.composeFrames(ctx, opts, timeline, job.NarrationMS, preparedPath, silentPath, func(done, total int) {
		// Frame rendering spans the 55-90 band of overall progress.
		percent := 55 + float64(done*35/total)
		if throttle.allow() {
			c.persistProgress(ctx, job, fmt.Sprintf("Composited %d/%d frames", done, total), percent)
		} else {
			job.SetProgress("Composing", fmt.Sprintf("Composited %d/%d frames", done, total), percent)
		}
	})
	if err != nil {
		os.Remove(silentPath)
		return err
	}

	job.ComposedFile = silentPath
	job.SetProgress("Composing", "Frames composed", 90)
	logger.Info("composition completed",
		logging.Int("frames", frames),
		logging.String("composed_file", silentPath),
	)
	return nil
}

func (c *ComposeStage) options(job *queue.Job) (Options, error) {
	textColor, err := config.ParseHexColor(c.cfg.Captions.TextColor)
	if err != nil {
		return Options{}, services.Wrap(services.ErrConfiguration, "composing", "parse text color", "", err)
	}
	highlight, err := config.ParseHexColor(c.cfg.Captions.HighlightColor)
	if err != nil {
		return Options{}, services.Wrap(services.ErrConfiguration, "composing", "parse highlight color", "", err)
	}
	overlaySpans, err := overlays.DecodeSpans(job.OverlaysJSON)
	if err != nil {
		return Options{}, services.Wrap(services.ErrValidation, "composing", "decode overlays", "Stored overlay plan is unreadable", err)
	}
	opts := Options{
		CaptionBlockSize: c.cfg.Captions.BlockSize,
		Width:            c.cfg.Render.Width,
		Height:           c.cfg.Render.Height,
		FPS:              c.cfg.Render.FPS,
		Workers:          c.cfg.Render.Workers,
		CRF:              c.cfg.Render.CRF,
		Preset:           c.cfg.Render.Preset,
		FontSize:         c.cfg.Captions.FontSize,
		TextColor:        textColor,
		HighlightColor:   highlight,
		OverlaySpans:     overlaySpans,
		BackgroundSeed:   c.cfg.Background.Seed,
		TailHoldMS:       int64(c.cfg.Captions.TailHoldMS),
	}
	opts.applyDefaults()
	return opts, nil
}

func (c *ComposeStage) persistProgress(ctx context.Context, job *queue.Job, message string, percent float64) {
	job.SetProgress("Composing", message, percent)
	snapshot := *job
	if err := c.store.Update(ctx, &snapshot); err != nil {
		logging.WithContext(ctx, c.logger).Warn("failed to persist compose progress", logging.Error(err))
	}
}

// HealthCheck verifies the encode toolchain is present.
func (c *ComposeStage) HealthCheck(ctx context.Context) stage.Health {
	const name = "compose"
	if _, err := exec.LookPath(c.cfg.FFmpegBinary()); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("ffmpeg not found: %v", err))
	}
	if _, err := exec.LookPath(c.cfg.FFprobeBinary()); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("ffprobe not found: %v", err))
	}
	return stage.Healthy(name)
}

// MuxStage combines the silent composed video with the narration audio.
// The audio duration is authoritative for the final container.
type MuxStage struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	muxer  *mux.Muxer
}

// NewMuxStage builds the mux stage handler.
func NewMuxStage(cfg *config.Config, store *queue.Store, logger *slog.Logger) *MuxStage {
	if logger == nil {
		logger = logging.NewNop()
	}
	runner := ffmpeg.NewRunner(cfg.FFmpegBinary(), logger)
	return &MuxStage{
		cfg:    cfg,
		store:  store,
		logger: logger.With(logging.String("component", "mux-stage")),
		muxer:  mux.New(runner, cfg.FFprobeBinary(), logger),
	}
}

func (m *MuxStage) Prepare(ctx context.Context, job *queue.Job) error {
	job.InitProgress("Muxing", "Preparing audio mux")
	return nil
}

func (m *MuxStage) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, m.logger)

	if strings.TrimSpace(job.ComposedFile) == "" {
		return services.Wrap(services.ErrValidation, "muxing", "validate inputs", "No composed video present; run composing before muxing", nil)
	}
	if strings.TrimSpace(job.NarrationFile) == "" {
		return services.Wrap(services.ErrValidation, "muxing", "validate inputs", "No narration audio present; run narration before muxing", nil)
	}

	fps := m.cfg.Render.FPS
	if fps <= 0 {
		fps = 24
	}
	outPath := filepath.Join(job.StagingRoot(m.cfg.Paths.StagingDir), "final.mp4")
	req := mux.Request{
		VideoPath: job.ComposedFile,
		AudioPath: job.NarrationFile,
		OutPath:   outPath,
		FrameMS:   int64(1000 / fps),
	}
	if err := m.muxer.Run(ctx, req); err != nil {
		return services.Wrap(services.ErrExternalTool, "muxing", "mux", "", err)
	}

	job.FinalFile = outPath
	if err := os.Remove(job.ComposedFile); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to remove composed intermediate", logging.Error(err))
	}
	job.ComposedFile = ""
	job.SetProgress("Muxing", "Audio muxed", 95)
	logger.Info("mux completed", logging.String("final_file", outPath))
	return nil
}

// HealthCheck verifies the mux toolchain is present.
func (m *MuxStage) HealthCheck(ctx context.Context) stage.Health {
	const name = "mux"
	if _, err := exec.LookPath(m.cfg.FFmpegBinary()); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("ffmpeg not found: %v", err))
	}
	if _, err := exec.LookPath(m.cfg.FFprobeBinary()); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("ffprobe not found: %v", err))
	}
	return stage.Healthy(name)
}

type progressThrottle struct {
	mu   sync.Mutex
	last time.Time
}

func newProgressThrottle() *progressThrottle {
	return &progressThrottle{}
}

func (p *progressThrottle) allow() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	if now.Sub(p.last) < progressPersistInterval {
		return false
	}
	p.last = now
	return true
}
