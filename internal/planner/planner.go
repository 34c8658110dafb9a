package planner

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"log/slog"

	"github.com/andigenesis/brainrot-generator/internal/background"
	"github.com/andigenesis/brainrot-generator/internal/captions"
	"github.com/andigenesis/brainrot-generator/internal/compose"
	"github.com/andigenesis/brainrot-generator/internal/config"
	"github.com/andigenesis/brainrot-generator/internal/logging"
	"github.com/andigenesis/brainrot-generator/internal/media/ffprobe"
	"github.com/andigenesis/brainrot-generator/internal/overlays"
	"github.com/andigenesis/brainrot-generator/internal/queue"
	"github.com/andigenesis/brainrot-generator/internal/services"
	"github.com/andigenesis/brainrot-generator/internal/services/ollama"
	"github.com/andigenesis/brainrot-generator/internal/stage"
	"github.com/andigenesis/brainrot-generator/internal/timing"
)

// DiagramGenerator produces mermaid diagram sources for a narration.
type DiagramGenerator interface {
	GenerateDiagrams(ctx context.Context, text string) ([]ollama.Diagram, error)
}

// OverlayRenderer turns diagram sources into timed overlay images.
type OverlayRenderer interface {
	Render(ctx context.Context, diagrams []ollama.Diagram, totalMS int64, outDir string) ([]compose.OverlaySpan, error)
}

// Planner validates caption windowing, picks the background clip, and
// optionally generates timed diagram overlays. It writes only queue state;
// heavy rendering happens in the compose stage.
type Planner struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	probe    background.ProbeFunc
	diagrams DiagramGenerator
	renderer OverlayRenderer
}

// NewPlanner builds the planning stage handler with default dependencies.
func NewPlanner(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Planner {
	probe := func(ctx context.Context, path string) (int64, error) {
		info, err := ffprobe.Inspect(ctx, cfg.FFprobeBinary(), path)
		if err != nil {
			return 0, err
		}
		return info.DurationMS(), nil
	}
	var diagrams DiagramGenerator
	var renderer OverlayRenderer
	if cfg.Overlays.Enabled {
		diagrams = ollama.NewClient(ollama.Config{
			BaseURL:        cfg.Transform.BaseURL,
			Model:          cfg.Overlays.Model,
			TimeoutSeconds: cfg.Transform.TimeoutSeconds,
		})
		renderer = overlays.NewRenderer(cfg.OverlayRendererBinary())
	}
	return NewPlannerWithDependencies(cfg, store, logger, probe, diagrams, renderer)
}

// NewPlannerWithDependencies allows injecting collaborators (used in tests).
func NewPlannerWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, probe background.ProbeFunc, diagrams DiagramGenerator, renderer OverlayRenderer) *Planner {
	if logger != nil {
		logger = logger.With(logging.String("component", "planner"))
	}
	return &Planner{cfg: cfg, store: store, logger: logger, probe: probe, diagrams: diagrams, renderer: renderer}
}

func (p *Planner) Prepare(ctx context.Context, job *queue.Job) error {
	job.InitProgress("Planning", "Preparing render plan")
	return nil
}

func (p *Planner) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, p.logger)

	spans, err := timing.DecodeSpans(job.TimingJSON)
	if err != nil {
		return services.Wrap(services.ErrValidation, "planning", "decode timing", "Stored word timing is unreadable", err)
	}
	if len(spans) == 0 {
		return services.Wrap(services.ErrValidation, "planning", "validate inputs", "No word timing present; run narration before planning", nil)
	}
	if job.NarrationMS <= 0 {
		return services.Wrap(services.ErrValidation, "planning", "validate inputs", "Narration duration missing", nil)
	}

	blockSize := p.cfg.Captions.BlockSize
	timeline, err := captions.Build(spans, blockSize)
	if err != nil {
		return services.Wrap(services.ErrValidation, "planning", "window captions", "Caption windowing failed", err)
	}

	if err := p.planOverlays(ctx, job, logger); err != nil {
		return err
	}
	job.SetProgress("Planning", "Overlays planned", 40)

	pool, err := background.ListPool(p.cfg.BackgroundPoolDir())
	if err != nil {
		return services.Wrap(services.ErrNotFound, "planning", "list background pool", "Background pool unavailable", err)
	}
	selector := background.NewSelector(pool, p.cfg.Background.Seed, p.probe)
	plan, err := selector.Choose(ctx, job.NarrationMS, p.cfg.Background.Clip)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "planning", "select background", "Background selection failed", err)
	}
	job.BackgroundClip = plan.Clip

	job.SetProgress("Planning", "Render plan ready", 50)
	logger.Info("render plan ready",
		logging.Int("caption_blocks", timeline.Len()),
		logging.String("background_clip", filepath.Base(plan.Clip)),
		logging.Bool("looped", plan.Looped()),
	)
	return nil
}

// planOverlays generates diagram overlays when the feature is enabled.
// Overlay failures degrade to a plain render rather than failing the job.
func (p *Planner) planOverlays(ctx context.Context, job *queue.Job, logger *slog.Logger) error {
	job.OverlaysJSON = ""
	if p.diagrams == nil || p.renderer == nil {
		return nil
	}

	diagrams, err := p.diagrams.GenerateDiagrams(ctx, job.NarrationText)
	if err != nil {
		logger.Warn("diagram generation failed, rendering without overlays", logging.Error(err))
		return nil
	}
	if len(diagrams) == 0 {
		return nil
	}

	outDir := filepath.Join(job.StagingRoot(p.cfg.Paths.StagingDir), "overlays")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "planning", "ensure overlay dir", "Failed to create overlay directory", err)
	}
	spans, err := p.renderer.Render(ctx, diagrams, job.NarrationMS, outDir)
	if err != nil {
		logger.Warn("overlay rendering failed, rendering without overlays", logging.Error(err))
		return nil
	}
	encoded, err := overlays.EncodeSpans(spans)
	if err != nil {
		return services.Wrap(services.ErrTransient, "planning", "encode overlays", "Failed to persist overlay plan", err)
	}
	job.OverlaysJSON = encoded
	logger.Info("overlays planned", logging.Int("count", len(spans)))
	return nil
}

// HealthCheck verifies the background pool is usable.
func (p *Planner) HealthCheck(ctx context.Context) stage.Health {
	const name = "planner"
	if p.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	poolDir := strings.TrimSpace(p.cfg.BackgroundPoolDir())
	if poolDir == "" {
		return stage.Unhealthy(name, "background pool not configured")
	}
	pool, err := background.ListPool(poolDir)
	if err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	if len(pool) == 0 {
		return stage.Unhealthy(name, "background pool is empty")
	}
	return stage.Healthy(name)
}
