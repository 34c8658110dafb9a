package narration

import (
	"context"
	"os"
	"strings"

	"log/slog"

	"github.com/andigenesis/brainrot-generator/internal/config"
	"github.com/andigenesis/brainrot-generator/internal/language"
	"github.com/andigenesis/brainrot-generator/internal/logging"
	"github.com/andigenesis/brainrot-generator/internal/media/ffprobe"
	"github.com/andigenesis/brainrot-generator/internal/queue"
	"github.com/andigenesis/brainrot-generator/internal/services"
	"github.com/andigenesis/brainrot-generator/internal/services/edgetts"
	"github.com/andigenesis/brainrot-generator/internal/stage"
	"github.com/andigenesis/brainrot-generator/internal/textutil"
	"github.com/andigenesis/brainrot-generator/internal/timing"
)

// Synthesizer produces narration audio and word boundary events.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice, outDir string) (edgetts.Result, error)
	HealthCheck(ctx context.Context) error
	Voice() string
}

// Prober reports a media file's duration in milliseconds.
type Prober func(ctx context.Context, path string) (int64, error)

// Narrator synthesizes narration audio and normalizes word timing for the
// caption planner. Engines that report no word boundaries degrade to the
// approximate character-weighted split instead of failing the job.
type Narrator struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	tts    Synthesizer
	probe  Prober
}

// NewNarrator builds the narration stage handler with the configured engine.
func NewNarrator(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Narrator {
	tts := edgetts.NewService(edgetts.Config{
		Binary:  cfg.TTSBinary(),
		Voice:   cfg.TTS.Voice,
		Rate:    cfg.TTS.Rate,
		Timeout: cfg.TTS.TimeoutSeconds,
	})
	probe := func(ctx context.Context, path string) (int64, error) {
		info, err := ffprobe.Inspect(ctx, cfg.FFprobeBinary(), path)
		if err != nil {
			return 0, err
		}
		return info.DurationMS(), nil
	}
	return NewNarratorWithEngine(cfg, store, logger, tts, probe)
}

// NewNarratorWithEngine allows injecting the engine and prober (used in tests).
func NewNarratorWithEngine(cfg *config.Config, store *queue.Store, logger *slog.Logger, tts Synthesizer, probe Prober) *Narrator {
	if logger != nil {
		logger = logger.With(logging.String("component", "narration"))
	}
	return &Narrator{cfg: cfg, store: store, logger: logger, tts: tts, probe: probe}
}

func (n *Narrator) Prepare(ctx context.Context, job *queue.Job) error {
	job.InitProgress("Narrating", "Preparing narration synthesis")
	return nil
}

func (n *Narrator) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, n.logger)

	text := strings.TrimSpace(job.NarrationText)
	if text == "" {
		return services.Wrap(services.ErrValidation, "narrating", "validate inputs", "Narration text is empty", nil)
	}

	if strings.TrimSpace(job.Language) == "" {
		job.Language = language.DetectISO2(text)
	}
	voice := strings.TrimSpace(job.Voice)
	if voice == "" {
		voice = strings.TrimSpace(n.cfg.TTS.Voice)
	}
	if voice == "" {
		voice = language.VoiceFor(job.Language)
	}
	job.Voice = voice

	workDir := job.StagingRoot(n.cfg.Paths.StagingDir)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "narrating", "ensure staging dir", "Failed to create staging directory", err)
	}

	result, err := n.tts.Synthesize(ctx, text, voice, workDir)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "narrating", "synthesize", "Narration synthesis failed", err)
	}
	job.NarrationFile = result.AudioPath

	durationMS, err := n.probe(ctx, result.AudioPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "narrating", "probe audio", "Failed to probe narration duration", err)
	}
	if durationMS <= 0 {
		return services.Wrap(services.ErrExternalTool, "narrating", "probe audio", "Narration audio reports zero duration", nil)
	}
	job.NarrationMS = durationMS

	src := timing.Precise(result.Events)
	if len(result.Events) == 0 {
		logger.Warn("no word boundaries reported, using approximate timing",
			logging.String("voice", voice),
		)
		src = timing.ApproximateFromDuration(durationMS, textutil.Words(text))
	}
	normalized, err := timing.Normalize(src)
	if err != nil {
		return services.Wrap(services.ErrValidation, "narrating", "normalize timing", "Word timing invalid", err)
	}
	encoded, err := timing.EncodeSpans(normalized.Spans)
	if err != nil {
		return services.Wrap(services.ErrTransient, "narrating", "encode timing", "Failed to persist word timing", err)
	}
	job.TimingJSON = encoded
	job.ApproximateTiming = normalized.Approximate

	job.SetProgress("Narrating", "Narration synthesized", 30)
	logger.Info("narration synthesized",
		logging.String("voice", voice),
		logging.Int64("duration_ms", durationMS),
		logging.Int("words", len(normalized.Spans)),
		logging.Bool("approximate_timing", normalized.Approximate),
	)
	return nil
}

// HealthCheck verifies the narration engine binary is resolvable.
func (n *Narrator) HealthCheck(ctx context.Context) stage.Health {
	const name = "narration"
	if n.tts == nil {
		return stage.Unhealthy(name, "narration engine unavailable")
	}
	if err := n.tts.HealthCheck(ctx); err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	return stage.Healthy(name)
}
