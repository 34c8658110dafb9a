package transform

import (
	"context"
	"strings"

	"log/slog"

	"github.com/andigenesis/brainrot-generator/internal/config"
	"github.com/andigenesis/brainrot-generator/internal/logging"
	"github.com/andigenesis/brainrot-generator/internal/queue"
	"github.com/andigenesis/brainrot-generator/internal/services"
	"github.com/andigenesis/brainrot-generator/internal/services/ollama"
	"github.com/andigenesis/brainrot-generator/internal/stage"
	"github.com/andigenesis/brainrot-generator/internal/textutil"
)

// Rewriter produces a short-form rendition of narration text.
type Rewriter interface {
	RewriteNarration(ctx context.Context, text string) (string, error)
	HealthCheck(ctx context.Context) error
}

// Transformer optionally rewrites narration text through a local LLM before
// synthesis. When the feature is disabled the stage passes jobs through
// untouched so the pipeline shape stays constant.
type Transformer struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	rewriter Rewriter
}

// NewTransformer builds the transform stage handler. The Ollama client is
// only constructed when the feature is enabled.
func NewTransformer(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Transformer {
	var rewriter Rewriter
	if cfg.Transform.Enabled {
		rewriter = ollama.NewClient(ollama.Config{
			BaseURL:        cfg.Transform.BaseURL,
			Model:          cfg.Transform.Model,
			TimeoutSeconds: cfg.Transform.TimeoutSeconds,
		})
	}
	return NewTransformerWithRewriter(cfg, store, logger, rewriter)
}

// NewTransformerWithRewriter allows injecting the rewriter (used in tests).
func NewTransformerWithRewriter(cfg *config.Config, store *queue.Store, logger *slog.Logger, rewriter Rewriter) *Transformer {
	if logger != nil {
		logger = logger.With(logging.String("component", "transform"))
	}
	return &Transformer{cfg: cfg, store: store, logger: logger, rewriter: rewriter}
}

func (t *Transformer) Prepare(ctx context.Context, job *queue.Job) error {
	job.InitProgress("Transforming", "Preparing narration text")
	return nil
}

func (t *Transformer) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, t.logger)

	narration := strings.TrimSpace(job.NarrationText)
	if narration == "" {
		return services.Wrap(services.ErrValidation, "transform", "validate inputs", "Narration text is empty", nil)
	}

	if strings.TrimSpace(job.Title) == "" {
		job.Title = textutil.DeriveTitle(narration)
	}

	if t.rewriter == nil {
		job.TransformApplied = false
		job.SetProgress("Transforming", "Transform disabled, narration unchanged", 10)
		return nil
	}

	rewritten, err := t.rewriter.RewriteNarration(ctx, narration)
	if err != nil {
		// The rewrite is an enhancement; a dead LLM must not strand the job.
		logger.Warn("narration rewrite failed, keeping original text", logging.Error(err))
		job.TransformApplied = false
		job.SetProgress("Transforming", "Rewrite unavailable, narration unchanged", 10)
		return nil
	}
	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		logger.Warn("narration rewrite returned empty text, keeping original")
		job.TransformApplied = false
		job.SetProgress("Transforming", "Rewrite empty, narration unchanged", 10)
		return nil
	}

	job.NarrationText = rewritten
	job.TransformApplied = true
	job.SetProgress("Transforming", "Narration rewritten", 10)
	logger.Info("narration rewritten",
		logging.Int("original_chars", len(narration)),
		logging.Int("rewritten_chars", len(rewritten)),
	)
	return nil
}

// HealthCheck reports readiness. A disabled transform is always healthy.
func (t *Transformer) HealthCheck(ctx context.Context) stage.Health {
	const name = "transform"
	if t.rewriter == nil {
		return stage.Healthy(name)
	}
	if err := t.rewriter.HealthCheck(ctx); err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	return stage.Healthy(name)
}
