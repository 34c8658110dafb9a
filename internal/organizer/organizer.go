package organizer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"log/slog"

	"github.com/andigenesis/brainrot-generator/internal/captions"
	"github.com/andigenesis/brainrot-generator/internal/config"
	"github.com/andigenesis/brainrot-generator/internal/fileutil"
	"github.com/andigenesis/brainrot-generator/internal/logging"
	"github.com/andigenesis/brainrot-generator/internal/notifications"
	"github.com/andigenesis/brainrot-generator/internal/queue"
	"github.com/andigenesis/brainrot-generator/internal/services"
	"github.com/andigenesis/brainrot-generator/internal/stage"
	"github.com/andigenesis/brainrot-generator/internal/textutil"
	"github.com/andigenesis/brainrot-generator/internal/timing"
)

// Organizer moves muxed videos into the final library location.
type Organizer struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	notifier notifications.Service
}

// NewOrganizer constructs the organizer stage handler using default dependencies.
func NewOrganizer(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Organizer {
	return NewOrganizerWithNotifier(cfg, store, logger, notifications.NewService(cfg))
}

// NewOrganizerWithNotifier allows injecting the notifier (used in tests).
func NewOrganizerWithNotifier(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Organizer {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "organizer"))
	}
	return &Organizer{store: store, cfg: cfg, logger: stageLogger, notifier: notifier}
}

func (o *Organizer) Prepare(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, o.logger)
	job.InitProgress("Organizing", "Preparing library move")
	logger.Info(
		"starting organization preparation",
		logging.String("title", strings.TrimSpace(job.Title)),
		logging.String("muxed_file", strings.TrimSpace(job.FinalFile)),
	)
	return nil
}

func (o *Organizer) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, o.logger)
	source := strings.TrimSpace(job.FinalFile)
	if source == "" {
		return services.Wrap(
			services.ErrValidation,
			"organizing",
			"validate inputs",
			"No muxed file present for organization; run the mux stage before organizing",
			nil,
		)
	}
	if _, err := os.Stat(source); err != nil {
		return services.Wrap(services.ErrValidation, "organizing", "stat muxed file", "Muxed file missing from staging", err)
	}

	libraryDir := strings.TrimSpace(o.cfg.Paths.LibraryDir)
	if libraryDir == "" {
		return services.Wrap(
			services.ErrConfiguration,
			"organizing",
			"resolve library dir",
			"Library directory not configured; set library_dir in config.toml",
			nil,
		)
	}
	if err := os.MkdirAll(libraryDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "organizing", "ensure library dir", "Failed to create library directory", err)
	}

	o.updateProgress(ctx, job, "Moving video into library", 40)
	target, err := o.nextLibraryPath(libraryDir, o.libraryBaseName(job), filepath.Ext(source))
	if err != nil {
		return services.Wrap(services.ErrTransient, "organizing", "allocate library filename", "Unable to allocate library filename", err)
	}
	if err := fileutil.MoveFile(source, target); err != nil {
		return services.Wrap(services.ErrTransient, "organizing", "move to library", "Failed to move video into library", err)
	}
	job.FinalFile = target
	logger.Info("library move completed", logging.String("final_file", target))

	o.updateProgress(ctx, job, "Writing caption sidecar", 80)
	if err := o.writeSidecar(job, target); err != nil {
		// The video itself landed; a bad sidecar is not worth failing the job.
		logger.Warn("caption sidecar write failed", logging.Error(err))
	}

	o.updateProgress(ctx, job, "Organization completed", 100)
	job.ProgressMessage = fmt.Sprintf("Available in library: %s", filepath.Base(target))

	if o.notifier != nil {
		if err := o.notifier.Publish(ctx, notifications.EventVideoCompleted, notifications.Payload{
			"title":     strings.TrimSpace(job.Title),
			"finalFile": filepath.Base(target),
		}); err != nil {
			logger.Warn("completion notifier failed", logging.Error(err))
		}
	}
	return nil
}

// libraryBaseName derives the filename stem from the job title, falling back
// to the narration text and finally the job UUID.
func (o *Organizer) libraryBaseName(job *queue.Job) string {
	title := strings.TrimSpace(job.Title)
	if title == "" {
		title = textutil.DeriveTitle(job.NarrationText)
	}
	base := textutil.SanitizeFileName(title)
	if base == "" {
		base = strings.ToLower(strings.TrimSpace(job.UUID))
	}
	if base == "" {
		base = fmt.Sprintf("job-%d", job.ID)
	}
	return base
}

func (o *Organizer) nextLibraryPath(dir, base, ext string) (string, error) {
	const maxAttempts = 10000
	if ext == "" {
		ext = ".mp4"
	}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		name := base + ext
		if attempt > 0 {
			name = fmt.Sprintf("%s-%d%s", base, attempt+1, ext)
		}
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return candidate, nil
			}
			return "", err
		}
	}
	return "", fmt.Errorf("exhausted library filename slots in %s", dir)
}

// writeSidecar renders the caption timeline as an SRT file next to the video.
func (o *Organizer) writeSidecar(job *queue.Job, videoPath string) error {
	spans, err := timing.DecodeSpans(job.TimingJSON)
	if err != nil {
		return err
	}
	if len(spans) == 0 {
		return nil
	}
	blockSize := o.cfg.Captions.BlockSize
	if blockSize <= 0 {
		blockSize = 6
	}
	timeline, err := captions.Build(spans, blockSize)
	if err != nil {
		return err
	}
	srtPath := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".srt"
	out, err := os.Create(srtPath)
	if err != nil {
		return err
	}
	if err := timeline.WriteSRT(out); err != nil {
		_ = out.Close()
		_ = os.Remove(srtPath)
		return err
	}
	return out.Close()
}

// HealthCheck verifies organizer prerequisites.
func (o *Organizer) HealthCheck(ctx context.Context) stage.Health {
	const name = "organizer"
	if o.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(o.cfg.Paths.LibraryDir) == "" {
		return stage.Unhealthy(name, "library directory not configured")
	}
	return stage.Healthy(name)
}

func (o *Organizer) updateProgress(ctx context.Context, job *queue.Job, message string, percent float64) {
	logger := logging.WithContext(ctx, o.logger)
	copy := *job
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := o.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist organizer progress", logging.Error(err))
		return
	}
	*job = copy
}
