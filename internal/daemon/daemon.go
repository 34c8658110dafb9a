package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"github.com/andigenesis/brainrot-generator/internal/config"
	"github.com/andigenesis/brainrot-generator/internal/deps"
	"github.com/andigenesis/brainrot-generator/internal/logging"
	"github.com/andigenesis/brainrot-generator/internal/notifications"
	"github.com/andigenesis/brainrot-generator/internal/queue"
	"github.com/andigenesis/brainrot-generator/internal/textutil"
	"github.com/andigenesis/brainrot-generator/internal/workflow"
)

// Daemon coordinates the background processing services and enforces
// single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *queue.Store
	workflow *workflow.Manager
	notifier notifications.Service
	logPath  string
	logHub   *logging.StreamHub
	archive  *logging.EventArchive

	lockPath string
	lock     *flock.Flock

	api     *apiServer
	cleanup *cleanupScheduler

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Options carries the collaborators a daemon needs. Config, Store,
// Logger, and Workflow are required; the rest are optional surfaces.
type Options struct {
	Config     *config.Config
	Store      *queue.Store
	Logger     *slog.Logger
	Workflow   *workflow.Manager
	Notifier   notifications.Service
	LogPath    string
	LogHub     *logging.StreamHub
	LogArchive *logging.EventArchive
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	QueueDBPath  string
	LockFilePath string
	Workflow     workflow.StatusSummary
	Dependencies []deps.Status
}

// New constructs a daemon with initialized dependencies.
func New(opts Options) (*Daemon, error) {
	if opts.Config == nil || opts.Store == nil || opts.Logger == nil || opts.Workflow == nil {
		return nil, errors.New("daemon requires config, store, logger, and workflow manager")
	}

	notifier := opts.Notifier
	if notifier == nil {
		notifier = notifications.NewService(opts.Config)
	}
	logPath := strings.TrimSpace(opts.LogPath)
	if logPath == "" {
		logPath = filepath.Join(opts.Config.Paths.LogDir, "brainrot.log")
	}

	lockPath := filepath.Join(opts.Config.Paths.LogDir, "brainrotd.lock")
	d := &Daemon{
		cfg:      opts.Config,
		logger:   opts.Logger,
		store:    opts.Store,
		workflow: opts.Workflow,
		notifier: notifier,
		logPath:  logPath,
		logHub:   opts.LogHub,
		archive:  opts.LogArchive,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.cleanup = newCleanupScheduler(d)

	srv, err := newAPIServer(opts.Config, d, opts.Logger)
	if err != nil {
		return nil, err
	}
	d.api = srv
	return d, nil
}

// Start launches the workflow manager and acquires the daemon lock.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another generator daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.workflow.Start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start workflow: %w", err)
	}
	if d.api != nil {
		if err := d.api.start(d.ctx); err != nil {
			d.workflow.Stop()
			_ = d.lock.Unlock()
			d.cancel()
			d.ctx = nil
			d.cancel = nil
			return err
		}
	}
	d.cleanup.start()

	d.running.Store(true)
	d.logger.Info("daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.api != nil {
		d.api.stop()
	}
	d.cleanup.stop()

	if err := d.workflow.StopActiveJobs(context.Background()); err != nil {
		d.logger.Warn("failed to mark active jobs stopped", logging.Error(err))
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.workflow.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Generate enqueues narration text for rendering. An empty title is
// derived from the opening of the narration.
func (d *Daemon) Generate(ctx context.Context, title, text, voice string) (*queue.Job, error) {
	if d.store == nil {
		return nil, errors.New("queue store unavailable")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("narration text is required")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = textutil.DeriveTitle(text)
	}
	voice = strings.TrimSpace(voice)

	if dup, err := d.findDuplicate(ctx, text); err != nil {
		d.logger.Warn("duplicate narration scan failed", logging.Error(err))
	} else if dup != nil {
		return nil, fmt.Errorf("%w: queued job #%d (%s)", ErrDuplicateNarration, dup.ID, dup.Title)
	}

	job, err := d.store.NewJob(ctx, title, text, voice)
	if err != nil {
		return nil, fmt.Errorf("enqueue narration: %w", err)
	}
	d.logger.Info("narration queued",
		logging.Int64(logging.FieldJobID, job.ID),
		logging.String("title", job.Title),
		logging.Int("narration_chars", len(text)),
	)
	if err := d.notifier.Publish(ctx, notifications.EventJobAccepted, notifications.Payload{
		"job_id": strconv.FormatInt(job.ID, 10),
		"title":  job.Title,
	}); err != nil {
		d.logger.Warn("job accepted notification failed", logging.Error(err))
	}
	return job, nil
}

// duplicateNarrationThreshold is the cosine similarity above which a new
// narration is treated as a resubmission of a job still in the queue.
const duplicateNarrationThreshold = 0.9

// ErrDuplicateNarration rejects a submission whose narration near-matches a
// job that has not reached a terminal state yet.
var ErrDuplicateNarration = errors.New("narration duplicates a queued job")

// findDuplicate returns a non-terminal job whose narration is a near match
// for text, or nil when the submission is novel.
func (d *Daemon) findDuplicate(ctx context.Context, text string) (*queue.Job, error) {
	candidate := textutil.NewFingerprint(text)
	if candidate == nil {
		return nil, nil
	}
	jobs, err := d.store.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, job := range jobs {
		if queue.IsTerminal(job.Status) {
			continue
		}
		if candidate.Similarity(textutil.NewFingerprint(job.NarrationText)) >= duplicateNarrationThreshold {
			return job, nil
		}
	}
	return nil, nil
}

// ListQueue returns queue jobs filtered by optional statuses.
func (d *Daemon) ListQueue(ctx context.Context, statuses []queue.Status) ([]*queue.Job, error) {
	if d.store == nil {
		return nil, errors.New("queue store unavailable")
	}
	return d.store.List(ctx, statuses...)
}

// GetJob fetches a job by numeric id, or nil when absent.
func (d *Daemon) GetJob(ctx context.Context, id int64) (*queue.Job, error) {
	if d.store == nil {
		return nil, errors.New("queue store unavailable")
	}
	return d.store.GetByID(ctx, id)
}

// GetJobByUUID fetches a job by uuid, or nil when absent.
func (d *Daemon) GetJobByUUID(ctx context.Context, id string) (*queue.Job, error) {
	if d.store == nil {
		return nil, errors.New("queue store unavailable")
	}
	return d.store.GetByUUID(ctx, strings.ToLower(strings.TrimSpace(id)))
}

// CancelJobs requests cancellation of the given jobs. Jobs already in a
// terminal state are skipped. Processing jobs are flagged for the
// heartbeat monitor to interrupt; queued jobs are cancelled directly.
func (d *Daemon) CancelJobs(ctx context.Context, ids []int64) (int64, error) {
	if d.store == nil {
		return 0, errors.New("queue store unavailable")
	}
	var cancelled int64
	for _, id := range ids {
		job, err := d.store.GetByID(ctx, id)
		if err != nil {
			return cancelled, err
		}
		if job == nil || job.IsTerminal() {
			continue
		}
		if job.IsProcessing() {
			job.Status = queue.StatusCancelled
		} else {
			job.SetCancelled()
		}
		if err := d.store.Update(ctx, job); err != nil {
			return cancelled, err
		}
		cancelled++
		d.logger.Info("job cancellation requested", logging.Int64(logging.FieldJobID, id))
	}
	return cancelled, nil
}

// RemoveJob deletes a single job row and its staging directory.
func (d *Daemon) RemoveJob(ctx context.Context, id int64) (bool, error) {
	if d.store == nil {
		return false, errors.New("queue store unavailable")
	}
	job, err := d.store.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}
	removed, err := d.store.Remove(ctx, id)
	if err != nil || !removed {
		return removed, err
	}
	if root := job.StagingRoot(d.cfg.Paths.StagingDir); root != "" {
		if err := os.RemoveAll(root); err != nil {
			d.logger.Warn("failed to remove staging directory",
				logging.Int64(logging.FieldJobID, id),
				logging.Error(err),
			)
		}
	}
	return true, nil
}

// ClearQueue removes all queue jobs.
func (d *Daemon) ClearQueue(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("queue store unavailable")
	}
	return d.store.Clear(ctx)
}

// ClearCompleted removes only completed queue jobs.
func (d *Daemon) ClearCompleted(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("queue store unavailable")
	}
	return d.store.ClearCompleted(ctx)
}

// ClearFailed removes only failed queue jobs.
func (d *Daemon) ClearFailed(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("queue store unavailable")
	}
	return d.store.ClearFailed(ctx)
}

// ResetStuck transitions in-flight jobs back to their stage start for retry.
func (d *Daemon) ResetStuck(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("queue store unavailable")
	}
	return d.store.ResetStuckProcessing(ctx)
}

// RetryFailed resets failed jobs (optionally a subset) for another attempt.
func (d *Daemon) RetryFailed(ctx context.Context, ids []int64) (int64, error) {
	if d.store == nil {
		return 0, errors.New("queue store unavailable")
	}
	return d.store.RetryFailed(ctx, ids...)
}

// QueueHealth returns aggregate queue diagnostics.
func (d *Daemon) QueueHealth(ctx context.Context) (queue.HealthSummary, error) {
	if d.store == nil {
		return queue.HealthSummary{}, errors.New("queue store unavailable")
	}
	return d.store.Health(ctx)
}

// DatabaseHealth returns detailed database diagnostics.
func (d *Daemon) DatabaseHealth(ctx context.Context) (queue.DatabaseHealth, error) {
	if d.store == nil {
		return queue.DatabaseHealth{}, errors.New("queue store unavailable")
	}
	return d.store.CheckHealth(ctx)
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg == nil {
		return false, "configuration unavailable", errors.New("configuration unavailable")
	}
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.Publish(ctx, notifications.EventTest, nil); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// LogStream returns the in-memory log event hub, if one was installed.
func (d *Daemon) LogStream() *logging.StreamHub {
	return d.logHub
}

// LogArchive returns the on-disk log event archive, if one was installed.
func (d *Daemon) LogArchive() *logging.EventArchive {
	return d.archive
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	summary := d.workflow.Status(ctx)
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		QueueDBPath:  d.store.Path(),
		LockFilePath: d.lockPath,
		Workflow:     summary,
		Dependencies: deps.CheckBinaries(deps.Requirements(d.cfg)),
	}
}
