package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/andigenesis/brainrot-generator/internal/logging"
	"github.com/andigenesis/brainrot-generator/internal/preflight"
	"github.com/andigenesis/brainrot-generator/internal/queue"
)

// Start begins background queue processing. Jobs left in a processing
// status by a previous run are rolled back to their stage start first.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if len(m.startStatuses) == 0 {
		m.mu.Unlock()
		return errors.New("workflow stages not configured")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	logger := m.logger.With(logging.String("component", "workflow-runner"))

	if reset, err := m.store.ResetStuckProcessing(runCtx); err != nil {
		logger.Warn("reset stuck processing failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check queue database access"),
		)
	} else if reset > 0 {
		logger.Info("rolled back interrupted jobs", logging.Int64("count", reset))
	}

	m.logPreflight(runCtx, logger)

	go m.run(runCtx, logger)
	return nil
}

// Stop terminates background processing and waits for the active stage to
// observe cancellation.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) run(ctx context.Context, logger *slog.Logger) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := m.heartbeat.ReclaimStale(ctx, logger); err != nil {
			logger.Warn("reclaim stale processing failed; stuck jobs may remain",
				logging.Error(err),
				logging.String(logging.FieldEventType, "heartbeat_reclaim_failed"),
				logging.String(logging.FieldErrorHint, "check queue database access"),
			)
		}

		job, err := m.store.NextForStatuses(ctx, m.startStatuses...)
		if err != nil {
			m.handleFetchError(ctx, logger, err)
			continue
		}
		if job == nil {
			m.waitForJobOrShutdown(ctx)
			continue
		}

		if err := m.processJob(ctx, logger, job); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
		}
	}
}

func (m *Manager) handleFetchError(ctx context.Context, logger *slog.Logger, err error) {
	m.setLastError(err)
	logger.Error("failed to fetch next queue job",
		logging.Error(err),
		logging.String(logging.FieldEventType, "queue_fetch_failed"),
		logging.String(logging.FieldErrorHint, "check queue database access"),
	)
	retry := time.Duration(m.cfg.Workflow.ErrorRetryInterval) * time.Second
	if retry <= 0 {
		retry = m.pollInterval
	}
	select {
	case <-ctx.Done():
	case <-time.After(retry):
	}
}

func (m *Manager) waitForJobOrShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(m.pollInterval):
	}
}

// logPreflight surfaces readiness problems at startup without blocking the
// run loop; individual stages fail jobs into review when a dependency is
// genuinely unusable.
func (m *Manager) logPreflight(ctx context.Context, logger *slog.Logger) {
	results := preflight.RunAll(ctx, m.cfg)
	var failures []string
	for _, r := range results {
		if r.Passed {
			logger.Info("preflight check passed",
				logging.String("check", r.Name),
				logging.String("detail", r.Detail),
				logging.String(logging.FieldEventType, "preflight_passed"),
			)
			continue
		}
		logger.Error("preflight check failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
			logging.String(logging.FieldEventType, "preflight_failed"),
			logging.String(logging.FieldErrorHint, "fix the reported issue and restart the daemon"),
		)
		failures = append(failures, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	if len(failures) > 0 {
		m.setLastError(fmt.Errorf("preflight checks failed: %s", strings.Join(failures, "; ")))
	}
}

// StopActiveJobs fails any in-flight jobs on daemon shutdown so they are not
// left with a live heartbeat.
func (m *Manager) StopActiveJobs(ctx context.Context) error {
	jobs, err := m.store.List(ctx)
	if err != nil {
		return err
	}
	for _, job := range jobs {
		if !job.IsProcessing() {
			continue
		}
		job.SetFailed(queue.DaemonStopReason)
		if err := m.store.Update(ctx, job); err != nil {
			return err
		}
	}
	return nil
}
