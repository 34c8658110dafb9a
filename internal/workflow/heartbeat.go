package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/andigenesis/brainrot-generator/internal/logging"
	"github.com/andigenesis/brainrot-generator/internal/queue"
)

// HeartbeatMonitor refreshes job heartbeats during stage execution and
// reclaims jobs whose heartbeats have gone stale.
type HeartbeatMonitor struct {
	store    *queue.Store
	logger   *slog.Logger
	interval time.Duration
	timeout  time.Duration
}

// NewHeartbeatMonitor creates a new monitor.
func NewHeartbeatMonitor(store *queue.Store, logger *slog.Logger, interval, timeout time.Duration) *HeartbeatMonitor {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &HeartbeatMonitor{
		store:    store,
		logger:   logger,
		interval: interval,
		timeout:  timeout,
	}
}

// ReclaimStale rolls processing jobs whose heartbeat exceeded the timeout
// back to their stage start status.
func (h *HeartbeatMonitor) ReclaimStale(ctx context.Context, logger *slog.Logger) error {
	if h.timeout <= 0 {
		return nil
	}
	cutoff := time.Now().Add(-h.timeout)
	reclaimed, err := h.store.ReclaimStaleProcessing(ctx, cutoff)
	if err != nil {
		return err
	}
	if reclaimed > 0 {
		logger.Info("reclaimed stale jobs", logging.Int64("count", reclaimed))
	}
	return nil
}

// Run updates the heartbeat for a job until context cancellation. Each tick
// it also re-reads the job row; when the status has flipped to cancelled it
// invokes onCancelled once and stops.
func (h *HeartbeatMonitor) Run(ctx context.Context, wg *sync.WaitGroup, jobID int64, onCancelled func()) {
	defer wg.Done()
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	logger := logging.WithContext(ctx, h.logger.With(logging.String("component", "workflow-heartbeat")))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := h.store.UpdateHeartbeat(ctx, jobID); err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				logger.Warn("heartbeat update failed", logging.Error(err))
				continue
			}
			job, err := h.store.GetByID(ctx, jobID)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				logger.Warn("heartbeat status check failed", logging.Error(err))
				continue
			}
			if job != nil && job.Status == queue.StatusCancelled {
				logger.Info("cancellation observed mid-stage", logging.Int64(logging.FieldJobID, jobID))
				if onCancelled != nil {
					onCancelled()
				}
				return
			}
		}
	}
}
