package daemon

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/andigenesis/brainrot-generator/internal/logging"
	"github.com/andigenesis/brainrot-generator/internal/staging"
)

// cleanupScheduler sweeps terminal jobs past the retention window and
// removes staging directories left behind by deleted jobs. It runs on
// the cron schedule from workflow.cleanup_schedule; an empty schedule
// disables it.
type cleanupScheduler struct {
	daemon *Daemon
	cron   *cron.Cron
}

func newCleanupScheduler(d *Daemon) *cleanupScheduler {
	return &cleanupScheduler{daemon: d}
}

func (c *cleanupScheduler) start() {
	schedule := strings.TrimSpace(c.daemon.cfg.Workflow.CleanupSchedule)
	if schedule == "" {
		return
	}

	runner := cron.New()
	if _, err := runner.AddFunc(schedule, c.run); err != nil {
		c.daemon.logger.Warn("invalid cleanup schedule, retention disabled",
			logging.String("schedule", schedule),
			logging.Error(err),
		)
		return
	}
	runner.Start()
	c.cron = runner
	c.daemon.logger.Info("retention cleanup scheduled", logging.String("schedule", schedule))
}

func (c *cleanupScheduler) stop() {
	if c.cron == nil {
		return
	}
	stopCtx := c.cron.Stop()
	<-stopCtx.Done()
	c.cron = nil
}

func (c *cleanupScheduler) run() {
	d := c.daemon
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	retention := time.Duration(d.cfg.Workflow.RetentionHours) * time.Hour
	if retention > 0 {
		cutoff := time.Now().UTC().Add(-retention)
		swept, err := d.store.SweepTerminalBefore(ctx, cutoff)
		if err != nil {
			d.logger.Warn("retention sweep failed", logging.Error(err))
		} else if len(swept) > 0 {
			for _, job := range swept {
				root := job.StagingRoot(d.cfg.Paths.StagingDir)
				if root == "" {
					continue
				}
				if err := os.RemoveAll(root); err != nil {
					d.logger.Warn("failed to remove swept staging directory",
						logging.Int64(logging.FieldJobID, job.ID),
						logging.String("path", root),
						logging.Error(err),
					)
				}
			}
			d.logger.Info("retention sweep removed terminal jobs",
				logging.Int("removed", len(swept)),
				logging.Duration("retention", retention),
			)
		}
	}

	c.cleanOrphanedStaging(ctx)
}

// cleanOrphanedStaging removes staging directories whose job row no
// longer exists, e.g. after a queue clear.
func (c *cleanupScheduler) cleanOrphanedStaging(ctx context.Context) {
	d := c.daemon
	jobs, err := d.store.List(ctx)
	if err != nil {
		d.logger.Warn("failed to list jobs for staging cleanup", logging.Error(err))
		return
	}
	active := make(map[string]struct{}, len(jobs))
	for _, job := range jobs {
		id := strings.ToLower(strings.TrimSpace(job.UUID))
		if id != "" {
			active[id] = struct{}{}
		}
	}
	result := staging.CleanOrphaned(ctx, d.cfg.Paths.StagingDir, active, d.logger)
	if len(result.Removed) > 0 {
		d.logger.Info("removed orphaned staging directories", logging.Int("removed", len(result.Removed)))
	}
}
