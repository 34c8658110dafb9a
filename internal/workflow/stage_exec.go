package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/andigenesis/brainrot-generator/internal/logging"
	"github.com/andigenesis/brainrot-generator/internal/queue"
	"github.com/andigenesis/brainrot-generator/internal/services"
)

func (m *Manager) processJob(ctx context.Context, runLogger *slog.Logger, job *queue.Job) error {
	stg, ok := m.stageForStatus(job.Status)
	if !ok {
		runLogger.Warn("no stage configured for status", logging.String("status", string(job.Status)))
		m.waitForJobOrShutdown(ctx)
		return nil
	}

	requestID := uuid.NewString()
	stageCtx := withStageContext(ctx, stg.name, job, requestID)
	stageLogger := m.stageLogger(stageCtx, runLogger, job)

	if err := m.transitionToProcessing(stageCtx, stg, job); err != nil {
		stageLogger.Error("failed to transition job to processing", logging.Error(err))
		m.setLastError(err)
		return err
	}

	return m.executeStage(stageCtx, stageLogger, stg, job)
}

func (m *Manager) executeStage(ctx context.Context, stageLogger *slog.Logger, stg pipelineStage, job *queue.Job) error {
	stageStart := time.Now()
	stageLogger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("processing_status", string(stg.processingStatus)),
		logging.String("title", strings.TrimSpace(job.Title)),
	)

	if err := stg.handler.Prepare(ctx, job); err != nil {
		m.handleStageFailure(ctx, stg.name, job, err)
		m.setLastError(err)
		return err
	}
	if err := m.store.Update(ctx, job); err != nil {
		wrapped := fmt.Errorf("persist stage preparation: %w", err)
		stageLogger.Error("failed to persist stage preparation", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	execErr, userCancelled := m.executeWithHeartbeat(ctx, stg, job)
	if userCancelled {
		return m.finishCancelled(ctx, stageLogger, stg, job)
	}
	if execErr != nil {
		if errors.Is(execErr, context.Canceled) {
			stageLogger.Debug("stage interrupted by shutdown")
			return execErr
		}
		m.handleStageFailure(ctx, stg.name, job, execErr)
		m.setLastError(execErr)
		return execErr
	}

	if job.Status == stg.processingStatus || job.Status == "" {
		job.Status = stg.doneStatus
	}
	job.LastHeartbeat = nil
	if job.Status == queue.StatusCompleted {
		if job.ProgressPercent < 100 {
			job.ProgressPercent = 100
		}
		if strings.TrimSpace(job.ProgressMessage) == "" {
			job.ProgressMessage = "Completed"
		}
	}
	if err := m.store.Update(ctx, job); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		stageLogger.Error("failed to persist stage result", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}
	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("next_status", string(job.Status)),
		logging.String("progress_stage", strings.TrimSpace(job.ProgressStage)),
		logging.String("progress_message", strings.TrimSpace(job.ProgressMessage)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	m.setLastJob(job)
	return nil
}

// executeWithHeartbeat runs the stage handler while a sidecar loop refreshes
// the job heartbeat and watches for user cancellation. When the loop sees the
// job flip to cancelled it cancels the stage context; the handler's partial
// output is discarded by finishCancelled.
func (m *Manager) executeWithHeartbeat(ctx context.Context, stg pipelineStage, job *queue.Job) (execErr error, userCancelled bool) {
	execCtx, execCancel := context.WithCancel(ctx)
	defer execCancel()

	var cancelled cancelFlag
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.Run(execCtx, &hbWG, job.ID, func() {
		cancelled.set()
		execCancel()
	})

	execErr = stg.handler.Execute(execCtx, job)
	execCancel()
	hbWG.Wait()

	if cancelled.get() {
		return nil, true
	}
	return execErr, false
}

func (m *Manager) finishCancelled(ctx context.Context, stageLogger *slog.Logger, stg pipelineStage, job *queue.Job) error {
	job.SetCancelled()
	// Persist with the parent context: the stage context is already dead.
	if err := m.store.Update(ctx, job); err != nil {
		stageLogger.Error("failed to persist cancellation", logging.Error(err))
		m.setLastError(err)
		return err
	}
	stageLogger.Info("job cancelled during stage",
		logging.String(logging.FieldEventType, "job_cancelled"),
		logging.String(logging.FieldStage, stg.name),
	)
	m.setLastJob(job)
	return nil
}

func (m *Manager) transitionToProcessing(ctx context.Context, stg pipelineStage, job *queue.Job) error {
	now := time.Now().UTC()
	job.Status = stg.processingStatus
	if job.ProgressStage == "" {
		job.ProgressStage = deriveStageLabel(stg.processingStatus)
	}
	if job.ProgressMessage == "" {
		job.ProgressMessage = fmt.Sprintf("%s started", deriveStageLabel(stg.processingStatus))
	}
	job.ProgressPercent = 0
	job.ErrorMessage = ""
	job.LastHeartbeat = &now

	if err := m.store.Update(ctx, job); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}
	m.setLastJob(job)
	return nil
}

func withStageContext(ctx context.Context, stageName string, job *queue.Job, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if job != nil {
		ctx = services.WithJobID(ctx, job.ID)
		ctx = services.WithLane(ctx, string(queue.LaneForJob(job)))
	}
	ctx = services.WithStage(ctx, stageName)
	ctx = services.WithRequestID(ctx, requestID)
	return ctx
}

func deriveStageLabel(status queue.Status) string {
	s := string(status)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

type cancelFlag struct {
	mu  sync.Mutex
	val bool
}

func (c *cancelFlag) set() {
	c.mu.Lock()
	c.val = true
	c.mu.Unlock()
}

func (c *cancelFlag) get() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.val
}
