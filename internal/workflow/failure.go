package workflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/andigenesis/brainrot-generator/internal/logging"
	"github.com/andigenesis/brainrot-generator/internal/notifications"
	"github.com/andigenesis/brainrot-generator/internal/queue"
	"github.com/andigenesis/brainrot-generator/internal/services"
)

func (m *Manager) handleStageFailure(ctx context.Context, stageName string, job *queue.Job, stageErr error) {
	logger := logging.WithContext(ctx, m.logger.With(logging.String("component", "workflow-manager")))

	message := failureMessage(stageName, stageErr)
	status := services.FailureStatus(stageErr)
	if status == queue.StatusReview {
		job.Status = queue.StatusReview
		job.NeedsReview = true
		job.ReviewReason = message
		job.ErrorMessage = message
		job.ProgressStage = "Review"
		job.ProgressMessage = message
		job.ProgressPercent = 0
		job.LastHeartbeat = nil
	} else {
		job.SetFailed(message)
	}

	logger.Error("stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.Alert("stage_failure"),
		logging.String(logging.FieldStage, stageName),
		logging.String("resolved_status", string(status)),
		logging.String("error_message", strings.TrimSpace(message)),
		logging.Error(stageErr),
	)

	if err := m.store.Update(ctx, job); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not update stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}

	m.setLastJob(job)
	m.notifyStageError(ctx, stageName, job, stageErr)
}

func (m *Manager) notifyStageError(ctx context.Context, stageName string, job *queue.Job, stageErr error) {
	if m.notifier == nil || stageErr == nil {
		return
	}
	logger := logging.WithContext(ctx, m.logger.With(logging.String("component", "workflow-manager")))
	err := m.notifier.Publish(ctx, notifications.EventJobFailed, notifications.Payload{
		"job_id": strconv.FormatInt(job.ID, 10),
		"title":  job.Title,
		"stage":  stageName,
		"error":  stageErr.Error(),
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not send error notification")
		} else {
			logger.Debug("stage error notification failed", logging.Error(err))
		}
	}
}

func failureMessage(stageName string, stageErr error) string {
	if stageErr == nil {
		return fmt.Sprintf("%s failed without error detail", stageName)
	}
	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		return fmt.Sprintf("%s failed", stageName)
	}
	return message
}
