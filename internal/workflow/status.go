package workflow

import (
	"context"

	"github.com/andigenesis/brainrot-generator/internal/logging"
	"github.com/andigenesis/brainrot-generator/internal/queue"
	"github.com/andigenesis/brainrot-generator/internal/stage"
)

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	Running     bool
	LastError   string
	LastJob     *queue.Job
	Queue       queue.HealthSummary
	StageHealth map[string]stage.Health
}

// Status returns the latest workflow information, including per-stage
// readiness from the configured handlers.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	running := m.running
	lastErr := m.lastErr
	lastJob := m.lastJob
	stages := make([]pipelineStage, len(m.stages))
	copy(stages, m.stages)
	m.mu.RUnlock()

	health, err := m.store.Health(ctx)
	if err != nil {
		m.logger.Warn("failed to read queue stats", logging.Error(err))
	}

	stageHealth := make(map[string]stage.Health, len(stages))
	for _, stg := range stages {
		if stg.handler == nil {
			continue
		}
		stageHealth[stg.name] = stg.handler.HealthCheck(ctx)
	}

	summary := StatusSummary{Running: running, Queue: health, StageHealth: stageHealth}
	if lastErr != nil {
		summary.LastError = lastErr.Error()
	}
	if lastJob != nil {
		snapshot := *lastJob
		summary.LastJob = &snapshot
	}
	return summary
}
