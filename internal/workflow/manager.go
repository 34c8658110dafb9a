package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/andigenesis/brainrot-generator/internal/config"
	"github.com/andigenesis/brainrot-generator/internal/logging"
	"github.com/andigenesis/brainrot-generator/internal/notifications"
	"github.com/andigenesis/brainrot-generator/internal/queue"
	"github.com/andigenesis/brainrot-generator/internal/stage"
)

// StageSet bundles the concrete pipeline handlers the manager orchestrates.
// A nil handler skips its stage; the next stage picks up from the previous
// done status.
type StageSet struct {
	Transformer stage.Handler
	Narrator    stage.Handler
	Planner     stage.Handler
	Composer    stage.Handler
	Muxer       stage.Handler
	Organizer   stage.Handler
}

type pipelineStage struct {
	name             string
	handler          stage.Handler
	startStatus      queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}

// Manager coordinates queue processing using registered stage handlers.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	notifier     notifications.Service
	pollInterval time.Duration

	heartbeat *HeartbeatMonitor
	jobLogs   *JobLogger

	stages        []pipelineStage
	stageByStart  map[queue.Status]pipelineStage
	startStatuses []queue.Status

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
	lastJob *queue.Job
}

// NewManager constructs a workflow manager with the default notifier.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	return NewManagerWithOptions(cfg, store, logger, notifications.NewService(cfg), nil)
}

// NewManagerWithNotifier constructs a workflow manager with a custom notifier (used in tests).
func NewManagerWithNotifier(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Manager {
	return NewManagerWithOptions(cfg, store, logger, notifier, nil)
}

// NewManagerWithOptions constructs a workflow manager with full configuration.
// The stream hub, when non-nil, receives job log records for the tail API.
func NewManagerWithOptions(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service, logHub *logging.StreamHub) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logger,
		notifier:     notifier,
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
		jobLogs: NewJobLogger(cfg, logHub),
	}
}

// ConfigureStages registers the concrete stage handlers the workflow will
// run, in pipeline order.
func (m *Manager) ConfigureStages(set StageSet) {
	var stages []pipelineStage
	start := queue.StatusPending

	if set.Transformer != nil {
		stages = append(stages, pipelineStage{
			name:             "transform",
			handler:          set.Transformer,
			startStatus:      start,
			processingStatus: queue.StatusTransforming,
			doneStatus:       queue.StatusTransformed,
		})
		start = queue.StatusTransformed
	}
	if set.Narrator != nil {
		stages = append(stages, pipelineStage{
			name:             "narrate",
			handler:          set.Narrator,
			startStatus:      start,
			processingStatus: queue.StatusNarrating,
			doneStatus:       queue.StatusNarrated,
		})
		start = queue.StatusNarrated
	}
	if set.Planner != nil {
		stages = append(stages, pipelineStage{
			name:             "plan",
			handler:          set.Planner,
			startStatus:      start,
			processingStatus: queue.StatusPlanning,
			doneStatus:       queue.StatusPlanned,
		})
		start = queue.StatusPlanned
	}
	if set.Composer != nil {
		stages = append(stages, pipelineStage{
			name:             "compose",
			handler:          set.Composer,
			startStatus:      start,
			processingStatus: queue.StatusComposing,
			doneStatus:       queue.StatusComposed,
		})
		start = queue.StatusComposed
	}
	if set.Muxer != nil {
		stages = append(stages, pipelineStage{
			name:             "mux",
			handler:          set.Muxer,
			startStatus:      start,
			processingStatus: queue.StatusMuxing,
			doneStatus:       queue.StatusMuxed,
		})
		start = queue.StatusMuxed
	}
	if set.Organizer != nil {
		stages = append(stages, pipelineStage{
			name:             "organize",
			handler:          set.Organizer,
			startStatus:      start,
			processingStatus: queue.StatusOrganizing,
			doneStatus:       queue.StatusCompleted,
		})
	}

	byStart := make(map[queue.Status]pipelineStage, len(stages))
	order := make([]queue.Status, 0, len(stages))
	for _, stg := range stages {
		byStart[stg.startStatus] = stg
		order = append(order, stg.startStatus)
	}

	m.mu.Lock()
	m.stages = stages
	m.stageByStart = byStart
	m.startStatuses = order
	m.mu.Unlock()
}

func (m *Manager) stageForStatus(status queue.Status) (pipelineStage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stg, ok := m.stageByStart[status]
	return stg, ok
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastJob(job *queue.Job) {
	m.mu.Lock()
	if job != nil {
		snapshot := *job
		m.lastJob = &snapshot
	} else {
		m.lastJob = nil
	}
	m.mu.Unlock()
}
