package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a render job.
type Status string

const (
	StatusPending      Status = "pending"
	StatusTransforming Status = "transforming"
	StatusTransformed  Status = "transformed"
	StatusNarrating    Status = "narrating"
	StatusNarrated     Status = "narrated"
	StatusPlanning     Status = "planning"
	StatusPlanned      Status = "planned"
	StatusComposing    Status = "composing"
	StatusComposed     Status = "composed"
	StatusMuxing       Status = "muxing"
	StatusMuxed        Status = "muxed"
	StatusOrganizing   Status = "organizing"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
	StatusReview       Status = "review"
	StatusCancelled    Status = "cancelled"
)

// UserStopReason is the reason recorded when a user explicitly cancels a job.
const UserStopReason = "Cancelled by user"

// DaemonStopReason is the error message set when jobs are failed due to daemon shutdown.
const DaemonStopReason = "Daemon stopped"

var allStatuses = []Status{
	StatusPending,
	StatusTransforming,
	StatusTransformed,
	StatusNarrating,
	StatusNarrated,
	StatusPlanning,
	StatusPlanned,
	StatusComposing,
	StatusComposed,
	StatusMuxing,
	StatusMuxed,
	StatusOrganizing,
	StatusCompleted,
	StatusFailed,
	StatusReview,
	StatusCancelled,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusTransforming: {},
	StatusNarrating:    {},
	StatusPlanning:     {},
	StatusComposing:    {},
	StatusMuxing:       {},
	StatusOrganizing:   {},
}

type statusTransition struct {
	from Status
	to   Status
}

var stageRollbackTransitions = []statusTransition{
	{from: StatusTransforming, to: StatusPending},
	{from: StatusNarrating, to: StatusTransformed},
	{from: StatusPlanning, to: StatusNarrated},
	{from: StatusComposing, to: StatusPlanned},
	{from: StatusMuxing, to: StatusComposed},
	{from: StatusOrganizing, to: StatusMuxed},
}

func processingRollbackTransitions() []statusTransition {
	return stageRollbackTransitions
}

// DatabaseHealth captures diagnostic information about the queue database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	TableExists      bool
	ColumnsPresent   []string
	MissingColumns   []string
	IntegrityCheck   bool
	TotalJobs        int
	Error            string
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Completed  int
}

// Job represents a render job persisted in SQLite.
type Job struct {
	ID                int64
	UUID              string
	Title             string
	NarrationText     string
	Status            Status
	Voice             string
	Language          string
	NarrationFile     string
	NarrationMS       int64
	TimingJSON        string
	ApproximateTiming bool
	TransformApplied  bool
	BackgroundClip    string
	OverlaysJSON      string
	ComposedFile      string
	FinalFile         string
	JobLogPath        string
	ErrorMessage      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ProgressStage     string
	ProgressPercent   float64
	ProgressMessage   string
	MetadataJSON      string
	LastHeartbeat     *time.Time
	NeedsReview       bool
	ReviewReason      string
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight operation.
func (j Job) IsProcessing() bool {
	_, ok := processingStatuses[j.Status]
	return ok
}

// IsProcessingStatus reports whether a status reflects an in-flight operation.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// IsTerminal reports whether a status is a resting end state.
func IsTerminal(status Status) bool {
	switch status {
	case StatusCompleted, StatusFailed, StatusReview, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsUserStopReason reports whether a review reason represents a user-initiated stop.
func IsUserStopReason(reason string) bool {
	return strings.EqualFold(strings.TrimSpace(reason), UserStopReason)
}

// InitProgress resets progress fields for a new stage.
// If ProgressStage is currently empty, it is set to the provided stage value;
// otherwise the existing stage is preserved (to support resume scenarios).
// ProgressMessage is set to message, ProgressPercent is reset to 0,
// and ErrorMessage is cleared.
func (j *Job) InitProgress(stage, message string) {
	if j.ProgressStage == "" {
		j.ProgressStage = stage
	}
	j.ProgressMessage = message
	j.ProgressPercent = 0
	j.ErrorMessage = ""
}

// SetProgress updates all three progress fields atomically.
// Use this instead of setting ProgressStage, ProgressPercent, and ProgressMessage individually.
func (j *Job) SetProgress(stage, message string, percent float64) {
	j.ProgressStage = stage
	j.ProgressMessage = message
	j.ProgressPercent = percent
}

// SetProgressComplete sets progress to 100% with the given stage and message.
// Convenience method for stage completion.
func (j *Job) SetProgressComplete(stage, message string) {
	j.SetProgress(stage, message, 100)
}

// SetFailed marks the job as failed with the given error message.
// Clears heartbeat and sets progress fields appropriately.
func (j *Job) SetFailed(message string) {
	j.Status = StatusFailed
	j.ErrorMessage = message
	j.ProgressPercent = 0
	j.ProgressMessage = message
	j.LastHeartbeat = nil
	j.ProgressStage = "Failed"
}

// SetCancelled marks the job as cancelled by the user.
// Partial output is discarded by the stage that observes the cancellation.
func (j *Job) SetCancelled() {
	j.Status = StatusCancelled
	j.ErrorMessage = ""
	j.ProgressMessage = UserStopReason
	j.LastHeartbeat = nil
	j.ProgressStage = "Cancelled"
	j.ReviewReason = UserStopReason
}

// IsInWorkflow returns true when a job is actively progressing (or queued to
// progress) through stages.
func (j Job) IsInWorkflow() bool {
	if j.IsProcessing() {
		return true
	}
	switch j.Status {
	case StatusTransformed,
		StatusNarrated,
		StatusPlanned,
		StatusComposed,
		StatusMuxed,
		StatusOrganizing,
		StatusCompleted:
		return true
	default:
		return false
	}
}

// PublicStatus is the coarse status exposed over the HTTP API.
type PublicStatus string

const (
	PublicQueued     PublicStatus = "queued"
	PublicProcessing PublicStatus = "processing"
	PublicComplete   PublicStatus = "complete"
	PublicError      PublicStatus = "error"
	PublicCancelled  PublicStatus = "cancelled"
)

// Public collapses the internal stage statuses into the API-facing lifecycle.
func (s Status) Public() PublicStatus {
	switch s {
	case StatusPending:
		return PublicQueued
	case StatusCompleted:
		return PublicComplete
	case StatusFailed, StatusReview:
		return PublicError
	case StatusCancelled:
		return PublicCancelled
	default:
		return PublicProcessing
	}
}

// StageKey returns the normalized stage identifier used in API/CLI presentation.
func (s Status) StageKey() string {
	switch s {
	case "":
		return ""
	case StatusPending:
		return "planned"
	case StatusCompleted:
		return "final"
	case StatusTransforming,
		StatusTransformed,
		StatusNarrating,
		StatusNarrated,
		StatusPlanning,
		StatusPlanned,
		StatusComposing,
		StatusComposed,
		StatusMuxing,
		StatusMuxed,
		StatusOrganizing,
		StatusFailed,
		StatusReview,
		StatusCancelled:
		return string(s)
	default:
		return ""
	}
}

// ProcessingLane partitions workflow into the quick narration stages and the
// render-heavy background work.
type ProcessingLane string

const (
	LaneForeground ProcessingLane = "foreground"
	LaneBackground ProcessingLane = "background"
)

// LaneForJob maps a queue job to its processing lane for observability purposes.
func LaneForJob(job *Job) ProcessingLane {
	if job == nil {
		return LaneForeground
	}
	switch job.Status {
	case StatusPending, StatusTransforming, StatusTransformed, StatusNarrating:
		return LaneForeground
	case StatusNarrated, StatusPlanning, StatusPlanned, StatusComposing, StatusComposed, StatusMuxing, StatusMuxed, StatusOrganizing, StatusCompleted:
		return LaneBackground
	case StatusFailed, StatusReview, StatusCancelled:
		if job.JobLogPath != "" {
			return LaneBackground
		}
		return LaneForeground
	default:
		return LaneForeground
	}
}
