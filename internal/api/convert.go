package api

import (
	"sort"
	"strings"

	"github.com/andigenesis/brainrot-generator/internal/queue"
	"github.com/andigenesis/brainrot-generator/internal/workflow"
)

// FromJob converts a queue job into its API view.
func FromJob(job *queue.Job) Job {
	if job == nil {
		return Job{}
	}
	view := Job{
		ID:           job.ID,
		UUID:         strings.ToLower(strings.TrimSpace(job.UUID)),
		Title:        job.Title,
		Status:       string(job.Status),
		PublicStatus: string(job.Status.Public()),
		Lane:         string(queue.LaneForJob(job)),
		Progress: JobProgress{
			Stage:   job.ProgressStage,
			Percent: job.ProgressPercent,
			Message: job.ProgressMessage,
		},
		ErrorMessage:      job.ErrorMessage,
		Voice:             job.Voice,
		Language:          job.Language,
		NarrationMS:       job.NarrationMS,
		ApproximateTiming: job.ApproximateTiming,
		TransformApplied:  job.TransformApplied,
		BackgroundClip:    job.BackgroundClip,
		FinalFile:         job.FinalFile,
		JobLogPath:        job.JobLogPath,
		NeedsReview:       job.NeedsReview,
		ReviewReason:      job.ReviewReason,
	}
	if !job.CreatedAt.IsZero() {
		view.CreatedAt = job.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !job.UpdatedAt.IsZero() {
		view.UpdatedAt = job.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return view
}

// FromJobs converts a slice of queue jobs, skipping nil entries.
func FromJobs(jobs []*queue.Job) []Job {
	out := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		if job == nil {
			continue
		}
		out = append(out, FromJob(job))
	}
	return out
}

// FromHealthSummary converts aggregated queue counts.
func FromHealthSummary(health queue.HealthSummary) QueueHealth {
	return QueueHealth{
		Total:      health.Total,
		Pending:    health.Pending,
		Processing: health.Processing,
		Failed:     health.Failed,
		Completed:  health.Completed,
	}
}

// FromStatusSummary converts workflow diagnostics, with stage health sorted
// by stage name for stable output.
func FromStatusSummary(summary workflow.StatusSummary) WorkflowStatus {
	status := WorkflowStatus{
		Running:   summary.Running,
		Queue:     FromHealthSummary(summary.Queue),
		LastError: summary.LastError,
	}
	if summary.LastJob != nil {
		view := FromJob(summary.LastJob)
		status.LastJob = &view
	}
	if len(summary.StageHealth) > 0 {
		names := make([]string, 0, len(summary.StageHealth))
		for name := range summary.StageHealth {
			names = append(names, name)
		}
		sort.Strings(names)
		status.StageHealth = make([]StageHealth, 0, len(names))
		for _, name := range names {
			health := summary.StageHealth[name]
			status.StageHealth = append(status.StageHealth, StageHealth{
				Name:   name,
				Ready:  health.Ready,
				Detail: health.Detail,
			})
		}
	}
	return status
}
