package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/andigenesis/brainrot-generator/internal/api"
	"github.com/andigenesis/brainrot-generator/internal/ipc"
	"github.com/andigenesis/brainrot-generator/internal/language"
)

func buildQueueListRows(jobs []api.Job) [][]string {
	if len(jobs) == 0 {
		return nil
	}
	sorted := make([]api.Job, len(jobs))
	copy(sorted, jobs)

	sort.Slice(sorted, func(i, j int) bool {
		ti := parseQueueTime(sorted[i].CreatedAt)
		tj := parseQueueTime(sorted[j].CreatedAt)
		if ti.Equal(tj) {
			return sorted[i].ID > sorted[j].ID
		}
		return ti.After(tj)
	})

	rows := make([][]string, 0, len(sorted))
	for _, job := range sorted {
		title := strings.TrimSpace(job.Title)
		if title == "" {
			title = "Untitled"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", job.ID),
			title,
			formatStatusLabel(job.Status),
			formatProgress(job.Progress),
			formatDisplayTime(job.CreatedAt),
		})
	}
	return rows
}

func buildQueueHealthRows(health ipc.QueueHealthResponse) [][]string {
	if health.Total == 0 {
		return nil
	}
	rows := [][]string{
		{"Pending", fmt.Sprintf("%d", health.Pending)},
		{"Processing", fmt.Sprintf("%d", health.Processing)},
		{"Failed", fmt.Sprintf("%d", health.Failed)},
		{"Completed", fmt.Sprintf("%d", health.Completed)},
		{"Total", fmt.Sprintf("%d", health.Total)},
	}
	return rows
}

func printJobDetails(out io.Writer, job api.Job) {
	fmt.Fprintf(out, "Job #%d\n", job.ID)
	fmt.Fprintf(out, "  UUID:      %s\n", job.UUID)
	fmt.Fprintf(out, "  Title:     %s\n", job.Title)
	fmt.Fprintf(out, "  Status:    %s\n", formatStatusLabel(job.Status))
	if progress := formatProgress(job.Progress); progress != "" {
		fmt.Fprintf(out, "  Progress:  %s\n", progress)
	}
	if job.Voice != "" {
		fmt.Fprintf(out, "  Voice:     %s\n", job.Voice)
	}
	if job.Language != "" {
		fmt.Fprintf(out, "  Language:  %s\n", language.DisplayName(job.Language))
	}
	if job.NarrationMS > 0 {
		fmt.Fprintf(out, "  Narration: %s\n", formatNarrationLength(job.NarrationMS, job.ApproximateTiming))
	}
	if job.BackgroundClip != "" {
		fmt.Fprintf(out, "  Clip:      %s\n", job.BackgroundClip)
	}
	if job.FinalFile != "" {
		fmt.Fprintf(out, "  Output:    %s\n", job.FinalFile)
	}
	if job.ErrorMessage != "" {
		fmt.Fprintf(out, "  Error:     %s\n", job.ErrorMessage)
	}
	if job.NeedsReview {
		reason := strings.TrimSpace(job.ReviewReason)
		if reason == "" {
			reason = "needs review"
		}
		fmt.Fprintf(out, "  Review:    %s\n", reason)
	}
	if created := formatDisplayTime(job.CreatedAt); created != "" {
		fmt.Fprintf(out, "  Created:   %s\n", created)
	}
	if updated := formatDisplayTime(job.UpdatedAt); updated != "" {
		fmt.Fprintf(out, "  Updated:   %s\n", updated)
	}
}

func formatProgress(progress api.JobProgress) string {
	stage := strings.TrimSpace(progress.Stage)
	if stage == "" {
		return ""
	}
	label := fmt.Sprintf("%s %.0f%%", formatStatusLabel(stage), progress.Percent)
	if message := strings.TrimSpace(progress.Message); message != "" {
		label = fmt.Sprintf("%s (%s)", label, message)
	}
	return label
}

func formatNarrationLength(ms int64, approximate bool) string {
	duration := (time.Duration(ms) * time.Millisecond).Round(100 * time.Millisecond)
	if approximate {
		return fmt.Sprintf("~%s (estimated)", duration)
	}
	return duration.String()
}

func formatStatusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return ""
	}
	parts := strings.Split(status, "_")
	for i, part := range parts {
		lower := strings.ToLower(part)
		if lower == "" {
			continue
		}
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}

func formatDisplayTime(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC().Format("2006-01-02 15:04")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC().Format("2006-01-02 15:04")
	}
	return value
}

func parseQueueTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	return time.Time{}
}
