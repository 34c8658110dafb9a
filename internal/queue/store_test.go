package queue_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/andigenesis/brainrot-generator/internal/queue"
	"github.com/andigenesis/brainrot-generator/internal/testsupport"
)

func TestOpenCreatesSchemaAndInsertsJobs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job, err := store.NewJob(ctx, "Sample Title", "go is a fantastic language", "")
	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}
	if job.ID == 0 {
		t.Fatal("expected job ID to be assigned")
	}
	if job.UUID == "" {
		t.Fatal("expected job UUID to be assigned")
	}
	if job.Status != queue.StatusPending {
		t.Fatalf("new job status = %s, want pending", job.Status)
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || fetched.Title != "Sample Title" {
		t.Fatalf("unexpected fetched job: %#v", fetched)
	}

	byUUID, err := store.GetByUUID(ctx, job.UUID)
	if err != nil {
		t.Fatalf("GetByUUID failed: %v", err)
	}
	if byUUID == nil || byUUID.ID != job.ID {
		t.Fatalf("expected to find inserted job, got %#v", byUUID)
	}
}

func TestUpdateRoundTripsFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job := testsupport.NewJob(t, store, "Round Trip", "narration text")

	job.Status = queue.StatusNarrated
	job.Voice = "en-US-ChristopherNeural"
	job.Language = "en"
	job.NarrationFile = "/tmp/narration.mp3"
	job.NarrationMS = 12345
	job.TimingJSON = `[{"text":"narration","offset":0}]`
	job.ApproximateTiming = true
	job.TransformApplied = true
	job.BackgroundClip = "/pool/clip.mp4"
	job.FinalFile = "/library/out.mp4"
	job.SetProgress("Narrating", "synthesized", 30)
	job.NeedsReview = false
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != queue.StatusNarrated {
		t.Fatalf("status = %s", got.Status)
	}
	if got.NarrationMS != 12345 || !got.ApproximateTiming || !got.TransformApplied {
		t.Fatalf("narration fields lost: %#v", got)
	}
	if got.Voice != "en-US-ChristopherNeural" || got.BackgroundClip != "/pool/clip.mp4" {
		t.Fatalf("string fields lost: %#v", got)
	}
	if got.ProgressStage != "Narrating" || got.ProgressPercent != 30 {
		t.Fatalf("progress lost: %#v", got)
	}
}

func TestNextForStatusesReturnsOldest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first := testsupport.NewJob(t, store, "First", "one")
	testsupport.NewJob(t, store, "Second", "two")

	next, err := store.NextForStatuses(ctx, queue.StatusPending)
	if err != nil {
		t.Fatalf("NextForStatuses failed: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("expected oldest pending job %d, got %#v", first.ID, next)
	}

	none, err := store.NextForStatuses(ctx, queue.StatusMuxing)
	if err != nil {
		t.Fatalf("NextForStatuses failed: %v", err)
	}
	if none != nil {
		t.Fatalf("expected no muxing jobs, got %#v", none)
	}
}

func TestResetStuckProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	cases := []struct {
		name          string
		initialStatus queue.Status
		expected      queue.Status
	}{
		{"transforming", queue.StatusTransforming, queue.StatusPending},
		{"narrating", queue.StatusNarrating, queue.StatusTransformed},
		{"planning", queue.StatusPlanning, queue.StatusNarrated},
		{"composing", queue.StatusComposing, queue.StatusPlanned},
		{"muxing", queue.StatusMuxing, queue.StatusComposed},
		{"organizing", queue.StatusOrganizing, queue.StatusMuxed},
	}
	var ids []int64
	for i, tc := range cases {
		job := testsupport.NewJob(t, store, fmt.Sprintf("Job-%s", tc.name), fmt.Sprintf("text %d", i))
		job.Status = tc.initialStatus
		job.ProgressStage = tc.name
		if err := store.Update(ctx, job); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		ids = append(ids, job.ID)
	}

	count, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing failed: %v", err)
	}
	if count != int64(len(cases)) {
		t.Fatalf("reset %d jobs, want %d", count, len(cases))
	}

	for i, tc := range cases {
		got, err := store.GetByID(ctx, ids[i])
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if got.Status != tc.expected {
			t.Fatalf("%s: status = %s, want %s", tc.name, got.Status, tc.expected)
		}
	}
}

func TestReclaimStaleProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	stale := testsupport.NewJob(t, store, "Stale", "stale text")
	stale.Status = queue.StatusComposing
	old := time.Now().Add(-time.Hour).UTC()
	stale.LastHeartbeat = &old
	if err := store.Update(ctx, stale); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fresh := testsupport.NewJob(t, store, "Fresh", "fresh text")
	fresh.Status = queue.StatusComposing
	now := time.Now().UTC()
	fresh.LastHeartbeat = &now
	if err := store.Update(ctx, fresh); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	count, err := store.ReclaimStaleProcessing(ctx, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("ReclaimStaleProcessing failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("reclaimed %d jobs, want 1", count)
	}

	got, err := store.GetByID(ctx, stale.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != queue.StatusPlanned {
		t.Fatalf("stale job status = %s, want planned", got.Status)
	}

	untouched, err := store.GetByID(ctx, fresh.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if untouched.Status != queue.StatusComposing {
		t.Fatalf("fresh job status = %s, want composing", untouched.Status)
	}
}

func TestRetryFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job := testsupport.NewJob(t, store, "Failed", "text")
	job.SetFailed("encode exploded")
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	count, err := store.RetryFailed(ctx)
	if err != nil {
		t.Fatalf("RetryFailed failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("retried %d jobs, want 1", count)
	}

	got, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != queue.StatusPending || got.ErrorMessage != "" {
		t.Fatalf("unexpected job after retry: %#v", got)
	}
}

func TestSweepTerminalBefore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	done := testsupport.NewJob(t, store, "Done", "done text")
	done.Status = queue.StatusCompleted
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	active := testsupport.NewJob(t, store, "Active", "active text")

	swept, err := store.SweepTerminalBefore(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("SweepTerminalBefore failed: %v", err)
	}
	if len(swept) != 1 || swept[0].ID != done.ID {
		t.Fatalf("unexpected swept jobs: %#v", swept)
	}

	remaining, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != active.ID {
		t.Fatalf("unexpected remaining jobs: %#v", remaining)
	}
}

func TestStatsAndHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.NewJob(t, store, "A", "a")
	working := testsupport.NewJob(t, store, "B", "b")
	working.Status = queue.StatusComposing
	if err := store.Update(ctx, working); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats[queue.StatusPending] != 1 || stats[queue.StatusComposing] != 1 {
		t.Fatalf("unexpected stats: %#v", stats)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Total != 2 || health.Pending != 1 || health.Processing != 1 {
		t.Fatalf("unexpected health: %#v", health)
	}

	dbHealth, err := store.CheckHealth(ctx)
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if !dbHealth.DatabaseExists || !dbHealth.TableExists || !dbHealth.IntegrityCheck {
		t.Fatalf("unexpected database health: %#v", dbHealth)
	}
	if len(dbHealth.MissingColumns) != 0 {
		t.Fatalf("missing columns: %v", dbHealth.MissingColumns)
	}
}

func TestStagingRootUsesUUID(t *testing.T) {
	job := queue.Job{ID: 7, UUID: "abc-123"}
	root := job.StagingRoot("/tmp/staging")
	if root != "/tmp/staging/abc-123" {
		t.Fatalf("staging root = %s", root)
	}

	noUUID := queue.Job{ID: 7}
	root = noUUID.StagingRoot("/tmp/staging")
	if root != "/tmp/staging/job-7" {
		t.Fatalf("fallback staging root = %s", root)
	}
}
