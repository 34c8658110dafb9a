package daemon_test

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/andigenesis/brainrot-generator/internal/daemon"
	"github.com/andigenesis/brainrot-generator/internal/logging"
	"github.com/andigenesis/brainrot-generator/internal/queue"
	"github.com/andigenesis/brainrot-generator/internal/stage"
	"github.com/andigenesis/brainrot-generator/internal/testsupport"
	"github.com/andigenesis/brainrot-generator/internal/workflow"
)

type noopStage struct{}

func (noopStage) Prepare(context.Context, *queue.Job) error { return nil }
func (noopStage) Execute(context.Context, *queue.Job) error { return nil }
func (noopStage) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("noop")
}

func newTestDaemon(t *testing.T) (*daemon.Daemon, *queue.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIBind = ""
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	mgr := workflow.NewManager(cfg, store, logger)
	mgr.ConfigureStages(workflow.StageSet{
		Narrator:  noopStage{},
		Planner:   noopStage{},
		Composer:  noopStage{},
		Muxer:     noopStage{},
		Organizer: noopStage{},
	})
	d, err := daemon.New(daemon.Options{
		Config:   cfg,
		Store:    store,
		Logger:   logger,
		Workflow: mgr,
	})
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Stop()
	})
	return d, store
}

func TestDaemonStartStop(t *testing.T) {
	d, _ := newTestDaemon(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status := d.Status(ctx)
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if status.PID <= 0 {
		t.Fatalf("expected a real pid, got %d", status.PID)
	}

	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	status = d.Status(ctx)
	if status.Running {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestDaemonGenerateDerivesTitle(t *testing.T) {
	d, _ := newTestDaemon(t)
	ctx := context.Background()

	job, err := d.Generate(ctx, "", "the borrow checker enforces ownership at compile time. More text follows.", "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if job.Title == "" {
		t.Fatal("expected derived title")
	}
	if job.Status != queue.StatusPending {
		t.Fatalf("status = %s, want pending", job.Status)
	}
}

func TestDaemonGenerateRejectsEmptyText(t *testing.T) {
	d, _ := newTestDaemon(t)
	if _, err := d.Generate(context.Background(), "Title", "   ", ""); err == nil {
		t.Fatal("expected error for empty narration text")
	}
}

func TestDaemonGenerateRejectsDuplicateNarration(t *testing.T) {
	d, _ := newTestDaemon(t)
	ctx := context.Background()
	text := "The borrow checker enforces ownership at compile time so data races never reach runtime."

	first, err := d.Generate(ctx, "Ownership", text, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	_, err = d.Generate(ctx, "Ownership again", text+" Really.", "")
	if !errors.Is(err, daemon.ErrDuplicateNarration) {
		t.Fatalf("err = %v, want ErrDuplicateNarration", err)
	}
	if !strings.Contains(err.Error(), strconv.FormatInt(first.ID, 10)) {
		t.Fatalf("error %q does not name the queued job", err)
	}

	// Unrelated narration is still accepted.
	if _, err := d.Generate(ctx, "", "Octopuses taste with their arms and have three hearts pumping blue blood.", ""); err != nil {
		t.Fatalf("Generate unrelated: %v", err)
	}
}

func TestDaemonGenerateAllowsResubmitAfterTerminal(t *testing.T) {
	d, store := newTestDaemon(t)
	ctx := context.Background()
	text := "Hash tables trade memory for constant-time lookups on average."

	job, err := d.Generate(ctx, "Hashing", text, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	job.Status = queue.StatusFailed
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("update: %v", err)
	}

	if _, err := d.Generate(ctx, "Hashing", text, ""); err != nil {
		t.Fatalf("Generate after failure: %v", err)
	}
}

func TestDaemonCancelJobsSkipsTerminal(t *testing.T) {
	d, store := newTestDaemon(t)
	ctx := context.Background()

	pending := testsupport.NewJob(t, store, "Pending", "some narration")
	done := testsupport.NewJob(t, store, "Done", "other narration")
	done.Status = queue.StatusCompleted
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("update: %v", err)
	}

	cancelled, err := d.CancelJobs(ctx, []int64{pending.ID, done.ID})
	if err != nil {
		t.Fatalf("CancelJobs: %v", err)
	}
	if cancelled != 1 {
		t.Fatalf("cancelled = %d, want 1", cancelled)
	}

	got, err := store.GetByID(ctx, pending.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != queue.StatusCancelled {
		t.Fatalf("status = %s, want cancelled", got.Status)
	}
}
