package ipc_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/andigenesis/brainrot-generator/internal/daemon"
	"github.com/andigenesis/brainrot-generator/internal/ipc"
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

func TestIPCServerClient(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIBind = ""
	// Long poll keeps the workflow loop from claiming jobs mid-assertion.
	cfg.Workflow.QueuePollInterval = 3600
	store := testsupport.MustOpenStore(t, cfg)
	logPath := filepath.Join(cfg.Paths.LogDir, "ipc-test.log")
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
		LogPath:  logPath,
	})
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Stop()
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	socket := filepath.Join(cfg.Paths.LogDir, "brainrot.sock")
	srv, err := ipc.NewServer(ctx, socket, d, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(func() {
		srv.Close()
	})

	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})

	startResp, err := client.Start()
	if err != nil {
		t.Fatalf("Start RPC failed: %v", err)
	}
	if !startResp.Started {
		t.Fatalf("expected Started=true, message=%s", startResp.Message)
	}

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if !status.Running {
		t.Fatal("expected daemon to be running")
	}
	if status.PID <= 0 {
		t.Fatalf("expected real pid, got %d", status.PID)
	}

	genResp, err := client.Generate("", "ray tracing shoots a ray through every pixel and asks what it hits", "")
	if err != nil {
		t.Fatalf("Generate RPC failed: %v", err)
	}
	if genResp.Job.ID <= 0 {
		t.Fatalf("expected assigned job id, got %d", genResp.Job.ID)
	}
	if genResp.Job.PublicStatus != "queued" {
		t.Fatalf("expected queued job, got %s", genResp.Job.PublicStatus)
	}
	if genResp.Job.Title == "" {
		t.Fatal("expected derived title")
	}

	jobB, err := store.NewJob(ctx, "Failed Job", "narration b", "")
	if err != nil {
		t.Fatalf("NewJob B: %v", err)
	}
	jobB.Status = queue.StatusFailed
	if err := store.Update(ctx, jobB); err != nil {
		t.Fatalf("Update jobB: %v", err)
	}
	jobC, err := store.NewJob(ctx, "Stuck Job", "narration c", "")
	if err != nil {
		t.Fatalf("NewJob C: %v", err)
	}
	jobC.Status = queue.StatusComposing
	if err := store.Update(ctx, jobC); err != nil {
		t.Fatalf("Update jobC: %v", err)
	}

	listResp, err := client.QueueList(nil)
	if err != nil {
		t.Fatalf("QueueList failed: %v", err)
	}
	if len(listResp.Jobs) != 3 {
		t.Fatalf("expected 3 queue jobs, got %d", len(listResp.Jobs))
	}

	failedResp, err := client.QueueList([]string{string(queue.StatusFailed)})
	if err != nil {
		t.Fatalf("QueueList failed filter: %v", err)
	}
	if len(failedResp.Jobs) != 1 || failedResp.Jobs[0].ID != jobB.ID {
		t.Fatalf("expected failed job %d", jobB.ID)
	}

	descResp, err := client.QueueDescribeUUID(genResp.Job.UUID)
	if err != nil {
		t.Fatalf("QueueDescribeUUID failed: %v", err)
	}
	if descResp.Job.ID != genResp.Job.ID {
		t.Fatalf("describe returned job %d, want %d", descResp.Job.ID, genResp.Job.ID)
	}

	resetResp, err := client.QueueReset()
	if err != nil {
		t.Fatalf("QueueReset failed: %v", err)
	}
	if resetResp.Updated != 1 {
		t.Fatalf("expected 1 job reset, got %d", resetResp.Updated)
	}
	updatedC, err := store.GetByID(ctx, jobC.ID)
	if err != nil {
		t.Fatalf("GetByID jobC: %v", err)
	}
	if updatedC.Status != queue.StatusPlanned {
		t.Fatalf("expected jobC to resume at compose start after reset, got %s", updatedC.Status)
	}

	cancelResp, err := client.QueueCancel([]int64{jobC.ID})
	if err != nil {
		t.Fatalf("QueueCancel failed: %v", err)
	}
	if cancelResp.Updated != 1 {
		t.Fatalf("expected 1 job cancelled, got %d", cancelResp.Updated)
	}
	cancelledC, err := store.GetByID(ctx, jobC.ID)
	if err != nil {
		t.Fatalf("GetByID cancelled jobC: %v", err)
	}
	if cancelledC.Status != queue.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelledC.Status)
	}

	clearFailedResp, err := client.QueueClearFailed()
	if err != nil {
		t.Fatalf("QueueClearFailed failed: %v", err)
	}
	if clearFailedResp.Removed != 1 {
		t.Fatalf("expected 1 failed job removed, got %d", clearFailedResp.Removed)
	}

	retryResp, err := client.QueueRetry(nil)
	if err != nil {
		t.Fatalf("QueueRetry failed: %v", err)
	}
	if retryResp.Updated != 0 {
		t.Fatalf("expected 0 retried jobs, got %d", retryResp.Updated)
	}

	removeResp, err := client.QueueRemove([]int64{jobC.ID})
	if err != nil {
		t.Fatalf("QueueRemove failed: %v", err)
	}
	if removeResp.Removed != 1 {
		t.Fatalf("expected 1 job removed, got %d", removeResp.Removed)
	}

	healthResp, err := client.QueueHealth()
	if err != nil {
		t.Fatalf("QueueHealth failed: %v", err)
	}
	if healthResp.Total != 1 || healthResp.Pending != 1 {
		t.Fatalf("unexpected health response: %#v", healthResp)
	}

	dbHealth, err := client.DatabaseHealth()
	if err != nil {
		t.Fatalf("DatabaseHealth failed: %v", err)
	}
	if !strings.HasSuffix(dbHealth.DBPath, "queue.db") {
		t.Fatalf("unexpected db path: %s", dbHealth.DBPath)
	}

	notifyResp, err := client.TestNotification()
	if err != nil {
		t.Fatalf("TestNotification failed: %v", err)
	}
	if notifyResp == nil || notifyResp.Message == "" {
		t.Fatalf("expected notification message, got %#v", notifyResp)
	}

	if err := os.WriteFile(logPath, []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatalf("write log file: %v", err)
	}

	logResp, err := client.LogTail(ipc.LogTailRequest{Offset: -1, Limit: 2})
	if err != nil {
		t.Fatalf("LogTail initial failed: %v", err)
	}
	if len(logResp.Lines) != 2 || logResp.Lines[0] != "second" || logResp.Lines[1] != "third" {
		t.Fatalf("unexpected log tail response: %#v", logResp.Lines)
	}

	followDone := make(chan struct{})
	go func(offset int64) {
		resp, err := client.LogTail(ipc.LogTailRequest{Offset: offset, Follow: true, WaitMillis: 500})
		if err != nil {
			t.Errorf("LogTail follow error: %v", err)
			return
		}
		if len(resp.Lines) != 1 || resp.Lines[0] != "fourth" {
			t.Errorf("unexpected follow lines: %#v", resp.Lines)
		}
		close(followDone)
	}(logResp.Offset)

	time.Sleep(100 * time.Millisecond)
	if f, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
		_, _ = f.WriteString("fourth\n")
		_ = f.Close()
	} else {
		t.Fatalf("append log: %v", err)
	}

	select {
	case <-followDone:
	case <-time.After(10 * time.Second):
		t.Fatal("log tail follow timed out")
	}

	stopResp, err := client.Stop()
	if err != nil {
		t.Fatalf("Stop RPC failed: %v", err)
	}
	if !stopResp.Stopped {
		t.Fatal("expected stop response to be true")
	}

	status2, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if status2.Running {
		t.Fatal("expected daemon to be stopped")
	}
}
