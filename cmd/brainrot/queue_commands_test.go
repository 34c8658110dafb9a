package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/andigenesis/brainrot-generator/internal/config"
	"github.com/andigenesis/brainrot-generator/internal/queue"
)

type cliTestEnv struct {
	configPath string
	socketPath string
	cfg        *config.Config
}

// setupCLITestEnv writes a config file pointing at a temp dir and returns the
// flags needed to run commands against the direct-store fallback (no daemon).
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.LibraryDir = filepath.Join(base, "library")
	cfg.Paths.AssetsDir = filepath.Join(base, "assets")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = ""

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	configPath := filepath.Join(base, "config.toml")
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if err := loaded.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	return &cliTestEnv{
		configPath: configPath,
		socketPath: filepath.Join(base, "missing.sock"),
		cfg:        loaded,
	}
}

func (env *cliTestEnv) run(t *testing.T, args ...string) string {
	t.Helper()

	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(append([]string{"--config", env.configPath, "--socket", env.socketPath}, args...))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("command %v: %v", args, err)
	}
	return out.String()
}

func (env *cliTestEnv) seedJob(t *testing.T, title string, status queue.Status) *queue.Job {
	t.Helper()

	store, err := queue.Open(env.cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	job, err := store.NewJob(context.Background(), title, "Narration for "+title, "")
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if status != queue.StatusPending {
		job.Status = status
		if err := store.Update(context.Background(), job); err != nil {
			t.Fatalf("update job: %v", err)
		}
	}
	return job
}

func TestQueueListEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	output := env.run(t, "queue", "list")
	if !strings.Contains(output, "Queue is empty") {
		t.Fatalf("expected empty queue message, got:\n%s", output)
	}
}

func TestQueueListShowsSeededJobs(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedJob(t, "Fox Story", queue.StatusPending)
	env.seedJob(t, "Broken Story", queue.StatusFailed)

	output := env.run(t, "queue", "list")
	if !strings.Contains(output, "Fox Story") || !strings.Contains(output, "Broken Story") {
		t.Fatalf("expected both jobs in listing, got:\n%s", output)
	}

	filtered := env.run(t, "queue", "list", "--status", "failed")
	if strings.Contains(filtered, "Fox Story") {
		t.Fatalf("expected pending job filtered out, got:\n%s", filtered)
	}
	if !strings.Contains(filtered, "Broken Story") {
		t.Fatalf("expected failed job in filtered listing, got:\n%s", filtered)
	}
}

func TestQueueDescribeByIDAndUUID(t *testing.T) {
	env := setupCLITestEnv(t)
	job := env.seedJob(t, "Describe Me", queue.StatusPending)

	output := env.run(t, "queue", "describe", "1")
	if !strings.Contains(output, "Describe Me") {
		t.Fatalf("expected job title in describe output, got:\n%s", output)
	}

	byUUID := env.run(t, "queue", "describe", strings.ToUpper(job.UUID))
	if !strings.Contains(byUUID, "Describe Me") {
		t.Fatalf("expected uuid lookup to find job, got:\n%s", byUUID)
	}

	missing := env.run(t, "queue", "describe", "999")
	if !strings.Contains(missing, "not found") {
		t.Fatalf("expected not found message, got:\n%s", missing)
	}
}

func TestQueueRetryOnlyFailedJobs(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedJob(t, "Pending Story", queue.StatusPending)
	env.seedJob(t, "Failed Story", queue.StatusFailed)

	output := env.run(t, "queue", "retry", "1", "2")
	if !strings.Contains(output, "Job 1 is not in failed state") {
		t.Fatalf("expected pending job skipped, got:\n%s", output)
	}
	if !strings.Contains(output, "Job 2 reset for retry") {
		t.Fatalf("expected failed job retried, got:\n%s", output)
	}
}

func TestQueueClearFailed(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedJob(t, "Keep", queue.StatusPending)
	env.seedJob(t, "Drop", queue.StatusFailed)

	output := env.run(t, "queue", "clear", "--failed")
	if !strings.Contains(output, "Cleared 1 failed jobs") {
		t.Fatalf("expected one failed job cleared, got:\n%s", output)
	}

	health := env.run(t, "queue", "health")
	if !strings.Contains(health, "Total: 1") || !strings.Contains(health, "Pending: 1") {
		t.Fatalf("unexpected health output:\n%s", health)
	}
}

func TestQueueRemoveReportsMissing(t *testing.T) {
	env := setupCLITestEnv(t)
	env.seedJob(t, "Removable", queue.StatusCompleted)

	output := env.run(t, "queue", "remove", "1", "42")
	if !strings.Contains(output, "Job 1 removed") {
		t.Fatalf("expected removal confirmation, got:\n%s", output)
	}
	if !strings.Contains(output, "Job 42 not found") {
		t.Fatalf("expected missing job message, got:\n%s", output)
	}
}

func TestQueueRejectsInvalidIDs(t *testing.T) {
	env := setupCLITestEnv(t)

	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--config", env.configPath, "--socket", env.socketPath, "queue", "retry", "zero"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for non-numeric job id")
	}
}
