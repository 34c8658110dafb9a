package organizer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andigenesis/brainrot-generator/internal/logging"
	"github.com/andigenesis/brainrot-generator/internal/notifications"
	"github.com/andigenesis/brainrot-generator/internal/queue"
	"github.com/andigenesis/brainrot-generator/internal/services"
	"github.com/andigenesis/brainrot-generator/internal/testsupport"
	"github.com/andigenesis/brainrot-generator/internal/timing"
)

type recordingNotifier struct {
	events   []notifications.Event
	payloads []notifications.Payload
}

func (r *recordingNotifier) Publish(_ context.Context, event notifications.Event, payload notifications.Payload) error {
	r.events = append(r.events, event)
	r.payloads = append(r.payloads, payload)
	return nil
}

func encodeTestSpans(t *testing.T) string {
	t.Helper()
	raw, err := timing.EncodeSpans([]timing.WordSpan{
		{Text: "hello", StartMS: 0, EndMS: 400},
		{Text: "world", StartMS: 400, EndMS: 900},
	})
	if err != nil {
		t.Fatalf("encode spans: %v", err)
	}
	return raw
}

func TestOrganizerMovesVideoAndWritesSidecar(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "Roman Empire Facts", "hello world")

	staged := filepath.Join(cfg.Paths.StagingDir, "final.mp4")
	if err := os.WriteFile(staged, []byte("video"), 0o644); err != nil {
		t.Fatalf("write staged file: %v", err)
	}
	job.FinalFile = staged
	job.TimingJSON = encodeTestSpans(t)
	if err := store.Update(context.Background(), job); err != nil {
		t.Fatalf("update job: %v", err)
	}

	notifier := &recordingNotifier{}
	org := NewOrganizerWithNotifier(cfg, store, logging.NewNop(), notifier)

	if err := org.Prepare(context.Background(), job); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if err := org.Execute(context.Background(), job); err != nil {
		t.Fatalf("execute: %v", err)
	}

	expected := filepath.Join(cfg.Paths.LibraryDir, "Roman Empire Facts.mp4")
	if job.FinalFile != expected {
		t.Fatalf("expected final file %q, got %q", expected, job.FinalFile)
	}
	if _, err := os.Stat(expected); err != nil {
		t.Fatalf("library file missing: %v", err)
	}
	if _, err := os.Stat(staged); !os.IsNotExist(err) {
		t.Fatal("staged file should have been moved")
	}

	sidecar := filepath.Join(cfg.Paths.LibraryDir, "Roman Empire Facts.srt")
	data, err := os.ReadFile(sidecar)
	if err != nil {
		t.Fatalf("sidecar missing: %v", err)
	}
	if !strings.Contains(string(data), "hello world") {
		t.Fatalf("sidecar missing caption text: %q", string(data))
	}

	if job.ProgressPercent != 100 {
		t.Fatalf("expected progress 100, got %v", job.ProgressPercent)
	}
	if len(notifier.events) != 1 || notifier.events[0] != notifications.EventVideoCompleted {
		t.Fatalf("expected completion notification, got %v", notifier.events)
	}
	if notifier.payloads[0]["finalFile"] != "Roman Empire Facts.mp4" {
		t.Fatalf("unexpected notification payload: %v", notifier.payloads[0])
	}
}

func TestOrganizerAllocatesCollisionFreeNames(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "Duplicate", "hello world")

	if err := os.MkdirAll(cfg.Paths.LibraryDir, 0o755); err != nil {
		t.Fatalf("mkdir library: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.Paths.LibraryDir, "Duplicate.mp4"), []byte("old"), 0o644); err != nil {
		t.Fatalf("seed existing file: %v", err)
	}

	staged := filepath.Join(cfg.Paths.StagingDir, "final.mp4")
	if err := os.WriteFile(staged, []byte("video"), 0o644); err != nil {
		t.Fatalf("write staged file: %v", err)
	}
	job.FinalFile = staged

	org := NewOrganizerWithNotifier(cfg, store, logging.NewNop(), &recordingNotifier{})
	if err := org.Execute(context.Background(), job); err != nil {
		t.Fatalf("execute: %v", err)
	}

	expected := filepath.Join(cfg.Paths.LibraryDir, "Duplicate-2.mp4")
	if job.FinalFile != expected {
		t.Fatalf("expected collision suffix %q, got %q", expected, job.FinalFile)
	}
}

func TestOrganizerRequiresMuxedFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "No File", "hello world")

	org := NewOrganizerWithNotifier(cfg, store, logging.NewNop(), &recordingNotifier{})
	err := org.Execute(context.Background(), job)
	if err == nil {
		t.Fatal("expected error for missing muxed file")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLibraryBaseNameFallbacks(t *testing.T) {
	org := &Organizer{}

	job := &queue.Job{Title: "My: Video?"}
	if got := org.libraryBaseName(job); got != "My- Video" {
		t.Fatalf("sanitized title mismatch: %q", got)
	}

	job = &queue.Job{NarrationText: "the roman empire fell. nobody noticed"}
	if got := org.libraryBaseName(job); got != "The Roman Empire Fell" {
		t.Fatalf("derived title mismatch: %q", got)
	}

	job = &queue.Job{UUID: "ABC-123"}
	if got := org.libraryBaseName(job); got != "abc-123" {
		t.Fatalf("uuid fallback mismatch: %q", got)
	}
}

func TestOrganizerHealthCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	org := NewOrganizerWithNotifier(cfg, nil, logging.NewNop(), nil)
	if health := org.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("expected healthy, got %+v", health)
	}

	cfg.Paths.LibraryDir = ""
	if health := org.HealthCheck(context.Background()); health.Ready {
		t.Fatal("expected unhealthy without library dir")
	}
}
