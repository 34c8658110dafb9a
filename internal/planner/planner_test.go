package planner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/andigenesis/brainrot-generator/internal/compose"
	"github.com/andigenesis/brainrot-generator/internal/logging"
	"github.com/andigenesis/brainrot-generator/internal/overlays"
	"github.com/andigenesis/brainrot-generator/internal/services"
	"github.com/andigenesis/brainrot-generator/internal/services/ollama"
	"github.com/andigenesis/brainrot-generator/internal/testsupport"
	"github.com/andigenesis/brainrot-generator/internal/timing"
)

func seedPool(t *testing.T, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir pool: %v", err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("clip"), 0o644); err != nil {
			t.Fatalf("seed clip %s: %v", name, err)
		}
	}
}

func timedSpans(t *testing.T) string {
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

func staticProbe(ms int64) func(context.Context, string) (int64, error) {
	return func(context.Context, string) (int64, error) { return ms, nil }
}

func TestPlannerSelectsBackground(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	poolDir := filepath.Join(testsupport.BaseDir(cfg), "pool")
	seedPool(t, poolDir, "gameplay.mp4", "notes.txt")
	cfg.Background.PoolDir = poolDir

	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "Plan", "hello world")
	job.TimingJSON = timedSpans(t)
	job.NarrationMS = 900

	p := NewPlannerWithDependencies(cfg, store, logging.NewNop(), staticProbe(5000), nil, nil)
	if err := p.Execute(context.Background(), job); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if filepath.Base(job.BackgroundClip) != "gameplay.mp4" {
		t.Fatalf("expected gameplay.mp4 selected, got %q", job.BackgroundClip)
	}
	if job.ProgressPercent != 50 {
		t.Fatalf("expected progress 50, got %v", job.ProgressPercent)
	}
}

func TestPlannerFailsOnEmptyPool(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	poolDir := filepath.Join(testsupport.BaseDir(cfg), "pool")
	seedPool(t, poolDir)
	cfg.Background.PoolDir = poolDir

	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "Empty", "hello world")
	job.TimingJSON = timedSpans(t)
	job.NarrationMS = 900

	p := NewPlannerWithDependencies(cfg, store, logging.NewNop(), staticProbe(5000), nil, nil)
	err := p.Execute(context.Background(), job)
	if err == nil {
		t.Fatal("expected error for empty pool")
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestPlannerRequiresTiming(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "NoTiming", "hello world")

	p := NewPlannerWithDependencies(cfg, store, logging.NewNop(), staticProbe(5000), nil, nil)
	err := p.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

type fakeDiagrams struct {
	out []ollama.Diagram
	err error
}

func (f *fakeDiagrams) GenerateDiagrams(context.Context, string) ([]ollama.Diagram, error) {
	return f.out, f.err
}

type fakeOverlayRenderer struct {
	spans []compose.OverlaySpan
	err   error
}

func (f *fakeOverlayRenderer) Render(_ context.Context, _ []ollama.Diagram, _ int64, outDir string) ([]compose.OverlaySpan, error) {
	if f.err != nil {
		return nil, f.err
	}
	spans := make([]compose.OverlaySpan, len(f.spans))
	copy(spans, f.spans)
	for i := range spans {
		spans[i].ImagePath = filepath.Join(outDir, filepath.Base(spans[i].ImagePath))
	}
	return spans, nil
}

func TestPlannerPersistsOverlays(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	poolDir := filepath.Join(testsupport.BaseDir(cfg), "pool")
	seedPool(t, poolDir, "clip.mp4")
	cfg.Background.PoolDir = poolDir

	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "Overlaid", "hello world")
	job.TimingJSON = timedSpans(t)
	job.NarrationMS = 900

	diagrams := &fakeDiagrams{out: []ollama.Diagram{{Mermaid: "graph TD; a-->b", Start: 0.1, End: 0.5}}}
	renderer := &fakeOverlayRenderer{spans: []compose.OverlaySpan{{ImagePath: "diagram_0.png", StartMS: 90, EndMS: 450, FadeMS: 300}}}

	p := NewPlannerWithDependencies(cfg, store, logging.NewNop(), staticProbe(5000), diagrams, renderer)
	if err := p.Execute(context.Background(), job); err != nil {
		t.Fatalf("execute: %v", err)
	}
	spans, err := overlays.DecodeSpans(job.OverlaysJSON)
	if err != nil {
		t.Fatalf("decode overlays: %v", err)
	}
	if len(spans) != 1 || spans[0].StartMS != 90 {
		t.Fatalf("unexpected overlay spans: %+v", spans)
	}
}

func TestPlannerDegradesWhenDiagramsFail(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	poolDir := filepath.Join(testsupport.BaseDir(cfg), "pool")
	seedPool(t, poolDir, "clip.mp4")
	cfg.Background.PoolDir = poolDir

	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "Degraded", "hello world")
	job.TimingJSON = timedSpans(t)
	job.NarrationMS = 900

	p := NewPlannerWithDependencies(cfg, store, logging.NewNop(), staticProbe(5000),
		&fakeDiagrams{err: errors.New("model offline")}, &fakeOverlayRenderer{})
	if err := p.Execute(context.Background(), job); err != nil {
		t.Fatalf("execute should degrade, got %v", err)
	}
	if job.OverlaysJSON != "" {
		t.Fatalf("expected no overlays, got %q", job.OverlaysJSON)
	}
}
