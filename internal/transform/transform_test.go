package transform

import (
	"context"
	"errors"
	"testing"

	"github.com/andigenesis/brainrot-generator/internal/logging"
	"github.com/andigenesis/brainrot-generator/internal/services"
	"github.com/andigenesis/brainrot-generator/internal/testsupport"
)

type fakeRewriter struct {
	out string
	err error
}

func (f *fakeRewriter) RewriteNarration(context.Context, string) (string, error) {
	return f.out, f.err
}

func (f *fakeRewriter) HealthCheck(context.Context) error { return nil }

func TestTransformerRewritesNarration(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "", "the roman empire fell. nobody noticed")

	tr := NewTransformerWithRewriter(cfg, store, logging.NewNop(), &fakeRewriter{out: "POV: Rome just fell"})
	if err := tr.Execute(context.Background(), job); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if job.NarrationText != "POV: Rome just fell" {
		t.Fatalf("narration not rewritten: %q", job.NarrationText)
	}
	if !job.TransformApplied {
		t.Fatal("expected transform_applied to be set")
	}
	if job.Title != "The Roman Empire Fell" {
		t.Fatalf("expected derived title, got %q", job.Title)
	}
	if job.ProgressPercent != 10 {
		t.Fatalf("expected progress 10, got %v", job.ProgressPercent)
	}
}

func TestTransformerKeepsOriginalOnRewriteFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "Kept", "original words stay")

	tr := NewTransformerWithRewriter(cfg, store, logging.NewNop(), &fakeRewriter{err: errors.New("model offline")})
	if err := tr.Execute(context.Background(), job); err != nil {
		t.Fatalf("execute should not fail when rewrite is unavailable: %v", err)
	}
	if job.NarrationText != "original words stay" {
		t.Fatalf("narration should be unchanged, got %q", job.NarrationText)
	}
	if job.TransformApplied {
		t.Fatal("transform_applied should be false")
	}
}

func TestTransformerDisabledPassesThrough(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Transform.Enabled = false
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "Plain", "no rewrite requested")

	tr := NewTransformer(cfg, store, logging.NewNop())
	if err := tr.Execute(context.Background(), job); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if job.TransformApplied {
		t.Fatal("transform_applied should be false when disabled")
	}
	if health := tr.HealthCheck(context.Background()); !health.Ready {
		t.Fatal("disabled transform should be healthy")
	}
}

func TestTransformerRejectsEmptyNarration(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "Empty", "placeholder")
	job.NarrationText = "   "

	tr := NewTransformerWithRewriter(cfg, store, logging.NewNop(), nil)
	err := tr.Execute(context.Background(), job)
	if err == nil {
		t.Fatal("expected error for empty narration")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
