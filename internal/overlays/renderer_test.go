package overlays

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/andigenesis/brainrot-generator/internal/services/ollama"
)

func TestRenderScalesWindows(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer("")
	r.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		// args: -i src -o png -b transparent
		return os.WriteFile(args[3], []byte("png"), 0o644)
	})

	diagrams := []ollama.Diagram{
		{Mermaid: "graph TD; A-->B", Start: 0.25, End: 0.5},
		{Mermaid: "graph TD; C-->D", Start: 0.5, End: 1.0},
	}
	spans, err := r.Render(context.Background(), diagrams, 20000, dir)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[0].StartMS != 5000 || spans[0].EndMS != 10000 {
		t.Fatalf("first span window = %d-%d", spans[0].StartMS, spans[0].EndMS)
	}
	if spans[1].EndMS != 20000 {
		t.Fatalf("second span end = %d", spans[1].EndMS)
	}
	if spans[0].FadeMS == 0 {
		t.Fatal("expected fade ramp on spans")
	}
}

func TestRenderSkipsFailedDiagrams(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer("")
	var call int
	r.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		call++
		if call == 1 {
			return errors.New("mmdc exploded")
		}
		return os.WriteFile(args[3], []byte("png"), 0o644)
	})

	diagrams := []ollama.Diagram{
		{Mermaid: "broken", Start: 0, End: 0.3},
		{Mermaid: "graph TD; A-->B", Start: 0.4, End: 0.8},
	}
	spans, err := r.Render(context.Background(), diagrams, 10000, dir)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
}

func TestRenderAllFailedReturnsError(t *testing.T) {
	r := NewRenderer("")
	r.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		return errors.New("mmdc exploded")
	})
	diagrams := []ollama.Diagram{{Mermaid: "broken", Start: 0, End: 0.5}}
	if _, err := r.Render(context.Background(), diagrams, 10000, t.TempDir()); err == nil {
		t.Fatal("expected error when every diagram fails")
	}
}

func TestRenderEmptyInput(t *testing.T) {
	r := NewRenderer("")
	spans, err := r.Render(context.Background(), nil, 10000, t.TempDir())
	if err != nil || spans != nil {
		t.Fatalf("expected nil, nil; got %v, %v", spans, err)
	}
}
