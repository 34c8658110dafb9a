// Package overlays renders mermaid diagram sources into PNG overlay images
// and times them against the narration.
package overlays

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/andigenesis/brainrot-generator/internal/compose"
	"github.com/andigenesis/brainrot-generator/internal/services/ollama"
)

// DefaultBinary is the mermaid CLI executable name.
const DefaultBinary = "mmdc"

// fadeMS is the overlay fade in/out ramp.
const fadeMS = 300

// Renderer drives the mermaid CLI to produce overlay PNGs.
type Renderer struct {
	binary        string
	commandRunner func(ctx context.Context, name string, args ...string) error
}

func NewRenderer(binary string) *Renderer {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Renderer{binary: binary}
}

// WithCommandRunner sets a custom command runner (for testing).
func (r *Renderer) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	r.commandRunner = runner
}

// HealthCheck reports whether the mermaid CLI is on PATH.
func (r *Renderer) HealthCheck(ctx context.Context) error {
	if _, err := exec.LookPath(r.binary); err != nil {
		return fmt.Errorf("mermaid binary %q not found: %w", r.binary, err)
	}
	return nil
}

// Render writes each diagram source to outDir, renders it to a transparent
// PNG, and returns overlay spans with the windows scaled to totalMS.
// Diagrams that fail to render are skipped; an error is returned only when
// nothing rendered at all and at least one diagram was requested.
func (r *Renderer) Render(ctx context.Context, diagrams []ollama.Diagram, totalMS int64, outDir string) ([]compose.OverlaySpan, error) {
	if len(diagrams) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("overlays: ensure output dir: %w", err)
	}

	var spans []compose.OverlaySpan
	var lastErr error
	for i, d := range diagrams {
		srcPath := filepath.Join(outDir, fmt.Sprintf("diagram_%d.mmd", i))
		pngPath := filepath.Join(outDir, fmt.Sprintf("diagram_%d.png", i))
		if err := os.WriteFile(srcPath, []byte(d.Mermaid), 0o644); err != nil {
			return spans, fmt.Errorf("overlays: write diagram source: %w", err)
		}
		if err := r.run(ctx, srcPath, pngPath); err != nil {
			lastErr = err
			continue
		}
		if _, err := os.Stat(pngPath); err != nil {
			lastErr = fmt.Errorf("overlays: diagram %d produced no image: %w", i, err)
			continue
		}
		spans = append(spans, compose.OverlaySpan{
			ImagePath: pngPath,
			StartMS:   int64(d.Start * float64(totalMS)),
			EndMS:     int64(d.End * float64(totalMS)),
			FadeMS:    fadeMS,
		})
	}
	if len(spans) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return spans, nil
}

func (r *Renderer) run(ctx context.Context, srcPath, pngPath string) error {
	args := []string{"-i", srcPath, "-o", pngPath, "-b", "transparent"}
	if r.commandRunner != nil {
		return r.commandRunner(ctx, r.binary, args...)
	}
	cmd := exec.CommandContext(ctx, r.binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", r.binary, err, strings.TrimSpace(string(output)))
	}
	return nil
}
