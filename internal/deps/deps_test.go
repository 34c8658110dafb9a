package deps

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/andigenesis/brainrot-generator/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}

	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}

	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
}

func TestRequirementsIncludesOverlayRendererWhenEnabled(t *testing.T) {
	cfg := config.Default()
	cfg.Overlays.Enabled = false
	base := Requirements(&cfg)
	for _, req := range base {
		if req.Name == "Diagram renderer" {
			t.Fatal("diagram renderer should not be required when overlays are disabled")
		}
	}

	cfg.Overlays.Enabled = true
	withOverlays := Requirements(&cfg)
	if len(withOverlays) != len(base)+1 {
		t.Fatalf("expected one extra requirement, got %d vs %d", len(withOverlays), len(base))
	}
	last := withOverlays[len(withOverlays)-1]
	if last.Command != "mmdc" || !last.Optional {
		t.Fatalf("unexpected diagram renderer requirement: %#v", last)
	}
}
