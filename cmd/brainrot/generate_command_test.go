package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveNarrationTextFromArg(t *testing.T) {
	text, err := resolveNarrationText([]string{"  The quick brown fox.  "}, "")
	if err != nil {
		t.Fatalf("resolveNarrationText: %v", err)
	}
	if text != "The quick brown fox." {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestResolveNarrationTextFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "narration.txt")
	if err := os.WriteFile(path, []byte("A story about nothing.\n"), 0o644); err != nil {
		t.Fatalf("write narration: %v", err)
	}

	text, err := resolveNarrationText(nil, path)
	if err != nil {
		t.Fatalf("resolveNarrationText: %v", err)
	}
	if text != "A story about nothing." {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestResolveNarrationTextRejectsBothSources(t *testing.T) {
	if _, err := resolveNarrationText([]string{"text"}, "file.txt"); err == nil {
		t.Fatal("expected error when both argument and file are given")
	}
}

func TestResolveNarrationTextRejectsEmpty(t *testing.T) {
	if _, err := resolveNarrationText(nil, ""); err == nil {
		t.Fatal("expected error without narration text")
	}
	if _, err := resolveNarrationText([]string{"   "}, ""); err == nil {
		t.Fatal("expected error for blank narration text")
	}

	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("  \n"), 0o644); err != nil {
		t.Fatalf("write narration: %v", err)
	}
	if _, err := resolveNarrationText(nil, path); err == nil {
		t.Fatal("expected error for empty narration file")
	}
}
