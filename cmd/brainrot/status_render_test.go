package main

import (
	"strings"
	"testing"
)

func TestRenderStatusLinePlain(t *testing.T) {
	line := renderStatusLine("Daemon", statusOK, "Running", false)
	if !strings.Contains(line, "Daemon:") {
		t.Fatalf("expected label in line: %q", line)
	}
	if !strings.Contains(line, "[OK] Running") {
		t.Fatalf("expected status text in line: %q", line)
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("expected no ANSI codes without colorize: %q", line)
	}
}

func TestRenderStatusLineColorized(t *testing.T) {
	line := renderStatusLine("Daemon", statusError, "", true)
	if !strings.HasPrefix(line, ansiRed) || !strings.HasSuffix(line, ansiReset) {
		t.Fatalf("expected red wrapping: %q", line)
	}
}

func TestStatusKindFromSeverity(t *testing.T) {
	cases := map[string]statusKind{
		"ok":      statusOK,
		"warn":    statusWarn,
		"WARNING": statusWarn,
		"error":   statusError,
		"info":    statusInfo,
		"":        statusInfo,
	}
	for input, want := range cases {
		if got := statusKindFromSeverity(input); got != want {
			t.Fatalf("statusKindFromSeverity(%q) = %d, want %d", input, got, want)
		}
	}
}

func TestRenderSectionHeader(t *testing.T) {
	lines := renderSectionHeader("Queue Status", false)
	if len(lines) != 2 {
		t.Fatalf("expected header and rule, got %d lines", len(lines))
	}
	if lines[0] != "== Queue Status ==" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if len(lines[1]) != len(lines[0]) {
		t.Fatalf("rule length %d does not match header length %d", len(lines[1]), len(lines[0]))
	}
}
