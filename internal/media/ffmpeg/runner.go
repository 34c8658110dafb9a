package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/andigenesis/brainrot-generator/internal/logging"
)

// stderrTailLimit bounds how much ffmpeg stderr is kept for error reporting.
const stderrTailLimit = 4096

// Runner executes ffmpeg commands with captured stderr for diagnostics.
type Runner struct {
	binary string
	logger *slog.Logger
}

// NewRunner builds a runner for the given ffmpeg binary.
func NewRunner(binary string, logger *slog.Logger) *Runner {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &Runner{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "ffmpeg"),
	}
}

// Binary returns the configured executable name.
func (r *Runner) Binary() string {
	return r.binary
}

// Run executes ffmpeg with the given arguments and waits for completion.
func (r *Runner) Run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, r.binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &tailWriter{buf: &stderr}

	r.logger.Debug("running ffmpeg", logging.String("args", strings.Join(args, " ")))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", r.binary, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Process is one started ffmpeg invocation with an attached pipe.
type Process struct {
	cmd    *exec.Cmd
	pipe   io.Closer
	stderr *bytes.Buffer
	binary string
}

// StartWriter starts ffmpeg reading raw input from the returned pipe.
// The caller must close the writer before calling Wait.
func (r *Runner) StartWriter(ctx context.Context, args []string) (*Process, io.WriteCloser, error) {
	cmd := exec.CommandContext(ctx, r.binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &tailWriter{buf: &stderr}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("%s stdin pipe: %w", r.binary, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("start %s: %w", r.binary, err)
	}
	r.logger.Debug("started ffmpeg writer", logging.String("args", strings.Join(args, " ")))
	return &Process{cmd: cmd, pipe: stdin, stderr: &stderr, binary: r.binary}, stdin, nil
}

// StartReader starts ffmpeg writing raw output to the returned pipe.
func (r *Runner) StartReader(ctx context.Context, args []string) (*Process, io.ReadCloser, error) {
	cmd := exec.CommandContext(ctx, r.binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &tailWriter{buf: &stderr}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("%s stdout pipe: %w", r.binary, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("start %s: %w", r.binary, err)
	}
	r.logger.Debug("started ffmpeg reader", logging.String("args", strings.Join(args, " ")))
	return &Process{cmd: cmd, pipe: stdout, stderr: &stderr, binary: r.binary}, stdout, nil
}

// Wait closes the pipe if still open and waits for the process to exit.
func (p *Process) Wait() error {
	if p.pipe != nil {
		_ = p.pipe.Close()
		p.pipe = nil
	}
	if err := p.cmd.Wait(); err != nil {
		return fmt.Errorf("%s: %w: %s", p.binary, err, strings.TrimSpace(p.stderr.String()))
	}
	return nil
}

// Kill terminates the process without waiting for a clean exit.
func (p *Process) Kill() {
	if p.pipe != nil {
		_ = p.pipe.Close()
		p.pipe = nil
	}
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	_ = p.cmd.Wait()
}

// tailWriter keeps the last stderrTailLimit bytes written to it.
type tailWriter struct {
	buf *bytes.Buffer
}

func (w *tailWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	if w.buf.Len() > stderrTailLimit {
		trimmed := w.buf.Bytes()[w.buf.Len()-stderrTailLimit:]
		rest := append([]byte(nil), trimmed...)
		w.buf.Reset()
		w.buf.Write(rest)
	}
	return len(p), nil
}
