package edgetts

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/andigenesis/brainrot-generator/internal/timing"
)

const (
	// DefaultBinary is the edge-tts executable name.
	DefaultBinary = "edge-tts"
	// DefaultVoice is used when neither job nor config names one.
	DefaultVoice = "en-US-ChristopherNeural"

	audioFileName    = "narration.mp3"
	boundaryFileName = "narration.boundaries"
)

// Config holds edge-tts invocation settings.
type Config struct {
	Binary  string
	Voice   string
	Rate    string
	Timeout time.Duration
}

// Service drives narration synthesis through the edge-tts CLI.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates an edge-tts service with the given configuration.
func NewService(cfg Config) *Service {
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	if cfg.Voice == "" {
		cfg.Voice = DefaultVoice
	}
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Voice returns the configured default voice.
func (s *Service) Voice() string {
	return s.cfg.Voice
}

// HealthCheck reports whether the edge-tts binary is on PATH.
func (s *Service) HealthCheck(ctx context.Context) error {
	if _, err := exec.LookPath(s.cfg.Binary); err != nil {
		return fmt.Errorf("edge-tts binary %q not found: %w", s.cfg.Binary, err)
	}
	return nil
}

// Result describes one synthesis run. Events is empty when the engine
// produced no parseable word boundaries.
type Result struct {
	AudioPath    string
	BoundaryPath string
	Events       []timing.Event
}

// Synthesize renders text to narration audio in outDir. voice overrides the
// configured default when non-empty.
func (s *Service) Synthesize(ctx context.Context, text, voice, outDir string) (Result, error) {
	var result Result

	text = strings.TrimSpace(text)
	if text == "" {
		return result, fmt.Errorf("synthesize: narration text required")
	}
	if outDir == "" {
		return result, fmt.Errorf("synthesize: output directory required")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return result, fmt.Errorf("synthesize: ensure output dir: %w", err)
	}
	if voice == "" {
		voice = s.cfg.Voice
	}

	result.AudioPath = filepath.Join(outDir, audioFileName)
	result.BoundaryPath = filepath.Join(outDir, boundaryFileName)

	args := s.buildArgs(text, voice, result.AudioPath, result.BoundaryPath)
	if err := s.run(ctx, s.cfg.Binary, args...); err != nil {
		return Result{}, fmt.Errorf("edge-tts: %w", err)
	}
	if _, err := os.Stat(result.AudioPath); err != nil {
		return Result{}, fmt.Errorf("edge-tts produced no audio: %w", err)
	}

	// Boundary parse failures are not fatal: the caller falls back to
	// approximate timing.
	if events, err := ParseBoundaries(result.BoundaryPath); err == nil {
		result.Events = events
	}
	return result, nil
}

func (s *Service) buildArgs(text, voice, audioPath, boundaryPath string) []string {
	args := []string{
		"--text", text,
		"--voice", voice,
		"--write-media", audioPath,
		"--write-subtitles", boundaryPath,
		"--words-in-cue", "1",
	}
	if s.cfg.Rate != "" {
		args = append(args, "--rate", s.cfg.Rate)
	}
	return args
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
