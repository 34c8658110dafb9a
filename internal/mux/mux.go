// Package mux joins the rendered silent video with the narration audio
// into the final deliverable. The audio track is authoritative for output
// duration.
package mux

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/andigenesis/brainrot-generator/internal/media/ffmpeg"
	"github.com/andigenesis/brainrot-generator/internal/media/ffprobe"
)

// ErrMuxFailure marks any failure joining the video and audio tracks.
var ErrMuxFailure = errors.New("mux failure")

// durationToleranceMS bounds how far the muxed output may drift from the
// narration: one frame interval at the slowest supported rate.
const durationToleranceMS = 50

// Muxer drives ffmpeg to produce the final container and verifies the
// result against the narration duration.
type Muxer struct {
	runner        *ffmpeg.Runner
	ffprobeBinary string
	logger        *slog.Logger
}

func New(runner *ffmpeg.Runner, ffprobeBinary string, logger *slog.Logger) *Muxer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Muxer{runner: runner, ffprobeBinary: ffprobeBinary, logger: logger}
}

// Request names the inputs and output of one mux operation. FrameMS is the
// duration of one video frame, used to widen the verification tolerance.
type Request struct {
	VideoPath string
	AudioPath string
	OutPath   string
	FrameMS   int64
}

// Run validates the audio track, joins it with the rendered video, and
// checks the produced duration. Every failure wraps ErrMuxFailure.
func (m *Muxer) Run(ctx context.Context, req Request) error {
	audioMS, err := m.checkAudio(ctx, req.AudioPath)
	if err != nil {
		return err
	}

	args := ffmpeg.MuxArgs(req.VideoPath, req.AudioPath, audioMS, req.OutPath)
	if err := m.runner.Run(ctx, args); err != nil {
		return fmt.Errorf("%w: %v", ErrMuxFailure, err)
	}

	if err := m.verify(ctx, req.OutPath, audioMS, req.FrameMS); err != nil {
		os.Remove(req.OutPath)
		return err
	}

	m.logger.Info("muxed final video",
		slog.String("output", req.OutPath),
		slog.Int64("duration_ms", audioMS))
	return nil
}

// checkAudio confirms the narration file is readable and carries a nonzero
// audio stream, returning its duration.
func (m *Muxer) checkAudio(ctx context.Context, path string) (int64, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("%w: audio track unreadable: %v", ErrMuxFailure, err)
	}
	probe, err := ffprobe.Inspect(ctx, m.ffprobeBinary, path)
	if err != nil {
		return 0, fmt.Errorf("%w: probe audio track: %v", ErrMuxFailure, err)
	}
	if probe.AudioStreamCount() == 0 {
		return 0, fmt.Errorf("%w: %s has no audio stream", ErrMuxFailure, path)
	}
	audioMS := probe.DurationMS()
	if audioMS <= 0 {
		return 0, fmt.Errorf("%w: %s has zero duration", ErrMuxFailure, path)
	}
	return audioMS, nil
}

// verify re-probes the output and rejects it when its duration drifts more
// than one frame interval from the narration.
func (m *Muxer) verify(ctx context.Context, path string, audioMS, frameMS int64) error {
	probe, err := ffprobe.Inspect(ctx, m.ffprobeBinary, path)
	if err != nil {
		return fmt.Errorf("%w: probe output: %v", ErrMuxFailure, err)
	}
	return checkDrift(probe.DurationMS(), audioMS, frameMS)
}

func checkDrift(outMS, audioMS, frameMS int64) error {
	tolerance := frameMS
	if tolerance < durationToleranceMS {
		tolerance = durationToleranceMS
	}
	drift := outMS - audioMS
	if drift < 0 {
		drift = -drift
	}
	if drift > tolerance {
		return fmt.Errorf("%w: output runs %dms, narration %dms (drift %dms exceeds %dms)",
			ErrMuxFailure, outMS, audioMS, drift, tolerance)
	}
	return nil
}
