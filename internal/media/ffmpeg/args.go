package ffmpeg

import (
	"fmt"
	"strconv"

	"github.com/andigenesis/brainrot-generator/internal/background"
)

// formatMS renders a millisecond count as a fractional-seconds argument.
func formatMS(ms int64) string {
	return strconv.FormatFloat(float64(ms)/1000.0, 'f', 3, 64)
}

// scaleCropFilter scales the input so it covers the target frame, then
// center-crops the longer dimension to the exact geometry.
func scaleCropFilter(width, height int) string {
	return fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,setsar=1",
		width, height, width, height,
	)
}

// PrepareBackgroundArgs builds the command that turns a selector plan into a
// silent backdrop clip of exactly the target duration at the output geometry.
// Looping plans replay the input seamlessly via -stream_loop before the tail
// trim; trimming plans seek to the planned offset first.
func PrepareBackgroundArgs(plan background.Plan, width, height, fps int, out string) []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-y"}
	if plan.Looped() {
		args = append(args, "-stream_loop", strconv.Itoa(plan.Loops-1))
	} else if plan.StartOffsetMS > 0 {
		args = append(args, "-ss", formatMS(plan.StartOffsetMS))
	}
	args = append(args,
		"-i", plan.Clip,
		"-t", formatMS(plan.TargetMS),
		"-vf", fmt.Sprintf("%s,fps=%d", scaleCropFilter(width, height), fps),
		"-an",
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "18",
		"-pix_fmt", "yuv420p",
		out,
	)
	return args
}

// DecodeFramesArgs builds the command that streams a prepared backdrop as
// raw RGBA frames on stdout, one fps-aligned frame at a time.
func DecodeFramesArgs(in string, width, height, fps int) []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-i", in,
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", strconv.Itoa(fps),
		"-",
	}
}

// EncodeFramesArgs builds the command that consumes composited raw RGBA
// frames on stdin and encodes them into the silent video track.
func EncodeFramesArgs(width, height, fps, crf int, preset, out string) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", strconv.Itoa(fps),
		"-i", "-",
		"-c:v", "libx264",
		"-preset", preset,
		"-crf", strconv.Itoa(crf),
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		out,
	}
}

// MuxArgs builds the command that joins the silent video track with the
// narration audio. The video is trimmed to the audio duration (-shortest)
// and audio is re-encoded to AAC for broad container support; audioMS caps
// the output so a short video track is not padded past the narration.
func MuxArgs(video, audio string, audioMS int64, out string) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", video,
		"-i", audio,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		"-t", formatMS(audioMS),
		"-shortest",
		"-movflags", "+faststart",
		out,
	}
}
