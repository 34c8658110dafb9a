// Package ffmpeg builds argument lists for the ffmpeg invocations the render
// pipeline needs (backdrop preparation, raw-frame decode, frame-sequence
// encode, and the final mux) and runs them with captured diagnostics.
//
// Argument construction is kept separate from execution so the exact
// command lines are unit-testable without spawning processes.
package ffmpeg
