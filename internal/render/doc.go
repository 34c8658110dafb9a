// Package render is the core pipeline boundary: given narration audio,
// timing data, and a background pool, it produces the finished vertical
// video. Orchestration layers above it own queueing, staging directories,
// and library placement; render owns the stage sequence and never leaves
// partial output at the destination path.
package render
