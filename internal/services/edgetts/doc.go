// Package edgetts adapts the edge-tts command line tool for narration
// synthesis. It produces an MP3 plus word boundary events used for caption
// synchronization. Engines or invocations that yield no usable boundaries
// leave Events empty; callers then fall back to approximate timing derived
// from the audio duration.
package edgetts
