// Package timing converts raw narration-engine word boundary events into a
// canonical, monotonic sequence of word spans in milliseconds.
//
// Engines report offsets and durations in 100-nanosecond ticks. Normalize
// rounds those to the nearest millisecond, clamps overlapping starts to the
// previous span's end, and drops empty or zero-duration events. When an
// engine supplies no boundary events at all, an approximate source splits
// the total narration duration across words proportionally to their
// character counts; results from that path are flagged so downstream
// consumers can surface the degraded mode.
package timing
