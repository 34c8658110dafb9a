// Package captions groups normalized word spans into fixed-size display
// blocks and resolves, for any playback timestamp, which block is on screen
// and which word within it is being spoken.
//
// Timelines are built once per render job and are read-only afterward;
// Resolve is a pure function of the timestamp, which keeps frame rendering
// deterministic and safe to parallelize.
package captions
