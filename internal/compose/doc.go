// Package compose renders output frames: the decoded backdrop frame, an
// optional timed overlay layer, and the caption block with the spoken word
// emphasized. Each frame is a pure function of its index and the immutable
// job state, so frames render in parallel across workers while a reorder
// buffer preserves strict index order into the encoder.
package compose
