// Package queue persists render jobs in SQLite and models their lifecycle.
//
// A job moves through paired stage statuses (transforming/transformed,
// narrating/narrated, planning/planned, composing/composed, muxing/muxed)
// before organizing places the final video in the library. Terminal states
// are completed, failed, review, and cancelled. The store keeps one row per
// job; there are no cross-table joins. To add new statuses or columns,
// update schema.sql and bump schemaVersion.
package queue
