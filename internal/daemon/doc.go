// Package daemon coordinates the long-running generator process.
//
// It wires configuration, queue storage, the workflow manager, the HTTP
// API, and the retention scheduler into a single lifecycle with
// flock-based locking to prevent multiple instances. The daemon exposes
// queue maintenance helpers, accepts narration submissions, and emits
// dependency health summaries.
//
// Keep orchestration logic here: individual pipeline stages live in their
// respective packages while the daemon focuses on startup, shutdown, and
// high level coordination.
package daemon
