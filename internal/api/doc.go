// Package api defines the transport-friendly views of queue jobs and daemon
// state shared by the HTTP API, the IPC protocol, and the CLI renderers.
//
// Conversions live here so the wire shape stays stable when internal queue
// models grow new fields. The QueueService wraps read access behind a narrow
// store interface, letting the HTTP server and tests swap in lightweight
// fakes.
package api
