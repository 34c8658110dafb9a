// Package notifications delivers workflow events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Completion and error events honor per-category toggles so noisy
// queues can be silenced without losing failure alerts.
//
// Extend this package if you need alternative transports; all workflow code
// depends only on the simple Service interface.
package notifications
