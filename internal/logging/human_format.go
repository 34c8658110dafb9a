package logging

import (
	"fmt"
	"time"
)

// formatBytes renders a byte count with a binary-unit suffix for console
// display.
func formatBytes(value int64) string {
	const (
		kiB = 1024
		miB = kiB * 1024
		giB = miB * 1024
	)
	switch {
	case value >= giB:
		return fmt.Sprintf("%.2f GiB", float64(value)/float64(giB))
	case value >= miB:
		return fmt.Sprintf("%.2f MiB", float64(value)/float64(miB))
	case value >= kiB:
		return fmt.Sprintf("%.2f KiB", float64(value)/float64(kiB))
	default:
		return fmt.Sprintf("%d B", value)
	}
}

// formatDurationHuman renders a duration at a precision suited to its scale,
// keeping sub-second latencies readable in milliseconds.
func formatDurationHuman(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

// formatPercent renders a 0-100 scale percentage, matching the range
// progress reporters store in the queue.
func formatPercent(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}
