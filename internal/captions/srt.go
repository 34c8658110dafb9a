package captions

import (
	"fmt"
	"io"
	"strings"
)

// WriteSRT renders the timeline as a SubRip sidecar, one cue per caption
// block. Players show the same text the burned-in captions carry, minus the
// per-word emphasis.
func (t *Timeline) WriteSRT(w io.Writer) error {
	for i, block := range t.blocks {
		words := make([]string, 0, len(block.Words))
		for _, word := range block.Words {
			words = append(words, word.Text)
		}
		endMS := block.EndMS
		if i+1 < len(t.blocks) {
			// Hold the cue through the pause so players do not blank
			// between blocks.
			endMS = t.blocks[i+1].StartMS
		}
		_, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
			i+1,
			formatSRTTime(block.StartMS),
			formatSRTTime(endMS),
			strings.Join(words, " "),
		)
		if err != nil {
			return fmt.Errorf("write srt cue %d: %w", i+1, err)
		}
	}
	return nil
}

func formatSRTTime(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	hours := ms / 3_600_000
	minutes := (ms % 3_600_000) / 60_000
	seconds := (ms % 60_000) / 1000
	millis := ms % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}
