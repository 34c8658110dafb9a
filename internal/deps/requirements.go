package deps

import (
	"github.com/andigenesis/brainrot-generator/internal/config"
)

// Requirements returns the external binaries the pipeline needs for the
// given configuration. ffmpeg and ffprobe are mandatory; the narration
// engine is optional because missing word boundaries degrade to
// approximate caption timing rather than blocking renders. The diagram
// renderer only matters when overlays are enabled.
func Requirements(cfg *config.Config) []Requirement {
	reqs := []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Decodes backgrounds and encodes rendered frames",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Inspects media durations and streams",
		},
		{
			Name:        "Narration engine",
			Command:     cfg.TTSBinary(),
			Description: "Synthesizes narration audio with word boundaries",
			Optional:    true,
		},
	}
	if cfg.Overlays.Enabled {
		reqs = append(reqs, Requirement{
			Name:        "Diagram renderer",
			Command:     cfg.OverlayRendererBinary(),
			Description: "Renders mermaid diagrams for timed overlays",
			Optional:    true,
		})
	}
	return reqs
}
