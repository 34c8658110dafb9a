package overlays

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/andigenesis/brainrot-generator/internal/compose"
)

type wireSpan struct {
	ImagePath string `json:"image_path"`
	StartMS   int64  `json:"start_ms"`
	EndMS     int64  `json:"end_ms"`
	FadeMS    int64  `json:"fade_ms"`
}

// EncodeSpans serializes overlay spans for queue persistence.
func EncodeSpans(spans []compose.OverlaySpan) (string, error) {
	if len(spans) == 0 {
		return "", nil
	}
	wire := make([]wireSpan, 0, len(spans))
	for _, s := range spans {
		wire = append(wire, wireSpan{ImagePath: s.ImagePath, StartMS: s.StartMS, EndMS: s.EndMS, FadeMS: s.FadeMS})
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return "", fmt.Errorf("encode overlays: %w", err)
	}
	return string(data), nil
}

// DecodeSpans parses spans previously produced by EncodeSpans.
func DecodeSpans(raw string) ([]compose.OverlaySpan, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var wire []wireSpan
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, fmt.Errorf("decode overlays: %w", err)
	}
	spans := make([]compose.OverlaySpan, 0, len(wire))
	for _, w := range wire {
		spans = append(spans, compose.OverlaySpan{ImagePath: w.ImagePath, StartMS: w.StartMS, EndMS: w.EndMS, FadeMS: w.FadeMS})
	}
	return spans, nil
}
