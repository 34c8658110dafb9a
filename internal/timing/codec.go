package timing

import (
	"encoding/json"
	"fmt"
	"strings"
)

type wireSpan struct {
	Text    string `json:"text"`
	StartMS int64  `json:"start_ms"`
	EndMS   int64  `json:"end_ms"`
}

// EncodeSpans serializes normalized spans for queue persistence.
func EncodeSpans(spans []WordSpan) (string, error) {
	wire := make([]wireSpan, 0, len(spans))
	for _, s := range spans {
		wire = append(wire, wireSpan{Text: s.Text, StartMS: s.StartMS, EndMS: s.EndMS})
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return "", fmt.Errorf("encode spans: %w", err)
	}
	return string(data), nil
}

// DecodeSpans parses spans previously produced by EncodeSpans.
func DecodeSpans(raw string) ([]WordSpan, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var wire []wireSpan
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, fmt.Errorf("decode spans: %w", err)
	}
	spans := make([]WordSpan, 0, len(wire))
	for _, w := range wire {
		spans = append(spans, WordSpan{Text: w.Text, StartMS: w.StartMS, EndMS: w.EndMS})
	}
	return spans, nil
}
