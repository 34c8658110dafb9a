package config

import (
	"fmt"
	"image/color"
	"strings"
)

// ParseHexColor parses a #RRGGBB or #RGB hex string into an opaque RGBA color.
func ParseHexColor(value string) (color.RGBA, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(trimmed) {
	case 6:
		var r, g, b uint8
		if _, err := fmt.Sscanf(trimmed, "%02x%02x%02x", &r, &g, &b); err != nil {
			return color.RGBA{}, fmt.Errorf("invalid hex color %q", value)
		}
		return color.RGBA{R: r, G: g, B: b, A: 0xFF}, nil
	case 3:
		var r, g, b uint8
		if _, err := fmt.Sscanf(trimmed, "%01x%01x%01x", &r, &g, &b); err != nil {
			return color.RGBA{}, fmt.Errorf("invalid hex color %q", value)
		}
		return color.RGBA{R: r * 17, G: g * 17, B: b * 17, A: 0xFF}, nil
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", value)
	}
}
