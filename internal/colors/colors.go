// Package colors parses the hex color notation accepted by the formatting
// commands.
package colors

import (
	"fmt"
	"strconv"
	"strings"
)

// RGB is a color with components in [0,1], the range used by the Sheets and
// Slides APIs.
type RGB struct {
	Red   float64
	Green float64
	Blue  float64
}

// ParseHex parses "#RRGGBB", "RRGGBB", "#RGB" or "RGB".
func ParseHex(s string) (RGB, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("invalid hex color %q: expected #RRGGBB or #RGB", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}

	return RGB{
		Red:   float64((v>>16)&0xff) / 255,
		Green: float64((v>>8)&0xff) / 255,
		Blue:  float64(v&0xff) / 255,
	}, nil
}
