// color.go - Hex color parsing shared by every renderer.
package generator

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa" into a
// non-premultiplied color. The leading '#' is required, as in CSS.
func ParseColor(s string) (color.NRGBA, error) {
	hex, ok := strings.CutPrefix(strings.TrimSpace(s), "#")
	if !ok {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: missing '#'", s)
	}

	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6, 8:
	default:
		return color.NRGBA{}, fmt.Errorf("invalid color %q: expected 3, 6 or 8 hex digits", s)
	}

	var ch [4]uint8
	ch[3] = 0xff
	for i := 0; i < len(hex)/2; i++ {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		ch[i] = uint8(v)
	}

	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}

// ParseHexRGBA converts a hex string to color.NRGBA.
// Returns fallback on any parse error (safe default for rendering).
func ParseHexRGBA(hex string, fallback color.NRGBA) color.NRGBA {
	c, err := ParseColor(hex)
	if err != nil {
		return fallback
	}
	return c
}

// WithOpacity scales the alpha channel of c by opacity in [0,1].
func WithOpacity(c color.NRGBA, opacity float64) color.NRGBA {
	opacity = min(max(opacity, 0), 1)
	c.A = uint8(float64(c.A)*opacity + 0.5)
	return c
}

// IsColor reports whether s parses as a hex color.
func IsColor(s string) bool {
	_, err := ParseColor(s)
	return err == nil
}
