package colormap

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Single-letter color codes accepted alongside CSS names.
var shortNames = map[string]color.Color{
	"b": color.RGBA{B: 255, A: 255},
	"g": color.RGBA{G: 128, A: 255},
	"r": color.RGBA{R: 255, A: 255},
	"c": color.RGBA{G: 191, B: 191, A: 255},
	"m": color.RGBA{R: 191, B: 191, A: 255},
	"y": color.RGBA{R: 191, G: 191, A: 255},
	"k": color.RGBA{A: 255},
	"w": color.RGBA{R: 255, G: 255, B: 255, A: 255},
}

// Color resolves a trace color: a CSS/SVG color name ("gold"), a single
// letter code ("k"), or hex "#rrggbb" / "#rrggbbaa".
func Color(name string) (color.Color, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if strings.HasPrefix(key, "#") {
		return parseHex(key)
	}
	if c, ok := shortNames[key]; ok {
		return c, nil
	}
	if c, ok := colornames.Map[key]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("invalid color name %q", name)
}

func parseHex(s string) (color.Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return nil, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}
