package imaging

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Transparent is the fill used for PNG canvases.
var Transparent = color.NRGBA{}

// White is the default fill for JPEG canvases.
var White = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// ParseColor parses an opaque "#RRGGBB" (or "#RGB") color.
//
// The keyword "white" is accepted as a shorthand for "#FFFFFF".
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "white") {
		return White, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}
