package colormap

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot/palette"
)

var _ palette.ColorMap = (*Normalized)(nil)

// Normalized maps data values in [min, max] onto a base colormap spanning
// [0, 1]. Values outside the range are clipped to the end colors and a
// collapsed range (min == max) always yields the low end.
type Normalized struct {
	base     palette.ColorMap
	min, max float64
}

// Normalize wraps base for the data range [vmin, vmax].
func Normalize(base palette.ColorMap, vmin, vmax float64) (*Normalized, error) {
	if math.IsNaN(vmin) || math.IsNaN(vmax) {
		return nil, fmt.Errorf("color scale bounds must be numbers, got [%g, %g]", vmin, vmax)
	}
	if vmin > vmax {
		return nil, fmt.Errorf("color scale min %g is greater than max %g", vmin, vmax)
	}
	return &Normalized{base: base, min: vmin, max: vmax}, nil
}

// Fraction is the position of v in [0, 1] after clipping.
func (n *Normalized) Fraction(v float64) float64 {
	if n.max == n.min {
		return 0
	}
	f := (v - n.min) / (n.max - n.min)
	return math.Max(0, math.Min(1, f))
}

// At returns the color for data value v.
func (n *Normalized) At(v float64) (color.Color, error) {
	if math.IsNaN(v) {
		return nil, palette.ErrNaN
	}
	return n.base.At(n.base.Min() + n.Fraction(v)*(n.base.Max()-n.base.Min()))
}

func (n *Normalized) Max() float64           { return n.max }
func (n *Normalized) Min() float64           { return n.min }
func (n *Normalized) SetMax(v float64)       { n.max = v }
func (n *Normalized) SetMin(v float64)       { n.min = v }
func (n *Normalized) Alpha() float64         { return n.base.Alpha() }
func (n *Normalized) SetAlpha(alpha float64) { n.base.SetAlpha(alpha) }

// Palette returns colors evenly spaced over the data range.
func (n *Normalized) Palette(colors int) palette.Palette {
	return sample(n, colors)
}
