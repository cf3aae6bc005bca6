package colormap

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

// ReverseSuffix flips any named map, e.g. "inferno_r".
const ReverseSuffix = "_r"

// Perceptual maps interpolated in CIELAB by moreland.NewLuminance. Anchors
// are sampled at even steps and must increase in luminance.
var luminanceAnchors = map[string][]string{
	"viridis": {"#440154", "#482878", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"},
	"plasma":  {"#0d0887", "#46039f", "#7201a8", "#9c179e", "#bd3786", "#d8576b", "#ed7953", "#fb9f3a", "#fdca26", "#f0f921"},
	"inferno": {"#000004", "#1b0c41", "#4a0c6b", "#781c6d", "#a52c60", "#cf4446", "#ed6925", "#fb9b06", "#f7d13d", "#fcffa4"},
	"magma":   {"#000004", "#180f3d", "#440f76", "#721f81", "#9e2f7f", "#cd4071", "#f1605d", "#fd9668", "#feca8d", "#fcfdbf"},
	"hot":     {"#0b0000", "#ff0000", "#ffff00", "#ffffff"},
}

// Maps interpolated linearly in RGB between evenly spaced anchors.
var rampAnchors = map[string][]string{
	"cool":   {"#00ffff", "#ff00ff"},
	"spring": {"#ff00ff", "#ffff00"},
	"summer": {"#008066", "#ffff66"},
	"autumn": {"#ff0000", "#ffff00"},
	"winter": {"#0000ff", "#00ff80"},
	"gray":   {"#000000", "#ffffff"},
}

var builtins = map[string]func() palette.ColorMap{
	"coolwarm":  func() palette.ColorMap { return moreland.SmoothBlueRed() },
	"blackbody": moreland.BlackBody,
	"kindlmann": moreland.Kindlmann,
}

// Names lists the known colormap names without the reverse suffix.
func Names() []string {
	var names []string
	for n := range luminanceAnchors {
		names = append(names, n)
	}
	for n := range rampAnchors {
		names = append(names, n)
	}
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named colormap spanning [0, 1].
func Lookup(name string) (palette.ColorMap, error) {
	name = strings.TrimSpace(name)
	base, reverse := strings.CutSuffix(name, ReverseSuffix)

	var (
		cm  palette.ColorMap
		err error
	)
	switch {
	case luminanceAnchors[base] != nil:
		cm, err = newLuminance(luminanceAnchors[base])
	case rampAnchors[base] != nil:
		cm, err = newRamp(rampAnchors[base])
	case builtins[base] != nil:
		cm = builtins[base]()
	default:
		return nil, fmt.Errorf("unknown colormap %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("colormap %q: %w", name, err)
	}

	cm.SetMax(1)
	cm.SetMin(0)
	if reverse {
		cm = palette.Reverse(cm)
	}
	return cm, nil
}

func newLuminance(anchors []string) (palette.ColorMap, error) {
	controls, err := parseAll(anchors)
	if err != nil {
		return nil, err
	}
	return moreland.NewLuminance(controls)
}

func parseAll(anchors []string) ([]color.Color, error) {
	controls := make([]color.Color, len(anchors))
	for i, a := range anchors {
		c, err := parseHex(a)
		if err != nil {
			return nil, err
		}
		controls[i] = c
	}
	return controls, nil
}

// ramp is a palette.ColorMap interpolating linearly between evenly spaced
// anchors in 8-bit RGB.
type ramp struct {
	anchors  []color.NRGBA
	min, max float64
	alpha    float64
}

func newRamp(anchors []string) (*ramp, error) {
	controls, err := parseAll(anchors)
	if err != nil {
		return nil, err
	}
	r := &ramp{max: 1, alpha: 1}
	for _, c := range controls {
		r.anchors = append(r.anchors, color.NRGBAModel.Convert(c).(color.NRGBA))
	}
	return r, nil
}

func (r *ramp) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case r.max == r.min:
		return nil, errors.New("colormap: min equals max")
	case v < r.min:
		return nil, palette.ErrUnderflow
	case v > r.max:
		return nil, palette.ErrOverflow
	}
	pos := (v - r.min) / (r.max - r.min) * float64(len(r.anchors)-1)
	i := int(pos)
	if i >= len(r.anchors)-1 {
		i = len(r.anchors) - 2
	}
	f := pos - float64(i)
	a, b := r.anchors[i], r.anchors[i+1]
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + f*(float64(y)-float64(x))))
	}
	return color.NRGBA{
		R: lerp(a.R, b.R),
		G: lerp(a.G, b.G),
		B: lerp(a.B, b.B),
		A: uint8(math.Round(255 * r.alpha)),
	}, nil
}

func (r *ramp) Max() float64           { return r.max }
func (r *ramp) Min() float64           { return r.min }
func (r *ramp) SetMax(v float64)       { r.max = v }
func (r *ramp) SetMin(v float64)       { r.min = v }
func (r *ramp) Alpha() float64         { return r.alpha }
func (r *ramp) SetAlpha(alpha float64) { r.alpha = alpha }

func (r *ramp) Palette(colors int) palette.Palette {
	return sample(r, colors)
}

// sample draws n evenly spaced colors from cm.
func sample(cm palette.ColorMap, n int) palette.Palette {
	p := plainPalette(make([]color.Color, n))
	for i := range n {
		v := cm.Min()
		if n > 1 {
			v += (cm.Max() - cm.Min()) * float64(i) / float64(n-1)
		}
		c, err := cm.At(v)
		if err != nil {
			c = color.Transparent
		}
		p[i] = c
	}
	return p
}

type plainPalette []color.Color

func (p plainPalette) Colors() []color.Color { return p }
