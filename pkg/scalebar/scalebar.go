// Package scalebar sizes and places L-shaped scale bars that stand in for
// labeled axes on EMG trace figures.
package scalebar

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultLength is returned for spans that cannot be measured.
const DefaultLength = 1.0

// Candidate lengths per order of magnitude, ascending. Spans at or above a
// bracket's floor pick from its candidates.
var brackets = []struct {
	floor      float64
	candidates []float64
}{
	{100, []float64{100, 200, 500}},
	{10, []float64{10, 20, 50}},
	{1, []float64{1, 2, 5}},
	{0.1, []float64{0.1, 0.2, 0.5}},
	{math.Inf(-1), []float64{0.01, 0.02, 0.05}},
}

// Candidates returns the candidate set Nice chooses from for span.
func Candidates(span float64) []float64 {
	for _, b := range brackets {
		if span >= b.floor {
			return b.candidates
		}
	}
	return brackets[len(brackets)-1].candidates
}

// Nice picks a round reference length of roughly a quarter of span: the
// smallest candidate of span's bracket that is at least half the target, or the
// bracket's largest candidate when none is.
func Nice(span float64) float64 {
	if !(span > 0) || math.IsInf(span, 0) {
		return DefaultLength
	}
	target := span / 4
	candidates := Candidates(span)
	for _, c := range candidates {
		if c >= target/2 {
			return c
		}
	}
	return candidates[len(candidates)-1]
}

// Unit extracts the unit from a label's trailing parenthesized part:
// "Time (ms)" gives "ms". Labels without one give "".
func Unit(label string) string {
	open := strings.LastIndex(label, "(")
	if open < 0 {
		return ""
	}
	end := strings.Index(label[open:], ")")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(label[open+1 : open+end])
}

// Format renders a bar length with its unit, e.g. "20 ms".
func Format(length float64, unit string) string {
	text := strconv.FormatFloat(length, 'g', -1, 64)
	if unit == "" {
		return text
	}
	return text + " " + unit
}

// Corner selects where the bracket is anchored inside the data area.
type Corner int

const (
	LowerLeft Corner = iota
	LowerRight
	UpperLeft
	UpperRight
)

var cornerNames = []string{"lower-left", "lower-right", "upper-left", "upper-right"}

func (c Corner) String() string {
	if c < 0 || int(c) >= len(cornerNames) {
		return fmt.Sprintf("Corner(%d)", int(c))
	}
	return cornerNames[c]
}

// Corners lists the accepted corner names.
func Corners() []string {
	return append([]string(nil), cornerNames...)
}

// ParseCorner maps a corner name to a Corner. Empty means LowerLeft.
func ParseCorner(name string) (Corner, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return LowerLeft, nil
	}
	for i, n := range cornerNames {
		if n == name {
			return Corner(i), nil
		}
	}
	return 0, fmt.Errorf("unknown scale bar corner %q (want one of %s)", name, strings.Join(cornerNames, ", "))
}

// DefaultInset is the fraction of each span kept between the bracket and the
// edge of the data area.
const DefaultInset = 0.05

// Bar is the data-space geometry of an L-shaped bracket. Origin is the
// elbow; XEnd closes the horizontal arm and YEnd the vertical arm.
type Bar struct {
	OriginX, OriginY float64
	XEnd, YEnd       float64
	XLength, YLength float64
	Corner           Corner
}

// Layout places a bracket with arms xLen and yLen at corner of the box
// [xmin,xmax]x[ymin,ymax], inset by a fraction of each span. Arms always
// point into the box.
func Layout(corner Corner, inset, xmin, xmax, ymin, ymax, xLen, yLen float64) Bar {
	dx := inset * (xmax - xmin)
	dy := inset * (ymax - ymin)
	b := Bar{XLength: xLen, YLength: yLen, Corner: corner}

	switch corner {
	case LowerRight, UpperRight:
		b.OriginX = xmax - dx
		b.XEnd = b.OriginX - xLen
	default:
		b.OriginX = xmin + dx
		b.XEnd = b.OriginX + xLen
	}
	switch corner {
	case UpperLeft, UpperRight:
		b.OriginY = ymax - dy
		b.YEnd = b.OriginY - yLen
	default:
		b.OriginY = ymin + dy
		b.YEnd = b.OriginY + yLen
	}
	return b
}
