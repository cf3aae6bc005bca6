package render

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/itohio/emgplot/pkg/scalebar"
)

var _ plot.Plotter = (*scaleBarPlotter)(nil)

// scaleBarPlotter draws an L-shaped bracket with end ticks and length
// labels. Lengths are picked from the plot's final axis ranges.
type scaleBarPlotter struct {
	Corner    scalebar.Corner
	Inset     float64 // Fraction of each span
	Labels    Labels
	LineStyle draw.LineStyle
	TextStyle text.Style
	TickLen   vg.Length

	// Set during Plot for inspection.
	bar scalebar.Bar
}

func newScaleBarPlotter(p *plot.Plot, corner scalebar.Corner, inset float64, labels Labels, c color.Color, width vg.Length) *scaleBarPlotter {
	sty := p.X.Tick.Label
	sty.Color = c
	sty.Font.Size = vg.Points(9)
	return &scaleBarPlotter{
		Corner:    corner,
		Inset:     inset,
		Labels:    labels,
		LineStyle: draw.LineStyle{Color: c, Width: width},
		TextStyle: sty,
		TickLen:   vg.Points(4),
	}
}

// Plot implements plot.Plotter.
func (s *scaleBarPlotter) Plot(c draw.Canvas, p *plot.Plot) {
	xLen := scalebar.Nice(p.X.Max - p.X.Min)
	yLen := scalebar.Nice(p.Y.Max - p.Y.Min)
	s.bar = scalebar.Layout(s.Corner, s.Inset, p.X.Min, p.X.Max, p.Y.Min, p.Y.Max, xLen, yLen)

	trX, trY := p.Transforms(&c)
	ox, oy := trX(s.bar.OriginX), trY(s.bar.OriginY)
	xe, ye := trX(s.bar.XEnd), trY(s.bar.YEnd)

	c.StrokeLines(s.LineStyle, []vg.Point{{X: xe, Y: oy}, {X: ox, Y: oy}, {X: ox, Y: ye}})

	half := s.TickLen / 2
	c.StrokeLine2(s.LineStyle, xe, oy-half, xe, oy+half)
	c.StrokeLine2(s.LineStyle, ox-half, ye, ox+half, ye)

	pad := s.TickLen
	upper := s.Corner == scalebar.UpperLeft || s.Corner == scalebar.UpperRight
	right := s.Corner == scalebar.LowerRight || s.Corner == scalebar.UpperRight

	xs := s.TextStyle
	xs.XAlign = text.XCenter
	xy := oy - pad
	xs.YAlign = text.YTop
	if upper {
		xy = oy + pad
		xs.YAlign = text.YBottom
	}
	c.FillText(xs, vg.Point{X: (ox + xe) / 2, Y: xy}, scalebar.Format(s.bar.XLength, scalebar.Unit(s.Labels.X)))

	ys := s.TextStyle
	ys.Rotation = math.Pi / 2
	ys.XAlign = text.XCenter
	yx := ox - pad
	ys.YAlign = text.YBottom
	if right {
		yx = ox + pad
		ys.YAlign = text.YTop
	}
	c.FillText(ys, vg.Point{X: yx, Y: (oy + ye) / 2}, scalebar.Format(s.bar.YLength, scalebar.Unit(s.Labels.Y)))
}
