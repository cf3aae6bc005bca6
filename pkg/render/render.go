package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/itohio/emgplot/pkg/colormap"
	"github.com/itohio/emgplot/pkg/scalebar"
	"github.com/itohio/emgplot/pkg/trace"
)

// axesInset keeps the companion file's bracket clear of its edges so the
// labels fit.
const axesInset = 0.25

// noStimulusColor draws overlay recordings without a numeric stimulus.
var noStimulusColor color.Color = colornames.Gray

// TraceInfo describes one drawn recording.
type TraceInfo struct {
	Recording int
	Stimulus  float64 // NaN in single mode
	Color     color.Color
	Points    int
}

// Result reports what a render produced.
type Result struct {
	Files  []string    // Written files, primary first
	Image  image.Image // Preview, set only when no output was requested
	Traces []TraceInfo

	ColorMin, ColorMax float64 // Overlay color scale
	FixedY             bool    // Fixed vertical scaling applied
	YMin, YMax         float64 // Fixed vertical limits when FixedY
	ColorbarLabel      string  // Empty without a colorbar
}

// Render loads the request's CSV, draws the selected traces and either
// writes the output files or returns a preview image. Errors are returned
// as they happen; nothing is retried or cleaned up.
func Render(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	logger := logrus.WithFields(logrus.Fields{"tag": "render", "csv": req.CSVPath, "channel": req.Channel})

	stimCol := req.stimulusColumn()
	table, err := trace.LoadFile(req.CSVPath, trace.LoadOptions{
		StimulusColumn:  stimCol,
		RequireStimulus: stimCol != "",
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	channelRows := table.Channel(req.Channel)
	selected := trace.Window(channelRows, req.TMin, req.TMax)
	preview := req.Output == ""

	res := &Result{}
	fig := &figure{main: newPlot(req)}

	// Rows the companion axes file is sized from.
	var axesRows []trace.Record

	switch m := req.Mode.(type) {
	case Single:
		c, err := colormap.Color(m.Color)
		if err != nil {
			return nil, err
		}
		rows := trace.Recording(selected, m.Recording)
		axesRows = rows
		if preview {
			rows = trace.Decimate(nil, rows, req.Preview.MaxPoints)
		}
		if err := addTrace(fig.main, rows, c, req.LineWidth); err != nil {
			return nil, err
		}
		res.Traces = append(res.Traces, TraceInfo{Recording: m.Recording, Stimulus: math.NaN(), Color: c, Points: len(rows)})

		if m.FixedY {
			if lo, hi, ok := trace.FixedYRange(channelRows); ok {
				fig.main.Y.Min, fig.main.Y.Max = lo, hi
				res.FixedY, res.YMin, res.YMax = true, lo, hi
			} else {
				logger.Debug("fixed y scaling disabled: channel amplitude range is empty or flat")
			}
		}

	case Overlay:
		cm, err := overlayColorMap(m, selected)
		if err != nil {
			return nil, err
		}
		res.ColorMin, res.ColorMax = cm.Min(), cm.Max()
		axesRows = selected

		var buf []trace.Record
		for _, g := range trace.GroupByRecording(selected) {
			var c color.Color = noStimulusColor
			if math.IsNaN(g.Stimulus) {
				logger.WithField("recording", g.Recording).Warn("recording has no stimulus value, drawing it in gray")
			} else if c, err = cm.At(g.Stimulus); err != nil {
				return nil, fmt.Errorf("recording %d: stimulus %g: %w", g.Recording, g.Stimulus, err)
			}
			rows := g.Rows
			if preview {
				buf = trace.Decimate(buf[:0], rows, req.Preview.MaxPoints)
				rows = buf
			}
			if err := addTrace(fig.main, rows, c, req.LineWidth); err != nil {
				return nil, err
			}
			res.Traces = append(res.Traces, TraceInfo{Recording: g.Recording, Stimulus: g.Stimulus, Color: c, Points: len(rows)})
		}

		if m.Colorbar {
			fig.colorbar = newColorbarPlot(req, cm, table.StimulusColumn)
			res.ColorbarLabel = table.StimulusColumn
		}
	}

	if req.TMin != nil {
		fig.main.X.Min = *req.TMin
	}
	if req.TMax != nil {
		fig.main.X.Max = *req.TMax
	}

	if req.ScaleBars != nil {
		c, err := colormap.Color(req.ScaleBars.Color)
		if err != nil {
			return nil, fmt.Errorf("scale bar: %w", err)
		}
		fig.main.Add(newScaleBarPlotter(fig.main, req.ScaleBars.Corner, scalebar.DefaultInset, req.Labels, c, vg.Points(req.LineWidth)))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if preview {
		size := req.Figure
		if req.Preview.DPI > 0 {
			size.DPI = req.Preview.DPI
		}
		res.Image = rasterize(fig, size, req.Transparent)
		logger.WithField("traces", len(res.Traces)).Debug("rendered preview")
		return res, nil
	}

	if err := writeFigure(req.Output, fig, req.Figure, req.Transparent); err != nil {
		return nil, err
	}
	res.Files = append(res.Files, req.Output)
	logger.WithFields(logrus.Fields{"output": req.Output, "traces": len(res.Traces)}).Info("saved EMG trace")

	if req.AxesFile {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		path := AxesPath(req.Output)
		if err := writeFigure(path, newAxesFigure(req, axesRows), req.AxesFigure, true); err != nil {
			return res, err
		}
		res.Files = append(res.Files, path)
		logger.WithField("output", path).Info("saved axes file")
	}

	return res, nil
}

// newPlot creates the trace plot with the request's decorations.
func newPlot(req Request) *plot.Plot {
	p := plot.New()
	if req.Transparent {
		p.BackgroundColor = color.Transparent
	}
	if req.HideAxes {
		p.HideAxes()
		p.X.Padding = 0
		p.Y.Padding = 0
	} else {
		p.X.Label.Text = req.Labels.X
		p.Y.Label.Text = req.Labels.Y
	}
	return p
}

// addTrace adds rows as a line. NaN or infinite samples split the line
// into separate segments. Nothing is added for empty rows.
func addTrace(p *plot.Plot, rows []trace.Record, c color.Color, width float64) error {
	for _, seg := range segments(rows) {
		line, err := plotter.NewLine(seg)
		if err != nil {
			return fmt.Errorf("failed to create trace line: %w", err)
		}
		line.LineStyle.Color = c
		line.LineStyle.Width = vg.Points(width)
		p.Add(line)
	}
	return nil
}

func segments(rows []trace.Record) []plotter.XYs {
	var (
		out []plotter.XYs
		cur plotter.XYs
	)
	for _, r := range rows {
		if !finite(r.TimePoint) || !finite(r.Amplitude) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: r.TimePoint, Y: r.Amplitude})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// overlayColorMap normalizes the chosen colormap over the stimulus range of
// rows, with explicit bounds taking precedence.
func overlayColorMap(m Overlay, rows []trace.Record) (*colormap.Normalized, error) {
	base, err := colormap.Lookup(m.ColorMap)
	if err != nil {
		return nil, err
	}
	vmin, vmax := trace.StimulusRange(rows)
	if m.CMin != nil {
		vmin = *m.CMin
	}
	if m.CMax != nil {
		vmax = *m.CMax
	}
	return colormap.Normalize(base, vmin, vmax)
}

// colorbarRange widens a collapsed range so the colorbar can be drawn.
// Colors still come from the collapsed map.
type colorbarRange struct {
	*colormap.Normalized
	lo, hi float64
}

func (c colorbarRange) Min() float64 { return c.lo }
func (c colorbarRange) Max() float64 { return c.hi }

func newColorbarPlot(req Request, cm *colormap.Normalized, label string) *plot.Plot {
	p := plot.New()
	if req.Transparent {
		p.BackgroundColor = color.Transparent
	}
	p.HideX()
	p.Y.Label.Text = label

	lo, hi := cm.Min(), cm.Max()
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	p.Add(&plotter.ColorBar{
		ColorMap: colorbarRange{Normalized: cm, lo: lo, hi: hi},
		Vertical: true,
	})
	return p
}

// newAxesFigure builds the standalone scale reference: a bracket sized
// from the filtered selection's own time and amplitude ranges.
func newAxesFigure(req Request, rows []trace.Record) *figure {
	p := plot.New()
	p.BackgroundColor = color.Transparent
	p.HideAxes()
	p.X.Padding = 0
	p.Y.Padding = 0

	xmin, xmax, ok := trace.TimeRange(rows)
	if !ok {
		xmin, xmax = 0, 1
	}
	ymin, ymax, ok := trace.AmplitudeRange(rows)
	if !ok {
		ymin, ymax = 0, 1
	}
	p.X.Min, p.X.Max = xmin, xmax
	p.Y.Min, p.Y.Max = ymin, ymax

	corner, c := scalebar.LowerLeft, color.Color(color.Black)
	if req.ScaleBars != nil {
		corner = req.ScaleBars.Corner
		if sc, err := colormap.Color(req.ScaleBars.Color); err == nil {
			c = sc
		}
	}
	p.Add(newScaleBarPlotter(p, corner, axesInset, req.Labels, c, vg.Points(req.LineWidth)))
	return &figure{main: p}
}

// rasterize draws fig into an in-memory image.
func rasterize(fig *figure, size Figure, transparent bool) image.Image {
	bg := color.Color(color.White)
	if transparent {
		bg = color.Transparent
	}
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(size.Width)*vg.Inch, vg.Length(size.Height)*vg.Inch),
		vgimg.UseDPI(size.DPI),
		vgimg.UseBackgroundColor(bg),
	)
	fig.draw(draw.New(c))
	return c.Image()
}
