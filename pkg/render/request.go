package render

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/itohio/emgplot/pkg/config"
	"github.com/itohio/emgplot/pkg/scalebar"
	"github.com/itohio/emgplot/pkg/trace"
)

// AxesSuffix is appended to the primary output's base name for the
// companion scale reference file.
const AxesSuffix = "_axes.svg"

// Mode selects between drawing one recording and overlaying all of them.
// It is either Single or Overlay.
type Mode interface {
	isMode()
}

// Single draws one recording in a fixed color.
type Single struct {
	Recording int
	Color     string
	FixedY    bool // Shared vertical range across the channel
}

// Overlay draws every recording of the channel colored by stimulus.
type Overlay struct {
	StimulusColumn string
	ColorMap       string
	CMin, CMax     *float64 // Overrides of the color scale bounds
	Colorbar       bool
}

func (Single) isMode()  {}
func (Overlay) isMode() {}

// Figure is the physical size of an output.
type Figure struct {
	Width, Height float64 // Inches
	DPI           int     // Raster formats only
}

// Labels name the axes. The parenthesized suffix ("Time (ms)") is the unit
// printed next to scale bars.
type Labels struct {
	X, Y string
}

// ScaleBars requests an L-shaped bracket drawn over the traces.
type ScaleBars struct {
	Corner scalebar.Corner
	Color  string
}

// Preview tunes the in-memory image produced when no output is set.
type Preview struct {
	DPI       int
	MaxPoints int // Per trace, 0 = all points
}

// Request is a single unit of rendering work.
type Request struct {
	CSVPath    string
	Channel    int
	TMin, TMax *float64 // Inclusive, nil = open
	Mode       Mode

	LineWidth   float64 // Points
	Figure      Figure
	HideAxes    bool
	Transparent bool
	Labels      Labels
	ScaleBars   *ScaleBars // nil = no on-trace scale bar

	AxesFile   bool
	AxesFigure Figure

	// Output is the primary file. Empty renders to Result.Image instead.
	Output  string
	Preview Preview
}

// NewRequest builds a request for csvPath from configured defaults.
func NewRequest(cfg *config.Config, csvPath string) (Request, error) {
	p := cfg.Plot
	req := Request{
		CSVPath:     csvPath,
		Channel:     p.Channel,
		LineWidth:   p.LineWidth,
		Figure:      Figure{Width: p.Width, Height: p.Height, DPI: p.DPI},
		HideAxes:    p.HideAxes,
		Transparent: p.Transparent,
		Labels:      Labels{X: p.XLabel, Y: p.YLabel},
		AxesFile:    cfg.AxesFile.Enabled,
		AxesFigure:  Figure{Width: cfg.AxesFile.Width, Height: cfg.AxesFile.Height, DPI: p.DPI},
		Preview:     Preview{DPI: cfg.Preview.DPI, MaxPoints: cfg.Preview.MaxPoints},
	}
	if p.Overlay {
		req.Mode = Overlay{
			StimulusColumn: p.StimulusColumn,
			ColorMap:       p.ColorMap,
			Colorbar:       p.ShowColorbar,
		}
	} else {
		req.Mode = Single{Recording: p.Recording, Color: p.Color, FixedY: p.FixedY}
	}
	if cfg.ScaleBar.OnTrace {
		corner, err := scalebar.ParseCorner(cfg.ScaleBar.Corner)
		if err != nil {
			return Request{}, err
		}
		req.ScaleBars = &ScaleBars{Corner: corner, Color: cfg.ScaleBar.Color}
	}
	return req, nil
}

// Validate checks the request for values no renderer could honor.
func (r Request) Validate() error {
	var errs []error
	if r.CSVPath == "" {
		errs = append(errs, errors.New("no CSV file given"))
	}
	switch m := r.Mode.(type) {
	case Single:
	case Overlay:
		if m.CMin != nil && m.CMax != nil && *m.CMin > *m.CMax {
			errs = append(errs, fmt.Errorf("color min %g is greater than color max %g", *m.CMin, *m.CMax))
		}
	default:
		errs = append(errs, errors.New("no trace mode selected"))
	}
	if !(r.LineWidth > 0) {
		errs = append(errs, fmt.Errorf("line width must be positive, got %g", r.LineWidth))
	}
	if err := r.Figure.validate("figure"); err != nil {
		errs = append(errs, err)
	}
	if r.Output != "" && !slices.Contains(Formats(), formatOf(r.Output)) {
		errs = append(errs, fmt.Errorf("unsupported output format %q (want one of %s)", formatOf(r.Output), strings.Join(Formats(), ", ")))
	}
	if r.AxesFile && r.Output != "" {
		if err := r.AxesFigure.validate("axes figure"); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Figure) validate(name string) error {
	if !(f.Width > 0) || !(f.Height > 0) {
		return fmt.Errorf("%s size must be positive, got %gx%g in", name, f.Width, f.Height)
	}
	if f.DPI <= 0 {
		return fmt.Errorf("%s DPI must be positive, got %d", name, f.DPI)
	}
	return nil
}

// stimulusColumn is the column a request needs, "" in single mode.
func (r Request) stimulusColumn() string {
	if m, ok := r.Mode.(Overlay); ok {
		if m.StimulusColumn == "" {
			return trace.DefaultStimulusColumn
		}
		return m.StimulusColumn
	}
	return ""
}

// AxesPath derives the companion axes file from the primary output:
// "out/trace.png" becomes "out/trace_axes.svg".
func AxesPath(output string) string {
	return strings.TrimSuffix(output, filepath.Ext(output)) + AxesSuffix
}
