package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/itohio/emgplot/pkg/config"
	"github.com/itohio/emgplot/pkg/render"
	"github.com/itohio/emgplot/pkg/scalebar"
)

// optFloat is a float flag that remembers whether it was given.
type optFloat struct {
	v   float64
	set bool
}

func (f *optFloat) String() string {
	if f == nil || !f.set {
		return ""
	}
	return strconv.FormatFloat(f.v, 'g', -1, 64)
}

func (f *optFloat) Set(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	f.v, f.set = v, true
	return nil
}

func (f *optFloat) ptr() *float64 {
	if !f.set {
		return nil
	}
	v := f.v
	return &v
}

// figSize parses "W,H" or "WxH" in inches.
type figSize struct {
	w, h float64
}

func (f *figSize) String() string {
	if f == nil || (f.w == 0 && f.h == 0) {
		return ""
	}
	return fmt.Sprintf("%g,%g", f.w, f.h)
}

func (f *figSize) Set(s string) error {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == 'x' || r == 'X' })
	if len(parts) != 2 {
		return fmt.Errorf("want W,H, got %q", s)
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return err
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return err
	}
	f.w, f.h = w, h
	return nil
}

// options holds parsed command line values. Only flags named in set
// override the configuration.
type options struct {
	csvPath string

	recording, channel int
	overlay            bool
	stimCol, cmap      string
	cmin, cmax         optFloat
	showColorbar       bool
	color              string
	lineWidth          float64
	width, height      float64
	figsize            figSize
	dpi                int
	tmin, tmax         optFloat
	noHideAxes         bool
	noTransparent      bool
	noFixedY           bool
	noAxesFile         bool
	scaleBars          bool
	scaleBarCorner     string
	info               bool
	configPath         string
	logLevel           string
	output             string

	set map[string]bool
}

func newFlagSet(o *options, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("plot-emg", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprintf(out, "Usage: plot-emg [flags] data.csv\n\nPlot EMG traces from a CSV export.\n\nFlags:\n")
		fs.PrintDefaults()
	}

	// Defaults are shown in usage only; unset flags leave the config alone.
	def := config.Default()
	intVar := func(p *int, short, long string, value int, usage string) {
		fs.IntVar(p, long, value, usage)
		fs.IntVar(p, short, value, "shorthand for -"+long)
	}
	intVar(&o.recording, "r", "recording", def.Plot.Recording, "Recording index to plot")
	intVar(&o.channel, "c", "channel", def.Plot.Channel, "Channel index to plot")
	fs.BoolVar(&o.overlay, "overlay", false, "Overlay all recordings colored by stimulus")
	fs.StringVar(&o.stimCol, "stim-col", def.Plot.StimulusColumn, "Stimulus column used for coloring")
	fs.StringVar(&o.cmap, "cmap", def.Plot.ColorMap, "Colormap for overlay mode (append _r to reverse)")
	fs.Var(&o.cmin, "cmin", "Lower bound of the color scale")
	fs.Var(&o.cmax, "cmax", "Upper bound of the color scale")
	fs.BoolVar(&o.showColorbar, "show-colorbar", false, "Draw a colorbar in overlay mode")
	fs.StringVar(&o.color, "color", def.Plot.Color, "Line color in single mode")
	fs.Float64Var(&o.lineWidth, "linewidth", def.Plot.LineWidth, "Line width in points")
	fs.Float64Var(&o.width, "width", def.Plot.Width, "Figure width in inches")
	fs.Float64Var(&o.height, "height", def.Plot.Height, "Figure height in inches")
	fs.Var(&o.figsize, "figsize", "Figure size as W,H in inches")
	fs.IntVar(&o.dpi, "dpi", def.Plot.DPI, "Raster output resolution")
	fs.Var(&o.tmin, "tmin", "Start of the time window (ms)")
	fs.Var(&o.tmax, "tmax", "End of the time window (ms)")
	fs.BoolVar(&o.noHideAxes, "no-hide-axes", false, "Draw axes, ticks and labels")
	fs.BoolVar(&o.noTransparent, "no-transparent", false, "Use a white background")
	fs.BoolVar(&o.noFixedY, "no-fixed-y", false, "Scale the vertical axis to the plotted recording only")
	fs.BoolVar(&o.noAxesFile, "no-axes-file", false, "Do not write the companion _axes.svg")
	fs.BoolVar(&o.scaleBars, "scale-bars", false, "Draw scale bars over the traces")
	fs.StringVar(&o.scaleBarCorner, "scale-bar-corner", def.ScaleBar.Corner, "Scale bar corner: "+strings.Join(scalebar.Corners(), ", "))
	fs.BoolVar(&o.info, "info", false, "Print a summary of the CSV and exit")
	fs.StringVar(&o.configPath, "config", "config.yaml", "Configuration file path")
	fs.StringVar(&o.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	fs.StringVar(&o.output, "o", "", "shorthand for -output")
	fs.StringVar(&o.output, "output", "", "Output file (png, jpg, tif, svg, pdf, eps); empty shows a preview window")
	return fs
}

// parseArgs parses args, allowing flags before and after the CSV path.
func parseArgs(args []string, out io.Writer) (*options, error) {
	o := &options{}
	fs := newFlagSet(o, out)

	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			break
		}
		positional = append(positional, args[0])
		args = args[1:]
	}

	switch len(positional) {
	case 0:
		return nil, errors.New("missing CSV file argument")
	case 1:
		o.csvPath = positional[0]
	default:
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(positional[1:], " "))
	}

	o.set = make(map[string]bool)
	aliases := map[string]string{"r": "recording", "c": "channel", "o": "output"}
	fs.Visit(func(f *flag.Flag) {
		name := f.Name
		if long, ok := aliases[name]; ok {
			name = long
		}
		o.set[name] = true
	})
	return o, nil
}

// apply overrides cfg with the flags that were given.
func (o *options) apply(cfg *config.Config) {
	p := &cfg.Plot
	if o.set["recording"] {
		p.Recording = o.recording
	}
	if o.set["channel"] {
		p.Channel = o.channel
	}
	if o.set["overlay"] {
		p.Overlay = o.overlay
	}
	if o.set["stim-col"] {
		p.StimulusColumn = o.stimCol
	}
	if o.set["cmap"] {
		p.ColorMap = o.cmap
	}
	if o.set["show-colorbar"] {
		p.ShowColorbar = o.showColorbar
	}
	if o.set["color"] {
		p.Color = o.color
	}
	if o.set["linewidth"] {
		p.LineWidth = o.lineWidth
	}
	if o.set["figsize"] {
		p.Width, p.Height = o.figsize.w, o.figsize.h
	}
	if o.set["width"] {
		p.Width = o.width
	}
	if o.set["height"] {
		p.Height = o.height
	}
	if o.set["dpi"] {
		p.DPI = o.dpi
	}
	if o.set["no-hide-axes"] {
		p.HideAxes = !o.noHideAxes
	}
	if o.set["no-transparent"] {
		p.Transparent = !o.noTransparent
	}
	if o.set["no-fixed-y"] {
		p.FixedY = !o.noFixedY
	}
	if o.set["no-axes-file"] {
		cfg.AxesFile.Enabled = !o.noAxesFile
	}
	if o.set["scale-bars"] {
		cfg.ScaleBar.OnTrace = o.scaleBars
	}
	if o.set["scale-bar-corner"] {
		cfg.ScaleBar.Corner = o.scaleBarCorner
	}
	if o.set["log-level"] {
		cfg.Log.Level = o.logLevel
	}
}

// request builds the render request for the parsed options.
func (o *options) request(cfg *config.Config) (render.Request, error) {
	req, err := render.NewRequest(cfg, o.csvPath)
	if err != nil {
		return render.Request{}, err
	}
	req.TMin = o.tmin.ptr()
	req.TMax = o.tmax.ptr()
	if m, ok := req.Mode.(render.Overlay); ok {
		m.CMin = o.cmin.ptr()
		m.CMax = o.cmax.ptr()
		req.Mode = m
	}
	req.Output = o.output
	return req, nil
}
