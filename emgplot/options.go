package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/itohio/emgplot/pkg/config"
	"github.com/itohio/emgplot/pkg/render"
)

// options mirrors the form fields. Numeric fields hold entry text.
type options struct {
	CSVPath  string
	Output   string
	ShowOnly bool

	Overlay   bool
	Recording string
	Channel   string

	StimulusColumn string
	ColorMap       string
	CMin, CMax     string
	Colorbar       bool

	Color     string
	LineWidth string
	Width     string
	Height    string
	DPI       string

	HideAxes    bool
	Transparent bool
	FixedY      bool

	TMin, TMax     string
	AxesFile       bool
	ScaleBars      bool
	ScaleBarCorner string
}

// optionsFromConfig fills the form from configured defaults.
func optionsFromConfig(cfg *config.Config) options {
	p := cfg.Plot
	return options{
		Overlay:        p.Overlay,
		Recording:      strconv.Itoa(p.Recording),
		Channel:        strconv.Itoa(p.Channel),
		StimulusColumn: p.StimulusColumn,
		ColorMap:       p.ColorMap,
		Colorbar:       p.ShowColorbar,
		Color:          p.Color,
		LineWidth:      formatFloat(p.LineWidth),
		Width:          formatFloat(p.Width),
		Height:         formatFloat(p.Height),
		DPI:            strconv.Itoa(p.DPI),
		HideAxes:       p.HideAxes,
		Transparent:    p.Transparent,
		FixedY:         p.FixedY,
		AxesFile:       cfg.AxesFile.Enabled,
		ScaleBars:      cfg.ScaleBar.OnTrace,
		ScaleBarCorner: cfg.ScaleBar.Corner,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// toConfig returns a copy of base with the form values applied. Every
// field error is reported.
func (o options) toConfig(base *config.Config) (*config.Config, error) {
	cfg := *base
	p := &cfg.Plot

	var errs []error
	parseInt := func(name, s string, dst *int) {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not an integer", name, s))
			return
		}
		*dst = v
	}
	parseFloat := func(name, s string, dst *float64) {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not a number", name, s))
			return
		}
		*dst = v
	}

	p.Overlay = o.Overlay
	parseInt("Recording", o.Recording, &p.Recording)
	parseInt("Channel", o.Channel, &p.Channel)
	p.StimulusColumn = strings.TrimSpace(o.StimulusColumn)
	p.ColorMap = strings.TrimSpace(o.ColorMap)
	p.ShowColorbar = o.Colorbar
	p.Color = strings.TrimSpace(o.Color)
	parseFloat("Line width", o.LineWidth, &p.LineWidth)
	parseFloat("Width", o.Width, &p.Width)
	parseFloat("Height", o.Height, &p.Height)
	parseInt("DPI", o.DPI, &p.DPI)
	p.HideAxes = o.HideAxes
	p.Transparent = o.Transparent
	p.FixedY = o.FixedY
	cfg.AxesFile.Enabled = o.AxesFile
	cfg.ScaleBar.OnTrace = o.ScaleBars
	if o.ScaleBarCorner != "" {
		cfg.ScaleBar.Corner = o.ScaleBarCorner
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// optionalFloat parses an optional entry; blank means unset.
func optionalFloat(name, s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not a number", name, s)
	}
	return &v, nil
}

// buildRequest validates the form and turns it into a render request.
// withOutput selects whether the output path is used; previews never
// write files.
func (o options) buildRequest(base *config.Config, withOutput bool) (render.Request, error) {
	if strings.TrimSpace(o.CSVPath) == "" {
		return render.Request{}, errors.New("please select a CSV file")
	}
	if _, err := os.Stat(o.CSVPath); err != nil {
		return render.Request{}, fmt.Errorf("CSV file not found: %s", o.CSVPath)
	}

	cfg, err := o.toConfig(base)
	if err != nil {
		return render.Request{}, err
	}
	req, err := render.NewRequest(cfg, o.CSVPath)
	if err != nil {
		return render.Request{}, err
	}

	var errs []error
	if req.TMin, err = optionalFloat("Time min", o.TMin); err != nil {
		errs = append(errs, err)
	}
	if req.TMax, err = optionalFloat("Time max", o.TMax); err != nil {
		errs = append(errs, err)
	}
	if m, ok := req.Mode.(render.Overlay); ok {
		if m.CMin, err = optionalFloat("Color min", o.CMin); err != nil {
			errs = append(errs, err)
		}
		if m.CMax, err = optionalFloat("Color max", o.CMax); err != nil {
			errs = append(errs, err)
		}
		req.Mode = m
	}
	if err := errors.Join(errs...); err != nil {
		return render.Request{}, err
	}

	if withOutput && !o.ShowOnly {
		req.Output = strings.TrimSpace(o.Output)
	}
	if err := req.Validate(); err != nil {
		return render.Request{}, err
	}
	return req, nil
}
