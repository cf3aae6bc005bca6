package main

import (
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/emgplot/pkg/colormap"
	"github.com/itohio/emgplot/pkg/scalebar"
)

// form holds the option widgets.
type form struct {
	csvPath  *widget.Entry
	output   *widget.Entry
	showOnly *widget.Check

	overlay   *widget.Check
	recording *widget.Entry
	channel   *widget.Entry

	stimulusColumn *widget.Entry
	colorMap       *widget.SelectEntry // Accepts reversed names
	cmin, cmax     *widget.Entry
	colorbar       *widget.Check

	color     *widget.Entry
	lineWidth *widget.Entry
	width     *widget.Entry
	height    *widget.Entry
	dpi       *widget.Entry

	hideAxes    *widget.Check
	transparent *widget.Check
	fixedY      *widget.Check

	tmin, tmax     *widget.Entry
	axesFile       *widget.Check
	scaleBars      *widget.Check
	scaleBarCorner *widget.Select

	tabs       *container.AppTabs
	overlayTab *container.TabItem
}

func newForm() *form {
	f := &form{
		csvPath:  widget.NewEntry(),
		output:   widget.NewEntry(),
		showOnly: widget.NewCheck("Show only (don't save)", nil),

		recording: widget.NewEntry(),
		channel:   widget.NewEntry(),

		stimulusColumn: widget.NewEntry(),
		colorMap:       widget.NewSelectEntry(colormap.Names()),
		cmin:           widget.NewEntry(),
		cmax:           widget.NewEntry(),
		colorbar:       widget.NewCheck("Show colorbar", nil),

		color:     widget.NewEntry(),
		lineWidth: widget.NewEntry(),
		width:     widget.NewEntry(),
		height:    widget.NewEntry(),
		dpi:       widget.NewEntry(),

		hideAxes:    widget.NewCheck("Hide axes", nil),
		transparent: widget.NewCheck("Transparent background", nil),
		fixedY:      widget.NewCheck("Fixed y-axis across recordings", nil),

		tmin:           widget.NewEntry(),
		tmax:           widget.NewEntry(),
		axesFile:       widget.NewCheck("Write scale reference (_axes.svg)", nil),
		scaleBars:      widget.NewCheck("Draw scale bars on trace", nil),
		scaleBarCorner: widget.NewSelect(scalebar.Corners(), nil),
	}
	f.csvPath.SetPlaceHolder("Select a CSV file")
	f.output.SetPlaceHolder("Output file (png, jpg, tif, svg, pdf, eps)")
	f.cmin.SetPlaceHolder("auto")
	f.cmax.SetPlaceHolder("auto")
	f.tmin.SetPlaceHolder("start")
	f.tmax.SetPlaceHolder("end")

	f.overlay = widget.NewCheck("Overlay all recordings", func(on bool) {
		f.setOverlay(on)
	})
	f.showOnly.OnChanged = func(on bool) {
		if on {
			f.output.Disable()
		} else {
			f.output.Enable()
		}
	}

	f.overlayTab = container.NewTabItem("Overlay", widget.NewForm(
		widget.NewFormItem("Stimulus column", f.stimulusColumn),
		widget.NewFormItem("Colormap", f.colorMap),
		widget.NewFormItem("Color min", f.cmin),
		widget.NewFormItem("Color max", f.cmax),
		widget.NewFormItem("", f.colorbar),
	))
	f.tabs = container.NewAppTabs(
		container.NewTabItem("Basic", widget.NewForm(
			widget.NewFormItem("", f.overlay),
			widget.NewFormItem("Recording", f.recording),
			widget.NewFormItem("Channel", f.channel),
		)),
		f.overlayTab,
		container.NewTabItem("Appearance", widget.NewForm(
			widget.NewFormItem("Line color", f.color),
			widget.NewFormItem("Line width (pt)", f.lineWidth),
			widget.NewFormItem("Width (in)", f.width),
			widget.NewFormItem("Height (in)", f.height),
			widget.NewFormItem("DPI", f.dpi),
			widget.NewFormItem("", f.hideAxes),
			widget.NewFormItem("", f.transparent),
			widget.NewFormItem("", f.fixedY),
		)),
		container.NewTabItem("Time & Axes", widget.NewForm(
			widget.NewFormItem("Time min (ms)", f.tmin),
			widget.NewFormItem("Time max (ms)", f.tmax),
			widget.NewFormItem("", f.axesFile),
			widget.NewFormItem("", f.scaleBars),
			widget.NewFormItem("Scale bar corner", f.scaleBarCorner),
		)),
	)
	return f
}

// setOverlay enables the overlay tab and disables single-trace fields.
func (f *form) setOverlay(on bool) {
	if on {
		f.tabs.EnableItem(f.overlayTab)
		f.recording.Disable()
		f.color.Disable()
		f.fixedY.Disable()
	} else {
		f.tabs.DisableItem(f.overlayTab)
		f.recording.Enable()
		f.color.Enable()
		f.fixedY.Enable()
	}
}

func (f *form) read() options {
	return options{
		CSVPath:        f.csvPath.Text,
		Output:         f.output.Text,
		ShowOnly:       f.showOnly.Checked,
		Overlay:        f.overlay.Checked,
		Recording:      f.recording.Text,
		Channel:        f.channel.Text,
		StimulusColumn: f.stimulusColumn.Text,
		ColorMap:       f.colorMap.Text,
		CMin:           f.cmin.Text,
		CMax:           f.cmax.Text,
		Colorbar:       f.colorbar.Checked,
		Color:          f.color.Text,
		LineWidth:      f.lineWidth.Text,
		Width:          f.width.Text,
		Height:         f.height.Text,
		DPI:            f.dpi.Text,
		HideAxes:       f.hideAxes.Checked,
		Transparent:    f.transparent.Checked,
		FixedY:         f.fixedY.Checked,
		TMin:           f.tmin.Text,
		TMax:           f.tmax.Text,
		AxesFile:       f.axesFile.Checked,
		ScaleBars:      f.scaleBars.Checked,
		ScaleBarCorner: f.scaleBarCorner.Selected,
	}
}

func (f *form) write(o options) {
	f.csvPath.SetText(o.CSVPath)
	f.output.SetText(o.Output)
	f.showOnly.SetChecked(o.ShowOnly)
	f.overlay.SetChecked(o.Overlay)
	f.recording.SetText(o.Recording)
	f.channel.SetText(o.Channel)
	f.stimulusColumn.SetText(o.StimulusColumn)
	f.colorMap.SetText(o.ColorMap)
	f.cmin.SetText(o.CMin)
	f.cmax.SetText(o.CMax)
	f.colorbar.SetChecked(o.Colorbar)
	f.color.SetText(o.Color)
	f.lineWidth.SetText(o.LineWidth)
	f.width.SetText(o.Width)
	f.height.SetText(o.Height)
	f.dpi.SetText(o.DPI)
	f.hideAxes.SetChecked(o.HideAxes)
	f.transparent.SetChecked(o.Transparent)
	f.fixedY.SetChecked(o.FixedY)
	f.tmin.SetText(o.TMin)
	f.tmax.SetText(o.TMax)
	f.axesFile.SetChecked(o.AxesFile)
	f.scaleBars.SetChecked(o.ScaleBars)
	f.scaleBarCorner.SetSelected(o.ScaleBarCorner)
	f.setOverlay(o.Overlay)
}
