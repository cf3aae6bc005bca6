package render

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgeps"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"
)

// colorbarFraction is the share of the figure width given to the colorbar.
const colorbarFraction = 0.12

// figure is one or two plots sharing a canvas.
type figure struct {
	main     *plot.Plot
	colorbar *plot.Plot // Drawn to the right of main when set
}

func (f *figure) draw(c draw.Canvas) {
	if f.colorbar == nil {
		f.main.Draw(c)
		return
	}
	w := c.Max.X - c.Min.X
	cbw := w * colorbarFraction
	f.main.Draw(draw.Crop(c, 0, -cbw, 0, 0))
	f.colorbar.Draw(draw.Crop(c, w-cbw, 0, 0, 0))
}

// Formats lists the output extensions the renderer can write.
func Formats() []string {
	return []string{"png", "jpg", "jpeg", "tif", "tiff", "svg", "pdf", "eps"}
}

// formatOf returns the lower-case extension of path without the dot.
func formatOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// newCanvas creates a canvas for format. Raster canvases are filled with
// a transparent background unless transparent is false; JPEG has no alpha.
func newCanvas(format string, fig Figure, transparent bool) (vg.CanvasWriterTo, error) {
	w := vg.Length(fig.Width) * vg.Inch
	h := vg.Length(fig.Height) * vg.Inch

	bg := color.Color(color.White)
	if transparent && format != "jpg" && format != "jpeg" {
		bg = color.Transparent
	}
	raster := func() *vgimg.Canvas {
		return vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(fig.DPI), vgimg.UseBackgroundColor(bg))
	}

	switch format {
	case "png":
		return vgimg.PngCanvas{Canvas: raster()}, nil
	case "jpg", "jpeg":
		return vgimg.JpegCanvas{Canvas: raster()}, nil
	case "tif", "tiff":
		return vgimg.TiffCanvas{Canvas: raster()}, nil
	case "svg":
		return vgsvg.New(w, h), nil
	case "pdf":
		return vgpdf.New(w, h), nil
	case "eps":
		return vgeps.New(w, h), nil
	}
	return nil, fmt.Errorf("unsupported output format %q (want one of %s)", format, strings.Join(Formats(), ", "))
}

// writeFigure draws fig into a canvas matching path's extension and writes
// it, creating the parent directory first.
func writeFigure(path string, fig *figure, size Figure, transparent bool) error {
	c, err := newCanvas(formatOf(path), size, transparent)
	if err != nil {
		return err
	}
	fig.draw(draw.New(c))

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
