package preview

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/chewxy/math32"

	"github.com/itohio/emgplot/pkg/render"
)

// Placeholder is shown until an image is set.
const Placeholder = "No preview rendered"

// Widget displays a rendered trace image scaled to fit, with a caption.
type Widget struct {
	widget.BaseWidget

	// Data (protected by mu)
	mu      sync.RWMutex
	img     image.Image
	caption string

	// Upper bound for MinSize
	maxMin fyne.Size
}

// New creates an empty preview. maxMin caps the minimum size requested for
// large images; zero dimensions mean 800x400.
func New(maxMin fyne.Size) *Widget {
	if maxMin.Width <= 0 {
		maxMin.Width = 800
	}
	if maxMin.Height <= 0 {
		maxMin.Height = 400
	}
	w := &Widget{maxMin: maxMin}
	w.ExtendBaseWidget(w)
	return w
}

// SetImage replaces the displayed image and caption.
// Call from the UI goroutine, e.g. via fyne.Do().
func (w *Widget) SetImage(img image.Image, caption string) {
	w.mu.Lock()
	w.img = img
	w.caption = caption
	w.mu.Unlock()

	w.Refresh()
}

// SetResult shows a render result's preview image with a generated caption.
func (w *Widget) SetResult(res *render.Result) {
	if res == nil {
		w.SetImage(nil, "")
		return
	}
	w.SetImage(res.Image, Caption(res))
}

// Image returns the displayed image, nil when empty.
func (w *Widget) Image() image.Image {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.img
}

// Caption returns the displayed caption.
func (w *Widget) Caption() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.caption
}

// fitSize scales an image of size img down to fit within bound, keeping
// the aspect ratio. Images smaller than bound keep their size.
func fitSize(img, bound fyne.Size) fyne.Size {
	if img.Width <= 0 || img.Height <= 0 {
		return fyne.NewSize(0, 0)
	}
	scale := math32.Min(1, math32.Min(bound.Width/img.Width, bound.Height/img.Height))
	return fyne.NewSize(math32.Floor(img.Width*scale), math32.Floor(img.Height*scale))
}

// CreateRenderer creates the widget renderer.
func (w *Widget) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.White)
	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillContain
	img.ScaleMode = canvas.ImageScaleSmooth

	placeholder := canvas.NewText(Placeholder, color.Gray{Y: 128})
	placeholder.Alignment = fyne.TextAlignCenter

	caption := canvas.NewText("", color.Gray{Y: 80})
	caption.TextSize = 11
	caption.Alignment = fyne.TextAlignTrailing

	r := &renderer{
		preview:     w,
		bg:          bg,
		img:         img,
		placeholder: placeholder,
		caption:     caption,
		objects:     []fyne.CanvasObject{bg, img, placeholder, caption},
	}
	r.Refresh()
	return r
}

// Caption summarizes a render result in one line.
func Caption(res *render.Result) string {
	if res == nil {
		return ""
	}
	points := 0
	for _, t := range res.Traces {
		points += t.Points
	}
	s := fmt.Sprintf("%d trace(s), %d points", len(res.Traces), points)
	if res.ColorbarLabel != "" || len(res.Traces) > 1 {
		s += fmt.Sprintf(", color %s - %s", formatValue(res.ColorMin), formatValue(res.ColorMax))
	}
	if res.FixedY {
		s += fmt.Sprintf(", y %s - %s", formatValue(res.YMin), formatValue(res.YMax))
	}
	return s
}

func formatValue(v float64) string {
	if math.Abs(v) < 0.001 {
		return "0"
	}
	return fmt.Sprintf("%.3g", v)
}
