package preview

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

// renderer renders the preview widget.
type renderer struct {
	preview *Widget

	bg          *canvas.Rectangle
	img         *canvas.Image
	placeholder *canvas.Text
	caption     *canvas.Text

	objects []fyne.CanvasObject
}

// MinSize returns the image size capped by the widget's bound.
func (r *renderer) MinSize() fyne.Size {
	r.preview.mu.RLock()
	img := r.preview.img
	bound := r.preview.maxMin
	r.preview.mu.RUnlock()

	if img == nil {
		return fyne.NewSize(320, 160)
	}
	b := img.Bounds()
	fit := fitSize(fyne.NewSize(float32(b.Dx()), float32(b.Dy())), bound)
	return fit.Add(fyne.NewSize(0, r.caption.MinSize().Height))
}

// Layout arranges the image above the caption line.
func (r *renderer) Layout(size fyne.Size) {
	r.bg.Resize(size)

	capH := r.caption.MinSize().Height
	imgSize := fyne.NewSize(size.Width, size.Height-capH)
	if imgSize.Height < 0 {
		imgSize.Height = 0
	}
	r.img.Move(fyne.NewPos(0, 0))
	r.img.Resize(imgSize)

	r.placeholder.Move(fyne.NewPos(0, (imgSize.Height-r.placeholder.MinSize().Height)/2))
	r.placeholder.Resize(fyne.NewSize(size.Width, r.placeholder.MinSize().Height))

	r.caption.Move(fyne.NewPos(0, size.Height-capH))
	r.caption.Resize(fyne.NewSize(size.Width-4, capH))
}

// Refresh updates the image and caption from the widget state.
func (r *renderer) Refresh() {
	r.preview.mu.RLock()
	img := r.preview.img
	caption := r.preview.caption
	r.preview.mu.RUnlock()

	r.img.Image = img
	r.caption.Text = caption
	if img == nil {
		r.img.Hide()
		r.placeholder.Show()
	} else {
		r.img.Show()
		r.placeholder.Hide()
	}

	r.img.Refresh()
	r.caption.Refresh()
	r.placeholder.Refresh()
	r.Layout(r.preview.Size())
}

// Objects returns all canvas objects for rendering.
func (r *renderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *renderer) Destroy() {
	// Cleanup handled by Fyne
}
