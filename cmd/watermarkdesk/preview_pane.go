package main

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const markerRadius = 5

// previewPane shows the current composite and reports clicks in pane
// coordinates. A small red circle marks the last click, like the original
// canvas marker.
type previewPane struct {
	widget.BaseWidget

	img     *canvas.Image
	marker  *canvas.Circle
	overlay *fyne.Container
	minSize fyne.Size

	onTapped func(fyne.Position)
}

var _ fyne.Tappable = (*previewPane)(nil)

func newPreviewPane(onTapped func(fyne.Position)) *previewPane {
	p := &previewPane{
		img:      canvas.NewImageFromImage(image.NewNRGBA(image.Rect(0, 0, 1, 1))),
		marker:   canvas.NewCircle(color.NRGBA{R: 255, A: 255}),
		onTapped: onTapped,
	}
	p.img.FillMode = canvas.ImageFillContain
	p.marker.Hide()
	p.overlay = container.NewWithoutLayout(p.marker)
	p.ExtendBaseWidget(p)
	return p
}

func (p *previewPane) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewStack(p.img, p.overlay))
}

func (p *previewPane) Tapped(ev *fyne.PointEvent) {
	if p.onTapped != nil {
		p.onTapped(ev.Position)
	}
}

func (p *previewPane) SetMinSize(size fyne.Size) {
	p.minSize = size
	p.Refresh()
}

func (p *previewPane) MinSize() fyne.Size {
	base := p.BaseWidget.MinSize()
	return fyne.NewSize(fyne.Max(base.Width, p.minSize.Width), fyne.Max(base.Height, p.minSize.Height))
}

func (p *previewPane) SetImage(img image.Image) {
	p.img.Image = img
	p.img.Refresh()
}

func (p *previewPane) ShowMarker(x, y float32) {
	p.marker.Move(fyne.NewPos(x-markerRadius, y-markerRadius))
	p.marker.Resize(fyne.NewSize(2*markerRadius, 2*markerRadius))
	p.marker.Show()
	p.marker.Refresh()
}

func (p *previewPane) HideMarker() {
	p.marker.Hide()
	p.marker.Refresh()
}
