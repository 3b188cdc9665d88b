// Package preview maps between preview-pane and source-image coordinates.
package preview

import (
	"image"
	"math"

	"github.com/UnendingLoop/WatermarkDesk/internal/model"
	"github.com/disintegration/imaging"
)

// Viewport describes how the source image is fitted into the preview pane:
// one uniform, aspect-preserving scale factor k plus centering offsets.
// Upscaling (k > 1) and downscaling (k < 1) go through the same arithmetic.
type Viewport struct {
	srcW, srcH int
	k          float64
	offX, offY float64
}

// NewViewport computes the fit of a srcW x srcH image into a paneW x paneH
// pane. Zero or negative dimensions are treated as 1 so the mapping stays
// total; callers only build viewports once an image is loaded.
func NewViewport(paneW, paneH, srcW, srcH int) Viewport {
	if paneW < 1 {
		paneW = 1
	}
	if paneH < 1 {
		paneH = 1
	}
	if srcW < 1 {
		srcW = 1
	}
	if srcH < 1 {
		srcH = 1
	}

	kx := float64(paneW) / float64(srcW)
	ky := float64(paneH) / float64(srcH)
	k := kx
	if ky < kx {
		k = ky
	}

	return Viewport{
		srcW: srcW,
		srcH: srcH,
		k:    k,
		offX: (float64(paneW) - k*float64(srcW)) / 2,
		offY: (float64(paneH) - k*float64(srcH)) / 2,
	}
}

// Scale returns the uniform preview/source scale factor k.
func (v Viewport) Scale() float64 {
	return v.k
}

// SourcePoint maps a click in pane coordinates to source coordinates,
// truncating to whole pixels and clamping into the image bounds.
func (v Viewport) SourcePoint(px, py float64) image.Point {
	sx := int((px - v.offX) / v.k)
	sy := int((py - v.offY) / v.k)
	return model.ClampPoint(image.Pt(sx, sy), image.Rect(0, 0, v.srcW, v.srcH))
}

// PanePoint is the inverse of SourcePoint, used to place the click marker.
func (v Viewport) PanePoint(sx, sy int) (float64, float64) {
	return float64(sx)*v.k + v.offX, float64(sy)*v.k + v.offY
}

// DisplaySize returns the integer pixel size of the fitted raster inside
// the pane, never below 1x1. Rounding keeps the limiting dimension equal
// to the pane dimension even when k is not exactly representable.
func (v Viewport) DisplaySize() (int, int) {
	w := int(math.Round(v.k * float64(v.srcW)))
	h := int(math.Round(v.k * float64(v.srcH)))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// Fit renders img scaled (up or down) to fit the pane, preserving aspect
// ratio, for display. The target size comes from the viewport so the
// displayed raster and the click mapping agree to the pixel.
func Fit(img image.Image, paneW, paneH int) *image.NRGBA {
	b := img.Bounds()
	v := NewViewport(paneW, paneH, b.Dx(), b.Dy())
	w, h := v.DisplaySize()
	return imaging.Resize(img, w, h, imaging.Lanczos)
}
