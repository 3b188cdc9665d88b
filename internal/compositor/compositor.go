// Package compositor renders watermark layers onto source images.
package compositor

import (
	"image"

	"github.com/UnendingLoop/WatermarkDesk/internal/fontlib"
	"github.com/UnendingLoop/WatermarkDesk/internal/model"
	"github.com/disintegration/imaging"
)

type Compositor struct {
	fonts  *fontlib.Library
	margin int // inset from the bottom-right edge for the default placement
}

func New(fonts *fontlib.Library, margin int) *Compositor {
	if margin < 0 {
		margin = 0
	}
	return &Compositor{fonts: fonts, margin: margin}
}

// Render produces a new raster with the watermark applied. The source is
// never mutated and identical inputs yield pixel-identical output.
func (c *Compositor) Render(src *model.SourceImage, spec *model.WatermarkSpec) (*image.NRGBA, error) {
	if src == nil || src.Image == nil {
		return nil, model.ErrNoImage
	}
	if spec == nil {
		return nil, model.ErrNoWatermark
	}

	var layer *image.NRGBA
	var err error
	switch spec.Kind {
	case model.KindText:
		layer, err = c.textLayer(spec.Text)
	case model.KindLogo:
		layer, err = logoLayer(spec.Logo)
	default:
		return nil, model.ErrNoWatermark
	}
	if err != nil {
		return nil, err
	}

	anchor := c.anchor(src.Bounds(), layer.Bounds(), spec.Position)
	opacity := model.ClampOpacity(spec.Opacity())

	return imaging.Overlay(src.Image, layer, anchor, opacity), nil
}

// anchor clamps the placement so the layer stays inside the source; a layer
// larger than the source anchors at 0 and gets clipped by the overlay.
// With no position chosen yet the layer sits at the bottom-right margin.
func (c *Compositor) anchor(srcB, layerB image.Rectangle, pos *image.Point) image.Point {
	maxX := srcB.Dx() - layerB.Dx()
	maxY := srcB.Dy() - layerB.Dy()

	var x, y int
	if pos == nil {
		x = maxX - c.margin
		y = maxY - c.margin
	} else {
		x = pos.X
		y = pos.Y
	}

	return image.Pt(clamp(x, 0, maxX), clamp(y, 0, maxY))
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
