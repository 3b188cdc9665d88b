package compositor

import (
	"image"
	"strings"

	"github.com/UnendingLoop/WatermarkDesk/internal/model"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// textLayer rasterizes the watermark text onto a transparent layer cropped
// tight to the inked glyph bounds.
func (c *Compositor) textLayer(t model.TextWatermark) (*image.NRGBA, error) {
	if strings.TrimSpace(t.Content) == "" {
		return nil, model.ErrEmptyText
	}

	face, err := c.fonts.Face(t.FontFamily, t.Size)
	if err != nil {
		return nil, err
	}

	bounds, _ := font.BoundString(face, t.Content)
	w := (bounds.Max.X - bounds.Min.X).Ceil() + 2
	h := (bounds.Max.Y - bounds.Min.Y).Ceil() + 2
	if w <= 2 || h <= 2 {
		return nil, model.ErrNoVisibleText
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(t.Color),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(1) - bounds.Min.X,
			Y: fixed.I(1) - bounds.Min.Y,
		},
	}
	d.DrawString(t.Content)

	inked, ok := tightAlphaBounds(canvas)
	if !ok {
		return nil, model.ErrNoVisibleText
	}
	return canvas.SubImage(inked).(*image.NRGBA), nil
}

// tightAlphaBounds finds the smallest rectangle holding every non-transparent
// pixel. Glyph metrics can over-report, so the layer is cropped to actual ink.
func tightAlphaBounds(img *image.NRGBA) (image.Rectangle, bool) {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1

	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			if row[(x-b.Min.X)*4+3] == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	if maxX < minX {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}
