package compositor

import (
	"image"

	"github.com/UnendingLoop/WatermarkDesk/internal/model"
	"github.com/disintegration/imaging"
)

// logoLayer scales the logo raster by spec scale, preserving aspect ratio.
// Pixel counts round down (floor), with a 1px minimum per side.
func logoLayer(l model.LogoWatermark) (*image.NRGBA, error) {
	if l.Image == nil {
		return nil, model.ErrNoLogoRaster
	}
	if l.Scale <= 0 {
		return nil, model.ErrInvalidScale
	}

	w, h := scaledSize(l.Image.Bounds().Dx(), l.Image.Bounds().Dy(), l.Scale)
	return imaging.Resize(l.Image, w, h, imaging.Lanczos), nil
}

func scaledSize(w, h int, scale float64) (int, int) {
	sw := int(float64(w) * scale)
	sh := int(float64(h) * scale)
	if sw < 1 {
		sw = 1
	}
	if sh < 1 {
		sh = 1
	}
	return sw, sh
}
