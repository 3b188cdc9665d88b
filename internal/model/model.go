// Package model provides data-structs shared across the app
package model

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
)

type (
	State string
	Kind  string
)

const (
	StateNoImage             State = "no_image"
	StateImageLoaded         State = "image_loaded"
	StateWatermarkConfigured State = "watermark_configured"
	StatePositioned          State = "positioned"
)

const (
	KindText Kind = "text"
	KindLogo Kind = "logo"
)

//---------------------

// SourceImage is the decoded raster the session edits. It is never mutated
// after load - a new load replaces it wholesale.
type SourceImage struct {
	Image  image.Image
	Format imaging.Format
	Path   string
}

func (s *SourceImage) Bounds() image.Rectangle {
	return s.Image.Bounds()
}

func (s *SourceImage) Width() int {
	return s.Image.Bounds().Dx()
}

func (s *SourceImage) Height() int {
	return s.Image.Bounds().Dy()
}

//---------------------

type TextWatermark struct {
	Content    string
	FontFamily string // empty means the bundled fallback face
	Size       int
	Color      color.NRGBA
	Opacity    float64
}

type LogoWatermark struct {
	Image   image.Image
	Scale   float64
	Opacity float64
}

// WatermarkSpec is a tagged variant: Kind selects which branch is live.
// Position is in source-image coordinates; nil until the user picks a spot,
// in which case the compositor falls back to its default placement.
type WatermarkSpec struct {
	Kind     Kind
	Text     TextWatermark
	Logo     LogoWatermark
	Position *image.Point
}

// Opacity returns the opacity of the live branch.
func (w *WatermarkSpec) Opacity() float64 {
	if w.Kind == KindLogo {
		return w.Logo.Opacity
	}
	return w.Text.Opacity
}

// ------------------

// Error taxonomy roots. Every failure surfaced to the UI wraps exactly one
// of these, so the dialog layer can classify with errors.Is.
var (
	ErrDecode error = errors.New("image data is unreadable or corrupt")
	ErrIO     error = errors.New("filesystem access failed")
	ErrRender error = errors.New("watermark could not be rendered")
)

var (
	ErrFontNotFound  error = fmt.Errorf("%w: font family not found", ErrRender)
	ErrEmptyText     error = fmt.Errorf("%w: watermark text is empty", ErrRender)
	ErrNoLogoRaster  error = fmt.Errorf("%w: no logo raster set", ErrRender)
	ErrInvalidScale  error = fmt.Errorf("%w: logo scale must be positive", ErrRender)
	ErrNoVisibleText error = fmt.Errorf("%w: text produced no visible glyphs", ErrRender)
)

// Session-level errors: wrong command for the current state.
var (
	ErrNoImage     error = errors.New("no image loaded")
	ErrNoWatermark error = errors.New("no watermark configured")
	ErrNoComposite error = errors.New("nothing to save - add a watermark first")
)

//--------------------

// ClampOpacity keeps opacity inside [0,1].
func ClampOpacity(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ParseHexColor parses "#rgb", "#rrggbb" or "#rrggbbaa" notation.
func ParseHexColor(s string) (color.NRGBA, error) {
	str := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(str) == 3 {
		str = fmt.Sprintf("%c%c%c%c%c%c", str[0], str[0], str[1], str[1], str[2], str[2])
	}

	var r, g, b, a uint8
	a = 255
	switch len(str) {
	case 6:
		if _, err := fmt.Sscanf(str, "%02x%02x%02x", &r, &g, &b); err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
	case 8:
		if _, err := fmt.Sscanf(str, "%02x%02x%02x%02x", &r, &g, &b, &a); err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
	default:
		return color.NRGBA{}, fmt.Errorf("invalid color format: %q", s)
	}

	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}

// ClampPoint keeps p inside [0,w-1]x[0,h-1] of b.
func ClampPoint(p image.Point, b image.Rectangle) image.Point {
	if p.X < b.Min.X {
		p.X = b.Min.X
	}
	if p.X > b.Max.X-1 {
		p.X = b.Max.X - 1
	}
	if p.Y < b.Min.Y {
		p.Y = b.Min.Y
	}
	if p.Y > b.Max.Y-1 {
		p.Y = b.Max.Y - 1
	}
	return p
}
