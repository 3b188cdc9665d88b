// Package session owns the editing state and the command surface the UI
// dispatches to. One session exists per running app; it is created at start,
// lives on the UI thread and is never shared between goroutines.
package session

import (
	"image"

	"github.com/UnendingLoop/WatermarkDesk/internal/model"
	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
)

// ImageStore - contract for loading and saving rasters on disk
type ImageStore interface {
	Load(path string) (*model.SourceImage, error)
	Save(img image.Image, path string, fallback imaging.Format) error
}

// Renderer - contract for producing the composite from source + spec
type Renderer interface {
	Render(src *model.SourceImage, spec *model.WatermarkSpec) (*image.NRGBA, error)
}

type Session struct {
	store     ImageStore
	renderer  Renderer
	logoRatio float64
	log       zerolog.Logger

	state     model.State
	source    *model.SourceImage
	spec      *model.WatermarkSpec
	composite *image.NRGBA
}

// New builds a session. logoWidthRatio sets the automatic logo scale: when
// SetLogoWatermark gets a non-positive scale, the logo is sized to this
// fraction of the source width.
func New(store ImageStore, renderer Renderer, logoWidthRatio float64, log zerolog.Logger) *Session {
	if logoWidthRatio <= 0 {
		logoWidthRatio = 0.1
	}
	return &Session{
		store:     store,
		renderer:  renderer,
		logoRatio: logoWidthRatio,
		log:       log,
		state:     model.StateNoImage,
	}
}

func (s *Session) State() model.State { return s.state }

func (s *Session) Source() *model.SourceImage { return s.source }

func (s *Session) Spec() *model.WatermarkSpec { return s.spec }

// Composite returns the current watermarked raster, nil before a watermark
// is configured.
func (s *Session) Composite() *image.NRGBA { return s.composite }

// Preview returns what the preview pane should show right now.
func (s *Session) Preview() image.Image {
	if s.composite != nil {
		return s.composite
	}
	if s.source != nil {
		return s.source.Image
	}
	return nil
}

// LoadImage replaces the source wholesale and discards any watermark spec
// and composite from the previous image.
func (s *Session) LoadImage(path string) error {
	src, err := s.store.Load(path)
	if err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("Failed to load image")
		return err
	}

	s.source = src
	s.spec = nil
	s.composite = nil
	s.state = model.StateImageLoaded

	s.log.Info().
		Str("path", path).
		Int("width", src.Width()).
		Int("height", src.Height()).
		Msg("Image loaded")
	return nil
}

// SetTextWatermark configures (or re-configures) a text watermark. The
// position survives edits so tweaking the text keeps the chosen spot.
func (s *Session) SetTextWatermark(t model.TextWatermark) error {
	if s.state == model.StateNoImage {
		return model.ErrNoImage
	}

	t.Opacity = model.ClampOpacity(t.Opacity)

	next := &model.WatermarkSpec{Kind: model.KindText, Text: t}
	if s.spec != nil {
		next.Position = s.spec.Position
	}
	return s.applySpec(next)
}

// SetLogoWatermark configures (or re-configures) a logo watermark from the
// image file at path.
func (s *Session) SetLogoWatermark(path string, scale, opacity float64) error {
	if s.state == model.StateNoImage {
		return model.ErrNoImage
	}

	logo, err := s.store.Load(path)
	if err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("Failed to load logo")
		return err
	}

	if scale <= 0 && logo.Width() > 0 {
		scale = s.logoRatio * float64(s.source.Width()) / float64(logo.Width())
	}

	next := &model.WatermarkSpec{
		Kind: model.KindLogo,
		Logo: model.LogoWatermark{
			Image:   logo.Image,
			Scale:   scale,
			Opacity: model.ClampOpacity(opacity),
		},
	}
	if s.spec != nil {
		next.Position = s.spec.Position
	}
	return s.applySpec(next)
}

// MoveWatermark places the watermark anchor at (x, y) in source coordinates,
// clamped into the image bounds, and recomposites.
func (s *Session) MoveWatermark(x, y int) error {
	switch s.state {
	case model.StateNoImage:
		return model.ErrNoImage
	case model.StateImageLoaded:
		return model.ErrNoWatermark
	}

	pos := model.ClampPoint(image.Pt(x, y), image.Rect(0, 0, s.source.Width(), s.source.Height()))

	next := *s.spec
	next.Position = &pos
	return s.applySpec(&next)
}

// Save writes the composite to path. The output format follows the file
// extension, defaulting to the source image's format.
func (s *Session) Save(path string) error {
	if s.state == model.StateNoImage {
		return model.ErrNoImage
	}
	if s.composite == nil {
		return model.ErrNoComposite
	}

	if err := s.store.Save(s.composite, path, s.source.Format); err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("Failed to save composite")
		return err
	}

	s.log.Info().Str("path", path).Msg("Composite saved")
	return nil
}

// Reset drops all state, returning to the initial no-image state.
func (s *Session) Reset() {
	s.source = nil
	s.spec = nil
	s.composite = nil
	s.state = model.StateNoImage
}

// applySpec recomposites with the candidate spec and commits both only when
// rendering succeeds, so a failed edit leaves the previous preview intact.
func (s *Session) applySpec(next *model.WatermarkSpec) error {
	composite, err := s.renderer.Render(s.source, next)
	if err != nil {
		s.log.Error().Err(err).Str("kind", string(next.Kind)).Msg("Failed to render watermark")
		return err
	}

	s.spec = next
	s.composite = composite
	if next.Position != nil {
		s.state = model.StatePositioned
	} else {
		s.state = model.StateWatermarkConfigured
	}
	return nil
}
