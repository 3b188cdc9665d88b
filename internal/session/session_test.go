package session

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/UnendingLoop/WatermarkDesk/internal/model"
	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	loadFn func(path string) (*model.SourceImage, error)
	saveFn func(img image.Image, path string, fallback imaging.Format) error
}

func (m *mockStore) Load(path string) (*model.SourceImage, error) {
	if m.loadFn != nil {
		return m.loadFn(path)
	}
	return nil, errors.New("unexpected Load call")
}

func (m *mockStore) Save(img image.Image, path string, fallback imaging.Format) error {
	if m.saveFn != nil {
		return m.saveFn(img, path, fallback)
	}
	return errors.New("unexpected Save call")
}

type mockRenderer struct {
	renderFn func(src *model.SourceImage, spec *model.WatermarkSpec) (*image.NRGBA, error)
}

func (m *mockRenderer) Render(src *model.SourceImage, spec *model.WatermarkSpec) (*image.NRGBA, error) {
	if m.renderFn != nil {
		return m.renderFn(src, spec)
	}
	return image.NewNRGBA(image.Rect(0, 0, 1, 1)), nil
}

func testSrc(w, h int) *model.SourceImage {
	return &model.SourceImage{
		Image:  image.NewNRGBA(image.Rect(0, 0, w, h)),
		Format: imaging.JPEG,
		Path:   "in.jpg",
	}
}

func loadingStore(src *model.SourceImage) *mockStore {
	return &mockStore{
		loadFn: func(string) (*model.SourceImage, error) { return src, nil },
	}
}

func newTestSession(store ImageStore, r Renderer) *Session {
	return New(store, r, 0.1, zerolog.Nop())
}

func textSpec() model.TextWatermark {
	return model.TextWatermark{Content: "hello", Size: 12, Color: color.NRGBA{A: 255}, Opacity: 1}
}

func TestSession_StateMachine(t *testing.T) {
	s := newTestSession(loadingStore(testSrc(100, 100)), &mockRenderer{})
	require.Equal(t, model.StateNoImage, s.State())

	require.NoError(t, s.LoadImage("in.jpg"))
	require.Equal(t, model.StateImageLoaded, s.State())

	require.NoError(t, s.SetTextWatermark(textSpec()))
	require.Equal(t, model.StateWatermarkConfigured, s.State())

	require.NoError(t, s.MoveWatermark(10, 20))
	require.Equal(t, model.StatePositioned, s.State())
	require.Equal(t, image.Pt(10, 20), *s.Spec().Position)

	// Positioned is re-entrant: edits and clicks keep the state and position.
	require.NoError(t, s.SetTextWatermark(textSpec()))
	require.Equal(t, model.StatePositioned, s.State())
	require.Equal(t, image.Pt(10, 20), *s.Spec().Position)

	require.NoError(t, s.MoveWatermark(30, 40))
	require.Equal(t, model.StatePositioned, s.State())

	// Loading a new image discards the previous spec and composite.
	require.NoError(t, s.LoadImage("other.jpg"))
	require.Equal(t, model.StateImageLoaded, s.State())
	require.Nil(t, s.Spec())
	require.Nil(t, s.Composite())

	s.Reset()
	require.Equal(t, model.StateNoImage, s.State())
	require.Nil(t, s.Source())
}

func TestSession_CommandsRequireState(t *testing.T) {
	tests := []struct {
		name    string
		run     func(s *Session) error
		wantErr error
	}{
		{
			name:    "text watermark before load",
			run:     func(s *Session) error { return s.SetTextWatermark(textSpec()) },
			wantErr: model.ErrNoImage,
		},
		{
			name:    "logo watermark before load",
			run:     func(s *Session) error { return s.SetLogoWatermark("logo.png", 1, 1) },
			wantErr: model.ErrNoImage,
		},
		{
			name:    "move before load",
			run:     func(s *Session) error { return s.MoveWatermark(1, 1) },
			wantErr: model.ErrNoImage,
		},
		{
			name:    "save before load",
			run:     func(s *Session) error { return s.Save("out.png") },
			wantErr: model.ErrNoImage,
		},
		{
			name: "move before watermark",
			run: func(s *Session) error {
				require.NoError(t, s.LoadImage("in.jpg"))
				return s.MoveWatermark(1, 1)
			},
			wantErr: model.ErrNoWatermark,
		},
		{
			name: "save before watermark",
			run: func(s *Session) error {
				require.NoError(t, s.LoadImage("in.jpg"))
				return s.Save("out.png")
			},
			wantErr: model.ErrNoComposite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(loadingStore(testSrc(50, 50)), &mockRenderer{})
			require.ErrorIs(t, tt.run(s), tt.wantErr)
		})
	}
}

func TestSession_MoveClampsIntoBounds(t *testing.T) {
	s := newTestSession(loadingStore(testSrc(100, 80)), &mockRenderer{})
	require.NoError(t, s.LoadImage("in.jpg"))
	require.NoError(t, s.SetTextWatermark(textSpec()))

	require.NoError(t, s.MoveWatermark(500, -3))
	require.Equal(t, image.Pt(99, 0), *s.Spec().Position)
}

func TestSession_OpacityClampedAtSetters(t *testing.T) {
	src := testSrc(50, 50)
	s := newTestSession(&mockStore{
		loadFn: func(string) (*model.SourceImage, error) { return src, nil },
	}, &mockRenderer{})
	require.NoError(t, s.LoadImage("in.jpg"))

	tw := textSpec()
	tw.Opacity = 2.5
	require.NoError(t, s.SetTextWatermark(tw))
	require.Equal(t, 1.0, s.Spec().Text.Opacity)

	require.NoError(t, s.SetLogoWatermark("logo.png", 0.5, -0.25))
	require.Equal(t, 0.0, s.Spec().Logo.Opacity)
}

func TestSession_RenderFailureKeepsPreviousComposite(t *testing.T) {
	renderErr := model.ErrFontNotFound
	calls := 0
	good := image.NewNRGBA(image.Rect(0, 0, 2, 2))

	s := newTestSession(loadingStore(testSrc(50, 50)), &mockRenderer{
		renderFn: func(*model.SourceImage, *model.WatermarkSpec) (*image.NRGBA, error) {
			calls++
			if calls > 1 {
				return nil, renderErr
			}
			return good, nil
		},
	})

	require.NoError(t, s.LoadImage("in.jpg"))
	require.NoError(t, s.SetTextWatermark(textSpec()))
	require.Equal(t, good, s.Composite())

	bad := textSpec()
	bad.FontFamily = "missing"
	require.ErrorIs(t, s.SetTextWatermark(bad), model.ErrRender)

	// The failed edit must not replace the working spec or preview.
	require.Equal(t, good, s.Composite())
	require.Equal(t, "", s.Spec().Text.FontFamily)
	require.Equal(t, model.StateWatermarkConfigured, s.State())
}

func TestSession_SaveUsesSourceFormatFallback(t *testing.T) {
	var gotPath string
	var gotFallback imaging.Format
	var gotImg image.Image

	store := &mockStore{
		loadFn: func(string) (*model.SourceImage, error) { return testSrc(10, 10), nil },
		saveFn: func(img image.Image, path string, fallback imaging.Format) error {
			gotImg, gotPath, gotFallback = img, path, fallback
			return nil
		},
	}

	s := newTestSession(store, &mockRenderer{})
	require.NoError(t, s.LoadImage("in.jpg"))
	require.NoError(t, s.SetTextWatermark(textSpec()))
	require.NoError(t, s.Save("out.nonsense"))

	require.Equal(t, "out.nonsense", gotPath)
	require.Equal(t, imaging.JPEG, gotFallback)
	require.Equal(t, s.Composite(), gotImg)
}

func TestSession_SaveSurfacesStoreError(t *testing.T) {
	ioErr := model.ErrIO
	store := &mockStore{
		loadFn: func(string) (*model.SourceImage, error) { return testSrc(10, 10), nil },
		saveFn: func(image.Image, string, imaging.Format) error { return ioErr },
	}

	s := newTestSession(store, &mockRenderer{})
	require.NoError(t, s.LoadImage("in.jpg"))
	require.NoError(t, s.SetTextWatermark(textSpec()))
	require.ErrorIs(t, s.Save("out.png"), model.ErrIO)

	// The session survives a failed save.
	require.Equal(t, model.StateWatermarkConfigured, s.State())
}

func TestSession_LogoWatermarkFromStore(t *testing.T) {
	logo := &model.SourceImage{Image: image.NewNRGBA(image.Rect(0, 0, 8, 8)), Format: imaging.PNG, Path: "logo.png"}
	store := &mockStore{
		loadFn: func(path string) (*model.SourceImage, error) {
			if path == "logo.png" {
				return logo, nil
			}
			return testSrc(50, 50), nil
		},
	}

	s := newTestSession(store, &mockRenderer{})
	require.NoError(t, s.LoadImage("in.jpg"))
	require.NoError(t, s.SetLogoWatermark("logo.png", 0.5, 0.8))

	spec := s.Spec()
	require.Equal(t, model.KindLogo, spec.Kind)
	require.Equal(t, logo.Image, spec.Logo.Image)
	require.Equal(t, 0.5, spec.Logo.Scale)
	require.Equal(t, 0.8, spec.Logo.Opacity)
	require.Equal(t, model.StateWatermarkConfigured, s.State())
}

func TestSession_LogoAutoScale(t *testing.T) {
	// Non-positive scale sizes the logo to logoWidthRatio of the source width.
	logo := &model.SourceImage{Image: image.NewNRGBA(image.Rect(0, 0, 20, 10)), Format: imaging.PNG}
	store := &mockStore{
		loadFn: func(path string) (*model.SourceImage, error) {
			if path == "logo.png" {
				return logo, nil
			}
			return testSrc(400, 300), nil
		},
	}

	s := newTestSession(store, &mockRenderer{})
	require.NoError(t, s.LoadImage("in.jpg"))
	require.NoError(t, s.SetLogoWatermark("logo.png", 0, 1))

	// ratio 0.1 on a 400px source: target width 40px from a 20px logo.
	require.InDelta(t, 2.0, s.Spec().Logo.Scale, 1e-9)
}

func TestSession_LoadFailureKeepsState(t *testing.T) {
	decodeErr := model.ErrDecode
	src := testSrc(50, 50)
	calls := 0

	s := newTestSession(&mockStore{
		loadFn: func(string) (*model.SourceImage, error) {
			calls++
			if calls > 1 {
				return nil, decodeErr
			}
			return src, nil
		},
	}, &mockRenderer{})

	require.NoError(t, s.LoadImage("in.jpg"))
	require.ErrorIs(t, s.LoadImage("broken.jpg"), model.ErrDecode)

	// The previous image stays editable after a failed load.
	require.Equal(t, model.StateImageLoaded, s.State())
	require.Equal(t, src, s.Source())
}
