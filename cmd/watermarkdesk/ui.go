package main

import (
	"image"
	"image/color"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	fynestorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"github.com/UnendingLoop/WatermarkDesk/internal/config"
	"github.com/UnendingLoop/WatermarkDesk/internal/fontlib"
	"github.com/UnendingLoop/WatermarkDesk/internal/model"
	"github.com/UnendingLoop/WatermarkDesk/internal/preview"
	"github.com/UnendingLoop/WatermarkDesk/internal/session"
)

var imageFilter = fynestorage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff"})

// ui wires the fyne widgets to the session. Every button is a single
// session command plus a refresh; no raster logic lives here.
type ui struct {
	cfg   *config.Config
	sess  *session.Session
	fonts *fontlib.Library
	log   zerolog.Logger

	fyneApp fyne.App
	win     fyne.Window
	pane    *previewPane

	textBtn *widget.Button
	logoBtn *widget.Button
	saveBtn *widget.Button

	// Text editor state, kept across openings like the original dialog did.
	textContent string
	fontFamily  string
	fontSize    int
	textColor   color.NRGBA

	// Click recorded before a watermark exists; applied on first configure.
	pending *image.Point
}

func newUI(cfg *config.Config, sess *session.Session, fonts *fontlib.Library, log zerolog.Logger) *ui {
	textColor, err := model.ParseHexColor(cfg.Watermark.TextColor)
	if err != nil {
		textColor = color.NRGBA{A: 255}
	}

	u := &ui{
		cfg:        cfg,
		sess:       sess,
		fonts:      fonts,
		log:        log,
		fontFamily: fontlib.FallbackFamily,
		fontSize:   cfg.Watermark.FontSize,
		textColor:  textColor,
	}

	u.fyneApp = app.New()
	u.win = u.fyneApp.NewWindow("Watermark Desk")
	u.pane = newPreviewPane(u.handleTap)
	u.pane.SetMinSize(fyne.NewSize(float32(cfg.Preview.Width), float32(cfg.Preview.Height)))

	uploadBtn := widget.NewButton("Upload Image", u.uploadImage)
	u.textBtn = widget.NewButton("Add Text Watermark", u.openTextEditor)
	u.logoBtn = widget.NewButton("Add Logo Watermark", u.addLogoWatermark)
	u.saveBtn = widget.NewButton("Save Image", u.saveImage)
	exitBtn := widget.NewButton("Exit App", u.win.Close)

	u.textBtn.Disable()
	u.logoBtn.Disable()
	u.saveBtn.Disable()

	buttons := container.NewHBox(uploadBtn, u.textBtn, u.logoBtn, u.saveBtn, exitBtn)
	u.win.SetContent(container.NewBorder(buttons, nil, nil, nil, u.pane))

	return u
}

func (u *ui) Run() {
	u.win.ShowAndRun()
}

// ---------- user actions ----------

func (u *ui) uploadImage() {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			u.showError(err)
			return
		}
		if rc == nil {
			return
		}
		path := rc.URI().Path()
		rc.Close()

		if err := u.sess.LoadImage(path); err != nil {
			u.showError(err)
			return
		}

		u.pending = nil
		u.pane.HideMarker()
		u.enableButtons()
		u.refresh()
		dialog.ShowInformation("Image Uploaded",
			"Click on the preview image to select the watermark position.", u.win)
	}, u.win)
	d.SetFilter(imageFilter)
	d.Show()
}

func (u *ui) addLogoWatermark() {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			u.showError(err)
			return
		}
		if rc == nil {
			return
		}
		path := rc.URI().Path()
		rc.Close()

		// Scale 0 lets the session size the logo from the configured ratio.
		if err := u.sess.SetLogoWatermark(path, 0, u.cfg.Watermark.LogoOpacity); err != nil {
			u.showError(err)
			return
		}
		u.applyPendingClick()
		u.refresh()
	}, u.win)
	d.SetFilter(imageFilter)
	d.Show()
}

func (u *ui) openTextEditor() {
	textEntry := widget.NewEntry()
	textEntry.SetText(u.textContent)
	textEntry.SetPlaceHolder("Watermark text")

	sizeEntry := widget.NewEntry()
	sizeEntry.SetText(strconv.Itoa(u.fontSize))

	preview := canvas.NewText(u.textContent, u.textColor)
	preview.TextSize = previewTextSize(u.fontSize)

	updatePreview := func() {
		preview.Text = textEntry.Text
		preview.Color = u.textColor
		if size, err := strconv.Atoi(sizeEntry.Text); err == nil && size > 0 {
			preview.TextSize = previewTextSize(size)
		}
		preview.Refresh()
	}
	textEntry.OnChanged = func(string) { updatePreview() }
	sizeEntry.OnChanged = func(string) { updatePreview() }

	familySelect := widget.NewSelect(u.fonts.Families(), func(fam string) {
		u.fontFamily = fam
	})
	familySelect.SetSelected(u.fontFamily)

	colorBtn := widget.NewButton("Choose Color", func() {
		picker := dialog.NewColorPicker("Choose color", "Text watermark color", func(c color.Color) {
			u.textColor = color.NRGBAModel.Convert(c).(color.NRGBA)
			updatePreview()
		}, u.win)
		picker.Advanced = true
		picker.Show()
	})

	form := container.NewVBox(
		widget.NewForm(
			widget.NewFormItem("Text", textEntry),
			widget.NewFormItem("Font", familySelect),
			widget.NewFormItem("Font Size", sizeEntry),
		),
		colorBtn,
		container.NewCenter(preview),
	)

	dialog.ShowCustomConfirm("Text Watermark Editor", "Apply Text", "Cancel", form, func(apply bool) {
		if !apply {
			return
		}

		u.textContent = textEntry.Text
		if size, err := strconv.Atoi(sizeEntry.Text); err == nil && size > 0 {
			u.fontSize = size
		}

		tw := model.TextWatermark{
			Content:    u.textContent,
			FontFamily: u.fontFamily,
			Size:       u.fontSize,
			Color:      u.textColor,
			Opacity:    u.cfg.Watermark.TextOpacity,
		}
		if err := u.sess.SetTextWatermark(tw); err != nil {
			u.showError(err)
			return
		}
		u.applyPendingClick()
		u.refresh()
	}, u.win)
}

func (u *ui) saveImage() {
	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil {
			u.showError(err)
			return
		}
		if wc == nil {
			return
		}
		path := wc.URI().Path()
		wc.Close()

		if err := u.sess.Save(path); err != nil {
			u.showError(err)
			return
		}
		dialog.ShowInformation("Save Successful", "The image has been saved successfully.", u.win)
	}, u.win)
	d.SetFileName("watermarked.png")
	d.Show()
}

// handleTap maps a preview click into source coordinates. Before a watermark
// exists the click is remembered and applied on first configure, matching
// the original app's flow.
func (u *ui) handleTap(pos fyne.Position) {
	src := u.sess.Source()
	if src == nil {
		return
	}

	vp := u.viewport()
	p := vp.SourcePoint(float64(pos.X), float64(pos.Y))

	if u.sess.Spec() != nil {
		if err := u.sess.MoveWatermark(p.X, p.Y); err != nil {
			u.showError(err)
			return
		}
	} else {
		u.pending = &p
	}

	mx, my := vp.PanePoint(p.X, p.Y)
	u.pane.ShowMarker(float32(mx), float32(my))
	u.refresh()
}

func (u *ui) applyPendingClick() {
	if u.pending == nil {
		return
	}
	if err := u.sess.MoveWatermark(u.pending.X, u.pending.Y); err != nil {
		u.showError(err)
		return
	}
	u.pending = nil
	u.pane.HideMarker()
}

// ---------- helpers ----------

// previewTextSize caps the editor preview so large watermark sizes do not
// blow up the dialog.
func previewTextSize(size int) float32 {
	const maxPreview = 48
	if size > maxPreview {
		return maxPreview
	}
	return float32(size)
}

func (u *ui) viewport() preview.Viewport {
	size := u.pane.Size()
	src := u.sess.Source()
	return preview.NewViewport(int(size.Width), int(size.Height), src.Width(), src.Height())
}

func (u *ui) refresh() {
	img := u.sess.Preview()
	if img == nil {
		return
	}
	size := u.pane.Size()
	u.pane.SetImage(preview.Fit(img, int(size.Width), int(size.Height)))
}

func (u *ui) enableButtons() {
	u.textBtn.Enable()
	u.logoBtn.Enable()
	u.saveBtn.Enable()
}

// showError presents the failure and leaves the session untouched; the user
// corrects the cause and retries the action.
func (u *ui) showError(err error) {
	u.log.Error().Err(err).Msg("UI action failed")
	dialog.ShowError(err, u.win)
}
