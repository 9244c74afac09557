package ui

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"golang.org/x/image/colornames"

	"ArtistBoard/internal/render"
	"ArtistBoard/internal/storage"
)

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Color    color.Color
	OnTapped func(color.Color)
}

func newColorSwatch(c color.Color, tapped func(color.Color)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(32, 32))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

var palette = []color.Color{
	colornames.Black,
	colornames.Red,
	colornames.Green,
	colornames.Blue,
	colornames.Gold,
	colornames.White,
}

// controls runs board operations for the toolbar and reports the outcome on
// the status line.
type controls struct {
	bw  *BoardWidget
	win fyne.Window
}

func (c *controls) report(op string, err error) {
	if err == nil {
		return
	}
	c.bw.logger.Error(op+" failed", "err", err)
	if errors.Is(err, storage.ErrUnavailable) {
		dialog.ShowError(fmt.Errorf("%s: storage is unavailable, your drawing is unchanged", op), c.win)
	}
	c.bw.SetStatus(fmt.Sprintf("%s failed: %v", op, err))
}

func (c *controls) clear() {
	err := c.bw.board.ClearAll(context.Background())
	if err == nil {
		c.bw.SetStatus("Cleared")
	}
	c.report("Clear", err)
}

func (c *controls) save() {
	n := len(c.bw.board.Log())
	err := c.bw.board.SaveCurrent(context.Background())
	if err != nil {
		c.report("Save", err)
		return
	}
	status := fmt.Sprintf("Saved %d entries", n)
	if info, found, err := c.bw.board.SavedInfo(context.Background()); err != nil {
		c.bw.logger.Warn("saved tape info", "err", err)
	} else if found {
		status += fmt.Sprintf(" (%d bytes at %s", info.Size, info.SavedAt.Local().Format("15:04:05"))
		if info.Revision != "" {
			status += ", revision " + info.Revision[:min(8, len(info.Revision))]
		}
		status += ")"
	}
	c.bw.SetStatus(status)
}

func (c *controls) play() {
	task, err := c.bw.board.PlaySaved(context.Background())
	if err != nil {
		c.report("Play", err)
		return
	}
	c.bw.SetStatus("Playing...")
	go func() {
		err := task.Wait(context.Background())
		switch {
		case errors.Is(err, context.Canceled):
			c.bw.SetStatus(fmt.Sprintf("Stopped after %d entries", task.Applied()))
		case err != nil:
			c.report("Play", err)
		default:
			c.bw.SetStatus(fmt.Sprintf("Played %d entries", task.Applied()))
		}
	}()
}

func (c *controls) download() {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			c.report("Download", err)
			return
		}
		if writer == nil {
			return
		}
		defer writer.Close()
		f := render.FormatPNG
		if ext := strings.ToLower(writer.URI().Extension()); ext == ".jpg" || ext == ".jpeg" {
			f = render.FormatJPEG
		}
		if err := c.bw.board.ExportImage(writer, f); err != nil {
			c.report("Download", err)
			return
		}
		c.bw.SetStatus("Image written to " + filepath.Base(writer.URI().Path()))
	}, c.win)
	d.SetFileName("image.png")
	d.Show()
}

func (c *controls) exportPDF() {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			c.report("Export", err)
			return
		}
		if writer == nil {
			return
		}
		defer writer.Close()
		if err := c.bw.board.ExportPDF(writer); err != nil {
			c.report("Export", err)
			return
		}
		c.bw.SetStatus("PDF written to " + filepath.Base(writer.URI().Path()))
	}, c.win)
	d.SetFileName("drawing.pdf")
	d.Show()
}

// --- The Main Toolbar ---
func NewToolbar(bw *BoardWidget, win fyne.Window) fyne.CanvasObject {
	c := &controls{bw: bw, win: win}

	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentClearIcon(), c.clear),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), c.save),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.MediaPlayIcon(), c.play),
		widget.NewToolbarAction(theme.MediaStopIcon(), bw.board.StopReplay),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DownloadIcon(), c.download),
		widget.NewToolbarAction(theme.DocumentPrintIcon(), c.exportPDF),
	)

	// --- Color Palette ---
	onColorTapped := func(col color.Color) {
		if err := bw.board.SetStyleColor(bw.board.Style().Weight, col); err != nil {
			c.report("Color", err)
		}
	}
	colorBox := container.NewHBox()
	for _, col := range palette {
		colorBox.Add(newColorSwatch(col, onColorTapped))
	}

	// --- Stroke Width Slider ---
	weight := bw.board.Style().Weight
	strokeSlider := widget.NewSlider(1.0, 50.0)
	strokeSlider.SetValue(weight)
	strokeSlider.OnChanged = func(val float64) {
		if err := bw.board.SetStyleColor(val, bw.board.Style().Color); err != nil {
			c.report("Weight", err)
		}
	}
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), strokeSlider)

	// --- Assemble everything ---
	return container.NewHBox(
		tb,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Weight:"),
		sliderContainer,
		layout.NewSpacer(),
	)
}
