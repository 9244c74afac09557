package ui

import (
	"image"
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"

	"ArtistBoard/internal/board"
	"ArtistBoard/internal/input"
	"ArtistBoard/internal/state"
)

// BoardWidget shows the board's surface and feeds mouse and touch input
// into it. It does no drawing of its own: every change is a fresh snapshot
// of the renderer's pixels.
type BoardWidget struct {
	widget.BaseWidget
	board  *board.Board
	logger *slog.Logger

	image     *canvas.Image
	statusBar *widget.Label

	mu       sync.Mutex
	touching bool
	pending  bool
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)
var _ mobile.Touchable = (*BoardWidget)(nil)

func NewBoardWidget(b *board.Board, logger *slog.Logger) *BoardWidget {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	w, h := b.Size()
	bw := &BoardWidget{
		board:     b,
		logger:    logger.With("component", "ui"),
		statusBar: widget.NewLabel("Ready"),
	}
	img, _ := b.Snapshot()
	if img == nil {
		img = image.NewNRGBA(image.Rect(0, 0, w, h))
	}
	bw.image = canvas.NewImageFromImage(img)
	bw.image.FillMode = canvas.ImageFillOriginal
	bw.image.ScaleMode = canvas.ImageScalePixels
	bw.image.SetMinSize(fyne.NewSize(float32(w), float32(h)))
	bw.ExtendBaseWidget(bw)

	b.OnChange(bw.scheduleRefresh)
	return bw
}

// scheduleRefresh coalesces change notifications, which arrive on the replay
// goroutine as well as the UI thread, into one repaint per frame.
func (bw *BoardWidget) scheduleRefresh() {
	bw.mu.Lock()
	if bw.pending {
		bw.mu.Unlock()
		return
	}
	bw.pending = true
	bw.mu.Unlock()

	fyne.Do(func() {
		bw.mu.Lock()
		bw.pending = false
		bw.mu.Unlock()
		if img, ok := bw.board.Snapshot(); ok {
			bw.image.Image = img
			bw.image.Refresh()
		}
	})
}

// SetStatus updates the status line. Safe from any goroutine.
func (bw *BoardWidget) SetStatus(text string) {
	fyne.Do(func() {
		bw.statusBar.SetText(text)
	})
}

func (bw *BoardWidget) StatusBar() *widget.Label { return bw.statusBar }

func (bw *BoardWidget) send(raw input.Raw) {
	if err := bw.board.HandlePointer(raw); err != nil {
		bw.logger.Error("pointer input", "err", err)
		bw.SetStatus("Drawing failed: " + err.Error())
	}
}

func toPoint(p fyne.Position) state.Point {
	return state.Pt(float64(p.X), float64(p.Y))
}

func (bw *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	bw.send(input.MouseEvent{
		Action:  input.MouseDown,
		Pos:     toPoint(e.Position),
		Primary: e.Button == desktop.MouseButtonPrimary,
	})
}

func (bw *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	bw.send(input.MouseEvent{
		Action:  input.MouseUp,
		Pos:     toPoint(e.Position),
		Primary: e.Button == desktop.MouseButtonPrimary,
	})
}

func (bw *BoardWidget) MouseIn(*desktop.MouseEvent) {}

func (bw *BoardWidget) MouseMoved(e *desktop.MouseEvent) {
	bw.send(input.MouseEvent{Action: input.MouseMove, Pos: toPoint(e.Position)})
}

// MouseOut cancels a stroke that leaves the surface.
func (bw *BoardWidget) MouseOut() {
	bw.send(input.MouseEvent{Action: input.MouseLeave})
}

// Dragged carries moves while a button or finger is down.
func (bw *BoardWidget) Dragged(e *fyne.DragEvent) {
	bw.mu.Lock()
	touching := bw.touching
	bw.mu.Unlock()
	if touching {
		bw.send(input.TouchEvent{Action: input.TouchMove, Touches: []state.Point{toPoint(e.AbsolutePosition)}})
		return
	}
	bw.send(input.MouseEvent{Action: input.MouseMove, Pos: toPoint(e.Position)})
}

func (bw *BoardWidget) DragEnd() {}

func (bw *BoardWidget) TouchDown(e *mobile.TouchEvent) {
	bw.mu.Lock()
	bw.touching = true
	bw.mu.Unlock()
	origin := e.AbsolutePosition.Subtract(e.Position)
	bw.board.SetOrigin(toPoint(origin))
	bw.send(input.TouchEvent{Action: input.TouchStart, Touches: []state.Point{toPoint(e.AbsolutePosition)}})
}

func (bw *BoardWidget) TouchUp(e *mobile.TouchEvent) {
	bw.endTouch(input.TouchEnd, e)
}

func (bw *BoardWidget) TouchCancel(e *mobile.TouchEvent) {
	bw.endTouch(input.TouchCancel, e)
}

func (bw *BoardWidget) endTouch(a input.TouchAction, e *mobile.TouchEvent) {
	bw.mu.Lock()
	bw.touching = false
	bw.mu.Unlock()
	bw.send(input.TouchEvent{Action: a, Changed: []state.Point{toPoint(e.AbsolutePosition)}})
}

// Resize grows or shrinks the drawing surface with the widget.
func (bw *BoardWidget) Resize(size fyne.Size) {
	bw.BaseWidget.Resize(size)
	w, h := int(size.Width), int(size.Height)
	if w <= 0 || h <= 0 {
		return
	}
	if err := bw.board.Resize(w, h); err != nil {
		bw.logger.Error("resize", "err", err)
		bw.SetStatus("Resize failed: " + err.Error())
	}
}

func (bw *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(bw.image)
}
