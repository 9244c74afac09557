// Package render draws log entries onto a drawing surface.
//
// The Renderer owns the pen: the anchor the next segment starts from. The
// first sample of every stroke only sets the anchor (and, for heavy lines,
// stamps the round joint), so a new stroke never connects to the end of the
// previous one.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"math"
	"sync"

	"ArtistBoard/internal/state"
)

// ErrInvalidStyle reports a line weight or colour that cannot be drawn.
var ErrInvalidStyle = errors.New("invalid style")

// Style is applied to every segment and joint at draw time.
type Style struct {
	Weight float64
	Color  color.Color
}

// DefaultStyle is a one pixel black line.
var DefaultStyle = Style{Weight: 1, Color: color.Black}

// Validate checks that s can be drawn.
func (s Style) Validate() error {
	if math.IsNaN(s.Weight) || math.IsInf(s.Weight, 0) || s.Weight <= 0 {
		return fmt.Errorf("%w: line weight %v", ErrInvalidStyle, s.Weight)
	}
	if s.Color == nil {
		return fmt.Errorf("%w: missing colour", ErrInvalidStyle)
	}
	return nil
}

// Surface is the pixel target. Implementations need not be safe for
// concurrent use; the Renderer serialises all calls.
type Surface interface {
	Line(from, to state.Point, st Style) error
	Disk(center state.Point, diameter float64, c color.Color) error
	Clear() error
	Size() (width, height int)
}

// Resizer is implemented by surfaces whose size can change. Resizing clears
// the pixels.
type Resizer interface {
	Resize(width, height int) error
}

// Imager is implemented by surfaces that can produce their pixels.
type Imager interface {
	Image() image.Image
}

// Pen is the drawing position carried between samples.
type Pen struct {
	Down    bool
	Last    state.Point
	HasLast bool
}

// Renderer applies entries to a Surface.
type Renderer struct {
	mu      sync.Mutex
	surface Surface
	style   Style
	pen     Pen
	logger  *slog.Logger
}

// NewRenderer returns a Renderer drawing on s with the given style. A nil
// logger discards output.
func NewRenderer(s Surface, st Style, logger *slog.Logger) (*Renderer, error) {
	if s == nil {
		return nil, errors.New("render: surface is required")
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Renderer{
		surface: s,
		style:   st,
		logger:  logger.With("component", "renderer"),
	}, nil
}

// ApplyEntry draws e. Boundaries lift the pen and draw nothing.
func (r *Renderer) ApplyEntry(e state.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.IsBoundary() {
		r.pen = Pen{}
		return nil
	}

	p := e.Sample.Point
	if r.pen.HasLast {
		if err := r.surface.Line(r.pen.Last, p, r.style); err != nil {
			return fmt.Errorf("draw segment: %w", err)
		}
	}
	if r.style.Weight > 1 {
		if err := r.surface.Disk(p, r.style.Weight, r.style.Color); err != nil {
			return fmt.Errorf("draw joint: %w", err)
		}
	}
	r.pen = Pen{Down: true, Last: p, HasLast: true}
	return nil
}

// ApplyLog draws every entry of l in order without pacing.
func (r *Renderer) ApplyLog(l state.Log) error {
	for i, e := range l {
		if err := r.ApplyEntry(e); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return nil
}

// Clear erases the surface and lifts the pen. Recorded entries are not
// touched.
func (r *Renderer) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pen = Pen{}
	if err := r.surface.Clear(); err != nil {
		return fmt.Errorf("clear surface: %w", err)
	}
	r.logger.Debug("surface cleared")
	return nil
}

func (r *Renderer) Style() Style {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.style
}

// SetStyle replaces the style used for subsequent draws.
func (r *Renderer) SetStyle(st Style) error {
	if err := st.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.style = st
	r.logger.Debug("style changed", "weight", st.Weight, "color", FormatColor(st.Color))
	return nil
}

func (r *Renderer) Pen() Pen {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pen
}

// Resize changes the surface size and lifts the pen. The surface is left
// cleared.
func (r *Renderer) Resize(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rs, ok := r.surface.(Resizer)
	if !ok {
		return errors.New("render: surface cannot be resized")
	}
	if err := rs.Resize(width, height); err != nil {
		return fmt.Errorf("resize surface: %w", err)
	}
	r.pen = Pen{}
	r.logger.Debug("surface resized", "width", width, "height", height)
	return nil
}

// Size reports the surface dimensions in pixels.
func (r *Renderer) Size() (width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.surface.Size()
}

// Snapshot copies the current surface pixels. ok is false when the surface
// cannot produce an image.
func (r *Renderer) Snapshot() (img *image.NRGBA, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	im, ok := r.surface.(Imager)
	if !ok {
		return nil, false
	}
	src := im.Image()
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst, true
}

// WithSurface runs fn with exclusive access to the surface, for encoders
// that read pixels directly.
func (r *Renderer) WithSurface(fn func(Surface) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.surface)
}
