// Package input converts mouse and touch events into device independent
// pointer events in surface-local coordinates.
package input

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"ArtistBoard/internal/state"
)

// ErrInvalidInput reports coordinates that can never be placed on a surface.
var ErrInvalidInput = errors.New("invalid pointer input")

// Raw is a device specific event. It is implemented by MouseEvent and
// TouchEvent only.
type Raw interface {
	device() device
}

type device uint8

const (
	deviceNone device = iota
	deviceMouse
	deviceTouch
)

type MouseAction uint8

const (
	MouseDown MouseAction = iota
	MouseMove
	MouseUp
	MouseLeave
)

// MouseEvent is a pointing device event. Pos is already surface-local and is
// ignored for MouseLeave, which ends the stroke where it was last seen.
type MouseEvent struct {
	Action  MouseAction
	Pos     state.Point
	Primary bool // primary button involved in Down/Up
}

func (MouseEvent) device() device { return deviceMouse }

type TouchAction uint8

const (
	TouchStart TouchAction = iota
	TouchMove
	TouchEnd
	TouchCancel
)

// TouchEvent is a multi-touch event. Touch APIs report page-relative
// positions, so Touches and Changed are translated by the surface origin.
type TouchEvent struct {
	Action  TouchAction
	Touches []state.Point // points still on the surface
	Changed []state.Point // points that changed in this event
}

func (TouchEvent) device() device { return deviceTouch }

// Normalizer tracks pen state across raw events so that each raw event
// produces at most one pointer event, and so that moves never arrive while
// the pen is up.
type Normalizer struct {
	mu     sync.Mutex
	width  float64
	height float64
	origin state.Point
	owner  device
	last   state.Point
}

// NewNormalizer returns a Normalizer for a surface of the given size.
func NewNormalizer(width, height int) *Normalizer {
	n := &Normalizer{}
	n.SetBounds(width, height)
	return n
}

// SetBounds updates the surface size used for clamping.
func (n *Normalizer) SetBounds(width, height int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.width = float64(max(width, 0))
	n.height = float64(max(height, 0))
}

// SetOrigin sets the page position of the surface's top-left corner. It is
// subtracted from touch coordinates.
func (n *Normalizer) SetOrigin(p state.Point) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.origin = p
}

// Down reports whether a stroke is in progress.
func (n *Normalizer) Down() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.owner != deviceNone
}

// Normalize maps raw to a pointer event. ok is false when raw produces no
// event: moves or releases while up, events from a device that does not own
// the current stroke, or unusable coordinates.
func (n *Normalizer) Normalize(raw Raw) (ev state.PointerEvent, ok bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.owner != deviceNone && raw.device() != n.owner {
		return state.PointerEvent{}, false
	}

	switch r := raw.(type) {
	case MouseEvent:
		switch r.Action {
		case MouseDown:
			if !r.Primary {
				return state.PointerEvent{}, false
			}
			return n.begin(deviceMouse, r.Pos)
		case MouseMove:
			return n.move(r.Pos)
		case MouseUp:
			return n.finish(state.PointerEnd, r.Pos)
		case MouseLeave:
			return n.finish(state.PointerCancel, n.last)
		}
	case TouchEvent:
		switch r.Action {
		case TouchStart:
			p, found := n.firstTouch(r.Touches)
			if !found {
				return state.PointerEvent{}, false
			}
			return n.begin(deviceTouch, p)
		case TouchMove:
			p, found := n.firstTouch(r.Touches)
			if !found {
				return state.PointerEvent{}, false
			}
			return n.move(p)
		case TouchEnd:
			p, _ := n.firstTouch(r.Changed)
			return n.finish(state.PointerEnd, p)
		case TouchCancel:
			p, _ := n.firstTouch(r.Changed)
			return n.finish(state.PointerCancel, p)
		}
	}
	return state.PointerEvent{}, false
}

func (n *Normalizer) firstTouch(points []state.Point) (state.Point, bool) {
	if len(points) == 0 {
		return state.Point{X: math.NaN(), Y: math.NaN()}, false
	}
	p := points[0]
	return state.Pt(p.X-n.origin.X, p.Y-n.origin.Y), true
}

// begin starts a stroke. A mouse press while the mouse already owns a stroke
// means its release was lost, so a new Begin is emitted; further touches
// during a touch stroke are extra fingers and are ignored.
func (n *Normalizer) begin(d device, p state.Point) (state.PointerEvent, bool) {
	if n.owner != deviceNone && d != deviceMouse {
		return state.PointerEvent{}, false
	}
	p, err := n.clamp(p)
	if err != nil {
		return state.PointerEvent{}, false
	}
	n.owner = d
	n.last = p
	return state.PointerEvent{Kind: state.PointerBegin, Pos: p}, true
}

func (n *Normalizer) move(p state.Point) (state.PointerEvent, bool) {
	if n.owner == deviceNone {
		return state.PointerEvent{}, false
	}
	p, err := n.clamp(p)
	if err != nil {
		return state.PointerEvent{}, false
	}
	n.last = p
	return state.PointerEvent{Kind: state.PointerMove, Pos: p}, true
}

// finish always closes an open stroke. Unusable coordinates fall back to the
// last good position.
func (n *Normalizer) finish(kind state.PointerKind, p state.Point) (state.PointerEvent, bool) {
	if n.owner == deviceNone {
		return state.PointerEvent{}, false
	}
	if c, err := n.clamp(p); err == nil {
		p = c
	} else {
		p = n.last
	}
	n.owner = deviceNone
	return state.PointerEvent{Kind: kind, Pos: p}, true
}

func (n *Normalizer) clamp(p state.Point) (state.Point, error) {
	if err := Validate(p); err != nil {
		return p, err
	}
	return state.Pt(clampTo(p.X, n.width), clampTo(p.Y, n.height)), nil
}

func clampTo(v, limit float64) float64 {
	return math.Min(math.Max(v, 0), limit)
}

// Validate reports whether p can be placed on any surface.
func Validate(p state.Point) error {
	if !p.Finite() {
		return fmt.Errorf("%w: %v", ErrInvalidInput, p)
	}
	return nil
}
