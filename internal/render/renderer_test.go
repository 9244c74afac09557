package render

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ArtistBoard/internal/state"
)

type call struct {
	Op       string
	From, To state.Point
	Diameter float64
	Weight   float64
	Color    color.Color
}

// recorder is a Surface that records draw calls instead of drawing.
type recorder struct {
	calls []call
	err   error
}

func (r *recorder) Line(from, to state.Point, st Style) error {
	r.calls = append(r.calls, call{Op: "line", From: from, To: to, Weight: st.Weight, Color: st.Color})
	return r.err
}

func (r *recorder) Disk(c state.Point, d float64, col color.Color) error {
	r.calls = append(r.calls, call{Op: "disk", To: c, Diameter: d, Color: col})
	return r.err
}

func (r *recorder) Clear() error {
	r.calls = append(r.calls, call{Op: "clear"})
	return r.err
}

func (r *recorder) Size() (int, int) { return 100, 100 }

func newTestRenderer(t *testing.T, st Style) (*Renderer, *recorder) {
	t.Helper()
	surf := &recorder{}
	r, err := NewRenderer(surf, st, nil)
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	return r, surf
}

func diffCalls(t *testing.T, want, got []call) {
	t.Helper()
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("draw calls (-want +got):\n%s", d)
	}
}

func TestRenderer_FirstSampleOnlyAnchors(t *testing.T) {
	r, surf := newTestRenderer(t, DefaultStyle)

	if err := r.ApplyEntry(state.SampleAt(3, 4, 0)); err != nil {
		t.Fatal(err)
	}
	if len(surf.calls) != 0 {
		t.Errorf("first sample drew %v, want nothing", surf.calls)
	}
	if got := r.Pen(); !got.HasLast || got.Last != state.Pt(3, 4) || !got.Down {
		t.Errorf("Pen() = %+v, want anchored at (3,4)", got)
	}
}

func TestRenderer_Segments(t *testing.T) {
	r, surf := newTestRenderer(t, DefaultStyle)
	err := r.ApplyLog(state.Log{
		state.SampleAt(0, 0, 0),
		state.SampleAt(10, 0, 1),
		state.SampleAt(10, 10, 2),
	})
	if err != nil {
		t.Fatal(err)
	}
	black := color.Black
	diffCalls(t, []call{
		{Op: "line", From: state.Pt(0, 0), To: state.Pt(10, 0), Weight: 1, Color: black},
		{Op: "line", From: state.Pt(10, 0), To: state.Pt(10, 10), Weight: 1, Color: black},
	}, surf.calls)
}

func TestRenderer_BoundaryStartsNewPath(t *testing.T) {
	r, surf := newTestRenderer(t, DefaultStyle)
	err := r.ApplyLog(state.Log{
		state.SampleAt(0, 0, 0),
		state.SampleAt(5, 5, 1),
		state.Boundary,
		state.SampleAt(50, 50, 2),
		state.SampleAt(60, 60, 3),
	})
	if err != nil {
		t.Fatal(err)
	}
	// No segment joins (5,5) to (50,50).
	black := color.Black
	diffCalls(t, []call{
		{Op: "line", From: state.Pt(0, 0), To: state.Pt(5, 5), Weight: 1, Color: black},
		{Op: "line", From: state.Pt(50, 50), To: state.Pt(60, 60), Weight: 1, Color: black},
	}, surf.calls)
}

func TestRenderer_BoundaryLiftsPen(t *testing.T) {
	r, surf := newTestRenderer(t, DefaultStyle)
	_ = r.ApplyEntry(state.SampleAt(1, 1, 0))
	_ = r.ApplyEntry(state.Boundary)

	if got := r.Pen(); got != (Pen{}) {
		t.Errorf("Pen() after boundary = %+v, want zero", got)
	}
	if len(surf.calls) != 0 {
		t.Errorf("boundary drew %v", surf.calls)
	}
}

func TestRenderer_JointDisk(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	r, surf := newTestRenderer(t, Style{Weight: 5, Color: red})

	// A stroke with a single sample still gets its joint.
	if err := r.ApplyLog(state.Log{state.SampleAt(20, 10, 300), state.Boundary}); err != nil {
		t.Fatal(err)
	}
	diffCalls(t, []call{{Op: "disk", To: state.Pt(20, 10), Diameter: 5, Color: red}}, surf.calls)

	surf.calls = nil
	_ = r.ApplyLog(state.Log{state.SampleAt(0, 0, 0), state.SampleAt(4, 0, 1)})
	diffCalls(t, []call{
		{Op: "disk", To: state.Pt(0, 0), Diameter: 5, Color: red},
		{Op: "line", From: state.Pt(0, 0), To: state.Pt(4, 0), Weight: 5, Color: red},
		{Op: "disk", To: state.Pt(4, 0), Diameter: 5, Color: red},
	}, surf.calls)
}

func TestRenderer_NoDiskForThinLines(t *testing.T) {
	r, surf := newTestRenderer(t, Style{Weight: 1, Color: color.Black})
	_ = r.ApplyLog(state.Log{state.SampleAt(0, 0, 0), state.SampleAt(1, 1, 1)})
	for _, c := range surf.calls {
		if c.Op == "disk" {
			t.Fatalf("weight 1 drew a disk: %+v", c)
		}
	}
}

func TestRenderer_StyleAppliesPerSegment(t *testing.T) {
	r, surf := newTestRenderer(t, DefaultStyle)
	_ = r.ApplyEntry(state.SampleAt(0, 0, 0))
	blue := color.RGBA{B: 255, A: 255}
	if err := r.SetStyle(Style{Weight: 1.5, Color: blue}); err != nil {
		t.Fatal(err)
	}
	_ = r.ApplyEntry(state.SampleAt(1, 0, 1))

	diffCalls(t, []call{
		{Op: "line", From: state.Pt(0, 0), To: state.Pt(1, 0), Weight: 1.5, Color: blue},
		{Op: "disk", To: state.Pt(1, 0), Diameter: 1.5, Color: blue},
	}, surf.calls)
	if got := r.Style(); got.Weight != 1.5 {
		t.Errorf("Style().Weight = %v, want 1.5", got.Weight)
	}
}

func TestRenderer_SetStyleRejectsInvalid(t *testing.T) {
	r, _ := newTestRenderer(t, DefaultStyle)
	for _, st := range []Style{
		{Weight: 0, Color: color.Black},
		{Weight: -2, Color: color.Black},
		{Weight: math.NaN(), Color: color.Black},
		{Weight: math.Inf(1), Color: color.Black},
		{Weight: 2},
	} {
		if err := r.SetStyle(st); !errors.Is(err, ErrInvalidStyle) {
			t.Errorf("SetStyle(%+v) = %v, want ErrInvalidStyle", st, err)
		}
	}
	if got := r.Style(); got.Weight != 1 {
		t.Errorf("Style() changed after rejected updates: %+v", got)
	}
}

func TestRenderer_Clear(t *testing.T) {
	r, surf := newTestRenderer(t, DefaultStyle)
	_ = r.ApplyEntry(state.SampleAt(1, 1, 0))

	if err := r.Clear(); err != nil {
		t.Fatal(err)
	}
	diffCalls(t, []call{{Op: "clear"}}, surf.calls)
	if got := r.Pen(); got.HasLast {
		t.Errorf("Pen() after Clear = %+v, want no anchor", got)
	}
}

func TestRenderer_SurfaceErrors(t *testing.T) {
	r, surf := newTestRenderer(t, DefaultStyle)
	boom := errors.New("boom")
	_ = r.ApplyEntry(state.SampleAt(0, 0, 0))
	surf.err = boom

	if err := r.ApplyEntry(state.SampleAt(1, 1, 1)); !errors.Is(err, boom) {
		t.Errorf("ApplyEntry() = %v, want wrapped surface error", err)
	}
}

func TestRenderer_SnapshotWithoutImager(t *testing.T) {
	r, _ := newTestRenderer(t, DefaultStyle)
	if _, ok := r.Snapshot(); ok {
		t.Error("Snapshot() ok = true for a surface without pixels")
	}
}

func TestNewRenderer_Validation(t *testing.T) {
	if _, err := NewRenderer(nil, DefaultStyle, nil); err == nil {
		t.Error("NewRenderer(nil surface) error = nil")
	}
	if _, err := NewRenderer(&recorder{}, Style{Weight: 0, Color: color.Black}, nil); !errors.Is(err, ErrInvalidStyle) {
		t.Errorf("NewRenderer(weight 0) = %v, want ErrInvalidStyle", err)
	}
}

func TestRenderer_ResizeUnsupported(t *testing.T) {
	r, _ := newTestRenderer(t, DefaultStyle)
	if err := r.Resize(10, 10); err == nil {
		t.Error("Resize() on a fixed surface error = nil")
	}
}
