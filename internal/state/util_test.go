package state

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	opts = append(opts, cmpopts.EquateEmpty())
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Errorf("unexpected result (-want +got):\n%s", d)
	}
}

// stepClock returns the queued timestamps in order and repeats the last one.
func stepClock(times ...int64) Clock {
	i := 0
	return ClockFunc(func() int64 {
		if i >= len(times) {
			return times[len(times)-1]
		}
		t := times[i]
		i++
		return t
	})
}

func begin(x, y float64) PointerEvent  { return PointerEvent{Kind: PointerBegin, Pos: Pt(x, y)} }
func move(x, y float64) PointerEvent   { return PointerEvent{Kind: PointerMove, Pos: Pt(x, y)} }
func end(x, y float64) PointerEvent    { return PointerEvent{Kind: PointerEnd, Pos: Pt(x, y)} }
func cancel(x, y float64) PointerEvent { return PointerEvent{Kind: PointerCancel, Pos: Pt(x, y)} }
