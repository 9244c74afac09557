package state

import "math"

// Point is a position in surface-local coordinates.
type Point struct{ X, Y float64 }

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Finite reports whether both coordinates are finite numbers.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Sample is one recorded pen position. Time is in milliseconds.
type Sample struct {
	Point Point
	Time  int64
}

type EntryKind uint8

const (
	KindSample EntryKind = iota
	KindBoundary
)

func (k EntryKind) String() string {
	switch k {
	case KindSample:
		return "sample"
	case KindBoundary:
		return "boundary"
	}
	return "unknown"
}

// Entry is either a Sample or a stroke Boundary. For boundaries the Sample
// field is always zero.
type Entry struct {
	Kind   EntryKind
	Sample Sample
}

// Boundary ends the current stroke.
var Boundary = Entry{Kind: KindBoundary}

// SampleEntry wraps s in an Entry.
func SampleEntry(s Sample) Entry {
	return Entry{Kind: KindSample, Sample: s}
}

// SampleAt builds a sample entry from raw values.
func SampleAt(x, y float64, t int64) Entry {
	return SampleEntry(Sample{Point: Pt(x, y), Time: t})
}

func (e Entry) IsBoundary() bool { return e.Kind == KindBoundary }

// Log is an ordered tape of entries. Insertion order is temporal order.
type Log []Entry

// Clone returns a copy that shares no backing array with l.
func (l Log) Clone() Log {
	if l == nil {
		return nil
	}
	out := make(Log, len(l))
	copy(out, l)
	return out
}

// Samples counts the sample entries in l.
func (l Log) Samples() int {
	n := 0
	for _, e := range l {
		if !e.IsBoundary() {
			n++
		}
	}
	return n
}

// Strokes counts the boundaries in l, which is the number of closed strokes.
func (l Log) Strokes() int {
	return len(l) - l.Samples()
}

// Span returns the timestamps of the first and last samples. ok is false
// when l holds no samples.
func (l Log) Span() (first, last int64, ok bool) {
	for _, e := range l {
		if e.IsBoundary() {
			continue
		}
		if !ok {
			first = e.Sample.Time
			ok = true
		}
		last = e.Sample.Time
	}
	return first, last, ok
}

// PointerKind is the abstract pointer action produced by input normalization.
type PointerKind uint8

const (
	PointerBegin PointerKind = iota
	PointerMove
	PointerEnd
	PointerCancel
)

func (k PointerKind) String() string {
	switch k {
	case PointerBegin:
		return "begin"
	case PointerMove:
		return "move"
	case PointerEnd:
		return "end"
	case PointerCancel:
		return "cancel"
	}
	return "unknown"
}

// PointerEvent is a device-independent pointer event in surface-local space.
type PointerEvent struct {
	Kind PointerKind
	Pos  Point
}
