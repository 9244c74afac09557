package state

import (
	"log/slog"
	"sync"
)

// Recorder turns normalized pointer events into a Log. It is a two state
// machine: idle until a Begin, capturing until the matching End or Cancel.
type Recorder struct {
	mu        sync.Mutex
	clock     Clock
	logger    *slog.Logger
	log       Log
	capturing bool
	// stroke bookkeeping for the open stroke
	strokeSamples int
	lastTime      int64
	session       string
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithClock replaces the capture clock.
func WithClock(c Clock) RecorderOption {
	return func(r *Recorder) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithLogger sets the logger used for stroke lifecycle messages.
func WithLogger(l *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRecorder returns an idle Recorder with an empty Log.
func NewRecorder(opts ...RecorderOption) *Recorder {
	r := &Recorder{
		clock:   NewSystemClock(),
		logger:  slog.New(slog.DiscardHandler),
		session: newSessionID(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "recorder")
	return r
}

// Handle advances the state machine with ev and returns the entries it
// appended to the Log, in order. Events that are not valid in the current
// state are dropped and yield nil.
func (r *Recorder) Handle(ev PointerEvent) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev.Kind {
	case PointerBegin:
		var out []Entry
		if r.capturing {
			// The previous stroke never saw its end event.
			r.logger.Debug("begin while capturing, closing open stroke")
			out = append(out, r.closeStroke()...)
		}
		r.capturing = true
		r.strokeSamples = 0
		return out
	case PointerMove:
		if !r.capturing {
			return nil
		}
		e := r.sample(ev.Pos)
		return []Entry{e}
	case PointerEnd, PointerCancel:
		if !r.capturing {
			return nil
		}
		// A press and release without movement is an empty stroke.
		if r.strokeSamples == 0 {
			return r.closeStroke()
		}
		e := r.sample(ev.Pos)
		return append([]Entry{e}, r.closeStroke()...)
	}
	return nil
}

func (r *Recorder) sample(p Point) Entry {
	t := r.clock.Now()
	if r.strokeSamples > 0 && t < r.lastTime {
		t = r.lastTime
	}
	r.lastTime = t
	r.strokeSamples++
	e := SampleEntry(Sample{Point: p, Time: t})
	r.log = append(r.log, e)
	return e
}

func (r *Recorder) closeStroke() []Entry {
	r.log = append(r.log, Boundary)
	r.logger.Debug("stroke closed", "samples", r.strokeSamples, "entries", len(r.log))
	r.capturing = false
	r.strokeSamples = 0
	return []Entry{Boundary}
}

// Reset discards the Log, returns to idle and starts a new session.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = nil
	r.capturing = false
	r.strokeSamples = 0
	r.lastTime = 0
	r.session = newSessionID()
	r.logger.Debug("reset", "session", r.session)
}

// Log returns a copy of the entries recorded so far.
func (r *Recorder) Log() Log {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.log.Clone()
}

// Capturing reports whether a stroke is open.
func (r *Recorder) Capturing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.capturing
}

// Session identifies the current capture session. It changes on Reset.
func (r *Recorder) Session() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}
