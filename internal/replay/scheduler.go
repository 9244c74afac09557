// Package replay plays a recorded Log back through a Renderer at roughly the
// pace it was captured.
package replay

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"ArtistBoard/internal/state"
)

// Pacing selects how the wait before each entry is derived from the log.
type Pacing uint8

const (
	// PaceUniform spreads the recorded time span evenly over all entries,
	// boundaries included.
	PaceUniform Pacing = iota
	// PaceRecorded waits the recorded delta between consecutive samples.
	PaceRecorded
)

func (p Pacing) String() string {
	switch p {
	case PaceUniform:
		return "uniform"
	case PaceRecorded:
		return "recorded"
	}
	return fmt.Sprintf("Pacing(%d)", uint8(p))
}

// ParsePacing is the inverse of Pacing.String.
func ParsePacing(s string) (Pacing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "uniform":
		return PaceUniform, nil
	case "recorded":
		return PaceRecorded, nil
	}
	return 0, fmt.Errorf("unknown pacing %q", s)
}

// DefaultMinInterval is the shortest wait between two entries.
const DefaultMinInterval = time.Millisecond

// Applier receives replayed entries. *render.Renderer implements it.
type Applier interface {
	ApplyEntry(e state.Entry) error
}

type Options struct {
	Pacing      Pacing
	MinInterval time.Duration // defaults to DefaultMinInterval
	Clock       Clock         // defaults to SystemClock
	Logger      *slog.Logger  // nil discards
}

// Scheduler runs at most one replay at a time against its target. Starting a
// new replay cancels the running one.
type Scheduler struct {
	target Applier
	pacing Pacing
	min    time.Duration
	clock  Clock
	logger *slog.Logger

	mu      sync.Mutex
	current *Task
}

func NewScheduler(target Applier, opts Options) *Scheduler {
	s := &Scheduler{
		target: target,
		pacing: opts.Pacing,
		min:    opts.MinInterval,
		clock:  opts.Clock,
		logger: opts.Logger,
	}
	if s.min <= 0 {
		s.min = DefaultMinInterval
	}
	if s.clock == nil {
		s.clock = SystemClock{}
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	s.logger = s.logger.With("component", "replay")
	return s
}

// Play starts replaying a private copy of l. The returned task completes
// once every entry has been applied, or ends early on cancellation, on ctx
// cancellation, or on the first ApplyEntry error. An empty log yields a task
// that is already complete.
func (s *Scheduler) Play(ctx context.Context, l state.Log) *Task {
	t := newTask(ctx)
	s.mu.Lock()
	prev := s.current
	s.current = t
	s.mu.Unlock()
	if prev != nil {
		prev.Cancel()
	}

	if len(l) == 0 {
		s.logger.Debug("empty log, nothing to replay")
		t.finish(nil)
		return t
	}

	entries := l.Clone()
	delays := Delays(entries, s.pacing, s.min)
	s.logger.Info("replay started", "entries", len(entries), "pacing", s.pacing.String(), "first_delay", delays[0])
	go s.run(t, entries, delays)
	return t
}

func (s *Scheduler) run(t *Task, entries state.Log, delays []time.Duration) {
	for i, e := range entries {
		timer := s.clock.NewTimer(delays[i])
		select {
		case <-t.ctx.Done():
			timer.Stop()
			s.logger.Info("replay canceled", "applied", t.Applied(), "entries", len(entries))
			t.finish(t.ctx.Err())
			return
		case <-timer.C():
		}
		if err := t.apply(s.target, e); err != nil {
			s.logger.Warn("replay stopped", "applied", t.Applied(), "err", err)
			t.finish(err)
			return
		}
	}
	s.logger.Info("replay finished", "entries", len(entries))
	t.finish(nil)
}

// Stop cancels the running replay, if any.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	t := s.current
	s.mu.Unlock()
	// Cancel waits for an in-flight ApplyEntry, which may call back into
	// the scheduler.
	if t != nil {
		t.Cancel()
	}
}

// Active reports whether a replay is in progress.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil && !s.current.finished()
}

// Delays returns the wait before each entry of l.
//
// With PaceUniform every entry waits (lastSampleTime - firstSampleTime) /
// len(l). The divisor counts boundaries too, which matches how tapes have
// always been played back; logs with many short strokes therefore replay a
// little faster than captured. With PaceRecorded each sample waits the time
// since the previous sample and boundaries do not wait at all. Waits never
// drop below minInterval except for boundaries under PaceRecorded.
func Delays(l state.Log, p Pacing, minInterval time.Duration) []time.Duration {
	out := make([]time.Duration, len(l))
	if len(l) == 0 {
		return out
	}
	switch p {
	case PaceRecorded:
		var prev int64
		seen := false
		for i, e := range l {
			switch {
			case e.IsBoundary():
				out[i] = 0
			case !seen:
				out[i] = minInterval
			default:
				out[i] = max(time.Duration(e.Sample.Time-prev)*time.Millisecond, minInterval)
			}
			if !e.IsBoundary() {
				prev = e.Sample.Time
				seen = true
			}
		}
	default:
		interval := minInterval
		if first, last, ok := l.Span(); ok {
			span := time.Duration(last-first) * time.Millisecond
			interval = max(span/time.Duration(len(l)), minInterval)
		}
		for i := range out {
			out[i] = interval
		}
	}
	return out
}

// Task is a handle on one running replay.
type Task struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	stopped bool
	applied int

	once sync.Once
	done chan struct{}
	err  error
}

func newTask(parent context.Context) *Task {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Task{ctx: ctx, cancel: cancel, done: make(chan struct{})}
}

// Cancel stops the replay. Once Cancel returns no further entry is applied.
// It is safe to call more than once and after completion.
func (t *Task) Cancel() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
	t.cancel()
}

func (t *Task) apply(target Applier, e state.Entry) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return context.Canceled
	}
	if err := t.ctx.Err(); err != nil {
		return err
	}
	if err := target.ApplyEntry(e); err != nil {
		return err
	}
	t.applied++
	return nil
}

func (t *Task) finish(err error) {
	t.once.Do(func() {
		t.err = err
		close(t.done)
		t.cancel()
	})
}

func (t *Task) finished() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Done is closed when the replay has ended for any reason.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err is nil while running and after a full replay; otherwise it reports
// why the replay ended early (context.Canceled after Cancel).
func (t *Task) Err() error {
	if !t.finished() {
		return nil
	}
	return t.err
}

// Wait blocks until the replay ends or ctx is done.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Applied reports how many entries have been drawn so far.
func (t *Task) Applied() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.applied
}
