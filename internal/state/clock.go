package state

import (
	"time"

	"github.com/google/uuid"
)

// Clock supplies capture timestamps in milliseconds since an arbitrary but
// consistent epoch.
type Clock interface {
	Now() int64
}

// ClockFunc adapts a plain function to Clock.
type ClockFunc func() int64

func (f ClockFunc) Now() int64 { return f() }

type systemClock struct {
	epoch time.Time
}

// NewSystemClock returns a Clock anchored at the current wall time and
// advanced by the monotonic clock, so wall clock jumps never reorder samples.
func NewSystemClock() Clock {
	return systemClock{epoch: time.Now()}
}

func (c systemClock) Now() int64 {
	return c.epoch.UnixMilli() + time.Since(c.epoch).Milliseconds()
}

func newSessionID() string {
	return uuid.NewString()
}
