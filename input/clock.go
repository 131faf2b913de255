package input

import (
	"sync/atomic"
	"time"
)

// Clock supplies monotonic millisecond timestamps shared by every event producer.
type Clock interface {
	NowMs() int64
}

type monoClock struct {
	start time.Time
}

// NewClock returns a monotonic clock starting at 0.
func NewClock() Clock {
	return monoClock{start: time.Now()}
}

func (c monoClock) NowMs() int64 {
	return time.Since(c.start).Milliseconds()
}

// ManualClock is a clock advanced by hand, for tests and replays.
type ManualClock struct {
	ms atomic.Int64
}

func (c *ManualClock) NowMs() int64     { return c.ms.Load() }
func (c *ManualClock) Set(ms int64)     { c.ms.Store(ms) }
func (c *ManualClock) Advance(ms int64) { c.ms.Add(ms) }
