// Package realtime runs the sampling loop on a dedicated OS thread driven by the
// highest resolution waitable timer the host offers.
package realtime

import (
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Period bounds in milliseconds.
const (
	MinPeriodMs = 1
	MaxPeriodMs = 20
)

// ErrStarted is returned by Start on a loop that already ran.
var ErrStarted = errors.New("realtime loop already started")

// Timer is a periodic waitable timer.
type Timer interface {
	// Arm (re)starts the timer with the given period.
	Arm(period time.Duration) error
	// Wait blocks until the next expiry.
	Wait() error
	Close() error
}

// Options configures a Loop. Zero values select the platform timer and the wall clock.
type Options struct {
	NewTimer func() (Timer, error)
	Now      func() time.Time
}

// Loop calls tick once per period. The period is read from an atomic at every tick
// boundary, so writers may change it at any time.
type Loop struct {
	period *atomic.Uint32
	tick   func(now time.Time)
	logger *slog.Logger
	opts   Options

	started atomic.Bool
	stop    atomic.Bool
	done    chan struct{}
	ticks   atomic.Uint64
	once    sync.Once
}

// New returns a loop reading its period in milliseconds from period.
func New(period *atomic.Uint32, tick func(now time.Time), logger *slog.Logger, opts Options) *Loop {
	if opts.NewTimer == nil {
		opts.NewTimer = newPlatformTimer
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		period: period,
		tick:   tick,
		logger: logger,
		opts:   opts,
		done:   make(chan struct{}),
	}
}

// Ticks returns the number of completed ticks.
func (l *Loop) Ticks() uint64 { return l.ticks.Load() }

// Start launches the loop thread.
func (l *Loop) Start() error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrStarted
	}
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(l.done)
		l.run()
	}()
	return nil
}

// Stop asks the loop to exit and waits for the thread to finish. It is safe to call
// more than once and on a loop that never started.
func (l *Loop) Stop() {
	l.stop.Store(true)
	if l.started.Load() {
		<-l.done
	}
}

// Done is closed when the loop thread exits.
func (l *Loop) Done() <-chan struct{} { return l.done }

func clampPeriod(ms uint32) uint32 {
	return min(max(ms, MinPeriodMs), MaxPeriodMs)
}

func periodDuration(ms uint32) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func (l *Loop) run() {
	cur := clampPeriod(l.period.Load())
	timer := l.acquire(cur)
	defer func() { _ = timer.Close() }()

	l.logger.Info("realtime loop started", "periodMs", cur)
	for !l.stop.Load() {
		if err := timer.Wait(); err != nil {
			timer = l.degrade(timer, cur, err)
			continue
		}
		if l.stop.Load() {
			break
		}
		if p := clampPeriod(l.period.Load()); p != cur {
			cur = p
			if err := timer.Arm(periodDuration(cur)); err != nil {
				timer = l.degrade(timer, cur, err)
			}
			l.logger.Debug("realtime period changed", "periodMs", cur)
		}
		l.tick(l.opts.Now())
		l.ticks.Add(1)
	}
	l.logger.Info("realtime loop stopped", "ticks", l.ticks.Load())
}

// acquire returns an armed platform timer, or the sleep timer if that fails.
func (l *Loop) acquire(ms uint32) Timer {
	t, err := l.opts.NewTimer()
	if err == nil {
		if err = t.Arm(periodDuration(ms)); err == nil {
			return t
		}
		_ = t.Close()
	}
	l.logger.Warn("high resolution timer unavailable, using sleep timer", "error", err)
	return l.fallback(ms)
}

func (l *Loop) degrade(t Timer, ms uint32, err error) Timer {
	if _, ok := t.(*sleepTimer); ok {
		// the sleep timer cannot fail; keep it
		return t
	}
	l.logger.Warn("high resolution timer failed, using sleep timer", "error", err)
	_ = t.Close()
	return l.fallback(ms)
}

func (l *Loop) fallback(ms uint32) Timer {
	t := &sleepTimer{now: l.opts.Now}
	_ = t.Arm(periodDuration(ms))
	return t
}

// sleepTimer waits with time.Sleep against a running deadline.
type sleepTimer struct {
	now    func() time.Time
	period time.Duration
	next   time.Time
}

func (t *sleepTimer) Arm(period time.Duration) error {
	t.period = period
	t.next = t.now().Add(period)
	return nil
}

func (t *sleepTimer) Wait() error {
	now := t.now()
	if d := t.next.Sub(now); d > 0 {
		time.Sleep(d)
	}
	t.next = t.next.Add(t.period)
	// fell more than a period behind: resync instead of bursting
	if now.Sub(t.next) > t.period {
		t.next = now.Add(t.period)
	}
	return nil
}

func (t *sleepTimer) Close() error { return nil }
