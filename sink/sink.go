// Package sink delivers composed gamepad reports to their consumers.
package sink

import (
	"errors"
	"sync"

	"github.com/Alia5/kb2pad/gamepad"
	"github.com/Alia5/kb2pad/internal/log"
)

// Sink receives one report per tick. Submit runs on the realtime thread and must not
// block.
type Sink interface {
	Submit(r gamepad.Report) error
	Close() error
}

// Multi submits to every sink in order and joins their errors.
type Multi []Sink

func (m Multi) Submit(r gamepad.Report) error {
	var errs []error
	for _, s := range m {
		if err := s.Submit(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Changed forwards a report only when it differs from the previous one.
type Changed struct {
	next Sink
	mu   sync.Mutex
	last gamepad.Report
	have bool
}

func NewChanged(next Sink) *Changed { return &Changed{next: next} }

func (c *Changed) Submit(r gamepad.Report) error {
	c.mu.Lock()
	if c.have && c.last == r {
		c.mu.Unlock()
		return nil
	}
	c.last, c.have = r, true
	c.mu.Unlock()
	return c.next.Submit(r)
}

func (c *Changed) Close() error { return c.next.Close() }

// Log writes the wired USB form of every report to a raw logger.
type Log struct{ raw log.RawLogger }

func NewLog(raw log.RawLogger) *Log { return &Log{raw: raw} }

func (l *Log) Submit(r gamepad.Report) error {
	l.raw.Log(true, r.BuildReport())
	return nil
}

func (l *Log) Close() error { return nil }

// Discard drops every report.
type Discard struct{}

func (Discard) Submit(gamepad.Report) error { return nil }
func (Discard) Close() error                { return nil }
