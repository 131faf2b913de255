package input

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/holoplot/go-evdev"
	"golang.org/x/sync/errgroup"
)

// key event values
const (
	evPress  = 1
	evRepeat = 2
)

// EvdevSource reads keyboards and mice from /dev/input/event* devices.
type EvdevSource struct {
	// Paths lists devices to open. Empty selects every device reporting key events.
	Paths []string
	// Grab takes exclusive access so the desktop does not also see the input.
	Grab   bool
	Clock  Clock
	Logger *slog.Logger
}

// NewEvdevSource returns a source over paths, or over every key device when empty.
func NewEvdevSource(paths []string, grab bool, clock Clock, logger *slog.Logger) *EvdevSource {
	return &EvdevSource{Paths: paths, Grab: grab, Clock: clock, Logger: logger}
}

func (s *EvdevSource) discover() ([]string, error) {
	if len(s.Paths) > 0 {
		return s.Paths, nil
	}
	found, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("list input devices: %w", err)
	}
	var out []string
	for _, p := range found {
		dev, err := evdev.Open(p.Path)
		if err != nil {
			continue
		}
		if slices.Contains(dev.CapableTypes(), evdev.EV_KEY) {
			out = append(out, p.Path)
			s.Logger.Debug("found input device", "path", p.Path, "name", p.Name)
		}
		_ = dev.Close()
	}
	if len(out) == 0 {
		return nil, errors.New("no input devices with key events found (root or the input group is required)")
	}
	return out, nil
}

// Run opens every device and forwards events to h until ctx is cancelled.
func (s *EvdevSource) Run(ctx context.Context, h Handler) error {
	paths, err := s.discover()
	if err != nil {
		return err
	}

	type opened struct {
		path string
		dev  *evdev.InputDevice
	}
	devs := make([]opened, 0, len(paths))
	for _, p := range paths {
		dev, err := evdev.Open(p)
		if err != nil {
			s.Logger.Warn("failed to open input device", "path", p, "error", err)
			continue
		}
		if s.Grab {
			if err := dev.Grab(); err != nil {
				s.Logger.Warn("failed to grab input device", "path", p, "error", err)
			}
		}
		devs = append(devs, opened{path: p, dev: dev})
	}
	if len(devs) == 0 {
		return errors.New("no input device could be opened")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		// closing unblocks ReadOne
		for _, d := range devs {
			_ = d.dev.Close()
		}
		return nil
	})
	var alive atomic.Int32
	alive.Store(int32(len(devs)))
	for _, d := range devs {
		g.Go(func() error {
			for {
				ev, err := d.dev.ReadOne()
				if err != nil {
					if gctx.Err() != nil {
						return nil
					}
					s.Logger.Warn("input device read failed", "path", d.path, "error", err)
					if alive.Add(-1) == 0 {
						return errors.New("every input device is gone")
					}
					return nil
				}
				s.dispatch(ev, h)
			}
		})
	}
	return g.Wait()
}

func (s *EvdevSource) dispatch(ev *evdev.InputEvent, h Handler) {
	ts := s.Clock.NowMs()
	switch ev.Type {
	case evdev.EV_KEY:
		if ev.Value == evRepeat {
			return
		}
		down := ev.Value == evPress
		if b, ok := linuxButtons[ev.Code]; ok {
			h.OnMouseEvent(b, down, ts)
			return
		}
		if code, ok := FromLinuxKey(ev.Code); ok {
			h.OnKeyEvent(code, down, ts)
		}
	case evdev.EV_REL:
		if ev.Code == evdev.REL_WHEEL {
			h.OnWheel(int(ev.Value), ts)
		}
	}
}

var _ Source = (*EvdevSource)(nil)
