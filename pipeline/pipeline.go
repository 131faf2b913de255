// Package pipeline turns key state into gamepad reports.
//
// A Pipeline is the input.Handler for the capture source and the tick function of the
// realtime loop. Each tick advances macro playback, samples every bound key through its
// curve, arbitrates opposing stick directions and submits the report.
package pipeline

import (
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/Alia5/kb2pad/axis"
	"github.com/Alia5/kb2pad/curve"
	"github.com/Alia5/kb2pad/gamepad"
	"github.com/Alia5/kb2pad/hid"
	"github.com/Alia5/kb2pad/input"
	"github.com/Alia5/kb2pad/macro"
	"github.com/Alia5/kb2pad/settings"
	"github.com/Alia5/kb2pad/sink"
)

// submitErrEvery rate limits sink error logs.
const submitErrEvery = 5 * time.Second

type Options struct {
	// Host receives macro output in addition to the synthetic input layer, for
	// example a uinput keyboard. Optional.
	Host macro.Emitter
	// Roll overrides the random source of macro conditions.
	Roll func() int64
}

type Pipeline struct {
	settings *settings.Settings
	state    *input.State
	engine   *macro.Engine
	sink     sink.Sink
	clock    input.Clock
	logger   *slog.Logger
	host     macro.Emitter

	lastErrLog atomic.Int64
	ticks      atomic.Uint64
}

func New(s *settings.Settings, out sink.Sink, clock input.Clock, logger *slog.Logger, opts Options) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = input.NewClock()
	}
	p := &Pipeline{
		settings: s,
		state:    input.NewState(),
		sink:     out,
		clock:    clock,
		logger:   logger,
		host:     opts.Host,
	}
	p.lastErrLog.Store(math.MinInt64)
	p.engine = macro.NewEngine(p.state, synthetic{p}, logger.With("component", "macro"), macro.Options{
		Roll:          opts.Roll,
		ComboRepeatMs: func() int64 { return int64(s.ComboRepeatMs()) },
	})
	return p
}

func (p *Pipeline) Engine() *macro.Engine        { return p.engine }
func (p *Pipeline) State() *input.State          { return p.state }
func (p *Pipeline) Settings() *settings.Settings { return p.settings }
func (p *Pipeline) Clock() input.Clock           { return p.clock }

// Ticks returns the number of reports submitted so far.
func (p *Pipeline) Ticks() uint64 { return p.ticks.Load() }

func (p *Pipeline) ramp() input.Ramp {
	return input.Ramp{UpMs: p.settings.RampUpMs(), DownMs: p.settings.RampDownMs()}
}

func (p *Pipeline) OnKeyEvent(key hid.Code, down bool, ts int64) {
	p.state.SetKey(input.Physical, key, down, ts, p.ramp())
	p.engine.OnKeyEvent(key, down, ts)
}

func (p *Pipeline) OnMouseEvent(b input.MouseButton, down bool, ts int64) {
	p.state.SetMouse(input.Physical, b, down, ts)
	p.engine.OnMouseEvent(b, down, ts)
}

func (p *Pipeline) OnWheel(delta int, ts int64) {
	p.engine.OnWheel(delta, ts)
}

// OnAnalogKey records a depth reading; crossing zero counts as a press or release for
// macros.
func (p *Pipeline) OnAnalogKey(key hid.Code, value float64, ts int64) {
	was := p.state.KeyDown(input.Physical, key)
	p.state.SetAnalog(input.Physical, key, value, ts)
	if now := value > 0; now != was {
		p.engine.OnKeyEvent(key, now, ts)
	}
}

// Tick is the realtime loop callback.
func (p *Pipeline) Tick(time.Time) {
	p.Step(p.clock.NowMs())
}

// Step advances macros to now, composes the report and submits it.
func (p *Pipeline) Step(now int64) gamepad.Report {
	p.engine.Advance(now)
	r := p.Compose(now)
	p.ticks.Add(1)
	if err := p.sink.Submit(r); err != nil {
		last := p.lastErrLog.Load()
		if last == math.MinInt64 || now-last >= submitErrEvery.Milliseconds() {
			p.lastErrLog.Store(now)
			p.logger.Warn("failed to submit report", "error", err)
		}
	}
	return r
}

type targetSample struct {
	side    axis.Side
	engaged bool
}

// sample combines every key bound to t: the strongest curve output wins, the side is
// pressed while any key is down and its press time is that of the newest held key.
func (p *Pipeline) sample(t gamepad.Target, now int64, r input.Ramp) targetSample {
	var out targetSample
	for _, k := range p.settings.Bindings.Keys(t) {
		smp := p.state.Key(k, now, r, p.engine.Blocked(k))
		params := p.settings.Keys.Effective(k, p.settings.Global)
		out.side.Value = max(out.side.Value, curve.Evaluate(smp.Value, params))
		if smp.Down {
			out.side.Pressed = true
			out.side.PressedAt = max(out.side.PressedAt, smp.PressedAt)
		}
		if smp.Value > params.Low {
			out.engaged = true
		}
	}
	return out
}

// Compose builds the report for now without side effects.
func (p *Pipeline) Compose(now int64) gamepad.Report {
	r := p.ramp()
	policy := p.settings.Policy()
	side := func(t gamepad.Target) axis.Side { return p.sample(t, now, r).side }

	rep := gamepad.Report{
		LX: gamepad.AxisFromFloat(axis.Resolve(side(gamepad.LeftStickLeft), side(gamepad.LeftStickRight), policy)),
		LY: gamepad.AxisFromFloat(axis.Resolve(side(gamepad.LeftStickDown), side(gamepad.LeftStickUp), policy)),
		RX: gamepad.AxisFromFloat(axis.Resolve(side(gamepad.RightStickLeft), side(gamepad.RightStickRight), policy)),
		RY: gamepad.AxisFromFloat(axis.Resolve(side(gamepad.RightStickDown), side(gamepad.RightStickUp), policy)),
		LT: gamepad.TriggerFromFloat(side(gamepad.TriggerLeft).Value),
		RT: gamepad.TriggerFromFloat(side(gamepad.TriggerRight).Value),
	}
	for _, t := range gamepad.Targets() {
		mask, ok := t.Button()
		if ok && p.sample(t, now, r).engaged {
			rep.Buttons |= mask
		}
	}
	return rep
}

// synthetic applies macro output to the synthetic input layer and forwards it to the
// host emitter.
type synthetic struct{ p *Pipeline }

func (s synthetic) EmitKey(key hid.Code, down bool, at int64) error {
	s.p.state.SetKey(input.Synthetic, key, down, at, s.p.ramp())
	if s.p.host != nil {
		return s.p.host.EmitKey(key, down, at)
	}
	return nil
}

func (s synthetic) EmitMouse(b input.MouseButton, down bool, at int64) error {
	s.p.state.SetMouse(input.Synthetic, b, down, at)
	if s.p.host != nil {
		return s.p.host.EmitMouse(b, down, at)
	}
	return nil
}

func (s synthetic) EmitWheel(delta int, at int64) error {
	if s.p.host != nil {
		return s.p.host.EmitWheel(delta, at)
	}
	return nil
}
