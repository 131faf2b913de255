// Package settings owns every runtime tunable: the global curve, per-key curves,
// gamepad bindings and loop/arbitration options.
//
// All reads are lock-free so the realtime loop can sample settings every tick while the
// CLI or a config reload writes them. Setters clamp out-of-range values instead of
// failing.
package settings

import (
	"math"
	"sync/atomic"

	"github.com/Alia5/kb2pad/axis"
	"github.com/Alia5/kb2pad/curve"
)

const (
	MinPollingRateMs     = 1
	MaxPollingRateMs     = 20
	DefaultPollingRateMs = 4

	MaxRampMs = 2000

	DefaultComboRepeatMs = 100
	MaxComboRepeatMs     = 10000

	DefaultSensitivity = 0.1
)

// Settings is the process-wide configuration context.
type Settings struct {
	Global   *Curve
	Keys     *KeyStore
	Bindings *Bindings

	pollingRateMs   atomic.Uint32
	snappy          atomic.Bool
	lastKeyPriority atomic.Bool
	sensitivity     atomic.Uint32 // x1000
	rampUpMs        atomic.Uint32
	rampDownMs      atomic.Uint32
	comboRepeatMs   atomic.Uint32
}

// New returns settings with factory defaults and the default key bindings.
func New() *Settings {
	s := &Settings{
		Global:   NewCurve(curve.Default()),
		Keys:     NewKeyStore(),
		Bindings: NewBindings(),
	}
	s.Reset()
	s.Bindings.Defaults()
	return s
}

// Reset restores factory defaults for everything except bindings and per-key curves.
func (s *Settings) Reset() {
	s.Global.Store(curve.Default())
	s.pollingRateMs.Store(DefaultPollingRateMs)
	s.snappy.Store(false)
	s.lastKeyPriority.Store(false)
	s.SetSensitivity(DefaultSensitivity)
	s.rampUpMs.Store(0)
	s.rampDownMs.Store(0)
	s.comboRepeatMs.Store(DefaultComboRepeatMs)
}

// PollingRateMs is the realtime loop period in milliseconds.
func (s *Settings) PollingRateMs() int { return int(s.pollingRateMs.Load()) }

func (s *Settings) SetPollingRateMs(ms int) {
	s.pollingRateMs.Store(uint32(clampInt(ms, MinPollingRateMs, MaxPollingRateMs)))
}

// PollingRate returns a pointer to the raw period word for the loop to poll.
func (s *Settings) PollingRate() *atomic.Uint32 { return &s.pollingRateMs }

func (s *Settings) SnappyJoystick() bool      { return s.snappy.Load() }
func (s *Settings) SetSnappyJoystick(v bool)  { s.snappy.Store(v) }
func (s *Settings) LastKeyPriority() bool     { return s.lastKeyPriority.Load() }
func (s *Settings) SetLastKeyPriority(v bool) { s.lastKeyPriority.Store(v) }

// Sensitivity is the LastKeyPriority near-tie threshold.
func (s *Settings) Sensitivity() float64 { return fromUnits(s.sensitivity.Load()) }

func (s *Settings) SetSensitivity(v float64) {
	if math.IsNaN(v) {
		v = axis.MinSensitivity
	}
	v = math.Max(axis.MinSensitivity, math.Min(axis.MaxSensitivity, v))
	s.sensitivity.Store(toUnits(v))
}

// Policy returns the active arbitration policy. LastKeyPriority takes precedence when
// both toggles are set.
func (s *Settings) Policy() axis.Policy {
	p := axis.Policy{Mode: axis.Cancel, Sensitivity: s.Sensitivity()}
	switch {
	case s.LastKeyPriority():
		p.Mode = axis.LastKeyPriority
	case s.SnappyJoystick():
		p.Mode = axis.Snappy
	}
	return p
}

// RampUpMs is how long a digital key takes to reach full travel. 0 is instant.
func (s *Settings) RampUpMs() int { return int(s.rampUpMs.Load()) }

func (s *Settings) SetRampUpMs(ms int) { s.rampUpMs.Store(uint32(clampInt(ms, 0, MaxRampMs))) }

// RampDownMs is how long a released digital key takes to return to 0. 0 is instant.
func (s *Settings) RampDownMs() int { return int(s.rampDownMs.Load()) }

func (s *Settings) SetRampDownMs(ms int) { s.rampDownMs.Store(uint32(clampInt(ms, 0, MaxRampMs))) }

// ComboRepeatMs is the global repeat interval for held mouse combos.
func (s *Settings) ComboRepeatMs() int { return int(s.comboRepeatMs.Load()) }

func (s *Settings) SetComboRepeatMs(ms int) {
	s.comboRepeatMs.Store(uint32(clampInt(ms, 1, MaxComboRepeatMs)))
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
