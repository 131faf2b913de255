// Package axis resolves two opposing key values into one signed stick axis.
package axis

import "math"

// Mode selects how simultaneous opposite presses are arbitrated.
type Mode uint8

const (
	// Cancel subtracts the negative side from the positive side.
	Cancel Mode = iota
	// Snappy keeps the stronger side instead of cancelling; ties go to the newer press.
	Snappy
	// LastKeyPriority lets the newer press win outright when both sides are within
	// Sensitivity of each other, and otherwise behaves like Snappy.
	LastKeyPriority
)

func (m Mode) String() string {
	switch m {
	case Cancel:
		return "cancel"
	case Snappy:
		return "snappy"
	case LastKeyPriority:
		return "last-key-priority"
	default:
		return "unknown"
	}
}

const (
	MinSensitivity = 0.02
	MaxSensitivity = 0.95
)

// Policy is the arbitration mode plus the LastKeyPriority near-tie threshold.
type Policy struct {
	Mode        Mode
	Sensitivity float64
}

// Side is the state of one direction of an axis.
type Side struct {
	// Curve output in [0,1].
	Value float64
	// Pressed is true while the key is physically held.
	Pressed bool
	// PressedAt is the press timestamp in milliseconds, valid while Pressed.
	PressedAt int64
}

// Resolve combines the negative and positive sides into a value in [-1,1].
func Resolve(neg, pos Side, p Policy) float64 {
	nv := clamp01(neg.Value)
	pv := clamp01(pos.Value)

	if p.Mode == Cancel || !neg.Pressed || !pos.Pressed {
		return pv - nv
	}

	if p.Mode == LastKeyPriority && math.Abs(pv-nv) < clampSensitivity(p.Sensitivity) {
		return newer(neg, pos, nv, pv)
	}

	switch {
	case pv > nv:
		return pv
	case nv > pv:
		return -nv
	default:
		return newer(neg, pos, nv, pv)
	}
}

// newer returns the value of the more recently pressed side; equal timestamps cancel.
func newer(neg, pos Side, nv, pv float64) float64 {
	switch {
	case pos.PressedAt > neg.PressedAt:
		return pv
	case neg.PressedAt > pos.PressedAt:
		return -nv
	default:
		return pv - nv
	}
}

func clampSensitivity(s float64) float64 {
	if math.IsNaN(s) {
		return MinSensitivity
	}
	return math.Max(MinSensitivity, math.Min(MaxSensitivity, s))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, 1)
}
