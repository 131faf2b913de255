// Package curve maps a normalized key travel value through deadzone, curve shape and
// output range into a normalized analog output.
//
// All values are in [0,1]. Evaluate assumes the parameters already satisfy the ordering
// invariants (Low < High, AntiDeadzone < OutputCap); the settings package enforces them
// when values are written.
package curve

import "math"

// Mode selects the curve shape applied after the deadzone rescale.
type Mode uint8

const (
	// ModeSmooth evaluates a weighted cubic Bezier curve.
	ModeSmooth Mode = 0
	// ModeLinear passes the rescaled value through unchanged.
	ModeLinear Mode = 1
)

func (m Mode) String() string {
	switch m {
	case ModeSmooth:
		return "smooth"
	case ModeLinear:
		return "linear"
	default:
		return "unknown"
	}
}

// Point is a position in normalized curve space.
type Point struct {
	X, Y float64
}

// Params holds every tunable of a single response curve.
type Params struct {
	// Input deadzone band. Travel at or below Low yields 0, at or above High yields
	// the full output.
	Low, High float64
	// Output floor and ceiling applied after shaping.
	AntiDeadzone, OutputCap float64
	// Invert flips the input before anything else (x -> 1-x).
	Invert bool
	Mode   Mode
	// Interior Bezier control points. Y is relative to the output range.
	CP1, CP2 Point
	// Influence of each control point: 1 uses it as configured, 0 pulls it onto the
	// straight line.
	CP1Weight, CP2Weight float64
}

// Default returns the factory curve.
func Default() Params {
	return Params{
		Low:          0.05,
		High:         0.95,
		AntiDeadzone: 0,
		OutputCap:    1,
		Mode:         ModeLinear,
		CP1:          Point{X: 0.33, Y: 0.33},
		CP2:          Point{X: 0.67, Y: 0.67},
		CP1Weight:    1,
		CP2Weight:    1,
	}
}

// Evaluate runs raw key travel through the curve.
//
// Travel at or below the deadzone low edge is "not engaged" and returns exactly 0, so a
// released key never leaks the anti-deadzone floor. Anything above it is shaped and then
// mapped into [AntiDeadzone, OutputCap].
func Evaluate(raw float64, p Params) float64 {
	x := clamp01(raw)
	if p.Invert {
		x = 1 - x
	}
	if x <= p.Low {
		return 0
	}

	r := 1.0
	if x < p.High && p.High > p.Low {
		r = (x - p.Low) / (p.High - p.Low)
	}

	shaped := r
	if p.Mode == ModeSmooth {
		shaped = p.Bezier().YForX(r)
	}

	return clamp01(p.AntiDeadzone + shaped*(p.OutputCap-p.AntiDeadzone))
}

// Bezier returns the weighted curve for p in normalized space, endpoints (0,0) and (1,1).
func (p Params) Bezier() Bezier {
	return Bezier{
		P1: weighted(p.CP1, p.CP1Weight),
		P2: weighted(p.CP2, p.CP2Weight),
	}
}

// Sample evaluates the curve at n+1 evenly spaced inputs from 0 to 1.
func Sample(p Params, n int) []Point {
	if n < 1 {
		n = 1
	}
	out := make([]Point, 0, n+1)
	for i := 0; i <= n; i++ {
		x := float64(i) / float64(n)
		out = append(out, Point{X: x, Y: Evaluate(x, p)})
	}
	return out
}

// weighted blends a control point toward the point on the straight line with the same X.
func weighted(cp Point, w float64) Point {
	w = clamp01(w)
	x := clamp01(cp.X)
	y := clamp01(cp.Y)
	return Point{X: x, Y: w*y + (1-w)*x}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
