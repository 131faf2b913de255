package curve

import "math"

const (
	// Epsilon is the X tolerance of the Y-from-X search.
	Epsilon = 1e-4
	// MaxIterations bounds the Y-from-X search.
	MaxIterations = 20
)

// Bezier is a cubic Bezier curve from (0,0) to (1,1) with interior points P1 and P2.
// With both X coordinates in [0,1] the X component is non-decreasing in t.
type Bezier struct {
	P1, P2 Point
}

// At evaluates the curve at parameter t in [0,1].
func (b Bezier) At(t float64) Point {
	u := 1 - t
	w1 := 3 * u * u * t
	w2 := 3 * u * t * t
	w3 := t * t * t
	return Point{
		X: w1*b.P1.X + w2*b.P2.X + w3,
		Y: w1*b.P1.Y + w2*b.P2.Y + w3,
	}
}

// YForX returns the curve's Y at the given X by bisecting the parameter t.
// The search stops once X is within Epsilon or after MaxIterations halvings.
func (b Bezier) YForX(x float64) float64 {
	switch {
	case x <= 0:
		return 0
	case x >= 1:
		return 1
	}

	lo, hi := 0.0, 1.0
	t := x
	for i := 0; i < MaxIterations; i++ {
		t = (lo + hi) / 2
		pt := b.At(t)
		diff := pt.X - x
		if math.Abs(diff) <= Epsilon {
			return pt.Y
		}
		if diff < 0 {
			lo = t
		} else {
			hi = t
		}
	}
	return b.At((lo + hi) / 2).Y
}
