package curve_test

import (
	"math"
	"testing"

	"github.com/Alia5/kb2pad/curve"
	"github.com/stretchr/testify/assert"
)

func TestEvaluateLinearMonotonic(t *testing.T) {
	cases := []curve.Params{
		curve.Default(),
		{Low: 0.2, High: 0.6, AntiDeadzone: 0.3, OutputCap: 0.8, Mode: curve.ModeLinear},
		{Low: 0, High: 1, AntiDeadzone: 0, OutputCap: 1, Mode: curve.ModeLinear, Invert: true},
	}
	for _, p := range cases {
		prev := -1.0
		for i := 0; i <= 1000; i++ {
			x := float64(i) / 1000
			if p.Invert {
				x = 1 - x
			}
			y := curve.Evaluate(x, p)
			assert.GreaterOrEqual(t, y, prev, "x=%v params=%+v", x, p)
			prev = y
		}
	}
}

func TestEvaluateDeadzoneBoundaries(t *testing.T) {
	type testCase struct {
		name   string
		params curve.Params
	}
	smooth := curve.Default()
	smooth.Mode = curve.ModeSmooth
	smooth.CP1 = curve.Point{X: 0.2, Y: 0.8}
	smooth.CP2 = curve.Point{X: 0.6, Y: 0.9}

	cases := []testCase{
		{name: "linear default", params: curve.Default()},
		{name: "linear narrowed", params: curve.Params{Low: 0.08, High: 0.9, AntiDeadzone: 0.25, OutputCap: 0.75, Mode: curve.ModeLinear}},
		{name: "smooth", params: smooth},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, 0.0, curve.Evaluate(tc.params.Low, tc.params))
			assert.InDelta(t, tc.params.OutputCap, curve.Evaluate(tc.params.High, tc.params), 1e-9)
			assert.InDelta(t, tc.params.OutputCap, curve.Evaluate(1, tc.params), 1e-9)
			assert.Equal(t, 0.0, curve.Evaluate(0, tc.params))
		})
	}
}

func TestEvaluateAntiDeadzoneFloor(t *testing.T) {
	p := curve.Params{Low: 0.1, High: 0.9, AntiDeadzone: 0.3, OutputCap: 1, Mode: curve.ModeLinear}
	got := curve.Evaluate(0.1001, p)
	assert.InDelta(t, 0.3, got, 0.001)
	assert.InDelta(t, 0.65, curve.Evaluate(0.5, p), 1e-9)
}

func TestEvaluateInvert(t *testing.T) {
	p := curve.Params{Low: 0, High: 1, AntiDeadzone: 0, OutputCap: 1, Mode: curve.ModeLinear, Invert: true}
	assert.InDelta(t, 0.75, curve.Evaluate(0.25, p), 1e-9)
	assert.Equal(t, 0.0, curve.Evaluate(1, p))
}

func TestEvaluateClampsInput(t *testing.T) {
	p := curve.Default()
	assert.Equal(t, 0.0, curve.Evaluate(-3, p))
	assert.Equal(t, 1.0, curve.Evaluate(7, p))
	assert.Equal(t, 0.0, curve.Evaluate(math.NaN(), p))
}

func TestSmoothZeroWeightMatchesLinear(t *testing.T) {
	lin := curve.Params{Low: 0, High: 1, AntiDeadzone: 0, OutputCap: 1, Mode: curve.ModeLinear}
	smooth := lin
	smooth.Mode = curve.ModeSmooth
	smooth.CP1 = curve.Point{X: 0.3, Y: 0.95}
	smooth.CP2 = curve.Point{X: 0.7, Y: 0.05}
	smooth.CP1Weight = 0
	smooth.CP2Weight = 0

	for i := 1; i < 100; i++ {
		x := float64(i) / 100
		assert.InDelta(t, curve.Evaluate(x, lin), curve.Evaluate(x, smooth), 1e-3, "x=%v", x)
	}
}

func TestSmoothBendsTowardControlPoints(t *testing.T) {
	p := curve.Params{Low: 0, High: 1, AntiDeadzone: 0, OutputCap: 1, Mode: curve.ModeSmooth,
		CP1: curve.Point{X: 0.1, Y: 0.9}, CP2: curve.Point{X: 0.2, Y: 1}, CP1Weight: 1, CP2Weight: 1}
	assert.Greater(t, curve.Evaluate(0.3, p), 0.6)

	p.CP1 = curve.Point{X: 0.8, Y: 0}
	p.CP2 = curve.Point{X: 0.9, Y: 0.1}
	assert.Less(t, curve.Evaluate(0.3, p), 0.1)
}

func TestBezierYForXTolerance(t *testing.T) {
	b := curve.Bezier{P1: curve.Point{X: 0.25, Y: 0.1}, P2: curve.Point{X: 0.25, Y: 1}}
	for i := 1; i < 50; i++ {
		x := float64(i) / 50
		y := b.YForX(x)
		assert.GreaterOrEqual(t, y, 0.0)
		assert.LessOrEqual(t, y, 1.0)
	}
	assert.Equal(t, 0.0, b.YForX(0))
	assert.Equal(t, 1.0, b.YForX(1))
}

func TestSample(t *testing.T) {
	pts := curve.Sample(curve.Default(), 10)
	assert.Len(t, pts, 11)
	assert.Equal(t, 0.0, pts[0].X)
	assert.Equal(t, 1.0, pts[10].X)
	assert.Equal(t, 1.0, pts[10].Y)
}
