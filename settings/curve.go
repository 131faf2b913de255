package settings

import (
	"math"
	"sync/atomic"

	"github.com/Alia5/kb2pad/curve"
)

// Fixed-point bounds, in thousandths.
const (
	unitScale = 1000
	// minimum distance between deadzone low and high
	minDeadzoneGap = 10
	// anti-deadzone must stay strictly more than 10 units below the output cap
	minOutputGap = 11
	minOutputCap = 10
	maxUnits     = 1000
)

const (
	flagInvert uint32 = 1 << iota
	flagLinear
	flagUseUnique
)

// Curve is a lock-free set of curve tunables.
//
// Related fields share one 32-bit word (low half / high half) so a reader never sees
// one half of a pair updated without the other. Setters repair cross-field invariants
// with compare-and-swap retry loops.
type Curve struct {
	deadzone atomic.Uint32 // low | high<<16
	output   atomic.Uint32 // anti | cap<<16
	cp1      atomic.Uint32 // x | y<<16
	cp2      atomic.Uint32 // x | y<<16
	weights  atomic.Uint32 // cp1 | cp2<<16
	flags    atomic.Uint32
}

// NewCurve returns a curve initialised from p, repaired where p violates an invariant.
func NewCurve(p curve.Params) *Curve {
	c := &Curve{}
	c.Store(p)
	return c
}

func pack(lo, hi uint32) uint32 { return lo&0xffff | hi<<16 }

func unpack(w uint32) (lo, hi uint32) { return w & 0xffff, w >> 16 }

func toUnits(v float64) uint32 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return maxUnits
	}
	return uint32(math.Round(v * unitScale))
}

func fromUnits(u uint32) float64 { return float64(u) / unitScale }

func clampUnits(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// update applies fn to the word until the CAS succeeds.
func update(w *atomic.Uint32, fn func(old uint32) uint32) {
	for {
		old := w.Load()
		if w.CompareAndSwap(old, fn(old)) {
			return
		}
	}
}

func sub(a, b uint32) uint32 {
	if b > a {
		return 0
	}
	return a - b
}

// repairDeadzone keeps low and raises high to satisfy the minimum gap.
func repairDeadzone(low, high uint32) uint32 {
	low = clampUnits(low, 0, maxUnits-minDeadzoneGap)
	high = clampUnits(high, low+minDeadzoneGap, maxUnits)
	return pack(low, high)
}

// repairOutput keeps the floor and raises the cap to satisfy the minimum gap.
func repairOutput(anti, capv uint32) uint32 {
	anti = clampUnits(anti, 0, maxUnits-minOutputGap)
	capv = clampUnits(capv, max(minOutputCap, anti+minOutputGap), maxUnits)
	return pack(anti, capv)
}

// Low returns the deadzone low edge.
func (c *Curve) Low() float64 {
	lo, _ := unpack(c.deadzone.Load())
	return fromUnits(lo)
}

// High returns the deadzone high edge.
func (c *Curve) High() float64 {
	_, hi := unpack(c.deadzone.Load())
	return fromUnits(hi)
}

// Deadzone returns both deadzone edges from one load.
func (c *Curve) Deadzone() (low, high float64) {
	lo, hi := unpack(c.deadzone.Load())
	return fromUnits(lo), fromUnits(hi)
}

// SetLow moves the low edge, clamped to [0, high-0.01].
func (c *Curve) SetLow(v float64) {
	u := toUnits(v)
	update(&c.deadzone, func(old uint32) uint32 {
		_, hi := unpack(old)
		return repairDeadzone(clampUnits(u, 0, sub(hi, minDeadzoneGap)), hi)
	})
}

// SetHigh moves the high edge, clamped to [low+0.01, 1].
func (c *Curve) SetHigh(v float64) {
	u := toUnits(v)
	update(&c.deadzone, func(old uint32) uint32 {
		lo, _ := unpack(old)
		return repairDeadzone(lo, u)
	})
}

// SetDeadzone stores both edges at once. low wins when the pair is inconsistent.
func (c *Curve) SetDeadzone(low, high float64) {
	c.deadzone.Store(repairDeadzone(toUnits(low), toUnits(high)))
}

// AntiDeadzone returns the output floor.
func (c *Curve) AntiDeadzone() float64 {
	a, _ := unpack(c.output.Load())
	return fromUnits(a)
}

// OutputCap returns the output ceiling.
func (c *Curve) OutputCap() float64 {
	_, o := unpack(c.output.Load())
	return fromUnits(o)
}

// SetAntiDeadzone moves the output floor, clamped below the cap.
func (c *Curve) SetAntiDeadzone(v float64) {
	u := toUnits(v)
	update(&c.output, func(old uint32) uint32 {
		_, o := unpack(old)
		return repairOutput(clampUnits(u, 0, sub(o, minOutputGap)), o)
	})
}

// SetOutputCap moves the output ceiling, clamped above the floor.
func (c *Curve) SetOutputCap(v float64) {
	u := toUnits(v)
	update(&c.output, func(old uint32) uint32 {
		a, _ := unpack(old)
		return repairOutput(a, u)
	})
}

// SetOutputRange stores floor and cap at once. The floor wins when inconsistent.
func (c *Curve) SetOutputRange(anti, capv float64) {
	c.output.Store(repairOutput(toUnits(anti), toUnits(capv)))
}

func loadPoint(w *atomic.Uint32) curve.Point {
	x, y := unpack(w.Load())
	return curve.Point{X: fromUnits(x), Y: fromUnits(y)}
}

func (c *Curve) CP1() curve.Point { return loadPoint(&c.cp1) }
func (c *Curve) CP2() curve.Point { return loadPoint(&c.cp2) }

func (c *Curve) SetCP1(p curve.Point) { c.cp1.Store(pack(toUnits(p.X), toUnits(p.Y))) }
func (c *Curve) SetCP2(p curve.Point) { c.cp2.Store(pack(toUnits(p.X), toUnits(p.Y))) }

// Weights returns both control point weights from one load.
func (c *Curve) Weights() (w1, w2 float64) {
	a, b := unpack(c.weights.Load())
	return fromUnits(a), fromUnits(b)
}

func (c *Curve) SetCP1Weight(v float64) {
	u := toUnits(v)
	update(&c.weights, func(old uint32) uint32 {
		_, b := unpack(old)
		return pack(u, b)
	})
}

func (c *Curve) SetCP2Weight(v float64) {
	u := toUnits(v)
	update(&c.weights, func(old uint32) uint32 {
		a, _ := unpack(old)
		return pack(a, u)
	})
}

func (c *Curve) flag(f uint32) bool { return c.flags.Load()&f != 0 }

func (c *Curve) setFlag(f uint32, on bool) {
	update(&c.flags, func(old uint32) uint32 {
		if on {
			return old | f
		}
		return old &^ f
	})
}

func (c *Curve) Invert() bool        { return c.flag(flagInvert) }
func (c *Curve) SetInvert(v bool)    { c.setFlag(flagInvert, v) }
func (c *Curve) UseUnique() bool     { return c.flag(flagUseUnique) }
func (c *Curve) SetUseUnique(v bool) { c.setFlag(flagUseUnique, v) }

func (c *Curve) Mode() curve.Mode {
	if c.flag(flagLinear) {
		return curve.ModeLinear
	}
	return curve.ModeSmooth
}

func (c *Curve) SetMode(m curve.Mode) { c.setFlag(flagLinear, m == curve.ModeLinear) }

// Params snapshots every field. Each packed pair is internally consistent.
func (c *Curve) Params() curve.Params {
	low, high := c.Deadzone()
	a, o := unpack(c.output.Load())
	w1, w2 := c.Weights()
	flags := c.flags.Load()
	mode := curve.ModeSmooth
	if flags&flagLinear != 0 {
		mode = curve.ModeLinear
	}
	return curve.Params{
		Low:          low,
		High:         high,
		AntiDeadzone: fromUnits(a),
		OutputCap:    fromUnits(o),
		Invert:       flags&flagInvert != 0,
		Mode:         mode,
		CP1:          c.CP1(),
		CP2:          c.CP2(),
		CP1Weight:    w1,
		CP2Weight:    w2,
	}
}

// Store replaces every curve field with p. UseUnique is left unchanged.
func (c *Curve) Store(p curve.Params) {
	c.SetDeadzone(p.Low, p.High)
	c.SetOutputRange(p.AntiDeadzone, p.OutputCap)
	c.SetCP1(p.CP1)
	c.SetCP2(p.CP2)
	c.weights.Store(pack(toUnits(p.CP1Weight), toUnits(p.CP2Weight)))
	c.SetInvert(p.Invert)
	c.SetMode(p.Mode)
}

// KeyDeadzone is the value form of one key's curve settings.
type KeyDeadzone struct {
	// UseUnique selects this curve over the global one.
	UseUnique bool
	curve.Params
}

// KeyDeadzone snapshots c including the UseUnique flag.
func (c *Curve) KeyDeadzone() KeyDeadzone {
	return KeyDeadzone{UseUnique: c.UseUnique(), Params: c.Params()}
}

// StoreKeyDeadzone replaces every field including UseUnique.
func (c *Curve) StoreKeyDeadzone(kd KeyDeadzone) {
	c.Store(kd.Params)
	c.SetUseUnique(kd.UseUnique)
}
