// Package input tracks physical and synthetic key/mouse state and turns digital presses
// into a sampled travel value.
package input

import (
	"math"
	"sync/atomic"

	"github.com/Alia5/kb2pad/hid"
)

// Layer separates real device input from events injected by macros and combos.
type Layer uint8

const (
	Physical Layer = iota
	Synthetic

	layerCount
)

// Slot word layout:
//
//	bit 63     down
//	bit 62     analog
//	bits 46-61 level x1000 at the last transition (analog: current value)
//	bits 0-45  timestamp of the last transition, ms
const (
	bitDown    = uint64(1) << 63
	bitAnalog  = uint64(1) << 62
	levelShift = 46
	levelMask  = uint64(0xffff)
	tsMask     = uint64(1)<<levelShift - 1
)

// Ramp configures how digital keys move between 0 and full travel.
type Ramp struct {
	UpMs, DownMs int
}

// Sample is the sampled state of one key.
type Sample struct {
	// Value is the travel in [0,1].
	Value float64
	// Down is true while any unblocked layer holds the key.
	Down bool
	// PressedAt is the most recent press among the layers holding the key.
	PressedAt int64
}

// State holds the latest event per key and mouse button, one atomic word each.
// Writers and the sampling tick never block each other.
type State struct {
	keys  [layerCount][256]atomic.Uint64
	mouse [layerCount][mouseButtonCount]atomic.Uint64
}

func NewState() *State { return &State{} }

func packSlot(down, analog bool, level float64, ts int64) uint64 {
	var w uint64
	if down {
		w |= bitDown
	}
	if analog {
		w |= bitAnalog
	}
	lv := uint64(math.Round(clamp01(level) * 1000))
	w |= (lv & levelMask) << levelShift
	w |= uint64(max(ts, 0)) & tsMask
	return w
}

func unpackSlot(w uint64) (down, analog bool, level float64, ts int64) {
	return w&bitDown != 0, w&bitAnalog != 0,
		float64((w>>levelShift)&levelMask) / 1000, int64(w & tsMask)
}

// travel computes the value of a slot word at time now.
func travel(w uint64, now int64, r Ramp) float64 {
	down, analog, level, ts := unpackSlot(w)
	if analog {
		return level
	}
	dt := float64(max(now-ts, 0))
	if down {
		if r.UpMs <= 0 {
			return 1
		}
		return math.Min(1, level+dt/float64(r.UpMs))
	}
	if r.DownMs <= 0 {
		return 0
	}
	return math.Max(0, level-dt/float64(r.DownMs))
}

// SetKey records a digital transition. The ramp starts from the travel the key had at
// ts, so a quick re-press continues from where the release left off.
func (s *State) SetKey(layer Layer, key hid.Code, down bool, ts int64, r Ramp) {
	if layer >= layerCount {
		return
	}
	slot := &s.keys[layer][key]
	for {
		old := slot.Load()
		wasDown, _, _, _ := unpackSlot(old)
		if wasDown == down && old != 0 {
			// auto-repeat: keep the original press time
			return
		}
		level := travel(old, ts, r)
		if slot.CompareAndSwap(old, packSlot(down, false, level, ts)) {
			return
		}
	}
}

// SetAnalog records an analog travel reading. A value above zero counts as down.
func (s *State) SetAnalog(layer Layer, key hid.Code, value float64, ts int64) {
	if layer >= layerCount {
		return
	}
	slot := &s.keys[layer][key]
	for {
		old := slot.Load()
		wasDown, _, _, pressTs := unpackSlot(old)
		down := value > 0
		if !down || !wasDown {
			pressTs = ts
		}
		if slot.CompareAndSwap(old, packSlot(down, true, value, pressTs)) {
			return
		}
	}
}

// Key samples key at now across both layers. The physical layer is ignored when
// blockPhysical is set.
func (s *State) Key(key hid.Code, now int64, r Ramp, blockPhysical bool) Sample {
	var out Sample
	for l := Physical; l < layerCount; l++ {
		if l == Physical && blockPhysical {
			continue
		}
		w := s.keys[l][key].Load()
		if w == 0 {
			continue
		}
		out.Value = math.Max(out.Value, travel(w, now, r))
		if down, _, _, ts := unpackSlot(w); down {
			out.Down = true
			out.PressedAt = max(out.PressedAt, ts)
		}
	}
	return out
}

// KeyDown reports whether key is held on layer.
func (s *State) KeyDown(layer Layer, key hid.Code) bool {
	if layer >= layerCount {
		return false
	}
	return s.keys[layer][key].Load()&bitDown != 0
}

// AnyKeyDown reports whether key is held on any layer.
func (s *State) AnyKeyDown(key hid.Code) bool {
	return s.KeyDown(Physical, key) || s.KeyDown(Synthetic, key)
}

// SetMouse records a mouse button transition.
func (s *State) SetMouse(layer Layer, b MouseButton, down bool, ts int64) {
	if layer >= layerCount || !b.Valid() {
		return
	}
	s.mouse[layer][b].Store(packSlot(down, false, 0, ts))
}

// MouseDown reports whether b is held on any layer.
func (s *State) MouseDown(b MouseButton) bool {
	if !b.Valid() {
		return false
	}
	return s.mouse[Physical][b].Load()&bitDown != 0 || s.mouse[Synthetic][b].Load()&bitDown != 0
}

// HeldKeys lists the keys held on layer.
func (s *State) HeldKeys(layer Layer) []hid.Code {
	var out []hid.Code
	if layer >= layerCount {
		return out
	}
	for i := range s.keys[layer] {
		if s.keys[layer][i].Load()&bitDown != 0 {
			out = append(out, hid.Code(i))
		}
	}
	return out
}

// Reset clears every slot on layer.
func (s *State) Reset(layer Layer) {
	if layer >= layerCount {
		return
	}
	for i := range s.keys[layer] {
		s.keys[layer][i].Store(0)
	}
	for i := range s.mouse[layer] {
		s.mouse[layer][i].Store(0)
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, 1)
}
