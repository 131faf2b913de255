// Package layout holds the keyboard layout presets used to place keys on screen.
package layout

import (
	"slices"
	"strings"

	"github.com/Alia5/kb2pad/hid"
)

// Key size bounds in layout units.
const (
	MinKeySize = 18
	MaxKeySize = 600

	DefaultKeySize = 50
	DefaultGap     = 4
)

// KeyDef is one key of a layout.
type KeyDef struct {
	Label string
	HID   hid.Code
	Row   int
	X     int
	W     int
	H     int
}

func clampSize(v int) int {
	return min(max(v, MinKeySize), MaxKeySize)
}

// normalize clamps the key size and fills an empty label from the key name.
func (k KeyDef) normalize() KeyDef {
	k.W = clampSize(k.W)
	k.H = clampSize(k.H)
	k.Row = max(k.Row, 0)
	k.X = max(k.X, 0)
	if strings.TrimSpace(k.Label) == "" {
		k.Label = k.HID.String()
	}
	return k
}

// Preset is a named keyboard layout.
type Preset struct {
	Name           string
	Keys           []KeyDef
	UniformSpacing bool
	UniformGap     int
}

// Clone returns a deep copy of p.
func (p Preset) Clone() Preset {
	p.Keys = slices.Clone(p.Keys)
	return p
}

// Key returns the definition of code.
func (p Preset) Key(code hid.Code) (KeyDef, bool) {
	i := p.index(code)
	if i < 0 {
		return KeyDef{}, false
	}
	return p.Keys[i], true
}

func (p Preset) index(code hid.Code) int {
	return slices.IndexFunc(p.Keys, func(k KeyDef) bool { return k.HID == code })
}

// AddKey appends k. It fails for KeyNone and for a code already in the preset.
func (p *Preset) AddKey(k KeyDef) bool {
	if k.HID == hid.KeyNone || p.index(k.HID) >= 0 {
		return false
	}
	p.Keys = append(p.Keys, k.normalize())
	return true
}

// SetKey replaces the definition of k.HID, or appends it when absent.
func (p *Preset) SetKey(k KeyDef) bool {
	if k.HID == hid.KeyNone {
		return false
	}
	if i := p.index(k.HID); i >= 0 {
		p.Keys[i] = k.normalize()
		return true
	}
	return p.AddKey(k)
}

// RemoveKey deletes code from the preset.
func (p *Preset) RemoveKey(code hid.Code) bool {
	i := p.index(code)
	if i < 0 {
		return false
	}
	p.Keys = slices.Delete(p.Keys, i, i+1)
	return true
}

// Normalize clamps sizes, drops duplicate and empty codes keeping the first, and
// repairs the gap.
func (p Preset) Normalize() Preset {
	out := p
	out.Name = strings.TrimSpace(p.Name)
	out.Keys = make([]KeyDef, 0, len(p.Keys))
	for _, k := range p.Keys {
		out.AddKey(k)
	}
	out.UniformGap = max(out.UniformGap, 0)
	return out
}

// Positions returns the x coordinate of every key. With UniformSpacing keys of a row
// are packed left to right with UniformGap between them; otherwise the stored X is used.
func (p Preset) Positions() []int {
	out := make([]int, len(p.Keys))
	if !p.UniformSpacing {
		for i, k := range p.Keys {
			out[i] = k.X
		}
		return out
	}
	next := map[int]int{}
	for i, k := range p.Keys {
		out[i] = next[k.Row]
		next[k.Row] += k.W + p.UniformGap
	}
	return out
}

// DefaultPreset is a QWERTY alphanumeric block with modifiers and arrow keys.
func DefaultPreset() Preset {
	p := Preset{Name: "Default", UniformSpacing: true, UniformGap: DefaultGap}
	row := func(r int, codes ...hid.Code) {
		for _, c := range codes {
			p.AddKey(KeyDef{HID: c, Row: r, W: DefaultKeySize, H: DefaultKeySize})
		}
	}
	row(0, hid.KeyEscape, hid.Key1, hid.Key2, hid.Key3, hid.Key4, hid.Key5,
		hid.Key6, hid.Key7, hid.Key8, hid.Key9, hid.Key0)
	row(1, hid.KeyTab, hid.KeyQ, hid.KeyW, hid.KeyE, hid.KeyR, hid.KeyT,
		hid.KeyY, hid.KeyU, hid.KeyI, hid.KeyO, hid.KeyP)
	row(2, hid.KeyCapsLock, hid.KeyA, hid.KeyS, hid.KeyD, hid.KeyF, hid.KeyG,
		hid.KeyH, hid.KeyJ, hid.KeyK, hid.KeyL, hid.KeyEnter)
	row(3, hid.KeyLeftShift, hid.KeyZ, hid.KeyX, hid.KeyC, hid.KeyV, hid.KeyB,
		hid.KeyN, hid.KeyM, hid.KeyUp, hid.KeyRightShift)
	row(4, hid.KeyLeftCtrl, hid.KeyLeftAlt)
	p.AddKey(KeyDef{HID: hid.KeySpace, Row: 4, W: 5 * DefaultKeySize, H: DefaultKeySize})
	row(4, hid.KeyLeft, hid.KeyDown, hid.KeyRight)
	return p
}
