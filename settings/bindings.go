package settings

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/Alia5/kb2pad/gamepad"
	"github.com/Alia5/kb2pad/hid"
)

// bindingTable is never mutated after it is published.
type bindingTable [gamepad.TargetCount][]hid.Code

// Bindings holds the key list of every gamepad target, copy-on-write.
type Bindings struct {
	mu    sync.Mutex
	table atomic.Pointer[bindingTable]
}

func NewBindings() *Bindings {
	b := &Bindings{}
	b.table.Store(&bindingTable{})
	return b
}

// Keys returns the keys bound to t. The slice must not be modified.
func (b *Bindings) Keys(t gamepad.Target) []hid.Code {
	if t >= gamepad.TargetCount {
		return nil
	}
	return b.table.Load()[t]
}

// Bind replaces the key list of t. Duplicates and KeyNone are dropped.
func (b *Bindings) Bind(t gamepad.Target, keys []hid.Code) {
	if t >= gamepad.TargetCount {
		return
	}
	clean := cleanKeys(keys)

	b.mu.Lock()
	defer b.mu.Unlock()
	next := *b.table.Load()
	next[t] = clean
	b.table.Store(&next)
}

// Replace binds exactly the targets in m, unbinding the rest, in one publish.
func (b *Bindings) Replace(m map[gamepad.Target][]hid.Code) {
	var next bindingTable
	for t, keys := range m {
		if t < gamepad.TargetCount {
			next[t] = cleanKeys(keys)
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.table.Store(&next)
}

func cleanKeys(keys []hid.Code) []hid.Code {
	clean := make([]hid.Code, 0, len(keys))
	for _, k := range keys {
		if k != hid.KeyNone && !slices.Contains(clean, k) {
			clean = append(clean, k)
		}
	}
	return clean
}

// Bound returns every key referenced by any target.
func (b *Bindings) Bound() []hid.Code {
	var out []hid.Code
	for _, keys := range b.table.Load() {
		for _, k := range keys {
			if !slices.Contains(out, k) {
				out = append(out, k)
			}
		}
	}
	slices.Sort(out)
	return out
}

// Defaults binds WASD to the left stick, the arrow keys to the right stick and a
// handful of common keys to buttons.
func (b *Bindings) Defaults() {
	defaults := map[gamepad.Target][]hid.Code{
		gamepad.LeftStickUp:     {hid.KeyW},
		gamepad.LeftStickDown:   {hid.KeyS},
		gamepad.LeftStickLeft:   {hid.KeyA},
		gamepad.LeftStickRight:  {hid.KeyD},
		gamepad.RightStickUp:    {hid.KeyUp},
		gamepad.RightStickDown:  {hid.KeyDown},
		gamepad.RightStickLeft:  {hid.KeyLeft},
		gamepad.RightStickRight: {hid.KeyRight},
		gamepad.TriggerLeft:     {hid.KeyQ},
		gamepad.TriggerRight:    {hid.KeyE},
		gamepad.TargetA:         {hid.KeySpace},
		gamepad.TargetB:         {hid.KeyLeftCtrl},
		gamepad.TargetX:         {hid.KeyR},
		gamepad.TargetY:         {hid.KeyF},
		gamepad.TargetLShoulder: {hid.Key1},
		gamepad.TargetRShoulder: {hid.Key2},
		gamepad.TargetBack:      {hid.KeyTab},
		gamepad.TargetStart:     {hid.KeyEscape},
		gamepad.TargetLThumb:    {hid.KeyLeftShift},
		gamepad.TargetRThumb:    {hid.KeyC},
	}
	for t, keys := range defaults {
		b.Bind(t, keys)
	}
}
