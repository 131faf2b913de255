package macro

import (
	"cmp"
	"maps"
	"slices"

	"github.com/Alia5/kb2pad/hid"
	"github.com/Alia5/kb2pad/input"
)

// ComboTriggerKind discriminates ComboTrigger.
type ComboTriggerKind uint8

const (
	// ComboClick fires on the Count-th click of Button within the double-click window.
	ComboClick ComboTriggerKind = iota
	// ComboSimultaneous fires when Button and Second go down within the simultaneous window.
	ComboSimultaneous
	// ComboHeldClick fires when Button is clicked while Second is held.
	ComboHeldClick
	// ComboModifierWheel fires when the wheel moves while Modifier is held.
	ComboModifierWheel
)

var comboTriggerNames = []string{"click", "simultaneous", "heldclick", "modwheel"}

func (k ComboTriggerKind) String() string {
	if int(k) < len(comboTriggerNames) {
		return comboTriggerNames[k]
	}
	return "unknown"
}

// ComboTrigger is the mouse gesture that runs a combo.
type ComboTrigger struct {
	Kind   ComboTriggerKind
	Button input.MouseButton
	Second input.MouseButton
	// Count is 1, 2 or 3 for single, double and triple clicks.
	Count    int
	Modifier hid.Code
	// WheelDir restricts ComboModifierWheel to up (>0) or down (<0); 0 accepts both.
	WheelDir int
}

// ComboActionKind discriminates ComboAction.
type ComboActionKind uint8

const (
	ComboPress ComboActionKind = iota
	ComboRelease
	ComboTap
	ComboType
	ComboMouseClick
	ComboDelay
)

var comboActionNames = []string{"press", "release", "tap", "type", "click", "delay"}

func (k ComboActionKind) String() string {
	if int(k) < len(comboActionNames) {
		return comboActionNames[k]
	}
	return "unknown"
}

// ComboAction is one step of a combo.
type ComboAction struct {
	Kind    ComboActionKind
	Key     hid.Code
	Text    string
	Button  input.MouseButton
	DelayMs int64
}

// Combo maps a mouse gesture to a short key sequence.
type Combo struct {
	ID      ID
	Name    string
	Trigger ComboTrigger
	Actions []ComboAction

	RepeatWhileHeld bool
	RepeatDelayMs   int64
	// UseLocalRepeat selects RepeatDelayMs over the global repeat interval.
	UseLocalRepeat bool
	Enabled        bool
}

func (c Combo) Clone() Combo {
	c.Actions = slices.Clone(c.Actions)
	return c
}

type scheduled struct {
	at     int64
	mouse  bool
	key    hid.Code
	button input.MouseButton
	down   bool
}

type comboState struct {
	queue     []scheduled
	clicks    [8]int
	lastClick [8]int64
	repeats   map[ID]int64
	keys      map[hid.Code]struct{}
	buttons   map[input.MouseButton]struct{}
}

func (cs *comboState) init() {
	cs.repeats = map[ID]int64{}
	cs.keys = map[hid.Code]struct{}{}
	cs.buttons = map[input.MouseButton]struct{}{}
}

func (e *Engine) findCombo(id ID) (int, *Combo) {
	for i, c := range e.combos {
		if c.ID == id {
			return i, c
		}
	}
	return -1, nil
}

// AddCombo stores a copy of c under a new id.
func (e *Engine) AddCombo(c Combo) ID {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	c = c.Clone()
	c.ID = e.nextID
	e.combos = append(e.combos, &c)
	return c.ID
}

// UpdateCombo replaces the combo with c.ID.
func (e *Engine) UpdateCombo(c Combo) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, cur := e.findCombo(c.ID)
	if cur == nil {
		return false
	}
	*cur = c.Clone()
	delete(e.combo.repeats, c.ID)
	return true
}

// DeleteCombo removes a combo.
func (e *Engine) DeleteCombo(id ID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	i, c := e.findCombo(id)
	if c == nil {
		return false
	}
	e.combos = slices.Delete(e.combos, i, i+1)
	delete(e.combo.repeats, id)
	return true
}

// Combos returns copies of every combo.
func (e *Engine) Combos() []Combo {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Combo, len(e.combos))
	for i, c := range e.combos {
		out[i] = c.Clone()
	}
	return out
}

func (e *Engine) onComboMouse(b input.MouseButton, down bool, ts int64) {
	if !down {
		return
	}
	cs := &e.combo
	if cs.clicks[b] > 0 && ts-cs.lastClick[b] <= e.opts.DoubleClickMs && cs.clicks[b] < 3 {
		cs.clicks[b]++
	} else {
		cs.clicks[b] = 1
	}
	cs.lastClick[b] = ts

	for _, c := range e.combos {
		if !c.Enabled {
			continue
		}
		t := c.Trigger
		var fire bool
		switch t.Kind {
		case ComboClick:
			// single clicks fire on every press; the counter only matters for multi-clicks
			fire = b == t.Button && (t.Count <= 1 || cs.clicks[b] == t.Count)
		case ComboSimultaneous:
			if (b == t.Button || b == t.Second) && t.Button.Valid() && t.Second.Valid() {
				a1, a2 := e.mouseDownAt[t.Button], e.mouseDownAt[t.Second]
				fire = a1 >= 0 && a2 >= 0 && abs(a1-a2) <= e.opts.SimultaneousMs
			}
		case ComboHeldClick:
			fire = b == t.Button && t.Second.Valid() && e.mouseDownAt[t.Second] >= 0
		}
		if fire {
			e.fireCombo(c, ts)
		}
	}
}

func (e *Engine) onComboWheel(delta int, ts int64) {
	if delta == 0 {
		return
	}
	for _, c := range e.combos {
		t := c.Trigger
		if !c.Enabled || t.Kind != ComboModifierWheel {
			continue
		}
		if t.Modifier != hid.KeyNone && e.keyDownAt[t.Modifier] < 0 {
			continue
		}
		if t.WheelDir != 0 && (t.WheelDir > 0) != (delta > 0) {
			continue
		}
		e.fireCombo(c, ts)
	}
}

func (e *Engine) fireCombo(c *Combo, ts int64) {
	e.logger.Debug("combo triggered", "combo", c.Name)
	e.runCombo(c, ts)
	if c.RepeatWhileHeld && c.Trigger.Kind != ComboModifierWheel {
		e.combo.repeats[c.ID] = ts + e.repeatInterval(c)
	}
}

func (e *Engine) repeatInterval(c *Combo) int64 {
	if c.UseLocalRepeat {
		return max(c.RepeatDelayMs, 1)
	}
	return max(e.opts.ComboRepeatMs(), 1)
}

func (e *Engine) comboHeld(c *Combo) bool {
	t := c.Trigger
	down := func(b input.MouseButton) bool { return b.Valid() && e.mouseDownAt[b] >= 0 }
	switch t.Kind {
	case ComboClick:
		return down(t.Button)
	case ComboSimultaneous, ComboHeldClick:
		return down(t.Button) && down(t.Second)
	}
	return false
}

// expandCombo turns the actions of c into timed events starting at start.
func expandCombo(c *Combo, start int64) []scheduled {
	var out []scheduled
	t := start
	key := func(k hid.Code, down bool) { out = append(out, scheduled{at: t, key: k, down: down}) }
	for _, a := range c.Actions {
		switch a.Kind {
		case ComboPress:
			key(a.Key, true)
		case ComboRelease:
			key(a.Key, false)
		case ComboTap:
			key(a.Key, true)
			key(a.Key, false)
		case ComboType:
			for _, s := range hid.TypeString(a.Text) {
				if s.Shift {
					key(hid.KeyLeftShift, true)
				}
				key(s.Code, true)
				key(s.Code, false)
				if s.Shift {
					key(hid.KeyLeftShift, false)
				}
			}
		case ComboMouseClick:
			out = append(out,
				scheduled{at: t, mouse: true, button: a.Button, down: true},
				scheduled{at: t, mouse: true, button: a.Button, down: false})
		case ComboDelay:
			t += max(a.DelayMs, 0)
		}
	}
	return out
}

func (e *Engine) runCombo(c *Combo, start int64) {
	cs := &e.combo
	cs.queue = append(cs.queue, expandCombo(c, start)...)
	slices.SortStableFunc(cs.queue, func(a, b scheduled) int { return cmp.Compare(a.at, b.at) })
}

func (e *Engine) advanceCombos(now int64) {
	cs := &e.combo
	for _, id := range slices.Sorted(maps.Keys(cs.repeats)) {
		_, c := e.findCombo(id)
		if c == nil || !c.Enabled || !e.comboHeld(c) {
			delete(cs.repeats, id)
			continue
		}
		next := cs.repeats[id]
		for next <= now {
			e.runCombo(c, next)
			next += e.repeatInterval(c)
		}
		cs.repeats[id] = next
	}

	n := 0
	for n < len(cs.queue) && cs.queue[n].at <= now {
		e.emitScheduled(cs.queue[n])
		n++
	}
	cs.queue = slices.Delete(cs.queue, 0, n)
}

func (e *Engine) emitScheduled(s scheduled) {
	cs := &e.combo
	if s.mouse {
		if s.down {
			cs.buttons[s.button] = struct{}{}
		} else {
			delete(cs.buttons, s.button)
		}
		e.emitMouse(s.button, s.down, s.at)
		return
	}
	if s.down {
		cs.keys[s.key] = struct{}{}
	} else {
		delete(cs.keys, s.key)
	}
	e.emitKey(s.key, s.down, s.at)
}

// releaseAll drops pending combo events and releases whatever combos still hold.
func (cs *comboState) releaseAll(e *Engine, now int64) {
	cs.queue = nil
	clear(cs.repeats)
	for _, k := range slices.Sorted(maps.Keys(cs.keys)) {
		e.emitKey(k, false, now)
	}
	for _, b := range slices.Sorted(maps.Keys(cs.buttons)) {
		e.emitMouse(b, false, now)
	}
	clear(cs.keys)
	clear(cs.buttons)
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
