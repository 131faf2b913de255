package macro

import (
	"math"

	"github.com/Alia5/kb2pad/hid"
	"github.com/Alia5/kb2pad/input"
)

type inputEvent struct {
	tick   bool
	mouse  bool
	key    hid.Code
	button input.MouseButton
	down   bool
}

func (e *Engine) heldFor(t Trigger, now int64) (int64, bool) {
	var at int64
	if t.Kind.mouse() {
		if !t.Button.Valid() {
			return 0, false
		}
		at = e.mouseDownAt[t.Button]
	} else {
		at = e.keyDownAt[t.Key]
	}
	if at < 0 {
		return 0, false
	}
	return now - at, true
}

// level reports whether t currently holds regardless of the event that caused the check.
func (e *Engine) level(t Trigger, now int64) bool {
	d, down := e.heldFor(t, now)
	switch t.Kind {
	case TriggerKeyDown, TriggerMouseDown:
		return down
	case TriggerKeyUp, TriggerMouseUp:
		return !down
	case TriggerKeyHeld, TriggerMouseHeld:
		return down && d >= t.HoldMs
	}
	return false
}

// edge reports whether ev is the transition that makes t fire.
func (e *Engine) edge(t Trigger, ev inputEvent, latched *bool, now int64) bool {
	switch t.Kind {
	case TriggerKeyHeld, TriggerMouseHeld:
		d, down := e.heldFor(t, now)
		if !down {
			*latched = false
			return false
		}
		if *latched || d < t.HoldMs {
			return false
		}
		*latched = true
		return true
	}
	if ev.tick || ev.mouse != t.Kind.mouse() {
		return false
	}
	if ev.mouse && ev.button != t.Button || !ev.mouse && ev.key != t.Key {
		return false
	}
	switch t.Kind {
	case TriggerKeyDown, TriggerMouseDown:
		return ev.down
	case TriggerKeyUp, TriggerMouseUp:
		return !ev.down
	}
	return false
}

// evalTriggers fires direct-binding macros whose trigger set is satisfied by ev.
func (e *Engine) evalTriggers(ev inputEvent, now int64) {
	for _, m := range e.macros {
		if !m.DirectBinding || len(m.Triggers) == 0 {
			continue
		}
		ts := e.triggers[m.ID]
		if ts == nil || len(ts.lastFired) != len(m.Triggers) {
			ts = newTriggerState(len(m.Triggers))
			e.triggers[m.ID] = ts
		}

		fired := make([]bool, len(m.Triggers))
		anyFired := false
		allHold := true
		for i, t := range m.Triggers {
			if e.edge(t, ev, &ts.latched[i], now) && cooled(ts.lastFired[i], now, t.CooldownMs) {
				fired[i] = true
				anyFired = true
			}
			if !fired[i] && !e.level(t, now) {
				allHold = false
			}
		}
		if !anyFired || (m.RequireAll && !allHold) {
			continue
		}

		if e.play != nil && e.play.macro == m && !m.AllowMultiple {
			continue
		}
		for i := range m.Triggers {
			if fired[i] || m.RequireAll {
				ts.lastFired[i] = now
			}
		}
		e.logger.Debug("macro triggered", "macro", m.Name)
		e.startPlayback(m, now)
	}
}

// cooled reports whether a trigger last fired at last may fire again at now.
func cooled(last, now, cooldown int64) bool {
	return last == math.MinInt64 || now-last >= cooldown
}
