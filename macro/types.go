// Package macro implements recorded and scripted input sequences: macros with
// conditional blocks and direct-binding triggers, and mouse combos.
package macro

import (
	"slices"

	"github.com/Alia5/kb2pad/hid"
	"github.com/Alia5/kb2pad/input"
)

// ID identifies a macro or combo within an Engine.
type ID uint32

// ActionKind discriminates Action.
type ActionKind uint8

const (
	ActionKeyDown ActionKind = iota
	ActionKeyUp
	ActionMouseDown
	ActionMouseUp
	ActionWheel
	ActionDelay
	ActionSetVariable
	ActionConditional
)

var actionNames = []string{"keydown", "keyup", "mousedown", "mouseup", "wheel", "delay", "setvar", "if"}

func (k ActionKind) String() string {
	if int(k) < len(actionNames) {
		return actionNames[k]
	}
	return "unknown"
}

func parseActionKind(s string) (ActionKind, bool) {
	i := slices.Index(actionNames, s)
	return ActionKind(i), i >= 0
}

// VarOp is how ActionSetVariable changes a variable.
type VarOp uint8

const (
	VarAssign VarOp = iota
	VarAdd
)

// Action is one step of a macro.
type Action struct {
	Kind ActionKind
	// DelayMs is the wait since the previous action in the same sequence.
	DelayMs int64

	Key    hid.Code
	Button input.MouseButton
	Wheel  int

	Variable string
	Op       VarOp
	Value    int

	// Condition guards Children for ActionConditional.
	Condition *Condition
	Children  []Action
}

func (a Action) clone() Action {
	if a.Condition != nil {
		c := a.Condition.clone()
		a.Condition = &c
	}
	a.Children = cloneActions(a.Children)
	return a
}

func cloneActions(in []Action) []Action {
	if in == nil {
		return nil
	}
	out := make([]Action, len(in))
	for i, a := range in {
		out[i] = a.clone()
	}
	return out
}

// TriggerKind discriminates Trigger.
type TriggerKind uint8

const (
	TriggerKeyDown TriggerKind = iota
	TriggerKeyUp
	TriggerKeyHeld
	TriggerMouseDown
	TriggerMouseUp
	TriggerMouseHeld
)

var triggerNames = []string{"keydown", "keyup", "keyheld", "mousedown", "mouseup", "mouseheld"}

func (k TriggerKind) String() string {
	if int(k) < len(triggerNames) {
		return triggerNames[k]
	}
	return "unknown"
}

func parseTriggerKind(s string) (TriggerKind, bool) {
	i := slices.Index(triggerNames, s)
	return TriggerKind(i), i >= 0
}

func (k TriggerKind) mouse() bool {
	return k >= TriggerMouseDown
}

// Trigger starts a direct-binding macro.
type Trigger struct {
	Kind   TriggerKind
	Key    hid.Code
	Button input.MouseButton
	// HoldMs is the hold time for the held kinds.
	HoldMs int64
	// CooldownMs is the minimum time between two firings of this trigger.
	CooldownMs int64
}

// Macro is a named action sequence.
type Macro struct {
	ID       ID
	Name     string
	Actions  []Action
	Triggers []Trigger

	Looping bool
	// BlockKeys suppresses the physical keys the macro references while it plays.
	BlockKeys bool
	// DirectBinding enables Triggers.
	DirectBinding bool
	// RequireAll fires only when every trigger holds, instead of any one.
	RequireAll bool
	// AllowMultiple lets a trigger restart the macro while it is still playing.
	AllowMultiple bool
	// Speed scales playback; delays are divided by it.
	Speed          float64
	ExecutionCount int
}

// Clone returns a deep copy of m.
func (m Macro) Clone() Macro {
	m.Actions = cloneActions(m.Actions)
	m.Triggers = slices.Clone(m.Triggers)
	return m
}

// DurationMs is the unscaled length of one pass, counting every conditional block as
// taken.
func (m Macro) DurationMs() int64 {
	return sequenceMs(m.Actions)
}

func sequenceMs(actions []Action) int64 {
	var total int64
	for _, a := range actions {
		total += a.DelayMs
		if a.Kind == ActionConditional {
			total += sequenceMs(a.Children)
		}
	}
	return total
}

// referencedKeys collects every key the macro's actions press or release. Trigger
// keys are left out so a held trigger still reaches the gamepad.
func (m Macro) referencedKeys() []hid.Code {
	var out []hid.Code
	var walk func([]Action)
	walk = func(actions []Action) {
		for _, a := range actions {
			switch a.Kind {
			case ActionKeyDown, ActionKeyUp:
				out = append(out, a.Key)
			case ActionConditional:
				walk(a.Children)
			}
		}
	}
	walk(m.Actions)
	return out
}

// MinSpeed is the slowest playback speed; anything slower would persist as zero.
const MinSpeed = 0.001

// normalizeSpeed maps unset or negative speeds to 1 and raises the rest to MinSpeed.
func normalizeSpeed(s float64) float64 {
	if !(s > 0) {
		return 1
	}
	return max(s, MinSpeed)
}
