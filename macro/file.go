package macro

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/Alia5/kb2pad/hid"
	"github.com/Alia5/kb2pad/input"
	"github.com/Alia5/kb2pad/record"
)

// Record tags of the macro interchange format. One record per line:
//
//	MACRO|name|looping|blockKeys|directBinding|requireAll|allowMultiple|speed x1000|executionCount
//	TRIGGER|kind|key|button|holdMs|cooldownMs
//	ACTION|kind|delayMs|key|button|wheel|variable|op|value
//	IF|delayMs|condition
//	ENDIF
//	COMBO|name|kind|button|second|count|modifier|wheelDir|repeatWhileHeld|repeatDelayMs|useLocalRepeat|enabled
//	CACTION|kind|delayMs|key|button|text
const (
	tagMacro   = "MACRO"
	tagTrigger = "TRIGGER"
	tagAction  = "ACTION"
	tagIf      = "IF"
	tagEndIf   = "ENDIF"
	tagCombo   = "COMBO"
	tagCAction = "CACTION"
)

func fmtKey(k hid.Code) string { return fmt.Sprintf("0x%02X", uint8(k)) }
func fmtInt(v int64) string    { return strconv.FormatInt(v, 10) }

// Encode renders macros and combos as interchange records.
func Encode(macros []Macro, combos []Combo) []string {
	var out []string
	for _, m := range macros {
		out = append(out, record.Encode(tagMacro, m.Name,
			record.FormatBool(m.Looping), record.FormatBool(m.BlockKeys),
			record.FormatBool(m.DirectBinding), record.FormatBool(m.RequireAll),
			record.FormatBool(m.AllowMultiple), record.FormatUnits(normalizeSpeed(m.Speed)),
			strconv.Itoa(m.ExecutionCount)))
		for _, t := range m.Triggers {
			out = append(out, record.Encode(tagTrigger, t.Kind.String(), fmtKey(t.Key),
				t.Button.String(), fmtInt(t.HoldMs), fmtInt(t.CooldownMs)))
		}
		out = appendActions(out, m.Actions)
	}
	for _, c := range combos {
		t := c.Trigger
		out = append(out, record.Encode(tagCombo, c.Name, t.Kind.String(),
			t.Button.String(), t.Second.String(), strconv.Itoa(t.Count), fmtKey(t.Modifier),
			strconv.Itoa(t.WheelDir), record.FormatBool(c.RepeatWhileHeld),
			fmtInt(c.RepeatDelayMs), record.FormatBool(c.UseLocalRepeat), record.FormatBool(c.Enabled)))
		for _, a := range c.Actions {
			out = append(out, record.Encode(tagCAction, a.Kind.String(), fmtInt(a.DelayMs),
				fmtKey(a.Key), a.Button.String(), a.Text))
		}
	}
	return out
}

func appendActions(out []string, actions []Action) []string {
	for _, a := range actions {
		if a.Kind == ActionConditional {
			cond := "(and)"
			if a.Condition != nil {
				cond = a.Condition.String()
			}
			out = append(out, record.Encode(tagIf, fmtInt(a.DelayMs), cond))
			out = appendActions(out, a.Children)
			out = append(out, tagEndIf)
			continue
		}
		op := "set"
		if a.Op == VarAdd {
			op = "add"
		}
		out = append(out, record.Encode(tagAction, a.Kind.String(), fmtInt(a.DelayMs),
			fmtKey(a.Key), a.Button.String(), strconv.Itoa(a.Wheel), a.Variable, op,
			strconv.Itoa(a.Value)))
	}
	return out
}

// openIf is a conditional block whose children are still being read.
type openIf struct {
	action   Action
	children []Action
}

type decoder struct {
	macros []Macro
	combos []Combo
	errs   []error
	// current target for TRIGGER/ACTION/CACTION records
	macro *Macro
	combo *Combo
	open  []openIf
}

// Decode parses interchange records. Malformed records are skipped and reported; the
// rest still load. Unclosed conditional blocks are closed at the end of their macro.
func Decode(lines []string) (macros []Macro, combos []Combo, errs []error) {
	d := &decoder{}
	for n, line := range lines {
		if line == "" {
			continue
		}
		if err := d.line(record.Decode(line)); err != nil {
			d.errs = append(d.errs, fmt.Errorf("record %d: %w", n+1, err))
		}
	}
	d.flush()
	return d.macros, d.combos, d.errs
}

func (d *decoder) flush() {
	if d.macro != nil {
		for len(d.open) > 0 {
			d.errs = append(d.errs, fmt.Errorf("macro %q: unclosed IF block", d.macro.Name))
			d.endIf()
		}
		d.macros = append(d.macros, *d.macro)
	}
	if d.combo != nil {
		d.combos = append(d.combos, *d.combo)
	}
	d.macro, d.combo, d.open = nil, nil, nil
}

func (d *decoder) appendAction(a Action) {
	if n := len(d.open); n > 0 {
		d.open[n-1].children = append(d.open[n-1].children, a)
		return
	}
	d.macro.Actions = append(d.macro.Actions, a)
}

func (d *decoder) endIf() {
	n := len(d.open)
	top := d.open[n-1]
	d.open = d.open[:n-1]
	top.action.Children = top.children
	d.appendAction(top.action)
}

var errNoMacro = errors.New("record outside a macro")

// fields validates the record length and gives typed access to its fields.
type fields struct {
	f   []string
	err error
}

func (f *fields) str(i int) string { return f.f[i] }

func (f *fields) int64(i int) int64 {
	v, err := strconv.ParseInt(f.f[i], 10, 64)
	if err != nil && f.err == nil {
		f.err = fmt.Errorf("field %d: %w", i, err)
	}
	return v
}

func (f *fields) bool(i int) bool {
	v, err := record.ParseBool(f.f[i])
	if err != nil && f.err == nil {
		f.err = fmt.Errorf("field %d: %w", i, err)
	}
	return v
}

func (f *fields) key(i int) hid.Code {
	k, err := hid.ParseCode(f.f[i])
	if err != nil && f.err == nil {
		f.err = fmt.Errorf("field %d: %w", i, err)
	}
	return k
}

func (f *fields) button(i int) input.MouseButton {
	if f.f[i] == "none" || f.f[i] == "" {
		return input.MouseNone
	}
	b, ok := input.ParseMouseButton(f.f[i])
	if !ok && f.err == nil {
		f.err = fmt.Errorf("field %d: unknown mouse button %q", i, f.f[i])
	}
	return b
}

func (f *fields) enum(i int, names []string) uint8 {
	idx := slices.Index(names, f.f[i])
	if idx < 0 {
		if f.err == nil {
			f.err = fmt.Errorf("field %d: unknown kind %q", i, f.f[i])
		}
		return 0
	}
	return uint8(idx)
}

var recordLen = map[string]int{
	tagMacro: 9, tagTrigger: 6, tagAction: 9, tagIf: 3, tagEndIf: 1, tagCombo: 12, tagCAction: 6,
}

func (d *decoder) line(raw []string) error {
	tag := raw[0]
	want, ok := recordLen[tag]
	if !ok {
		return fmt.Errorf("unknown record %q", tag)
	}
	if len(raw) != want {
		return fmt.Errorf("%s record has %d fields, want %d", tag, len(raw), want)
	}
	f := &fields{f: raw}

	switch tag {
	case tagMacro:
		m := Macro{
			Name:           f.str(1),
			Looping:        f.bool(2),
			BlockKeys:      f.bool(3),
			DirectBinding:  f.bool(4),
			RequireAll:     f.bool(5),
			AllowMultiple:  f.bool(6),
			Speed:          float64(f.int64(7)) / record.Scale,
			ExecutionCount: int(f.int64(8)),
		}
		if f.err != nil {
			d.flush()
			return f.err
		}
		d.flush()
		m.Speed = normalizeSpeed(m.Speed)
		d.macro = &m
	case tagTrigger:
		if d.macro == nil {
			return errNoMacro
		}
		t := Trigger{
			Kind:       TriggerKind(f.enum(1, triggerNames)),
			Key:        f.key(2),
			Button:     f.button(3),
			HoldMs:     f.int64(4),
			CooldownMs: f.int64(5),
		}
		if f.err != nil {
			return f.err
		}
		d.macro.Triggers = append(d.macro.Triggers, t)
	case tagAction:
		if d.macro == nil {
			return errNoMacro
		}
		kind := ActionKind(f.enum(1, actionNames))
		if kind == ActionConditional {
			return errors.New("conditional actions use IF records")
		}
		a := Action{
			Kind:     kind,
			DelayMs:  max(f.int64(2), 0),
			Key:      f.key(3),
			Button:   f.button(4),
			Wheel:    int(f.int64(5)),
			Variable: f.str(6),
			Value:    int(f.int64(8)),
		}
		switch f.str(7) {
		case "add":
			a.Op = VarAdd
		case "set", "":
		default:
			return fmt.Errorf("unknown variable op %q", f.str(7))
		}
		if f.err != nil {
			return f.err
		}
		d.appendAction(a)
	case tagIf:
		if d.macro == nil {
			return errNoMacro
		}
		delay := f.int64(1)
		if f.err != nil {
			return f.err
		}
		cond, err := ParseCondition(f.str(2))
		if err != nil {
			// keep the block so its ENDIF still matches, but never take it
			cond = Condition{Kind: CondOr}
			d.open = append(d.open, openIf{action: Action{Kind: ActionConditional, DelayMs: max(delay, 0), Condition: &cond}})
			return fmt.Errorf("invalid condition: %w", err)
		}
		d.open = append(d.open, openIf{action: Action{Kind: ActionConditional, DelayMs: max(delay, 0), Condition: &cond}})
	case tagEndIf:
		if d.macro == nil || len(d.open) == 0 {
			return errors.New("ENDIF without IF")
		}
		d.endIf()
	case tagCombo:
		c := Combo{
			Name: f.str(1),
			Trigger: ComboTrigger{
				Kind:     ComboTriggerKind(f.enum(2, comboTriggerNames)),
				Button:   f.button(3),
				Second:   f.button(4),
				Count:    int(f.int64(5)),
				Modifier: f.key(6),
				WheelDir: int(f.int64(7)),
			},
			RepeatWhileHeld: f.bool(8),
			RepeatDelayMs:   f.int64(9),
			UseLocalRepeat:  f.bool(10),
			Enabled:         f.bool(11),
		}
		d.flush()
		if f.err != nil {
			return f.err
		}
		d.combo = &c
	case tagCAction:
		if d.combo == nil {
			return errors.New("record outside a combo")
		}
		a := ComboAction{
			Kind:    ComboActionKind(f.enum(1, comboActionNames)),
			DelayMs: f.int64(2),
			Key:     f.key(3),
			Button:  f.button(4),
			Text:    f.str(5),
		}
		if f.err != nil {
			return f.err
		}
		d.combo.Actions = append(d.combo.Actions, a)
	}
	return nil
}

// Export encodes every macro and combo of the engine.
func (e *Engine) Export() []string {
	return Encode(e.List(), e.Combos())
}

// Import adds the macros and combos decoded from lines and returns the skipped records.
func (e *Engine) Import(lines []string) []error {
	macros, combos, errs := Decode(lines)
	for _, m := range macros {
		e.Add(m)
	}
	for _, c := range combos {
		e.AddCombo(c)
	}
	for _, err := range errs {
		e.logger.Warn("skipping malformed macro record", "error", err)
	}
	return errs
}
