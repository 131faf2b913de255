package macro_test

import (
	"testing"

	"github.com/Alia5/kb2pad/hid"
	"github.com/Alia5/kb2pad/input"
	"github.com/Alia5/kb2pad/macro"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tapCombo(k hid.Code) []macro.ComboAction {
	return []macro.ComboAction{{Kind: macro.ComboTap, Key: k}}
}

func click(e *macro.Engine, b input.MouseButton, at int64) {
	e.OnMouseEvent(b, true, at)
	e.OnMouseEvent(b, false, at+5)
}

func TestComboDoubleClick(t *testing.T) {
	e, em := newEngine(macro.Options{})
	e.AddCombo(macro.Combo{Name: "dbl", Enabled: true, Actions: tapCombo(hid.KeyQ),
		Trigger: macro.ComboTrigger{Kind: macro.ComboClick, Button: input.MouseLeft, Count: 2}})

	click(e, input.MouseLeft, 0)
	e.Advance(10)
	assert.Empty(t, em.events)

	click(e, input.MouseLeft, 100)
	assert.Empty(t, em.events, "combo events are delivered on the next tick")
	e.Advance(110)
	assert.Equal(t, []string{"Q+", "Q-"}, em.names())
	assert.Equal(t, []int64{100, 100}, em.times())

	// too slow for a double click
	click(e, input.MouseLeft, 1000)
	click(e, input.MouseLeft, 1500)
	e.Advance(1600)
	assert.Len(t, em.events, 2)
}

func TestComboSingleClickFiresOnEveryClick(t *testing.T) {
	e, em := newEngine(macro.Options{})
	e.AddCombo(macro.Combo{Name: "tap", Enabled: true, Actions: tapCombo(hid.KeyQ),
		Trigger: macro.ComboTrigger{Kind: macro.ComboClick, Button: input.MouseLeft, Count: 1}})

	for _, at := range []int64{0, 150, 300, 450} {
		click(e, input.MouseLeft, at)
	}
	e.Advance(1000)
	assert.Equal(t, []string{"Q+", "Q-", "Q+", "Q-", "Q+", "Q-", "Q+", "Q-"}, em.names())
}

func TestComboSimultaneous(t *testing.T) {
	e, em := newEngine(macro.Options{})
	e.AddCombo(macro.Combo{Name: "both", Enabled: true, Actions: tapCombo(hid.KeyB),
		Trigger: macro.ComboTrigger{Kind: macro.ComboSimultaneous, Button: input.MouseLeft, Second: input.MouseRight}})

	e.OnMouseEvent(input.MouseLeft, true, 0)
	e.OnMouseEvent(input.MouseRight, true, 30)
	e.Advance(30)
	assert.Equal(t, []string{"B+", "B-"}, em.names())

	e.OnMouseEvent(input.MouseLeft, false, 40)
	e.OnMouseEvent(input.MouseRight, false, 40)
	e.OnMouseEvent(input.MouseLeft, true, 100)
	e.OnMouseEvent(input.MouseRight, true, 300)
	e.Advance(300)
	assert.Len(t, em.events, 2)
}

func TestComboHeldClick(t *testing.T) {
	e, em := newEngine(macro.Options{})
	e.AddCombo(macro.Combo{Name: "held", Enabled: true, Actions: tapCombo(hid.KeyH),
		Trigger: macro.ComboTrigger{Kind: macro.ComboHeldClick, Button: input.MouseLeft, Second: input.MouseRight}})

	click(e, input.MouseLeft, 0)
	e.OnMouseEvent(input.MouseRight, true, 100)
	click(e, input.MouseLeft, 500)
	e.Advance(600)
	assert.Equal(t, []string{"H+", "H-"}, em.names())
	assert.Equal(t, []int64{500, 500}, em.times())
}

func TestComboModifierWheel(t *testing.T) {
	e, em := newEngine(macro.Options{})
	e.AddCombo(macro.Combo{Name: "zoom", Enabled: true, Actions: tapCombo(hid.KeyEqual),
		Trigger: macro.ComboTrigger{Kind: macro.ComboModifierWheel, Modifier: hid.KeyLeftCtrl, WheelDir: 1}})

	e.OnWheel(1, 0)
	e.OnKeyEvent(hid.KeyLeftCtrl, true, 5)
	e.OnWheel(-1, 10)
	e.OnWheel(0, 15)
	e.OnWheel(1, 20)
	e.Advance(20)
	assert.Equal(t, []string{"Equal+", "Equal-"}, em.names())
	assert.Equal(t, []int64{20, 20}, em.times())
}

func TestComboTypeAndDelay(t *testing.T) {
	e, em := newEngine(macro.Options{})
	e.AddCombo(macro.Combo{Name: "say", Enabled: true,
		Trigger: macro.ComboTrigger{Kind: macro.ComboClick, Button: input.MouseX1, Count: 1},
		Actions: []macro.ComboAction{
			{Kind: macro.ComboType, Text: "Hi"},
			{Kind: macro.ComboDelay, DelayMs: 40},
			{Kind: macro.ComboPress, Key: hid.KeyEnter},
			{Kind: macro.ComboMouseClick, Button: input.MouseLeft},
			{Kind: macro.ComboRelease, Key: hid.KeyEnter},
		}})

	click(e, input.MouseX1, 0)
	e.Advance(10)
	assert.Equal(t, []string{"LeftShift+", "H+", "H-", "LeftShift-", "I+", "I-"}, em.names())
	e.Advance(40)
	assert.Equal(t, []string{"LeftShift+", "H+", "H-", "LeftShift-", "I+", "I-",
		"Enter+", "left+", "left-", "Enter-"}, em.names())
	assert.Equal(t, int64(40), em.events[len(em.events)-1].at)
}

func TestComboRepeatWhileHeld(t *testing.T) {
	type testCase struct {
		name  string
		combo macro.Combo
		want  []int64
	}
	cases := []testCase{
		{
			name:  "local interval",
			combo: macro.Combo{RepeatWhileHeld: true, UseLocalRepeat: true, RepeatDelayMs: 50},
			want:  []int64{0, 0, 50, 50, 100, 100},
		},
		{
			name:  "global interval",
			combo: macro.Combo{RepeatWhileHeld: true, RepeatDelayMs: 50},
			want:  []int64{0, 0, 30, 30, 60, 60, 90, 90, 120, 120},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, em := newEngine(macro.Options{ComboRepeatMs: func() int64 { return 30 }})
			c := tc.combo
			c.Name, c.Enabled, c.Actions = "rep", true, tapCombo(hid.KeyA)
			c.Trigger = macro.ComboTrigger{Kind: macro.ComboClick, Button: input.MouseLeft, Count: 1}
			e.AddCombo(c)

			e.OnMouseEvent(input.MouseLeft, true, 0)
			e.Advance(0)
			e.Advance(120)
			e.OnMouseEvent(input.MouseLeft, false, 130)
			e.Advance(500)
			assert.Equal(t, tc.want, em.times())
		})
	}
}

func TestComboDisabledAndCRUD(t *testing.T) {
	e, em := newEngine(macro.Options{})
	id := e.AddCombo(macro.Combo{Name: "off", Actions: tapCombo(hid.KeyA),
		Trigger: macro.ComboTrigger{Kind: macro.ComboClick, Button: input.MouseLeft, Count: 1}})
	click(e, input.MouseLeft, 0)
	e.Advance(10)
	assert.Empty(t, em.events)

	cs := e.Combos()
	require.Len(t, cs, 1)
	cs[0].Enabled = true
	require.True(t, e.UpdateCombo(cs[0]))
	click(e, input.MouseLeft, 1000)
	e.Advance(1010)
	assert.Len(t, em.events, 2)

	assert.True(t, e.DeleteCombo(id))
	assert.False(t, e.DeleteCombo(id))
	assert.False(t, e.UpdateCombo(macro.Combo{ID: id}))
	assert.Empty(t, e.Combos())
}

func TestClearReleasesComboKeys(t *testing.T) {
	e, em := newEngine(macro.Options{})
	e.AddCombo(macro.Combo{Name: "hold", Enabled: true,
		Trigger: macro.ComboTrigger{Kind: macro.ComboClick, Button: input.MouseLeft, Count: 1},
		Actions: []macro.ComboAction{{Kind: macro.ComboPress, Key: hid.KeyA}}})
	e.OnMouseEvent(input.MouseLeft, true, 0)
	e.Advance(0)
	e.Clear(50)
	assert.Equal(t, []string{"A+", "A-"}, em.names())
	assert.Equal(t, []int64{0, 50}, em.times())
	assert.Empty(t, e.Combos())
}
