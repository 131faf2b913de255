package macro_test

import (
	"testing"

	"github.com/Alia5/kb2pad/hid"
	"github.com/Alia5/kb2pad/input"
	"github.com/Alia5/kb2pad/macro"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCond(t *testing.T, s string) *macro.Condition {
	t.Helper()
	c, err := macro.ParseCondition(s)
	require.NoError(t, err)
	return &c
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	macros := []macro.Macro{
		{
			Name: "sprint|jump", Looping: true, BlockKeys: true, DirectBinding: true,
			AllowMultiple: true, Speed: 1.5, ExecutionCount: 7,
			Triggers: []macro.Trigger{
				{Kind: macro.TriggerKeyHeld, Key: hid.KeyF, HoldMs: 250, CooldownMs: 1000},
				{Kind: macro.TriggerMouseUp, Button: input.MouseX2},
			},
			Actions: []macro.Action{
				{Kind: macro.ActionSetVariable, Variable: "n", Value: 3},
				{Kind: macro.ActionKeyDown, Key: hid.KeyLeftShift},
				{Kind: macro.ActionConditional, DelayMs: 20, Condition: mustCond(t, "(var n > 1)"), Children: []macro.Action{
					{Kind: macro.ActionWheel, Wheel: -2, DelayMs: 5},
					{Kind: macro.ActionConditional, Condition: mustCond(t, "(or (random 50) (not (mouse right down)))"), Children: []macro.Action{
						{Kind: macro.ActionMouseDown, Button: input.MouseRight},
					}},
				}},
				{Kind: macro.ActionSetVariable, Variable: "n", Op: macro.VarAdd, Value: -1},
				{Kind: macro.ActionKeyUp, Key: hid.KeyLeftShift, DelayMs: 100},
			},
		},
		{Name: "empty", Speed: 1, RequireAll: true},
		{
			Name: "odd names", Speed: 1,
			Actions: []macro.Action{
				{Kind: macro.ActionSetVariable, Variable: "hit count", Value: 2},
				{Kind: macro.ActionConditional, Condition: mustCond(t, `(and (var "hit count" > 1) (var "a(b) \"c\"" == 0))`), Children: []macro.Action{
					{Kind: macro.ActionKeyDown, Key: hid.KeyA},
				}},
			},
		},
	}
	combos := []macro.Combo{{
		Name: "greet",
		Trigger: macro.ComboTrigger{
			Kind: macro.ComboModifierWheel, Modifier: hid.KeyLeftAlt, WheelDir: -1,
		},
		Actions: []macro.ComboAction{
			{Kind: macro.ComboType, Text: "a|b\\c\nd"},
			{Kind: macro.ComboDelay, DelayMs: 15},
			{Kind: macro.ComboMouseClick, Button: input.MouseMiddle},
		},
		RepeatWhileHeld: true, RepeatDelayMs: 80, UseLocalRepeat: true, Enabled: true,
	}}

	lines := macro.Encode(macros, combos)
	gotMacros, gotCombos, errs := macro.Decode(lines)
	require.Empty(t, errs)
	assert.Equal(t, macros, gotMacros)
	assert.Equal(t, combos, gotCombos)
}

func TestDecodeSkipsMalformedRecords(t *testing.T) {
	lines := []string{
		"BOGUS|x",
		"TRIGGER|keydown|0x04|none|0|0",
		"MACRO|m|0|0|0|0|0|1000|0",
		"ACTION|keydown|soon|0x04|none|0||set|0",
		"ACTION|keydown|0|0x04|none|0||set|0",
		"ACTION|keydown|0|0x04|none",
		"IF|0|(bogus)",
		"ACTION|keyup|0|0x04|none|0||set|0",
		"ENDIF",
		"ENDIF",
		"",
		"COMBO|c|click|left|none|2|0x00|0|0|0|0|1",
		"CACTION|tap|0|0x14|none|",
	}
	macros, combos, errs := macro.Decode(lines)
	assert.Len(t, errs, 6)
	require.Len(t, macros, 1)
	m := macros[0]
	require.Len(t, m.Actions, 2)
	assert.Equal(t, macro.ActionKeyDown, m.Actions[0].Kind)
	assert.Equal(t, macro.ActionConditional, m.Actions[1].Kind)
	assert.Len(t, m.Actions[1].Children, 1)

	e, em := newEngine(macro.Options{})
	id := e.Add(m)
	require.True(t, e.Play(id, 0))
	assert.Equal(t, []string{"A+", "A-"}, em.names(), "invalid conditions are never taken")

	require.Len(t, combos, 1)
	assert.Equal(t, 2, combos[0].Trigger.Count)
	assert.Equal(t, hid.KeyQ, combos[0].Actions[0].Key)
}

func TestDecodeClosesUnterminatedIf(t *testing.T) {
	macros, _, errs := macro.Decode([]string{
		"MACRO|m|0|0|0|0|0|1000|0",
		"IF|0|(random 100)",
		"ACTION|keydown|0|0x04|none|0||set|0",
		"MACRO|n|0|0|0|0|0|2000|0",
	})
	assert.Len(t, errs, 1)
	require.Len(t, macros, 2)
	require.Len(t, macros[0].Actions, 1)
	assert.Len(t, macros[0].Actions[0].Children, 1)
	assert.Equal(t, 2.0, macros[1].Speed)
}

func TestEngineExportImport(t *testing.T) {
	src, _ := newEngine(macro.Options{})
	src.Add(macro.Macro{Name: "a", Actions: tap(hid.KeyA, 10)})
	src.AddCombo(macro.Combo{Name: "c", Enabled: true, Actions: tapCombo(hid.KeyB),
		Trigger: macro.ComboTrigger{Kind: macro.ComboClick, Button: input.MouseLeft, Count: 3}})

	dst, _ := newEngine(macro.Options{})
	errs := dst.Import(append(src.Export(), "MACRO|broken"))
	assert.Len(t, errs, 1)

	got := dst.List()
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, tap(hid.KeyA, 10), got[0].Actions)
	require.Len(t, dst.Combos(), 1)
	assert.Equal(t, 3, dst.Combos()[0].Trigger.Count)
}

func TestSpeedSurvivesExportImport(t *testing.T) {
	cases := []struct {
		name  string
		speed float64
		want  float64
	}{
		{"unset", 0, 1},
		{"negative", -2, 1},
		{"below minimum", 0.0002, macro.MinSpeed},
		{"minimum", macro.MinSpeed, macro.MinSpeed},
		{"fast", 1.5, 1.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src, _ := newEngine(macro.Options{})
			id := src.Add(macro.Macro{Name: "m", Speed: tc.speed})
			m, ok := src.Get(id)
			require.True(t, ok)
			assert.InDelta(t, tc.want, m.Speed, 1e-9)

			m.Speed = tc.speed
			require.True(t, src.Update(m, 0))
			m, _ = src.Get(id)
			assert.InDelta(t, tc.want, m.Speed, 1e-9)

			dst, _ := newEngine(macro.Options{})
			require.Empty(t, dst.Import(src.Export()))
			got := dst.List()
			require.Len(t, got, 1)
			assert.InDelta(t, tc.want, got[0].Speed, 1e-9)
		})
	}
}
