package layout_test

import (
	"testing"

	"github.com/Alia5/kb2pad/hid"
	"github.com/Alia5/kb2pad/layout"
	"github.com/Alia5/kb2pad/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetKeys(t *testing.T) {
	var p layout.Preset
	require.True(t, p.AddKey(layout.KeyDef{HID: hid.KeyW, W: 5, H: 9000}))
	assert.False(t, p.AddKey(layout.KeyDef{HID: hid.KeyW}), "hid must be unique")
	assert.False(t, p.AddKey(layout.KeyDef{HID: hid.KeyNone}))

	k, ok := p.Key(hid.KeyW)
	require.True(t, ok)
	assert.Equal(t, layout.MinKeySize, k.W)
	assert.Equal(t, layout.MaxKeySize, k.H)
	assert.Equal(t, "W", k.Label)

	require.True(t, p.SetKey(layout.KeyDef{HID: hid.KeyW, Label: "Up", W: 40, H: 40}))
	k, _ = p.Key(hid.KeyW)
	assert.Equal(t, "Up", k.Label)
	assert.Len(t, p.Keys, 1)

	assert.True(t, p.RemoveKey(hid.KeyW))
	assert.False(t, p.RemoveKey(hid.KeyW))
}

func TestNormalizeDropsDuplicates(t *testing.T) {
	p := layout.Preset{Name: " wasd ", UniformGap: -3, Keys: []layout.KeyDef{
		{HID: hid.KeyW, Label: "first", W: 50, H: 50},
		{HID: hid.KeyW, Label: "second", W: 50, H: 50},
		{HID: hid.KeyA, W: 50, H: 50},
	}}
	n := p.Normalize()
	assert.Equal(t, "wasd", n.Name)
	assert.Equal(t, 0, n.UniformGap)
	require.Len(t, n.Keys, 2)
	assert.Equal(t, "first", n.Keys[0].Label)
	assert.Len(t, p.Keys, 3, "normalize must not modify the receiver")
}

func TestPositions(t *testing.T) {
	p := layout.Preset{UniformSpacing: true, UniformGap: 4, Keys: []layout.KeyDef{
		{HID: hid.KeyQ, Row: 0, W: 50, X: 999},
		{HID: hid.KeyW, Row: 0, W: 100},
		{HID: hid.KeyA, Row: 1, W: 50},
		{HID: hid.KeyE, Row: 0, W: 50},
	}}
	assert.Equal(t, []int{0, 54, 0, 158}, p.Positions())
	p.UniformSpacing = false
	assert.Equal(t, []int{999, 0, 0, 0}, p.Positions())
}

func TestStoreLifecycle(t *testing.T) {
	s := layout.NewStore()
	assert.Equal(t, "Default", s.Active().Name)
	assert.False(t, s.Delete("Default"), "the last preset cannot be deleted")

	assert.True(t, s.Add(layout.Preset{Name: "wasd"}))
	assert.False(t, s.Add(layout.Preset{Name: "wasd"}))
	assert.False(t, s.Add(layout.Preset{Name: "  "}))
	assert.False(t, s.Activate("missing"))

	require.True(t, s.Activate("wasd"))
	assert.Equal(t, "wasd", s.Active().Name)

	assert.True(t, s.Update(layout.Preset{Name: "wasd", UniformGap: 8}))
	assert.False(t, s.Update(layout.Preset{Name: "nope"}))
	got, ok := s.Get("wasd")
	require.True(t, ok)
	assert.Equal(t, 8, got.UniformGap)

	assert.False(t, s.Rename("wasd", "Default"))
	require.True(t, s.Rename("wasd", "arrows"))
	assert.Equal(t, "arrows", s.Active().Name)

	require.True(t, s.Delete("arrows"))
	assert.Equal(t, "Default", s.Active().Name)
	assert.False(t, s.Delete("Default"))
	assert.Len(t, s.Presets(), 1)
}

func TestDeleteBeforeActiveKeepsActive(t *testing.T) {
	s := layout.NewStore()
	require.True(t, s.Add(layout.Preset{Name: "b"}))
	require.True(t, s.Activate("b"))
	require.True(t, s.Delete("Default"))
	assert.Equal(t, "b", s.Active().Name)
}

func TestPresetsAreCopies(t *testing.T) {
	s := layout.NewStore()
	ps := s.Presets()
	ps[0].Keys[0].Label = "changed"
	assert.NotEqual(t, "changed", s.Active().Keys[0].Label)
}

func TestSerializeRoundTrip(t *testing.T) {
	s := layout.NewStore()
	custom := layout.Preset{Name: "pipes|and\\slashes", UniformGap: 2, Keys: []layout.KeyDef{
		{Label: "Jump|Up", HID: hid.KeySpace, Row: 2, X: 10, W: 200, H: 40},
		{Label: "Fire", HID: hid.KeyF, Row: 0, X: 0, W: 50, H: 50},
	}}
	require.True(t, s.Add(custom))
	require.True(t, s.Activate(custom.Name))

	loaded := layout.NewStore()
	loaded.Deserialize(s.Serialize(), nil)
	assert.Equal(t, s.Presets(), loaded.Presets())
	assert.Equal(t, custom.Name, loaded.Active().Name)
}

func TestSerializeThroughMap(t *testing.T) {
	s := layout.NewStore()
	for i := range 12 {
		require.True(t, s.Add(layout.Preset{Name: string(rune('a' + i))}))
	}
	loaded := layout.NewStore()
	loaded.Deserialize(record.FromMap(s.Serialize().Map()), nil)
	assert.Equal(t, s.Presets(), loaded.Presets())
}

func TestDeserializeSkipsMalformed(t *testing.T) {
	pairs := record.Pairs{
		{Key: "Active", Value: "gone"},
		{Key: "Preset.0", Value: "main|1|4"},
		{Key: "Preset.0.0", Value: "W|0x1A|0|0|50|50"},
		{Key: "Preset.0.1", Value: "W again|0x1A|0|0|50|50"},
		{Key: "Preset.0.2", Value: "bad|0x1A|zero|0|50|50"},
		{Key: "Preset.0.x", Value: "A|0x04|0|0|50|50"},
		{Key: "Preset.0.3", Value: "A|0x04|1|0|10|50"},
		{Key: "Preset.1", Value: "main|0|0"},
		{Key: "Preset.2", Value: "short"},
		{Key: "Preset.3.0", Value: "S|0x16|0|0|50|50"},
		{Key: "Preset.x", Value: "x|0|0"},
	}
	s := layout.NewStore()
	s.Deserialize(pairs, nil)
	ps := s.Presets()
	require.Len(t, ps, 1)
	assert.Equal(t, "main", s.Active().Name)
	require.Len(t, ps[0].Keys, 2)
	assert.Equal(t, "W", ps[0].Keys[0].Label)
	assert.Equal(t, layout.MinKeySize, ps[0].Keys[1].W)
}

func TestDeserializeEmptyKeepsCurrent(t *testing.T) {
	s := layout.NewStore()
	s.Deserialize(record.Pairs{{Key: "Preset.0", Value: "broken"}}, nil)
	assert.Equal(t, "Default", s.Active().Name)
}
