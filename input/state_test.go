package input_test

import (
	"testing"

	"github.com/Alia5/kb2pad/hid"
	"github.com/Alia5/kb2pad/input"
	"github.com/stretchr/testify/assert"
)

func TestDigitalInstant(t *testing.T) {
	s := input.NewState()
	s.SetKey(input.Physical, hid.KeyW, true, 100, input.Ramp{})

	got := s.Key(hid.KeyW, 100, input.Ramp{}, false)
	assert.Equal(t, input.Sample{Value: 1, Down: true, PressedAt: 100}, got)

	s.SetKey(input.Physical, hid.KeyW, false, 150, input.Ramp{})
	got = s.Key(hid.KeyW, 150, input.Ramp{}, false)
	assert.Equal(t, 0.0, got.Value)
	assert.False(t, got.Down)
}

func TestDigitalRamp(t *testing.T) {
	s := input.NewState()
	r := input.Ramp{UpMs: 100, DownMs: 200}
	s.SetKey(input.Physical, hid.KeyD, true, 1000, r)

	assert.InDelta(t, 0.0, s.Key(hid.KeyD, 1000, r, false).Value, 1e-9)
	assert.InDelta(t, 0.5, s.Key(hid.KeyD, 1050, r, false).Value, 1e-9)
	assert.InDelta(t, 1.0, s.Key(hid.KeyD, 1500, r, false).Value, 1e-9)

	// release halfway up, fall continues from 0.5
	s2 := input.NewState()
	s2.SetKey(input.Physical, hid.KeyD, true, 0, r)
	s2.SetKey(input.Physical, hid.KeyD, false, 50, r)
	assert.InDelta(t, 0.5, s2.Key(hid.KeyD, 50, r, false).Value, 1e-9)
	assert.InDelta(t, 0.25, s2.Key(hid.KeyD, 100, r, false).Value, 1e-9)
	assert.InDelta(t, 0.0, s2.Key(hid.KeyD, 1000, r, false).Value, 1e-9)
}

func TestAutoRepeatKeepsPressTime(t *testing.T) {
	s := input.NewState()
	s.SetKey(input.Physical, hid.KeyA, true, 10, input.Ramp{})
	s.SetKey(input.Physical, hid.KeyA, true, 500, input.Ramp{})
	assert.Equal(t, int64(10), s.Key(hid.KeyA, 600, input.Ramp{}, false).PressedAt)
}

func TestAnalogKey(t *testing.T) {
	s := input.NewState()
	s.SetAnalog(input.Physical, hid.KeyS, 0.42, 5)
	got := s.Key(hid.KeyS, 999, input.Ramp{UpMs: 100}, false)
	assert.InDelta(t, 0.42, got.Value, 1e-9)
	assert.True(t, got.Down)
	assert.Equal(t, int64(5), got.PressedAt)

	s.SetAnalog(input.Physical, hid.KeyS, 0.8, 20)
	assert.Equal(t, int64(5), s.Key(hid.KeyS, 999, input.Ramp{}, false).PressedAt)

	s.SetAnalog(input.Physical, hid.KeyS, 0, 30)
	assert.False(t, s.Key(hid.KeyS, 999, input.Ramp{}, false).Down)
}

func TestLayers(t *testing.T) {
	s := input.NewState()
	s.SetKey(input.Physical, hid.KeyQ, true, 10, input.Ramp{})
	s.SetKey(input.Synthetic, hid.KeyQ, true, 20, input.Ramp{})

	got := s.Key(hid.KeyQ, 30, input.Ramp{}, false)
	assert.Equal(t, int64(20), got.PressedAt)

	s.SetKey(input.Synthetic, hid.KeyQ, false, 25, input.Ramp{})
	assert.True(t, s.Key(hid.KeyQ, 30, input.Ramp{}, false).Down)
	assert.False(t, s.Key(hid.KeyQ, 30, input.Ramp{}, true).Down)
	assert.True(t, s.AnyKeyDown(hid.KeyQ))
	assert.False(t, s.KeyDown(input.Synthetic, hid.KeyQ))

	s.SetKey(input.Synthetic, hid.KeyE, true, 40, input.Ramp{})
	assert.Equal(t, []hid.Code{hid.KeyE}, s.HeldKeys(input.Synthetic))
	s.Reset(input.Synthetic)
	assert.Empty(t, s.HeldKeys(input.Synthetic))
	assert.Equal(t, []hid.Code{hid.KeyQ}, s.HeldKeys(input.Physical))
}

func TestMouse(t *testing.T) {
	s := input.NewState()
	s.SetMouse(input.Physical, input.MouseRight, true, 1)
	assert.True(t, s.MouseDown(input.MouseRight))
	assert.False(t, s.MouseDown(input.MouseLeft))
	s.SetMouse(input.Physical, input.MouseRight, false, 2)
	assert.False(t, s.MouseDown(input.MouseRight))
	assert.False(t, s.MouseDown(input.MouseNone))

	b, ok := input.ParseMouseButton("Middle")
	assert.True(t, ok)
	assert.Equal(t, input.MouseMiddle, b)
	_, ok = input.ParseMouseButton("none")
	assert.False(t, ok)
}

func TestManualClock(t *testing.T) {
	var c input.ManualClock
	c.Set(10)
	c.Advance(5)
	assert.Equal(t, int64(15), c.NowMs())
}
