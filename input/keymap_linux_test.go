package input

import (
	"testing"

	"github.com/Alia5/kb2pad/hid"
	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
)

func TestLinuxKeyMapRoundTrip(t *testing.T) {
	for ev, code := range linuxKeys {
		back, ok := LinuxKeyCode(code)
		assert.True(t, ok, "hid %v", code)
		assert.Equal(t, int(ev), back)
	}

	c, ok := FromLinuxKey(evdev.KEY_W)
	assert.True(t, ok)
	assert.Equal(t, hid.KeyW, c)

	b, ok := LinuxButtonCode(MouseLeft)
	assert.True(t, ok)
	assert.Equal(t, int(evdev.BTN_LEFT), b)
}

type recorder struct {
	keys    []hid.Code
	buttons []MouseButton
	wheel   int
}

func (r *recorder) OnKeyEvent(key hid.Code, down bool, _ int64) {
	if down {
		r.keys = append(r.keys, key)
	}
}
func (r *recorder) OnMouseEvent(b MouseButton, _ bool, _ int64) { r.buttons = append(r.buttons, b) }
func (r *recorder) OnWheel(delta int, _ int64)                  { r.wheel += delta }
func (r *recorder) OnAnalogKey(hid.Code, float64, int64)        {}

func TestDispatch(t *testing.T) {
	s := &EvdevSource{Clock: &ManualClock{}}
	r := &recorder{}
	s.dispatch(&evdev.InputEvent{Type: evdev.EV_KEY, Code: evdev.KEY_A, Value: 1}, r)
	s.dispatch(&evdev.InputEvent{Type: evdev.EV_KEY, Code: evdev.KEY_A, Value: 2}, r)
	s.dispatch(&evdev.InputEvent{Type: evdev.EV_KEY, Code: evdev.BTN_RIGHT, Value: 1}, r)
	s.dispatch(&evdev.InputEvent{Type: evdev.EV_REL, Code: evdev.REL_WHEEL, Value: -1}, r)
	s.dispatch(&evdev.InputEvent{Type: evdev.EV_REL, Code: evdev.REL_X, Value: 7}, r)

	assert.Equal(t, []hid.Code{hid.KeyA}, r.keys)
	assert.Equal(t, []MouseButton{MouseRight}, r.buttons)
	assert.Equal(t, -1, r.wheel)
}
