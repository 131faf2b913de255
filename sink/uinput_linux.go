//go:build linux

package sink

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bendahl/uinput"
	"github.com/holoplot/go-evdev"

	"github.com/Alia5/kb2pad/gamepad"
	"github.com/Alia5/kb2pad/hid"
	"github.com/Alia5/kb2pad/input"
)

const uinputPath = "/dev/uinput"

// Xbox 360 wired controller ids.
const (
	xboxVendor  = 0x045e
	xboxProduct = 0x028e
)

var uinputButtons = []struct {
	mask uint32
	code int
}{
	{gamepad.ButtonA, uinput.ButtonSouth},
	{gamepad.ButtonB, uinput.ButtonEast},
	{gamepad.ButtonX, uinput.ButtonWest},
	{gamepad.ButtonY, uinput.ButtonNorth},
	{gamepad.ButtonLShoulder, uinput.ButtonBumperLeft},
	{gamepad.ButtonRShoulder, uinput.ButtonBumperRight},
	{gamepad.ButtonBack, uinput.ButtonSelect},
	{gamepad.ButtonStart, uinput.ButtonStart},
	{gamepad.ButtonGuide, uinput.ButtonMode},
	{gamepad.ButtonLThumb, int(evdev.BTN_THUMBL)},
	{gamepad.ButtonRThumb, int(evdev.BTN_THUMBR)},
	{gamepad.ButtonDPadUp, uinput.ButtonDpadUp},
	{gamepad.ButtonDPadDown, uinput.ButtonDpadDown},
	{gamepad.ButtonDPadLeft, uinput.ButtonDpadLeft},
	{gamepad.ButtonDPadRight, uinput.ButtonDpadRight},
}

// Uinput is a local virtual gamepad. Triggers are reported as digital buttons,
// pressed from half travel.
type Uinput struct {
	mu   sync.Mutex
	dev  uinput.Gamepad
	last gamepad.Report
}

func NewUinput(name string) (*Uinput, error) {
	dev, err := uinput.CreateGamepad(uinputPath, []byte(name), xboxVendor, xboxProduct)
	if err != nil {
		return nil, fmt.Errorf("create uinput gamepad: %w", err)
	}
	return &Uinput{dev: dev}, nil
}

func (u *Uinput) Submit(r gamepad.Report) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	var errs []error
	for _, b := range uinputButtons {
		now, was := r.Pressed(b.mask), u.last.Pressed(b.mask)
		if now != was {
			errs = append(errs, u.button(b.code, now))
		}
	}
	for _, t := range []struct {
		now, was uint8
		code     int
	}{
		{r.LT, u.last.LT, uinput.ButtonTriggerLeft},
		{r.RT, u.last.RT, uinput.ButtonTriggerRight},
	} {
		if (t.now >= 0x80) != (t.was >= 0x80) {
			errs = append(errs, u.button(t.code, t.now >= 0x80))
		}
	}
	if r.LX != u.last.LX || r.LY != u.last.LY {
		errs = append(errs, u.dev.LeftStickMove(stick(r.LX), -stick(r.LY)))
	}
	if r.RX != u.last.RX || r.RY != u.last.RY {
		errs = append(errs, u.dev.RightStickMove(stick(r.RX), -stick(r.RY)))
	}
	u.last = r
	return errors.Join(errs...)
}

func (u *Uinput) button(code int, down bool) error {
	if down {
		return u.dev.ButtonDown(code)
	}
	return u.dev.ButtonUp(code)
}

func stick(v int16) float32 { return float32(gamepad.AxisToFloat(v)) }

func (u *Uinput) Close() error { return u.dev.Close() }

// UinputEmitter replays synthetic keyboard and mouse events to the host through
// virtual uinput devices.
type UinputEmitter struct {
	kbd   uinput.Keyboard
	mouse uinput.Mouse
}

func NewUinputEmitter(name string) (*UinputEmitter, error) {
	kbd, err := uinput.CreateKeyboard(uinputPath, []byte(name+" keyboard"))
	if err != nil {
		return nil, fmt.Errorf("create uinput keyboard: %w", err)
	}
	mouse, err := uinput.CreateMouse(uinputPath, []byte(name+" mouse"))
	if err != nil {
		kbd.Close()
		return nil, fmt.Errorf("create uinput mouse: %w", err)
	}
	return &UinputEmitter{kbd: kbd, mouse: mouse}, nil
}

func (u *UinputEmitter) EmitKey(key hid.Code, down bool, _ int64) error {
	code, ok := input.LinuxKeyCode(key)
	if !ok {
		return fmt.Errorf("no linux key code for %s", key)
	}
	if down {
		return u.kbd.KeyDown(code)
	}
	return u.kbd.KeyUp(code)
}

func (u *UinputEmitter) EmitMouse(b input.MouseButton, down bool, _ int64) error {
	switch {
	case b == input.MouseLeft && down:
		return u.mouse.LeftPress()
	case b == input.MouseLeft:
		return u.mouse.LeftRelease()
	case b == input.MouseRight && down:
		return u.mouse.RightPress()
	case b == input.MouseRight:
		return u.mouse.RightRelease()
	case b == input.MouseMiddle && down:
		return u.mouse.MiddlePress()
	case b == input.MouseMiddle:
		return u.mouse.MiddleRelease()
	}
	return fmt.Errorf("mouse button %s not supported by uinput", b)
}

func (u *UinputEmitter) EmitWheel(delta int, _ int64) error {
	return u.mouse.Wheel(false, int32(delta))
}

func (u *UinputEmitter) Close() error {
	return errors.Join(u.kbd.Close(), u.mouse.Close())
}
