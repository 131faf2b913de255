package input

import (
	"github.com/Alia5/kb2pad/hid"
	"github.com/holoplot/go-evdev"
)

// linuxKeys maps Linux input key codes to HID usage codes.
var linuxKeys = map[evdev.EvCode]hid.Code{
	evdev.KEY_A: hid.KeyA, evdev.KEY_B: hid.KeyB, evdev.KEY_C: hid.KeyC, evdev.KEY_D: hid.KeyD,
	evdev.KEY_E: hid.KeyE, evdev.KEY_F: hid.KeyF, evdev.KEY_G: hid.KeyG, evdev.KEY_H: hid.KeyH,
	evdev.KEY_I: hid.KeyI, evdev.KEY_J: hid.KeyJ, evdev.KEY_K: hid.KeyK, evdev.KEY_L: hid.KeyL,
	evdev.KEY_M: hid.KeyM, evdev.KEY_N: hid.KeyN, evdev.KEY_O: hid.KeyO, evdev.KEY_P: hid.KeyP,
	evdev.KEY_Q: hid.KeyQ, evdev.KEY_R: hid.KeyR, evdev.KEY_S: hid.KeyS, evdev.KEY_T: hid.KeyT,
	evdev.KEY_U: hid.KeyU, evdev.KEY_V: hid.KeyV, evdev.KEY_W: hid.KeyW, evdev.KEY_X: hid.KeyX,
	evdev.KEY_Y: hid.KeyY, evdev.KEY_Z: hid.KeyZ,

	evdev.KEY_1: hid.Key1, evdev.KEY_2: hid.Key2, evdev.KEY_3: hid.Key3, evdev.KEY_4: hid.Key4,
	evdev.KEY_5: hid.Key5, evdev.KEY_6: hid.Key6, evdev.KEY_7: hid.Key7, evdev.KEY_8: hid.Key8,
	evdev.KEY_9: hid.Key9, evdev.KEY_0: hid.Key0,

	evdev.KEY_ENTER: hid.KeyEnter, evdev.KEY_ESC: hid.KeyEscape, evdev.KEY_BACKSPACE: hid.KeyBackspace,
	evdev.KEY_TAB: hid.KeyTab, evdev.KEY_SPACE: hid.KeySpace, evdev.KEY_MINUS: hid.KeyMinus,
	evdev.KEY_EQUAL: hid.KeyEqual, evdev.KEY_LEFTBRACE: hid.KeyLeftBrace, evdev.KEY_RIGHTBRACE: hid.KeyRightBrace,
	evdev.KEY_BACKSLASH: hid.KeyBackslash, evdev.KEY_SEMICOLON: hid.KeySemicolon,
	evdev.KEY_APOSTROPHE: hid.KeyApostrophe, evdev.KEY_GRAVE: hid.KeyGrave, evdev.KEY_COMMA: hid.KeyComma,
	evdev.KEY_DOT: hid.KeyPeriod, evdev.KEY_SLASH: hid.KeySlash, evdev.KEY_CAPSLOCK: hid.KeyCapsLock,

	evdev.KEY_F1: hid.KeyF1, evdev.KEY_F2: hid.KeyF2, evdev.KEY_F3: hid.KeyF3, evdev.KEY_F4: hid.KeyF4,
	evdev.KEY_F5: hid.KeyF5, evdev.KEY_F6: hid.KeyF6, evdev.KEY_F7: hid.KeyF7, evdev.KEY_F8: hid.KeyF8,
	evdev.KEY_F9: hid.KeyF9, evdev.KEY_F10: hid.KeyF10, evdev.KEY_F11: hid.KeyF11, evdev.KEY_F12: hid.KeyF12,

	evdev.KEY_SYSRQ: hid.KeyPrintScreen, evdev.KEY_SCROLLLOCK: hid.KeyScrollLock, evdev.KEY_PAUSE: hid.KeyPause,
	evdev.KEY_INSERT: hid.KeyInsert, evdev.KEY_HOME: hid.KeyHome, evdev.KEY_PAGEUP: hid.KeyPageUp,
	evdev.KEY_DELETE: hid.KeyDelete, evdev.KEY_END: hid.KeyEnd, evdev.KEY_PAGEDOWN: hid.KeyPageDown,
	evdev.KEY_RIGHT: hid.KeyRight, evdev.KEY_LEFT: hid.KeyLeft, evdev.KEY_DOWN: hid.KeyDown, evdev.KEY_UP: hid.KeyUp,

	evdev.KEY_NUMLOCK: hid.KeyNumLock, evdev.KEY_KPSLASH: hid.KeyKpSlash, evdev.KEY_KPASTERISK: hid.KeyKpAsterisk,
	evdev.KEY_KPMINUS: hid.KeyKpMinus, evdev.KEY_KPPLUS: hid.KeyKpPlus, evdev.KEY_KPENTER: hid.KeyKpEnter,
	evdev.KEY_KP1: hid.KeyKp1, evdev.KEY_KP2: hid.KeyKp2, evdev.KEY_KP3: hid.KeyKp3, evdev.KEY_KP4: hid.KeyKp4,
	evdev.KEY_KP5: hid.KeyKp5, evdev.KEY_KP6: hid.KeyKp6, evdev.KEY_KP7: hid.KeyKp7, evdev.KEY_KP8: hid.KeyKp8,
	evdev.KEY_KP9: hid.KeyKp9, evdev.KEY_KP0: hid.KeyKp0, evdev.KEY_KPDOT: hid.KeyKpDot,

	evdev.KEY_102ND: hid.KeyNonUSBackslash, evdev.KEY_COMPOSE: hid.KeyApplication,

	evdev.KEY_LEFTCTRL: hid.KeyLeftCtrl, evdev.KEY_LEFTSHIFT: hid.KeyLeftShift,
	evdev.KEY_LEFTALT: hid.KeyLeftAlt, evdev.KEY_LEFTMETA: hid.KeyLeftGUI,
	evdev.KEY_RIGHTCTRL: hid.KeyRightCtrl, evdev.KEY_RIGHTSHIFT: hid.KeyRightShift,
	evdev.KEY_RIGHTALT: hid.KeyRightAlt, evdev.KEY_RIGHTMETA: hid.KeyRightGUI,
}

var linuxButtons = map[evdev.EvCode]MouseButton{
	evdev.BTN_LEFT:   MouseLeft,
	evdev.BTN_RIGHT:  MouseRight,
	evdev.BTN_MIDDLE: MouseMiddle,
	evdev.BTN_SIDE:   MouseX1,
	evdev.BTN_EXTRA:  MouseX2,
}

var (
	hidToLinux    = map[hid.Code]int{}
	buttonToLinux = map[MouseButton]int{}
)

func init() {
	for ev, code := range linuxKeys {
		hidToLinux[code] = int(ev)
	}
	for ev, b := range linuxButtons {
		buttonToLinux[b] = int(ev)
	}
}

// FromLinuxKey converts a Linux key code to a HID code.
func FromLinuxKey(code evdev.EvCode) (hid.Code, bool) {
	c, ok := linuxKeys[code]
	return c, ok
}

// LinuxKeyCode converts a HID code to a Linux key code, for uinput emitters.
func LinuxKeyCode(code hid.Code) (int, bool) {
	c, ok := hidToLinux[code]
	return c, ok
}

// LinuxButtonCode converts a mouse button to its Linux BTN_* code.
func LinuxButtonCode(b MouseButton) (int, bool) {
	c, ok := buttonToLinux[b]
	return c, ok
}
