// Package hid identifies physical keys by their USB HID keyboard usage code.
//
// HID codes are stable across operating systems and keyboard layouts, which makes them
// the key identifier used by every settings, binding, macro and layout record.
package hid

// Code is a USB HID usage code on the Keyboard/Keypad page (0x07).
type Code uint8

// HID usage codes for keyboard keys.
const (
	KeyNone Code = 0x00

	KeyA Code = 0x04
	KeyB Code = 0x05
	KeyC Code = 0x06
	KeyD Code = 0x07
	KeyE Code = 0x08
	KeyF Code = 0x09
	KeyG Code = 0x0A
	KeyH Code = 0x0B
	KeyI Code = 0x0C
	KeyJ Code = 0x0D
	KeyK Code = 0x0E
	KeyL Code = 0x0F
	KeyM Code = 0x10
	KeyN Code = 0x11
	KeyO Code = 0x12
	KeyP Code = 0x13
	KeyQ Code = 0x14
	KeyR Code = 0x15
	KeyS Code = 0x16
	KeyT Code = 0x17
	KeyU Code = 0x18
	KeyV Code = 0x19
	KeyW Code = 0x1A
	KeyX Code = 0x1B
	KeyY Code = 0x1C
	KeyZ Code = 0x1D

	Key1 Code = 0x1E
	Key2 Code = 0x1F
	Key3 Code = 0x20
	Key4 Code = 0x21
	Key5 Code = 0x22
	Key6 Code = 0x23
	Key7 Code = 0x24
	Key8 Code = 0x25
	Key9 Code = 0x26
	Key0 Code = 0x27

	KeyEnter      Code = 0x28
	KeyEscape     Code = 0x29
	KeyBackspace  Code = 0x2A
	KeyTab        Code = 0x2B
	KeySpace      Code = 0x2C
	KeyMinus      Code = 0x2D
	KeyEqual      Code = 0x2E
	KeyLeftBrace  Code = 0x2F
	KeyRightBrace Code = 0x30
	KeyBackslash  Code = 0x31
	KeyNonUSHash  Code = 0x32
	KeySemicolon  Code = 0x33
	KeyApostrophe Code = 0x34
	KeyGrave      Code = 0x35
	KeyComma      Code = 0x36
	KeyPeriod     Code = 0x37
	KeySlash      Code = 0x38
	KeyCapsLock   Code = 0x39

	KeyF1  Code = 0x3A
	KeyF2  Code = 0x3B
	KeyF3  Code = 0x3C
	KeyF4  Code = 0x3D
	KeyF5  Code = 0x3E
	KeyF6  Code = 0x3F
	KeyF7  Code = 0x40
	KeyF8  Code = 0x41
	KeyF9  Code = 0x42
	KeyF10 Code = 0x43
	KeyF11 Code = 0x44
	KeyF12 Code = 0x45

	KeyPrintScreen Code = 0x46
	KeyScrollLock  Code = 0x47
	KeyPause       Code = 0x48
	KeyInsert      Code = 0x49
	KeyHome        Code = 0x4A
	KeyPageUp      Code = 0x4B
	KeyDelete      Code = 0x4C
	KeyEnd         Code = 0x4D
	KeyPageDown    Code = 0x4E

	KeyRight Code = 0x4F
	KeyLeft  Code = 0x50
	KeyDown  Code = 0x51
	KeyUp    Code = 0x52

	KeyNumLock    Code = 0x53
	KeyKpSlash    Code = 0x54
	KeyKpAsterisk Code = 0x55
	KeyKpMinus    Code = 0x56
	KeyKpPlus     Code = 0x57
	KeyKpEnter    Code = 0x58
	KeyKp1        Code = 0x59
	KeyKp2        Code = 0x5A
	KeyKp3        Code = 0x5B
	KeyKp4        Code = 0x5C
	KeyKp5        Code = 0x5D
	KeyKp6        Code = 0x5E
	KeyKp7        Code = 0x5F
	KeyKp8        Code = 0x60
	KeyKp9        Code = 0x61
	KeyKp0        Code = 0x62
	KeyKpDot      Code = 0x63

	KeyNonUSBackslash Code = 0x64
	KeyApplication    Code = 0x65

	KeyLeftCtrl   Code = 0xE0
	KeyLeftShift  Code = 0xE1
	KeyLeftAlt    Code = 0xE2
	KeyLeftGUI    Code = 0xE3
	KeyRightCtrl  Code = 0xE4
	KeyRightShift Code = 0xE5
	KeyRightAlt   Code = 0xE6
	KeyRightGUI   Code = 0xE7
)

// keyNames is the single source for name lookups in both directions.
var keyNames = []struct {
	code Code
	name string
}{
	{KeyA, "A"}, {KeyB, "B"}, {KeyC, "C"}, {KeyD, "D"}, {KeyE, "E"}, {KeyF, "F"},
	{KeyG, "G"}, {KeyH, "H"}, {KeyI, "I"}, {KeyJ, "J"}, {KeyK, "K"}, {KeyL, "L"},
	{KeyM, "M"}, {KeyN, "N"}, {KeyO, "O"}, {KeyP, "P"}, {KeyQ, "Q"}, {KeyR, "R"},
	{KeyS, "S"}, {KeyT, "T"}, {KeyU, "U"}, {KeyV, "V"}, {KeyW, "W"}, {KeyX, "X"},
	{KeyY, "Y"}, {KeyZ, "Z"},
	{Key1, "1"}, {Key2, "2"}, {Key3, "3"}, {Key4, "4"}, {Key5, "5"},
	{Key6, "6"}, {Key7, "7"}, {Key8, "8"}, {Key9, "9"}, {Key0, "0"},
	{KeyEnter, "Enter"}, {KeyEscape, "Escape"}, {KeyBackspace, "Backspace"},
	{KeyTab, "Tab"}, {KeySpace, "Space"}, {KeyMinus, "Minus"}, {KeyEqual, "Equal"},
	{KeyLeftBrace, "LeftBrace"}, {KeyRightBrace, "RightBrace"},
	{KeyBackslash, "Backslash"}, {KeyNonUSHash, "NonUSHash"},
	{KeySemicolon, "Semicolon"}, {KeyApostrophe, "Apostrophe"}, {KeyGrave, "Grave"},
	{KeyComma, "Comma"}, {KeyPeriod, "Period"}, {KeySlash, "Slash"},
	{KeyCapsLock, "CapsLock"},
	{KeyF1, "F1"}, {KeyF2, "F2"}, {KeyF3, "F3"}, {KeyF4, "F4"}, {KeyF5, "F5"},
	{KeyF6, "F6"}, {KeyF7, "F7"}, {KeyF8, "F8"}, {KeyF9, "F9"}, {KeyF10, "F10"},
	{KeyF11, "F11"}, {KeyF12, "F12"},
	{KeyPrintScreen, "PrintScreen"}, {KeyScrollLock, "ScrollLock"}, {KeyPause, "Pause"},
	{KeyInsert, "Insert"}, {KeyHome, "Home"}, {KeyPageUp, "PageUp"},
	{KeyDelete, "Delete"}, {KeyEnd, "End"}, {KeyPageDown, "PageDown"},
	{KeyRight, "Right"}, {KeyLeft, "Left"}, {KeyDown, "Down"}, {KeyUp, "Up"},
	{KeyNumLock, "NumLock"}, {KeyKpSlash, "Kp/"}, {KeyKpAsterisk, "Kp*"},
	{KeyKpMinus, "Kp-"}, {KeyKpPlus, "Kp+"}, {KeyKpEnter, "KpEnter"},
	{KeyKp1, "Kp1"}, {KeyKp2, "Kp2"}, {KeyKp3, "Kp3"}, {KeyKp4, "Kp4"}, {KeyKp5, "Kp5"},
	{KeyKp6, "Kp6"}, {KeyKp7, "Kp7"}, {KeyKp8, "Kp8"}, {KeyKp9, "Kp9"}, {KeyKp0, "Kp0"},
	{KeyKpDot, "Kp."},
	{KeyNonUSBackslash, "NonUSBackslash"}, {KeyApplication, "Application"},
	{KeyLeftCtrl, "LeftCtrl"}, {KeyLeftShift, "LeftShift"}, {KeyLeftAlt, "LeftAlt"},
	{KeyLeftGUI, "LeftGUI"}, {KeyRightCtrl, "RightCtrl"}, {KeyRightShift, "RightShift"},
	{KeyRightAlt, "RightAlt"}, {KeyRightGUI, "RightGUI"},
}

var (
	codeToName = map[Code]string{}
	nameToCode = map[string]Code{}
)

func init() {
	for _, k := range keyNames {
		codeToName[k.code] = k.name
		nameToCode[lower(k.name)] = k.code
	}
}

// String returns the human readable key name, or the hex code for unnamed keys.
func (c Code) String() string {
	if n, ok := codeToName[c]; ok {
		return n
	}
	return hexCode(c)
}

// IsModifier reports whether c is one of the eight modifier keys.
func (c Code) IsModifier() bool {
	return c >= KeyLeftCtrl && c <= KeyRightGUI
}
