package input

import "strings"

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseRight
	MouseMiddle
	MouseX1
	MouseX2

	mouseButtonCount
)

var mouseNames = [mouseButtonCount]string{"none", "left", "right", "middle", "x1", "x2"}

func (b MouseButton) String() string {
	if b < mouseButtonCount {
		return mouseNames[b]
	}
	return "unknown"
}

// Valid reports whether b names a real button.
func (b MouseButton) Valid() bool {
	return b > MouseNone && b < mouseButtonCount
}

// ParseMouseButton resolves a button by name.
func ParseMouseButton(s string) (MouseButton, bool) {
	for i, n := range mouseNames {
		if i > 0 && strings.EqualFold(n, s) {
			return MouseButton(i), true
		}
	}
	return MouseNone, false
}
