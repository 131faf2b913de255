package gamepad

import "strings"

// Target is a bindable gamepad output: a stick direction, a trigger or a button.
type Target uint8

const (
	LeftStickUp Target = iota
	LeftStickDown
	LeftStickLeft
	LeftStickRight
	RightStickUp
	RightStickDown
	RightStickLeft
	RightStickRight
	TriggerLeft
	TriggerRight
	TargetA
	TargetB
	TargetX
	TargetY
	TargetLShoulder
	TargetRShoulder
	TargetBack
	TargetStart
	TargetGuide
	TargetLThumb
	TargetRThumb
	TargetDPadUp
	TargetDPadDown
	TargetDPadLeft
	TargetDPadRight

	TargetCount
)

var targetNames = [TargetCount]string{
	"LeftStickUp", "LeftStickDown", "LeftStickLeft", "LeftStickRight",
	"RightStickUp", "RightStickDown", "RightStickLeft", "RightStickRight",
	"LT", "RT",
	"A", "B", "X", "Y", "LB", "RB", "Back", "Start", "Guide", "LS", "RS",
	"DPadUp", "DPadDown", "DPadLeft", "DPadRight",
}

var targetButtons = map[Target]uint32{
	TargetA:         ButtonA,
	TargetB:         ButtonB,
	TargetX:         ButtonX,
	TargetY:         ButtonY,
	TargetLShoulder: ButtonLShoulder,
	TargetRShoulder: ButtonRShoulder,
	TargetBack:      ButtonBack,
	TargetStart:     ButtonStart,
	TargetGuide:     ButtonGuide,
	TargetLThumb:    ButtonLThumb,
	TargetRThumb:    ButtonRThumb,
	TargetDPadUp:    ButtonDPadUp,
	TargetDPadDown:  ButtonDPadDown,
	TargetDPadLeft:  ButtonDPadLeft,
	TargetDPadRight: ButtonDPadRight,
}

func (t Target) String() string {
	if t < TargetCount {
		return targetNames[t]
	}
	return "unknown"
}

// Button returns the button mask for button targets.
func (t Target) Button() (uint32, bool) {
	m, ok := targetButtons[t]
	return m, ok
}

// ParseTarget resolves a target by name, case-insensitively.
func ParseTarget(s string) (Target, bool) {
	for i, n := range targetNames {
		if strings.EqualFold(n, s) {
			return Target(i), true
		}
	}
	return 0, false
}

// Targets lists every target in declaration order.
func Targets() []Target {
	out := make([]Target, TargetCount)
	for i := range out {
		out[i] = Target(i)
	}
	return out
}
