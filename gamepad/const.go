package gamepad

// Button masks of Report.Buttons, laid out like XInput's wButtons. Bit 11 is unused.
const (
	ButtonDPadUp    = 1 << 0
	ButtonDPadDown  = 1 << 1
	ButtonDPadLeft  = 1 << 2
	ButtonDPadRight = 1 << 3
	ButtonStart     = 1 << 4
	ButtonBack      = 1 << 5
	ButtonLThumb    = 1 << 6
	ButtonRThumb    = 1 << 7
	ButtonLShoulder = 1 << 8
	ButtonRShoulder = 1 << 9
	ButtonGuide     = 1 << 10
	ButtonA         = 1 << 12
	ButtonB         = 1 << 13
	ButtonX         = 1 << 14
	ButtonY         = 1 << 15
)
