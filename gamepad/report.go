// Package gamepad holds the XInput-style controller report produced every tick.
package gamepad

import (
	"encoding/binary"
	"io"
	"math"
)

// ReportSize is the length of both the wired report and the stream wire format.
const ReportSize = 20

// Report is the complete controller state submitted once per tick.
// Values follow XInput's C API.
type Report struct {
	// Button bitfield, lower 16 bits used
	Buttons uint32
	// Triggers: 0-255
	LT, RT uint8
	// Sticks: signed 16-bit, Y up is positive
	LX, LY int16
	RX, RY int16
}

// Pressed reports whether every bit in mask is set.
func (r Report) Pressed(mask uint32) bool {
	return r.Buttons&mask == mask
}

// BuildReport encodes r into the 20-byte Xbox 360 wired USB input report.
// Layout (indices in the returned slice):
//
//	 0: 0x00              - Report ID
//	 1: 0x14              - Payload size (20 bytes)
//	 2: Buttons (low byte)
//	 3: Buttons (high byte)
//	 4: LT (0-255)
//	 5: RT (0-255)
//	 6-7: LX (little-endian int16)
//	 8-9: LY (little-endian int16)
//	10-11: RX (little-endian int16)
//	12-13: RY (little-endian int16)
//	14-19: Reserved / zero
func (r Report) BuildReport() []byte {
	b := make([]byte, ReportSize)
	b[0] = 0x00
	b[1] = 0x14
	binary.LittleEndian.PutUint16(b[2:4], uint16(r.Buttons&0xffff))
	b[4] = r.LT
	b[5] = r.RT
	putSticks(b, r)
	return b
}

// MarshalBinary encodes r into the 20-byte stream format: a full 32-bit button word
// followed by triggers, sticks and six reserved zero bytes.
func (r Report) MarshalBinary() ([]byte, error) {
	b := make([]byte, ReportSize)
	binary.LittleEndian.PutUint32(b[0:4], r.Buttons)
	b[4] = r.LT
	b[5] = r.RT
	putSticks(b, r)
	return b, nil
}

// UnmarshalBinary decodes the 20-byte stream format.
func (r *Report) UnmarshalBinary(data []byte) error {
	if len(data) < ReportSize {
		return io.ErrUnexpectedEOF
	}
	r.Buttons = binary.LittleEndian.Uint32(data[0:4])
	r.LT = data[4]
	r.RT = data[5]
	r.LX = int16(binary.LittleEndian.Uint16(data[6:8]))
	r.LY = int16(binary.LittleEndian.Uint16(data[8:10]))
	r.RX = int16(binary.LittleEndian.Uint16(data[10:12]))
	r.RY = int16(binary.LittleEndian.Uint16(data[12:14]))
	return nil
}

func putSticks(b []byte, r Report) {
	binary.LittleEndian.PutUint16(b[6:8], uint16(r.LX))
	binary.LittleEndian.PutUint16(b[8:10], uint16(r.LY))
	binary.LittleEndian.PutUint16(b[10:12], uint16(r.RX))
	binary.LittleEndian.PutUint16(b[12:14], uint16(r.RY))
}

// AxisFromFloat converts a signed axis value in [-1,1] to int16, rounding to nearest.
// -1 maps to -32767 so the axis stays symmetric.
func AxisFromFloat(v float64) int16 {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Max(-1, math.Min(1, v))
	return int16(math.Round(v * math.MaxInt16))
}

// TriggerFromFloat converts a trigger value in [0,1] to 0-255.
func TriggerFromFloat(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return math.MaxUint8
	}
	return uint8(math.Round(v * math.MaxUint8))
}

// AxisToFloat converts an int16 axis back to [-1,1].
func AxisToFloat(v int16) float64 {
	return math.Max(-1, float64(v)/math.MaxInt16)
}

// RumbleSize is the length of a rumble message sent back by the device.
const RumbleSize = 2

// Rumble is the motor state the host requests from the controller.
type Rumble struct {
	LeftMotor  uint8
	RightMotor uint8
}

// UnmarshalBinary decodes the 2-byte rumble message.
func (r *Rumble) UnmarshalBinary(data []byte) error {
	if len(data) < RumbleSize {
		return io.ErrUnexpectedEOF
	}
	r.LeftMotor = data[0]
	r.RightMotor = data[1]
	return nil
}
