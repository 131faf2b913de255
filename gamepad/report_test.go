package gamepad_test

import (
	"io"
	"testing"

	"github.com/Alia5/kb2pad/gamepad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReport(t *testing.T) {
	r := gamepad.Report{
		Buttons: gamepad.ButtonA | gamepad.ButtonDPadUp,
		LT:      0x10,
		RT:      0xFF,
		LX:      -32767,
		LY:      1,
		RX:      0x1234,
		RY:      0,
	}
	b := r.BuildReport()
	require.Len(t, b, gamepad.ReportSize)
	assert.Equal(t, []byte{
		0x00, 0x14,
		0x01, 0x10,
		0x10, 0xFF,
		0x01, 0x80,
		0x01, 0x00,
		0x34, 0x12,
		0x00, 0x00,
		0, 0, 0, 0, 0, 0,
	}, b)
}

func TestMarshalUnmarshal(t *testing.T) {
	in := gamepad.Report{Buttons: 0x1_0000 | gamepad.ButtonY, LT: 3, RT: 4, LX: 100, LY: -100, RX: 32767, RY: -32768}
	b, err := in.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, gamepad.ReportSize)

	var out gamepad.Report
	require.NoError(t, out.UnmarshalBinary(b))
	assert.Equal(t, in, out)

	assert.ErrorIs(t, out.UnmarshalBinary(b[:14]), io.ErrUnexpectedEOF)
}

func TestAxisFromFloat(t *testing.T) {
	type testCase struct {
		in   float64
		want int16
	}
	cases := []testCase{
		{in: 0, want: 0},
		{in: 1, want: 32767},
		{in: -1, want: -32767},
		{in: 0.5, want: 16384},
		{in: 2, want: 32767},
		{in: -7, want: -32767},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, gamepad.AxisFromFloat(tc.in), "in=%v", tc.in)
	}
}

func TestTriggerFromFloat(t *testing.T) {
	assert.Equal(t, uint8(0), gamepad.TriggerFromFloat(-1))
	assert.Equal(t, uint8(0), gamepad.TriggerFromFloat(0))
	assert.Equal(t, uint8(128), gamepad.TriggerFromFloat(0.5))
	assert.Equal(t, uint8(255), gamepad.TriggerFromFloat(1))
}

func TestTargets(t *testing.T) {
	tg, ok := gamepad.ParseTarget("lt")
	require.True(t, ok)
	assert.Equal(t, gamepad.TriggerLeft, tg)

	_, ok = gamepad.ParseTarget("Paddle1")
	assert.False(t, ok)

	m, ok := gamepad.TargetStart.Button()
	require.True(t, ok)
	assert.Equal(t, uint32(gamepad.ButtonStart), m)

	_, ok = gamepad.LeftStickUp.Button()
	assert.False(t, ok)

	for _, tg := range gamepad.Targets() {
		back, ok := gamepad.ParseTarget(tg.String())
		require.True(t, ok)
		assert.Equal(t, tg, back)
	}
}

func TestRumble(t *testing.T) {
	var r gamepad.Rumble
	require.NoError(t, r.UnmarshalBinary([]byte{0x40, 0xFF}))
	assert.Equal(t, gamepad.Rumble{LeftMotor: 0x40, RightMotor: 0xFF}, r)
	assert.ErrorIs(t, r.UnmarshalBinary([]byte{1}), io.ErrUnexpectedEOF)
}
