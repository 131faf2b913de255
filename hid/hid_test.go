package hid_test

import (
	"testing"

	"github.com/Alia5/kb2pad/hid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCode(t *testing.T) {
	type testCase struct {
		name    string
		in      string
		want    hid.Code
		wantErr bool
	}
	cases := []testCase{
		{name: "hex", in: "0x1A", want: hid.KeyW},
		{name: "hex upper prefix", in: "0X04", want: hid.KeyA},
		{name: "decimal", in: "26", want: hid.KeyW},
		{name: "name", in: "leftshift", want: hid.KeyLeftShift},
		{name: "digit key with prefix", in: "Key1", want: hid.Key1},
		{name: "letter with prefix", in: "KeyD", want: hid.KeyD},
		{name: "padded", in: "  0x50 ", want: hid.KeyLeft},
		{name: "out of range", in: "300", wantErr: true},
		{name: "garbage", in: "0xZZ", wantErr: true},
		{name: "unknown name", in: "Hyper", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := hid.ParseCode(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseCodeList(t *testing.T) {
	codes, err := hid.ParseCodeList("0x1A, 4;0x07,,")
	require.NoError(t, err)
	assert.Equal(t, []hid.Code{hid.KeyW, hid.KeyA, hid.KeyD}, codes)

	codes, err = hid.ParseCodeList("0x1A,bogus,0x16")
	assert.Error(t, err)
	assert.Equal(t, []hid.Code{hid.KeyW, hid.KeyS}, codes)
}

func TestFormatCodeListRoundTrip(t *testing.T) {
	in := []hid.Code{hid.KeyW, hid.KeyLeftShift, hid.KeySpace}
	s := hid.FormatCodeList(in)
	assert.Equal(t, "0x1A,0xE1,0x2C", s)
	out, err := hid.ParseCodeList(s)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestTypeString(t *testing.T) {
	strokes := hid.TypeString("Hi!é")
	assert.Equal(t, []hid.Stroke{
		{Code: hid.KeyH, Shift: true},
		{Code: hid.KeyI},
		{Code: hid.Key1, Shift: true},
	}, strokes)
}

func TestCodeString(t *testing.T) {
	assert.Equal(t, "W", hid.KeyW.String())
	assert.Equal(t, "0x90", hid.Code(0x90).String())
	assert.True(t, hid.KeyRightAlt.IsModifier())
	assert.False(t, hid.KeyA.IsModifier())
}
