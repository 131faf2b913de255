//go:build !linux

package sink

import (
	"errors"

	"github.com/Alia5/kb2pad/gamepad"
	"github.com/Alia5/kb2pad/hid"
	"github.com/Alia5/kb2pad/input"
)

var errNoUinput = errors.New("uinput is only available on linux")

type Uinput struct{}

func NewUinput(string) (*Uinput, error) { return nil, errNoUinput }

func (*Uinput) Submit(gamepad.Report) error { return errNoUinput }
func (*Uinput) Close() error                { return nil }

type UinputEmitter struct{}

func NewUinputEmitter(string) (*UinputEmitter, error) { return nil, errNoUinput }

func (*UinputEmitter) EmitKey(hid.Code, bool, int64) error            { return errNoUinput }
func (*UinputEmitter) EmitMouse(input.MouseButton, bool, int64) error { return errNoUinput }
func (*UinputEmitter) EmitWheel(int, int64) error                     { return errNoUinput }
func (*UinputEmitter) Close() error                                   { return nil }
