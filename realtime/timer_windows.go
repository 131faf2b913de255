//go:build windows

package realtime

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	createWaitableTimerHighResolution = 0x00000002
	timerAllAccess                    = 0x001F0003
)

var (
	kernel32                  = windows.NewLazySystemDLL("kernel32.dll")
	procCreateWaitableTimerEx = kernel32.NewProc("CreateWaitableTimerExW")
	procSetWaitableTimer      = kernel32.NewProc("SetWaitableTimer")
)

// waitableTimer is a periodic high resolution waitable timer.
type waitableTimer struct {
	h windows.Handle
}

func newPlatformTimer() (Timer, error) {
	if err := procCreateWaitableTimerEx.Find(); err != nil {
		return nil, err
	}
	h, _, err := procCreateWaitableTimerEx.Call(0, 0,
		createWaitableTimerHighResolution, timerAllAccess)
	if h == 0 {
		return nil, fmt.Errorf("CreateWaitableTimerExW: %w", err)
	}
	return &waitableTimer{h: windows.Handle(h)}, nil
}

func (t *waitableTimer) Arm(period time.Duration) error {
	// negative due time is relative, in 100ns units
	due := -period.Nanoseconds() / 100
	ok, _, err := procSetWaitableTimer.Call(uintptr(t.h), uintptr(unsafe.Pointer(&due)),
		uintptr(period.Milliseconds()), 0, 0, 0)
	if ok == 0 {
		return fmt.Errorf("SetWaitableTimer: %w", err)
	}
	return nil
}

func (t *waitableTimer) Wait() error {
	ev, err := windows.WaitForSingleObject(t.h, windows.INFINITE)
	if err != nil {
		return fmt.Errorf("WaitForSingleObject: %w", err)
	}
	if ev != windows.WAIT_OBJECT_0 {
		return fmt.Errorf("WaitForSingleObject: unexpected result %#x", ev)
	}
	return nil
}

func (t *waitableTimer) Close() error {
	return windows.CloseHandle(t.h)
}
