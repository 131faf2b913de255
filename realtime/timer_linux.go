//go:build linux

package realtime

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// timerfd is a CLOCK_MONOTONIC timerfd read in blocking mode.
type timerfd struct {
	fd  int
	buf [8]byte
}

func newPlatformTimer() (Timer, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("timerfd_create: %w", err)
	}
	return &timerfd{fd: fd}, nil
}

func (t *timerfd) Arm(period time.Duration) error {
	ts := unix.NsecToTimespec(period.Nanoseconds())
	spec := unix.ItimerSpec{Interval: ts, Value: ts}
	if err := unix.TimerfdSettime(t.fd, 0, &spec, nil); err != nil {
		return fmt.Errorf("timerfd_settime: %w", err)
	}
	return nil
}

func (t *timerfd) Wait() error {
	for {
		_, err := unix.Read(t.fd, t.buf[:])
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return fmt.Errorf("timerfd read: %w", err)
		}
		return nil
	}
}

func (t *timerfd) Close() error {
	return unix.Close(t.fd)
}
