//go:build !linux && !windows

package realtime

import "errors"

func newPlatformTimer() (Timer, error) {
	return nil, errors.New("no high resolution timer on this platform")
}
