//go:build !linux

package input

import (
	"context"
	"errors"
	"log/slog"
)

// EvdevSource is only available on Linux.
type EvdevSource struct{}

func NewEvdevSource(_ []string, _ bool, _ Clock, _ *slog.Logger) *EvdevSource {
	return &EvdevSource{}
}

func (s *EvdevSource) Run(ctx context.Context, _ Handler) error {
	return errors.New("evdev input is only supported on linux")
}

var _ Source = (*EvdevSource)(nil)
