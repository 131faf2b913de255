package input

import (
	"context"

	"github.com/Alia5/kb2pad/hid"
)

// Handler receives events from a Source. Timestamps are milliseconds on the shared
// Clock.
type Handler interface {
	OnKeyEvent(key hid.Code, down bool, ts int64)
	OnMouseEvent(button MouseButton, down bool, ts int64)
	OnWheel(delta int, ts int64)
	OnAnalogKey(key hid.Code, value float64, ts int64)
}

// Source delivers physical input to a Handler until ctx is cancelled.
type Source interface {
	Run(ctx context.Context, h Handler) error
}
