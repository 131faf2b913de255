package log

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// RawLogger dumps raw report bytes.
type RawLogger interface {
	// Log writes one line for data. out is true for reports sent to a device and
	// false for bytes read back from one.
	Log(out bool, data []byte)
}

type rawLogger struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewRaw returns a RawLogger writing to w. A nil w discards everything.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w, now: time.Now}
}

func (r *rawLogger) Log(out bool, data []byte) {
	if r.w == nil || len(data) == 0 {
		return
	}
	dir := "DEV<-"
	if out {
		dir = "->DEV"
	}
	ts := r.now().Format("2006/01/02 15:04:05.000")

	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.w, "%s %s report: %d bytes, hex: % x\n", ts, dir, len(data), data)
}
