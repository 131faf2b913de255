// Package log builds the process slog.Logger and the raw report dumper.
//
// Without a log file, records below error go to stdout and errors go to stderr.
// With a log file, every record goes to stderr and to the file.
package log

import (
	"context"
	"io"
	"log/slog"
	"math"
	"os"
)

// LevelTrace sits below Debug and is used for per-tick output.
const LevelTrace slog.Level = -8

var levels = map[string]slog.Level{
	"trace": LevelTrace,
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseLevel maps a level name to a slog.Level. Unknown names map to info.
func ParseLevel(s string) slog.Level {
	if l, ok := levels[s]; ok {
		return l
	}
	return slog.LevelInfo
}

func options(level slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if l, ok := a.Value.Any().(slog.Level); ok && l <= LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
}

// fanout hands each record to every child that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f fanout) WithGroup(name string) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f fanout) each(fn func(slog.Handler) slog.Handler) fanout {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = fn(h)
	}
	return out
}

// band passes records with min <= level < max to h.
type band struct {
	min, max slog.Level
	h        slog.Handler
}

func (b band) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= b.min && level < b.max && b.h.Enabled(ctx, level)
}

func (b band) Handle(ctx context.Context, r slog.Record) error {
	if r.Level < b.min || r.Level >= b.max {
		return nil
	}
	return b.h.Handle(ctx, r)
}

func (b band) WithAttrs(attrs []slog.Attr) slog.Handler {
	return band{min: b.min, max: b.max, h: b.h.WithAttrs(attrs)}
}

func (b band) WithGroup(name string) slog.Handler {
	return band{min: b.min, max: b.max, h: b.h.WithGroup(name)}
}

// NewHandlers writes records below error to out and errors to errOut.
func NewHandlers(out, errOut io.Writer, level slog.Level) slog.Handler {
	return fanout{
		band{min: math.MinInt, max: slog.LevelError, h: slog.NewTextHandler(out, options(level))},
		band{min: slog.LevelError, max: math.MaxInt, h: slog.NewTextHandler(errOut, options(slog.LevelError))},
	}
}

// SetupLogger builds the process logger. The returned closers must be closed on exit.
func SetupLogger(logLevel, logFile string) (*slog.Logger, []io.Closer, error) {
	level := ParseLevel(logLevel)
	if logFile == "" {
		return slog.New(NewHandlers(os.Stdout, os.Stderr, level)), nil, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	h := fanout{
		slog.NewTextHandler(os.Stderr, options(level)),
		slog.NewTextHandler(f, options(level)),
	}
	return slog.New(h), []io.Closer{f}, nil
}
