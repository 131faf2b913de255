package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"trace": LevelTrace,
		"debug": slog.LevelDebug,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewHandlersSplitsByLevel(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := slog.New(NewHandlers(&out, &errOut, slog.LevelDebug))
	logger.Debug("tick")
	logger.Warn("slow")
	logger.Error("boom")

	assert.Contains(t, out.String(), "tick")
	assert.Contains(t, out.String(), "slow")
	assert.NotContains(t, out.String(), "boom")
	assert.Contains(t, errOut.String(), "boom")
	assert.NotContains(t, errOut.String(), "slow")
}

func TestRawLogger(t *testing.T) {
	var buf bytes.Buffer
	r := NewRaw(&buf)
	r.Log(true, []byte{0x00, 0x14, 0xab})
	r.Log(false, nil)
	line := buf.String()
	assert.Equal(t, 1, strings.Count(line, "\n"))
	assert.Contains(t, line, "->DEV report: 3 bytes, hex: 00 14 ab")

	NewRaw(nil).Log(true, []byte{1})
}

func TestTraceLevelName(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := slog.New(NewHandlers(&out, &errOut, LevelTrace))
	logger.Log(context.Background(), LevelTrace, "tick", "n", 1)
	assert.Contains(t, out.String(), "level=TRACE")
	assert.Empty(t, errOut.String())
}
