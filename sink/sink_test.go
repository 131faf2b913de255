package sink_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/kb2pad/gamepad"
	"github.com/Alia5/kb2pad/internal/log"
	"github.com/Alia5/kb2pad/sink"
)

type recordSink struct {
	got    []gamepad.Report
	err    error
	closed bool
}

func (r *recordSink) Submit(rep gamepad.Report) error {
	r.got = append(r.got, rep)
	return r.err
}

func (r *recordSink) Close() error {
	r.closed = true
	return r.err
}

func TestMultiJoinsErrors(t *testing.T) {
	errA := errors.New("a failed")
	a := &recordSink{err: errA}
	b := &recordSink{}
	m := sink.Multi{a, b}

	err := m.Submit(gamepad.Report{LT: 1})
	assert.ErrorIs(t, err, errA)
	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1, "a failing sink must not starve the next one")

	assert.ErrorIs(t, m.Close(), errA)
	assert.True(t, b.closed)
}

func TestChangedFiltersRepeats(t *testing.T) {
	rec := &recordSink{}
	c := sink.NewChanged(rec)
	for _, r := range []gamepad.Report{{}, {}, {LX: 5}, {LX: 5}, {}} {
		require.NoError(t, c.Submit(r))
	}
	assert.Equal(t, []gamepad.Report{{}, {LX: 5}, {}}, rec.got)
	require.NoError(t, c.Close())
	assert.True(t, rec.closed)
}

func TestLogSinkWritesWiredReport(t *testing.T) {
	var buf bytes.Buffer
	s := sink.NewLog(log.NewRaw(&buf))
	require.NoError(t, s.Submit(gamepad.Report{Buttons: gamepad.ButtonA, LT: 0xff}))

	line := buf.String()
	assert.True(t, strings.HasSuffix(line, "\n"))
	assert.Contains(t, line, "->DEV report: 20 bytes, hex: 00 14 00 10 ff 00")
}

func TestDiscard(t *testing.T) {
	var s sink.Sink = sink.Discard{}
	assert.NoError(t, s.Submit(gamepad.Report{}))
	assert.NoError(t, s.Close())
}
