package sink_test

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/kb2pad/gamepad"
	"github.com/Alia5/kb2pad/sink"
)

// viiperServer is a minimal plaintext VIIPER server with one pre-existing bus 5.
type viiperServer struct {
	ln      net.Listener
	mu      sync.Mutex
	lines   []string
	reports chan gamepad.Report
	streams chan net.Conn
}

func startViiper(t *testing.T) *viiperServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := &viiperServer{ln: ln, reports: make(chan gamepad.Report, 64), streams: make(chan net.Conn, 4)}
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			go s.handle(c)
		}
	}()
	return s
}

func (s *viiperServer) handle(c net.Conn) {
	defer c.Close()
	r := bufio.NewReader(c)
	line, err := r.ReadString(0)
	if err != nil {
		return
	}
	line = strings.TrimSuffix(line, "\x00")
	s.mu.Lock()
	s.lines = append(s.lines, line)
	s.mu.Unlock()

	var resp string
	switch {
	case line == "bus/list":
		resp = `{"buses":[5]}`
	case strings.HasPrefix(line, "bus/create"):
		resp = `{"busId":9}`
	case strings.HasPrefix(line, "bus/5/add ") || strings.HasPrefix(line, "bus/9/add "):
		bus := strings.Split(line, "/")[1]
		resp = `{"busId":` + bus + `,"devId":"1","vid":"0x045e","pid":"0x028e","type":"xbox360"}`
	case strings.Contains(line, "/remove "):
		bus := strings.Split(line, "/")[1]
		resp = `{"busId":` + bus + `,"devId":"1"}`
	case line == "bus/5/1" || line == "bus/9/1":
		s.streams <- c
		_, _ = c.Write([]byte{0x10, 0x20})
		buf := make([]byte, gamepad.ReportSize)
		for {
			if _, err := io.ReadFull(r, buf); err != nil {
				return
			}
			var rep gamepad.Report
			_ = rep.UnmarshalBinary(buf)
			s.reports <- rep
		}
	default:
		resp = `{"status":404,"title":"Not Found","detail":"` + line + `"}`
	}
	_, _ = c.Write([]byte(resp + "\n"))
}

func (s *viiperServer) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

func waitReport(t *testing.T, s *viiperServer, want gamepad.Report) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case got := <-s.reports:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("report %+v never arrived", want)
		}
	}
}

func TestViiperStreamsLatestReport(t *testing.T) {
	srv := startViiper(t)
	rumble := make(chan gamepad.Rumble, 1)
	v := sink.NewViiper(sink.ViiperOptions{
		Addr:     srv.ln.Addr().String(),
		BusID:    5,
		OnRumble: func(r gamepad.Rumble) { rumble <- r },
	}, nil)

	require.NoError(t, v.Submit(gamepad.Report{LX: 1}))
	require.NoError(t, v.Submit(gamepad.Report{LX: 2}))

	done := make(chan error, 1)
	go func() { done <- v.Run(context.Background()) }()

	waitReport(t, srv, gamepad.Report{LX: 2})
	require.NoError(t, v.Submit(gamepad.Report{Buttons: gamepad.ButtonB}))
	waitReport(t, srv, gamepad.Report{Buttons: gamepad.ButtonB})

	select {
	case r := <-rumble:
		assert.Equal(t, gamepad.Rumble{LeftMotor: 0x10, RightMotor: 0x20}, r)
	case <-time.After(2 * time.Second):
		t.Fatal("no rumble")
	}

	require.NoError(t, v.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after Close")
	}

	lines := srv.seen()
	assert.Equal(t, "bus/list", lines[0])
	assert.Equal(t, `bus/5/add {"type":"xbox360"}`, lines[1])
	assert.NotContains(t, lines, "bus/create 5")
	require.Eventually(t, func() bool {
		for _, l := range srv.seen() {
			if l == "bus/5/remove 1" {
				return true
			}
		}
		return false
	}, 3*time.Second, 10*time.Millisecond)
}

func TestViiperCreatesMissingBusAndReconnects(t *testing.T) {
	srv := startViiper(t)
	v := sink.NewViiper(sink.ViiperOptions{
		Addr:       srv.ln.Addr().String(),
		BusID:      9,
		MinBackoff: 10 * time.Millisecond,
		MaxBackoff: 20 * time.Millisecond,
	}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- v.Run(ctx) }()

	var first net.Conn
	select {
	case first = <-srv.streams:
	case <-time.After(3 * time.Second):
		t.Fatal("no stream")
	}
	assert.Contains(t, srv.seen(), "bus/create 9")

	// dropping the stream forces a new session
	_ = first.Close()
	select {
	case <-srv.streams:
	case <-time.After(3 * time.Second):
		t.Fatal("no reconnect")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
