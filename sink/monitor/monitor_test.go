package monitor_test

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/kb2pad/gamepad"
	"github.com/Alia5/kb2pad/sink/monitor"
)

type message struct {
	Type string             `json:"type"`
	Seq  uint64             `json:"seq"`
	Data monitor.ReportData `json:"data"`
}

func start(t *testing.T) (*monitor.Server, string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	s := monitor.New(nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return s, "ws://" + ln.Addr().String() + "/ws"
}

func read(t *testing.T, c *websocket.Conn) message {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := c.ReadMessage()
	require.NoError(t, err)
	var m message
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestMonitorStreamsChanges(t *testing.T) {
	s, url := start(t)
	require.NoError(t, s.Submit(gamepad.Report{LX: 100}))

	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer c.Close()

	first := read(t, c)
	assert.Equal(t, "report", first.Type)
	assert.Equal(t, int16(100), first.Data.LX)
	assert.Equal(t, uint64(1), first.Seq)

	require.Eventually(t, func() bool { return s.Clients() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, s.Submit(gamepad.Report{LX: 100}))
	require.NoError(t, s.Submit(gamepad.Report{LX: 100, Buttons: gamepad.ButtonA | gamepad.ButtonStart, RT: 255}))

	next := read(t, c)
	assert.Equal(t, uint64(2), next.Seq)
	assert.Equal(t, uint8(255), next.Data.RT)
	assert.Equal(t, []string{"A", "Start"}, next.Data.Pressed)
}

func TestMonitorCloseDisconnects(t *testing.T) {
	s, url := start(t)
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer c.Close()
	require.Eventually(t, func() bool { return s.Clients() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, s.Close())
	assert.Equal(t, 0, s.Clients())
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = c.ReadMessage()
	assert.Error(t, err)
}
