// Package monitor serves the submitted gamepad reports over a WebSocket so a browser
// or script can watch the virtual controller live.
//
// Messages are JSON text frames: {"type":"report","seq":N,"data":{...}}. A client
// receives the current report right after connecting and then one message per change.
package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Alia5/kb2pad/gamepad"
)

const (
	sendBuf    = 32
	writeWait  = 2 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// ReportData is the JSON form of a report.
type ReportData struct {
	Buttons uint32   `json:"buttons"`
	Pressed []string `json:"pressed"`
	LT      uint8    `json:"lt"`
	RT      uint8    `json:"rt"`
	LX      int16    `json:"lx"`
	LY      int16    `json:"ly"`
	RX      int16    `json:"rx"`
	RY      int16    `json:"ry"`
}

type envelope struct {
	Type string     `json:"type"`
	Seq  uint64     `json:"seq"`
	Data ReportData `json:"data"`
}

func toData(r gamepad.Report) ReportData {
	d := ReportData{Buttons: r.Buttons, Pressed: []string{}, LT: r.LT, RT: r.RT, LX: r.LX, LY: r.LY, RX: r.RX, RY: r.RY}
	for _, t := range gamepad.Targets() {
		if mask, ok := t.Button(); ok && r.Pressed(mask) {
			d.Pressed = append(d.Pressed, t.String())
		}
	}
	return d
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // local tool
	},
}

type client struct {
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string
	closeOnce  sync.Once
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
		_ = c.conn.Close()
	})
}

// Server is a report sink and an http.Handler at the same time.
type Server struct {
	logger *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	last    gamepad.Report
	have    bool
	seq     uint64
	frame   []byte
}

func New(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{logger: logger.With("component", "monitor"), clients: map[*client]struct{}{}}
}

// Submit broadcasts r when it differs from the previous report. Slow clients are
// disconnected instead of blocking the caller.
func (s *Server) Submit(r gamepad.Report) error {
	s.mu.Lock()
	if s.have && r == s.last {
		s.mu.Unlock()
		return nil
	}
	s.seq++
	frame, err := json.Marshal(envelope{Type: "report", Seq: s.seq, Data: toData(r)})
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("marshal report: %w", err)
	}
	s.last, s.have, s.frame = r, true, frame

	var slow []*client
	for c := range s.clients {
		select {
		case c.send <- frame:
		default:
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		delete(s.clients, c)
	}
	s.mu.Unlock()

	for _, c := range slow {
		s.logger.Info("ws client disconnected", "remote_addr", c.remoteAddr, "reason", "slow_client")
		c.close()
	}
	return nil
}

// Close disconnects every client.
func (s *Server) Close() error {
	s.mu.Lock()
	clients := s.clients
	s.clients = map[*client]struct{}{}
	s.mu.Unlock()
	for c := range clients {
		c.close()
	}
	return nil
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuf), remoteAddr: r.RemoteAddr}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	if s.frame != nil {
		c.send <- s.frame
	}
	n := len(s.clients)
	s.mu.Unlock()
	s.logger.Info("ws client registered", "remote_addr", c.remoteAddr, "clients", n)

	go s.writePump(c)
	go s.readPump(c)
}

func (s *Server) remove(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()
	if ok {
		c.close()
		s.logger.Info("ws client disconnected", "remote_addr", c.remoteAddr, "reason", "closed")
	}
}

func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.remove(c)
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client messages; it exists to notice disconnects and pongs.
func (s *Server) readPump(c *client) {
	defer s.remove(c)
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// ListenAndServe serves the monitor on addr at "/" and "/ws" until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("monitor listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", s)
	mux.Handle("/", s)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = s.Close()
	}()

	s.logger.Info("monitor listening", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
