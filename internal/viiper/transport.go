package viiper

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Config holds connection timeouts and the optional API password.
type Config struct {
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Password     string
}

func defaultConfig() Config {
	return Config{
		DialTimeout:  3 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// Doer performs one management request and returns the response line.
//
// path may contain {name} placeholders filled from params. payload is appended
// after a space: []byte and string verbatim, anything else as JSON, nil not at all.
type Doer interface {
	Do(ctx context.Context, path string, payload any, params map[string]string) (string, error)
}

// MockTransport answers requests from a function without any networking.
type MockTransport func(path string, payload any, params map[string]string) (string, error)

// NewMockTransport returns responder as a Doer.
func NewMockTransport(responder func(path string, payload any, params map[string]string) (string, error)) MockTransport {
	return MockTransport(responder)
}

func (m MockTransport) Do(_ context.Context, path string, payload any, params map[string]string) (string, error) {
	return m(path, payload, params)
}

// Transport speaks the TCP API: one request `path[ payload]\x00` per connection,
// answered by a single JSON line.
type Transport struct {
	addr string
	cfg  Config

	keyOnce sync.Once
	key     []byte
	keyErr  error
}

// NewTransport returns a TCP transport for addr. A nil cfg selects the default timeouts.
func NewTransport(addr string, cfg *Config) *Transport {
	t := &Transport{addr: addr, cfg: defaultConfig()}
	if cfg != nil {
		t.cfg = *cfg
	}
	return t
}

// passwordKey stretches the password once per transport.
func (t *Transport) passwordKey() ([]byte, error) {
	t.keyOnce.Do(func() { t.key, t.keyErr = DeriveKey(t.cfg.Password) })
	return t.key, t.keyErr
}

// dial connects and, with a password configured, authenticates and encrypts the connection.
func (t *Transport) dial(ctx context.Context) (net.Conn, error) {
	d := net.Dialer{Timeout: t.cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", t.addr, err)
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
	}
	if t.cfg.Password == "" {
		return conn, nil
	}

	secure, err := t.authenticate(conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return secure, nil
}

func (t *Transport) authenticate(conn net.Conn) (net.Conn, error) {
	key, err := t.passwordKey()
	if err != nil {
		return nil, err
	}
	if t.cfg.WriteTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(t.cfg.WriteTimeout))
	}
	clientNonce, serverNonce, err := ClientHandshake(bufio.NewReader(conn), conn, key)
	if err != nil {
		return nil, err
	}
	_ = conn.SetDeadline(time.Time{})
	return WrapConn(conn, DeriveSessionKey(key, serverNonce, clientNonce))
}

func (t *Transport) Do(ctx context.Context, path string, payload any, params map[string]string) (string, error) {
	req, err := encodeRequest(path, payload, params)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	conn, err := t.dial(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if t.cfg.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(t.cfg.WriteTimeout))
	}
	if _, err := conn.Write(req); err != nil {
		return "", fmt.Errorf("write request: %w", err)
	}
	if t.cfg.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(t.cfg.ReadTimeout))
	}
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read response: %w", err)
	}
	return strings.TrimSuffix(line, "\n"), nil
}

// encodeRequest renders the NUL terminated request line.
func encodeRequest(path string, payload any, params map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	for k, v := range params {
		path = strings.ReplaceAll(path, "{"+k+"}", url.PathEscape(v))
	}
	buf.WriteString(strings.ToLower(path))

	var body []byte
	switch p := payload.(type) {
	case nil:
	case []byte:
		body = p
	case string:
		body = []byte(p)
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		body = b
	}
	if len(body) > 0 {
		buf.WriteByte(' ')
		buf.Write(body)
	}
	buf.WriteByte(0)
	return buf.Bytes(), nil
}
