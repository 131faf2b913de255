package viiper

import (
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	frameHeader  = 4
	maxFrameSize = 2 << 20
)

var errFrameSize = errors.New("encrypted frame size out of range")

// secureConn seals every Write into one frame: len[4] | nonce[12] | ciphertext.
// The nonce carries a per-connection send counter in its low 8 bytes.
type secureConn struct {
	net.Conn
	aead cipher.AEAD

	wmu  sync.Mutex
	sent uint64

	rmu     sync.Mutex
	pending []byte
}

// WrapConn encrypts conn with ChaCha20-Poly1305 under sessionKey.
func WrapConn(conn net.Conn, sessionKey []byte) (net.Conn, error) {
	aead, err := chacha20poly1305.New(sessionKey)
	if err != nil {
		return nil, err
	}
	return &secureConn{Conn: conn, aead: aead}, nil
}

func (c *secureConn) seal(p []byte) []byte {
	frame := make([]byte, frameHeader+chacha20poly1305.NonceSize, frameHeader+chacha20poly1305.NonceSize+len(p)+c.aead.Overhead())
	nonce := frame[frameHeader:]
	binary.BigEndian.PutUint64(nonce[4:], c.sent)
	c.sent++
	frame = c.aead.Seal(frame, nonce, p, nil)
	binary.BigEndian.PutUint32(frame, uint32(len(frame)-frameHeader))
	return frame
}

func (c *secureConn) Write(p []byte) (int, error) {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if _, err := c.Conn.Write(c.seal(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// open reads and decrypts the next frame.
func (c *secureConn) open() ([]byte, error) {
	var hdr [frameHeader]byte
	if _, err := io.ReadFull(c.Conn, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n < chacha20poly1305.NonceSize || n > maxFrameSize {
		return nil, errFrameSize
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(c.Conn, body); err != nil {
		return nil, err
	}
	return c.aead.Open(nil, body[:chacha20poly1305.NonceSize], body[chacha20poly1305.NonceSize:], nil)
}

func (c *secureConn) Read(p []byte) (int, error) {
	c.rmu.Lock()
	defer c.rmu.Unlock()
	for len(c.pending) == 0 {
		pt, err := c.open()
		if err != nil {
			return 0, err
		}
		c.pending = pt
	}
	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}
