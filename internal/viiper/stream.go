package viiper

import (
	"context"
	"encoding"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

// ErrStreamClosed is returned by writes on a closed stream.
var ErrStreamClosed = errors.New("stream closed")

// DeviceStream is the long lived connection to one device.
type DeviceStream struct {
	conn  net.Conn
	BusID uint32
	DevID string

	writeTimeout time.Duration

	mu     sync.Mutex
	closed bool
}

// OpenStream connects to the stream channel of a device already on the bus.
func (c *Client) OpenStream(ctx context.Context, busID uint32, devID string) (*DeviceStream, error) {
	if c.tcp == nil {
		return nil, errors.New("device streams need a TCP transport")
	}
	conn, err := c.tcp.dial(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Write([]byte(fmt.Sprintf("bus/%d/%s\x00", busID, devID))); err != nil {
		conn.Close()
		return nil, fmt.Errorf("write stream path: %w", err)
	}
	return &DeviceStream{conn: conn, BusID: busID, DevID: devID, writeTimeout: c.tcp.cfg.WriteTimeout}, nil
}

// AddDeviceAndConnect creates a device on the bus and connects to its stream.
func (c *Client) AddDeviceAndConnect(ctx context.Context, busID uint32, devType string, vid, pid *uint16) (*DeviceStream, *Device, error) {
	dev, err := c.DeviceAdd(ctx, busID, devType, vid, pid)
	if err != nil {
		return nil, nil, err
	}
	s, err := c.OpenStream(ctx, dev.BusID, dev.DevID)
	if err != nil {
		return nil, dev, err
	}
	return s, dev, nil
}

// WriteBinary marshals v and sends it as one device report.
func (s *DeviceStream) WriteBinary(v encoding.BinaryMarshaler) error {
	data, err := v.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStreamClosed
	}
	if s.writeTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	_, err = s.conn.Write(data)
	return err
}

// ReadLoop reads fixed size device feedback messages (such as rumble) and hands each
// one to fn until the stream fails or is closed.
func (s *DeviceStream) ReadLoop(size int, fn func([]byte)) error {
	buf := make([]byte, size)
	for {
		if _, err := io.ReadFull(s.conn, buf); err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return ErrStreamClosed
			}
			return err
		}
		fn(buf)
	}
}

// Close closes the stream connection.
func (s *DeviceStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}
