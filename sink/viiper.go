package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Alia5/kb2pad/gamepad"
	"github.com/Alia5/kb2pad/internal/viiper"
)

// ViiperOptions configures the network gamepad.
type ViiperOptions struct {
	Addr    string
	BusID   uint32
	Vendor  *uint16
	Product *uint16
	Config  *viiper.Config
	// MinBackoff and MaxBackoff bound the delay between reconnect attempts.
	MinBackoff time.Duration
	MaxBackoff time.Duration
	// OnRumble receives motor requests from the host.
	OnRumble func(gamepad.Rumble)
}

// Viiper streams reports to an emulated Xbox 360 controller on a VIIPER server.
//
// Submit only stores the report in a one slot mailbox; Run owns the connection,
// sends the latest report whenever a new one arrives and reconnects with backoff.
type Viiper struct {
	opts   ViiperOptions
	client *viiper.Client
	logger *slog.Logger

	mu      sync.Mutex
	pending gamepad.Report
	have    bool
	signal  chan struct{}

	closeOnce sync.Once
	closed    chan struct{}
}

func NewViiper(opts ViiperOptions, logger *slog.Logger) *Viiper {
	if opts.MinBackoff <= 0 {
		opts.MinBackoff = 250 * time.Millisecond
	}
	if opts.MaxBackoff < opts.MinBackoff {
		opts.MaxBackoff = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Viiper{
		opts:   opts,
		client: viiper.New(opts.Addr, opts.Config),
		logger: logger.With("sink", "viiper", "addr", opts.Addr),
		signal: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (v *Viiper) Submit(r gamepad.Report) error {
	v.mu.Lock()
	v.pending, v.have = r, true
	v.mu.Unlock()
	select {
	case v.signal <- struct{}{}:
	default:
	}
	return nil
}

func (v *Viiper) take() (gamepad.Report, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pending, v.have
}

// Close stops Run and unplugs the device.
func (v *Viiper) Close() error {
	v.closeOnce.Do(func() { close(v.closed) })
	return nil
}

// Run keeps a device connected until ctx is done or Close is called.
func (v *Viiper) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-v.closed:
			cancel()
		case <-ctx.Done():
		}
	}()

	backoff := v.opts.MinBackoff
	for {
		connected, err := v.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, viiper.ErrUnauthorized) {
			return err
		}
		if connected {
			backoff = v.opts.MinBackoff
		}
		v.logger.Warn("viiper connection lost, reconnecting", "error", err, "in", backoff)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, v.opts.MaxBackoff)
	}
}

// session runs one connection. connected is true once the stream was open.
func (v *Viiper) session(ctx context.Context) (connected bool, err error) {
	busID, err := v.bus(ctx)
	if err != nil {
		return false, err
	}
	stream, dev, err := v.client.AddDeviceAndConnect(ctx, busID, viiper.DeviceTypeXbox360, v.opts.Vendor, v.opts.Product)
	if dev != nil {
		defer v.remove(dev)
	}
	if err != nil {
		return false, fmt.Errorf("add device: %w", err)
	}
	defer stream.Close()
	v.logger.Info("virtual controller connected", "bus", dev.BusID, "device", dev.DevID)

	readErr := make(chan error, 1)
	go func() {
		readErr <- stream.ReadLoop(gamepad.RumbleSize, func(b []byte) {
			var r gamepad.Rumble
			if err := r.UnmarshalBinary(b); err != nil {
				return
			}
			v.logger.Debug("rumble", "left", r.LeftMotor, "right", r.RightMotor)
			if v.opts.OnRumble != nil {
				v.opts.OnRumble(r)
			}
		})
	}()

	if r, ok := v.take(); ok {
		if err := stream.WriteBinary(r); err != nil {
			return true, fmt.Errorf("write report: %w", err)
		}
	}
	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case err := <-readErr:
			return true, fmt.Errorf("read: %w", err)
		case <-v.signal:
			r, _ := v.take()
			if err := stream.WriteBinary(r); err != nil {
				return true, fmt.Errorf("write report: %w", err)
			}
		}
	}
}

// bus returns the configured bus, creating it when it does not exist yet.
func (v *Viiper) bus(ctx context.Context) (uint32, error) {
	if v.opts.BusID != 0 {
		list, err := v.client.BusList(ctx)
		if err != nil {
			return 0, fmt.Errorf("list buses: %w", err)
		}
		if slices.Contains(list.Buses, v.opts.BusID) {
			return v.opts.BusID, nil
		}
	}
	resp, err := v.client.BusCreate(ctx, v.opts.BusID)
	if err != nil {
		return 0, fmt.Errorf("create bus: %w", err)
	}
	return resp.BusID, nil
}

func (v *Viiper) remove(dev *viiper.Device) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := v.client.DeviceRemove(ctx, dev.BusID, dev.DevID); err != nil {
		v.logger.Debug("failed to remove device", "error", err)
	}
}
