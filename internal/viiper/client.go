package viiper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Client issues typed API requests. Device streams need a TCP Transport.
type Client struct {
	doer Doer
	tcp  *Transport
}

// New returns a client for the server at addr (host:port).
func New(addr string, cfg *Config) *Client { return WithTransport(NewTransport(addr, cfg)) }

// WithTransport returns a client sending requests through d.
func WithTransport(d Doer) *Client {
	c := &Client{doer: d}
	if t, ok := d.(*Transport); ok {
		c.tcp = t
	}
	return c
}

func busParams(busID uint32) map[string]string {
	return map[string]string{"id": strconv.FormatUint(uint64(busID), 10)}
}

// Ping returns the version and identity of the VIIPER server.
func (c *Client) Ping(ctx context.Context) (*PingResponse, error) {
	raw, err := c.doer.Do(ctx, "ping", nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[PingResponse](raw)
}

// BusList retrieves the ids of all active virtual buses.
func (c *Client) BusList(ctx context.Context) (*BusListResponse, error) {
	raw, err := c.doer.Do(ctx, "bus/list", nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[BusListResponse](raw)
}

// BusCreate creates a virtual bus. Bus id 0 lets the server pick one.
func (c *Client) BusCreate(ctx context.Context, busID uint32) (*BusCreateResponse, error) {
	var payload any
	if busID != 0 {
		payload = strconv.FormatUint(uint64(busID), 10)
	}
	raw, err := c.doer.Do(ctx, "bus/create", payload, nil)
	if err != nil {
		return nil, err
	}
	return parse[BusCreateResponse](raw)
}

// DeviceAdd plugs a device of devType into the bus. vid and pid may be nil for the
// device defaults.
func (c *Client) DeviceAdd(ctx context.Context, busID uint32, devType string, vid, pid *uint16) (*Device, error) {
	req := DeviceCreateRequest{Type: &devType, VendorID: vid, ProductID: pid}
	raw, err := c.doer.Do(ctx, "bus/{id}/add", req, busParams(busID))
	if err != nil {
		return nil, err
	}
	return parse[Device](raw)
}

// DeviceRemove unplugs a device from the bus.
func (c *Client) DeviceRemove(ctx context.Context, busID uint32, devID string) (*DeviceRemoveResponse, error) {
	raw, err := c.doer.Do(ctx, "bus/{id}/remove", devID, busParams(busID))
	if err != nil {
		return nil, err
	}
	return parse[DeviceRemoveResponse](raw)
}

// DevicesList retrieves all devices attached to the bus.
func (c *Client) DevicesList(ctx context.Context, busID uint32) (*DevicesListResponse, error) {
	raw, err := c.doer.Do(ctx, "bus/{id}/list", nil, busParams(busID))
	if err != nil {
		return nil, err
	}
	return parse[DevicesListResponse](raw)
}

func parse[T any](data string) (*T, error) {
	if data == "" {
		return nil, errors.New("empty response")
	}
	var problem APIError
	if err := json.Unmarshal([]byte(data), &problem); err == nil && (problem.Status != 0 || problem.Title != "") {
		return nil, &problem
	}
	var out T
	dec := json.NewDecoder(strings.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}
