// Package viiper is a client for a VIIPER server: it creates a virtual USB bus, plugs
// an emulated Xbox 360 controller into it and streams input reports to the device.
//
// The management protocol is request/response over short lived TCP connections:
// `<path>[ SP <payload>] \x00`, answered by one JSON line. A device stream is a long
// lived connection opened with `bus/<id>/<dev>\x00` that carries raw device reports.
// With a password every connection starts with an authentication handshake and is
// then encrypted.
package viiper

import "fmt"

// APIError is a problem+json error answer.
type APIError struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (e APIError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
	case e.Title != "":
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return "unknown api error"
}

type (
	PingResponse struct {
		Server  string `json:"server"`
		Version string `json:"version"`
	}

	BusListResponse struct {
		Buses []uint32 `json:"buses"`
	}

	BusCreateResponse struct {
		BusID uint32 `json:"busId"`
	}

	// Device is a device plugged into a bus. Vid and Pid are 0x-prefixed hex strings.
	Device struct {
		BusID uint32 `json:"busId"`
		DevID string `json:"devId"`
		Vid   string `json:"vid"`
		Pid   string `json:"pid"`
		Type  string `json:"type"`
	}

	DevicesListResponse struct {
		Devices []Device `json:"devices"`
	}

	DeviceRemoveResponse struct {
		BusID uint32 `json:"busId"`
		DevID string `json:"devId"`
	}

	// DeviceCreateRequest is the payload of bus/{id}/add. Nil ids select the device defaults.
	DeviceCreateRequest struct {
		Type      *string `json:"type"`
		VendorID  *uint16 `json:"idVendor,omitempty"`
		ProductID *uint16 `json:"idProduct,omitempty"`
	}
)

// DeviceTypeXbox360 is the device type kb2pad emulates.
const DeviceTypeXbox360 = "xbox360"
