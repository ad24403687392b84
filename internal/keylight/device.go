package keylight

import (
	"context"
	"fmt"
	"net"

	"github.com/keylightctl/keylightctl/internal/discovery"
)

// Device is a runtime handle for one discovered accessory: its address plus
// the most recently fetched state. A Device is owned by the caller that
// discovered it; nothing in this package shares or finalizes it.
type Device struct {
	// Name is the advertised friendly name (e.g. "Elgato Key Light 8D7C"),
	// or the bare address for manually configured devices
	Name string

	// IP is the accessory's address as a string
	IP string

	// Port is the control endpoint port
	Port int

	// ID is the accessory's device id from TXT metadata, when known
	ID string

	// Model is the accessory's model string from TXT metadata, when known
	Model string

	// State is the last fetched device state; nil until Refresh succeeds.
	// It is a snapshot, not a live view: the package never caches state
	// across client calls.
	State *DeviceState

	client *Client
}

// NewDevice creates a handle for a manually addressed accessory
func NewDevice(ip string, port int) *Device {
	return &Device{
		Name:   net.JoinHostPort(ip, fmt.Sprint(port)),
		IP:     ip,
		Port:   port,
		client: NewClient(ip, port),
	}
}

// DeviceFromRecord creates a handle from a resolved discovery record
func DeviceFromRecord(record *discovery.ServiceRecord) *Device {
	meta := record.TXT()

	return &Device{
		Name:   record.Name,
		IP:     record.Addr.String(),
		Port:   int(record.Port),
		ID:     meta["id"],
		Model:  meta["md"],
		client: NewClient(record.Addr.String(), int(record.Port)),
	}
}

// Client returns the HTTP client for this accessory
func (d *Device) Client() *Client {
	if d.client == nil {
		d.client = NewClient(d.IP, d.Port)
	}
	return d.client
}

// Refresh fetches the accessory's current state into d.State
func (d *Device) Refresh(ctx context.Context) error {
	state, err := d.Client().GetState(ctx)
	if err != nil {
		return err
	}
	d.State = &state
	return nil
}

// String returns a human-readable representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("%s at %s", d.Name, net.JoinHostPort(d.IP, fmt.Sprint(d.Port)))
}
