package keylight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/keylightctl/keylightctl/internal/logging"
)

const (
	// DefaultPort is the HTTP port Key Lights listen on
	DefaultPort = 9123

	// lightsPath is the control endpoint for light state
	lightsPath = "/elgato/lights"

	// DefaultTimeout bounds a single HTTP round-trip to the accessory
	DefaultTimeout = 5 * time.Second
)

// Client issues state reads and mutations against one accessory's control
// endpoint. Every operation is a single bounded attempt that fails fast
// with a typed error; retry policy, if wanted, belongs to the caller.
//
// A Client holds no mutable state between calls and is safe for concurrent
// use, but the compound operations (Toggle, Step*) are read-then-write and
// not atomic on the device side: callers sharing one accessory across
// goroutines must serialize mutations themselves.
type Client struct {
	// BaseURL is the accessory's HTTP base URL (e.g. "http://192.168.0.92:9123")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	addr string
}

// NewClient creates a client for the accessory at ip:port
func NewClient(ip string, port int) *Client {
	addr := net.JoinHostPort(ip, fmt.Sprint(port))
	return &Client{
		BaseURL:    "http://" + addr,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		addr:       addr,
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// GetState reads the accessory's current state
func (c *Client) GetState(ctx context.Context) (state DeviceState, err error) {
	defer func() { logging.LogDeviceOp(c.addr, "get-state", err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+lightsPath, nil)
	if err != nil {
		return DeviceState{}, newUnreachableError(c.addr, err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return DeviceState{}, newUnreachableError(c.addr, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return DeviceState{}, newHTTPError(c.addr, resp.StatusCode)
	}

	return c.decodeState(resp.Body)
}

// SetState clamps the requested state into the valid domain and sends it as
// a full replacement payload; the accessory's endpoint does not accept
// partial patches. The state the accessory reports back is returned, which
// may differ slightly from the request due to device-side rounding.
func (c *Client) SetState(ctx context.Context, state DeviceState) (reported DeviceState, err error) {
	defer func() { logging.LogDeviceOp(c.addr, "set-state", err) }()

	state = state.Clamp()

	body, err := json.Marshal(state.toWire())
	if err != nil {
		return DeviceState{}, newMalformedError(c.addr, "failed to encode state", err)
	}

	logging.Debug("sending state",
		zap.String("addr", c.addr),
		zap.ByteString("payload", body),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.BaseURL+lightsPath, bytes.NewReader(body))
	if err != nil {
		return DeviceState{}, newUnreachableError(c.addr, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return DeviceState{}, newUnreachableError(c.addr, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return DeviceState{}, newHTTPError(c.addr, resp.StatusCode)
	}

	return c.decodeState(resp.Body)
}

// SetPower reads the current state and writes it back with every light's
// power forced to the requested value
func (c *Client) SetPower(ctx context.Context, on bool) (DeviceState, error) {
	state, err := c.GetState(ctx)
	if err != nil {
		return DeviceState{}, err
	}

	for i := range state.Lights {
		state.Lights[i].On = on
	}

	return c.SetState(ctx, state)
}

// Toggle flips the first light's power and writes the state back. This is
// a read-then-write compound, not atomic on the device side: a concurrent
// external mutation between the read and the write is last-write-wins.
func (c *Client) Toggle(ctx context.Context) (DeviceState, error) {
	state, err := c.GetState(ctx)
	if err != nil {
		return DeviceState{}, err
	}
	if len(state.Lights) == 0 {
		return DeviceState{}, newMalformedError(c.addr, "state has no lights", nil)
	}

	state.Lights[0].On = !state.Lights[0].On

	return c.SetState(ctx, state)
}

// StepBrightness adjusts the first light's brightness by one step (10
// percentage points), clamped into [0, 100], and writes the state back.
// Same read-then-write race as Toggle.
func (c *Client) StepBrightness(ctx context.Context, dir Direction) (DeviceState, error) {
	state, err := c.GetState(ctx)
	if err != nil {
		return DeviceState{}, err
	}
	if len(state.Lights) == 0 {
		return DeviceState{}, newMalformedError(c.addr, "state has no lights", nil)
	}

	state.Lights[0].Brightness = ClampBrightness(step(state.Lights[0].Brightness, BrightnessStep, dir))

	return c.SetState(ctx, state)
}

// StepTemperature adjusts the first light's color temperature by one step
// (10% of the mired span), clamped into [143, 344], and writes the state
// back. Same read-then-write race as Toggle.
func (c *Client) StepTemperature(ctx context.Context, dir Direction) (DeviceState, error) {
	state, err := c.GetState(ctx)
	if err != nil {
		return DeviceState{}, err
	}
	if len(state.Lights) == 0 {
		return DeviceState{}, newMalformedError(c.addr, "state has no lights", nil)
	}

	state.Lights[0].Temperature = ClampTemperature(step(state.Lights[0].Temperature, TemperatureStep, dir))

	return c.SetState(ctx, state)
}

func (c *Client) decodeState(body io.Reader) (DeviceState, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return DeviceState{}, newUnreachableError(c.addr, err)
	}

	var wire wireStatus
	if err := json.Unmarshal(data, &wire); err != nil {
		return DeviceState{}, newMalformedError(c.addr, "failed to parse state payload", err)
	}

	if !wire.valid() {
		return DeviceState{}, newMalformedError(c.addr,
			fmt.Sprintf("state payload missing expected fields: %s", data), nil)
	}

	return wire.toState(), nil
}
