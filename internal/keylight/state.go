package keylight

import "encoding/json"

// Valid ranges for mutable light properties. The temperature bounds are in
// mireds; all shipping Key Light firmware accepts [143, 344], so the common
// fixed range is used rather than querying per-accessory bounds.
const (
	MinBrightness = 0
	MaxBrightness = 100

	MinTemperature = 143
	MaxTemperature = 344
)

// Step sizes for the incr/decr operations: 10 percentage points for
// brightness, 10% of the mired span rounded to the nearest integer for
// temperature.
const (
	BrightnessStep  = 10
	TemperatureStep = (MaxTemperature - MinTemperature + 5) / 10
)

// Direction selects whether a step operation moves a value up or down
type Direction int

const (
	StepUp Direction = iota
	StepDown
)

// LightState is the mutable state of one controllable light element
type LightState struct {
	// On reports whether the light is powered
	On bool

	// Brightness is a percentage in [0, 100]
	Brightness int

	// Temperature is the color temperature in mireds, in [143, 344]
	Temperature int
}

// DeviceState is the full on-device state: every light element in one
// accessory. Most accessories carry exactly one light.
type DeviceState struct {
	NumberOfLights int
	Lights         []LightState
}

// Light returns the first (usually only) light's state. The zero value is
// returned for an empty state.
func (s DeviceState) Light() LightState {
	if len(s.Lights) == 0 {
		return LightState{}
	}
	return s.Lights[0]
}

// Clamp returns a copy of the state with every light's brightness and
// temperature forced into the valid domain. Out-of-range requests are
// clamped to the nearest bound rather than rejected; that is the documented
// contract of every mutation.
func (s DeviceState) Clamp() DeviceState {
	clamped := DeviceState{
		NumberOfLights: s.NumberOfLights,
		Lights:         make([]LightState, len(s.Lights)),
	}
	for i, light := range s.Lights {
		light.Brightness = ClampBrightness(light.Brightness)
		light.Temperature = ClampTemperature(light.Temperature)
		clamped.Lights[i] = light
	}
	return clamped
}

// ClampBrightness forces a brightness percentage into [0, 100]
func ClampBrightness(v int) int {
	return clamp(v, MinBrightness, MaxBrightness)
}

// ClampTemperature forces a mired value into [143, 344]
func ClampTemperature(v int) int {
	return clamp(v, MinTemperature, MaxTemperature)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// step applies a signed delta in the given direction
func step(v, delta int, dir Direction) int {
	if dir == StepDown {
		return v - delta
	}
	return v + delta
}

// Wire representation of the control endpoint's state payload:
//
//	{"numberOfLights":1,"lights":[{"on":1,"brightness":20,"temperature":213}]}
//
// "on" is 0/1 on the wire, a bool in the model. Unknown fields are ignored
// on read and omitted on write.
type wireStatus struct {
	NumberOfLights int         `json:"numberOfLights"`
	Lights         []wireLight `json:"lights"`
}

type wireLight struct {
	On          int `json:"on"`
	Brightness  int `json:"brightness"`
	Temperature int `json:"temperature"`
}

func (s DeviceState) toWire() wireStatus {
	wire := wireStatus{
		NumberOfLights: s.NumberOfLights,
		Lights:         make([]wireLight, len(s.Lights)),
	}
	for i, light := range s.Lights {
		on := 0
		if light.On {
			on = 1
		}
		wire.Lights[i] = wireLight{
			On:          on,
			Brightness:  light.Brightness,
			Temperature: light.Temperature,
		}
	}
	return wire
}

// MarshalJSON emits the wire representation the accessory itself speaks,
// so dumps of a DeviceState match what the control endpoint returns.
func (s DeviceState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.toWire())
}

func (w wireStatus) toState() DeviceState {
	state := DeviceState{
		NumberOfLights: w.NumberOfLights,
		Lights:         make([]LightState, len(w.Lights)),
	}
	for i, light := range w.Lights {
		state.Lights[i] = LightState{
			On:          light.On != 0,
			Brightness:  light.Brightness,
			Temperature: light.Temperature,
		}
	}
	return state
}

// valid reports whether a payload decoded from the device carries the
// expected shape
func (w wireStatus) valid() bool {
	return w.NumberOfLights >= 1 && len(w.Lights) >= 1
}
