package tui

import (
	"strings"
	"testing"

	"github.com/keylightctl/keylightctl/internal/keylight"
)

func TestApproxKelvin(t *testing.T) {
	tests := []struct {
		name  string
		mired int
		want  int
	}{
		{"neutral", 200, 5000},
		{"coolest", 143, 6993},
		{"warmest", 344, 2906},
		{"zero", 0, 0},
		{"negative", -5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := approxKelvin(tt.mired); got != tt.want {
				t.Errorf("approxKelvin(%d) = %d, want %d", tt.mired, got, tt.want)
			}
		})
	}
}

// A device can report a temperature outside the documented range; the
// status payload is accepted as long as it lists a light. Rendering must
// not divide by a zero temperature.
func TestControlModelViewZeroTemperature(t *testing.T) {
	m := NewControlModel(keylight.NewDevice("192.0.2.10", keylight.DefaultPort))
	m.Loaded = true
	m.State = keylight.DeviceState{
		NumberOfLights: 1,
		Lights:         []keylight.LightState{{On: true, Brightness: 20, Temperature: 0}},
	}

	content := m.buildContent()
	if !strings.Contains(content, "0 mireds (~0K)") {
		t.Errorf("content does not report the out-of-range temperature:\n%s", content)
	}
}
