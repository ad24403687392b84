package keylight

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeLight is an httptest-backed accessory that keeps one light's state
// and serves the /elgato/lights contract
type fakeLight struct {
	mu    sync.Mutex
	state wireStatus

	// puts records every payload written to the device
	puts []wireStatus
}

func newFakeLight(on int, brightness, temperature int) *fakeLight {
	return &fakeLight{
		state: wireStatus{
			NumberOfLights: 1,
			Lights:         []wireLight{{On: on, Brightness: brightness, Temperature: temperature}},
		},
	}
}

func (f *fakeLight) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/elgato/lights" {
			http.NotFound(w, r)
			return
		}

		f.mu.Lock()
		defer f.mu.Unlock()

		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(f.state)

		case http.MethodPut:
			var incoming wireStatus
			if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			f.puts = append(f.puts, incoming)
			f.state = incoming
			_ = json.NewEncoder(w).Encode(f.state)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func (f *fakeLight) lastPut(t *testing.T) wireStatus {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.puts) == 0 {
		t.Fatal("no PUT request reached the device")
	}
	return f.puts[len(f.puts)-1]
}

func clientForServer(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	host, portStr, err := net.SplitHostPort(strings.TrimPrefix(server.URL, "http://"))
	if err != nil {
		t.Fatalf("splitting server address: %v", err)
	}
	port, _ := strconv.Atoi(portStr)
	return NewClient(host, port)
}

func TestGetState(t *testing.T) {
	light := newFakeLight(1, 20, 213)
	server := httptest.NewServer(light.handler())
	defer server.Close()

	client := clientForServer(t, server)
	state, err := client.GetState(context.Background())
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}

	if !state.Light().On {
		t.Error("On = false, want true")
	}
	if state.Light().Brightness != 20 {
		t.Errorf("Brightness = %d, want 20", state.Light().Brightness)
	}
	if state.Light().Temperature != 213 {
		t.Errorf("Temperature = %d, want 213", state.Light().Temperature)
	}
	if state.NumberOfLights != 1 {
		t.Errorf("NumberOfLights = %d, want 1", state.NumberOfLights)
	}
}

func TestGetState_Unreachable(t *testing.T) {
	// Reserve a port and close it so nothing is listening
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserving port: %v", err)
	}
	addr := listener.Addr().(*net.TCPAddr)
	_ = listener.Close()

	client := NewClient("127.0.0.1", addr.Port)
	client.SetTimeout(500 * time.Millisecond)

	start := time.Now()
	_, err = client.GetState(context.Background())
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("GetState() succeeded against a closed port")
	}
	if !IsUnreachable(err) {
		t.Errorf("GetState() error = %v, want unreachable", err)
	}
	if elapsed > 2*time.Second {
		t.Errorf("GetState() took %v, must fail within the configured timeout", elapsed)
	}
}

func TestGetState_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not JSON", "<html>nope</html>"},
		{"missing lights", `{"numberOfLights":1}`},
		{"zero lights", `{"numberOfLights":0,"lights":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := clientForServer(t, server)
			_, err := client.GetState(context.Background())

			if err == nil {
				t.Fatal("GetState() succeeded on malformed payload")
			}
			if !IsMalformed(err) {
				t.Errorf("GetState() error = %v, want malformed", err)
			}
		})
	}
}

func TestGetState_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := clientForServer(t, server)
	_, err := client.GetState(context.Background())

	if err == nil {
		t.Fatal("GetState() succeeded on 500")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error %v should mention the status code", err)
	}
	if IsUnreachable(err) || IsMalformed(err) {
		t.Errorf("GetState() error = %v, want plain HTTP error", err)
	}
}

func TestSetState_ClampsBeforeSending(t *testing.T) {
	light := newFakeLight(1, 50, 200)
	server := httptest.NewServer(light.handler())
	defer server.Close()

	client := clientForServer(t, server)

	_, err := client.SetState(context.Background(), DeviceState{
		NumberOfLights: 1,
		Lights:         []LightState{{On: true, Brightness: 250, Temperature: 100}},
	})
	if err != nil {
		t.Fatalf("SetState() error = %v", err)
	}

	sent := light.lastPut(t)
	if sent.Lights[0].Brightness != 100 {
		t.Errorf("sent brightness %d, want 100 (clamped)", sent.Lights[0].Brightness)
	}
	if sent.Lights[0].Temperature != 143 {
		t.Errorf("sent temperature %d, want 143 (clamped to nearest bound)", sent.Lights[0].Temperature)
	}
}

func TestSetState_ReturnsDeviceReportedState(t *testing.T) {
	// Device rounds brightness down device-side; caller must see what the
	// device reports, not an echo of the request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"numberOfLights":1,"lights":[{"on":1,"brightness":49,"temperature":200}]}`))
	}))
	defer server.Close()

	client := clientForServer(t, server)
	state, err := client.SetState(context.Background(), DeviceState{
		NumberOfLights: 1,
		Lights:         []LightState{{On: true, Brightness: 50, Temperature: 200}},
	})
	if err != nil {
		t.Fatalf("SetState() error = %v", err)
	}
	if state.Light().Brightness != 49 {
		t.Errorf("Brightness = %d, want the device-reported 49", state.Light().Brightness)
	}
}

func TestToggle(t *testing.T) {
	light := newFakeLight(0, 35, 278)
	server := httptest.NewServer(light.handler())
	defer server.Close()

	client := clientForServer(t, server)
	state, err := client.Toggle(context.Background())
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}

	sent := light.lastPut(t)
	if sent.Lights[0].On != 1 {
		t.Errorf("toggle from off wrote on=%d, want 1", sent.Lights[0].On)
	}

	// Brightness and temperature pass through unchanged
	if state.Light().Brightness != 35 {
		t.Errorf("Brightness = %d, want 35 unchanged", state.Light().Brightness)
	}
	if state.Light().Temperature != 278 {
		t.Errorf("Temperature = %d, want 278 unchanged", state.Light().Temperature)
	}
	if !state.Light().On {
		t.Error("On = false after toggling from off")
	}

	// And back
	state, err = client.Toggle(context.Background())
	if err != nil {
		t.Fatalf("second Toggle() error = %v", err)
	}
	if state.Light().On {
		t.Error("On = true after toggling back")
	}
}

func TestStepBrightness_StaysInDomain(t *testing.T) {
	light := newFakeLight(1, 95, 200)
	server := httptest.NewServer(light.handler())
	defer server.Close()

	client := clientForServer(t, server)

	// Stepping up from 95 ten times never exceeds 100
	for i := 0; i < 10; i++ {
		state, err := client.StepBrightness(context.Background(), StepUp)
		if err != nil {
			t.Fatalf("StepBrightness(up) #%d error = %v", i, err)
		}
		if b := state.Light().Brightness; b > MaxBrightness {
			t.Fatalf("brightness %d exceeded %d after %d steps up", b, MaxBrightness, i+1)
		}
	}

	// Reset to 5 and step down ten times; never below 0
	if _, err := client.SetState(context.Background(), DeviceState{
		NumberOfLights: 1,
		Lights:         []LightState{{On: true, Brightness: 5, Temperature: 200}},
	}); err != nil {
		t.Fatalf("SetState() error = %v", err)
	}

	for i := 0; i < 10; i++ {
		state, err := client.StepBrightness(context.Background(), StepDown)
		if err != nil {
			t.Fatalf("StepBrightness(down) #%d error = %v", i, err)
		}
		if b := state.Light().Brightness; b < MinBrightness {
			t.Fatalf("brightness %d fell below %d after %d steps down", b, MinBrightness, i+1)
		}
	}
}

func TestStepBrightness_StepSize(t *testing.T) {
	light := newFakeLight(1, 50, 200)
	server := httptest.NewServer(light.handler())
	defer server.Close()

	client := clientForServer(t, server)

	state, err := client.StepBrightness(context.Background(), StepUp)
	if err != nil {
		t.Fatalf("StepBrightness() error = %v", err)
	}
	if state.Light().Brightness != 60 {
		t.Errorf("Brightness = %d, want 60", state.Light().Brightness)
	}

	state, err = client.StepBrightness(context.Background(), StepDown)
	if err != nil {
		t.Fatalf("StepBrightness() error = %v", err)
	}
	if state.Light().Brightness != 50 {
		t.Errorf("Brightness = %d, want 50", state.Light().Brightness)
	}
}

func TestStepTemperature_StaysInDomain(t *testing.T) {
	light := newFakeLight(1, 50, 340)
	server := httptest.NewServer(light.handler())
	defer server.Close()

	client := clientForServer(t, server)

	for i := 0; i < 5; i++ {
		state, err := client.StepTemperature(context.Background(), StepUp)
		if err != nil {
			t.Fatalf("StepTemperature(up) #%d error = %v", i, err)
		}
		if temp := state.Light().Temperature; temp > MaxTemperature {
			t.Fatalf("temperature %d exceeded %d", temp, MaxTemperature)
		}
	}

	state, err := client.GetState(context.Background())
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if state.Light().Temperature != MaxTemperature {
		t.Errorf("Temperature = %d, want pinned at %d", state.Light().Temperature, MaxTemperature)
	}
}

func TestStepTemperature_StepSize(t *testing.T) {
	light := newFakeLight(1, 50, 200)
	server := httptest.NewServer(light.handler())
	defer server.Close()

	client := clientForServer(t, server)

	state, err := client.StepTemperature(context.Background(), StepUp)
	if err != nil {
		t.Fatalf("StepTemperature() error = %v", err)
	}
	if state.Light().Temperature != 220 {
		t.Errorf("Temperature = %d, want 220", state.Light().Temperature)
	}
}

func TestSetPower(t *testing.T) {
	light := newFakeLight(0, 35, 278)
	server := httptest.NewServer(light.handler())
	defer server.Close()

	client := clientForServer(t, server)

	state, err := client.SetPower(context.Background(), true)
	if err != nil {
		t.Fatalf("SetPower(true) error = %v", err)
	}
	if !state.Light().On {
		t.Error("On = false after SetPower(true)")
	}

	state, err = client.SetPower(context.Background(), false)
	if err != nil {
		t.Fatalf("SetPower(false) error = %v", err)
	}
	if state.Light().On {
		t.Error("On = true after SetPower(false)")
	}
}

func TestToggle_PropagatesReadFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := clientForServer(t, server)
	_, err := client.Toggle(context.Background())

	if err == nil {
		t.Fatal("Toggle() succeeded with a broken read")
	}
	if !IsMalformed(err) {
		t.Errorf("Toggle() error = %v, want malformed", err)
	}
}
