package config

import "time"

// Registry represents the entire user configuration file.
// This stores user-defined metadata for lights and application preferences.
type Registry struct {
	Version     int               `yaml:"version"`
	Lights      map[string]*Light `yaml:"lights,omitempty"` // Keyed by device id (TXT "id")
	Preferences *Preferences      `yaml:"preferences,omitempty"`
}

// Light represents user-defined metadata for a single accessory.
// This is keyed by the accessory's device id in the Registry; the device
// itself stores none of it.
type Light struct {
	Nickname string    `yaml:"nickname,omitempty"`  // User-friendly name
	Model    string    `yaml:"model,omitempty"`     // Model string from TXT metadata
	LastIP   string    `yaml:"last_ip,omitempty"`   // Last known IP address
	LastPort int       `yaml:"last_port,omitempty"` // Last known control port
	LastSeen time.Time `yaml:"last_seen,omitempty"` // Last discovery time
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	AutoDiscover    bool `yaml:"auto_discover"`    // Run discovery when no host is given
	DiscoverTimeout int  `yaml:"discover_timeout"` // Discovery timeout in seconds
	DefaultPort     int  `yaml:"default_port"`     // Control port for manually entered hosts
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Lights:  make(map[string]*Light),
		Preferences: &Preferences{
			AutoDiscover:    true,
			DiscoverTimeout: 5,
			DefaultPort:     9123,
		},
	}
}

// GetLight retrieves accessory metadata by device id.
// Returns nil if the accessory doesn't exist in the registry.
func (r *Registry) GetLight(id string) *Light {
	return r.Lights[id]
}

// EnsureLight ensures an accessory entry exists in the registry.
// If the accessory doesn't exist, creates a new entry with default values.
// Returns the entry (existing or newly created).
func (r *Registry) EnsureLight(id string) *Light {
	if r.Lights == nil {
		r.Lights = make(map[string]*Light)
	}

	if light, exists := r.Lights[id]; exists {
		return light
	}

	light := &Light{}
	r.Lights[id] = light
	return light
}

// UpdateLightLastSeen updates the last seen timestamp and address for an
// accessory.
func (r *Registry) UpdateLightLastSeen(id, ip string, port int) {
	light := r.EnsureLight(id)
	light.LastSeen = time.Now()
	light.LastIP = ip
	light.LastPort = port
}

// SetNickname stores a user-friendly name for an accessory.
func (r *Registry) SetNickname(id, nickname string) {
	r.EnsureLight(id).Nickname = nickname
}

// DisplayName returns the nickname for a device id when one is set,
// falling back to the given advertised name.
func (r *Registry) DisplayName(id, advertised string) string {
	if light := r.GetLight(id); light != nil && light.Nickname != "" {
		return light.Nickname
	}
	return advertised
}
