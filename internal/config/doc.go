// Package config provides user configuration management for keylightctl.
//
// This package manages a YAML-based configuration file that stores user-defined
// metadata for Key Light devices, including nicknames, last-seen network
// addresses, and application preferences. The configuration follows OS-specific
// conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/keylightctl/config.yaml or $HOME/.config/keylightctl/config.yaml
//   - macOS: $HOME/.config/keylightctl/config.yaml
//   - Windows: %LOCALAPPDATA%\keylightctl\config.yaml
//
// # Registry Keys
//
// Lights are keyed by the hardware identifier the device advertises in its
// "id" TXT record. The self-advertised instance name changes when a light is
// renamed through Elgato's own software, so it is kept only as a display
// fallback, never as a key.
//
// # Usage Example
//
//	// Load the global registry
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Record where a light was last seen and give it a nickname
//	registry.UpdateLightLastSeen("FF:6A:9D:30:B1:6E", "192.168.1.100", 9123)
//	registry.SetNickname("FF:6A:9D:30:B1:6E", "Desk Light")
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
