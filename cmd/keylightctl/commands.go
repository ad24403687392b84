package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/keylightctl/keylightctl/internal/config"
	"github.com/keylightctl/keylightctl/internal/discovery"
	"github.com/keylightctl/keylightctl/internal/keylight"
	"github.com/keylightctl/keylightctl/internal/tui"
)

// Control command flags
var (
	deviceHost   string
	devicePort   int
	opTimeout    int
	scanTimeout  int
	outputFormat string
	setBright    int
	setTemp      int
)

func init() {
	// Common flags for device commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&deviceHost, "host", "", "Device IP address (skips discovery)")
	rootCmd.PersistentFlags().IntVar(&devicePort, "port", keylight.DefaultPort, "Device HTTP port")
	rootCmd.PersistentFlags().IntVar(&opTimeout, "timeout", 5, "Per-request timeout in seconds")

	// Add subcommands directly to root
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(onCmd)
	rootCmd.AddCommand(offCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(incrBrightnessCmd)
	rootCmd.AddCommand(decrBrightnessCmd)
	rootCmd.AddCommand(incrTemperatureCmd)
	rootCmd.AddCommand(decrTemperatureCmd)
	rootCmd.AddCommand(panelCmd)
}

// scanCmd discovers lights on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for Key Light accessories on the network",
	Long: `Scan for Key Light accessories using mDNS/DNS-SD discovery.

This command browses for _elg._tcp service advertisements and displays all
discovered lights with their addresses and metadata. Advertisements that
could not be resolved to an address are listed separately.`,
	Example: `  # Scan for 5 seconds (default)
  keylightctl scan

  # Longer scan for sleepy networks
  keylightctl scan --scan-timeout 15`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "scan-timeout", 5, "Scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for Key Light accessories (timeout: %ds)...\n\n", scanTimeout)

	browser := discovery.NewBrowser(time.Duration(scanTimeout) * time.Second)
	outcomes, err := browser.Discover(cmd.Context())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	records := discovery.Records(outcomes)

	if len(records) == 0 {
		fmt.Println("No lights found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the light is powered and on the same network")
		fmt.Println("  - Check that multicast traffic is allowed on this network")
		fmt.Println("  - Try increasing --scan-timeout for slower networks")
		fmt.Println("  - Use --host to specify the IP manually if discovery fails")
	} else {
		fmt.Printf("Found %d light(s):\n\n", len(records))

		registry, regErr := config.LoadRegistry()

		for i, record := range records {
			txt := record.TXT()
			name := record.Name
			if regErr == nil {
				name = registry.DisplayName(txt["id"], record.Name)
			}

			fmt.Printf("%d. %s\n", i+1, name)
			fmt.Printf("   Host:  %s\n", record.TargetHost)
			fmt.Printf("   IP:    %s:%d\n", record.Addr, record.Port)
			if model := txt["md"]; model != "" {
				fmt.Printf("   Model: %s\n", model)
			}
			if id := txt["id"]; id != "" {
				fmt.Printf("   ID:    %s\n", id)

				if regErr == nil {
					registry.UpdateLightLastSeen(id, record.Addr.String(), int(record.Port))
					if model := txt["md"]; model != "" {
						registry.EnsureLight(id).Model = model
					}
				}
			}
			fmt.Println()
		}

		// Remember where each light was last seen; best effort only
		if regErr == nil {
			if err := registry.Save(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not save registry: %v\n", err)
			}
		}
	}

	unresolved := 0
	for _, outcome := range outcomes {
		if !outcome.IsResolved() {
			unresolved++
		}
	}
	if unresolved > 0 {
		fmt.Printf("%d advertisement(s) could not be resolved:\n\n", unresolved)
		for _, outcome := range outcomes {
			if outcome.IsResolved() {
				continue
			}
			fmt.Printf("  - %s (%s): %s\n", outcome.Unresolved.Name, outcome.Unresolved.Proto, outcome.Reason)
		}
		fmt.Println()
	}

	if len(records) > 0 {
		fmt.Println("Use 'keylightctl status --host <ip>' to view a light's state")
		fmt.Println("Use 'keylightctl' for the interactive control panel")
	}

	return nil
}

// statusCmd displays the current light state
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current light state",
	Long: `Display the current state of a Key Light accessory.

This command connects to the light and retrieves its power state, brightness,
and color temperature.`,
	Example: `  # Show state with auto-discovery
  keylightctl status

  # Show state for a specific light
  keylightctl status --host 192.168.1.25

  # JSON output for scripting
  keylightctl status --host 192.168.1.25 --format json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, json)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	device, err := getDevice()
	if err != nil {
		return err
	}

	ctx, cancel := opContext()
	defer cancel()

	state, err := device.Client().GetState(ctx)
	if err != nil {
		return fmt.Errorf("failed to get state: %w", err)
	}

	switch outputFormat {
	case "json":
		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
	default:
		fmt.Printf("Light at %s:%d\n", device.IP, device.Port)
		printState(state)
	}

	return nil
}

// onCmd and offCmd switch the light's power
var onCmd = &cobra.Command{
	Use:   "on",
	Short: "Turn the light on",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetPower(true)
	},
}

var offCmd = &cobra.Command{
	Use:   "off",
	Short: "Turn the light off",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetPower(false)
	},
}

func runSetPower(on bool) error {
	device, err := getDevice()
	if err != nil {
		return err
	}

	ctx, cancel := opContext()
	defer cancel()

	state, err := device.Client().SetPower(ctx, on)
	if err != nil {
		return fmt.Errorf("failed to set power: %w", err)
	}

	printState(state)
	return nil
}

// toggleCmd flips the light's power state
var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Toggle the light's power state",
	Long: `Toggle the light's power state.

This reads the current state and writes back its inverse. If another
controller changes the light between the read and the write, the last
write wins.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		device, err := getDevice()
		if err != nil {
			return err
		}

		ctx, cancel := opContext()
		defer cancel()

		state, err := device.Client().Toggle(ctx)
		if err != nil {
			return fmt.Errorf("failed to toggle: %w", err)
		}

		printState(state)
		return nil
	},
}

// setCmd sets brightness and/or temperature directly
var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Set brightness and/or color temperature",
	Long: `Set the light's brightness and/or color temperature.

Brightness is a percentage in [0, 100]. Temperature is in mireds, in
[143, 344]; lower is cooler, higher is warmer. Out-of-range values are
clamped to the nearest bound rather than rejected.`,
	Example: `  # Half brightness
  keylightctl set --brightness 50

  # Warm white
  keylightctl set --temperature 320 --host 192.168.1.25

  # Both at once
  keylightctl set --brightness 80 --temperature 200`,
	RunE: runSet,
}

func init() {
	setCmd.Flags().IntVar(&setBright, "brightness", -1, "Brightness percentage (0-100)")
	setCmd.Flags().IntVar(&setTemp, "temperature", -1, "Color temperature in mireds (143-344)")
}

func runSet(cmd *cobra.Command, args []string) error {
	if setBright < 0 && setTemp < 0 {
		return fmt.Errorf("nothing to set: use --brightness and/or --temperature")
	}

	device, err := getDevice()
	if err != nil {
		return err
	}

	ctx, cancel := opContext()
	defer cancel()

	client := device.Client()

	state, err := client.GetState(ctx)
	if err != nil {
		return fmt.Errorf("failed to get state: %w", err)
	}
	if len(state.Lights) == 0 {
		return fmt.Errorf("device reported no lights")
	}

	for i := range state.Lights {
		if setBright >= 0 {
			state.Lights[i].Brightness = setBright
		}
		if setTemp >= 0 {
			state.Lights[i].Temperature = setTemp
		}
	}

	state, err = client.SetState(ctx, state)
	if err != nil {
		return fmt.Errorf("failed to set state: %w", err)
	}

	printState(state)
	return nil
}

// Step commands nudge brightness and temperature in fixed increments

var incrBrightnessCmd = &cobra.Command{
	Use:   "incr-brightness",
	Short: fmt.Sprintf("Increase brightness by %d%%", keylight.BrightnessStep),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStep(func(ctx context.Context, c *keylight.Client) (keylight.DeviceState, error) {
			return c.StepBrightness(ctx, keylight.StepUp)
		})
	},
}

var decrBrightnessCmd = &cobra.Command{
	Use:   "decr-brightness",
	Short: fmt.Sprintf("Decrease brightness by %d%%", keylight.BrightnessStep),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStep(func(ctx context.Context, c *keylight.Client) (keylight.DeviceState, error) {
			return c.StepBrightness(ctx, keylight.StepDown)
		})
	},
}

var incrTemperatureCmd = &cobra.Command{
	Use:   "incr-temperature",
	Short: fmt.Sprintf("Increase (warm) color temperature by %d mireds", keylight.TemperatureStep),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStep(func(ctx context.Context, c *keylight.Client) (keylight.DeviceState, error) {
			return c.StepTemperature(ctx, keylight.StepUp)
		})
	},
}

var decrTemperatureCmd = &cobra.Command{
	Use:   "decr-temperature",
	Short: fmt.Sprintf("Decrease (cool) color temperature by %d mireds", keylight.TemperatureStep),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStep(func(ctx context.Context, c *keylight.Client) (keylight.DeviceState, error) {
			return c.StepTemperature(ctx, keylight.StepDown)
		})
	},
}

func runStep(op func(context.Context, *keylight.Client) (keylight.DeviceState, error)) error {
	device, err := getDevice()
	if err != nil {
		return err
	}

	ctx, cancel := opContext()
	defer cancel()

	state, err := op(ctx, device.Client())
	if err != nil {
		return fmt.Errorf("failed to adjust light: %w", err)
	}

	printState(state)
	return nil
}

// panelCmd launches the interactive TUI control panel
var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Launch the interactive control panel",
	Long: `Launch an interactive TUI for controlling lights.

The panel provides a user-friendly interface for:
- Discovering lights on the network
- Toggling power
- Adjusting brightness and color temperature

This is the recommended way to control lights for most users.`,
	Example: `  # Launch panel with auto-discovery
  keylightctl panel
  # Or simply (panel is default):
  keylightctl

  # Launch panel for a specific light
  keylightctl panel --host 192.168.1.25
  keylightctl --host 192.168.1.25`,
	RunE: runPanel,
}

func runPanel(cmd *cobra.Command, args []string) error {
	var model tea.Model

	if deviceHost != "" {
		// Direct to control screen with a manual address
		// First verify we can connect
		device := keylight.NewDevice(deviceHost, devicePort)

		ctx, cancel := opContext()
		defer cancel()

		if err := device.Refresh(ctx); err != nil {
			return fmt.Errorf("failed to connect to light at %s:%d: %w", deviceHost, devicePort, err)
		}

		model = tui.NewAppModel(tui.ScreenControl, device)
	} else {
		// Start with the discovery screen (will auto-scan)
		model = tui.NewAppModel(tui.ScreenDiscovery, nil)
	}

	p := tea.NewProgram(model)
	_, err := p.Run()
	if err != nil {
		return fmt.Errorf("panel error: %w", err)
	}

	return nil
}

// opContext returns a context bounded by the --timeout flag
func opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(opTimeout)*time.Second)
}

// printState prints a human-readable rendering of a light's state
func printState(state keylight.DeviceState) {
	for i, light := range state.Lights {
		if state.NumberOfLights > 1 {
			fmt.Printf("Light %d:\n", i+1)
		}
		power := "off"
		if light.On {
			power = "on"
		}
		fmt.Printf("  Power:       %s\n", power)
		fmt.Printf("  Brightness:  %d%%\n", light.Brightness)
		fmt.Printf("  Temperature: %d mireds (~%dK)\n", light.Temperature, miredToKelvin(light.Temperature))
	}
}

// miredToKelvin converts a mired value to approximate kelvins, rounded to
// the nearest 50 to match how the vendor app displays temperature.
func miredToKelvin(mired int) int {
	if mired <= 0 {
		return 0
	}
	kelvin := 1000000 / mired
	return (kelvin + 25) / 50 * 50
}

// getDevice resolves the target light, via the --host flag or discovery
func getDevice() (*keylight.Device, error) {
	if deviceHost != "" {
		device := keylight.NewDevice(deviceHost, devicePort)
		device.Client().SetTimeout(time.Duration(opTimeout) * time.Second)
		return device, nil
	}

	// Try discovery
	fmt.Println("No host specified, attempting auto-discovery...")

	timeout := discovery.DefaultScanTimeout
	if registry, err := config.LoadRegistry(); err == nil && registry.Preferences != nil {
		if !registry.Preferences.AutoDiscover {
			return nil, fmt.Errorf("auto-discovery is disabled in the config file. Use --host to specify the light")
		}
		if registry.Preferences.DiscoverTimeout > 0 {
			timeout = time.Duration(registry.Preferences.DiscoverTimeout) * time.Second
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout+time.Second)
	defer cancel()

	browser := discovery.NewBrowser(timeout)
	outcomes, err := browser.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}

	records := discovery.Records(outcomes)

	if len(records) == 0 {
		return nil, fmt.Errorf("no lights found. Use --host to specify the IP manually")
	}

	if len(records) > 1 {
		fmt.Printf("Found %d lights:\n", len(records))
		for i, record := range records {
			fmt.Printf("%d. %s (%s)\n", i+1, record.Name, record.Addr)
		}
		return nil, fmt.Errorf("multiple lights found. Use --host to specify which one")
	}

	// Exactly one light found
	device := keylight.DeviceFromRecord(records[0])
	device.Client().SetTimeout(time.Duration(opTimeout) * time.Second)
	fmt.Printf("Found light: %s (%s)\n\n", device.Name, device.IP)
	return device, nil
}
