// Keylightctl is a control utility for Elgato Key Light accessories.
//
// It provides mDNS/DNS-SD device discovery, an interactive control panel,
// and direct commands for switching power and adjusting the brightness and
// color temperature of Key Light devices over their local HTTP API.
//
// Usage:
//
//	keylightctl [command] [flags]
//
// Running without arguments launches the interactive control panel.
// See 'keylightctl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keylightctl/keylightctl/internal/logging"
	"github.com/keylightctl/keylightctl/internal/version"
)

func main() {
	logging.InitializeFromEnv()
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "keylightctl",
	Short: "Elgato Key Light Control Utility",
	Long: `A standalone utility for controlling Elgato Key Light accessories.

Provides mDNS device discovery, an interactive control panel, and direct
commands for power, brightness, and color temperature.

If no command is specified, the interactive control panel will launch
automatically.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the control panel when no subcommand provided
		return runPanel(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("keylightctl %s (commit: %s)\n", version.Version, version.Commit)
	},
}
