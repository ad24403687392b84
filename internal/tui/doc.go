// Package tui implements the interactive terminal control panel for keylightctl.
//
// This package provides a full-screen TUI for discovering Key Light accessories
// and adjusting them live. Built using the Bubble Tea framework, it follows the
// Elm architecture with immutable state updates and a clean Model-Update-View
// pattern.
//
// # Architecture
//
// The TUI is organized into two screens:
//   - Discovery: Browse the network for lights or enter an IP manually
//   - Control: Toggle power and adjust brightness/temperature of one light
//
// All screens use a unified container pattern (RenderApplicationContainer) for
// consistent layout with header, content area, and context-sensitive footer.
//
// # Framework Components
//
// The TUI leverages Bubble Tea framework components throughout:
//   - bubbles/spinner: Loading indicators
//   - bubbles/textinput: Manual IP entry
//   - bubbles/progress: Brightness and temperature gauges
//   - bubbles/list: Light list with filtering
//   - bubbles/help: Context-aware help system
//   - lipgloss: Styling and layout
//
// # Usage Example
//
//	app := tui.NewAppModel(tui.ScreenDiscovery, nil)
//	program := tea.NewProgram(app)
//
//	if _, err := program.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Screen Flow
//
//  1. Discovery Screen:
//     - A background poller repeats mDNS browse passes and streams results in,
//       so lights appear as they come online without manual rescans
//     - Displays found lights as cards with address and model details
//     - Allows manual IP entry if a light is not advertised
//     - User selects a light to control
//
//  2. Control Screen:
//     - Fetches the light's current state
//     - Shows power, a brightness gauge, and a temperature gauge
//     - Every keypress issues one bounded request against the light and
//       re-renders from the state the device reports back
//
// # Key Bindings
//
// Each screen has context-aware key bindings:
//   - Discovery: ↑/↓ navigate, Enter select, r rescan, m manual IP, q quit
//   - Control: t toggle, +/- brightness, [/] temperature, r refresh, esc back, q quit
//
// Help text automatically updates based on screen state (e.g., during scanning,
// manual entry).
//
// # Thread Safety
//
// The Bubble Tea framework ensures thread safety through message passing.
// All model updates occur in a single goroutine; device requests and the
// discovery poller run as commands and report back via messages.
package tui
