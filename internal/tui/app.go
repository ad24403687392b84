package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/keylightctl/keylightctl/internal/keylight"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenDiscovery Screen = "discovery"
	ScreenControl   Screen = "control"
)

// AppModel is the top-level coordinator model that manages screen transitions
type AppModel struct {
	// Current screen state
	CurrentScreen Screen

	// Screen models
	DiscoveryModel DiscoveryModel
	ControlModel   ControlModel

	// Shared application state
	SelectedDevice *keylight.Device

	// UI state
	Width  int
	Height int
}

// NewAppModel creates a new application model starting at the specified screen
func NewAppModel(startScreen Screen, device *keylight.Device) AppModel {
	model := AppModel{
		CurrentScreen:  startScreen,
		SelectedDevice: device,
	}

	// Initialize the starting screen
	switch startScreen {
	case ScreenDiscovery:
		model.DiscoveryModel = NewDiscoveryModel()
	case ScreenControl:
		model.ControlModel = NewControlModel(device)
	}

	return model
}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.Init()
	case ScreenControl:
		return m.ControlModel.Init()
	default:
		return nil
	}
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		// Propagate to all screens
		m.DiscoveryModel.Width = msg.Width
		m.DiscoveryModel.Height = msg.Height
		m.ControlModel.Width = msg.Width
		m.ControlModel.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" {
			m.DiscoveryModel.Stop()
			return m, tea.Quit
		}
	}

	// Route to current screen
	return m.updateCurrentScreen(msg)
}

// updateCurrentScreen routes updates to the currently active screen
func (m AppModel) updateCurrentScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.CurrentScreen {
	case ScreenDiscovery:
		updated, c := m.DiscoveryModel.Update(msg)
		m.DiscoveryModel = updated.(DiscoveryModel)
		cmd = c

		// Check if the user selected a light
		if m.DiscoveryModel.Selected {
			if device := m.DiscoveryModel.GetSelectedDevice(); device != nil {
				m.SelectedDevice = device
				return m.transitionTo(ScreenControl)
			}
		}

	case ScreenControl:
		updated, c := m.ControlModel.Update(msg)
		m.ControlModel = updated.(ControlModel)
		cmd = c

		// Check if the user wants to go back to discovery
		if m.ControlModel.IsBackRequested() {
			return m.transitionTo(ScreenDiscovery)
		}
	}

	return m, cmd
}

// transitionTo transitions to a new screen
func (m AppModel) transitionTo(screen Screen) (tea.Model, tea.Cmd) {
	// Leaving discovery stops its background poller
	if m.CurrentScreen == ScreenDiscovery && screen != ScreenDiscovery {
		m.DiscoveryModel.Stop()
	}

	m.CurrentScreen = screen

	var cmd tea.Cmd

	switch screen {
	case ScreenDiscovery:
		m.DiscoveryModel = NewDiscoveryModel()
		m.DiscoveryModel.Width = m.Width
		m.DiscoveryModel.Height = m.Height
		cmd = m.DiscoveryModel.Init()

	case ScreenControl:
		if m.SelectedDevice != nil {
			m.ControlModel = NewControlModel(m.SelectedDevice)
			m.ControlModel.Width = m.Width
			m.ControlModel.Height = m.Height
			cmd = m.ControlModel.Init()
		}
	}

	return m, cmd
}

// View renders the current screen
// Each screen handles its own container using RenderApplicationContainer()
func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenDiscovery:
		return m.DiscoveryModel.View()
	case ScreenControl:
		return m.ControlModel.View()
	default:
		return "Unknown screen"
	}
}
