package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/keylightctl/keylightctl/internal/keylight"
)

// opTimeout bounds every device request issued from the control screen
const opTimeout = 5 * time.Second

// stateMsg carries the result of a device operation
type stateMsg struct {
	state keylight.DeviceState
	err   error
}

// controlKeyMap defines key bindings for the control screen
type controlKeyMap struct {
	Toggle     key.Binding
	BrightUp   key.Binding
	BrightDown key.Binding
	TempUp     key.Binding
	TempDown   key.Binding
	Refresh    key.Binding
	Back       key.Binding
	Quit       key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k controlKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.BrightUp, k.BrightDown, k.TempUp, k.TempDown, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k controlKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.BrightUp, k.BrightDown},
		{k.TempUp, k.TempDown, k.Refresh},
		{k.Back, k.Quit},
	}
}

// ControlModel represents the single-light control screen state
type ControlModel struct {
	Device *keylight.Device
	State  keylight.DeviceState
	Loaded bool
	Busy   bool
	Err    error

	// Request to return to the discovery screen
	backRequested bool

	// UI state
	Width   int
	Height  int
	Spinner spinner.Model
	Bar     progress.Model
	Help    help.Model
	Keys    controlKeyMap
}

// NewControlModel creates a control screen for one light
func NewControlModel(device *keylight.Device) ControlModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	keys := controlKeyMap{
		Toggle: key.NewBinding(
			key.WithKeys("t", " ", "enter"),
			key.WithHelp("t", "toggle power"),
		),
		BrightUp: key.NewBinding(
			key.WithKeys("+", "=", "right"),
			key.WithHelp("+/→", "brighter"),
		),
		BrightDown: key.NewBinding(
			key.WithKeys("-", "left"),
			key.WithHelp("-/←", "dimmer"),
		),
		TempUp: key.NewBinding(
			key.WithKeys("]", "up"),
			key.WithHelp("]/↑", "warmer"),
		),
		TempDown: key.NewBinding(
			key.WithKeys("[", "down"),
			key.WithHelp("[/↓", "cooler"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "d"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}

	return ControlModel{
		Device:  device,
		Spinner: s,
		Bar:     bar,
		Help:    help.New(),
		Keys:    keys,
	}
}

// Init fetches the light's current state
func (m ControlModel) Init() tea.Cmd {
	return tea.Batch(
		m.deviceOp(func(ctx context.Context, c *keylight.Client) (keylight.DeviceState, error) {
			return c.GetState(ctx)
		}),
		m.Spinner.Tick,
	)
}

// deviceOp runs one request against the light and reports the new state
func (m ControlModel) deviceOp(op func(context.Context, *keylight.Client) (keylight.DeviceState, error)) tea.Cmd {
	client := m.Device.Client()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		state, err := op(ctx, client)
		return stateMsg{state: state, err: err}
	}
}

// IsBackRequested reports whether the user asked to return to discovery
func (m ControlModel) IsBackRequested() bool {
	return m.backRequested
}

// Update handles messages and updates the model
func (m ControlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case stateMsg:
		m.Busy = false
		if msg.err != nil {
			m.Err = msg.err
			return m, nil
		}
		m.Err = nil
		m.Loaded = true
		m.State = msg.state

	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, cmd
}

// handleKey dispatches control keys to device operations
func (m ControlModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Navigation works even while a request is in flight
	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.Keys.Back):
		m.backRequested = true
		return m, nil
	}

	if m.Busy {
		return m, nil
	}

	var op func(context.Context, *keylight.Client) (keylight.DeviceState, error)

	switch {
	case key.Matches(msg, m.Keys.Toggle):
		op = func(ctx context.Context, c *keylight.Client) (keylight.DeviceState, error) {
			return c.Toggle(ctx)
		}
	case key.Matches(msg, m.Keys.BrightUp):
		op = func(ctx context.Context, c *keylight.Client) (keylight.DeviceState, error) {
			return c.StepBrightness(ctx, keylight.StepUp)
		}
	case key.Matches(msg, m.Keys.BrightDown):
		op = func(ctx context.Context, c *keylight.Client) (keylight.DeviceState, error) {
			return c.StepBrightness(ctx, keylight.StepDown)
		}
	case key.Matches(msg, m.Keys.TempUp):
		op = func(ctx context.Context, c *keylight.Client) (keylight.DeviceState, error) {
			return c.StepTemperature(ctx, keylight.StepUp)
		}
	case key.Matches(msg, m.Keys.TempDown):
		op = func(ctx context.Context, c *keylight.Client) (keylight.DeviceState, error) {
			return c.StepTemperature(ctx, keylight.StepDown)
		}
	case key.Matches(msg, m.Keys.Refresh):
		op = func(ctx context.Context, c *keylight.Client) (keylight.DeviceState, error) {
			return c.GetState(ctx)
		}
	default:
		return m, nil
	}

	m.Busy = true
	return m, tea.Batch(m.deviceOp(op), m.Spinner.Tick)
}

// View renders the control screen
func (m ControlModel) View() string {
	content := m.buildContent()
	helpText := m.Help.View(m.Keys)
	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

func (m ControlModel) buildContent() string {
	var b strings.Builder

	b.WriteString(RenderTitle("  " + m.Device.Name))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("  %s:%d", m.Device.IP, m.Device.Port)))
	b.WriteString("\n\n")

	if m.Err != nil {
		b.WriteString(RenderError(fmt.Sprintf("Device error: %v", m.Err)))
		b.WriteString("\n\n")
		b.WriteString(MenuItemStyle.Render("Press 'r' to retry"))
		b.WriteString("\n")
		return b.String()
	}

	if !m.Loaded {
		b.WriteString(fmt.Sprintf("  %s Fetching light state...\n", m.Spinner.View()))
		return b.String()
	}

	light := m.State.Light()

	// Power line
	if light.On {
		b.WriteString("  Power:       " + PowerOnStyle.Render("● ON"))
	} else {
		b.WriteString("  Power:       " + PowerOffStyle.Render("○ OFF"))
	}
	b.WriteString("\n\n")

	// Brightness gauge
	brightRatio := float64(light.Brightness) / float64(keylight.MaxBrightness)
	b.WriteString(fmt.Sprintf("  Brightness:  %3d%%\n", light.Brightness))
	b.WriteString("  " + m.Bar.ViewAs(brightRatio))
	b.WriteString("\n\n")

	// Temperature gauge, normalized over the valid mired span
	tempSpan := float64(keylight.MaxTemperature - keylight.MinTemperature)
	tempRatio := float64(light.Temperature-keylight.MinTemperature) / tempSpan
	if tempRatio < 0 {
		tempRatio = 0
	}
	b.WriteString(fmt.Sprintf("  Temperature: %d mireds (~%dK)\n", light.Temperature, approxKelvin(light.Temperature)))
	b.WriteString("  " + m.Bar.ViewAs(tempRatio))
	b.WriteString("\n")
	coolWarm := lipgloss.NewStyle().Foreground(SubtleColor).
		Render("  cool ◂" + strings.Repeat(" ", 32) + "▸ warm")
	b.WriteString(coolWarm)
	b.WriteString("\n\n")

	if m.Busy {
		b.WriteString(fmt.Sprintf("  %s Applying...\n", m.Spinner.View()))
	}

	return b.String()
}

// approxKelvin converts a mired value to kelvins. A device reporting a
// zero or negative temperature yields 0 rather than a division by zero.
func approxKelvin(mired int) int {
	if mired <= 0 {
		return 0
	}
	return 1000000 / mired
}
