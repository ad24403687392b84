package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/keylightctl/keylightctl/internal/config"
	"github.com/keylightctl/keylightctl/internal/discovery"
	"github.com/keylightctl/keylightctl/internal/keylight"
)

// Messages for async operations
type scanStartMsg struct{}
type scanResultsMsg struct {
	outcomes []discovery.Outcome
	err      error
}

// discoveryKeyMap defines key bindings for the discovery screen
type discoveryKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k discoveryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Rescan, k.Manual, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k discoveryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Rescan, k.Manual, k.Quit},
	}
}

// manualModeKeyMap defines key bindings for manual IP entry mode
type manualModeKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (m manualModeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{m.Confirm, m.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (m manualModeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.Confirm, m.Cancel},
	}
}

// scanningKeyMap defines key bindings while the first scan is in flight
type scanningKeyMap struct {
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (s scanningKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{s.Manual, s.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (s scanningKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{s.Manual, s.Quit},
	}
}

// lightItem wraps a Device for use with bubbles/list
type lightItem struct {
	device *keylight.Device
}

// Implement list.Item interface
func (l lightItem) FilterValue() string {
	// Filter by name, IP, or hardware id
	return l.device.Name + " " + l.device.IP + " " + l.device.ID
}

// Title returns the light's display name
func (l lightItem) Title() string {
	return l.device.Name
}

// Description returns light details for list display
func (l lightItem) Description() string {
	model := l.device.Model
	if model == "" {
		model = "Unknown model"
	}
	return fmt.Sprintf("%s:%d • %s", l.device.IP, l.device.Port, model)
}

// lightDelegate is a custom list delegate for rendering light cards
type lightDelegate struct {
	width int
}

func (d lightDelegate) Height() int { return 7 } // Card height including borders

func (d lightDelegate) Spacing() int { return 1 }

func (d lightDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d lightDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	li, ok := item.(lightItem)
	if !ok {
		return
	}

	device := li.device
	selected := index == m.Index()

	var content strings.Builder

	// Add selection indicator to the light name
	if selected {
		content.WriteString(SelectedMenuItemStyle.Render("→ " + device.Name))
	} else {
		content.WriteString("  " + device.Name)
	}
	content.WriteString("\n\n")

	// Light details
	content.WriteString(fmt.Sprintf("  IP:    %s:%d\n", device.IP, device.Port))
	model := device.Model
	if model == "" {
		model = "Unknown"
	}
	content.WriteString(fmt.Sprintf("  Model: %s\n", model))
	if device.ID != "" {
		content.WriteString(fmt.Sprintf("  ID:    %s", device.ID))
	}

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(1, 2).
		MarginLeft(2)

	// Calculate card width (leave room for margins and borders)
	cardWidth := d.width - 6
	if cardWidth < MinTerminalWidth-6 {
		cardWidth = MinTerminalWidth - 6
	}
	if cardWidth > MaxContentWidth-6 {
		cardWidth = MaxContentWidth - 6
	}

	cardStyle = cardStyle.Width(cardWidth)

	// Highlight selected card
	if selected {
		cardStyle = cardStyle.BorderForeground(HighlightColor)
	}

	fmt.Fprint(w, cardStyle.Render(content.String()))
}

// DiscoveryModel represents the light discovery screen state
type DiscoveryModel struct {
	// Discovery state
	Scanning   bool
	LightList  list.Model
	Selected   bool
	Err        error
	Unresolved int

	// Manual IP entry state
	ManualMode bool
	IPInput    textinput.Model

	// UI state
	Width         int
	Height        int
	Spinner       spinner.Model
	ScanStartTime time.Time
	Help          help.Model
	Keys          discoveryKeyMap
	ManualKeys    manualModeKeyMap
	ScanningKeys  scanningKeyMap

	// Background discovery. The poller publishes every pass, outcomes
	// and failures alike, to results until cancel stops it.
	results  chan discovery.PollResult
	poller   *discovery.Poller
	cancel   context.CancelFunc
	registry *config.Registry
}

// NewDiscoveryModel creates a new discovery screen model
func NewDiscoveryModel() DiscoveryModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	// Initialize IP input
	ipInput := textinput.New()
	ipInput.Placeholder = "192.168.1.25"
	ipInput.CharLimit = 15 // Max length for IPv4 address
	ipInput.Width = 30

	// Initialize light list with custom delegate
	delegate := lightDelegate{width: MinTerminalWidth}
	lightList := list.New([]list.Item{}, delegate, 0, 0)
	lightList.Title = "Discovered Lights"
	lightList.SetShowStatusBar(false)
	lightList.SetFilteringEnabled(true)
	lightList.Styles.Title = TitleStyle

	// Initialize help
	h := help.New()

	keys := discoveryKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "control"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "manual IP"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
	}

	manualKeys := manualModeKeyMap{
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}

	scanningKeys := scanningKeyMap{
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "manual IP"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
	}

	// Nicknames from the config registry override advertised names.
	// A load failure just means advertised names are shown.
	registry, err := config.LoadRegistry()
	if err != nil {
		registry = nil
	}

	results := make(chan discovery.PollResult, 1)
	ctx, cancel := context.WithCancel(context.Background())
	poller := discovery.NewPoller(
		discovery.NewBrowser(discovery.DefaultScanTimeout),
		discovery.DefaultPollInterval,
		results,
	)
	poller.Start(ctx)

	return DiscoveryModel{
		Scanning:     true,
		LightList:    lightList,
		IPInput:      ipInput,
		Spinner:      s,
		Help:         h,
		Keys:         keys,
		ManualKeys:   manualKeys,
		ScanningKeys: scanningKeys,
		results:      results,
		poller:       poller,
		cancel:       cancel,
		registry:     registry,
	}
}

// Init initializes the discovery model
func (m DiscoveryModel) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		m.waitForResults(),
		m.Spinner.Tick,
	)
}

// waitForResults blocks until the background poller publishes the next
// discovery pass
func (m DiscoveryModel) waitForResults() tea.Cmd {
	results := m.results
	return func() tea.Msg {
		result, ok := <-results
		if !ok {
			return nil
		}
		return scanResultsMsg{outcomes: result.Outcomes, err: result.Err}
	}
}

// Stop cancels the background poller. Called when the screen is left.
func (m DiscoveryModel) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Update handles messages and updates the model
func (m DiscoveryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.ManualMode {
			return m.updateManualMode(msg)
		}
		return m.updateNormalMode(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		// Update list size
		m.LightList.SetWidth(msg.Width - 4)
		m.LightList.SetHeight(msg.Height - 10) // Leave room for header/footer

	case scanStartMsg:
		m.ScanStartTime = time.Now()

	case scanResultsMsg:
		m.Scanning = false
		m.Err = msg.err
		if msg.err == nil {
			m.setOutcomes(msg.outcomes)
		}
		// Keep listening for the next pass
		return m, m.waitForResults()

	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	// Update list if not in manual mode or scanning
	if !m.ManualMode && !m.Scanning {
		m.LightList, cmd = m.LightList.Update(msg)
	}

	return m, cmd
}

// setOutcomes replaces the list contents with the latest discovery pass,
// preserving the current selection by hardware id where possible
func (m *DiscoveryModel) setOutcomes(outcomes []discovery.Outcome) {
	var selectedID string
	if item, ok := m.LightList.SelectedItem().(lightItem); ok {
		selectedID = item.device.ID
	}

	records := discovery.Records(outcomes)
	m.Unresolved = len(outcomes) - len(records)

	items := make([]list.Item, len(records))
	selectIndex := 0
	for i, record := range records {
		device := keylight.DeviceFromRecord(record)
		if m.registry != nil {
			device.Name = m.registry.DisplayName(device.ID, device.Name)
		}
		items[i] = lightItem{device: device}
		if selectedID != "" && device.ID == selectedID {
			selectIndex = i
		}
	}
	m.LightList.SetItems(items)
	if len(items) > 0 {
		m.LightList.Select(selectIndex)
	}
}

// updateNormalMode handles keyboard input in normal list mode
func (m DiscoveryModel) updateNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.Stop()
		return m, tea.Quit

	case "enter", " ":
		// Get selected light from list
		if selectedItem := m.LightList.SelectedItem(); selectedItem != nil {
			m.Selected = true
			return m, nil
		}

	case "r":
		// Show the scanning indicator until the next poller pass lands
		m.Scanning = true
		m.ScanStartTime = time.Now()
		return m, m.Spinner.Tick

	case "m":
		// Switch to manual IP entry mode
		m.ManualMode = true
		m.IPInput.SetValue("")
		m.IPInput.Focus()
	}

	// Let the list handle up/down navigation
	return m, nil
}

// updateManualMode handles keyboard input in manual IP entry mode
func (m DiscoveryModel) updateManualMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "ctrl+c", "esc":
		// Cancel manual entry
		m.ManualMode = false
		m.IPInput.SetValue("")
		m.IPInput.Blur()
		return m, nil

	case "enter":
		value := m.IPInput.Value()
		if value != "" {
			// Create a light entry from the manual IP
			device := keylight.NewDevice(value, keylight.DefaultPort)
			newItem := lightItem{device: device}
			items := append([]list.Item{newItem}, m.LightList.Items()...)
			m.LightList.SetItems(items)
			m.LightList.Select(0) // Select the newly added item
			m.ManualMode = false
			m.IPInput.SetValue("")
			m.IPInput.Blur()
			return m, nil
		}
	}

	// Update the text input
	m.IPInput, cmd = m.IPInput.Update(msg)
	return m, cmd
}

// View renders the discovery screen
func (m DiscoveryModel) View() string {
	// Use default width if not set
	width := m.Width
	if width == 0 {
		width = MinTerminalWidth
	}

	var content string
	if m.ManualMode {
		content = m.renderManualEntry()
	} else if m.Scanning {
		content = m.renderScanning(width)
	} else {
		content = m.renderResults()
	}

	// Context-sensitive help text using bubbles/help
	var helpText string
	if m.ManualMode {
		helpText = m.Help.View(m.ManualKeys)
	} else if m.Scanning {
		helpText = m.Help.View(m.ScanningKeys)
	} else {
		helpText = m.Help.View(m.Keys)
	}

	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

// renderScanning renders a centered scanning indicator
func (m DiscoveryModel) renderScanning(width int) string {
	elapsed := int(time.Since(m.ScanStartTime).Seconds())

	title := fmt.Sprintf("%s SEARCHING FOR LIGHTS", m.Spinner.View())
	subtitle := "Browsing the network for Key Light accessories..."
	elapsedText := fmt.Sprintf("Elapsed: %ds", elapsed)

	content := lipgloss.JoinVertical(lipgloss.Center,
		"", // Top spacing
		TitleStyle.Render(title),
		"",
		SubtitleStyle.Render(subtitle),
		"",
		SubtitleStyle.Render(elapsedText),
		"", // Bottom spacing
	)

	return lipgloss.Place(width, 0, lipgloss.Center, lipgloss.Top, content)
}

// renderResults renders the light list or a "no lights found" message
func (m DiscoveryModel) renderResults() string {
	var b strings.Builder

	b.WriteString("\n")

	if m.Err != nil {
		b.WriteString(RenderError(fmt.Sprintf("Scan failed: %v", m.Err)))
		b.WriteString("\n\n")
		b.WriteString(m.renderTroubleshooting())

	} else if len(m.LightList.Items()) == 0 {
		b.WriteString("  ")
		warningStyle := lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
		b.WriteString(warningStyle.Render("⚠ No lights found on your network"))
		b.WriteString("\n\n")
		b.WriteString(m.renderTroubleshooting())

	} else {
		b.WriteString(m.LightList.View())
		if m.Unresolved > 0 {
			b.WriteString("\n")
			b.WriteString(SubtitleStyle.Render(
				fmt.Sprintf("  %d advertisement(s) seen but not resolved", m.Unresolved)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m DiscoveryModel) renderTroubleshooting() string {
	var b strings.Builder
	b.WriteString("  Troubleshooting:\n")
	b.WriteString("    • Ensure the light is powered on\n")
	b.WriteString("    • Check that it is on the same network segment\n")
	b.WriteString("    • Verify multicast traffic is not filtered\n")
	b.WriteString("    • Use 'm' to enter an IP address manually\n")
	b.WriteString("\n")
	return b.String()
}

// renderManualEntry renders the manual IP entry dialog
func (m DiscoveryModel) renderManualEntry() string {
	var b strings.Builder

	b.WriteString(RenderSubtitle("Enter the light's IP address"))
	b.WriteString("\n\n")

	b.WriteString("  IP Address: ")
	b.WriteString(m.IPInput.View())
	b.WriteString("\n\n")

	return b.String()
}

// GetSelectedDevice returns the selected light (if any)
func (m DiscoveryModel) GetSelectedDevice() *keylight.Device {
	if m.Selected {
		if selectedItem := m.LightList.SelectedItem(); selectedItem != nil {
			if item, ok := selectedItem.(lightItem); ok {
				return item.device
			}
		}
	}
	return nil
}
