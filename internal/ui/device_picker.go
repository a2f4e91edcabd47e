package ui

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/emuwatch/internal/errors"
	"golang.org/x/term"
)

// DeviceInfo describes a device offered in the picker.
type DeviceInfo struct {
	Serial   string
	State    string
	Emulator string // known emulator at this address, if any
}

// deviceItem implements list.Item for the Bubbles list component.
type deviceItem struct {
	device DeviceInfo
}

func (i deviceItem) Title() string {
	return i.device.Serial
}

func (i deviceItem) Description() string {
	var parts []string
	if i.device.Emulator != "" {
		parts = append(parts, i.device.Emulator)
	}
	if i.device.State != "" {
		parts = append(parts, i.device.State)
	}
	return strings.Join(parts, " | ")
}

func (i deviceItem) FilterValue() string {
	return i.device.Serial + " " + i.device.Emulator
}

// DevicePickerModel is a Bubble Tea model for choosing one device.
type DevicePickerModel struct {
	list     list.Model
	devices  []DeviceInfo
	selected *DeviceInfo
	quitting bool
}

var devicePickerKeys = struct {
	Enter key.Binding
	Quit  key.Binding
}{
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "probe"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q/esc", "cancel"),
	),
}

// NewDevicePickerModel creates a picker over devices.
func NewDevicePickerModel(devices []DeviceInfo) DevicePickerModel {
	items := make([]list.Item, len(devices))
	for i, d := range devices {
		items[i] = deviceItem{device: d}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(ColorPrimary).
		BorderForeground(ColorNeonPink)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(ColorMuted).
		BorderForeground(ColorNeonPink)

	l := list.New(items, delegate, 60, 14)
	l.Title = "Select a device"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(len(devices) > 5)
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(ColorNeonPink).
		Bold(true).
		Padding(0, 0, 1, 0)
	l.Styles.HelpStyle = MutedStyle

	return DevicePickerModel{list: l, devices: devices}
}

// Init implements tea.Model.
func (m DevicePickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m DevicePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, devicePickerKeys.Enter):
			if item, ok := m.list.SelectedItem().(deviceItem); ok {
				m.selected = &item.device
			}
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, devicePickerKeys.Quit):
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, min(msg.Height-2, 14))
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m DevicePickerModel) View() string {
	if m.quitting {
		return ""
	}
	return m.list.View()
}

// Selected returns the chosen device, or nil if cancelled.
func (m DevicePickerModel) Selected() *DeviceInfo {
	return m.selected
}

// PickDevice asks the user to choose a device on the terminal. A single
// device is returned without asking. Returns nil when the user cancels.
func PickDevice(devices []DeviceInfo) (*DeviceInfo, error) {
	return PickDeviceWithIO(devices, os.Stdout, os.Stdin)
}

// PickDeviceWithIO runs the picker on custom I/O.
func PickDeviceWithIO(devices []DeviceInfo, output io.Writer, input io.Reader) (*DeviceInfo, error) {
	if len(devices) == 0 {
		return nil, errors.New(errors.ErrDevice,
			"No devices to pick from",
			"Start the emulator, or run 'emuwatch devices --connect' to attach to it.")
	}
	if len(devices) == 1 {
		return &devices[0], nil
	}

	p := tea.NewProgram(NewDevicePickerModel(devices), tea.WithOutput(output), tea.WithInput(input))
	final, err := p.Run()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrDevice,
			"Device picker failed",
			"Pass the device serial directly: emuwatch probe <serial>")
	}
	if m, ok := final.(DevicePickerModel); ok {
		return m.Selected(), nil
	}
	return nil, nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
