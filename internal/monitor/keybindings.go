package monitor

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap holds the dashboard bindings. It implements help.KeyMap.
type KeyMap struct {
	Quit  key.Binding
	Mute  key.Binding
	Audio key.Binding
	Test  key.Binding
	Help  key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute alerts"),
		),
		Audio: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle sound"),
		),
		Test: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "test alert"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
	}
}

// ShortHelp is shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Mute, k.Audio, k.Help}
}

// FullHelp is shown after pressing ?.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Mute, k.Audio, k.Test},
		{k.Help, k.Quit},
	}
}

// HandleKeyMsg processes keyboard input and returns updated model state and command.
// Returns true if the key was handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return true, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return true, nil

	case key.Matches(msg, m.keys.Mute):
		if m.controls == nil {
			return true, nil
		}
		if m.controls.ToggleMuted() {
			m.flash("alerts muted")
		} else {
			m.flash("alerts unmuted")
		}
		return true, nil

	case key.Matches(msg, m.keys.Audio):
		return true, m.toggleAudio()

	case key.Matches(msg, m.keys.Test):
		if m.controls == nil {
			return true, nil
		}
		return true, m.testAlertCmd()
	}

	return false, nil
}
