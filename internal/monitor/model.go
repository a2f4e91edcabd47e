package monitor

import (
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/emuwatch/internal/errors"
	"github.com/rileyhilliard/emuwatch/internal/scheduler"
)

// How long banners stay up.
const (
	AlertBannerDuration = 5 * time.Second
	InfoBannerDuration  = 3 * time.Second
)

// clockInterval ages the banner and the "updated" label.
const clockInterval = time.Second

// Controls is the alert state the dashboard can change. *alert.Limiter
// satisfies it.
type Controls interface {
	ToggleMuted() bool
	Muted() bool
	Audio() bool
	SetAudio(enabled bool)
	Test() bool
}

// Options configures a Model.
type Options struct {
	Controls Controls

	// OnAudioChange persists the sound toggle. Runs off the UI goroutine.
	OnAudioChange func(enabled bool) error

	// Now defaults to time.Now.
	Now func() time.Time
}

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	status scheduler.Status
	chart  scheduler.ChartData

	statusCh <-chan scheduler.Status
	chartCh  <-chan scheduler.ChartData

	controls Controls
	onAudio  func(bool) error
	now      func() time.Time

	keys KeyMap
	help help.Model

	banner   banner
	width    int
	height   int
	quitting bool
}

type banner struct {
	text  string
	alert bool
	until time.Time
}

// statusMsg carries a new status from the scheduler.
type statusMsg scheduler.Status

// chartMsg carries new chart data from the scheduler.
type chartMsg scheduler.ChartData

// clockMsg signals a periodic redraw.
type clockMsg time.Time

// BannerMsg shows an alert across the top of the dashboard.
type BannerMsg struct {
	Title string
	Body  string
}

// audioSavedMsg reports the outcome of persisting the sound toggle.
type audioSavedMsg struct {
	enabled bool
	err     error
}

// testDoneMsg reports whether the test alert played a sound.
type testDoneMsg struct {
	sound bool
}

// NewModel creates a dashboard that renders what arrives on the two
// scheduler channels.
func NewModel(statusCh <-chan scheduler.Status, chartCh <-chan scheduler.ChartData, opts Options) Model {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return Model{
		status:   scheduler.Status{Lines: []string{scheduler.SearchingLine}},
		statusCh: statusCh,
		chartCh:  chartCh,
		controls: opts.Controls,
		onAudio:  opts.OnAudioChange,
		now:      now,
		keys:     DefaultKeyMap(),
		help:     help.New(),
	}
}

// Init starts waiting on both channels and the redraw clock.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitStatus(m.statusCh),
		waitChart(m.chartCh),
		clockCmd(),
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if handled, cmd := m.HandleKeyMsg(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case statusMsg:
		m.status = scheduler.Status(msg)
		return m, waitStatus(m.statusCh)

	case chartMsg:
		m.chart = scheduler.ChartData(msg)
		return m, waitChart(m.chartCh)

	case BannerMsg:
		text := msg.Body
		if msg.Title != "" {
			text = msg.Title + ": " + msg.Body
		}
		m.banner = banner{text: text, alert: true, until: m.now().Add(AlertBannerDuration)}

	case audioSavedMsg:
		if msg.err != nil {
			m.flash("could not save sound setting: " + errors.Short(msg.err))
		}

	case testDoneMsg:
		if msg.sound {
			m.flash("test alert sent with sound")
		} else {
			m.flash("test alert sent")
		}

	case clockMsg:
		if m.banner.text != "" && !m.now().Before(m.banner.until) {
			m.banner = banner{}
		}
		return m, clockCmd()
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderDashboard()
}

// Status returns the status currently shown.
func (m Model) Status() scheduler.Status {
	return m.status
}

// Chart returns the chart data currently shown.
func (m Model) Chart() scheduler.ChartData {
	return m.chart
}

// Banner returns the active banner text, or "".
func (m Model) Banner() string {
	return m.banner.text
}

// SecondsSinceUpdate returns seconds since the last status, or -1 before
// the first one.
func (m Model) SecondsSinceUpdate() int {
	if m.status.At.IsZero() {
		return -1
	}
	return int(m.now().Sub(m.status.At).Seconds())
}

func (m *Model) flash(text string) {
	m.banner = banner{text: text, until: m.now().Add(InfoBannerDuration)}
}

func (m *Model) toggleAudio() tea.Cmd {
	if m.controls == nil {
		return nil
	}
	next := !m.controls.Audio()
	m.controls.SetAudio(next)
	if next {
		m.flash("alert sound on")
	} else {
		m.flash("alert sound off")
	}

	persist := m.onAudio
	if persist == nil {
		return nil
	}
	return func() tea.Msg {
		return audioSavedMsg{enabled: next, err: persist(next)}
	}
}

func (m Model) testAlertCmd() tea.Cmd {
	c := m.controls
	return func() tea.Msg {
		return testDoneMsg{sound: c.Test()}
	}
}

// waitStatus blocks until the scheduler publishes a status.
func waitStatus(ch <-chan scheduler.Status) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return nil
		}
		return statusMsg(st)
	}
}

// waitChart blocks until the scheduler publishes chart data.
func waitChart(ch <-chan scheduler.ChartData) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		data, ok := <-ch
		if !ok {
			return nil
		}
		return chartMsg(data)
	}
}

func clockCmd() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

// BannerNotifier shows alerts inside the running dashboard. It does
// nothing until Attach is called with the program's Send.
type BannerNotifier struct {
	send atomic.Pointer[func(tea.Msg)]
}

// Attach routes banners to send, usually (*tea.Program).Send.
func (b *BannerNotifier) Attach(send func(tea.Msg)) {
	if send == nil {
		b.send.Store(nil)
		return
	}
	b.send.Store(&send)
}

// Notify implements alert.Notifier.
func (b *BannerNotifier) Notify(title, body string) {
	if send := b.send.Load(); send != nil {
		(*send)(BannerMsg{Title: title, Body: body})
	}
}
