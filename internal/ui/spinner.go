package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// SpinnerState is where a spinner is in its life.
type SpinnerState int

const (
	SpinnerPending SpinnerState = iota
	SpinnerInProgress
	SpinnerSuccess
	SpinnerFailed
	SpinnerSkipped
)

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

const spinnerInterval = 80 * time.Millisecond

// Spinner animates a single line while a slow adb call runs, then
// replaces it with a final status and the elapsed time.
type Spinner struct {
	mu      sync.Mutex
	out     io.Writer
	label   string
	state   SpinnerState
	frame   int
	started time.Time
	width   int

	stop chan struct{}
	done chan struct{}
}

// NewSpinner creates a spinner that draws on out.
func NewSpinner(out io.Writer, label string) *Spinner {
	return &Spinner{out: out, label: label}
}

// Start begins animating. Calling Start twice does nothing.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.state == SpinnerInProgress {
		s.mu.Unlock()
		return
	}
	s.state = SpinnerInProgress
	s.started = time.Now()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.drawLocked()
	s.mu.Unlock()

	go s.animate()
}

func (s *Spinner) animate() {
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()
	defer close(s.done)

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(spinnerFrames)
			s.drawLocked()
			s.mu.Unlock()
		}
	}
}

func (s *Spinner) drawLocked() {
	color := GradientColors[(s.frame/2)%len(GradientColors)]
	line := lipgloss.NewStyle().Foreground(color).Render(spinnerFrames[s.frame]) + " " + s.label + "..."
	s.clearLocked()
	fmt.Fprint(s.out, line)
	s.width = lipgloss.Width(line)
}

func (s *Spinner) clearLocked() {
	if s.width > 0 {
		fmt.Fprint(s.out, "\r"+strings.Repeat(" ", s.width)+"\r")
		s.width = 0
	}
}

// finish stops the animation and prints the final line.
func (s *Spinner) finish(state SpinnerState, symbol string, style lipgloss.Style) {
	s.mu.Lock()
	running := s.state == SpinnerInProgress
	s.mu.Unlock()
	if running {
		close(s.stop)
		<-s.done
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.clearLocked()
	elapsed := ""
	if !s.started.IsZero() {
		elapsed = " " + MutedStyle.Render(formatDuration(time.Since(s.started)))
	}
	fmt.Fprintf(s.out, "%s %s%s\n", style.Render(symbol), s.label, elapsed)
}

// Success ends the spinner with a check mark.
func (s *Spinner) Success() { s.finish(SpinnerSuccess, SymbolSuccess, SuccessStyle) }

// Fail ends the spinner with a cross.
func (s *Spinner) Fail() { s.finish(SpinnerFailed, SymbolFail, ErrorStyle) }

// Skip ends the spinner as skipped.
func (s *Spinner) Skip() { s.finish(SpinnerSkipped, SymbolSkipped, WarningStyle) }

// SetLabel changes the text shown next to the spinner.
func (s *Spinner) SetLabel(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label = label
}

// Label returns the current text.
func (s *Spinner) Label() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.label
}

// State returns the current state.
func (s *Spinner) State() SpinnerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// formatDuration formats a duration for display (e.g., "0.3s", "1.2s").
func formatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}
