package scheduler

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rileyhilliard/emuwatch/internal/collector"
	"github.com/rileyhilliard/emuwatch/internal/series"
)

// SearchingLine is the status shown while no device is selected.
const SearchingLine = "searching for a running emulator..."

const separator = "----------------------------------------"

// Status is the text shown in the status panel. It is replaced
// wholesale every check cycle.
type Status struct {
	Device string
	Lines  []string
	// Alerting is set when the cycle produced an alert.
	Alerting bool
	At       time.Time
}

// Text joins the lines with newlines.
func (s Status) Text() string {
	return strings.Join(s.Lines, "\n")
}

// NothingToWatchLine is shown when the device answered but neither free
// memory nor a 32-bit package was found.
const NothingToWatchLine = "no watched package is running as 32-bit x86"

// FrameStatus wraps evaluation lines with the device header and
// separators.
func FrameStatus(id string, lines []string) []string {
	framed := make([]string, 0, len(lines)+3)
	framed = append(framed, "current emulator: "+id, separator)
	framed = append(framed, lines...)
	return append(framed, separator)
}

// SampleStatus frames the lines evaluated from sample. A sample with no
// metric at all means the device gave nothing usable.
func SampleStatus(id string, sample collector.Sample, lines []string) []string {
	switch {
	case sample.Empty():
		lines = []string{"emulator " + id + " gave no valid response"}
	case len(lines) == 0:
		lines = []string{NothingToWatchLine}
	}
	return FrameStatus(id, lines)
}

// ChartSeries is one line on a chart.
type ChartSeries struct {
	Key   string
	Label string
	// Axis is 0 for the host memory axis and 1 for the per-process axis.
	Axis   int
	Points []series.Point
}

// ChartData is everything the display needs to draw the charts.
type ChartData struct {
	XLabel string
	YLabel string
	Series []ChartSeries
}

// AxisMax returns the largest value plotted on axis, or 0.
func (c ChartData) AxisMax(axis int) float64 {
	var top float64
	for _, s := range c.Series {
		if s.Axis != axis {
			continue
		}
		for _, p := range s.Points {
			top = max(top, p.Value)
		}
	}
	return top
}

// State is shared between the loops and readers outside the scheduler.
type State struct {
	running atomic.Bool
	status  atomic.Pointer[Status]

	mu     sync.RWMutex
	labels map[string]string
}

func newState() *State {
	s := &State{labels: make(map[string]string)}
	s.status.Store(&Status{Lines: []string{SearchingLine}})
	return s
}

// Running reports whether the loops are active.
func (s *State) Running() bool {
	return s.running.Load()
}

// Status returns the latest status.
func (s *State) Status() Status {
	return *s.status.Load()
}

func (s *State) setStatus(st Status) {
	s.status.Store(&st)
}

func (s *State) setLabel(key, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labels[key] = label
}

func (s *State) label(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := s.labels[key]; ok {
		return l
	}
	return key
}

// publish delivers v on a capacity-1 channel, replacing any value the
// reader hasn't taken yet. It never blocks.
func publish[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
