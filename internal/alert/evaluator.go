// Package alert decides when memory pressure warrants an alert and
// delivers alerts through a notifier and an optional sound.
package alert

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/emuwatch/internal/collector"
)

// MiB is one mebibyte in bytes.
const MiB = 1 << 20

// MaxX86VSS is the address space available to a 32-bit x86 process.
const MaxX86VSS = 4096 * MiB

// Default thresholds.
const (
	DefaultHostFreeThreshold     = 300 * MiB
	DefaultVSSRemainingThreshold = 300 * MiB
)

// DefaultTitle is the notification title for memory alerts.
const DefaultTitle = "emulator memory low"

// Thresholds are the alert trigger points, in bytes.
type Thresholds struct {
	HostFree     int64
	VSSRemaining int64
}

// DefaultThresholds returns the stock thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HostFree:     DefaultHostFreeThreshold,
		VSSRemaining: DefaultVSSRemainingThreshold,
	}
}

// Reading is a chartable value produced by an evaluation, in MiB.
type Reading struct {
	Key   string
	Label string
	MiB   float64
}

// Series keys for readings.
const (
	KeyHostFree       = "host_free"
	keyVSSRemainingAt = "vss_remaining:"
)

// VSSRemainingKey is the series key of a package's remaining VSS.
func VSSRemainingKey(pkg string) string {
	return keyVSSRemainingAt + pkg
}

// Evaluation is the outcome of checking one sample.
type Evaluation struct {
	// Lines are status lines, in display order.
	Lines []string
	// Conditions are the alert-worthy findings; empty when all is well.
	Conditions []string
	Readings   []Reading
}

// AlertWorthy reports whether any condition fired.
func (e Evaluation) AlertWorthy() bool {
	return len(e.Conditions) > 0
}

// Message joins the conditions into one alert. ok is false when nothing
// fired.
func (e Evaluation) Message(title string) (msg Message, ok bool) {
	if !e.AlertWorthy() {
		return Message{}, false
	}
	return Message{Title: title, Body: strings.Join(e.Conditions, "; ")}, true
}

// Evaluator compares samples against thresholds.
type Evaluator struct {
	Thresholds Thresholds
	// Debug makes every present metric alert-worthy.
	Debug bool
}

// NewEvaluator creates an evaluator with the given thresholds.
func NewEvaluator(th Thresholds, debug bool) *Evaluator {
	return &Evaluator{Thresholds: th, Debug: debug}
}

func mib(b int64) string {
	return fmt.Sprintf("%.0f MiB", float64(b)/MiB)
}

// Evaluate checks a sample. Absent metrics never fire.
func (e *Evaluator) Evaluate(s collector.Sample) Evaluation {
	var ev Evaluation

	if s.HostFree != nil {
		free := *s.HostFree
		if e.Debug || free < e.Thresholds.HostFree {
			ev.Conditions = append(ev.Conditions, "emulator free memory is "+mib(free))
		}
		ev.Lines = append(ev.Lines, "free memory: "+mib(free))
		ev.Readings = append(ev.Readings, Reading{
			Key:   KeyHostFree,
			Label: "free memory",
			MiB:   float64(free) / MiB,
		})
	}

	for _, p := range s.Packages {
		if !p.ABI.Is32Bit() {
			continue
		}
		ev.Lines = append(ev.Lines, fmt.Sprintf("warning: %s is running as 32-bit x86, virtual memory is capped at 4 GiB", p.Name))
		if p.VSS == nil {
			continue
		}
		remaining := int64(MaxX86VSS) - *p.VSS
		if e.Debug || remaining < e.Thresholds.VSSRemaining {
			ev.Conditions = append(ev.Conditions, "game process has "+mib(remaining)+" of virtual memory left")
		}
		ev.Lines = append(ev.Lines, fmt.Sprintf("%s remaining virtual memory: %s", p.Name, mib(remaining)))
		ev.Readings = append(ev.Readings, Reading{
			Key:   VSSRemainingKey(p.Name),
			Label: p.Name,
			MiB:   float64(remaining) / MiB,
		})
	}

	return ev
}
