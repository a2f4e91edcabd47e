// Package doctor runs setup diagnostics: config, adb, SSH, and whether
// the emulator and watched packages are reachable.
package doctor

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/rileyhilliard/emuwatch/internal/errors"
)

// CheckStatus represents the result status of a check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

// String returns a human-readable status string.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalText renders the status by name in JSON output.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckResult contains the outcome of running a check.
type CheckResult struct {
	Name       string      `json:"name"`
	Category   string      `json:"category"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// Check is one diagnostic.
type Check interface {
	Name() string
	// Category groups checks in the report, e.g. "CONFIG" or "ADB".
	Category() string
	Run(ctx context.Context) CheckResult
}

// Categories lists report sections in display order.
var Categories = []string{"CONFIG", "SSH", "ADB", "EMULATOR"}

// RunAll executes checks in order. Later checks may rely on what earlier
// ones found, so they don't run concurrently.
func RunAll(ctx context.Context, checks []Check) []CheckResult {
	results := make([]CheckResult, 0, len(checks))
	for _, c := range checks {
		r := c.Run(ctx)
		r.Name = c.Name()
		r.Category = c.Category()
		results = append(results, r)
	}
	return results
}

// CountByStatus counts results by status.
func CountByStatus(results []CheckResult) map[CheckStatus]int {
	counts := make(map[CheckStatus]int)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}

// HasFailures returns true if any result has a fail status.
func HasFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail {
			return true
		}
	}
	return false
}

// HasIssues returns true if any result has a fail or warn status.
func HasIssues(results []CheckResult) bool {
	for _, r := range results {
		if r.Status != StatusPass {
			return true
		}
	}
	return false
}

// Summary returns a summary string of the check results.
func Summary(results []CheckResult) string {
	if !HasIssues(results) {
		return "Everything looks good"
	}
	counts := CountByStatus(results)
	total := counts[StatusWarn] + counts[StatusFail]
	return fmt.Sprintf("%d issue%s found", total, pluralize(total))
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// failure builds a failing result from err, using the structured
// message and suggestion when err carries them.
func failure(err error, fallback string) CheckResult {
	var e *errors.Error
	if stderrors.As(err, &e) {
		msg := e.Message
		if e.Cause != nil && e.Cause.Error() != msg {
			msg += ": " + e.Cause.Error()
		}
		suggestion := e.Suggestion
		if suggestion == "" {
			suggestion = fallback
		}
		return CheckResult{Status: StatusFail, Message: msg, Suggestion: suggestion}
	}
	return CheckResult{Status: StatusFail, Message: err.Error(), Suggestion: fallback}
}
