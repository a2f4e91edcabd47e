package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/emuwatch/internal/doctor"
	"github.com/rileyhilliard/emuwatch/internal/errors"
	"github.com/rileyhilliard/emuwatch/internal/ui"
)

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	AllClear bool `json:"all_clear"`
}

// doctorChecks builds the checks for s. A nil session, meaning the config
// couldn't be loaded, only gets the config checks.
func doctorChecks(s *Session) []doctor.Check {
	if s == nil {
		return doctor.NewChecks(doctor.Options{ConfigPath: Config()})
	}
	return doctor.NewChecks(doctor.Options{
		ConfigPath:   Config(),
		SettingsPath: s.Settings.Path(),
		SSHHost:      s.Config.Transport.SSHHost,
		ADB:          &doctor.ADBCheck{Transport: s.Transport, Where: s.Config.Transport.SSHHost},
		Registry:     s.Registry,
		Collector:    s.Collector,
		Packages:     s.Collector.Packages(),
	})
}

// doctorCommand runs the diagnostics and reports them. Any failing check
// makes the command exit 1.
func doctorCommand(ctx context.Context, s *Session, out io.Writer, jsonOut bool) error {
	results := doctor.RunAll(ctx, doctorChecks(s))

	var err error
	if jsonOut {
		err = WriteJSONSuccess(out, buildDoctorOutput(results))
	} else {
		writeDoctorText(out, results)
	}
	if err != nil {
		return err
	}
	if doctor.HasFailures(results) {
		return errors.NewExitError(1)
	}
	return nil
}

func buildDoctorOutput(results []doctor.CheckResult) DoctorOutput {
	output := DoctorOutput{Categories: []CategoryOutput{}}
	for _, cat := range doctor.Categories {
		var inCat []doctor.CheckResult
		for _, r := range results {
			if r.Category == cat {
				inCat = append(inCat, r)
			}
		}
		if len(inCat) > 0 {
			output.Categories = append(output.Categories, CategoryOutput{Name: cat, Results: inCat})
		}
	}

	counts := doctor.CountByStatus(results)
	output.Summary = SummaryOutput{
		Pass:     counts[doctor.StatusPass],
		Warn:     counts[doctor.StatusWarn],
		Fail:     counts[doctor.StatusFail],
		AllClear: !doctor.HasIssues(results),
	}
	return output
}

func writeDoctorText(out io.Writer, results []doctor.CheckResult) {
	headerStyle := lipgloss.NewStyle().Bold(true)

	fmt.Fprintln(out)
	fmt.Fprintln(out, headerStyle.Render("emuwatch diagnostic report"))
	fmt.Fprintln(out)

	for _, cat := range doctor.Categories {
		printed := false
		for _, r := range results {
			if r.Category != cat {
				continue
			}
			if !printed {
				fmt.Fprintln(out, headerStyle.Render(cat))
				printed = true
			}
			writeCheckResult(out, r)
		}
		if printed {
			fmt.Fprintln(out)
		}
	}

	fmt.Fprintln(out, strings.Repeat("━", 60))
	fmt.Fprintln(out)
	if doctor.HasIssues(results) {
		fmt.Fprintf(out, "%s %s\n", ui.ErrorStyle.Render(ui.SymbolFail), doctor.Summary(results))
	} else {
		fmt.Fprintf(out, "%s %s\n", ui.SuccessStyle.Render(ui.SymbolSuccess), doctor.Summary(results))
	}
	fmt.Fprintln(out)
}

func writeCheckResult(out io.Writer, r doctor.CheckResult) {
	symbol, style := ui.SymbolComplete, ui.SuccessStyle
	switch r.Status {
	case doctor.StatusWarn:
		symbol, style = ui.SymbolWarning, ui.WarningStyle
	case doctor.StatusFail:
		symbol, style = ui.SymbolFail, ui.ErrorStyle
	}

	fmt.Fprintf(out, "  %s %s\n", style.Render(symbol), r.Message)
	if r.Suggestion == "" || r.Status == doctor.StatusPass {
		return
	}
	for _, line := range strings.Split(r.Suggestion, "\n") {
		fmt.Fprintf(out, "    %s\n", ui.MutedStyle.Render(line))
	}
}
