package cli

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/rileyhilliard/emuwatch/internal/alert"
	"github.com/rileyhilliard/emuwatch/internal/errors"
	"github.com/rileyhilliard/emuwatch/internal/logger"
	"github.com/rileyhilliard/emuwatch/internal/monitor"
	"github.com/rileyhilliard/emuwatch/internal/scheduler"
	"github.com/rileyhilliard/emuwatch/internal/ui"
)

// watchCommand monitors the emulator until ctx is cancelled or the user
// quits the dashboard.
func watchCommand(ctx context.Context, flags WatchFlags) error {
	cfg, path, err := loadConfig(flags)
	if err != nil {
		return err
	}

	dashboard := !flags.NoTUI && ui.IsTerminal(os.Stdin) && ui.IsTerminal(os.Stdout)
	logs, err := initLogging(cfg.Log, dashboard)
	if err != nil {
		return err
	}
	defer logger.Close()

	if dashboard {
		banner := &monitor.BannerNotifier{}
		s := NewSession(cfg, path, sessionDeps{Logs: logs, Extra: []alert.Notifier{banner}})
		defer s.Close() //nolint:errcheck // transport close errors are not actionable on exit
		return runDashboard(ctx, s, banner)
	}

	s := NewSession(cfg, path, sessionDeps{Logs: logs})
	defer s.Close() //nolint:errcheck // transport close errors are not actionable on exit
	return runPlain(ctx, s, termenv.NewOutput(os.Stdout))
}

// runDashboard runs the scheduler behind the full-screen dashboard.
func runDashboard(ctx context.Context, s *Session, banner *monitor.BannerNotifier) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := s.Scheduler()
	model := monitor.NewModel(sched.StatusUpdates(), sched.ChartUpdates(), monitor.Options{
		Controls:      s.Limiter,
		OnAudioChange: s.Settings.SetAudio,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	banner.Attach(p.Send)
	defer banner.Attach(nil)

	schedErr := make(chan error, 1)
	go func() {
		schedErr <- sched.Run(ctx)
	}()

	_, err := p.Run()
	cancel()
	runErr := <-schedErr

	if err != nil && !stderrors.Is(err, tea.ErrProgramKilled) && !stderrors.Is(err, tea.ErrInterrupted) {
		return errors.WrapWithCode(err, errors.ErrExec,
			"Dashboard stopped unexpectedly",
			"Try 'emuwatch watch --no-tui' for plain output.")
	}
	return runErr
}

// runPlain prints each status block when it differs from the last one.
// Used when stdout is not a terminal or with --no-tui.
func runPlain(ctx context.Context, s *Session, out *termenv.Output) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := s.Scheduler()
	schedErr := make(chan error, 1)
	go func() {
		schedErr <- sched.Run(ctx)
	}()

	printStatuses(ctx, sched.StatusUpdates(), out)
	cancel()
	return <-schedErr
}

// printStatuses writes statuses from ch until ctx ends. Repeats are
// skipped unless the status raised an alert.
func printStatuses(ctx context.Context, ch <-chan scheduler.Status, out *termenv.Output) {
	var last string
	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-ch:
			if !ok {
				return
			}
			text := st.Text()
			if text == last && !st.Alerting {
				continue
			}
			last = text
			writeStatus(out, st)
		}
	}
}

// writeStatus writes one status block, with warning lines in red.
func writeStatus(w io.Writer, st scheduler.Status) {
	out, ok := w.(*termenv.Output)
	if !ok {
		out = termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))
	}
	for _, line := range st.Lines {
		styled := out.String(line)
		if strings.HasPrefix(line, "warning:") {
			styled = styled.Foreground(out.Color("1")).Bold()
		}
		_, _ = io.WriteString(out, styled.String()+"\n")
	}
}
