package cli

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/emuwatch/internal/config"
	"github.com/rileyhilliard/emuwatch/internal/errors"
	"github.com/spf13/cobra"
)

// MinInterval is the shortest accepted check period. Every check runs
// several adb commands; faster than this just queues them up.
const MinInterval = 200 * time.Millisecond

// WatchFlags holds the flags shared by the root command and watch.
type WatchFlags struct {
	ExtendedScan bool
	DebugAlerts  bool
	Interval     string
	NoTUI        bool
}

// AddWatchFlags registers the monitoring flags on a command.
func AddWatchFlags(cmd *cobra.Command, flags *WatchFlags) {
	cmd.Flags().BoolVar(&flags.ExtendedScan, "extended-scan", false, "also try extra MuMu and LDPlayer instance ports")
	cmd.Flags().BoolVar(&flags.DebugAlerts, "debug-alerts", false, "alert on every reading (to test notifications)")
	cmd.Flags().StringVar(&flags.Interval, "interval", "", "check period (e.g., 1s, 500ms)")
	cmd.Flags().BoolVar(&flags.NoTUI, "no-tui", false, "print status lines instead of the dashboard")
}

// Apply overrides cfg with any flags that were set.
func (f WatchFlags) Apply(cfg *config.Config) error {
	if f.ExtendedScan {
		cfg.Devices.ExtendedScan = true
	}
	if f.DebugAlerts {
		cfg.Alerts.Debug = true
	}
	interval, err := ParseInterval(f.Interval)
	if err != nil {
		return err
	}
	if interval > 0 {
		cfg.Schedule.CheckPeriod = interval
	}
	return nil
}

// ParseInterval parses the --interval flag. Returns zero when the flag
// is empty.
func ParseInterval(flag string) (time.Duration, error) {
	if flag == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid interval", flag),
			"Try something like 1s, 2s, or 500ms.")
	}
	if d < MinInterval {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("Interval %s is too short", flag),
			fmt.Sprintf("The minimum is %s; each check runs several adb commands.", MinInterval))
	}
	return d, nil
}
