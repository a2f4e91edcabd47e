package cli

import (
	"io"

	"github.com/rileyhilliard/emuwatch/internal/adb"
	"github.com/rileyhilliard/emuwatch/internal/alert"
	"github.com/rileyhilliard/emuwatch/internal/collector"
	"github.com/rileyhilliard/emuwatch/internal/config"
	"github.com/rileyhilliard/emuwatch/internal/device"
	"github.com/rileyhilliard/emuwatch/internal/errors"
	"github.com/rileyhilliard/emuwatch/internal/logger"
	"github.com/rileyhilliard/emuwatch/internal/scheduler"
	"github.com/rileyhilliard/emuwatch/internal/series"
	"github.com/rileyhilliard/emuwatch/pkg/sshutil"
)

// Session holds everything a command needs to talk to the emulator:
// the transport, discovery, collection and alerting, all built from one
// Config. Callers must Close it.
type Session struct {
	Config     *config.Config
	ConfigPath string

	Transport adb.Transport
	Registry  *device.Registry
	Tracker   *device.Tracker
	Collector *collector.Collector
	Evaluator *alert.Evaluator
	Limiter   *alert.Limiter
	Settings  *config.Settings
	Store     *series.Store

	logs   func(prefix string) logger.Logger
	closer io.Closer
}

// sessionDeps overrides the parts of a Session that touch the outside
// world. Zero values get the real implementations.
type sessionDeps struct {
	Transport adb.Transport
	Notifier  alert.Notifier
	Player    alert.Player

	// Logs builds the per-component loggers.
	Logs func(prefix string) logger.Logger

	// Extra notifiers run alongside the desktop notification, e.g. the
	// dashboard banner.
	Extra []alert.Notifier
}

// loadConfig resolves the config file, applies flag overrides and
// validates the result. A missing file means defaults.
func loadConfig(flags WatchFlags) (*config.Config, string, error) {
	cfg, path, err := config.Resolve(Config())
	if err != nil {
		return nil, "", err
	}
	if err := flags.Apply(cfg); err != nil {
		return nil, "", err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// newTransport runs adb locally, or over SSH when transport.ssh_host is
// set. The closer is nil for the local transport.
func newTransport(cfg *config.Config) (adb.Transport, io.Closer) {
	if cfg.Transport.SSHHost != "" {
		r := adb.NewRemote(cfg.Transport.SSHHost, cfg.ADB.Path, cfg.ADB.Timeout)
		return r, r
	}
	return adb.NewLocal(cfg.ADB.Path, cfg.ADB.Timeout), nil
}

// NewSession wires the components for cfg.
func NewSession(cfg *config.Config, path string, deps sessionDeps) *Session {
	logs := deps.Logs
	if logs == nil {
		logs = logger.NewEnvLogger
	}

	s := &Session{Config: cfg, ConfigPath: path, logs: logs}

	s.Transport = deps.Transport
	if s.Transport == nil {
		s.Transport, s.closer = newTransport(cfg)
	}

	s.Registry = device.NewRegistry(s.Transport,
		device.Candidates(cfg.Devices.ExtendedScan, cfg.Devices.Endpoints...),
		logs("[device]"))
	s.Tracker = device.NewTracker(s.Registry, logs("[device]"))
	s.Collector = collector.New(s.Transport, cfg.Packages, logs("[collect]"))
	s.Evaluator = alert.NewEvaluator(alert.Thresholds{
		HostFree:     cfg.Thresholds.HostFreeMiB * alert.MiB,
		VSSRemaining: cfg.Thresholds.VSSRemainingMiB * alert.MiB,
	}, cfg.Alerts.Debug)

	alertLog := logs("[alert]")
	notifier := deps.Notifier
	if notifier == nil {
		notifier = alert.NewCommandNotifier(cfg.Alerts.NotifyCommand, alertLog)
	}
	notifiers := alert.MultiNotifier{notifier, alert.LogNotifier{Log: alertLog}}
	notifiers = append(notifiers, deps.Extra...)

	player := deps.Player
	if player == nil {
		player = alert.NewPlayer(cfg.Alerts.SoundCommand, cfg.Alerts.SoundFile, alertLog)
	}

	s.Settings = config.OpenSettings(cfg.SettingsFile, logs("[settings]"))
	s.Limiter = alert.NewLimiter(notifiers, player, cfg.Alerts.Cooldown, alert.WithLogger(alertLog))
	s.Limiter.SetAudio(s.Settings.AudioEnabled())

	s.Store = series.NewStore(cfg.Series.Capacity)
	return s
}

// openSession loads config and builds a Session for a one-shot command.
func openSession(flags WatchFlags) (*Session, error) {
	cfg, path, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	logs, err := initLogging(cfg.Log, false)
	if err != nil {
		return nil, err
	}
	return NewSession(cfg, path, sessionDeps{Logs: logs}), nil
}

// Scheduler builds the monitoring loops over this session.
func (s *Session) Scheduler() *scheduler.Scheduler {
	return scheduler.New(scheduler.Config{
		DevicePeriod: s.Config.Schedule.DevicePeriod,
		CheckPeriod:  s.Config.Schedule.CheckPeriod,
		RenderPeriod: s.Config.Schedule.RenderPeriod,
		AlertTitle:   s.Config.Alerts.Title,
	}, s.Tracker, s.Collector, s.Evaluator, s.Limiter, s.Store,
		scheduler.WithLogger(s.logs("[monitor]")))
}

// Close releases the transport and any SSH agent connection.
func (s *Session) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	sshutil.CloseAgent()
	return err
}

// initLogging configures the shared logger. The dashboard owns the
// terminal, so without a log file its logs are discarded.
func initLogging(cfg logger.Config, dashboard bool) (func(prefix string) logger.Logger, error) {
	if verbose {
		cfg.Level = "debug"
	}
	if err := logger.Init(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't set up logging",
			"Check log.level (debug, info, warn, error) and that log.file is writable.")
	}
	if dashboard && cfg.File == "" {
		return func(string) logger.Logger { return logger.Noop() }, nil
	}
	return logger.NewEnvLogger, nil
}
