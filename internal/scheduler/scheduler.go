// Package scheduler runs the three monitoring loops: device upkeep,
// metric checks, and chart rendering. Each loop has its own ticker and
// shares results through State and two latest-wins channels.
package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/emuwatch/internal/alert"
	"github.com/rileyhilliard/emuwatch/internal/collector"
	"github.com/rileyhilliard/emuwatch/internal/logger"
	"github.com/rileyhilliard/emuwatch/internal/series"
	"golang.org/x/sync/errgroup"
)

// Default loop periods.
const (
	DefaultDevicePeriod = 3 * time.Second
	DefaultCheckPeriod  = time.Second
	DefaultRenderPeriod = 500 * time.Millisecond
)

// DeviceSource maintains the current device.
type DeviceSource interface {
	Refresh(ctx context.Context) string
	Current() string
}

// SampleCollector polls one device.
type SampleCollector interface {
	Collect(ctx context.Context, id string) collector.Sample
}

// Dispatcher delivers alerts.
type Dispatcher interface {
	Dispatch(msg alert.Message) bool
}

// Config holds loop periods and the alert title.
type Config struct {
	DevicePeriod time.Duration
	CheckPeriod  time.Duration
	RenderPeriod time.Duration
	AlertTitle   string
}

func (c Config) withDefaults() Config {
	if c.DevicePeriod <= 0 {
		c.DevicePeriod = DefaultDevicePeriod
	}
	if c.CheckPeriod <= 0 {
		c.CheckPeriod = DefaultCheckPeriod
	}
	if c.RenderPeriod <= 0 {
		c.RenderPeriod = DefaultRenderPeriod
	}
	if c.AlertTitle == "" {
		c.AlertTitle = alert.DefaultTitle
	}
	return c
}

// Scheduler coordinates the loops.
type Scheduler struct {
	cfg        Config
	devices    DeviceSource
	collector  SampleCollector
	evaluator  *alert.Evaluator
	dispatcher Dispatcher
	store      *series.Store
	clock      Clock
	log        logger.Logger

	state    *State
	statusCh chan Status
	chartCh  chan ChartData

	mu     sync.Mutex
	start  time.Time
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the real clock.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// New creates a scheduler. Nothing runs until Run.
func New(cfg Config, devices DeviceSource, c SampleCollector, e *alert.Evaluator, d Dispatcher, store *series.Store, opts ...Option) *Scheduler {
	s := &Scheduler{
		cfg:        cfg.withDefaults(),
		devices:    devices,
		collector:  c,
		evaluator:  e,
		dispatcher: d,
		store:      store,
		clock:      RealClock(),
		log:        logger.Noop(),
		state:      newState(),
		statusCh:   make(chan Status, 1),
		chartCh:    make(chan ChartData, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.start = s.clock.Now()
	return s
}

// State returns the shared state.
func (s *Scheduler) State() *State {
	return s.state
}

// StatusUpdates delivers the newest status. Stale values are replaced,
// so a slow reader only ever sees the latest.
func (s *Scheduler) StatusUpdates() <-chan Status {
	return s.statusCh
}

// ChartUpdates delivers the newest chart data, latest wins.
func (s *Scheduler) ChartUpdates() <-chan ChartData {
	return s.chartCh
}

// Run starts the loops and blocks until ctx is cancelled or Stop is
// called. Calling Run while running returns an error.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.start = s.clock.Now()
	done := s.done
	s.mu.Unlock()

	s.state.running.Store(true)
	defer func() {
		s.state.running.Store(false)
		cancel()
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
		close(done)
	}()

	s.log.Info("monitoring started (device %s, check %s, render %s, %d points per series)",
		s.cfg.DevicePeriod, s.cfg.CheckPeriod, s.cfg.RenderPeriod, s.store.Capacity())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.loop(gctx, "device", s.cfg.DevicePeriod, s.DeviceOnce) })
	g.Go(func() error { return s.loop(gctx, "check", s.cfg.CheckPeriod, func(c context.Context) { s.CheckOnce(c) }) })
	g.Go(func() error { return s.loop(gctx, "render", s.cfg.RenderPeriod, func(context.Context) { s.RenderOnce() }) })
	err := g.Wait()

	s.log.Info("monitoring stopped")
	return err
}

// Stop cancels the loops and waits for Run to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	s.state.running.Store(false)
	cancel()
	<-done
}

// loop runs body now and then once per tick until ctx ends. A body that
// outlasts the period delays the next run; missed ticks are dropped.
func (s *Scheduler) loop(ctx context.Context, name string, period time.Duration, body func(context.Context)) error {
	ticker := s.clock.Ticker(period)
	defer ticker.Stop()

	for {
		s.safely(ctx, name, body)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
		}
	}
}

func (s *Scheduler) safely(ctx context.Context, name string, body func(context.Context)) {
	if ctx.Err() != nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("%s loop panic: %v\n%s", name, r, debug.Stack())
		}
	}()
	body(ctx)
}

// DeviceOnce runs one device-loop iteration.
func (s *Scheduler) DeviceOnce(ctx context.Context) {
	s.devices.Refresh(ctx)
}

// CheckOnce runs one check-loop iteration and returns the status it
// published.
func (s *Scheduler) CheckOnce(ctx context.Context) Status {
	id := s.devices.Current()
	st := Status{Device: id, At: s.clock.Now()}

	if id == "" {
		st.Lines = []string{SearchingLine}
	} else {
		sample := s.collector.Collect(ctx, id)
		ev := s.evaluator.Evaluate(sample)

		if msg, ok := ev.Message(s.cfg.AlertTitle); ok {
			st.Alerting = true
			s.log.Warn("%s", msg.Body)
			if s.dispatcher != nil {
				s.dispatcher.Dispatch(msg)
			}
		}

		elapsed := s.elapsed()
		for _, r := range ev.Readings {
			s.state.setLabel(r.Key, r.Label)
			s.store.Append(r.Key, elapsed, r.MiB)
		}
		st.Lines = SampleStatus(id, sample, ev.Lines)
	}

	s.state.setStatus(st)
	publish(s.statusCh, st)
	return st
}

func (s *Scheduler) elapsed() float64 {
	s.mu.Lock()
	start := s.start
	s.mu.Unlock()
	return s.clock.Now().Sub(start).Seconds()
}

// RenderOnce snapshots the store and publishes chart data.
func (s *Scheduler) RenderOnce() ChartData {
	data := s.Chart()
	publish(s.chartCh, data)
	return data
}

// Chart builds chart data from the current store contents. The host
// memory series goes on axis 0; every per-package series on axis 1.
func (s *Scheduler) Chart() ChartData {
	data := ChartData{XLabel: "time (s)", YLabel: "memory (MiB)"}
	for _, key := range s.store.Keys() {
		axis := 1
		if key == alert.KeyHostFree {
			axis = 0
		}
		label := s.state.label(key)
		if axis == 1 && !strings.Contains(label, "remaining") {
			label += " remaining VSS"
		}
		data.Series = append(data.Series, ChartSeries{
			Key:    key,
			Label:  label,
			Axis:   axis,
			Points: s.store.Snapshot(key),
		})
	}
	return data
}
