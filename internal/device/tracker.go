package device

import (
	"context"
	"sync/atomic"

	"github.com/rileyhilliard/emuwatch/internal/logger"
)

// State is the tracker's connection state.
type State int32

const (
	Unset State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unset"
	}
}

// Tracker holds the single current device and moves it through
// Unset -> Connecting -> Connected -> Unset. Refresh is called from one
// goroutine; Current and State may be read from any.
type Tracker struct {
	registry *Registry
	log      logger.Logger

	state   atomic.Int32
	current atomic.Pointer[string]

	// OnChange, when set, is called with the previous and next id after every
	// change of the current device.
	OnChange func(prev, next ID)
}

// NewTracker creates a tracker in the Unset state.
func NewTracker(r *Registry, log logger.Logger) *Tracker {
	if log == nil {
		log = logger.Noop()
	}
	return &Tracker{registry: r, log: log}
}

// Current returns the current device id, or "" when none is selected.
func (t *Tracker) Current() ID {
	if p := t.current.Load(); p != nil {
		return *p
	}
	return ""
}

// State returns the tracker state.
func (t *Tracker) State() State {
	return State(t.state.Load())
}

func (t *Tracker) set(id ID, s State) {
	old := t.Current()
	if id == "" {
		t.current.Store(nil)
	} else {
		t.current.Store(&id)
	}
	t.state.Store(int32(s))
	if old != id && t.OnChange != nil {
		t.OnChange(old, id)
	}
}

// Refresh performs one step: drop the current device if it went away,
// then try to acquire one when none is selected. A device that drops out
// is replaced in the same step when another one is reachable.
func (t *Tracker) Refresh(ctx context.Context) ID {
	if t.State() == Connected {
		id := t.Current()
		if !t.registry.IsLive(ctx, id) {
			t.log.Info("emulator %s disconnected", id)
			t.set("", Unset)
		}
	}
	if t.State() == Unset {
		t.state.Store(int32(Connecting))
		if id := t.registry.Acquire(ctx); id != "" {
			t.log.Info("emulator %s connected", id)
			t.set(id, Connected)
		} else {
			t.set("", Unset)
		}
	}
	return t.Current()
}
