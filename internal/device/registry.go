// Package device discovers running emulators and keeps one of them
// selected as the monitoring target.
package device

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/emuwatch/internal/adb"
	"github.com/rileyhilliard/emuwatch/internal/logger"
)

// ID identifies a device the way adb does: a serial or a host:port.
type ID = string

// Endpoint is a TCP address emulators commonly listen on.
type Endpoint struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Default endpoints, in acquire priority order.
const (
	MuMuBasePort      = 16384
	MuMuPortStride    = 32
	MuMuLegacyPort    = 7555
	LDPlayerBasePort  = 5555
	LDPlayerStride    = 2
	ExtendedInstances = 3
)

func local(port int) string {
	return fmt.Sprintf("127.0.0.1:%d", port)
}

// Candidates returns the endpoints Acquire tries, in priority order.
// With extended set, additional instances of multi-instance emulators are
// appended after the defaults. Extra addresses go last; duplicates are
// dropped.
func Candidates(extended bool, extra ...string) []Endpoint {
	list := []Endpoint{
		{Name: "MuMu", Address: local(MuMuBasePort)},
		{Name: "MuMu (legacy)", Address: local(MuMuLegacyPort)},
		{Name: "LDPlayer", Address: local(LDPlayerBasePort)},
	}
	if extended {
		for i := 1; i <= ExtendedInstances; i++ {
			list = append(list, Endpoint{
				Name:    fmt.Sprintf("MuMu #%d", i),
				Address: local(MuMuBasePort + MuMuPortStride*i),
			})
		}
		for i := 1; i <= ExtendedInstances; i++ {
			list = append(list, Endpoint{
				Name:    fmt.Sprintf("LDPlayer #%d", i),
				Address: local(LDPlayerBasePort + LDPlayerStride*i),
			})
		}
	}
	for _, addr := range extra {
		list = append(list, Endpoint{Name: "custom", Address: addr})
	}

	seen := make(map[string]bool, len(list))
	out := list[:0]
	for _, e := range list {
		if seen[e.Address] {
			continue
		}
		seen[e.Address] = true
		out = append(out, e)
	}
	return out
}

// Registry discovers devices through an adb transport.
type Registry struct {
	transport  adb.Transport
	candidates []Endpoint
	log        logger.Logger
}

// NewRegistry creates a registry that tries candidates in order.
func NewRegistry(t adb.Transport, candidates []Endpoint, log logger.Logger) *Registry {
	if log == nil {
		log = logger.Noop()
	}
	return &Registry{transport: t, candidates: candidates, log: log}
}

// Candidates returns the configured endpoints.
func (r *Registry) Candidates() []Endpoint {
	return append([]Endpoint(nil), r.candidates...)
}

// ListLive returns the ids of every device adb reports as not offline.
// A discovery failure yields an empty list.
func (r *Registry) ListLive(ctx context.Context) []ID {
	devices, err := adb.Devices(ctx, r.transport)
	if err != nil {
		r.log.Debug("device discovery failed: %v", err)
		return nil
	}
	var ids []ID
	for _, d := range devices {
		if d.Online() {
			ids = append(ids, d.Serial)
		}
	}
	return ids
}

// IsLive reports whether id is among the live devices right now.
func (r *Registry) IsLive(ctx context.Context, id ID) bool {
	for _, live := range r.ListLive(ctx) {
		if live == id {
			return true
		}
	}
	return false
}

// Acquire returns a live device, connecting to candidates as needed.
// Before each connect attempt, any already-live device short-circuits the
// search. After every candidate was tried, one final check decides.
// Returns "" when nothing is reachable.
func (r *Registry) Acquire(ctx context.Context) ID {
	for _, c := range r.candidates {
		if ctx.Err() != nil {
			return ""
		}
		if live := r.ListLive(ctx); len(live) > 0 {
			return live[0]
		}
		r.log.Debug("connecting to %s at %s", c.Name, c.Address)
		if err := adb.Connect(ctx, r.transport, c.Address); err != nil {
			r.log.Debug("connect %s failed: %v", c.Address, err)
		}
	}
	if live := r.ListLive(ctx); len(live) > 0 {
		return live[0]
	}
	return ""
}
