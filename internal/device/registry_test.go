package device

import (
	"context"
	stderrors "errors"
	"testing"

	adbtesting "github.com/rileyhilliard/emuwatch/internal/adb/testing"
	"github.com/rileyhilliard/emuwatch/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addresses(eps []Endpoint) []string {
	out := make([]string, len(eps))
	for i, e := range eps {
		out[i] = e.Address
	}
	return out
}

func TestCandidates(t *testing.T) {
	tests := []struct {
		name     string
		extended bool
		extra    []string
		want     []string
	}{
		{
			name: "defaults",
			want: []string{"127.0.0.1:16384", "127.0.0.1:7555", "127.0.0.1:5555"},
		},
		{
			name:     "extended scan",
			extended: true,
			want: []string{
				"127.0.0.1:16384", "127.0.0.1:7555", "127.0.0.1:5555",
				"127.0.0.1:16416", "127.0.0.1:16448", "127.0.0.1:16480",
				"127.0.0.1:5557", "127.0.0.1:5559", "127.0.0.1:5561",
			},
		},
		{
			name:  "extra endpoints appended and deduplicated",
			extra: []string{"192.168.1.20:5555", "127.0.0.1:7555"},
			want:  []string{"127.0.0.1:16384", "127.0.0.1:7555", "127.0.0.1:5555", "192.168.1.20:5555"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, addresses(Candidates(tt.extended, tt.extra...)))
		})
	}
}

func TestRegistry_ListLive(t *testing.T) {
	fake := adbtesting.NewFakeTransport()
	fake.SetDevices("127.0.0.1:16384", "device", "emulator-5554", "offline", "127.0.0.1:5555", "device")
	r := NewRegistry(fake, nil, nil)

	assert.Equal(t, []ID{"127.0.0.1:16384", "127.0.0.1:5555"}, r.ListLive(context.Background()))
	assert.True(t, r.IsLive(context.Background(), "127.0.0.1:5555"))
	assert.False(t, r.IsLive(context.Background(), "emulator-5554"))
}

func TestRegistry_ListLive_DiscoveryError(t *testing.T) {
	fake := adbtesting.NewFakeTransport()
	fake.SetError("", "devices", stderrors.New("adb not running"))
	log := logger.NewBufferLogger()
	r := NewRegistry(fake, nil, log)

	assert.Empty(t, r.ListLive(context.Background()))
	assert.True(t, log.HasLevel("debug"))
}

func TestRegistry_Acquire_AlreadyLive(t *testing.T) {
	fake := adbtesting.NewFakeTransport()
	fake.SetDevices("emulator-5554", "device")
	r := NewRegistry(fake, Candidates(false), nil)

	assert.Equal(t, "emulator-5554", r.Acquire(context.Background()))
	assert.Equal(t, []string{"devices"}, fake.Commands())
}

func TestRegistry_Acquire_ConnectsInOrder(t *testing.T) {
	fake := adbtesting.NewFakeTransport()
	fake.SetDevices()
	connected := ""
	fake.Handler = func(serial string, args []string) (adbtesting.Response, bool) {
		switch {
		case len(args) == 2 && args[0] == "connect":
			// only the LDPlayer endpoint answers
			if args[1] == "127.0.0.1:5555" {
				connected = args[1]
			}
			return adbtesting.Response{Output: "connected\n"}, true
		case len(args) == 1 && args[0] == "devices" && connected != "":
			return adbtesting.Response{Output: "List of devices attached\n" + connected + "\tdevice\n"}, true
		}
		return adbtesting.Response{}, false
	}
	r := NewRegistry(fake, Candidates(false), nil)

	assert.Equal(t, "127.0.0.1:5555", r.Acquire(context.Background()))
	assert.Equal(t, []string{
		"devices", "connect 127.0.0.1:16384",
		"devices", "connect 127.0.0.1:7555",
		"devices", "connect 127.0.0.1:5555",
		"devices",
	}, fake.Commands())
}

func TestRegistry_Acquire_StopsAfterFirstSuccess(t *testing.T) {
	fake := adbtesting.NewFakeTransport()
	live := false
	fake.Handler = func(serial string, args []string) (adbtesting.Response, bool) {
		if args[0] == "connect" {
			live = true
			return adbtesting.Response{Output: "connected\n"}, true
		}
		if live {
			return adbtesting.Response{Output: "List of devices attached\n127.0.0.1:16384\tdevice\n"}, true
		}
		return adbtesting.Response{Output: "List of devices attached\n"}, true
	}
	r := NewRegistry(fake, Candidates(false), nil)

	assert.Equal(t, "127.0.0.1:16384", r.Acquire(context.Background()))
	assert.Equal(t, []string{"devices", "connect 127.0.0.1:16384", "devices"}, fake.Commands())
}

func TestRegistry_Acquire_NothingReachable(t *testing.T) {
	fake := adbtesting.NewFakeTransport()
	fake.SetDevices()
	fake.Handler = func(serial string, args []string) (adbtesting.Response, bool) {
		if args[0] == "connect" {
			return adbtesting.Response{Err: stderrors.New("refused")}, true
		}
		return adbtesting.Response{}, false
	}
	r := NewRegistry(fake, Candidates(false), nil)

	assert.Equal(t, "", r.Acquire(context.Background()))
	require.Len(t, fake.Commands(), 7)
}

func TestRegistry_Acquire_Cancelled(t *testing.T) {
	fake := adbtesting.NewFakeTransport()
	r := NewRegistry(fake, Candidates(false), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, "", r.Acquire(ctx))
	assert.Empty(t, fake.Calls())
}
