package cli

import (
	"path/filepath"
	"sync"
	"testing"

	adbtesting "github.com/rileyhilliard/emuwatch/internal/adb/testing"
	"github.com/rileyhilliard/emuwatch/internal/config"
	"github.com/rileyhilliard/emuwatch/internal/logger"
	"github.com/rileyhilliard/emuwatch/internal/ui"
)

const (
	testDevice = "127.0.0.1:16384"
	testPkg    = "com.hypergryph.arknights"
	// 407945216 bytes free, about 389 MiB.
	testFreeOut = "\t\ttotal\t\tused\t\tfree\nMem:\t\t4124442624\t3716497408\t407945216\n"
)

type adbResponse = adbtesting.Response

type recordingNotifier struct {
	mu     sync.Mutex
	bodies []string
}

func (r *recordingNotifier) Notify(title, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bodies = append(r.bodies, body)
}

func (r *recordingNotifier) Bodies() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.bodies...)
}

type countingPlayer struct {
	mu    sync.Mutex
	plays int
}

func (c *countingPlayer) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plays++
}

func (c *countingPlayer) Plays() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plays
}

// newFakeADB answers the collector's commands for testPkg on testDevice
// with the given ABI. An x86 game with this statm has about 196 MiB of
// virtual memory left.
func newFakeADB(abi string) *adbtesting.FakeTransport {
	fake := adbtesting.NewFakeTransport()
	fake.SetDevices(testDevice, "device")
	fake.Set(testDevice, "shell pm dump "+testPkg+" | grep primaryCpuAbi", "    primaryCpuAbi="+abi+"\n")
	fake.Set(testDevice, "shell pidof -s "+testPkg, "4321\n")
	fake.Set(testDevice, "shell cat /proc/4321/statm", "998400 21504 15360 4 0 120832 0\n")
	fake.Set(testDevice, "shell free", testFreeOut)
	return fake
}

type testSession struct {
	*Session
	fake     *adbtesting.FakeTransport
	notifier *recordingNotifier
	player   *countingPlayer
}

// newTestSession builds a Session over fake with recording collaborators
// and a settings file in a temp dir.
func newTestSession(t *testing.T, fake *adbtesting.FakeTransport) *testSession {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Packages = []string{testPkg}
	cfg.SettingsFile = filepath.Join(t.TempDir(), "settings.yaml")

	ts := &testSession{fake: fake, notifier: &recordingNotifier{}, player: &countingPlayer{}}
	ts.Session = NewSession(cfg, "", sessionDeps{
		Transport: fake,
		Notifier:  ts.notifier,
		Player:    ts.player,
		Logs:      func(string) logger.Logger { return logger.Noop() },
	})
	return ts
}

func init() {
	ui.DisableColors()
}
