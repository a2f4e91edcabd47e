package doctor

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	adbtesting "github.com/rileyhilliard/emuwatch/internal/adb/testing"
	"github.com/rileyhilliard/emuwatch/internal/collector"
	"github.com/rileyhilliard/emuwatch/internal/device"
	"github.com/rileyhilliard/emuwatch/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	serial = "127.0.0.1:16384"
	pkg    = "com.hypergryph.arknights"
)

type staticCheck struct {
	name   string
	status CheckStatus
}

func (c staticCheck) Name() string     { return c.name }
func (c staticCheck) Category() string { return "TEST" }
func (c staticCheck) Run(context.Context) CheckResult {
	return CheckResult{Status: c.status, Message: c.name}
}

func TestCheckStatus_String(t *testing.T) {
	assert.Equal(t, "pass", StatusPass.String())
	assert.Equal(t, "warn", StatusWarn.String())
	assert.Equal(t, "fail", StatusFail.String())
	assert.Equal(t, "unknown", CheckStatus(42).String())
}

func TestCheckResult_JSON(t *testing.T) {
	data, err := json.Marshal(CheckResult{Name: "adb", Status: StatusWarn, Message: "m"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"adb","category":"","status":"warn","message":"m"}`, string(data))
}

func TestRunAll(t *testing.T) {
	results := RunAll(context.Background(), []Check{
		staticCheck{"a", StatusPass},
		staticCheck{"b", StatusWarn},
		staticCheck{"c", StatusFail},
	})

	require.Len(t, results, 3)
	assert.Equal(t, "b", results[1].Name)
	assert.Equal(t, "TEST", results[1].Category)
	assert.Equal(t, map[CheckStatus]int{StatusPass: 1, StatusWarn: 1, StatusFail: 1}, CountByStatus(results))
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name     string
		statuses []CheckStatus
		want     string
		issues   bool
		failures bool
	}{
		{"all pass", []CheckStatus{StatusPass, StatusPass}, "Everything looks good", false, false},
		{"one warning", []CheckStatus{StatusPass, StatusWarn}, "1 issue found", true, false},
		{"mixed", []CheckStatus{StatusFail, StatusWarn, StatusFail}, "3 issues found", true, true},
		{"empty", nil, "Everything looks good", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var results []CheckResult
			for _, s := range tt.statuses {
				results = append(results, CheckResult{Status: s})
			}
			assert.Equal(t, tt.want, Summary(results))
			assert.Equal(t, tt.issues, HasIssues(results))
			assert.Equal(t, tt.failures, HasFailures(results))
		})
	}
}

func TestFailure(t *testing.T) {
	structured := errors.WrapWithCode(stderrors.New("exit 1"), errors.ErrTransport, "adb version failed", "")
	r := failure(structured, "install adb")
	assert.Equal(t, StatusFail, r.Status)
	assert.Equal(t, "adb version failed: exit 1", r.Message)
	assert.Equal(t, "install adb", r.Suggestion)

	withHint := errors.New(errors.ErrConfig, "bad", "do this")
	assert.Equal(t, "do this", failure(withHint, "fallback").Suggestion)

	plain := failure(stderrors.New("boom"), "fallback")
	assert.Equal(t, "boom", plain.Message)
	assert.Equal(t, "fallback", plain.Suggestion)
}

func TestConfigCheck(t *testing.T) {
	t.Run("defaults warn", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		t.Chdir(t.TempDir())

		r := (&ConfigCheck{}).Run(context.Background())
		assert.Equal(t, StatusWarn, r.Status)
		assert.Contains(t, r.Suggestion, "config init")
	})

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "emuwatch.yaml")
		require.NoError(t, os.WriteFile(path, []byte("packages: [com.example.game]\n"), 0644))

		r := (&ConfigCheck{ConfigPath: path}).Run(context.Background())
		assert.Equal(t, StatusPass, r.Status)
		assert.Contains(t, r.Message, path)
	})

	t.Run("invalid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "emuwatch.yaml")
		require.NoError(t, os.WriteFile(path, []byte("series:\n  capacity: 0\n"), 0644))

		r := (&ConfigCheck{ConfigPath: path}).Run(context.Background())
		assert.Equal(t, StatusFail, r.Status)
		assert.Equal(t, "series.capacity needs to be positive (got 0)", r.Message)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		r := (&ConfigCheck{ConfigPath: filepath.Join(t.TempDir(), "nope.yaml")}).Run(context.Background())
		assert.Equal(t, StatusFail, r.Status)
	})
}

func TestSettingsCheck(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	r := (&SettingsCheck{Path: path}).Run(context.Background())
	assert.Equal(t, StatusPass, r.Status)
	assert.Contains(t, r.Message, "created on first change")

	require.NoError(t, os.WriteFile(path, []byte("use_audio: true\n"), 0644))
	r = (&SettingsCheck{Path: path}).Run(context.Background())
	assert.Equal(t, StatusPass, r.Status)

	require.NoError(t, os.WriteFile(path, []byte("use_audio: [unclosed\n"), 0644))
	r = (&SettingsCheck{Path: path}).Run(context.Background())
	assert.Equal(t, StatusWarn, r.Status)
	assert.Contains(t, r.Message, "corrupt")
}

func TestADBCheck(t *testing.T) {
	fake := adbtesting.NewFakeTransport()
	fake.Set("", "version", "Android Debug Bridge version 1.0.41\nVersion 35.0.2\n")

	r := (&ADBCheck{Transport: fake, Where: "gaming-pc"}).Run(context.Background())
	assert.Equal(t, StatusPass, r.Status)
	assert.Equal(t, "adb works on gaming-pc (Android Debug Bridge version 1.0.41)", r.Message)

	fake.SetError("", "version", errors.New(errors.ErrExec, "Couldn't run adb", "Install Android platform-tools"))
	r = (&ADBCheck{Transport: fake}).Run(context.Background())
	assert.Equal(t, StatusFail, r.Status)
	assert.Equal(t, "Couldn't run adb", r.Message)
	assert.Equal(t, "Install Android platform-tools", r.Suggestion)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestSSHCheck(t *testing.T) {
	closed := false
	check := &SSHCheck{Host: "gaming-pc", Dial: func(host string, timeout time.Duration) (io.Closer, error) {
		assert.Equal(t, "gaming-pc", host)
		assert.Equal(t, 10*time.Second, timeout)
		return closerFunc(func() error { closed = true; return nil }), nil
	}}

	r := check.Run(context.Background())
	assert.Equal(t, StatusPass, r.Status)
	assert.Contains(t, r.Message, "Connected to gaming-pc")
	assert.True(t, closed)

	check.Dial = func(string, time.Duration) (io.Closer, error) {
		return nil, stderrors.New("connection refused")
	}
	r = check.Run(context.Background())
	assert.Equal(t, StatusFail, r.Status)
	assert.Equal(t, "Try: ssh gaming-pc", r.Suggestion)
}

func newEmulatorFake(abi string) *adbtesting.FakeTransport {
	fake := adbtesting.NewFakeTransport()
	fake.SetDevices(serial, "device")
	fake.Set(serial, "shell pm dump "+pkg+" | grep primaryCpuAbi", "    primaryCpuAbi="+abi+"\n")
	return fake
}

func TestEmulatorAndPackageChecks(t *testing.T) {
	tests := []struct {
		abi        string
		wantStatus CheckStatus
		wantMsg    string
	}{
		{"x86", StatusPass, pkg + ": x86, 32-bit, virtual memory is watched"},
		{"arm64-v8a", StatusPass, pkg + ": arm64-v8a"},
		{"", StatusWarn, pkg + ": not installed or unreadable"},
	}

	for _, tt := range tests {
		t.Run(tt.abi, func(t *testing.T) {
			fake := newEmulatorFake(tt.abi)
			checks := NewChecks(Options{
				Registry:  device.NewRegistry(fake, device.Candidates(false), nil),
				Collector: collector.New(fake, []string{pkg}, nil),
				Packages:  []string{pkg},
			})
			results := RunAll(context.Background(), checks[2:])

			require.Len(t, results, 2)
			assert.Equal(t, StatusPass, results[0].Status)
			assert.Equal(t, "Emulator online: "+serial, results[0].Message)
			assert.Equal(t, "package:"+pkg, results[1].Name)
			assert.Equal(t, tt.wantStatus, results[1].Status)
			assert.Equal(t, tt.wantMsg, results[1].Message)
		})
	}
}

func TestEmulatorCheck_Unreachable(t *testing.T) {
	fake := adbtesting.NewFakeTransport()
	fake.SetDevices()
	fake.Handler = func(_ string, args []string) (adbtesting.Response, bool) {
		if args[0] == "connect" {
			return adbtesting.Response{Output: "cannot connect"}, true
		}
		return adbtesting.Response{}, false
	}
	target := &Target{}
	candidates := device.Candidates(false)

	results := RunAll(context.Background(), []Check{
		&EmulatorCheck{Registry: device.NewRegistry(fake, candidates, nil), Target: target},
		&PackageCheck{Collector: collector.New(fake, []string{pkg}, nil), Package: pkg, Target: target},
	})

	assert.Equal(t, StatusFail, results[0].Status)
	assert.Contains(t, results[0].Suggestion, candidates[0].Address)
	assert.Equal(t, StatusWarn, results[1].Status)
	assert.Contains(t, results[1].Message, "skipped")
}

func TestNewChecks(t *testing.T) {
	names := func(checks []Check) []string {
		out := make([]string, len(checks))
		for i, c := range checks {
			out[i] = c.Name()
		}
		return out
	}

	assert.Equal(t, []string{"config", "settings"}, names(NewChecks(Options{})))

	fake := adbtesting.NewFakeTransport()
	checks := NewChecks(Options{
		SSHHost:   "gaming-pc",
		ADB:       &ADBCheck{Transport: fake},
		Registry:  device.NewRegistry(fake, nil, nil),
		Collector: collector.New(fake, []string{"a", "b"}, nil),
		Packages:  []string{"a", "b"},
	})
	assert.Equal(t, []string{"config", "settings", "ssh", "adb", "emulator", "package:a", "package:b"}, names(checks))
}
