package alert

import (
	"testing"

	"github.com/rileyhilliard/emuwatch/internal/collector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pkg = "com.hypergryph.arknights"

func bytesOf(mib int64) *int64 {
	b := mib * MiB
	return &b
}

func TestEvaluate_HostFree(t *testing.T) {
	tests := []struct {
		name      string
		freeMiB   int64
		debug     bool
		wantAlert bool
	}{
		{"below threshold", 250, false, true},
		{"above threshold", 350, false, false},
		{"exactly at threshold", 300, false, false},
		{"debug forces alert", 350, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEvaluator(DefaultThresholds(), tt.debug)
			ev := e.Evaluate(collector.Sample{HostFree: bytesOf(tt.freeMiB)})

			assert.Equal(t, tt.wantAlert, ev.AlertWorthy())
			require.Len(t, ev.Lines, 1)
			assert.Contains(t, ev.Lines[0], "free memory")
			require.Len(t, ev.Readings, 1)
			assert.Equal(t, KeyHostFree, ev.Readings[0].Key)
			assert.Equal(t, float64(tt.freeMiB), ev.Readings[0].MiB)

			msg, ok := ev.Message(DefaultTitle)
			assert.Equal(t, tt.wantAlert, ok)
			if ok {
				assert.Equal(t, DefaultTitle, msg.Title)
				assert.Contains(t, msg.Body, "MiB")
				assert.False(t, msg.IgnoreRateLimit)
			}
		})
	}
}

func TestEvaluate_X86RemainingVSS(t *testing.T) {
	e := NewEvaluator(DefaultThresholds(), false)
	ev := e.Evaluate(collector.Sample{
		Packages: []collector.PackageMetric{{Name: pkg, ABI: collector.ABIX86, VSS: bytesOf(3900)}},
	})

	require.True(t, ev.AlertWorthy())
	assert.Equal(t, []string{
		"warning: " + pkg + " is running as 32-bit x86, virtual memory is capped at 4 GiB",
		pkg + " remaining virtual memory: 196 MiB",
	}, ev.Lines)

	msg, ok := ev.Message(DefaultTitle)
	require.True(t, ok)
	assert.Contains(t, msg.Body, "196 MiB")

	require.Len(t, ev.Readings, 1)
	assert.Equal(t, VSSRemainingKey(pkg), ev.Readings[0].Key)
	assert.Equal(t, float64(196), ev.Readings[0].MiB)
}

func TestEvaluate_X86PlentyLeft(t *testing.T) {
	e := NewEvaluator(DefaultThresholds(), false)
	ev := e.Evaluate(collector.Sample{
		Packages: []collector.PackageMetric{{Name: pkg, ABI: collector.ABIX86, VSS: bytesOf(2048)}},
	})

	assert.False(t, ev.AlertWorthy())
	assert.Len(t, ev.Lines, 2)
	assert.Contains(t, ev.Lines[1], "2048 MiB")
}

func TestEvaluate_X86WithoutVSS(t *testing.T) {
	e := NewEvaluator(DefaultThresholds(), true)
	ev := e.Evaluate(collector.Sample{
		Packages: []collector.PackageMetric{{Name: pkg, ABI: collector.ABIX86}},
	})

	assert.False(t, ev.AlertWorthy())
	require.Len(t, ev.Lines, 1)
	assert.Contains(t, ev.Lines[0], "32-bit x86")
	assert.Empty(t, ev.Readings)
}

func TestEvaluate_NonX86Ignored(t *testing.T) {
	e := NewEvaluator(DefaultThresholds(), true)
	ev := e.Evaluate(collector.Sample{
		Packages: []collector.PackageMetric{
			{Name: pkg, ABI: collector.ABIArm64, VSS: bytesOf(4000)},
			{Name: pkg + ".bilibili", ABI: collector.ABIUnknown, VSS: bytesOf(4000)},
		},
	})

	assert.False(t, ev.AlertWorthy())
	assert.Empty(t, ev.Lines)
}

func TestEvaluate_AbsentNeverFires(t *testing.T) {
	e := NewEvaluator(DefaultThresholds(), true)
	ev := e.Evaluate(collector.Sample{})

	assert.False(t, ev.AlertWorthy())
	assert.Empty(t, ev.Lines)
	_, ok := ev.Message(DefaultTitle)
	assert.False(t, ok)
}

func TestEvaluate_SingleMessagePerCycle(t *testing.T) {
	e := NewEvaluator(DefaultThresholds(), false)
	ev := e.Evaluate(collector.Sample{
		HostFree: bytesOf(100),
		Packages: []collector.PackageMetric{{Name: pkg, ABI: collector.ABIX86, VSS: bytesOf(3900)}},
	})

	msg, ok := ev.Message("t")
	require.True(t, ok)
	assert.Equal(t, "emulator free memory is 100 MiB; game process has 196 MiB of virtual memory left", msg.Body)
	assert.Equal(t, "free memory: 100 MiB", ev.Lines[0])
}

func TestEvaluate_CustomThresholds(t *testing.T) {
	e := NewEvaluator(Thresholds{HostFree: 1024 * MiB, VSSRemaining: 10 * MiB}, false)
	ev := e.Evaluate(collector.Sample{
		HostFree: bytesOf(500),
		Packages: []collector.PackageMetric{{Name: pkg, ABI: collector.ABIX86, VSS: bytesOf(3900)}},
	})

	require.Len(t, ev.Conditions, 1)
	assert.Contains(t, ev.Conditions[0], "500 MiB")
}
