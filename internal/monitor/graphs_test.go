package monitor

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/emuwatch/internal/alert"
	"github.com/rileyhilliard/emuwatch/internal/scheduler"
	"github.com/rileyhilliard/emuwatch/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hostSeries builds an axis-0 series with one point per second.
func hostSeries(values ...float64) scheduler.ChartSeries {
	return seriesOn(alert.KeyHostFree, "free memory", 0, values...)
}

func seriesOn(key, label string, axis int, values ...float64) scheduler.ChartSeries {
	s := scheduler.ChartSeries{Key: key, Label: label, Axis: axis}
	for i, v := range values {
		s.Points = append(s.Points, series.Point{Elapsed: float64(i), Value: v})
	}
	return s
}

func hasBrailleDots(s string) bool {
	for _, r := range s {
		if r > brailleBase && r <= brailleBase+0xFF {
			return true
		}
	}
	return false
}

func TestChartScale(t *testing.T) {
	assert.Equal(t, 1.0, ChartScale(0))
	assert.Equal(t, 1.0, ChartScale(-5))
	assert.InDelta(t, 120.0, ChartScale(100), 1e-9)
}

func TestRenderChart_Empty(t *testing.T) {
	out := RenderChart(scheduler.ChartData{}, 0, 40, 6)
	assert.Contains(t, out, "waiting for data")
	assert.Equal(t, 6, lipgloss.Height(out))
}

func TestRenderChart_TooSmall(t *testing.T) {
	data := scheduler.ChartData{Series: []scheduler.ChartSeries{hostSeries(1, 2)}}
	assert.Empty(t, RenderChart(data, 0, 4, 6))
	assert.Empty(t, RenderChart(data, 0, 40, 1))
}

func TestRenderChart_Lines(t *testing.T) {
	data := scheduler.ChartData{Series: []scheduler.ChartSeries{
		hostSeries(1000, 800, 600, 400, 200, 100, 50, 25, 10, 5, 0),
	}}

	out := RenderChart(data, 0, 40, 6)
	lines := strings.Split(out, "\n")

	require.Len(t, lines, 6)
	assert.True(t, hasBrailleDots(out))
	assert.Contains(t, lines[0], "1200", "top label is 1.2x the max")
	assert.Contains(t, lines[4], "0")
	assert.Contains(t, lines[5], "0s")
	assert.Contains(t, lines[5], "10s")
	for _, l := range lines {
		assert.LessOrEqual(t, lipgloss.Width(l), 40)
	}
}

func TestRenderChart_OnlyRequestedAxis(t *testing.T) {
	data := scheduler.ChartData{Series: []scheduler.ChartSeries{
		hostSeries(100, 100),
	}}
	assert.Contains(t, RenderChart(data, 1, 40, 6), "waiting for data")
}

func TestPlotLines_PeakReachesTopRow(t *testing.T) {
	lines := []scheduler.ChartSeries{seriesOn("a", "a", 0, 0, 100)}

	grid, owner := plotLines(lines, 4, 3, 100, 0, 1)

	// The last point sits at the top dot of the last column.
	last := grid[0][3]
	assert.NotEqual(t, brailleBase, last)
	assert.Equal(t, 0, owner[0][3])
	// The first point sits at the bottom dot of the first column.
	assert.NotEqual(t, brailleBase, grid[2][0])
	// The rise between them is filled in the final column.
	assert.NotEqual(t, brailleBase, grid[1][3])
	assert.Equal(t, -1, owner[1][0])
}

func TestPlotLines_SinglePointRightAligned(t *testing.T) {
	lines := []scheduler.ChartSeries{seriesOn("a", "a", 0, 50)}

	grid, _ := plotLines(lines, 5, 2, 100, 0, 0)

	for c := 0; c < 4; c++ {
		assert.Equal(t, brailleBase, grid[0][c])
		assert.Equal(t, brailleBase, grid[1][c])
	}
	assert.True(t, grid[0][4] != brailleBase || grid[1][4] != brailleBase)
}

func TestPlotLines_OwnerIsLastSeries(t *testing.T) {
	lines := []scheduler.ChartSeries{
		seriesOn("a", "a", 1, 50, 50),
		seriesOn("b", "b", 1, 50, 50),
	}

	_, owner := plotLines(lines, 2, 2, 100, 0, 1)

	found := false
	for _, row := range owner {
		for _, o := range row {
			if o >= 0 {
				assert.Equal(t, 1, o)
				found = true
			}
		}
	}
	assert.True(t, found)
}

func TestRenderLegend(t *testing.T) {
	data := scheduler.ChartData{Series: []scheduler.ChartSeries{
		hostSeries(900, 850),
		seriesOn(alert.VSSRemainingKey("com.game"), "com.game remaining VSS", 1, 400, 196),
		seriesOn(alert.VSSRemainingKey("com.empty"), "com.empty remaining VSS", 1),
	}}

	host := RenderLegend(data, 0)
	assert.Contains(t, host, "free memory")
	assert.Contains(t, host, "850")
	assert.NotContains(t, host, "com.game")

	vss := RenderLegend(data, 1)
	assert.Contains(t, vss, "com.game remaining VSS 196")
	assert.NotContains(t, vss, "com.empty")
}

func TestRenderMiniSparkline(t *testing.T) {
	assert.Empty(t, RenderMiniSparkline(nil, 10))
	assert.Empty(t, RenderMiniSparkline([]float64{1}, 0))

	// 120 of a 144 scale lands on the sixth block.
	assert.Equal(t, "▁▆", RenderMiniSparkline([]float64{0, 120}, 10))

	long := make([]float64, 100)
	long[50] = 10
	out := RenderMiniSparkline(long, 10)
	assert.Equal(t, 10, len([]rune(out)))
	assert.Contains(t, out, "▆", "downsampling keeps the peak")
}

func TestResampleData(t *testing.T) {
	assert.Nil(t, resampleData(nil, 3))
	assert.Nil(t, resampleData([]float64{1}, 0))
	assert.Equal(t, []float64{1, 2}, resampleData([]float64{1, 2}, 5))
	assert.Equal(t, []float64{5, 3}, resampleData([]float64{1, 5, 2, 3}, 2))
}

func TestFormatMiB(t *testing.T) {
	assert.Equal(t, "0", formatMiB(0))
	assert.Equal(t, "360", formatMiB(360))
	assert.Equal(t, "4096", formatMiB(4096))
	assert.Equal(t, "12.0G", formatMiB(12288))
}

func TestValues(t *testing.T) {
	assert.Equal(t, []float64{3, 4}, Values(hostSeries(3, 4)))
}
