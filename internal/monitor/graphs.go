package monitor

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/emuwatch/internal/scheduler"
)

// Braille character rendering for high-resolution terminal graphs.
//
// Braille patterns use a 2x4 dot matrix per character:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)
//
// Unicode braille starts at U+2800 (empty) and uses bit patterns:
// bit 0 = dot 1, bit 1 = dot 2, bit 2 = dot 3, bit 3 = dot 4,
// bit 4 = dot 5, bit 5 = dot 6, bit 6 = dot 7, bit 7 = dot 8

const brailleBase = '\u2800'

// HeadroomFactor scales the y axis above the largest plotted value.
const HeadroomFactor = 1.2

// sparklineBlocks are block characters for 8-level vertical resolution (lowest to highest).
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// brailleDots maps row/column to the bit offset for braille pattern
// [row][col] where row is 0-3 (top to bottom) and col is 0-1 (left to right)
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

// ChartScale returns the y-axis top for a chart whose largest value is
// maxVal. An empty chart gets a scale of 1 so nothing divides by zero.
func ChartScale(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	return maxVal * HeadroomFactor
}

// RenderChart draws every series on the given axis as braille lines
// sharing one time axis. width and height are in terminal cells and
// include the y labels and the x axis row.
func RenderChart(data scheduler.ChartData, axis, width, height int) string {
	var lines []scheduler.ChartSeries
	for _, s := range data.Series {
		if s.Axis == axis && len(s.Points) > 0 {
			lines = append(lines, s)
		}
	}

	plotHeight := height - 1
	if width < 8 || plotHeight < 1 {
		return ""
	}
	if len(lines) == 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			MutedStyle.Render("waiting for data"))
	}

	top := ChartScale(data.AxisMax(axis))
	labelWidth := len(formatMiB(top)) + 1
	plotWidth := width - labelWidth - 1
	if plotWidth < 1 {
		return ""
	}

	minE, maxE := timeRange(lines)
	grid, owner := plotLines(lines, plotWidth, plotHeight, top, minE, maxE)

	var b strings.Builder
	axisStyle := lipgloss.NewStyle().Foreground(ColorBorder)
	for r := 0; r < plotHeight; r++ {
		label := ""
		switch {
		case r == 0:
			label = formatMiB(top)
		case r == plotHeight-1:
			label = "0"
		case r == plotHeight/2:
			label = formatMiB(top / 2)
		}
		b.WriteString(LabelStyle.Render(fmt.Sprintf("%*s", labelWidth, label)))
		b.WriteString(axisStyle.Render("┤"))
		for c, ch := range grid[r] {
			color := ColorTextMuted
			if owner[r][c] >= 0 {
				color = SeriesColor(owner[r][c])
			}
			b.WriteString(lipgloss.NewStyle().Foreground(color).Render(string(ch)))
		}
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat(" ", labelWidth))
	b.WriteString(axisStyle.Render("└"))
	b.WriteString(xAxis(minE, maxE, plotWidth))
	return b.String()
}

// plotLines rasterizes the series into a braille grid. owner records
// which series last drew into each cell, -1 for none.
func plotLines(lines []scheduler.ChartSeries, width, height int, top, minE, maxE float64) ([][]rune, [][]int) {
	grid := make([][]rune, height)
	owner := make([][]int, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		owner[i] = make([]int, width)
		for j := range grid[i] {
			grid[i][j] = brailleBase
			owner[i][j] = -1
		}
	}

	dotsX := width * 2
	dotsY := height * 4

	for si, s := range lines {
		// Max per dot column keeps spikes visible when points outnumber columns.
		levels := make([]int, dotsX)
		for i := range levels {
			levels[i] = -1
		}
		for _, p := range s.Points {
			x := dotsX - 1
			if maxE > minE {
				x = int((p.Elapsed - minE) / (maxE - minE) * float64(dotsX-1))
			}
			x = clampInt(x, dotsX-1)
			level := clampInt(int(math.Round(p.Value/top*float64(dotsY-1))), dotsY-1)
			if level > levels[x] {
				levels[x] = level
			}
		}

		prev := -1
		for x, level := range levels {
			if level < 0 {
				continue
			}
			lo, hi := level, level
			if prev >= 0 {
				lo, hi = min(prev, level), max(prev, level)
			}
			for l := lo; l <= hi; l++ {
				row := height - 1 - l/4
				subRow := 3 - l%4
				grid[row][x/2] |= rune(1) << brailleDots[subRow][x%2]
				owner[row][x/2] = si
			}
			prev = level
		}
	}
	return grid, owner
}

func timeRange(lines []scheduler.ChartSeries) (minE, maxE float64) {
	minE, maxE = math.Inf(1), math.Inf(-1)
	for _, s := range lines {
		for _, p := range s.Points {
			minE = math.Min(minE, p.Elapsed)
			maxE = math.Max(maxE, p.Elapsed)
		}
	}
	return minE, maxE
}

func xAxis(minE, maxE float64, width int) string {
	left := fmt.Sprintf("%.0fs", minE)
	right := fmt.Sprintf("%.0fs", maxE)
	fill := width - len(left) - len(right)
	if fill < 1 {
		return LabelStyle.Render(fmt.Sprintf("%*s", width, right))
	}
	return LabelStyle.Render(left + strings.Repeat(" ", fill) + right)
}

// RenderLegend lists the series on axis with their line colors.
func RenderLegend(data scheduler.ChartData, axis int) string {
	var parts []string
	i := 0
	for _, s := range data.Series {
		if s.Axis != axis || len(s.Points) == 0 {
			continue
		}
		latest := s.Points[len(s.Points)-1].Value
		dot := lipgloss.NewStyle().Foreground(SeriesColor(i)).Render("●")
		parts = append(parts, dot+" "+LabelStyle.Render(s.Label)+" "+ValueStyle.Render(formatMiB(latest)))
		i++
	}
	return strings.Join(parts, "  ")
}

// RenderMiniSparkline renders a single-row sparkline using block characters.
// Used instead of the braille chart when the terminal is too short.
func RenderMiniSparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}

	minVal, maxVal := findMinMax(data)
	resampled := data
	if len(data) > width {
		resampled = resampleData(data, width)
	}

	var result strings.Builder
	for _, val := range resampled {
		normalized := normalizeValue(val, minVal, maxVal)
		idx := clampInt(int(normalized*float64(len(sparklineBlocks)-1)), len(sparklineBlocks)-1)
		result.WriteRune(sparklineBlocks[idx])
	}
	return result.String()
}

// Values extracts the y values of a series.
func Values(s scheduler.ChartSeries) []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// findMinMax returns the range a sparkline is drawn against: zero to the
// chart scale of the largest value.
func findMinMax(data []float64) (minVal, maxVal float64) {
	top := 0.0
	for _, v := range data {
		top = max(top, v)
	}
	return 0, ChartScale(top)
}

// normalizeValue converts a value to 0-1 range given min/max bounds.
func normalizeValue(val, minVal, maxVal float64) float64 {
	if maxVal > minVal {
		return (val - minVal) / (maxVal - minVal)
	}
	return 0.5
}

// clampInt clamps an integer to a range [0, maxVal].
func clampInt(val, maxVal int) int {
	if val < 0 {
		return 0
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// resampleData downsamples data to targetSize, keeping the max of each
// bucket so peaks survive.
func resampleData(data []float64, targetSize int) []float64 {
	if len(data) == 0 || targetSize <= 0 {
		return nil
	}
	if len(data) <= targetSize {
		return data
	}

	result := make([]float64, targetSize)
	bucketSize := float64(len(data)) / float64(targetSize)
	for i := 0; i < targetSize; i++ {
		start := int(float64(i) * bucketSize)
		end := int(float64(i+1) * bucketSize)
		if end > len(data) {
			end = len(data)
		}
		if start >= end {
			start = end - 1
		}

		maxVal := data[start]
		for j := start + 1; j < end; j++ {
			maxVal = max(maxVal, data[j])
		}
		result[i] = maxVal
	}
	return result
}

func formatMiB(v float64) string {
	if v >= 10240 {
		return fmt.Sprintf("%.1fG", v/1024)
	}
	return fmt.Sprintf("%.0f", v)
}
