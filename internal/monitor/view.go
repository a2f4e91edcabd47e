package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Fallback size before the first WindowSizeMsg.
const (
	defaultWidth  = 80
	defaultHeight = 24
)

// minChartHeight is the smallest braille chart worth drawing. Below it the
// dashboard falls back to one sparkline per series.
const minChartHeight = 4

// Chart titles, one per axis.
var chartTitles = [2]string{"host free memory (MiB)", "remaining virtual memory (MiB)"}

func (m Model) size() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	width, height := m.size()

	sections := []string{m.renderHeader(width)}
	if b := m.renderBanner(width); b != "" {
		sections = append(sections, b)
	}
	sections = append(sections, m.renderStatus(width))

	footer := m.renderFooter(width)
	used := 0
	for _, s := range sections {
		used += lipgloss.Height(s)
	}
	remaining := height - used - lipgloss.Height(footer)

	if charts := m.renderCharts(width, remaining); charts != "" {
		sections = append(sections, charts)
	}
	sections = append(sections, footer)

	return strings.Join(sections, "\n")
}

// renderHeader renders the title bar with device and alert state.
func (m Model) renderHeader(width int) string {
	title := TitleStyle.Render("emuwatch")

	device := "no emulator"
	if m.status.Device != "" {
		device = m.status.Device
	}

	parts := []string{LabelStyle.Render(device)}
	if m.controls != nil {
		parts = append(parts, indicator("alerts", !m.controls.Muted()), indicator("sound", m.controls.Audio()))
	}

	var updated string
	switch secs := m.SecondsSinceUpdate(); {
	case secs < 0:
		updated = IndicatorWaiting + " waiting"
	case secs == 0:
		updated = "just now"
	default:
		updated = fmt.Sprintf("%ds ago", secs)
	}
	parts = append(parts, LabelStyle.Render("updated "+updated))

	line := title + LabelStyle.Render(" | ") + strings.Join(parts, LabelStyle.Render(" | "))
	return HeaderStyle.Width(width).MaxWidth(width).Render(line)
}

func indicator(name string, on bool) string {
	if on {
		return lipgloss.NewStyle().Foreground(ColorHealthy).Render(IndicatorOn) + LabelStyle.Render(" "+name)
	}
	return MutedStyle.Render(IndicatorOff + " " + name + " off")
}

// renderBanner renders the active alert or info banner, if any.
func (m Model) renderBanner(width int) string {
	if m.banner.text == "" {
		return ""
	}
	style := InfoBannerStyle
	if m.banner.alert {
		style = BannerStyle
	}
	return style.Width(width).MaxWidth(width).Render(m.banner.text)
}

// renderStatus renders the status lines verbatim in a bordered panel.
func (m Model) renderStatus(width int) string {
	lines := make([]string, len(m.status.Lines))
	for i, l := range m.status.Lines {
		lines[i] = StyleStatusLine(l)
	}

	style := PanelStyle
	if m.status.Alerting {
		style = AlertPanelStyle
	}
	// Width excludes the border.
	return style.Width(width - 2).Render(strings.Join(lines, "\n"))
}

// renderCharts renders both charts in the space left, or sparklines when
// there isn't room for braille.
func (m Model) renderCharts(width, space int) string {
	if space < 2 {
		return ""
	}

	// Each chart box adds a header, a legend and a footer row.
	chartHeight := (space - 2*3) / 2
	if chartHeight < minChartHeight {
		return m.renderSparklines(width, space)
	}

	boxes := make([]string, 0, 2)
	for axis := range chartTitles {
		boxes = append(boxes, m.renderChartBox(axis, width, chartHeight))
	}
	return strings.Join(boxes, "\n")
}

func (m Model) renderChartBox(axis, width, chartHeight int) string {
	inner := width - 4
	value := ""
	if top := m.chart.AxisMax(axis); top > 0 {
		value = "peak " + formatMiB(top)
	}

	lines := []string{SectionHeader(chartTitles[axis], value, width)}
	body := RenderChart(m.chart, axis, inner, chartHeight)
	for _, l := range strings.Split(body, "\n") {
		lines = append(lines, SectionContentLine(l, width))
	}
	lines = append(lines, SectionContentLine(RenderLegend(m.chart, axis), width))
	lines = append(lines, SectionFooter(width))
	return strings.Join(lines, "\n")
}

// renderSparklines renders one line per series for short terminals.
func (m Model) renderSparklines(width, space int) string {
	var lines []string
	for i, s := range m.chart.Series {
		if len(lines) >= space {
			break
		}
		if len(s.Points) == 0 {
			continue
		}
		label := fmt.Sprintf("%-24s", truncate(s.Label, 24))
		latest := formatMiB(s.Points[len(s.Points)-1].Value)
		spark := RenderMiniSparkline(Values(s), width-len(label)-len(latest)-3)
		color := SeriesColor(i)
		lines = append(lines, LabelStyle.Render(label)+" "+
			lipgloss.NewStyle().Foreground(color).Render(spark)+" "+ValueStyle.Render(latest))
	}
	return strings.Join(lines, "\n")
}

// renderFooter renders the key help.
func (m Model) renderFooter(width int) string {
	h := m.help
	h.Width = width
	return FooterStyle.Render(h.View(m.keys))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
