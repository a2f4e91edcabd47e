package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HeaderInfo is shown at the top of interactive commands.
type HeaderInfo struct {
	Version string
	Tagline string
	Detail  string // e.g. the config path being written
}

// HeaderWidth is the width of the divider under the header.
const HeaderWidth = 50

// RenderHeader renders the product name, version and an optional
// tagline and detail line, followed by a divider.
func RenderHeader(info HeaderInfo) string {
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Foreground(ColorNeonPink).Bold(true).Render("emuwatch"))
	if info.Version != "" {
		b.WriteString(" " + lipgloss.NewStyle().Foreground(ColorNeonCyan).Render(info.Version))
	}
	b.WriteString("\n")

	if info.Tagline != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(ColorSecondary).Render(info.Tagline) + "\n")
	}
	if info.Detail != "" {
		b.WriteString(MutedStyle.Render(info.Detail) + "\n")
	}

	b.WriteString(lipgloss.NewStyle().Foreground(ColorGlassBorder).Render(strings.Repeat("━", HeaderWidth)))
	b.WriteString("\n")
	return b.String()
}
