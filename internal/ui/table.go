package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a non-focused Bubbles table sized to its rows.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.Foreground(ColorPrimary)
	// Nothing is selectable in command output.
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a table for plain command output.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}
	return NewTable(columns, tableRows).View()
}

// DeviceRow is one line of the devices listing.
type DeviceRow struct {
	Serial   string
	State    string
	Emulator string
	Current  bool
}

// RenderDeviceTable lists devices with a status glyph per row. The
// device monitoring would pick is marked with *.
func RenderDeviceTable(rows []DeviceRow) string {
	if len(rows) == 0 {
		return MutedStyle.Render("No devices attached")
	}

	serialWidth, emuWidth := len("SERIAL"), len("EMULATOR")
	for _, r := range rows {
		serialWidth = max(serialWidth, len(r.Serial)+2)
		emuWidth = max(emuWidth, len(r.Emulator))
	}

	var b strings.Builder
	header := "    " + padRight("SERIAL", serialWidth+2) + padRight("EMULATOR", emuWidth+2) + "STATE"
	b.WriteString(BoldStyle.Render(header) + "\n")

	for _, r := range rows {
		glyph := SuccessStyle.Render(SymbolComplete)
		state := r.State
		if r.State == "offline" || r.State == "unauthorized" {
			glyph = ErrorStyle.Render(SymbolFail)
			state = ErrorStyle.Render(r.State)
		}
		serial := r.Serial
		if r.Current {
			serial = BoldStyle.Render(r.Serial + " *")
		}
		emu := r.Emulator
		if emu == "" {
			emu = MutedStyle.Render("-")
		}
		b.WriteString("  " + glyph + " " + padRight(serial, serialWidth+2) + padRight(emu, emuWidth+2) + state + "\n")
	}
	return b.String()
}

// padRight pads s with spaces to width, ignoring ANSI escapes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}
