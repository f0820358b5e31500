package diffview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/anavsan/anavsan/console/internal/tui"
)

// Side selects a panel.
type Side int

const (
	Original Side = iota
	Optimized
)

// PanelLines renders one side as display lines: a gutter with the line
// number and a +/- marker, then the highlighted text cut to width.
func PanelLines(chunks []Chunk, side Side, width int) []string {
	visible := Left(chunks)
	if side == Optimized {
		visible = Right(chunks)
	}

	var out []string
	n := 0
	for _, c := range visible {
		style, mark := tui.DiffUnchanged, " "
		switch {
		case c.Added:
			style, mark = tui.DiffAdded, "+"
		case c.Removed:
			style, mark = tui.DiffRemoved, "-"
		}
		for _, line := range splitLines(c.Value) {
			n++
			text := strings.ReplaceAll(strings.TrimRight(line, "\r\n"), "\t", "    ")
			gutter := tui.Dimmed.Render(fmt.Sprintf("%3d %s ", n, mark))
			textWidth := max(width-lipgloss.Width(gutter), 1)
			out = append(out, gutter+style.Width(textWidth).Render(tui.Truncate(text, textWidth)))
		}
	}
	return out
}

// Render lays the original and optimized panels side by side within width
// columns, each headed by its title and change count.
func Render(old, new string, width int) string {
	chunks := Compute(old, new)
	stats := StatsOf(chunks)
	panelWidth := max((width-3)/2, 20)

	left := panel("Original", tui.ErrorStyle.Render(fmt.Sprintf("-%d", stats.Removed)),
		PanelLines(chunks, Original, panelWidth), panelWidth)
	right := panel("Optimized", tui.Success.Render(fmt.Sprintf("+%d", stats.Added)),
		PanelLines(chunks, Optimized, panelWidth), panelWidth)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, " │ ", right)
}

func panel(title, count string, lines []string, width int) string {
	header := tui.Subtitle.Render(title) + " " + count
	body := strings.Join(lines, "\n")
	if body == "" {
		body = tui.Dimmed.Render("(empty)")
	}
	return lipgloss.NewStyle().Width(width).Render(header + "\n" + body)
}
