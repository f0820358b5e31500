package dashboard

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/anavsan/anavsan/console/internal/tui"
)

type helpModel struct {
	visible bool
}

func (h *helpModel) toggle() {
	h.visible = !h.visible
}

func (h helpModel) bar(focus Focus) string {
	if focus == FocusSidebar {
		return tui.Help.Render("  q quit  Tab content  j/k move  enter open  a activity  ? help")
	}
	return tui.Help.Render("  q quit  Tab sidebar  j/k move  / search  s sort  ←/→ page  a activity  ? help")
}

func (h helpModel) View() string {
	title := tui.Title.Render("Keyboard Shortcuts") + "\n\n"

	binds := []struct {
		key  string
		desc string
	}{
		{"q / Ctrl+C", "Quit"},
		{"Tab", "Switch between sidebar and page"},
		{"j / k", "Move down / up"},
		{"enter", "Open page or submenu, act on the selected row"},
		{"/", "Search the current list (esc clears)"},
		{"s / S", "Next sort column / flip direction"},
		{"f / x", "Cycle filter / clear filters"},
		{"1-9", "Show or hide a column"},
		{"← → [ ]", "Previous / next page"},
		{"y", "Copy query id or optimized SQL"},
		{"d", "Compare SQL of the selected recommendation"},
		{"R", "Mark all notifications read"},
		{"u / c", "Change plan / cancel scheduled downgrade"},
		{"i / s / r / x", "Team: invite, suspend, reactivate, remove"},
		{"a", "Toggle the activity panel"},
		{"?", "Toggle this help"},
	}

	keyStyle := lipgloss.NewStyle().
		Foreground(tui.ColorAccent).
		Bold(true).
		Width(16)

	descStyle := lipgloss.NewStyle().
		Foreground(tui.ColorText)

	s := title
	for _, b := range binds {
		s += "  " + keyStyle.Render(b.key) + descStyle.Render(b.desc) + "\n"
	}
	s += "\n" + tui.Help.Render("  Press ? to close")

	return lipgloss.NewStyle().Padding(1, 2).Render(s)
}
