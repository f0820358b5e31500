// Package tui provides the shared theme and styles for the console.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colors: brand palette.
var (
	ColorPrimary   = lipgloss.Color("#0EA5E9") // sky
	ColorSecondary = lipgloss.Color("#14B8A6") // teal
	ColorAccent    = lipgloss.Color("#F59E0B") // amber

	ColorSuccess = lipgloss.Color("#10B981")
	ColorWarning = lipgloss.Color("#F59E0B")
	ColorError   = lipgloss.Color("#EF4444")
	ColorMuted   = lipgloss.Color("#6B7280")
	ColorText    = lipgloss.Color("#E5E7EB")
	ColorSubtle  = lipgloss.Color("#9CA3AF")

	ColorAddedBg   = lipgloss.Color("#064E3B")
	ColorRemovedBg = lipgloss.Color("#7F1D1D")
)

// Shared styles used across the dashboard, dialogs and checkout.
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary)

	Description = lipgloss.NewStyle().
			Foreground(ColorSubtle)

	Selected = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	Dimmed = lipgloss.NewStyle().
		Foreground(ColorMuted)

	Success = lipgloss.NewStyle().
		Foreground(ColorSuccess)

	// ErrorStyle avoids colliding with the builtin error.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	Help = lipgloss.NewStyle().
		Foreground(ColorMuted)

	Border = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(0, 1)

	// Modal frames dialogs and the checkout.
	Modal = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorAccent).
		Padding(1, 2)

	TableHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSubtle).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(ColorMuted)

	Badge = lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Foreground(lipgloss.Color("#FFFFFF"))

	// Diff line highlights.
	DiffAdded     = lipgloss.NewStyle().Background(ColorAddedBg).Foreground(ColorText)
	DiffRemoved   = lipgloss.NewStyle().Background(ColorRemovedBg).Foreground(ColorText)
	DiffUnchanged = lipgloss.NewStyle().Foreground(ColorSubtle)
)

// StatusBadge renders a subscription or member status as a coloured badge.
func StatusBadge(status string) string {
	bg := ColorMuted
	switch strings.ToLower(status) {
	case "active", "paid":
		bg = ColorSuccess
	case "trialing", "invited", "pending":
		bg = ColorSecondary
	case "past_due", "suspended", "overdue":
		bg = ColorWarning
	case "canceled", "failed":
		bg = ColorError
	}
	return Badge.Background(bg).Render(strings.ReplaceAll(status, "_", " "))
}

// LogLevelStyle returns a style for the given log level.
func LogLevelStyle(level string) lipgloss.Style {
	switch level {
	case "DEBUG":
		return lipgloss.NewStyle().Foreground(ColorMuted)
	case "INFO":
		return lipgloss.NewStyle().Foreground(ColorSuccess)
	case "WARN":
		return lipgloss.NewStyle().Foreground(ColorWarning)
	case "ERROR":
		return lipgloss.NewStyle().Foreground(ColorError)
	default:
		return lipgloss.NewStyle().Foreground(ColorText)
	}
}

// Truncate cuts s to width cells, marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
