package dashboard

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/anavsan/anavsan/console/internal/eventbus"
	"github.com/anavsan/anavsan/console/internal/tui"
)

const maxActivityLines = 500

// EventMsg wraps an event from the bus.
type EventMsg struct {
	Event eventbus.Event
}

type activityModel struct {
	viewport   viewport.Model
	lines      []string
	autoScroll bool
	visible    bool
}

func newActivity() activityModel {
	return activityModel{
		viewport:   viewport.New(80, 6),
		autoScroll: true,
	}
}

func (a *activityModel) SetSize(width, height int) {
	a.viewport.Width = width
	a.viewport.Height = height
}

func (a *activityModel) add(e eventbus.Event) {
	a.lines = append(a.lines, formatEvent(e))
	if len(a.lines) > maxActivityLines {
		a.lines = a.lines[len(a.lines)-maxActivityLines:]
	}
	a.viewport.SetContent(strings.Join(a.lines, "\n"))
	if a.autoScroll {
		a.viewport.GotoBottom()
	}
}

func formatEvent(e eventbus.Event) string {
	ts := e.Timestamp.Format("15:04:05")

	if e.Type == eventbus.LogEntry {
		var rec eventbus.LogRecord
		if err := e.Decode(&rec); err == nil {
			keys := make([]string, 0, len(rec.Attrs))
			for k := range rec.Attrs {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			attrs := make([]string, 0, len(keys))
			for _, k := range keys {
				attrs = append(attrs, fmt.Sprintf("%s=%v", k, rec.Attrs[k]))
			}

			line := fmt.Sprintf("  %s %s  %s", ts, tui.LogLevelStyle(rec.Level).Render(fmt.Sprintf("%-5s", rec.Level)), rec.Message)
			if rec.Component != "" {
				line += "  " + tui.Description.Render("["+rec.Component+"]")
			}
			if len(attrs) > 0 {
				line += "  " + tui.Dimmed.Render(strings.Join(attrs, " "))
			}
			return line
		}
	}

	return fmt.Sprintf("  %s %s  %s", ts, tui.Selected.Render(e.Type), tui.Dimmed.Render(string(e.Data)))
}

func (a activityModel) Update(msg tea.Msg) (activityModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "G":
			a.autoScroll = true
			a.viewport.GotoBottom()
			return a, nil
		case "g":
			a.autoScroll = false
			a.viewport.GotoTop()
			return a, nil
		case "j", "down", "k", "up":
			a.autoScroll = false
		}
	}
	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

func (a activityModel) View() string {
	if len(a.lines) == 0 {
		return tui.Dimmed.Render("  No activity yet")
	}
	return a.viewport.View()
}
