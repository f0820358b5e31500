package dashboard

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/anavsan/anavsan/console/internal/eventbus"
)

// Run shows the dashboard on the alternate screen until the user quits or
// ctx is canceled. Events published on bus stream into the activity panel.
func Run(ctx context.Context, opts Options, bus *eventbus.Bus) error {
	m := NewModel(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if bus != nil {
		ch := bus.Subscribe()
		defer bus.Unsubscribe(ch)
		go func() {
			for evt := range ch {
				p.Send(EventMsg{Event: evt})
			}
		}()
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
