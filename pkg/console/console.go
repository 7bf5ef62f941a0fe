package console

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the console on the terminal and blocks until the operator quits
// or ctx is cancelled. Any log session still held by the view is closed
// before Run returns.
func Run(ctx context.Context, deps Deps) error {
	p := tea.NewProgram(New(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()

	if m, ok := final.(Model); ok {
		m.Shutdown()
	}
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Shutdown closes the open log session, if any, and stops the copy timer.
func (m Model) Shutdown() {
	if m.session != nil {
		_ = m.session.Close()
	}
	if m.sessionCancel != nil {
		m.sessionCancel()
	}
	m.deps.Clipboard.Stop()
}
