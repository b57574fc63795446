package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"taskboard/internal/service"
	"taskboard/internal/session"
)

// Options configures Run.
type Options struct {
	Session    *session.Manager
	Service    service.Service
	PageSize   int
	BoardLimit int
}

// Run starts the full-screen program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, opts Options) error {
	m := New(ctx, opts.Session, opts.Service, opts.PageSize, opts.BoardLimit)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// Transitions made outside a command, such as a 401 tearing the session
	// down, must still trigger a render.
	unsubscribe := opts.Session.Subscribe(func(session.State) {
		go p.Send(sessionMsg{})
	})
	defer unsubscribe()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
