package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dev-Pau/evidens/internal/feed"
	"github.com/dev-Pau/evidens/internal/optimistic"
	"github.com/dev-Pau/evidens/internal/screen"
)

// Command factories for async operations. Each runs the remote half off
// the update loop.

// FetchPageCmd runs a page request for s under its cache context, so
// closing the screen cancels the fetch.
func FetchPageCmd(s *screen.Screen, req feed.Request, timeout time.Duration) tea.Cmd {
	parent := s.Cache.Context()
	pager := s.Pager
	id := s.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()

		return PageLoadedMsg{ScreenID: id, Pager: pager, Result: req.Run(ctx)}
	}
}

// RunActionCmd runs the remote half of an optimistic action for s under the
// app context, not the screen's. Closing s does not cancel the write.
func RunActionCmd(parent context.Context, s *screen.Screen, p *optimistic.Pending, timeout time.Duration) tea.Cmd {
	mutator := s.Mutator
	id := s.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()

		return ActionDoneMsg{ScreenID: id, Mutator: mutator, Outcome: p.Run(ctx)}
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
