package tui

import (
	"github.com/dev-Pau/evidens/internal/feed"
	"github.com/dev-Pau/evidens/internal/optimistic"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// PageLoadedMsg carries a finished page fetch back to its screen.
// The pager travels with the message so a closed screen's result can
// still be dropped by its own generation check.
type PageLoadedMsg struct {
	ScreenID string
	Pager    *feed.Pager
	Result   feed.Result
}

// ActionDoneMsg carries a finished remote call back to its mutator.
// A confirmed change is published even when the screen closed meanwhile.
type ActionDoneMsg struct {
	ScreenID string
	Mutator  *optimistic.Mutator
	Outcome  optimistic.Outcome
}

// TickMsg is sent periodically for spinner animation
type TickMsg struct{}

// ClearStatusMsg clears the status message
type ClearStatusMsg struct{}
