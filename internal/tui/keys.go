package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application
type KeyMap struct {
	// Navigation
	NextTab key.Binding
	PrevTab key.Binding
	Tab1    key.Binding
	Tab2    key.Binding
	Tab3    key.Binding
	Tab4    key.Binding
	Open    key.Binding
	Close   key.Binding

	// Screen
	Quit            key.Binding
	Help            key.Binding
	Escape          key.Binding
	Filter          key.Binding
	Search          key.Binding
	Refresh         key.Binding
	ToggleInspector key.Binding

	// Content actions
	Like          key.Binding
	Bookmark      key.Binding
	Comment       key.Binding
	DeleteComment key.Binding
	Revise        key.Binding
	Solve         key.Binding
	Hide          key.Binding
	Unhide        key.Binding
	Follow        key.Binding

	// Confirmations
	Confirm key.Binding
	Deny    key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextTab: key.NewBinding(
			key.WithKeys("tab", "right"),
			key.WithHelp("tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "left"),
			key.WithHelp("S-tab", "previous tab"),
		),
		Tab1: key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "home")),
		Tab2: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "search")),
		Tab3: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "my cases")),
		Tab4: key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "bookmarks")),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open case"),
		),
		Close: key.NewBinding(
			key.WithKeys("x", "backspace"),
			key.WithHelp("x", "close case"),
		),

		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Search: key.NewBinding(
			key.WithKeys("S", "ctrl+f"),
			key.WithHelp("S", "search"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		ToggleInspector: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "toggle detail"),
		),

		Like: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "like"),
		),
		Bookmark: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "bookmark"),
		),
		Comment: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "comment"),
		),
		DeleteComment: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "delete my last comment"),
		),
		Revise: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "add revision"),
		),
		Solve: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "mark solved"),
		),
		Hide: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "hide"),
		),
		Unhide: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "unhide"),
		),
		Follow: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "follow author"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "yes"),
		),
		Deny: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "no"),
		),
	}
}

// Keys is the global key map instance
var Keys = DefaultKeyMap()
