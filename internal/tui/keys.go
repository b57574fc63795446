package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the authenticated screens.
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
	NextPage key.Binding
	PrevPage key.Binding

	// Board
	MoveLeft  key.Binding
	MoveRight key.Binding
	Project   key.Binding

	// Actions
	Refresh key.Binding
	Add     key.Binding
	Filter  key.Binding
	Search  key.Binding
	Status  key.Binding
	Unread  key.Binding
	Comment key.Binding
	Member  key.Binding
	Enter   key.Binding
	Escape  key.Binding
	Logout  key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "column"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "column"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next view"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous view"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("n", "pgdown"),
			key.WithHelp("n", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("p", "pgup"),
			key.WithHelp("p", "previous page"),
		),
		MoveLeft: key.NewBinding(
			key.WithKeys("<", "H", "shift+left"),
			key.WithHelp("<", "move task left"),
		),
		MoveRight: key.NewBinding(
			key.WithKeys(">", "L", "shift+right"),
			key.WithHelp(">", "move task right"),
		),
		Project: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "project"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "project/team"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Status: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "status"),
		),
		Unread: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "unread only"),
		),
		Comment: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "comment"),
		),
		Member: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "add member"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Logout: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "log out"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// BoardHelp returns the bindings shown under the board.
func (k KeyMap) BoardHelp() []key.Binding {
	return []key.Binding{k.Left, k.Up, k.MoveLeft, k.MoveRight, k.Project, k.Add, k.Refresh, k.Quit}
}

// TasksHelp returns the bindings shown under the tasks table.
func (k KeyMap) TasksHelp() []key.Binding {
	return []key.Binding{k.Up, k.NextPage, k.PrevPage, k.Filter, k.Search, k.Status, k.Add, k.Enter, k.Escape, k.Quit}
}

// TeamsHelp returns the bindings shown under the teams table.
func (k KeyMap) TeamsHelp() []key.Binding {
	return []key.Binding{k.Up, k.NextPage, k.PrevPage, k.Add, k.Enter, k.Member, k.Escape, k.Refresh, k.Quit}
}

// NotificationsHelp returns the bindings shown under the notifications feed.
func (k KeyMap) NotificationsHelp() []key.Binding {
	return []key.Binding{k.Up, k.NextPage, k.PrevPage, k.Unread, k.Refresh, k.Quit}
}
