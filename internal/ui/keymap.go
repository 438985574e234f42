package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines keyboard shortcuts for the application
type KeyMap struct {
	Quit key.Binding
	Back key.Binding
	Help key.Binding

	Up    key.Binding
	Down  key.Binding
	Enter key.Binding

	NextPage key.Binding
	PrevPage key.Binding
	Refresh  key.Binding

	Wallet  key.Binding
	Gallery key.Binding
	Logs    key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "l", "n"),
			key.WithHelp("→/n", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "h", "p"),
			key.WithHelp("←/p", "prev page"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Wallet: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "wallet"),
		),
		Gallery: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "gallery"),
		),
		Logs: key.NewBinding(
			key.WithKeys("f12", "L"),
			key.WithHelp("F12/L", "logs"),
		),
	}
}

// ContextHelp - KeyMap для bubbles/help с набором клавиш конкретного экрана.
type ContextHelp struct {
	short []key.Binding
	full  [][]key.Binding
}

func (h ContextHelp) ShortHelp() []key.Binding  { return h.short }
func (h ContextHelp) FullHelp() [][]key.Binding { return h.full }

// ContextualHelp returns the bindings relevant to a route
func (k KeyMap) ContextualHelp(route Route) ContextHelp {
	switch route {
	case RouteMenu:
		return ContextHelp{
			short: []key.Binding{k.Up, k.Down, k.Enter, k.Quit},
			full:  [][]key.Binding{{k.Up, k.Down, k.Enter}, {k.Wallet, k.Gallery, k.Logs}, {k.Help, k.Quit}},
		}
	case RouteWallet:
		return ContextHelp{
			short: []key.Binding{k.Refresh, k.Back, k.Quit},
			full:  [][]key.Binding{{k.Refresh}, {k.Back, k.Quit}},
		}
	case RouteGallery:
		return ContextHelp{
			short: []key.Binding{k.PrevPage, k.NextPage, k.Refresh, k.Back},
			full:  [][]key.Binding{{k.Up, k.Down, k.PrevPage, k.NextPage}, {k.Refresh, k.Back, k.Quit}},
		}
	case RouteLogs:
		return ContextHelp{
			short: []key.Binding{k.Up, k.Down, k.Back},
			full:  [][]key.Binding{{k.Up, k.Down}, {k.Back, k.Quit}},
		}
	}
	return ContextHelp{short: []key.Binding{k.Quit}, full: [][]key.Binding{{k.Quit}}}
}
