package screen

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cryptothud/solana-next-typescript-starter/internal/ui"
	"github.com/cryptothud/solana-next-typescript-starter/internal/ui/router"
	"github.com/cryptothud/solana-next-typescript-starter/internal/ui/style"
	"github.com/cryptothud/solana-next-typescript-starter/internal/utils"
)

// MenuItem represents a menu item
type MenuItem struct {
	Label       string
	Description string
	Route       ui.Route
}

// MenuScreen - главный экран со списком разделов.
type MenuScreen struct {
	width  int
	height int
	keyMap ui.KeyMap
	help   help.Model

	owner    string
	items    []MenuItem
	selected int
}

func NewMenuScreen(services *ui.Services) *MenuScreen {
	items := []MenuItem{
		{Label: "◎ Wallet", Description: "SOL balance of the connected wallet", Route: ui.RouteWallet},
		{Label: "▦ Gallery", Description: "NFTs held by the wallet", Route: ui.RouteGallery},
	}
	if services.Logs != nil {
		items = append(items, MenuItem{Label: "☰ Logs", Description: "Recent application logs", Route: ui.RouteLogs})
	}
	return &MenuScreen{
		keyMap: ui.DefaultKeyMap(),
		help:   help.New(),
		owner:  services.Owner.String(),
		items:  items,
	}
}

func (m *MenuScreen) Init() tea.Cmd {
	return nil
}

func (m *MenuScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keyMap.Quit):
		return m, tea.Quit
	case key.Matches(keyMsg, m.keyMap.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(keyMsg, m.keyMap.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(keyMsg, m.keyMap.Down):
		if m.selected < len(m.items)-1 {
			m.selected++
		}
	case key.Matches(keyMsg, m.keyMap.Enter):
		return m, ui.Navigate(m.items[m.selected].Route)
	case key.Matches(keyMsg, m.keyMap.Wallet):
		return m, ui.Navigate(ui.RouteWallet)
	case key.Matches(keyMsg, m.keyMap.Gallery):
		return m, ui.Navigate(ui.RouteGallery)
	case key.Matches(keyMsg, m.keyMap.Logs):
		if m.hasRoute(ui.RouteLogs) {
			return m, ui.Navigate(ui.RouteLogs)
		}
	}
	return m, nil
}

func (m *MenuScreen) hasRoute(route ui.Route) bool {
	for _, item := range m.items {
		if item.Route == route {
			return true
		}
	}
	return false
}

func (m *MenuScreen) View() string {
	var b strings.Builder
	b.WriteString(style.TitleStyle.Render("Solana Starter"))
	b.WriteString("\n")
	b.WriteString(style.SecondaryStyle.Render("Wallet: " + utils.ShortenAddress(m.owner)))
	b.WriteString("\n\n")

	for i, item := range m.items {
		if i == m.selected {
			b.WriteString(style.SelectedItemStyle.Render(item.Label))
		} else {
			b.WriteString(style.ItemStyle.Render(item.Label))
		}
		b.WriteString("  ")
		b.WriteString(style.MutedStyle.Render(item.Description))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keyMap.ContextualHelp(ui.RouteMenu)))
	return lipgloss.NewStyle().Padding(0, 2).Render(b.String())
}

func (m *MenuScreen) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
}
