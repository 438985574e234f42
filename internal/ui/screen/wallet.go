package screen

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cryptothud/solana-next-typescript-starter/internal/ui"
	"github.com/cryptothud/solana-next-typescript-starter/internal/ui/router"
	"github.com/cryptothud/solana-next-typescript-starter/internal/ui/style"
	"github.com/cryptothud/solana-next-typescript-starter/internal/utils"
)

// WalletScreen показывает баланс SOL владельца.
type WalletScreen struct {
	services *ui.Services
	keyMap   ui.KeyMap
	help     help.Model
	spinner  spinner.Model
	width    int
	height   int

	loading  bool
	lamports uint64
	err      error
}

func NewWalletScreen(services *ui.Services) *WalletScreen {
	return &WalletScreen{
		services: services,
		keyMap:   ui.DefaultKeyMap(),
		help:     help.New(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		loading:  true,
	}
}

func (s *WalletScreen) Init() tea.Cmd {
	return tea.Batch(s.spinner.Tick, s.services.LoadBalanceCmd())
}

func (s *WalletScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.BalanceLoadedMsg:
		s.loading = false
		s.lamports = msg.Lamports
		s.err = msg.Err
		return s, nil

	case spinner.TickMsg:
		if !s.loading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keyMap.Quit):
			return s, tea.Quit
		case key.Matches(msg, s.keyMap.Refresh):
			if s.loading {
				return s, nil
			}
			s.loading = true
			return s, tea.Batch(s.spinner.Tick, s.services.LoadBalanceCmd())
		}
	}
	return s, nil
}

func (s *WalletScreen) View() string {
	var b strings.Builder
	b.WriteString(style.TitleStyle.Render("Wallet"))
	b.WriteString("\n")
	b.WriteString(style.SecondaryStyle.Render(s.services.Owner.String()))
	b.WriteString("\n\n")

	switch {
	case s.loading:
		b.WriteString(s.spinner.View() + " Loading balance...")
	case s.err != nil:
		b.WriteString(style.ErrorStyle.Render("Failed to load balance: " + s.err.Error()))
	default:
		b.WriteString(style.BalanceStyle.Render(utils.FormatSOL(s.lamports) + " SOL"))
	}

	b.WriteString("\n\n")
	b.WriteString(s.help.View(s.keyMap.ContextualHelp(ui.RouteWallet)))
	return lipgloss.NewStyle().Padding(0, 2).Render(b.String())
}

func (s *WalletScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.help.Width = width
}
