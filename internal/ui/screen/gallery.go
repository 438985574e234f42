package screen

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cryptothud/solana-next-typescript-starter/internal/nft"
	"github.com/cryptothud/solana-next-typescript-starter/internal/ui"
	"github.com/cryptothud/solana-next-typescript-starter/internal/ui/router"
	"github.com/cryptothud/solana-next-typescript-starter/internal/ui/style"
	"github.com/cryptothud/solana-next-typescript-starter/internal/utils"
)

// GalleryPageSize - сколько NFT на одной странице галереи.
const GalleryPageSize = 6

const (
	defaultNameWidth = 28
	minNameWidth     = 10
	maxNameWidth     = 40
	// уже этого панель деталей уходит под список
	stackedWidth = 70
)

// GalleryScreen - постраничный список NFT владельца.
type GalleryScreen struct {
	services *ui.Services
	keyMap   ui.KeyMap
	help     help.Model
	spinner  spinner.Model
	width    int
	height   int

	loading bool
	err     error
	nfts    []nft.NFT
	page    int // с 1
	cursor  int // внутри страницы
}

func NewGalleryScreen(services *ui.Services) *GalleryScreen {
	return &GalleryScreen{
		services: services,
		keyMap:   ui.DefaultKeyMap(),
		help:     help.New(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		loading:  true,
		page:     1,
	}
}

func (s *GalleryScreen) Init() tea.Cmd {
	return tea.Batch(s.spinner.Tick, s.services.LoadNFTsCmd())
}

func (s *GalleryScreen) pages() int {
	return utils.PageCount(len(s.nfts), GalleryPageSize)
}

func (s *GalleryScreen) current() []nft.NFT {
	return utils.Paginate(s.nfts, GalleryPageSize, s.page)
}

func (s *GalleryScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.NFTsLoadedMsg:
		s.loading = false
		s.err = msg.Err
		s.nfts = msg.NFTs
		s.page, s.cursor = 1, 0
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
		case key.Matches(msg, s.keyMap.Help):
			s.help.ShowAll = !s.help.ShowAll
		case key.Matches(msg, s.keyMap.Refresh):
			if !s.loading {
				s.loading = true
				return s, tea.Batch(s.spinner.Tick, s.services.LoadNFTsCmd())
			}
		case key.Matches(msg, s.keyMap.NextPage):
			if s.page < s.pages() {
				s.page++
				s.cursor = 0
			}
		case key.Matches(msg, s.keyMap.PrevPage):
			if s.page > 1 {
				s.page--
				s.cursor = 0
			}
		case key.Matches(msg, s.keyMap.Up):
			if s.cursor > 0 {
				s.cursor--
			}
		case key.Matches(msg, s.keyMap.Down):
			if s.cursor < len(s.current())-1 {
				s.cursor++
			}
		}
	}
	return s, nil
}

// Selected возвращает NFT под курсором.
func (s *GalleryScreen) Selected() (nft.NFT, bool) {
	items := s.current()
	if s.cursor >= len(items) {
		return nft.NFT{}, false
	}
	return items[s.cursor], true
}

func (s *GalleryScreen) View() string {
	var b strings.Builder
	b.WriteString(style.TitleStyle.Render("NFT Gallery"))
	b.WriteString("\n")

	switch {
	case s.loading:
		b.WriteString(s.spinner.View() + " Loading NFTs...")
	case s.err != nil:
		b.WriteString(style.ErrorStyle.Render("Failed to load NFTs: " + s.err.Error()))
	case len(s.nfts) == 0:
		b.WriteString(style.MutedStyle.Render("No NFTs found"))
	default:
		b.WriteString(s.renderPage())
	}

	b.WriteString("\n\n")
	b.WriteString(s.help.View(s.keyMap.ContextualHelp(ui.RouteGallery)))
	return lipgloss.NewStyle().Padding(0, 2).Render(b.String())
}

func (s *GalleryScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.help.Width = width
}

// nameWidth - ширина колонки имени под текущий размер окна.
func (s *GalleryScreen) nameWidth() int {
	if s.width <= 0 {
		return defaultNameWidth
	}
	w := s.width/2 - 16
	if w < minNameWidth {
		return minNameWidth
	}
	if w > maxNameWidth {
		return maxNameWidth
	}
	return w
}

func (s *GalleryScreen) renderPage() string {
	nameWidth := s.nameWidth()
	var list strings.Builder
	for i, item := range s.current() {
		line := fmt.Sprintf("%-*s %s", nameWidth, truncate(item.Name(), nameWidth), utils.ShortenAddress(item.Mint.String()))
		if i == s.cursor {
			list.WriteString(style.SelectedItemStyle.Render(line))
		} else {
			list.WriteString(style.ItemStyle.Render(line))
		}
		list.WriteString("\n")
	}
	list.WriteString(style.MutedStyle.Render(fmt.Sprintf("Page %d / %d · %d NFTs", s.page, s.pages(), len(s.nfts))))

	details := ""
	if selected, ok := s.Selected(); ok {
		details = style.ActivePanelStyle.Render(renderDetails(selected))
	}
	if s.width > 0 && s.width < stackedWidth {
		return lipgloss.JoinVertical(lipgloss.Left, style.PanelStyle.Render(list.String()), details)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, style.PanelStyle.Render(list.String()), " ", details)
}

func renderDetails(n nft.NFT) string {
	var b strings.Builder
	b.WriteString(style.SubHeaderStyle.Render(n.Name()))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Mint:  %s\n", n.Mint)
	if n.External != nil {
		if n.External.Symbol != "" {
			fmt.Fprintf(&b, "Symbol: %s\n", n.External.Symbol)
		}
		if n.External.Description != "" {
			fmt.Fprintf(&b, "%s\n", truncate(n.External.Description, 60))
		}
		for _, attr := range n.External.Attributes {
			fmt.Fprintf(&b, "  %s: %v\n", attr.TraitType, attr.Value)
		}
	}
	if n.ImageURL != "" {
		b.WriteString(style.MutedStyle.Render("Image: " + n.ImageURL))
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
