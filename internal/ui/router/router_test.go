package router

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptothud/solana-next-typescript-starter/internal/ui"
)

type stubScreen struct {
	name          string
	width, height int
	updates       int
}

func (s *stubScreen) Init() tea.Cmd { return nil }
func (s *stubScreen) Update(tea.Msg) (Screen, tea.Cmd) {
	s.updates++
	return s, nil
}
func (s *stubScreen) View() string              { return s.name }
func (s *stubScreen) SetSize(width, height int) { s.width, s.height = width, height }

func resolver(route ui.Route) (Screen, bool) {
	switch route {
	case ui.RouteMenu, ui.RouteWallet, ui.RouteGallery:
		return &stubScreen{name: string(route)}, true
	}
	return nil, false
}

func TestRouter_Navigation(t *testing.T) {
	r := New(ui.RouteMenu, resolver)
	require.Equal(t, 1, r.Depth())
	assert.Equal(t, "menu", r.View())

	r.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	r.Update(ui.RouterMsg{To: ui.RouteWallet})
	assert.Equal(t, 2, r.Depth())
	assert.Equal(t, "wallet", r.View())
	assert.Equal(t, 80, r.Current().(*stubScreen).width)

	// неизвестный маршрут игнорируется
	r.Update(ui.RouterMsg{To: ui.RouteLogs})
	assert.Equal(t, 2, r.Depth())

	r.Update(ui.RouterMsg{To: ui.RouteGallery})
	assert.Equal(t, 3, r.Depth())

	r.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, "wallet", r.View())

	r.Update(ui.RouterMsg{To: ui.RouteMenu})
	assert.Equal(t, 1, r.Depth())

	// корневой экран не снимается
	r.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 1, r.Depth())
	assert.Equal(t, 1, r.Current().(*stubScreen).updates)
}

func TestRouter_CtrlCQuits(t *testing.T) {
	r := New(ui.RouteMenu, resolver)
	_, cmd := r.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
