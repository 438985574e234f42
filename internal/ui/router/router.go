package router

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cryptothud/solana-next-typescript-starter/internal/ui"
)

// Screen represents a screen that can be navigated to
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View() string
	SetSize(width, height int)
}

// Resolver создает экран для маршрута. false - маршрут неизвестен.
type Resolver func(route ui.Route) (Screen, bool)

// Router manages navigation between screens using a stack-based approach
type Router struct {
	stack   []Screen
	resolve Resolver
	root    ui.Route
	width   int
	height  int
}

var _ tea.Model = (*Router)(nil)

// New создает роутер с корневым экраном root.
func New(root ui.Route, resolve Resolver) *Router {
	r := &Router{resolve: resolve, root: root}
	if s, ok := resolve(root); ok {
		r.stack = []Screen{s}
	}
	return r
}

func (r *Router) Init() tea.Cmd {
	if len(r.stack) == 0 {
		return nil
	}
	return r.current().Init()
}

// Update processes messages and updates the current screen
func (r *Router) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.RouterMsg:
		return r, r.navigate(msg.To)

	case tea.WindowSizeMsg:
		r.SetSize(msg.Width, msg.Height)
		return r, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return r, tea.Quit
		}
		if msg.String() == "esc" && len(r.stack) > 1 {
			return r, r.Pop()
		}
	}

	if len(r.stack) == 0 {
		return r, nil
	}
	updated, cmd := r.current().Update(msg)
	r.stack[len(r.stack)-1] = updated
	return r, cmd
}

// navigate: корневой маршрут очищает стек, остальные кладутся сверху.
func (r *Router) navigate(route ui.Route) tea.Cmd {
	if route == r.root {
		return r.Clear()
	}
	s, ok := r.resolve(route)
	if !ok {
		return nil
	}
	return r.Push(s)
}

func (r *Router) View() string {
	if len(r.stack) == 0 {
		return "No screen available"
	}
	return r.current().View()
}

func (r *Router) SetSize(width, height int) {
	r.width = width
	r.height = height
	if len(r.stack) > 0 {
		r.current().SetSize(width, height)
	}
}

// Push adds a new screen to the navigation stack
func (r *Router) Push(screen Screen) tea.Cmd {
	screen.SetSize(r.width, r.height)
	r.stack = append(r.stack, screen)
	return screen.Init()
}

// Pop removes the current screen from the stack
func (r *Router) Pop() tea.Cmd {
	if len(r.stack) <= 1 {
		return nil
	}
	r.stack = r.stack[:len(r.stack)-1]
	r.current().SetSize(r.width, r.height)
	return nil
}

// Clear removes all screens except the first one
func (r *Router) Clear() tea.Cmd {
	if len(r.stack) <= 1 {
		return nil
	}
	r.stack = r.stack[:1]
	r.current().SetSize(r.width, r.height)
	return nil
}

func (r *Router) Current() Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.current()
}

func (r *Router) current() Screen {
	return r.stack[len(r.stack)-1]
}

// Depth returns the current navigation depth
func (r *Router) Depth() int {
	return len(r.stack)
}
