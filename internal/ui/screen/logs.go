package screen

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cryptothud/solana-next-typescript-starter/internal/logger"
	"github.com/cryptothud/solana-next-typescript-starter/internal/ui"
	"github.com/cryptothud/solana-next-typescript-starter/internal/ui/router"
	"github.com/cryptothud/solana-next-typescript-starter/internal/ui/style"
)

const (
	logsRefreshInterval = time.Second
	logsMaxEntries      = 500
)

// LogsScreen показывает последние записи из LogBuffer.
type LogsScreen struct {
	buffer *logger.LogBuffer
	keyMap ui.KeyMap
	help   help.Model
	width  int
	height int

	entries []logger.LogEntry
	// offset - сколько записей пропущено от конца (0 - хвост)
	offset int
}

func NewLogsScreen(buffer *logger.LogBuffer) *LogsScreen {
	return &LogsScreen{
		buffer: buffer,
		keyMap: ui.DefaultKeyMap(),
		help:   help.New(),
		height: 24,
	}
}

func (s *LogsScreen) Init() tea.Cmd {
	s.refresh()
	return ui.LogsTickCmd(logsRefreshInterval)
}

func (s *LogsScreen) refresh() {
	s.entries = s.buffer.Recent(logsMaxEntries)
	if limit := s.maxOffset(); s.offset > limit {
		s.offset = limit
	}
}

// visible - сколько строк помещается на экране.
func (s *LogsScreen) visible() int {
	n := s.height - 8
	if n < 5 {
		n = 5
	}
	return n
}

func (s *LogsScreen) maxOffset() int {
	if n := len(s.entries) - s.visible(); n > 0 {
		return n
	}
	return 0
}

func (s *LogsScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.LogsTickMsg:
		s.refresh()
		return s, ui.LogsTickCmd(logsRefreshInterval)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keyMap.Quit):
			return s, tea.Quit
		case key.Matches(msg, s.keyMap.Up):
			if s.offset < s.maxOffset() {
				s.offset++
			}
		case key.Matches(msg, s.keyMap.Down):
			if s.offset > 0 {
				s.offset--
			}
		}
	}
	return s, nil
}

func (s *LogsScreen) View() string {
	var b strings.Builder
	total, dropped := s.buffer.Stats()
	b.WriteString(style.TitleStyle.Render("Logs"))
	b.WriteString("\n")
	b.WriteString(style.MutedStyle.Render(fmt.Sprintf("%d entries, %d unparsed", total, dropped)))
	b.WriteString("\n\n")

	end := len(s.entries) - s.offset
	start := end - s.visible()
	if start < 0 {
		start = 0
	}
	if len(s.entries) == 0 {
		b.WriteString(style.MutedStyle.Render("No log entries yet"))
	}
	for _, e := range s.entries[start:end] {
		b.WriteString(renderEntry(e))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(s.help.View(s.keyMap.ContextualHelp(ui.RouteLogs)))
	return lipgloss.NewStyle().Padding(0, 2).Render(b.String())
}

func renderEntry(e logger.LogEntry) string {
	line := fmt.Sprintf("%s %-5s %s",
		style.MutedStyle.Render(e.Timestamp.Format("15:04:05")),
		style.LevelStyle(e.Level).Render(e.Level),
		e.Message)
	if e.Logger != "" {
		line += style.SecondaryStyle.Render(" [" + e.Logger + "]")
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Fields[k]))
		}
		line += " " + style.MutedStyle.Render(strings.Join(parts, " "))
	}
	return line
}

func (s *LogsScreen) SetSize(width, height int) {
	s.width = width
	if height > 0 {
		s.height = height
	}
	s.help.Width = width
}
