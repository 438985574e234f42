package style

import "github.com/charmbracelet/lipgloss"

var palette = DefaultPalette()

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true).
			Margin(1, 0)

	SubHeaderStyle = lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted).
			Padding(1, 2)

	ActivePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(palette.Primary).
				Padding(1, 2)
)

var (
	ItemStyle = lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 2)

	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(palette.Background).
				Background(palette.Primary).
				Padding(0, 2).
				Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(palette.TextMuted)

	SecondaryStyle = lipgloss.NewStyle().
			Foreground(palette.TextSecondary)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(palette.Error).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(palette.Warning)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(palette.Success).
			Bold(true)

	// BalanceStyle - крупная сумма на экране кошелька
	BalanceStyle = lipgloss.NewStyle().
			Foreground(palette.Success).
			Bold(true).
			Padding(1, 4).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(palette.Accent)
)

// LevelStyle окрашивает уровень записи лога.
func LevelStyle(level string) lipgloss.Style {
	switch level {
	case "ERROR", "DPANIC", "PANIC", "FATAL":
		return ErrorStyle
	case "WARN":
		return WarningStyle
	case "DEBUG":
		return MutedStyle
	}
	return ItemStyle.Padding(0)
}
