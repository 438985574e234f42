package style

import "github.com/charmbracelet/lipgloss"

var (
	Cyan    = lipgloss.Color("#00E5FF") // основной акцент
	Magenta = lipgloss.Color("#FF1B6B")
	Yellow  = lipgloss.Color("#FFB500")
	Green   = lipgloss.Color("#2AFFAA")
	Red     = lipgloss.Color("#FF5555")
	Purple  = lipgloss.Color("#8B5CF6")

	Base03 = lipgloss.Color("#1B1D23") // фон
	Base02 = lipgloss.Color("#262831")
	Base01 = lipgloss.Color("#6C7280") // приглушенный текст
	Base1  = lipgloss.Color("#B4BCC8")
	Base2  = lipgloss.Color("#ECEFF4") // основной текст
)

// Palette provides a centralized color management
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Warning   lipgloss.Color

	Background    lipgloss.Color
	BackgroundAlt lipgloss.Color
	Text          lipgloss.Color
	TextMuted     lipgloss.Color
	TextSecondary lipgloss.Color
}

func DefaultPalette() Palette {
	return Palette{
		Primary:   Cyan,
		Secondary: Magenta,
		Accent:    Purple,
		Success:   Green,
		Error:     Red,
		Warning:   Yellow,

		Background:    Base03,
		BackgroundAlt: Base02,
		Text:          Base2,
		TextMuted:     Base01,
		TextSecondary: Base1,
	}
}
