// internal/ui/style/palette.go
package style

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Primary colors
	Cyan    = lipgloss.Color("#00E5FF")
	Magenta = lipgloss.Color("#FF1B6B")
	Yellow  = lipgloss.Color("#FFB500")
	Green   = lipgloss.Color("#2AFFAA")
	Red     = lipgloss.Color("#FF5555")
	Blue    = lipgloss.Color("#3B82F6")
	Purple  = lipgloss.Color("#8B5CF6")

	// Base colors
	Base03 = lipgloss.Color("#1B1D23") // background
	Base02 = lipgloss.Color("#262831")
	Base01 = lipgloss.Color("#6C7280") // muted text
	Base2  = lipgloss.Color("#ECEFF4")
	Base1  = lipgloss.Color("#B4BCC8")
)

// Palette provides a centralized color management
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Warning   lipgloss.Color
	Info      lipgloss.Color

	Background    lipgloss.Color
	BackgroundAlt lipgloss.Color
	Text          lipgloss.Color
	TextMuted     lipgloss.Color
	TextSecondary lipgloss.Color

	Buy  lipgloss.Color
	Sell lipgloss.Color
}

// DefaultPalette returns the default color palette
func DefaultPalette() Palette {
	return Palette{
		Primary:   Purple,
		Secondary: Cyan,
		Accent:    Magenta,
		Success:   Green,
		Error:     Red,
		Warning:   Yellow,
		Info:      Blue,

		Background:    Base03,
		BackgroundAlt: Base02,
		Text:          Base2,
		TextMuted:     Base01,
		TextSecondary: Base1,

		Buy:  Green,
		Sell: Red,
	}
}

// Change colors a signed percentage: green up, red down, muted flat.
func Change(pct float64) lipgloss.Style {
	p := DefaultPalette()
	switch {
	case pct > 0:
		return lipgloss.NewStyle().Foreground(p.Success)
	case pct < 0:
		return lipgloss.NewStyle().Foreground(p.Error)
	default:
		return lipgloss.NewStyle().Foreground(p.TextMuted)
	}
}

// Title is the screen heading style.
func Title() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(DefaultPalette().Primary).Bold(true)
}

// Muted is used for labels and hints.
func Muted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(DefaultPalette().TextMuted)
}

// Panel is the rounded container used by every screen.
func Panel() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(DefaultPalette().Primary).
		Padding(1, 2)
}
