package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/bbomodoro/internal/engine"
)

// Color palette
var (
	colorPrimary = lipgloss.Color("#E4572E")
	colorMuted   = lipgloss.Color("#666666")
	colorWork    = lipgloss.Color("#FF6B6B")
	colorShort   = lipgloss.Color("#2ECC71")
	colorLong    = lipgloss.Color("#7AA2F7")
	colorWarning = lipgloss.Color("#F39C12")
	colorError   = lipgloss.Color("#E74C3C")
	colorFg      = lipgloss.Color("#C0CAF5")
	colorSubtle  = lipgloss.Color("#414868")
)

// Styles
var (
	// Tabs
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 2)

	// Panels
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Padding(1, 2)

	// Text
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFg)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	valueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorLong)

	// Header/footer
	headerStyle = lipgloss.NewStyle().
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	// List items
	selectedItemStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	normalItemStyle = lipgloss.NewStyle().
			Foreground(colorFg)
)

// sessionColor is the accent used for a session's countdown and chart bars.
func sessionColor(s engine.SessionType) lipgloss.Color {
	switch s {
	case engine.ShortBreak:
		return colorShort
	case engine.LongBreak:
		return colorLong
	default:
		return colorWork
	}
}

func sessionStyle(s engine.SessionType) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(sessionColor(s))
}
