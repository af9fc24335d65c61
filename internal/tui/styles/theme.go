package styles

import (
	"github.com/allbin/stm32boot/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Content area styles
	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colors.Surface1)

	// Input styles
	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Surface2).
			Padding(0, 1)

	// Control line badges in the status bar
	LineAssertedStyle = lipgloss.NewStyle().
				Foreground(colors.Base).
				Background(colors.LineAsserted).
				Bold(true).
				Padding(0, 1)

	LineReleasedStyle = lipgloss.NewStyle().
				Foreground(colors.Base).
				Background(colors.LineReleased).
				Padding(0, 1)

	LineIdleStyle = lipgloss.NewStyle().
			Foreground(colors.LineIdle).
			Padding(0, 1)
)

type StatusType int

const (
	StatusConnected StatusType = iota
	StatusDisconnected
	StatusConnecting
	StatusError
)

// StatusIndicator returns the single-character connection indicator and its style
func StatusIndicator(status StatusType) (string, lipgloss.Style) {
	switch status {
	case StatusConnected:
		return "●", lipgloss.NewStyle().Foreground(colors.Green)
	case StatusConnecting:
		return "○", lipgloss.NewStyle().Foreground(colors.Yellow)
	case StatusError:
		return "✗", lipgloss.NewStyle().Foreground(colors.Red)
	default:
		return "○", lipgloss.NewStyle().Foreground(colors.Red)
	}
}
