package components

import (
	"fmt"
	"time"

	"github.com/allbin/stm32boot"
	"github.com/allbin/stm32boot/internal/tui/colors"
	"github.com/allbin/stm32boot/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// LineStatusMsg carries fresh RESET/BOOT0 snapshots after a line change
type LineStatusMsg struct {
	Reset stm32boot.LineState
	Boot0 stm32boot.LineState
}

type ConnectionInfo struct {
	BaudRate int
	Parity   stm32boot.Parity
	Timeout  time.Duration
}

type StatusBar struct {
	portPath       string
	status         styles.StatusType
	err            error
	width          int
	connectionInfo *ConnectionInfo
	reset          stm32boot.LineState
	boot0          stm32boot.LineState
}

func NewStatusBar(portPath string, info *ConnectionInfo) *StatusBar {
	return &StatusBar{
		portPath:       portPath,
		status:         styles.StatusConnecting,
		connectionInfo: info,
	}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetConnected() {
	sb.status = styles.StatusConnected
	sb.err = nil
}

func (sb *StatusBar) SetDisconnected(err error) {
	sb.err = err
	sb.status = styles.StatusDisconnected
	if err != nil {
		sb.status = styles.StatusError
	}
}

func (sb *StatusBar) SetLines(reset, boot0 stm32boot.LineState) {
	sb.reset = reset
	sb.boot0 = boot0
}

// lineBadge renders one control line: asserted, released or never driven
func lineBadge(s stm32boot.LineState) string {
	switch {
	case !s.Driven:
		return styles.LineIdleStyle.Render(s.Name + " -")
	case s.Asserted:
		return styles.LineAssertedStyle.Render(fmt.Sprintf("%s %s", s.Name, s.Level))
	default:
		return styles.LineReleasedStyle.Render(fmt.Sprintf("%s %s", s.Name, s.Level))
	}
}

// View renders the bottom status bar
func (sb *StatusBar) View(insertMode bool, sendingMode, viewMode string) string {
	terminalWidth := sb.width
	if terminalWidth <= 0 {
		terminalWidth = 80
	}

	// Mode indicator, like NORMAL in nvim
	modeText, modeColor := "NORMAL", colors.Blue
	if insertMode {
		modeText, modeColor = "INSERT", colors.Green
	}
	mode := lipgloss.NewStyle().
		Foreground(colors.Base).
		Background(modeColor).
		Bold(true).
		Padding(0, 1).
		Render(modeText)

	port := lipgloss.NewStyle().
		Foreground(colors.Mauve).
		Bold(true).
		Padding(0, 1).
		Render(sb.portPath)

	symbol, indicatorStyle := styles.StatusIndicator(sb.status)
	indicator := indicatorStyle.Render(symbol)

	divider := lipgloss.NewStyle().
		Foreground(colors.Surface2).
		Padding(0, 1).
		Render("│")

	left := []string{mode, port, indicator, divider, lineBadge(sb.reset), " ", lineBadge(sb.boot0), divider}
	if insertMode {
		left = append(left, lipgloss.NewStyle().
			Foreground(colors.Peach).
			Bold(true).
			Padding(0, 1).
			Render(fmt.Sprintf("[%s] Tab to toggle", sendingMode)))
	}
	leftSide := lipgloss.JoinHorizontal(lipgloss.Left, left...)

	connInfo := "⚡ serial"
	if sb.err != nil {
		connInfo = "✗ " + sb.err.Error()
	} else if sb.connectionInfo != nil {
		timeout := sb.connectionInfo.Timeout.String()
		if sb.connectionInfo.Timeout == stm32boot.Forever {
			timeout = "∞"
		}
		connInfo = fmt.Sprintf("⚡ %d 8%s1 t=%s", sb.connectionInfo.BaudRate, sb.connectionInfo.Parity, timeout)
	}
	details := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1).
		Render(connInfo)

	view := lipgloss.NewStyle().
		Foreground(colors.Subtext1).
		Padding(0, 1).
		Render(viewMode)

	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, details, divider, view)

	spacerWidth := max(terminalWidth-lipgloss.Width(leftSide)-lipgloss.Width(rightSide), 1)
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	return lipgloss.NewStyle().
		Foreground(colors.Text).
		Background(colors.Surface0).
		Width(terminalWidth).
		Render(lipgloss.JoinHorizontal(lipgloss.Left, leftSide, spacer, rightSide))
}
