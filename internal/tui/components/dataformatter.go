package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/allbin/stm32boot/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

// TX status values
const (
	StatusPending = "PENDING"
	StatusWritten = "WRITTEN"
	StatusError   = "ERROR"
)

// DataReceivedMsg is one entry of the console log: serial traffic in either
// direction, or a control line event when Event is set.
type DataReceivedMsg struct {
	Timestamp time.Time
	Data      []byte
	IsTX      bool
	Status    string // TX only: PENDING, WRITTEN or ERROR
	Event     string // line event text, Data is ignored
	Err       error
}

type DisplayMode struct {
	ShowHex   bool
	ShowASCII bool
}

type DataFormatter struct {
	mode DisplayMode
}

func NewDataFormatter(showHex, showASCII bool) *DataFormatter {
	return &DataFormatter{
		mode: DisplayMode{
			ShowHex:   showHex,
			ShowASCII: showASCII,
		},
	}
}

func (df *DataFormatter) GetDisplayMode() DisplayMode {
	return df.mode
}

// Direction returns the arrow and label for msg
func Direction(msg DataReceivedMsg) (string, string) {
	switch {
	case msg.Event != "":
		return "⚡", "LINE"
	case msg.IsTX:
		return "↗", "TX"
	default:
		return "↙", "RX"
	}
}

// printableASCII replaces non-printable bytes with dots
func printableASCII(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		if c >= 32 && c <= 126 {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

func (df *DataFormatter) indicator(msg DataReceivedMsg) string {
	arrow, label := Direction(msg)

	color := colors.Sky
	switch {
	case msg.Event != "" && msg.Err != nil:
		color = colors.Red
	case msg.Event != "":
		color = colors.LineAsserted
	case msg.IsTX:
		switch msg.Status {
		case StatusPending:
			color, label = colors.Yellow, label+" ○"
		case StatusWritten:
			color, label = colors.Green, label+" ✓"
		case StatusError:
			color, label = colors.Red, label+" ✗"
		default:
			color = colors.Peach
		}
	}

	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(arrow + " " + label)
}

// Payload formats the data part of msg for the current display mode
func (df *DataFormatter) Payload(msg DataReceivedMsg) string {
	if msg.Event != "" {
		if msg.Err != nil {
			return fmt.Sprintf("%s: %v", msg.Event, msg.Err)
		}
		return msg.Event
	}

	var parts []string
	if df.mode.ShowHex {
		parts = append(parts, fmt.Sprintf("HEX: % X", msg.Data))
	}
	if df.mode.ShowASCII {
		parts = append(parts, "ASCII: "+printableASCII(msg.Data))
	}
	if !df.mode.ShowHex && !df.mode.ShowASCII {
		parts = append(parts, fmt.Sprintf("BYTES: %d", len(msg.Data)))
	}
	return strings.Join(parts, "  ")
}

func (df *DataFormatter) FormatMessage(msg DataReceivedMsg) string {
	timestamp := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Render(fmt.Sprintf("[%s]", msg.Timestamp.Format("15:04:05.000")))

	return fmt.Sprintf("%s %s: %s", timestamp, df.indicator(msg), df.Payload(msg))
}

func (df *DataFormatter) FormatMessages(messages []DataReceivedMsg) []string {
	formatted := make([]string, len(messages))
	for i, msg := range messages {
		formatted[i] = df.FormatMessage(msg)
	}
	return formatted
}

func (df *DataFormatter) ToggleHex() {
	df.mode.ShowHex = !df.mode.ShowHex
}

func (df *DataFormatter) ToggleASCII() {
	df.mode.ShowASCII = !df.mode.ShowASCII
}
