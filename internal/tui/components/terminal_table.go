package components

import (
	"fmt"
	"slices"
	"strings"

	"github.com/allbin/stm32boot/internal/tui/colors"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type ViewMode int

const (
	ViewModeFollow ViewMode = iota
	ViewModeVisual
)

func (v ViewMode) String() string {
	if v == ViewModeVisual {
		return "VISUAL"
	}
	return "FOLLOW"
}

const (
	timeWidth  = 14 // "15:04:05.000"
	dirWidth   = 6
	bytesWidth = 6
)

// TerminalTable shows the console log one message per row. In visual mode
// the cursor can be moved through the history; in follow mode it sticks to
// the newest row.
type TerminalTable struct {
	table     table.Model
	formatter *DataFormatter
	viewMode  ViewMode
	messages  []DataReceivedMsg
}

func NewTerminalTable(width, height int, formatter *DataFormatter) *TerminalTable {
	t := table.New(
		table.WithFocused(false),
		table.WithHeight(max(height, 5)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colors.Subtext0).
		BorderBottom(true).
		Bold(true).
		Foreground(colors.Text)
	s.Selected = s.Selected.
		Foreground(colors.Text).
		Background(colors.Surface1).
		Bold(false)
	t.SetStyles(s)

	tt := &TerminalTable{
		table:     t,
		formatter: formatter,
	}
	tt.SetSize(width, height)
	return tt
}

func (tt *TerminalTable) SetSize(width, height int) {
	width = max(width, 40)
	tt.table.SetColumns(tt.columns(width))
	tt.table.SetWidth(width)
	tt.table.SetHeight(max(height, 5))
	tt.refresh()
}

func (tt *TerminalTable) columns(width int) []table.Column {
	// cell padding takes two characters per column
	dataWidth := max(width-timeWidth-dirWidth-bytesWidth-8, 10)

	title := "Data"
	mode := tt.formatter.GetDisplayMode()
	switch {
	case mode.ShowHex && !mode.ShowASCII:
		title = "Hex"
	case mode.ShowASCII && !mode.ShowHex:
		title = "ASCII"
	}

	return []table.Column{
		{Title: "Time", Width: timeWidth},
		{Title: "↕", Width: dirWidth},
		{Title: title, Width: dataWidth},
		{Title: "Bytes", Width: bytesWidth},
	}
}

func (tt *TerminalTable) row(msg DataReceivedMsg) table.Row {
	arrow, label := Direction(msg)

	var data string
	mode := tt.formatter.GetDisplayMode()
	switch {
	case msg.Event != "":
		data = tt.formatter.Payload(msg)
	case mode.ShowHex && mode.ShowASCII:
		data = fmt.Sprintf("% X  |%s|", msg.Data, printableASCII(msg.Data))
	case mode.ShowHex:
		data = fmt.Sprintf("% X", msg.Data)
	case mode.ShowASCII:
		data = printableASCII(msg.Data)
	default:
		data = fmt.Sprintf("%d bytes", len(msg.Data))
	}
	if msg.IsTX && msg.Status == StatusError {
		label += "✗"
	}

	return table.Row{
		msg.Timestamp.Format("15:04:05.000"),
		strings.TrimSpace(arrow + " " + label),
		data,
		fmt.Sprintf("%d", len(msg.Data)),
	}
}

func (tt *TerminalTable) refresh() {
	rows := make([]table.Row, len(tt.messages))
	for i, msg := range tt.messages {
		rows[i] = tt.row(msg)
	}
	tt.table.SetRows(rows)
	if tt.viewMode == ViewModeFollow {
		tt.table.GotoBottom()
	}
}

func (tt *TerminalTable) AddMessage(msg DataReceivedMsg) {
	tt.messages = append(tt.messages, msg)
	tt.refresh()
}

// Refresh replaces all rows, after a display toggle or a TX status change
func (tt *TerminalTable) Refresh(messages []DataReceivedMsg) {
	tt.messages = slices.Clone(messages)
	tt.table.SetColumns(tt.columns(tt.table.Width()))
	tt.refresh()
}

func (tt *TerminalTable) Clear() {
	tt.messages = nil
	tt.table.SetRows(nil)
}

func (tt *TerminalTable) ViewMode() ViewMode {
	return tt.viewMode
}

func (tt *TerminalTable) SetViewMode(mode ViewMode) {
	tt.viewMode = mode
	if mode == ViewModeFollow {
		tt.table.Blur()
		tt.table.GotoBottom()
		return
	}
	tt.table.Focus()
}

func (tt *TerminalTable) Update(msg tea.Msg) tea.Cmd {
	// Only allow table navigation in visual mode
	if tt.viewMode != ViewModeVisual {
		return nil
	}
	var cmd tea.Cmd
	tt.table, cmd = tt.table.Update(msg)
	return cmd
}

func (tt *TerminalTable) View() string {
	return tt.table.View()
}
