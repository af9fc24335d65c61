package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Terminal is the scrolling log view of the console
type Terminal struct {
	viewport  viewport.Model
	formatter *DataFormatter
	lines     []string
}

// NewTerminal shares formatter with the table view so display toggles apply to both
func NewTerminal(width, height int, formatter *DataFormatter) *Terminal {
	return &Terminal{
		viewport:  viewport.New(width, height),
		formatter: formatter,
	}
}

func (t *Terminal) SetSize(width, height int) {
	t.viewport.Width = width
	t.viewport.Height = height
}

func (t *Terminal) Width() int {
	return t.viewport.Width
}

func (t *Terminal) AddMessage(msg DataReceivedMsg) {
	t.lines = append(t.lines, t.formatter.FormatMessage(msg))
	t.viewport.SetContent(strings.Join(t.lines, "\n"))
	t.viewport.GotoBottom()
}

// Refresh reformats all of messages, after a display toggle or a TX status change
func (t *Terminal) Refresh(messages []DataReceivedMsg) {
	t.lines = t.formatter.FormatMessages(messages)
	t.viewport.SetContent(strings.Join(t.lines, "\n"))
	t.viewport.GotoBottom()
}

func (t *Terminal) Clear() {
	t.lines = nil
	t.viewport.SetContent("")
}

func (t *Terminal) Update(msg tea.Msg) (viewport.Model, tea.Cmd) {
	// Only pass resize and mouse messages so the viewport doesn't eat key bindings
	switch msg.(type) {
	case tea.WindowSizeMsg, tea.MouseMsg:
		var cmd tea.Cmd
		t.viewport, cmd = t.viewport.Update(msg)
		return t.viewport, cmd
	default:
		return t.viewport, nil
	}
}

func (t *Terminal) View() string {
	return t.viewport.View()
}
