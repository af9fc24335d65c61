package components

import (
	"encoding/hex"
	"strings"

	"github.com/allbin/stm32boot/internal/tui/colors"
	"github.com/allbin/stm32boot/internal/tui/styles"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// AutobaudByte is the first byte the STM32 system bootloader expects
const AutobaudByte = "7F"

const historyLimit = 100

type SendingMode int

const (
	SendingModeASCII SendingMode = iota
	SendingModeHex
)

func (s SendingMode) String() string {
	if s == SendingModeHex {
		return "HEX"
	}
	return "ASCII"
}

func (s SendingMode) prompt() (string, lipgloss.Color) {
	if s == SendingModeHex {
		return "#", colors.Yellow
	}
	return ">", colors.Green
}

var placeholders = map[SendingMode]string{
	SendingModeASCII: "Type message and press Enter to send...",
	SendingModeHex:   "Bytes in hex, e.g. 7F or 00 FF...",
}

// sendHistory keeps the last historyLimit sent inputs. pos is -1 while the
// user edits a fresh line, which is parked in draft during browsing.
type sendHistory struct {
	entries []string
	pos     int
	draft   string
}

func (h *sendHistory) add(entry string) {
	entry = strings.TrimSpace(entry)
	if entry != "" && (len(h.entries) == 0 || h.entries[len(h.entries)-1] != entry) {
		h.entries = append(h.entries, entry)
		if len(h.entries) > historyLimit {
			h.entries = h.entries[len(h.entries)-historyLimit:]
		}
	}
	h.pos, h.draft = -1, ""
}

func (h *sendHistory) older(current string) (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	switch {
	case h.pos == -1:
		h.draft = current
		h.pos = len(h.entries) - 1
	case h.pos > 0:
		h.pos--
	}
	return h.entries[h.pos], true
}

func (h *sendHistory) newer() (string, bool) {
	if h.pos == -1 {
		return "", false
	}
	if h.pos < len(h.entries)-1 {
		h.pos++
		return h.entries[h.pos], true
	}
	draft := h.draft
	h.pos, h.draft = -1, ""
	return draft, true
}

// Input is the send line of the console. It starts in hex mode holding the
// autobaud byte.
type Input struct {
	textInput   textinput.Model
	sendingMode SendingMode
	history     sendHistory
	width       int
}

func NewInput(placeholder string) *Input {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	ti.Prompt = ""
	ti.SetValue(AutobaudByte)

	return &Input{
		textInput:   ti,
		sendingMode: SendingModeHex,
		history:     sendHistory{pos: -1},
	}
}

func (i *Input) SetWidth(width int) {
	i.width = width
	// border, padding, prompt and a space
	i.textInput.Width = max(width-6, 20)
}

func (i *Input) Focus() {
	i.textInput.Focus()
}

func (i *Input) Blur() {
	i.textInput.Blur()
}

func (i *Input) Value() string {
	return i.textInput.Value()
}

func (i *Input) SetValue(value string) {
	i.textInput.SetValue(value)
}

func (i *Input) ToggleSendingMode() {
	if i.sendingMode == SendingModeHex {
		i.sendingMode = SendingModeASCII
	} else {
		i.sendingMode = SendingModeHex
	}
	i.textInput.Placeholder = placeholders[i.sendingMode]
}

func (i *Input) GetSendingMode() SendingMode {
	return i.sendingMode
}

// ValidHex reports whether the current value decodes as hex bytes. Spaces,
// commas and 0x prefixes are ignored.
func (i *Input) ValidHex() bool {
	s := strings.NewReplacer(" ", "", ",", "", "0x", "", "0X", "").Replace(i.Value())
	if s == "" {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

func (i *Input) Update(msg tea.Msg) (*Input, tea.Cmd) {
	var cmd tea.Cmd
	i.textInput, cmd = i.textInput.Update(msg)
	return i, cmd
}

func (i *Input) ViewWithMode(isInsertMode bool) string {
	symbol, color := i.sendingMode.prompt()
	prompt := lipgloss.NewStyle().Foreground(color).Bold(true).Render(symbol)

	body := lipgloss.NewStyle().
		Foreground(colors.Overlay0).
		Render("Press 'i' to send, 'r' reset, 'b' toggle BOOT0, 'B' bootloader (" + i.sendingMode.String() + ")")
	if isInsertMode {
		body = i.textInput.View()
	}

	style := styles.InputStyle.
		Width(max(i.width-4, 10)).
		AlignHorizontal(lipgloss.Left)
	if isInsertMode {
		border := colors.Green
		if i.sendingMode == SendingModeHex && i.Value() != "" && !i.ValidHex() {
			border = colors.Red
		}
		style = style.BorderForeground(border)
	}

	return style.Render(lipgloss.JoinHorizontal(lipgloss.Left, prompt, " ", body))
}

// AddToHistory records a sent input, skipping blanks and repeats
func (i *Input) AddToHistory(command string) {
	i.history.add(command)
}

func (i *Input) NavigateHistoryUp() {
	if entry, ok := i.history.older(i.Value()); ok {
		i.textInput.SetValue(entry)
	}
}

func (i *Input) NavigateHistoryDown() {
	if entry, ok := i.history.newer(); ok {
		i.textInput.SetValue(entry)
	}
}
