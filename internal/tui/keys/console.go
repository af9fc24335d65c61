package keys

import "github.com/charmbracelet/bubbles/key"

// ConsoleKeys adds sending and control line actions to the terminal keys
type ConsoleKeys struct {
	TerminalKeys
	Enter          key.Binding
	ToggleSendMode key.Binding
	Up             key.Binding
	Down           key.Binding

	PulseReset  key.Binding
	HoldReset   key.Binding
	ToggleBoot0 key.Binding
	Bootloader  key.Binding
	Firmware    key.Binding
}

func NewConsoleKeys() ConsoleKeys {
	return ConsoleKeys{
		TerminalKeys:   NewTerminalKeys(),
		Enter:          bind("send", "", "enter"),
		ToggleSendMode: bind("ascii/hex input", "", "tab"),
		Up:             bind("history up", "↑", "up"),
		Down:           bind("history down", "↓", "down"),
		PulseReset:     bind("pulse reset", "", "r"),
		HoldReset:      bind("hold/release reset", "", "R"),
		ToggleBoot0:    bind("toggle boot0", "", "b"),
		Bootloader:     bind("enter bootloader", "", "B"),
		Firmware:       bind("run firmware", "", "f"),
	}
}

func (k ConsoleKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.InsertMode, k.PulseReset, k.Bootloader, k.Quit}
}

func (k ConsoleKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.InsertMode, k.Escape, k.Enter, k.ToggleSendMode},
		{k.PulseReset, k.HoldReset, k.ToggleBoot0, k.Bootloader, k.Firmware},
		{k.ToggleHex, k.ToggleASCII, k.VisualMode, k.Clear},
		{k.Up, k.Down, k.Help, k.Quit},
	}
}
