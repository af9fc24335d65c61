package keys

import "github.com/charmbracelet/bubbles/key"

// bind builds a binding whose help label is the first key unless label is set
func bind(desc, label string, keys ...string) key.Binding {
	if label == "" {
		label = keys[0]
	}
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, desc))
}

// CommonKeys switch between the vim-like modes and leave the program
type CommonKeys struct {
	Quit       key.Binding
	Help       key.Binding
	InsertMode key.Binding
	Escape     key.Binding
}

func NewCommonKeys() CommonKeys {
	return CommonKeys{
		Quit:       bind("quit", "q/ctrl+c", "q", "ctrl+c"),
		Help:       bind("toggle help", "", "?"),
		InsertMode: bind("insert mode", "", "i"),
		Escape:     bind("normal mode", "", "esc"),
	}
}

// TerminalKeys control how the RX/TX log is shown
type TerminalKeys struct {
	CommonKeys
	Clear       key.Binding
	ToggleHex   key.Binding
	ToggleASCII key.Binding
	VisualMode  key.Binding
}

func NewTerminalKeys() TerminalKeys {
	return TerminalKeys{
		CommonKeys:  NewCommonKeys(),
		Clear:       bind("clear log", "", "c"),
		ToggleHex:   bind("toggle hex", "", "h"),
		ToggleASCII: bind("toggle ascii", "", "a"),
		VisualMode:  bind("log/table/visual", "", "v"),
	}
}
