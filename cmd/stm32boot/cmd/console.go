package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/allbin/stm32boot"
	"github.com/allbin/stm32boot/internal/tui/components"
	"github.com/allbin/stm32boot/internal/tui/keys"
	"github.com/allbin/stm32boot/internal/tui/models"
	"github.com/allbin/stm32boot/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// consoleCmd represents the console command
var consoleCmd = &cobra.Command{
	Use:   "console <port>",
	Short: "Interactive terminal with RESET/BOOT0 control",
	Long: `Open the serial port in a full screen terminal and drive the control
lines from the keyboard.

Features include:
- Real-time RX/TX log with timestamps, hex and ASCII display
- Table view with scrollback (v)
- ASCII or hex send input with history
- Reset pulse (r), reset hold (R), BOOT0 toggle (b)
- Bootloader entry (B) and firmware start (f)

The input starts in hex mode with 7F, the bootloader autobaud byte.

Example usage:
  stm32boot console /dev/ttyAMA0
  stm32boot console /dev/ttyUSB0 --baud 57600 --poll 20ms`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		timing, err := timingFromFlags(cmd)
		if err != nil {
			return err
		}
		poll, _ := cmd.Flags().GetDuration("poll")
		if poll <= 0 {
			return fmt.Errorf("%w: --poll must be positive", stm32boot.ErrInvalidConfig)
		}

		// The alt screen owns the terminal; debug output would corrupt it
		if !log.IsLevelEnabled(logrus.DebugLevel) {
			log.SetOutput(io.Discard)
		}

		ctrl, err := newController(args[0], stm32boot.WithTimeout(poll))
		if err != nil {
			return err
		}
		return runConsole(ctrl, timing)
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)

	addTimingFlags(consoleCmd)
	consoleCmd.Flags().Duration("poll", 50*time.Millisecond, "Read timeout of the background reader")
}

// consoleModel represents the Bubble Tea model for the console command
type consoleModel struct {
	*models.ControllerModel
	timing    stm32boot.Timing
	formatter *components.DataFormatter
	terminal  *components.Terminal
	table     *components.TerminalTable
	statusBar *components.StatusBar
	input     *components.Input
	help      help.Model
	keys      keys.ConsoleKeys
	program   *tea.Program
	showTable bool
}

func newConsoleModel(ctrl *stm32boot.Controller, timing stm32boot.Timing) *consoleModel {
	cfg := ctrl.Config()
	formatter := components.NewDataFormatter(true, true)

	m := &consoleModel{
		ControllerModel: models.NewControllerModel(ctrl),
		timing:          timing,
		formatter:       formatter,
		terminal:        components.NewTerminal(0, 0, formatter),
		table:           components.NewTerminalTable(0, 0, formatter),
		statusBar: components.NewStatusBar(cfg.Port, &components.ConnectionInfo{
			BaudRate: cfg.BaudRate,
			Parity:   cfg.Parity,
			Timeout:  cfg.Timeout,
		}),
		input: components.NewInput("Type message and press Enter to send..."),
		help:  help.New(),
		keys:  keys.NewConsoleKeys(),
	}
	m.statusBar.SetLines(ctrl.LineStates())
	return m
}

func runConsole(ctrl *stm32boot.Controller, timing stm32boot.Timing) error {
	m := newConsoleModel(ctrl, timing)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	m.program = p

	_, err := p.Run()
	if cerr := m.Cleanup(); err == nil {
		err = cerr
	}
	return err
}

func (m *consoleModel) Init() tea.Cmd {
	return m.ConnectCmd()
}

// record appends msg to the message log and both views
func (m *consoleModel) record(msg components.DataReceivedMsg) int {
	index := m.AddRawData(msg)
	m.terminal.AddMessage(msg)
	m.table.AddMessage(msg)
	return index
}

func (m *consoleModel) refresh() {
	m.terminal.Refresh(m.RawData())
	m.table.Refresh(m.RawData())
}

func (m *consoleModel) logEvent(event string, err error) {
	m.record(components.DataReceivedMsg{Timestamp: time.Now(), Event: event, Err: err})
}

func (m *consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// input (with border) and status bar
		contentHeight := msg.Height - 4
		m.terminal.SetSize(msg.Width, contentHeight)
		m.table.SetSize(msg.Width, contentHeight)
		m.input.SetWidth(msg.Width)
		m.statusBar.SetWidth(msg.Width)
		m.help.Width = msg.Width
		m.SetReady(true)

	case models.ConnectionStatusMsg:
		wasConnected := m.IsConnected()
		m.SetConnected(msg.Connected)
		if msg.Error != nil {
			m.SetError(msg.Error)
			m.statusBar.SetDisconnected(msg.Error)
			m.logEvent("serial", msg.Error)
			break
		}
		m.statusBar.SetConnected()
		if !wasConnected && m.program != nil {
			go m.ReadLoop(m.program.Send)
		}

	case components.DataReceivedMsg:
		m.record(msg)

	case models.TXStatusMsg:
		if m.SetTXStatus(msg.Index, msg.Err) {
			m.refresh()
		}

	case models.LineEventMsg:
		m.statusBar.SetLines(msg.Reset, msg.Boot0)
		m.logEvent(msg.Event, msg.Err)

	case tea.KeyMsg:
		if m.IsInInsertMode() {
			switch {
			case key.Matches(msg, m.keys.Escape):
				m.SetInputMode(models.InputModeNormal)
				m.input.Blur()
				return m, nil
			case key.Matches(msg, m.keys.Enter):
				return m, m.send()
			case key.Matches(msg, m.keys.Up):
				m.input.NavigateHistoryUp()
				return m, nil
			case key.Matches(msg, m.keys.Down):
				m.input.NavigateHistoryDown()
				return m, nil
			case key.Matches(msg, m.keys.ToggleSendMode):
				m.input.ToggleSendingMode()
				return m, nil
			}
			break
		}

		if cmd, handled := m.lineAction(msg); handled {
			return m, cmd
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.InsertMode):
			m.SetInputMode(models.InputModeInsert)
			m.input.Focus()
			return m, nil

		case key.Matches(msg, m.keys.Clear):
			m.ClearData()
			m.terminal.Clear()
			m.table.Clear()

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll

		case key.Matches(msg, m.keys.ToggleHex):
			m.toggleDisplay(true)

		case key.Matches(msg, m.keys.ToggleASCII):
			m.toggleDisplay(false)

		case key.Matches(msg, m.keys.VisualMode):
			m.cycleView()

		case key.Matches(msg, m.keys.ToggleSendMode):
			m.input.ToggleSendingMode()

		default:
			if m.showTable {
				cmds = append(cmds, m.table.Update(msg))
			}
		}
	}

	if m.IsInInsertMode() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	switch msg.(type) {
	case tea.WindowSizeMsg, tea.MouseMsg:
		_, cmd := m.terminal.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// toggleDisplay flips hex or ASCII display; terminal and table share the formatter
func (m *consoleModel) toggleDisplay(hex bool) {
	if hex {
		m.formatter.ToggleHex()
	} else {
		m.formatter.ToggleASCII()
	}
	m.refresh()
}

// cycleView goes log -> table (follow) -> table (visual) -> log
func (m *consoleModel) cycleView() {
	switch {
	case !m.showTable:
		m.showTable = true
		m.table.SetViewMode(components.ViewModeFollow)
	case m.table.ViewMode() == components.ViewModeFollow:
		m.table.SetViewMode(components.ViewModeVisual)
	default:
		m.table.SetViewMode(components.ViewModeFollow)
		m.showTable = false
	}
}

// lineAction maps the control line keys to background line commands
func (m *consoleModel) lineAction(msg tea.KeyMsg) (tea.Cmd, bool) {
	timing := m.timing
	reset, boot0 := m.Controller().LineStates()

	switch {
	case key.Matches(msg, m.keys.PulseReset):
		return m.LineCmd("reset pulse", func(ctx context.Context, l stm32boot.Lines) error {
			return stm32boot.PulseReset(ctx, l, timing)
		}), true

	case key.Matches(msg, m.keys.HoldReset):
		hold := !reset.Asserted
		return m.LineCmd(fmt.Sprintf("RESET asserted=%v", hold), func(_ context.Context, l stm32boot.Lines) error {
			return l.EnableReset(hold)
		}), true

	case key.Matches(msg, m.keys.ToggleBoot0):
		sel := !boot0.Asserted
		return m.LineCmd(fmt.Sprintf("BOOT0 asserted=%v", sel), func(_ context.Context, l stm32boot.Lines) error {
			return l.EnableBoot0(sel)
		}), true

	case key.Matches(msg, m.keys.Bootloader):
		return m.LineCmd("enter bootloader", func(ctx context.Context, l stm32boot.Lines) error {
			return stm32boot.EnterBootloader(ctx, l, timing)
		}), true

	case key.Matches(msg, m.keys.Firmware):
		return m.LineCmd("run firmware", func(ctx context.Context, l stm32boot.Lines) error {
			return stm32boot.ResetIntoFirmware(ctx, l, timing)
		}), true
	}
	return nil, false
}

// send logs the input as a pending TX entry and writes it in the background
func (m *consoleModel) send() tea.Cmd {
	inputStr := m.input.Value()
	if inputStr == "" || !m.IsConnected() {
		return nil
	}

	var data []byte
	switch m.input.GetSendingMode() {
	case components.SendingModeHex:
		var err error
		if data, err = parseHexInput(inputStr); err != nil {
			m.logEvent("invalid hex input", err)
			return nil
		}
	default:
		data = []byte(inputStr + "\n")
	}

	index := m.record(components.DataReceivedMsg{
		Timestamp: time.Now(),
		Data:      data,
		IsTX:      true,
		Status:    components.StatusPending,
	})

	m.input.AddToHistory(inputStr)
	if m.input.GetSendingMode() == components.SendingModeASCII {
		m.input.SetValue("")
	}

	return m.WriteCmd(index, data)
}

func (m *consoleModel) View() string {
	content := "Initializing..."
	if m.IsReady() {
		if m.showTable {
			content = m.table.View()
		} else {
			content = m.terminal.View()
		}
	}

	viewMode := "LOG"
	if m.showTable {
		viewMode = m.table.ViewMode().String()
	}

	parts := []string{
		styles.ContentBorderStyle.Render(content),
		m.input.ViewWithMode(m.IsInInsertMode()),
		m.statusBar.View(m.IsInInsertMode(), m.input.GetSendingMode().String(), viewMode),
	}
	if m.help.ShowAll {
		parts = append(parts, m.help.View(m.keys))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
