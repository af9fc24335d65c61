package models

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/allbin/stm32boot"
	"github.com/allbin/stm32boot/internal/tui/components"
	tea "github.com/charmbracelet/bubbletea"
)

// InputMode represents the current input mode (vim-like)
type InputMode int

const (
	InputModeNormal InputMode = iota
	InputModeInsert
)

func (m InputMode) String() string {
	switch m {
	case InputModeInsert:
		return "INSERT"
	default:
		return "NORMAL"
	}
}

// readChunk is the most bytes a single background read asks for
const readChunk = 256

type ConnectionStatusMsg struct {
	Connected bool
	Error     error
}

// TXStatusMsg reports the outcome of a write started by WriteCmd
type TXStatusMsg struct {
	Index int
	Err   error
}

// LineEventMsg reports a finished line action with the resulting line states
type LineEventMsg struct {
	Timestamp time.Time
	Event     string
	Err       error
	Reset     stm32boot.LineState
	Boot0     stm32boot.LineState
}

// ControllerModel is the state shared by the console views: the controller,
// the message log and the input mode.
type ControllerModel struct {
	ctrl     *stm32boot.Controller
	portPath string

	connected bool
	rawData   []components.DataReceivedMsg
	err       error
	ready     bool

	inputMode InputMode

	cancel context.CancelFunc
	ctx    context.Context
	mu     sync.RWMutex
}

func NewControllerModel(ctrl *stm32boot.Controller) *ControllerModel {
	ctx, cancel := context.WithCancel(context.Background())

	return &ControllerModel{
		ctrl:      ctrl,
		portPath:  ctrl.Config().Port,
		inputMode: InputModeNormal,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (m *ControllerModel) Controller() *stm32boot.Controller {
	return m.ctrl
}

func (m *ControllerModel) PortPath() string {
	return m.portPath
}

func (m *ControllerModel) IsConnected() bool {
	return m.connected
}

func (m *ControllerModel) SetConnected(connected bool) {
	m.connected = connected
}

func (m *ControllerModel) Err() error {
	return m.err
}

func (m *ControllerModel) SetError(err error) {
	m.err = err
}

func (m *ControllerModel) IsReady() bool {
	return m.ready
}

func (m *ControllerModel) SetReady(ready bool) {
	m.ready = ready
}

func (m *ControllerModel) RawData() []components.DataReceivedMsg {
	return m.rawData
}

// AddRawData appends msg to the log and returns its index
func (m *ControllerModel) AddRawData(msg components.DataReceivedMsg) int {
	m.rawData = append(m.rawData, msg)
	return len(m.rawData) - 1
}

// SetTXStatus updates the status of the TX entry at index
func (m *ControllerModel) SetTXStatus(index int, err error) bool {
	if index < 0 || index >= len(m.rawData) || !m.rawData[index].IsTX {
		return false
	}
	m.rawData[index].Status = components.StatusWritten
	if err != nil {
		m.rawData[index].Status = components.StatusError
		m.rawData[index].Err = err
	}
	return true
}

func (m *ControllerModel) ClearData() {
	m.rawData = nil
}

func (m *ControllerModel) InputMode() InputMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inputMode
}

func (m *ControllerModel) SetInputMode(mode InputMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputMode = mode
}

func (m *ControllerModel) IsInInsertMode() bool {
	return m.InputMode() == InputModeInsert
}

func (m *ControllerModel) Context() context.Context {
	return m.ctx
}

// ConnectCmd opens the serial port in the background
func (m *ControllerModel) ConnectCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		err := ctrl.Connect()
		return ConnectionStatusMsg{Connected: err == nil, Error: err}
	}
}

// ReadLoop forwards received bytes to send until the model is cleaned up or
// the transport fails. Run it in its own goroutine after a successful connect.
func (m *ControllerModel) ReadLoop(send func(tea.Msg)) {
	for m.ctx.Err() == nil {
		data, err := m.ctrl.Read(readChunk)
		if len(data) > 0 {
			send(components.DataReceivedMsg{Timestamp: time.Now(), Data: data})
		}
		if err == nil {
			continue
		}
		if m.ctx.Err() != nil || errors.Is(err, stm32boot.ErrNotConnected) {
			return
		}
		send(ConnectionStatusMsg{Connected: false, Error: err})
		return
	}
}

// WriteCmd writes data in the background and reports the outcome for the
// TX entry at index
func (m *ControllerModel) WriteCmd(index int, data []byte) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		_, err := ctrl.Write(data)
		return TXStatusMsg{Index: index, Err: err}
	}
}

// LineCmd runs a line action in the background; actions may sleep for the
// reset timing
func (m *ControllerModel) LineCmd(event string, action func(ctx context.Context, l stm32boot.Lines) error) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		err := action(ctx, ctrl)
		reset, boot0 := ctrl.LineStates()
		return LineEventMsg{
			Timestamp: time.Now(),
			Event:     event,
			Err:       err,
			Reset:     reset,
			Boot0:     boot0,
		}
	}
}

// Cleanup stops the read loop and closes the controller
func (m *ControllerModel) Cleanup() error {
	if m.cancel != nil {
		m.cancel()
	}
	return m.ctrl.Close()
}
