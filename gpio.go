package stm32boot

import (
	"fmt"
	"sync"
)

// NumberingMode selects how pin ids map to physical lines. It is process-wide
// state on the GPIO backend.
type NumberingMode int

const (
	// NumberingBoard addresses pins by their position on the 40-pin header
	NumberingBoard NumberingMode = iota
	// NumberingBCM addresses pins by SoC GPIO number
	NumberingBCM
)

func (m NumberingMode) String() string {
	switch m {
	case NumberingBoard:
		return "board"
	case NumberingBCM:
		return "bcm"
	default:
		return fmt.Sprintf("NumberingMode(%d)", int(m))
	}
}

// ParseNumberingMode parses "board" or "bcm"
func ParseNumberingMode(s string) (NumberingMode, error) {
	switch s {
	case "board", "BOARD":
		return NumberingBoard, nil
	case "bcm", "BCM":
		return NumberingBCM, nil
	default:
		return NumberingBoard, fmt.Errorf("%w: unknown numbering mode %q", ErrInvalidConfig, s)
	}
}

// Level is the electrical level of a digital line
type Level bool

const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l {
		return "HIGH"
	}
	return "LOW"
}

// GPIO is the hardware access a Controller needs for its two output lines.
type GPIO interface {
	// SetMode selects the numbering mode for all subsequent pin ids
	SetMode(mode NumberingMode) error
	// Claim configures pin as a digital output
	Claim(pin int) error
	// Output drives a claimed pin to level
	Output(pin int, level Level) error
	// Release returns a claimed pin to input
	Release(pin int) error
}

// PinWrite records one Output call on a SimulatedGPIO
type PinWrite struct {
	Pin   int
	Level Level
}

// SimulatedGPIO is an in-memory GPIO backend. It records every call so the
// line sequence can be inspected, and can be told to fail on chosen pins.
type SimulatedGPIO struct {
	mu      sync.Mutex
	mode    NumberingMode
	modeSet bool
	claims  map[int]int
	claimed map[int]bool
	levels  map[int]Level
	history []PinWrite

	// Pins listed here fail the corresponding operation
	FailClaim  map[int]error
	FailOutput map[int]error
	FailMode   error
}

var _ GPIO = (*SimulatedGPIO)(nil)

// NewSimulatedGPIO returns an empty simulated backend
func NewSimulatedGPIO() *SimulatedGPIO {
	return &SimulatedGPIO{
		claims:     make(map[int]int),
		claimed:    make(map[int]bool),
		levels:     make(map[int]Level),
		FailClaim:  make(map[int]error),
		FailOutput: make(map[int]error),
	}
}

func (s *SimulatedGPIO) SetMode(mode NumberingMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailMode != nil {
		return s.FailMode
	}
	s.mode = mode
	s.modeSet = true
	return nil
}

func (s *SimulatedGPIO) Claim(pin int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailClaim[pin]; err != nil {
		return err
	}
	s.claims[pin]++
	s.claimed[pin] = true
	return nil
}

func (s *SimulatedGPIO) Output(pin int, level Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.claimed[pin] {
		return ErrPinNotClaimed
	}
	if err := s.FailOutput[pin]; err != nil {
		return err
	}
	s.levels[pin] = level
	s.history = append(s.history, PinWrite{Pin: pin, Level: level})
	return nil
}

func (s *SimulatedGPIO) Release(pin int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.claimed[pin] {
		return ErrPinNotClaimed
	}
	delete(s.claimed, pin)
	delete(s.levels, pin)
	return nil
}

// Mode returns the numbering mode and whether SetMode has been called
func (s *SimulatedGPIO) Mode() (NumberingMode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode, s.modeSet
}

// ClaimCount returns how many times pin has been claimed
func (s *SimulatedGPIO) ClaimCount(pin int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claims[pin]
}

// Claimed reports whether pin is currently claimed
func (s *SimulatedGPIO) Claimed(pin int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claimed[pin]
}

// Level returns the last level driven on pin; ok is false if never driven
func (s *SimulatedGPIO) Level(pin int) (level Level, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	level, ok = s.levels[pin]
	return level, ok
}

// History returns a copy of all Output calls in order
func (s *SimulatedGPIO) History() []PinWrite {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PinWrite, len(s.history))
	copy(out, s.history)
	return out
}
