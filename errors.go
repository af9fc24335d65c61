package stm32boot

import (
	"errors"
	"fmt"
)

// Predefined error types for robust error handling
var (
	ErrDeviceNotFound   = errors.New("serial device not found")
	ErrPermissionDenied = errors.New("permission denied accessing serial device")
	ErrDeviceInUse      = errors.New("serial device already in use")
	ErrInvalidBaudRate  = errors.New("invalid baud rate")
	ErrInvalidConfig    = errors.New("invalid serial configuration")
	ErrPortClosed       = errors.New("serial port is closed")

	// Controller state errors
	ErrNotConnected     = errors.New("serial connection not established")
	ErrAlreadyConnected = errors.New("serial connection already established")

	// GPIO errors
	ErrUnknownPin    = errors.New("unknown GPIO pin")
	ErrPinNotClaimed = errors.New("GPIO pin not claimed as output")
)

// ConnectionError indicates that the serial transport could not be opened.
type ConnectionError struct {
	Port string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Port, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// GPIOError indicates that a GPIO operation on a pin failed.
// Op is one of "mode", "claim", "output" or "release".
type GPIOError struct {
	Pin int
	Op  string
	Err error
}

func (e *GPIOError) Error() string {
	if e.Op == "mode" {
		return fmt.Sprintf("gpio: set numbering mode: %v", e.Err)
	}
	return fmt.Sprintf("gpio: %s pin %d: %v", e.Op, e.Pin, e.Err)
}

func (e *GPIOError) Unwrap() error {
	return e.Err
}

// TransportError wraps a failure reported by the serial driver on an open
// connection, such as a hang-up in the middle of a read.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("serial %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
