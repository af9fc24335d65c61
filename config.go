package stm32boot

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Forever disables the read timeout: Read blocks until the requested byte
// count has arrived.
const Forever time.Duration = -1

// Parity represents the parity mode
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
	ParityMark
	ParitySpace
)

// String returns the single-letter framing notation (N, O, E, M, S).
func (p Parity) String() string {
	switch p {
	case ParityNone:
		return "N"
	case ParityOdd:
		return "O"
	case ParityEven:
		return "E"
	case ParityMark:
		return "M"
	case ParitySpace:
		return "S"
	default:
		return fmt.Sprintf("Parity(%d)", int(p))
	}
}

// ParseParity accepts either the single-letter notation or the full name.
func ParseParity(s string) (Parity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n", "none":
		return ParityNone, nil
	case "o", "odd":
		return ParityOdd, nil
	case "e", "even":
		return ParityEven, nil
	case "m", "mark":
		return ParityMark, nil
	case "s", "space":
		return ParitySpace, nil
	default:
		return ParityNone, fmt.Errorf("%w: unknown parity %q", ErrInvalidConfig, s)
	}
}

// Config holds the configuration for a controller and its serial port
type Config struct {
	Port     string
	BaudRate int
	DataBits int
	StopBits int
	Parity   Parity
	Timeout  time.Duration // Read timeout, Forever blocks

	ResetPin  int
	Boot0Pin  int
	Numbering NumberingMode

	// Initial polarity, copied to the controller's exported fields by New
	ResetActiveHigh bool
	Boot0ActiveLow  bool

	// KeepLines leaves claimed lines driven when the controller is closed
	KeepLines bool

	Logger logrus.FieldLogger
	Opener Opener
}

// Opener opens the serial transport for a controller. OpenTransport is used
// unless WithOpener overrides it.
type Opener func(device string, cfg Config) (Transport, error)

// Option is a functional option for configuring a controller
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaudRate:  115200,
		DataBits:  8,
		StopBits:  1,
		Parity:    ParityEven, // STM32 system bootloader requires 8E1
		Timeout:   5 * time.Second,
		ResetPin:  12,
		Boot0Pin:  11,
		Numbering: NumberingBoard,
		Opener:    OpenTransport,
	}
}

// WithBaudRate sets the baud rate
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if _, err := getBaudRate(rate); err != nil {
			return err
		}
		c.BaudRate = rate
		return nil
	}
}

// WithDataBits sets the number of data bits (5, 6, 7, or 8). OpenPort honours
// any of them; New accepts only 8.
func WithDataBits(bits int) Option {
	return func(c *Config) error {
		if bits < 5 || bits > 8 {
			return ErrInvalidConfig
		}
		c.DataBits = bits
		return nil
	}
}

// WithStopBits sets the number of stop bits (1 or 2). OpenPort honours both;
// New accepts only 1.
func WithStopBits(bits int) Option {
	return func(c *Config) error {
		if bits != 1 && bits != 2 {
			return ErrInvalidConfig
		}
		c.StopBits = bits
		return nil
	}
}

// WithParity sets the parity mode
func WithParity(parity Parity) Option {
	return func(c *Config) error {
		if parity < ParityNone || parity > ParitySpace {
			return ErrInvalidConfig
		}
		c.Parity = parity
		return nil
	}
}

// WithTimeout sets the read timeout used when the connection is opened.
// Pass Forever to block until the requested data has arrived.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if err := validateTimeout(timeout); err != nil {
			return err
		}
		c.Timeout = timeout
		return nil
	}
}

// WithResetPin sets the pin id of the RESET line
func WithResetPin(pin int) Option {
	return func(c *Config) error {
		if pin < 0 {
			return ErrInvalidConfig
		}
		c.ResetPin = pin
		return nil
	}
}

// WithBoot0Pin sets the pin id of the BOOT0 line
func WithBoot0Pin(pin int) Option {
	return func(c *Config) error {
		if pin < 0 {
			return ErrInvalidConfig
		}
		c.Boot0Pin = pin
		return nil
	}
}

// WithNumbering selects how pin ids are interpreted by the GPIO backend
func WithNumbering(mode NumberingMode) Option {
	return func(c *Config) error {
		if mode != NumberingBoard && mode != NumberingBCM {
			return ErrInvalidConfig
		}
		c.Numbering = mode
		return nil
	}
}

// WithResetActiveHigh makes a HIGH level assert reset
func WithResetActiveHigh(activeHigh bool) Option {
	return func(c *Config) error {
		c.ResetActiveHigh = activeHigh
		return nil
	}
}

// WithBoot0ActiveLow makes a LOW level select the bootloader
func WithBoot0ActiveLow(activeLow bool) Option {
	return func(c *Config) error {
		c.Boot0ActiveLow = activeLow
		return nil
	}
}

// WithKeepLines leaves RESET and BOOT0 at their last level on Close instead
// of releasing them
func WithKeepLines(keep bool) Option {
	return func(c *Config) error {
		c.KeepLines = keep
		return nil
	}
}

// WithLogger sets the logger used for debug output
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Config) error {
		if logger == nil {
			return ErrInvalidConfig
		}
		c.Logger = logger
		return nil
	}
}

// WithOpener replaces the function used to open the serial transport
func WithOpener(opener Opener) Option {
	return func(c *Config) error {
		if opener == nil {
			return ErrInvalidConfig
		}
		c.Opener = opener
		return nil
	}
}

func validateTimeout(timeout time.Duration) error {
	if timeout < 0 && timeout != Forever {
		return ErrInvalidConfig
	}
	return nil
}
