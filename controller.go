package stm32boot

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// line tracks one GPIO output owned by the controller
type line struct {
	name     string
	pin      int
	claimed  bool
	driven   bool
	asserted bool
	level    Level
}

// LineState is a snapshot of one controlled line
type LineState struct {
	Name     string
	Pin      int
	Claimed  bool
	Driven   bool // false until the first successful Output
	Asserted bool
	Level    Level
}

// Controller bundles a serial connection with the RESET and BOOT0 lines of
// an STM32 target.
//
// A Controller does no I/O until Connect or one of the Enable calls. Each
// line is claimed as an output on its first Enable call and kept until
// Close. Read and Write may run in separate goroutines; everything else
// expects a single caller.
type Controller struct {
	// ResetActiveHigh makes a HIGH level assert reset (default active LOW).
	// Read under the controller lock on every EnableReset call. Do not
	// change it while line calls may run in other goroutines.
	ResetActiveHigh bool
	// Boot0ActiveLow makes a LOW level select the bootloader (default
	// active HIGH). Read under the controller lock on every EnableBoot0
	// call, with the same restriction.
	Boot0ActiveLow bool

	mu        sync.RWMutex
	config    Config
	gpio      GPIO
	log       logrus.FieldLogger
	transport Transport
	reset     line
	boot0     line
}

// New creates a controller for the serial device at port. It selects the
// configured numbering mode on gpio, which is process-wide state, but opens
// nothing.
func New(port string, gpio GPIO, opts ...Option) (*Controller, error) {
	if gpio == nil {
		return nil, fmt.Errorf("%w: nil GPIO backend", ErrInvalidConfig)
	}

	config := DefaultConfig()
	config.Port = port
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}
	if config.DataBits != 8 || config.StopBits != 1 {
		return nil, fmt.Errorf("%w: controller link is 8 data bits, 1 stop bit; got %d/%d",
			ErrInvalidConfig, config.DataBits, config.StopBits)
	}
	if config.ResetPin == config.Boot0Pin {
		return nil, fmt.Errorf("%w: RESET and BOOT0 share pin %d", ErrInvalidConfig, config.ResetPin)
	}
	if config.Logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		config.Logger = logger
	}

	if err := gpio.SetMode(config.Numbering); err != nil {
		return nil, &GPIOError{Op: "mode", Err: err}
	}

	c := &Controller{
		ResetActiveHigh: config.ResetActiveHigh,
		Boot0ActiveLow:  config.Boot0ActiveLow,
		config:          config,
		gpio:            gpio,
		log: config.Logger.WithFields(logrus.Fields{
			"port": port,
		}),
		reset: line{name: "RESET", pin: config.ResetPin},
		boot0: line{name: "BOOT0", pin: config.Boot0Pin},
	}

	c.log.WithFields(logrus.Fields{
		"numbering": config.Numbering,
		"reset_pin": config.ResetPin,
		"boot0_pin": config.Boot0Pin,
	}).Debug("controller created")

	return c, nil
}

// Config returns a copy of the controller configuration
func (c *Controller) Config() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// Connected reports whether Connect has succeeded and Close has not been called
func (c *Controller) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.transport != nil
}

// Connect opens the serial port: configured baud rate and parity, 8 data
// bits, 1 stop bit, no flow control, configured timeout. On failure the
// controller stays unconnected and Connect may be retried.
func (c *Controller) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.transport != nil {
		return ErrAlreadyConnected
	}

	cfg := c.config
	t, err := cfg.Opener(cfg.Port, cfg)
	if err != nil {
		return &ConnectionError{Port: cfg.Port, Err: err}
	}
	if err := t.SetReadTimeout(cfg.Timeout); err != nil {
		t.Close()
		return &ConnectionError{Port: cfg.Port, Err: err}
	}
	c.transport = t

	c.log.WithFields(logrus.Fields{
		"baud":    cfg.BaudRate,
		"framing": fmt.Sprintf("8%s1", cfg.Parity),
		"timeout": cfg.Timeout,
	}).Debug("serial connected")

	return nil
}

// Timeout returns the configured read timeout
func (c *Controller) Timeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.Timeout
}

// SetTimeout changes the read timeout of the open connection. It fails with
// ErrNotConnected before Connect, leaving the configured value unchanged.
func (c *Controller) SetTimeout(timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.transport == nil {
		return ErrNotConnected
	}
	if err := validateTimeout(timeout); err != nil {
		return err
	}
	if err := c.transport.SetReadTimeout(timeout); err != nil {
		return &TransportError{Op: "set timeout", Err: err}
	}
	c.config.Timeout = timeout
	return nil
}

func (c *Controller) snapshot() (Transport, time.Duration) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.transport, c.config.Timeout
}

// Write sends data over the serial connection and returns the number of
// bytes written.
func (c *Controller) Write(data []byte) (int, error) {
	t, _ := c.snapshot()
	if t == nil {
		return 0, ErrNotConnected
	}

	n, err := t.Write(data)
	if err != nil {
		return n, &TransportError{Op: "write", Err: err}
	}
	return n, nil
}

// Read returns up to count bytes. It blocks until count bytes have arrived
// or the timeout has elapsed since the call; a short result on timeout is
// not an error. With Forever it blocks until count bytes have arrived.
// On a transport failure the bytes received so far are returned with a
// *TransportError.
func (c *Controller) Read(count int) ([]byte, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative read count %d", ErrInvalidConfig, count)
	}

	t, timeout := c.snapshot()
	if t == nil {
		return nil, ErrNotConnected
	}

	buf := make([]byte, count)
	total := 0

	var deadline time.Time
	if timeout == Forever {
		if err := t.SetReadTimeout(Forever); err != nil {
			return nil, &TransportError{Op: "read", Err: err}
		}
	} else {
		deadline = time.Now().Add(timeout)
	}

	for attempt := 0; total < count; attempt++ {
		if !deadline.IsZero() {
			remaining := max(time.Until(deadline), 0)
			if remaining == 0 && attempt > 0 {
				break
			}
			if err := t.SetReadTimeout(remaining); err != nil {
				return buf[:total], &TransportError{Op: "read", Err: err}
			}
		}

		n, err := t.Read(buf[total:])
		total += n
		if err != nil {
			return buf[:total], &TransportError{Op: "read", Err: err}
		}
	}

	return buf[:total], nil
}

// EnableReset asserts (true) or releases (false) the RESET line. Reset is
// active LOW unless ResetActiveHigh is set.
func (c *Controller) EnableReset(enable bool) error {
	return c.drive(&c.reset, enable, func() Level {
		if enable == c.ResetActiveHigh {
			return High
		}
		return Low
	})
}

// EnableBoot0 selects (true) or deselects (false) the bootloader via the
// BOOT0 line. BOOT0 is active HIGH unless Boot0ActiveLow is set.
func (c *Controller) EnableBoot0(enable bool) error {
	return c.drive(&c.boot0, enable, func() Level {
		if enable != c.Boot0ActiveLow {
			return High
		}
		return Low
	})
}

// drive claims l if needed and writes the level chosen by polarity, which is
// evaluated under the controller lock
func (c *Controller) drive(l *line, asserted bool, polarity func() Level) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	level := polarity()

	if !l.claimed {
		if err := c.gpio.Claim(l.pin); err != nil {
			return &GPIOError{Pin: l.pin, Op: "claim", Err: err}
		}
		l.claimed = true
		c.log.WithField("pin", l.pin).Debugf("%s line claimed", l.name)
	}

	if err := c.gpio.Output(l.pin, level); err != nil {
		return &GPIOError{Pin: l.pin, Op: "output", Err: err}
	}
	l.driven = true
	l.asserted = asserted
	l.level = level

	c.log.WithFields(logrus.Fields{
		"pin":      l.pin,
		"asserted": asserted,
		"level":    level,
	}).Debugf("%s line driven", l.name)

	return nil
}

// LineStates returns snapshots of the RESET and BOOT0 lines
func (c *Controller) LineStates() (reset, boot0 LineState) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reset.state(), c.boot0.state()
}

func (l *line) state() LineState {
	return LineState{
		Name:     l.name,
		Pin:      l.pin,
		Claimed:  l.claimed,
		Driven:   l.driven,
		Asserted: l.asserted,
		Level:    l.level,
	}
}

// Close closes the serial connection and releases both lines unless the
// controller was built WithKeepLines. A Read blocked in another goroutine
// returns with a *TransportError. Close on an idle controller returns nil.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.transport != nil {
		if err := c.transport.Close(); err != nil && !errors.Is(err, ErrPortClosed) {
			errs = append(errs, &TransportError{Op: "close", Err: err})
		}
		c.transport = nil
	}

	if !c.config.KeepLines {
		for _, l := range []*line{&c.reset, &c.boot0} {
			if !l.claimed {
				continue
			}
			if err := c.gpio.Release(l.pin); err != nil {
				errs = append(errs, &GPIOError{Pin: l.pin, Op: "release", Err: err})
			}
			*l = line{name: l.name, pin: l.pin}
		}
	}

	c.log.Debug("controller closed")
	return errors.Join(errs...)
}
