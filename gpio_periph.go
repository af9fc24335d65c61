package stm32boot

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PeriphGPIO drives lines through periph.io. Board numbering resolves pin n
// to the header alias "P1_n"; BCM numbering resolves it to "GPIOn".
type PeriphGPIO struct {
	mu   sync.Mutex
	mode NumberingMode
	pins map[int]gpio.PinIO
}

var _ GPIO = (*PeriphGPIO)(nil)

// NewPeriphGPIO returns a backend; host drivers load on the first SetMode.
func NewPeriphGPIO() *PeriphGPIO {
	return &PeriphGPIO{pins: make(map[int]gpio.PinIO)}
}

// SetMode loads the periph host drivers (once per process) and records the
// numbering mode used to resolve pin ids.
func (g *PeriphGPIO) SetMode(mode NumberingMode) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("host init failed: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.mode = mode
	return nil
}

// pinName returns the periph registry name of pin under mode
func pinName(mode NumberingMode, pin int) string {
	if mode == NumberingBCM {
		return fmt.Sprintf("GPIO%d", pin)
	}
	return fmt.Sprintf("P1_%d", pin)
}

// Claim resolves pin and switches it to output, keeping its current level.
func (g *PeriphGPIO) Claim(pin int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	name := pinName(g.mode, pin)
	p := gpioreg.ByName(name)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrUnknownPin, name)
	}
	if err := p.Out(p.Read()); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	g.pins[pin] = p
	return nil
}

func (g *PeriphGPIO) Output(pin int, level Level) error {
	g.mu.Lock()
	p, ok := g.pins[pin]
	g.mu.Unlock()
	if !ok {
		return ErrPinNotClaimed
	}
	return p.Out(gpio.Level(level))
}

// Release puts the pin back to a floating input.
func (g *PeriphGPIO) Release(pin int) error {
	g.mu.Lock()
	p, ok := g.pins[pin]
	delete(g.pins, pin)
	g.mu.Unlock()
	if !ok {
		return ErrPinNotClaimed
	}
	if err := p.Halt(); err != nil {
		return err
	}
	return p.In(gpio.PullNoChange, gpio.NoEdge)
}
