package stm32boot

import (
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.BaudRate != 115200 {
		t.Errorf("Expected BaudRate 115200, got %d", cfg.BaudRate)
	}
	if cfg.DataBits != 8 {
		t.Errorf("Expected DataBits 8, got %d", cfg.DataBits)
	}
	if cfg.StopBits != 1 {
		t.Errorf("Expected StopBits 1, got %d", cfg.StopBits)
	}
	if cfg.Parity != ParityEven {
		t.Errorf("Expected ParityEven, got %v", cfg.Parity)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Expected Timeout 5s, got %v", cfg.Timeout)
	}
	if cfg.ResetPin != 12 {
		t.Errorf("Expected ResetPin 12, got %d", cfg.ResetPin)
	}
	if cfg.Boot0Pin != 11 {
		t.Errorf("Expected Boot0Pin 11, got %d", cfg.Boot0Pin)
	}
	if cfg.Numbering != NumberingBoard {
		t.Errorf("Expected board numbering, got %v", cfg.Numbering)
	}
	if cfg.ResetActiveHigh || cfg.Boot0ActiveLow {
		t.Error("Expected default polarity: RESET active low, BOOT0 active high")
	}
	if cfg.Opener == nil {
		t.Error("Expected a default Opener")
	}
}

func TestFunctionalOptions(t *testing.T) {
	logger := logrus.New()
	cfg := DefaultConfig()

	opts := []Option{
		WithBaudRate(57600),
		WithDataBits(7),
		WithStopBits(2),
		WithParity(ParityOdd),
		WithTimeout(200 * time.Millisecond),
		WithResetPin(18),
		WithBoot0Pin(17),
		WithNumbering(NumberingBCM),
		WithResetActiveHigh(true),
		WithBoot0ActiveLow(true),
		WithKeepLines(true),
		WithLogger(logger),
	}

	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			t.Fatalf("Option failed: %v", err)
		}
	}

	if cfg.BaudRate != 57600 {
		t.Errorf("Expected BaudRate 57600, got %d", cfg.BaudRate)
	}
	if cfg.DataBits != 7 {
		t.Errorf("Expected DataBits 7, got %d", cfg.DataBits)
	}
	if cfg.StopBits != 2 {
		t.Errorf("Expected StopBits 2, got %d", cfg.StopBits)
	}
	if cfg.Parity != ParityOdd {
		t.Errorf("Expected ParityOdd, got %v", cfg.Parity)
	}
	if cfg.Timeout != 200*time.Millisecond {
		t.Errorf("Expected Timeout 200ms, got %v", cfg.Timeout)
	}
	if cfg.ResetPin != 18 || cfg.Boot0Pin != 17 {
		t.Errorf("Expected pins 18/17, got %d/%d", cfg.ResetPin, cfg.Boot0Pin)
	}
	if cfg.Numbering != NumberingBCM {
		t.Errorf("Expected bcm numbering, got %v", cfg.Numbering)
	}
	if !cfg.ResetActiveHigh || !cfg.Boot0ActiveLow || !cfg.KeepLines {
		t.Error("Expected boolean options to be set")
	}
	if cfg.Logger != logger {
		t.Error("Expected logger to be set")
	}
}

func TestInvalidOptions(t *testing.T) {
	tests := []struct {
		name     string
		opt      Option
		expected error
	}{
		{"baud rate", WithBaudRate(12345), ErrInvalidBaudRate},
		{"data bits low", WithDataBits(4), ErrInvalidConfig},
		{"data bits high", WithDataBits(9), ErrInvalidConfig},
		{"stop bits", WithStopBits(3), ErrInvalidConfig},
		{"parity", WithParity(Parity(9)), ErrInvalidConfig},
		{"negative timeout", WithTimeout(-2 * time.Second), ErrInvalidConfig},
		{"reset pin", WithResetPin(-1), ErrInvalidConfig},
		{"boot0 pin", WithBoot0Pin(-1), ErrInvalidConfig},
		{"numbering", WithNumbering(NumberingMode(7)), ErrInvalidConfig},
		{"nil logger", WithLogger(nil), ErrInvalidConfig},
		{"nil opener", WithOpener(nil), ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			if err := tt.opt(&cfg); !errors.Is(err, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestWithTimeoutForever(t *testing.T) {
	cfg := DefaultConfig()
	if err := WithTimeout(Forever)(&cfg); err != nil {
		t.Fatalf("WithTimeout(Forever) failed: %v", err)
	}
	if cfg.Timeout != Forever {
		t.Errorf("Expected Forever, got %v", cfg.Timeout)
	}

	if err := WithTimeout(0)(&cfg); err != nil {
		t.Errorf("WithTimeout(0) failed: %v", err)
	}
}

func TestParseParity(t *testing.T) {
	tests := []struct {
		input    string
		expected Parity
		wantErr  bool
	}{
		{"E", ParityEven, false},
		{"even", ParityEven, false},
		{"n", ParityNone, false},
		{"None", ParityNone, false},
		{"o", ParityOdd, false},
		{"mark", ParityMark, false},
		{" S ", ParitySpace, false},
		{"x", ParityNone, true},
		{"", ParityNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, err := ParseParity(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("Expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if p != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, p)
			}
		})
	}
}

func TestParityString(t *testing.T) {
	tests := map[Parity]string{
		ParityNone:  "N",
		ParityOdd:   "O",
		ParityEven:  "E",
		ParityMark:  "M",
		ParitySpace: "S",
		Parity(42):  "Parity(42)",
	}

	for p, expected := range tests {
		if got := p.String(); got != expected {
			t.Errorf("Parity(%d).String() = %q, want %q", int(p), got, expected)
		}
	}
}
