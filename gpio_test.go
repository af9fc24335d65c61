package stm32boot

import (
	"errors"
	"testing"
)

func TestParseNumberingMode(t *testing.T) {
	tests := []struct {
		input    string
		expected NumberingMode
		wantErr  bool
	}{
		{"board", NumberingBoard, false},
		{"BOARD", NumberingBoard, false},
		{"bcm", NumberingBCM, false},
		{"BCM", NumberingBCM, false},
		{"wiringpi", NumberingBoard, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := ParseNumberingMode(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("Expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if mode != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, mode)
			}
			if mode.String() != map[NumberingMode]string{NumberingBoard: "board", NumberingBCM: "bcm"}[mode] {
				t.Errorf("Unexpected String() %q", mode.String())
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	if High.String() != "HIGH" {
		t.Errorf("Expected HIGH, got %s", High)
	}
	if Low.String() != "LOW" {
		t.Errorf("Expected LOW, got %s", Low)
	}
}

func TestSimulatedGPIO(t *testing.T) {
	gpio := NewSimulatedGPIO()

	if _, ok := gpio.Mode(); ok {
		t.Error("Expected no mode before SetMode")
	}
	if err := gpio.SetMode(NumberingBCM); err != nil {
		t.Fatalf("SetMode failed: %v", err)
	}
	if mode, ok := gpio.Mode(); !ok || mode != NumberingBCM {
		t.Errorf("Expected bcm, got %v (set=%v)", mode, ok)
	}

	if err := gpio.Output(5, High); !errors.Is(err, ErrPinNotClaimed) {
		t.Errorf("Output on unclaimed pin: expected ErrPinNotClaimed, got %v", err)
	}
	if err := gpio.Release(5); !errors.Is(err, ErrPinNotClaimed) {
		t.Errorf("Release on unclaimed pin: expected ErrPinNotClaimed, got %v", err)
	}

	if err := gpio.Claim(5); err != nil {
		t.Fatalf("Claim failed: %v", err)
	}
	if _, ok := gpio.Level(5); ok {
		t.Error("Expected claimed pin to have no driven level yet")
	}
	gpio.Output(5, High)
	gpio.Output(5, Low)

	if level, ok := gpio.Level(5); !ok || level != Low {
		t.Errorf("Expected LOW, got %v (driven=%v)", level, ok)
	}
	history := gpio.History()
	if len(history) != 2 || history[0] != (PinWrite{5, High}) || history[1] != (PinWrite{5, Low}) {
		t.Errorf("Unexpected history %v", history)
	}

	// History is a copy
	history[0].Level = Low
	if gpio.History()[0].Level != High {
		t.Error("Expected History to return a copy")
	}

	if err := gpio.Release(5); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if gpio.Claimed(5) {
		t.Error("Expected pin to be released")
	}
	if gpio.ClaimCount(5) != 1 {
		t.Errorf("Expected claim count 1, got %d", gpio.ClaimCount(5))
	}
}

func TestSimulatedGPIOFailures(t *testing.T) {
	gpio := NewSimulatedGPIO()
	boom := errors.New("boom")

	gpio.FailMode = boom
	if err := gpio.SetMode(NumberingBoard); !errors.Is(err, boom) {
		t.Errorf("Expected SetMode failure, got %v", err)
	}

	gpio.FailClaim[3] = boom
	if err := gpio.Claim(3); !errors.Is(err, boom) {
		t.Errorf("Expected Claim failure, got %v", err)
	}
	if gpio.Claimed(3) || gpio.ClaimCount(3) != 0 {
		t.Error("Expected failed claim to leave the pin unclaimed")
	}

	gpio.Claim(4)
	gpio.FailOutput[4] = boom
	if err := gpio.Output(4, High); !errors.Is(err, boom) {
		t.Errorf("Expected Output failure, got %v", err)
	}
	if len(gpio.History()) != 0 {
		t.Error("Expected failed output to be left out of the history")
	}
}

func TestPinName(t *testing.T) {
	tests := []struct {
		mode     NumberingMode
		pin      int
		expected string
	}{
		{NumberingBoard, 12, "P1_12"},
		{NumberingBoard, 11, "P1_11"},
		{NumberingBCM, 18, "GPIO18"},
		{NumberingBCM, 17, "GPIO17"},
	}

	for _, tt := range tests {
		if got := pinName(tt.mode, tt.pin); got != tt.expected {
			t.Errorf("pinName(%v, %d) = %q, want %q", tt.mode, tt.pin, got, tt.expected)
		}
	}
}

func TestGPIOErrorMessages(t *testing.T) {
	base := errors.New("busy")

	claim := &GPIOError{Pin: 12, Op: "claim", Err: base}
	if claim.Error() != "gpio: claim pin 12: busy" {
		t.Errorf("Unexpected message %q", claim.Error())
	}
	if !errors.Is(claim, base) {
		t.Error("Expected GPIOError to unwrap")
	}

	mode := &GPIOError{Op: "mode", Err: base}
	if mode.Error() != "gpio: set numbering mode: busy" {
		t.Errorf("Unexpected message %q", mode.Error())
	}
}
