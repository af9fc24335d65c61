package stm32boot

import (
	"context"
	"errors"
	"testing"
	"time"
)

// recordingLines logs every line call in order
type recordingLines struct {
	calls    []string
	failAt   string
	failWith error
}

func (r *recordingLines) record(call string) error {
	r.calls = append(r.calls, call)
	if call == r.failAt {
		return r.failWith
	}
	return nil
}

func (r *recordingLines) EnableReset(enable bool) error {
	if enable {
		return r.record("reset on")
	}
	return r.record("reset off")
}

func (r *recordingLines) EnableBoot0(enable bool) error {
	if enable {
		return r.record("boot0 on")
	}
	return r.record("boot0 off")
}

func equalCalls(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSequences(t *testing.T) {
	timing := Timing{ResetHold: time.Millisecond, Settle: time.Millisecond}

	tests := []struct {
		name     string
		run      func(context.Context, Lines, Timing) error
		expected []string
	}{
		{"EnterBootloader", EnterBootloader, []string{"boot0 on", "reset on", "reset off"}},
		{"ResetIntoFirmware", ResetIntoFirmware, []string{"boot0 off", "reset on", "reset off"}},
		{"PulseReset", PulseReset, []string{"reset on", "reset off"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := &recordingLines{}
			if err := tt.run(context.Background(), lines, timing); err != nil {
				t.Fatalf("%s failed: %v", tt.name, err)
			}
			if !equalCalls(lines.calls, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, lines.calls)
			}
		})
	}
}

func TestPulseResetTiming(t *testing.T) {
	timing := Timing{ResetHold: 30 * time.Millisecond, Settle: 20 * time.Millisecond}

	start := time.Now()
	if err := PulseReset(context.Background(), &recordingLines{}, timing); err != nil {
		t.Fatalf("PulseReset failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Expected at least 50ms, took %v", elapsed)
	}
}

func TestPulseResetReleasesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lines := &recordingLines{}
	err := PulseReset(ctx, lines, Timing{ResetHold: time.Hour, Settle: time.Hour})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if !equalCalls(lines.calls, []string{"reset on", "reset off"}) {
		t.Errorf("Expected reset to be released, got %v", lines.calls)
	}
}

func TestSequenceErrors(t *testing.T) {
	boom := errors.New("boom")
	timing := Timing{}

	tests := []struct {
		name     string
		run      func(context.Context, Lines, Timing) error
		failAt   string
		expected []string
	}{
		{"boot0 select fails", EnterBootloader, "boot0 on", []string{"boot0 on"}},
		{"boot0 deselect fails", ResetIntoFirmware, "boot0 off", []string{"boot0 off"}},
		{"assert fails", PulseReset, "reset on", []string{"reset on"}},
		{"release fails", EnterBootloader, "reset off", []string{"boot0 on", "reset on", "reset off"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := &recordingLines{failAt: tt.failAt, failWith: boom}
			err := tt.run(context.Background(), lines, timing)
			if !errors.Is(err, boom) {
				t.Errorf("Expected wrapped boom, got %v", err)
			}
			if !equalCalls(lines.calls, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, lines.calls)
			}
		})
	}
}

func TestEnterBootloaderOnController(t *testing.T) {
	c, gpio, _ := newTestController(t)

	if err := EnterBootloader(context.Background(), c, Timing{}); err != nil {
		t.Fatalf("EnterBootloader failed: %v", err)
	}

	expected := []PinWrite{{11, High}, {12, Low}, {12, High}}
	history := gpio.History()
	if len(history) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, history)
	}
	for i := range expected {
		if history[i] != expected[i] {
			t.Errorf("Write %d: got %+v, want %+v", i, history[i], expected[i])
		}
	}
}

func TestDefaultTiming(t *testing.T) {
	timing := DefaultTiming()
	if timing.ResetHold != 100*time.Millisecond {
		t.Errorf("Expected 100ms hold, got %v", timing.ResetHold)
	}
	if timing.Settle != 500*time.Millisecond {
		t.Errorf("Expected 500ms settle, got %v", timing.Settle)
	}
}
