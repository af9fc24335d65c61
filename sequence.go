package stm32boot

import (
	"context"
	"fmt"
	"time"
)

// Lines is the part of a Controller the boot sequences need
type Lines interface {
	EnableReset(enable bool) error
	EnableBoot0(enable bool) error
}

var _ Lines = (*Controller)(nil)

// Timing holds the delays used by the boot sequences
type Timing struct {
	// ResetHold is how long reset stays asserted
	ResetHold time.Duration
	// Settle is the wait after reset is released, before the target is used
	Settle time.Duration
}

// DefaultTiming holds reset for 100ms and waits 500ms for the system
// bootloader to come up.
func DefaultTiming() Timing {
	return Timing{
		ResetHold: 100 * time.Millisecond,
		Settle:    500 * time.Millisecond,
	}
}

// EnterBootloader selects the system bootloader with BOOT0 and pulses reset,
// so the target samples BOOT0 high on startup.
func EnterBootloader(ctx context.Context, l Lines, t Timing) error {
	if err := l.EnableBoot0(true); err != nil {
		return fmt.Errorf("select bootloader: %w", err)
	}
	return PulseReset(ctx, l, t)
}

// ResetIntoFirmware deselects the bootloader and pulses reset so the target
// boots the application in flash.
func ResetIntoFirmware(ctx context.Context, l Lines, t Timing) error {
	if err := l.EnableBoot0(false); err != nil {
		return fmt.Errorf("deselect bootloader: %w", err)
	}
	return PulseReset(ctx, l, t)
}

// PulseReset asserts reset for t.ResetHold, releases it and waits t.Settle.
// If ctx ends during the hold, reset is released before returning.
func PulseReset(ctx context.Context, l Lines, t Timing) error {
	if err := l.EnableReset(true); err != nil {
		return fmt.Errorf("assert reset: %w", err)
	}

	holdErr := sleep(ctx, t.ResetHold)

	if err := l.EnableReset(false); err != nil {
		return fmt.Errorf("release reset: %w", err)
	}
	if holdErr != nil {
		return holdErr
	}

	return sleep(ctx, t.Settle)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
