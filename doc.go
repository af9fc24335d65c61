// Package stm32boot drives the RESET and BOOT0 lines of an STM32
// microcontroller from a Linux host, alongside the serial port used to talk
// to its built-in UART bootloader.
//
// The STM32 samples BOOT0 when it leaves reset: with BOOT0 high it starts
// the system-memory bootloader instead of the application in flash. A
// Controller owns the serial connection and both GPIO lines, and exposes
// the line toggles with configurable polarity. The bootloader protocol
// itself is left to the caller.
//
// # Basic Usage
//
//	ctrl, err := stm32boot.New("/dev/ttyAMA0", stm32boot.NewPeriphGPIO())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctrl.Close()
//
//	if err := ctrl.Connect(); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Force bootloader entry
//	err = stm32boot.EnterBootloader(ctx, ctrl, stm32boot.DefaultTiming())
//
//	n, err := ctrl.Write([]byte{0x7F})
//	reply, err := ctrl.Read(1) // short read on timeout
//
// # Configuration Options
//
//	ctrl, err := stm32boot.New("/dev/ttyUSB0", gpio,
//	    stm32boot.WithBaudRate(57600),
//	    stm32boot.WithParity(stm32boot.ParityEven),
//	    stm32boot.WithTimeout(500*time.Millisecond),
//	    stm32boot.WithNumbering(stm32boot.NumberingBCM),
//	    stm32boot.WithResetPin(18),
//	    stm32boot.WithBoot0Pin(17),
//	    stm32boot.WithResetActiveHigh(true),
//	)
//
// Polarity can also be changed later through the exported ResetActiveHigh
// and Boot0ActiveLow fields; it is read on every EnableReset/EnableBoot0.
//
// # Line Control
//
// Each line is claimed as an output the first time it is driven:
//
//	ctrl.EnableBoot0(true)  // BOOT0 high (default active high)
//	ctrl.EnableReset(true)  // RESET low (default active low)
//	ctrl.EnableReset(false) // target starts, samples BOOT0
//
// # Error Handling
//
//	var (
//	    ErrNotConnected     // Read/Write/SetTimeout before Connect
//	    ErrAlreadyConnected // second Connect
//	    ErrInvalidConfig    // rejected option or argument
//	    // ... and more
//	)
//
//	*ConnectionError // port could not be opened
//	*GPIOError       // claim/output/release failed on a pin
//	*TransportError  // driver failure on an open connection
//
// Use errors.Is for sentinels and errors.As for the typed errors. Nothing
// is retried.
//
// # Default Configuration
//
//   - BaudRate: 115200
//   - Framing: 8E1, no flow control
//   - Timeout: 5 seconds
//   - RESET: pin 12, active low
//   - BOOT0: pin 11, active high
//   - Numbering: board (header position)
package stm32boot
