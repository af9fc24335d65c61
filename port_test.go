package stm32boot

import (
	"errors"
	"fmt"
	"io"
	"math"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func TestGetBaudRate(t *testing.T) {
	tests := []struct {
		input    int
		expected uint32
		wantErr  bool
	}{
		{9600, unix.B9600, false},
		{57600, unix.B57600, false},
		{115200, unix.B115200, false},
		{921600, unix.B921600, false},
		{4000000, unix.B4000000, false},
		{12345, 0, true},
		{0, 0, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.input), func(t *testing.T) {
			result, err := getBaudRate(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidBaudRate) {
					t.Errorf("Expected ErrInvalidBaudRate, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestParityFlags(t *testing.T) {
	tests := []struct {
		parity   Parity
		expected uint32
	}{
		{ParityNone, 0},
		{ParityOdd, unix.PARENB | unix.PARODD},
		{ParityEven, unix.PARENB},
		{ParityMark, unix.PARENB | unix.PARODD | unix.CMSPAR},
		{ParitySpace, unix.PARENB | unix.CMSPAR},
	}

	for _, tt := range tests {
		t.Run(tt.parity.String(), func(t *testing.T) {
			if got := parityFlags(tt.parity); got != tt.expected {
				t.Errorf("Expected %#x, got %#x", tt.expected, got)
			}
		})
	}
}

func TestPollTimeout(t *testing.T) {
	tests := []struct {
		timeout  time.Duration
		expected int
	}{
		{Forever, -1},
		{0, 0},
		{time.Microsecond, 1},
		{time.Millisecond, 1},
		{1500 * time.Microsecond, 2},
		{5 * time.Second, 5000},
		{time.Duration(math.MaxInt64), math.MaxInt32},
	}

	for _, tt := range tests {
		if got := pollTimeout(tt.timeout); got != tt.expected {
			t.Errorf("pollTimeout(%v) = %d, want %d", tt.timeout, got, tt.expected)
		}
	}
}

func TestClassifyOpenError(t *testing.T) {
	tests := []struct {
		errno    error
		expected error
	}{
		{unix.ENOENT, ErrDeviceNotFound},
		{unix.ENODEV, ErrDeviceNotFound},
		{unix.ENXIO, ErrDeviceNotFound},
		{unix.EACCES, ErrPermissionDenied},
		{unix.EPERM, ErrPermissionDenied},
		{unix.EBUSY, ErrDeviceInUse},
		{unix.EIO, nil},
	}

	for _, tt := range tests {
		if got := classifyOpenError(tt.errno); got != tt.expected {
			t.Errorf("classifyOpenError(%v) = %v, want %v", tt.errno, got, tt.expected)
		}
	}
}

func TestOpenPortMissingDevice(t *testing.T) {
	_, err := OpenPort("/dev/ttyDOESNOTEXIST99", DefaultConfig())
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Expected ErrDeviceNotFound, got %v", err)
	}
	if !errors.Is(err, unix.ENOENT) {
		t.Errorf("Expected the errno to stay in the chain, got %v", err)
	}
}

func TestOpenPortNotATerminal(t *testing.T) {
	_, err := OpenPort("/dev/null", DefaultConfig())
	if err == nil {
		t.Fatal("Expected /dev/null to be rejected")
	}
}

func TestClosedPortOperations(t *testing.T) {
	p := &port{}
	p.closed.Store(true)

	if _, err := p.Read(make([]byte, 1)); !errors.Is(err, ErrPortClosed) {
		t.Errorf("Read: expected ErrPortClosed, got %v", err)
	}
	if _, err := p.Write([]byte{1}); !errors.Is(err, ErrPortClosed) {
		t.Errorf("Write: expected ErrPortClosed, got %v", err)
	}
	if err := p.SetReadTimeout(time.Second); !errors.Is(err, ErrPortClosed) {
		t.Errorf("SetReadTimeout: expected ErrPortClosed, got %v", err)
	}
	if err := p.Drain(); !errors.Is(err, ErrPortClosed) {
		t.Errorf("Drain: expected ErrPortClosed, got %v", err)
	}
	if err := p.FlushInput(); !errors.Is(err, ErrPortClosed) {
		t.Errorf("FlushInput: expected ErrPortClosed, got %v", err)
	}
	if err := p.FlushOutput(); !errors.Is(err, ErrPortClosed) {
		t.Errorf("FlushOutput: expected ErrPortClosed, got %v", err)
	}
	if err := p.Close(); !errors.Is(err, ErrPortClosed) {
		t.Errorf("Close: expected ErrPortClosed, got %v", err)
	}
}

// openPTY returns the master fd and the slave path of a new pseudo terminal
func openPTY(t *testing.T) (int, string) {
	t.Helper()

	master, err := unix.Open("/dev/ptmx", unix.O_RDWR|unix.O_NOCTTY|unix.O_CLOEXEC, 0)
	if err != nil {
		t.Skipf("pseudo terminals unavailable: %v", err)
	}
	if err := unix.IoctlSetPointerInt(master, unix.TIOCSPTLCK, 0); err != nil {
		unix.Close(master)
		t.Skipf("unlock pty: %v", err)
	}
	n, err := unix.IoctlGetInt(master, unix.TIOCGPTN)
	if err != nil {
		unix.Close(master)
		t.Skipf("pty number: %v", err)
	}
	t.Cleanup(func() { unix.Close(master) })

	return master, fmt.Sprintf("/dev/pts/%d", n)
}

func TestPortOverPTY(t *testing.T) {
	master, slave := openPTY(t)

	cfg := DefaultConfig()
	cfg.Timeout = 50 * time.Millisecond
	p, err := OpenPort(slave, cfg)
	if err != nil {
		t.Skipf("open %s: %v", slave, err)
	}
	defer p.Close()

	buf := make([]byte, 8)

	start := time.Now()
	n, err := p.Read(buf)
	if err != nil || n != 0 {
		t.Fatalf("Expected empty timed-out read, got %d, %v", n, err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Read returned after %v, before the timeout", elapsed)
	}

	if _, err := unix.Write(master, []byte("ack")); err != nil {
		t.Fatalf("write master: %v", err)
	}
	n, err = p.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(buf[:n]) != "ack" {
		t.Errorf("Expected ack, got %q", buf[:n])
	}

	if _, err := p.Write([]byte{0x7F}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got := make([]byte, 1)
	if _, err := unix.Read(master, got); err != nil {
		t.Fatalf("read master: %v", err)
	}
	if got[0] != 0x7F {
		t.Errorf("Expected 0x7f on the master side, got %#x", got[0])
	}
}

func TestPortCloseUnblocksRead(t *testing.T) {
	_, slave := openPTY(t)

	cfg := DefaultConfig()
	cfg.Timeout = Forever
	p, err := OpenPort(slave, cfg)
	if err != nil {
		t.Skipf("open %s: %v", slave, err)
	}

	errCh := make(chan error, 1)
	go func() {
		_, err := p.Read(make([]byte, 1))
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrPortClosed) && !errors.Is(err, io.EOF) {
			t.Errorf("Expected ErrPortClosed, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Read still blocked after Close")
	}
}

func TestControllerOverPTY(t *testing.T) {
	master, slave := openPTY(t)

	c, err := New(slave, NewSimulatedGPIO(), WithTimeout(100*time.Millisecond))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := c.Connect(); err != nil {
		t.Skipf("connect %s: %v", slave, err)
	}
	defer c.Close()

	go func() {
		time.Sleep(10 * time.Millisecond)
		unix.Write(master, []byte{0x79})
	}()

	data, err := c.Read(2)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(data) != 1 || data[0] != 0x79 {
		t.Errorf("Expected a single 0x79, got % x", data)
	}
}
