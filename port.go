package stm32boot

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

// Transport is the byte stream a Controller drives. The read timeout bounds
// a single Read call; a Read that times out returns 0 bytes and no error.
type Transport interface {
	io.ReadWriteCloser
	SetReadTimeout(timeout time.Duration) error
}

// Port represents a serial port connection interface
type Port interface {
	Transport
	Drain() error
	FlushInput() error
	FlushOutput() error
}

// port is the concrete implementation of the Port interface
type port struct {
	mu      sync.RWMutex
	fd      int
	wake    [2]int // self-pipe, written by Close to release a blocked Read
	timeout atomic.Int64
	config  Config
	closed  atomic.Bool
}

// Ensure port implements Port interface at compile time
var _ Port = (*port)(nil)

// getBaudRate converts an integer baud rate to the unix constant
func getBaudRate(rate int) (uint32, error) {
	switch rate {
	case 50:
		return unix.B50, nil
	case 75:
		return unix.B75, nil
	case 110:
		return unix.B110, nil
	case 134:
		return unix.B134, nil
	case 150:
		return unix.B150, nil
	case 200:
		return unix.B200, nil
	case 300:
		return unix.B300, nil
	case 600:
		return unix.B600, nil
	case 1200:
		return unix.B1200, nil
	case 1800:
		return unix.B1800, nil
	case 2400:
		return unix.B2400, nil
	case 4800:
		return unix.B4800, nil
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	case 230400:
		return unix.B230400, nil
	case 460800:
		return unix.B460800, nil
	case 500000:
		return unix.B500000, nil
	case 576000:
		return unix.B576000, nil
	case 921600:
		return unix.B921600, nil
	case 1000000:
		return unix.B1000000, nil
	case 1152000:
		return unix.B1152000, nil
	case 1500000:
		return unix.B1500000, nil
	case 2000000:
		return unix.B2000000, nil
	case 2500000:
		return unix.B2500000, nil
	case 3000000:
		return unix.B3000000, nil
	case 3500000:
		return unix.B3500000, nil
	case 4000000:
		return unix.B4000000, nil
	default:
		return 0, ErrInvalidBaudRate
	}
}

// classifyOpenError maps errno values from open(2) to the package sentinels
func classifyOpenError(err error) error {
	switch {
	case errors.Is(err, unix.ENOENT), errors.Is(err, unix.ENODEV), errors.Is(err, unix.ENXIO):
		return ErrDeviceNotFound
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		return ErrPermissionDenied
	case errors.Is(err, unix.EBUSY):
		return ErrDeviceInUse
	default:
		return nil
	}
}

// OpenTransport opens device as a Transport. It is the default Opener.
func OpenTransport(device string, cfg Config) (Transport, error) {
	p, err := OpenPort(device, cfg)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// OpenPort opens a serial port with the framing and timeout from cfg.
// Flow control (XON/XOFF, RTS/CTS, DSR/DTR) is always disabled.
func OpenPort(device string, cfg Config) (Port, error) {
	if err := validateTimeout(cfg.Timeout); err != nil {
		return nil, err
	}

	fd, err := unix.Open(device, unix.O_RDWR|unix.O_NOCTTY|unix.O_CLOEXEC, 0)
	if err != nil {
		if sentinel := classifyOpenError(err); sentinel != nil {
			return nil, fmt.Errorf("failed to open %s: %w (%w)", device, sentinel, err)
		}
		return nil, fmt.Errorf("failed to open %s: %w", device, err)
	}

	// Refuse a second open(2) of the same tty while we hold it
	if err := unix.IoctlSetInt(fd, unix.TIOCEXCL, 0); err != nil {
		unix.Close(fd)
		if errors.Is(err, unix.EBUSY) {
			return nil, fmt.Errorf("failed to open %s: %w", device, ErrDeviceInUse)
		}
		return nil, fmt.Errorf("failed to lock %s: %w", device, err)
	}

	if err := configurePort(fd, cfg); err != nil {
		unix.Close(fd)
		return nil, err
	}

	p := &port{fd: fd, config: cfg}
	if err := unix.Pipe2(p.wake[:], unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to create wake pipe: %w", err)
	}
	p.timeout.Store(int64(cfg.Timeout))

	return p, nil
}

// configurePort puts the tty in raw mode with the requested framing
func configurePort(fd int, config Config) error {
	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("failed to get termios: %w", err)
	}

	// Raw mode. Iflag=0 also clears IXON/IXOFF.
	termios.Cflag = unix.CREAD | unix.CLOCAL
	termios.Iflag = 0
	termios.Oflag = 0
	termios.Lflag = 0

	// Reads are bounded by poll(2), not VTIME
	termios.Cc[unix.VMIN] = 0
	termios.Cc[unix.VTIME] = 0

	baudRate, err := getBaudRate(config.BaudRate)
	if err != nil {
		return err
	}
	termios.Cflag = (termios.Cflag &^ unix.CBAUD) | baudRate
	termios.Ispeed = baudRate
	termios.Ospeed = baudRate

	switch config.DataBits {
	case 5:
		termios.Cflag |= unix.CS5
	case 6:
		termios.Cflag |= unix.CS6
	case 7:
		termios.Cflag |= unix.CS7
	case 8:
		termios.Cflag |= unix.CS8
	default:
		return ErrInvalidConfig
	}

	if config.StopBits == 2 {
		termios.Cflag |= unix.CSTOPB
	}

	termios.Cflag |= parityFlags(config.Parity)

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		return fmt.Errorf("failed to set termios: %w", err)
	}

	return nil
}

// parityFlags returns the termios Cflag bits for a parity mode
func parityFlags(parity Parity) uint32 {
	switch parity {
	case ParityOdd:
		return unix.PARENB | unix.PARODD
	case ParityEven:
		return unix.PARENB
	case ParityMark:
		return unix.PARENB | unix.PARODD | unix.CMSPAR
	case ParitySpace:
		return unix.PARENB | unix.CMSPAR
	default:
		return 0
	}
}

// pollTimeout converts a read timeout to poll(2) milliseconds, rounding up
func pollTimeout(timeout time.Duration) int {
	if timeout < 0 {
		return -1
	}
	ms := timeout / time.Millisecond
	if timeout%time.Millisecond != 0 {
		ms++
	}
	if ms > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(ms)
}

// SetReadTimeout changes the timeout applied to subsequent reads
func (p *port) SetReadTimeout(timeout time.Duration) error {
	if p.closed.Load() {
		return ErrPortClosed
	}
	if err := validateTimeout(timeout); err != nil {
		return err
	}
	p.timeout.Store(int64(timeout))
	return nil
}

// Close closes the serial port, releasing any Read blocked in poll
func (p *port) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return ErrPortClosed
	}

	unix.Write(p.wake[1], []byte{0})

	p.mu.Lock()
	defer p.mu.Unlock()

	err := unix.Close(p.fd)
	unix.Close(p.wake[0])
	unix.Close(p.wake[1])
	return err
}

// Read waits up to the read timeout for data and returns what is available.
// A timeout yields (0, nil); a hang-up yields io.EOF.
func (p *port) Read(buf []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed.Load() {
		return 0, ErrPortClosed
	}
	if len(buf) == 0 {
		return 0, nil
	}

	fds := []unix.PollFd{
		{Fd: int32(p.fd), Events: unix.POLLIN},
		{Fd: int32(p.wake[0]), Events: unix.POLLIN},
	}
	for {
		n, err := unix.Poll(fds, pollTimeout(time.Duration(p.timeout.Load())))
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, nil
		}
		break
	}

	if fds[1].Revents != 0 {
		return 0, ErrPortClosed
	}
	if fds[0].Revents&unix.POLLNVAL != 0 {
		return 0, ErrPortClosed
	}

	n, err := unix.Read(p.fd, buf)
	if errors.Is(err, unix.EAGAIN) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if n == 0 {
		// readable but empty: the device went away
		return 0, io.EOF
	}
	return n, nil
}

// Write writes all of data to the serial port
func (p *port) Write(data []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed.Load() {
		return 0, ErrPortClosed
	}

	written := 0
	for written < len(data) {
		n, err := unix.Write(p.fd, data[written:])
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return written, err
		}
		written += n
	}
	return written, nil
}

// Drain waits until all output written to the port has been transmitted
func (p *port) Drain() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed.Load() {
		return ErrPortClosed
	}

	return unix.IoctlSetInt(p.fd, unix.TCSBRK, 1)
}

// FlushInput discards any unread input data
func (p *port) FlushInput() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed.Load() {
		return ErrPortClosed
	}

	return unix.IoctlSetInt(p.fd, unix.TCFLSH, unix.TCIFLUSH)
}

// FlushOutput discards any unwritten output data
func (p *port) FlushOutput() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed.Load() {
		return ErrPortClosed
	}

	return unix.IoctlSetInt(p.fd, unix.TCFLSH, unix.TCOFLUSH)
}
