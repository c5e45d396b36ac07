// Package transport implements the raw Bluetooth socket lifecycle shared
// by the management, HCI, and L2CAP channels: a non-inheritable
// AF_BLUETOOTH socket, poll-based read timeout, and close-triggered
// interruption of a pending reader, grounded on the teacher's
// linux/internal/socket and linux/internal/l2cap packages.
package transport

import (
	"sync"
	"syscall"
	"time"

	"github.com/XC-/direct_bt/dbterr"
)

// AF_BLUETOOTH is not exposed by the syscall package; Linux defines it as
// address family 31.
const afBluetooth = 31

// Bluetooth socket protocols (BTPROTO_*), matching <bluetooth/bluetooth.h>.
const (
	ProtoL2CAP = 0
	ProtoHCI   = 1
)

// HCI socket channels (HCI_CHANNEL_*).
const (
	HCIChannelRaw     = 0
	HCIChannelUser    = 1
	HCIChannelControl = 3
)

// State is the socket connection state machine: spec §4.4.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateError
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Socket wraps one raw Bluetooth socket descriptor and its state machine.
// Safe for concurrent Read/Write from one reader and one writer
// goroutine; Close may be called from any goroutine to unblock a pending
// Read.
type Socket struct {
	mu    sync.Mutex
	state State
	fd    int
}

// openRetryBusy mirrors the teacher's Socket()/Bind() retry loop: the
// kernel bluetooth module occasionally returns EBUSY transiently while a
// previous socket on the same device is torn down.
func openRetryBusy(domain, typ, proto int) (int, error) {
	var lastErr error
	for i := 0; i < 5; i++ {
		fd, err := syscall.Socket(domain, typ, proto)
		if err == nil {
			return fd, nil
		}
		lastErr = err
		if err != syscall.EBUSY {
			return 0, err
		}
		time.Sleep(time.Second)
	}
	return 0, lastErr
}

// OpenHCI creates a raw HCI socket bound to the given controller device
// index and channel (HCIChannelRaw, HCIChannelUser, or HCIChannelControl).
func OpenHCI(devID int, channel uint16) (*Socket, error) {
	fd, err := openRetryBusy(afBluetooth, syscall.SOCK_RAW, ProtoHCI)
	if err != nil {
		return nil, dbterr.Wrap(dbterr.IoError, "open hci socket", err)
	}
	sa := &sockaddrHCI{dev: uint16(devID), channel: channel}
	if err := bindRetryBusy(fd, sa); err != nil {
		syscall.Close(fd)
		return nil, dbterr.Wrap(dbterr.IoError, "bind hci socket", err)
	}
	return &Socket{state: StateConnected, fd: fd}, nil
}

// OpenL2CAP creates a raw L2CAP socket; the kernel BLE stack performs the
// connect handshake once Connect is invoked with the peer address.
func OpenL2CAP() (*Socket, error) {
	fd, err := openRetryBusy(afBluetooth, syscall.SOCK_SEQPACKET, ProtoL2CAP)
	if err != nil {
		return nil, dbterr.Wrap(dbterr.IoError, "open l2cap socket", err)
	}
	return &Socket{state: StateDisconnected, fd: fd}, nil
}

// OpenManagement creates the management-protocol control socket
// (HCI_CHANNEL_CONTROL on the unbound virtual device index).
func OpenManagement() (*Socket, error) {
	fd, err := openRetryBusy(afBluetooth, syscall.SOCK_RAW, ProtoHCI)
	if err != nil {
		return nil, dbterr.Wrap(dbterr.IoError, "open management socket", err)
	}
	sa := &sockaddrHCI{dev: 0xFFFF, channel: HCIChannelControl}
	if err := bindRetryBusy(fd, sa); err != nil {
		syscall.Close(fd)
		return nil, dbterr.Wrap(dbterr.IoError, "bind management socket", err)
	}
	return &Socket{state: StateConnected, fd: fd}, nil
}

// State reports the current connection state.
func (s *Socket) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Socket) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Read blocks until data arrives, timeout elapses, or Close interrupts
// the wait, using poll(2) so Close's descriptor swap is observed
// promptly rather than blocking inside a plain read(2).
func (s *Socket) Read(b []byte, timeout time.Duration) (int, error) {
	if s.State() == StateError {
		return 0, dbterr.New(dbterr.InvalidState, "socket is in error state")
	}
	deadline := -1
	if timeout > 0 {
		deadline = int(timeout.Milliseconds())
	}
	for {
		ready, err := pollReadable(s.fd, deadline)
		if err == syscall.EINTR {
			continue
		}
		if err != nil {
			s.setState(StateError)
			return 0, dbterr.Wrap(dbterr.IoError, "poll", err)
		}
		if !ready {
			return 0, dbterr.New(dbterr.Timeout, "read timed out")
		}
		n, err := syscall.Read(s.fd, b)
		if err == syscall.EINTR {
			continue
		}
		if err != nil {
			s.setState(StateError)
			return 0, dbterr.Wrap(dbterr.IoError, "read", err)
		}
		if n == 0 {
			s.setState(StateDisconnected)
			return 0, dbterr.New(dbterr.Interrupted, "socket closed")
		}
		return n, nil
	}
}

// Write writes the entire buffer, retrying on EINTR.
func (s *Socket) Write(b []byte) (int, error) {
	for {
		n, err := syscall.Write(s.fd, b)
		if err == syscall.EINTR {
			continue
		}
		if err != nil {
			s.setState(StateError)
			return n, dbterr.Wrap(dbterr.IoError, "write", err)
		}
		return n, nil
	}
}

// Close is idempotent; it unblocks a Read in progress because poll(2)
// observes the closed descriptor and returns POLLNVAL/POLLHUP.
func (s *Socket) Close() error {
	s.mu.Lock()
	if s.state == StateDisconnected && s.fd == 0 {
		s.mu.Unlock()
		return nil
	}
	fd := s.fd
	s.state = StateDisconnected
	s.mu.Unlock()
	return syscall.Close(fd)
}

// FD exposes the raw descriptor for callers that need setsockopt (e.g.
// installing an HCI event filter).
func (s *Socket) FD() int { return s.fd }

type sockaddrHCI struct {
	dev     uint16
	channel uint16
}

type rawSockaddrHCI struct {
	Family  uint16
	Dev     uint16
	Channel uint16
}

func bindRetryBusy(fd int, sa *sockaddrHCI) error {
	raw := rawSockaddrHCI{Family: afBluetooth, Dev: sa.dev, Channel: sa.channel}
	var lastErr error
	for i := 0; i < 5; i++ {
		err := bindRaw(fd, &raw)
		if err == nil {
			return nil
		}
		lastErr = err
		if err != syscall.EBUSY {
			return err
		}
		time.Sleep(time.Second)
	}
	return lastErr
}
