// Package dbterr defines the closed error-kind taxonomy shared by every
// layer of the stack (octets, ringbuffer, transport, mgmt, gattclient, ...).
// Callers discriminate failures by Kind via errors.Is/errors.As rather than
// string-matching messages.
package dbterr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind enumerates the failure categories from spec §7.
type Kind int

const (
	// InvalidArgument covers out-of-range octet offsets, bad UUID octet
	// indices, and malformed addresses.
	InvalidArgument Kind = iota
	// InvalidState covers an operation invoked outside the state machine
	// phase it requires (e.g. a GATT read on a disconnected channel).
	InvalidState
	// IndexOutOfBounds covers octet-accessor over/underrun.
	IndexOutOfBounds
	// IoError covers socket read/write/poll failure; carries the errno.
	IoError
	// Timeout covers an expired blocking read or ring-buffer wait.
	Timeout
	// ProtocolError covers a malformed PDU, unexpected opcode, or handle
	// violation; carries the offending opcode and bytes.
	ProtocolError
	// ControllerError covers a management command reply with a
	// non-success status; carries the status code.
	ControllerError
	// AttError covers a peer error-rsp; carries the ATT error code and
	// the originating request opcode.
	AttError
	// Interrupted covers a pending operation aborted by close/shutdown.
	Interrupted
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid-argument"
	case InvalidState:
		return "invalid-state"
	case IndexOutOfBounds:
		return "index-out-of-bounds"
	case IoError:
		return "io-error"
	case Timeout:
		return "timeout"
	case ProtocolError:
		return "protocol-error"
	case ControllerError:
		return "controller-error"
	case AttError:
		return "att-error"
	case Interrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Error is the concrete error type carried by every package in this module.
type Error struct {
	Kind   Kind
	Msg    string
	Err    error
	Code   int    // ATT error code or controller status, when applicable
	Opcode int    // offending PDU/command opcode, when applicable
	Bytes  []byte // offending PDU bytes, when applicable
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, dbterr.New(Kind, "")) to match purely on Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New constructs a bare Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf constructs a bare Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a stack trace (via pkg/errors) and a Kind.
func Wrap(kind Kind, msg string, err error) *Error {
	if err == nil {
		return New(kind, msg)
	}
	return &Error{Kind: kind, Msg: msg, Err: errors.Wrap(err, msg)}
}

// Is reports whether err (or any error it wraps) is a *Error of the given
// Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
