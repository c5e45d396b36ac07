// Package hcievent parses raw HCI event packets (the controller-to-host
// direction) into a tagged set of typed variants, grounded on the
// teacher's event-code dispatch table in linux/event.go, generalized
// from its peripheral-role subset to the client-role subset spec.md
// §4.6 names.
package hcievent

import (
	"github.com/XC-/direct_bt/dbterr"
	"github.com/XC-/direct_bt/octets"
)

// Code is the one-byte HCI event code.
type Code uint8

const (
	CodeInquiryComplete     Code = 0x01
	CodeConnectionComplete  Code = 0x03
	CodeDisconnectComplete  Code = 0x05
	CodeCommandComplete     Code = 0x0E
	CodeCommandStatus       Code = 0x0F
	CodeNumCompletedPkts    Code = 0x13
	CodeEncryptionChange    Code = 0x08
	CodeLEMeta              Code = 0x3E
)

// LESubeventCode is the one-byte LE Meta subevent code.
type LESubeventCode uint8

const (
	LESubConnectionComplete         LESubeventCode = 0x01
	LESubAdvertisingReport          LESubeventCode = 0x02
	LESubConnectionUpdateComplete   LESubeventCode = 0x03
	LESubReadRemoteFeaturesComplete LESubeventCode = 0x04
	LESubLTKRequest                 LESubeventCode = 0x05
	LESubEnhancedConnectionComplete LESubeventCode = 0x0A
)

// Event is implemented by every concrete HCI event variant plus Unknown.
type Event interface {
	Code() Code
}

// InquiryComplete signals the end of a classic inquiry scan.
type InquiryComplete struct{ Status uint8 }

func (InquiryComplete) Code() Code { return CodeInquiryComplete }

// ConnectionComplete reports the outcome of a classic (BR/EDR) connect
// attempt.
type ConnectionComplete struct {
	Status            uint8
	ConnectionHandle  uint16
	Address           octets.Address
	LinkType          uint8
	EncryptionEnabled uint8
}

func (ConnectionComplete) Code() Code { return CodeConnectionComplete }

// DisconnectionComplete reports that a connection handle has torn down.
type DisconnectionComplete struct {
	Status           uint8
	ConnectionHandle uint16
	Reason           uint8
}

func (DisconnectionComplete) Code() Code { return CodeDisconnectComplete }

// CommandComplete correlates to exactly one previously issued command via
// Opcode and carries its return parameters verbatim.
type CommandComplete struct {
	NumHCICommandPackets uint8
	Opcode               uint16
	ReturnParameters     []byte
}

func (CommandComplete) Code() Code { return CodeCommandComplete }

// CommandStatus acknowledges a pending command before its eventual
// CommandComplete (or terminal error) arrives.
type CommandStatus struct {
	Status               uint8
	NumHCICommandPackets uint8
	Opcode               uint16
}

func (CommandStatus) Code() Code { return CodeCommandStatus }

// EncryptionChange reports a link's encryption state transition.
type EncryptionChange struct {
	Status           uint8
	ConnectionHandle uint16
	Encryption       uint8
}

func (EncryptionChange) Code() Code { return CodeEncryptionChange }

// CompletedPacket is one (handle, count) pair of a NumberOfCompletedPackets
// event.
type CompletedPacket struct {
	ConnectionHandle uint16
	NumCompleted     uint16
}

// NumberOfCompletedPackets tells the host how many ACL buffers it may
// reclaim per connection handle.
type NumberOfCompletedPackets struct {
	Packets []CompletedPacket
}

func (NumberOfCompletedPackets) Code() Code { return CodeNumCompletedPkts }

// LEConnectionComplete reports the outcome of an LE create-connection
// attempt.
type LEConnectionComplete struct {
	Status              uint8
	ConnectionHandle    uint16
	Role                uint8
	PeerAddressType     uint8
	PeerAddress         octets.Address
	ConnInterval        uint16
	ConnLatency         uint16
	SupervisionTimeout  uint16
	MasterClockAccuracy uint8
}

func (LEConnectionComplete) Code() Code { return CodeLEMeta }

// LEEnhancedConnectionComplete is the LE 4.2+ variant of LEConnectionComplete,
// additionally carrying resolvable-private-address pairing.
type LEEnhancedConnectionComplete struct {
	Status              uint8
	ConnectionHandle    uint16
	Role                uint8
	PeerAddressType     uint8
	PeerAddress         octets.Address
	LocalResolvablePriv octets.Address
	PeerResolvablePriv  octets.Address
	ConnInterval        uint16
	ConnLatency         uint16
	SupervisionTimeout  uint16
	MasterClockAccuracy uint8
}

func (LEEnhancedConnectionComplete) Code() Code { return CodeLEMeta }

// AdvertisingReportEntry is one report within a (possibly batched)
// LEAdvertisingReport event.
type AdvertisingReportEntry struct {
	EventType   uint8
	AddressType uint8
	Address     octets.Address
	Data        []byte
	RSSI        int8
}

// LEAdvertisingReport carries one or more over-the-air advertising or
// scan-response payloads observed during a scan window.
type LEAdvertisingReport struct {
	Reports []AdvertisingReportEntry
}

func (LEAdvertisingReport) Code() Code { return CodeLEMeta }

// LEConnectionUpdateComplete reports a renegotiated connection interval.
type LEConnectionUpdateComplete struct {
	Status             uint8
	ConnectionHandle   uint16
	ConnInterval       uint16
	ConnLatency        uint16
	SupervisionTimeout uint16
}

func (LEConnectionUpdateComplete) Code() Code { return CodeLEMeta }

// LEReadRemoteFeaturesComplete reports the peer's supported LE feature
// bitmap.
type LEReadRemoteFeaturesComplete struct {
	Status           uint8
	ConnectionHandle uint16
	Features         uint64
}

func (LEReadRemoteFeaturesComplete) Code() Code { return CodeLEMeta }

// Unknown preserves an event (or LE subevent) this taxonomy does not
// recognize, for forward compatibility.
type Unknown struct {
	EventCode Code
	Subevent  uint8 // 0 when not applicable
	Payload   []byte
}

func (u Unknown) Code() Code { return u.EventCode }

func shortEvent(code Code) error {
	e := dbterr.Newf(dbterr.ProtocolError, "truncated hci event code 0x%02x", code)
	e.Opcode = int(code)
	return e
}
