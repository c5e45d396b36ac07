package mgmt

import (
	"encoding/binary"

	"github.com/XC-/direct_bt/octets"
)

// EventCode is the two-byte management-event code.
type EventCode uint16

const (
	EvtCommandComplete     EventCode = 0x0001
	EvtCommandStatus       EventCode = 0x0002
	EvtControllerError     EventCode = 0x0003
	EvtNewSettings         EventCode = 0x0006
	EvtLocalNameChanged    EventCode = 0x0008
	EvtNewLongTermKey      EventCode = 0x000A
	EvtDeviceConnected     EventCode = 0x000B
	EvtDeviceDisconnected  EventCode = 0x000C
	EvtUserConfirmRequest  EventCode = 0x000F
	EvtDeviceFound         EventCode = 0x0012
	EvtDiscovering         EventCode = 0x0013
)

// Event is implemented by every concrete management-event variant plus
// Unknown.
type Event interface {
	Code() EventCode
	Index() uint16
}

type base struct {
	index uint16
}

func (b base) Index() uint16 { return b.index }

// CommandCompleteEvt correlates to exactly one in-flight command via
// (Opcode, Index).
type CommandCompleteEvt struct {
	base
	Opcode Opcode
	Status uint8
	Params []byte
}

func (CommandCompleteEvt) Code() EventCode { return EvtCommandComplete }

// CommandStatusEvt acknowledges a pending command before its eventual
// CommandCompleteEvt.
type CommandStatusEvt struct {
	base
	Opcode Opcode
	Status uint8
}

func (CommandStatusEvt) Code() EventCode { return EvtCommandStatus }

// DiscoveringChangedEvt reports whether the controller is actively
// scanning.
type DiscoveringChangedEvt struct {
	base
	Enabled  bool
	ScanType uint8
}

func (DiscoveringChangedEvt) Code() EventCode { return EvtDiscovering }

// NewSettingsEvt carries the controller's post-change current-settings
// bitset.
type NewSettingsEvt struct {
	base
	Settings uint32
}

func (NewSettingsEvt) Code() EventCode { return EvtNewSettings }

// LocalNameChangedEvt reports the controller's (possibly truncated)
// advertised name.
type LocalNameChangedEvt struct {
	base
	Name      string
	ShortName string
}

func (LocalNameChangedEvt) Code() EventCode { return EvtLocalNameChanged }

// DeviceConnectedEvt reports a newly established connection, carrying the
// raw EIR/AD bytes observed at connect time (used to synthesize a Device
// when the peer was not previously discovered, spec §4.7).
type DeviceConnectedEvt struct {
	base
	Address     octets.Address
	AddressType octets.AddressType
	Data        []byte
}

func (DeviceConnectedEvt) Code() EventCode { return EvtDeviceConnected }

// DeviceDisconnectedEvt reports a connection teardown.
type DeviceDisconnectedEvt struct {
	base
	Address     octets.Address
	AddressType octets.AddressType
	Reason      uint8
}

func (DeviceDisconnectedEvt) Code() EventCode { return EvtDeviceDisconnected }

// DeviceFoundEvt reports one advertising observation during discovery.
type DeviceFoundEvt struct {
	base
	Address     octets.Address
	AddressType octets.AddressType
	RSSI        int8
	Data        []byte
}

func (DeviceFoundEvt) Code() EventCode { return EvtDeviceFound }

// NewLongTermKeyEvt and UserConfirmRequestEvt are surfaced without
// decoding their key-material payload; security-manager/bonding
// semantics beyond relaying the controller's request are a non-goal.
type NewLongTermKeyEvt struct {
	base
	Raw []byte
}

func (NewLongTermKeyEvt) Code() EventCode { return EvtNewLongTermKey }

type UserConfirmRequestEvt struct {
	base
	Raw []byte
}

func (UserConfirmRequestEvt) Code() EventCode { return EvtUserConfirmRequest }

// Unknown preserves the payload of an event code this taxonomy does not
// recognize.
type Unknown struct {
	base
	EventCode EventCode
	Payload   []byte
}

func (u Unknown) Code() EventCode { return u.EventCode }

func u16(b []byte, off int) uint16 { return binary.LittleEndian.Uint16(b[off:]) }
func u32(b []byte, off int) uint32 { return binary.LittleEndian.Uint32(b[off:]) }

func addr(b []byte, off int) octets.Address {
	var a octets.Address
	copy(a[:], b[off:off+6])
	return a
}

func addrType(v uint8) octets.AddressType {
	if v == 0 {
		return octets.AddressPublic
	}
	return octets.AddressRandom
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// ParseEvent decodes the event-parameters payload of a framed management
// packet given its event code and controller index.
func ParseEvent(code EventCode, index uint16, b []byte) Event {
	bs := base{index: index}
	switch code {
	case EvtCommandComplete:
		if len(b) < 3 {
			return Unknown{base: bs, EventCode: code, Payload: b}
		}
		return CommandCompleteEvt{base: bs, Opcode: Opcode(u16(b, 0)), Status: b[2], Params: append([]byte(nil), b[3:]...)}
	case EvtCommandStatus:
		if len(b) < 3 {
			return Unknown{base: bs, EventCode: code, Payload: b}
		}
		return CommandStatusEvt{base: bs, Opcode: Opcode(u16(b, 0)), Status: b[2]}
	case EvtDiscovering:
		if len(b) < 2 {
			return Unknown{base: bs, EventCode: code, Payload: b}
		}
		return DiscoveringChangedEvt{base: bs, ScanType: b[0], Enabled: b[1] != 0}
	case EvtNewSettings:
		if len(b) < 4 {
			return Unknown{base: bs, EventCode: code, Payload: b}
		}
		return NewSettingsEvt{base: bs, Settings: u32(b, 0)}
	case EvtLocalNameChanged:
		if len(b) < 249+11 {
			return Unknown{base: bs, EventCode: code, Payload: b}
		}
		return LocalNameChangedEvt{base: bs, Name: cString(b[0:249]), ShortName: cString(b[249:260])}
	case EvtDeviceConnected:
		if len(b) < 13 {
			return Unknown{base: bs, EventCode: code, Payload: b}
		}
		dlen := int(u16(b, 11))
		if len(b) < 13+dlen {
			return Unknown{base: bs, EventCode: code, Payload: b}
		}
		return DeviceConnectedEvt{base: bs, Address: addr(b, 0), AddressType: addrType(b[6]), Data: append([]byte(nil), b[13:13+dlen]...)}
	case EvtDeviceDisconnected:
		if len(b) < 8 {
			return Unknown{base: bs, EventCode: code, Payload: b}
		}
		return DeviceDisconnectedEvt{base: bs, Address: addr(b, 0), AddressType: addrType(b[6]), Reason: b[7]}
	case EvtDeviceFound:
		// Address(6) AddressType(1) RSSI(1) Flags(4) EIRDataLen(2) EIRData
		if len(b) < 14 {
			return Unknown{base: bs, EventCode: code, Payload: b}
		}
		rssi := int8(b[7])
		dlen := int(u16(b, 12))
		if len(b) < 14+dlen {
			return Unknown{base: bs, EventCode: code, Payload: b}
		}
		return DeviceFoundEvt{base: bs, Address: addr(b, 0), AddressType: addrType(b[6]), RSSI: rssi, Data: append([]byte(nil), b[14:14+dlen]...)}
	case EvtNewLongTermKey:
		return NewLongTermKeyEvt{base: bs, Raw: append([]byte(nil), b...)}
	case EvtUserConfirmRequest:
		return UserConfirmRequestEvt{base: bs, Raw: append([]byte(nil), b...)}
	default:
		return Unknown{base: bs, EventCode: code, Payload: append([]byte(nil), b...)}
	}
}
