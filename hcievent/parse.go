package hcievent

import (
	"encoding/binary"

	"github.com/XC-/direct_bt/octets"
)

func u16(b []byte, off int) uint16 { return binary.LittleEndian.Uint16(b[off:]) }
func u64(b []byte, off int) uint64 { return binary.LittleEndian.Uint64(b[off:]) }

func addr(b []byte, off int) octets.Address {
	var a octets.Address
	copy(a[:], b[off:off+6])
	return a
}

// Parse decodes the event-parameters payload of a raw HCI event packet
// (i.e. with the 2-byte event header already stripped) given its event
// code. Unrecognized codes, and recognized-but-truncated payloads,
// produce an Unknown rather than failing.
func Parse(code Code, b []byte) Event {
	switch code {
	case CodeInquiryComplete:
		if len(b) < 1 {
			return Unknown{EventCode: code, Payload: b}
		}
		return InquiryComplete{Status: b[0]}
	case CodeConnectionComplete:
		if len(b) < 11 {
			return Unknown{EventCode: code, Payload: b}
		}
		return ConnectionComplete{
			Status:            b[0],
			ConnectionHandle:  u16(b, 1),
			Address:           addr(b, 3),
			LinkType:          b[9],
			EncryptionEnabled: b[10],
		}
	case CodeDisconnectComplete:
		if len(b) < 4 {
			return Unknown{EventCode: code, Payload: b}
		}
		return DisconnectionComplete{Status: b[0], ConnectionHandle: u16(b, 1), Reason: b[3]}
	case CodeCommandComplete:
		if len(b) < 3 {
			return Unknown{EventCode: code, Payload: b}
		}
		return CommandComplete{
			NumHCICommandPackets: b[0],
			Opcode:               u16(b, 1),
			ReturnParameters:     append([]byte(nil), b[3:]...),
		}
	case CodeCommandStatus:
		if len(b) < 4 {
			return Unknown{EventCode: code, Payload: b}
		}
		return CommandStatus{Status: b[0], NumHCICommandPackets: b[1], Opcode: u16(b, 2)}
	case CodeEncryptionChange:
		if len(b) < 4 {
			return Unknown{EventCode: code, Payload: b}
		}
		return EncryptionChange{Status: b[0], ConnectionHandle: u16(b, 1), Encryption: b[3]}
	case CodeNumCompletedPkts:
		return parseNumCompletedPkts(b)
	case CodeLEMeta:
		return parseLEMeta(b)
	default:
		return Unknown{EventCode: code, Payload: append([]byte(nil), b...)}
	}
}

func parseNumCompletedPkts(b []byte) Event {
	if len(b) < 1 {
		return Unknown{EventCode: CodeNumCompletedPkts, Payload: b}
	}
	n := int(b[0])
	rest := b[1:]
	if len(rest) < n*4 {
		return Unknown{EventCode: CodeNumCompletedPkts, Payload: b}
	}
	pkts := make([]CompletedPacket, n)
	for i := 0; i < n; i++ {
		pkts[i] = CompletedPacket{
			ConnectionHandle: u16(rest, i*4) & 0x0FFF,
			NumCompleted:     u16(rest, i*4+2),
		}
	}
	return NumberOfCompletedPackets{Packets: pkts}
}

func parseLEMeta(b []byte) Event {
	if len(b) < 1 {
		return Unknown{EventCode: CodeLEMeta, Payload: b}
	}
	sub := LESubeventCode(b[0])
	body := b[1:]
	switch sub {
	case LESubConnectionComplete:
		if len(body) < 18 {
			return Unknown{EventCode: CodeLEMeta, Subevent: uint8(sub), Payload: b}
		}
		return LEConnectionComplete{
			Status:              body[0],
			ConnectionHandle:    u16(body, 1),
			Role:                body[3],
			PeerAddressType:     body[4],
			PeerAddress:         addr(body, 5),
			ConnInterval:        u16(body, 11),
			ConnLatency:         u16(body, 13),
			SupervisionTimeout:  u16(body, 15),
			MasterClockAccuracy: body[17],
		}
	case LESubEnhancedConnectionComplete:
		if len(body) < 30 {
			return Unknown{EventCode: CodeLEMeta, Subevent: uint8(sub), Payload: b}
		}
		return LEEnhancedConnectionComplete{
			Status:              body[0],
			ConnectionHandle:    u16(body, 1),
			Role:                body[3],
			PeerAddressType:     body[4],
			PeerAddress:         addr(body, 5),
			LocalResolvablePriv: addr(body, 11),
			PeerResolvablePriv:  addr(body, 17),
			ConnInterval:        u16(body, 23),
			ConnLatency:         u16(body, 25),
			SupervisionTimeout:  u16(body, 27),
			MasterClockAccuracy: body[29],
		}
	case LESubAdvertisingReport:
		return parseAdvertisingReport(body)
	case LESubConnectionUpdateComplete:
		if len(body) < 9 {
			return Unknown{EventCode: CodeLEMeta, Subevent: uint8(sub), Payload: b}
		}
		return LEConnectionUpdateComplete{
			Status:             body[0],
			ConnectionHandle:   u16(body, 1),
			ConnInterval:       u16(body, 3),
			ConnLatency:        u16(body, 5),
			SupervisionTimeout: u16(body, 7),
		}
	case LESubReadRemoteFeaturesComplete:
		if len(body) < 11 {
			return Unknown{EventCode: CodeLEMeta, Subevent: uint8(sub), Payload: b}
		}
		return LEReadRemoteFeaturesComplete{Status: body[0], ConnectionHandle: u16(body, 1), Features: u64(body, 3)}
	default:
		return Unknown{EventCode: CodeLEMeta, Subevent: uint8(sub), Payload: append([]byte(nil), body...)}
	}
}

// parseAdvertisingReport mirrors the teacher's column-major unmarshal: each
// field is packed as a run of N entries before the next field begins,
// rather than N interleaved (eventType,addressType,...) records.
func parseAdvertisingReport(body []byte) Event {
	if len(body) < 1 {
		return Unknown{EventCode: CodeLEMeta, Subevent: uint8(LESubAdvertisingReport), Payload: body}
	}
	n := int(body[0])
	b := body[1:]

	need := n /*eventType*/ + n /*addressType*/ + n*6 /*address*/ + n /*length*/
	if len(b) < need {
		return Unknown{EventCode: CodeLEMeta, Subevent: uint8(LESubAdvertisingReport), Payload: body}
	}

	eventType := make([]uint8, n)
	for i := 0; i < n; i++ {
		eventType[i] = b[i]
	}
	b = b[n:]

	addressType := make([]uint8, n)
	for i := 0; i < n; i++ {
		addressType[i] = b[i]
	}
	b = b[n:]

	addresses := make([]octets.Address, n)
	for i := 0; i < n; i++ {
		addresses[i] = addr(b, i*6)
	}
	b = b[n*6:]

	lengths := make([]uint8, n)
	for i := 0; i < n; i++ {
		lengths[i] = b[i]
	}
	b = b[n:]

	data := make([][]byte, n)
	for i := 0; i < n; i++ {
		l := int(lengths[i])
		if len(b) < l {
			return Unknown{EventCode: CodeLEMeta, Subevent: uint8(LESubAdvertisingReport), Payload: body}
		}
		data[i] = append([]byte(nil), b[:l]...)
		b = b[l:]
	}

	if len(b) < n {
		return Unknown{EventCode: CodeLEMeta, Subevent: uint8(LESubAdvertisingReport), Payload: body}
	}
	reports := make([]AdvertisingReportEntry, n)
	for i := 0; i < n; i++ {
		reports[i] = AdvertisingReportEntry{
			EventType:   eventType[i],
			AddressType: addressType[i],
			Address:     addresses[i],
			Data:        data[i],
			RSSI:        int8(b[i]),
		}
	}
	return LEAdvertisingReport{Reports: reports}
}
