// Package advertising parses EIR/AD TLV payloads (spec §4, "EInfoReport")
// carried in classic inquiry responses and LE advertising/scan-response
// packets, grounded on the teacher's advertisement.go Unmarshall.
package advertising

import (
	"time"

	"github.com/XC-/direct_bt/octets"
)

// Source distinguishes which wire encoding an EInfoReport was built from.
// AD and EIR share the same TLV grammar but arrive over different HCI
// events.
type Source int

const (
	SourceAD Source = iota
	SourceEIR
)

func (s Source) String() string {
	if s == SourceEIR {
		return "EIR"
	}
	return "AD"
}

// Field identifies one optional EInfoReport member; Set tracks which of
// these a given report actually populated.
type Field uint16

const (
	FieldName Field = 1 << iota
	FieldRSSI
	FieldTxPower
	FieldManufacturerData
	FieldServices
	FieldEventType
	FieldFlags
)

// Set is a bitset of populated Field values. Callers must consult it
// before trusting the corresponding EInfoReport member.
type Set uint16

func (s Set) Has(f Field) bool { return s&Set(f) != 0 }
func (s *Set) set(f Field)     { *s |= Set(f) }

// ManufacturerData is a company-ID-tagged manufacturer-specific payload.
type ManufacturerData struct {
	CompanyID uint16
	Data      []byte
}

// EInfoReport is one parsed advertising or classic-inquiry observation of
// a remote device, immutable after construction and safe to share by
// reference. Timestamp is left to the caller to stamp on receipt (e.g.
// the adapter's event pump), not Parse, so report construction stays
// deterministic and testable.
type EInfoReport struct {
	Source      Source
	Timestamp   time.Time
	Address     octets.Address
	AddressType octets.AddressType
	EventType   uint8
	Fields      Set

	Name             string
	RSSI             int8
	TxPowerLevel     int8
	ManufacturerData ManufacturerData
	Services         []octets.UUID
	Flags            uint8
}

const maxEIRPacketLength = 31

// AD record field types, a subset of the Bluetooth SIG assigned numbers
// relevant to the members EInfoReport tracks.
const (
	typeFlags        = 0x01
	typeSomeUUID16   = 0x02
	typeAllUUID16    = 0x03
	typeSomeUUID32   = 0x04
	typeAllUUID32    = 0x05
	typeSomeUUID128  = 0x06
	typeAllUUID128   = 0x07
	typeShortName    = 0x08
	typeCompleteName = 0x09
	typeTxPower      = 0x0A
	typeManufacturer = 0xFF
)

// Parse scans a TLV-encoded AD/EIR payload (as carried by an LE
// advertising report or a classic extended inquiry response) into an
// EInfoReport. addr/addrType/eventType/rssi come from the enclosing HCI
// event, not the TLV payload itself.
func Parse(src Source, addr octets.Address, addrType octets.AddressType, eventType uint8, rssi int8, payload []byte) (*EInfoReport, error) {
	r := &EInfoReport{
		Source:      src,
		Address:     addr,
		AddressType: addrType,
		EventType:   eventType,
		RSSI:        rssi,
	}
	r.Fields.set(FieldEventType)
	r.Fields.set(FieldRSSI)

	b := payload
	for len(b) > 0 {
		l := b[0]
		if l == 0 {
			break
		}
		if len(b) < int(l)+1 {
			break // truncated trailing record; keep what parsed so far
		}
		t := b[1]
		d := b[2 : 1+l]
		switch t {
		case typeFlags:
			if len(d) >= 1 {
				r.Flags = d[0]
				r.Fields.set(FieldFlags)
			}
		case typeSomeUUID16, typeAllUUID16:
			r.Services = append(r.Services, uuidList(d, 2)...)
			r.Fields.set(FieldServices)
		case typeSomeUUID32, typeAllUUID32:
			r.Services = append(r.Services, uuidList(d, 4)...)
			r.Fields.set(FieldServices)
		case typeSomeUUID128, typeAllUUID128:
			r.Services = append(r.Services, uuidList(d, 16)...)
			r.Fields.set(FieldServices)
		case typeShortName, typeCompleteName:
			r.Name = string(d)
			r.Fields.set(FieldName)
		case typeTxPower:
			if len(d) >= 1 {
				r.TxPowerLevel = int8(d[0])
				r.Fields.set(FieldTxPower)
			}
		case typeManufacturer:
			if len(d) >= 2 {
				r.ManufacturerData = ManufacturerData{
					CompanyID: uint16(d[0]) | uint16(d[1])<<8,
					Data:      append([]byte(nil), d[2:]...),
				}
				r.Fields.set(FieldManufacturerData)
			}
		}
		b = b[1+l:]
	}
	return r, nil
}

func uuidList(d []byte, width int) []octets.UUID {
	var out []octets.UUID
	for len(d) >= width {
		switch width {
		case 2:
			out = append(out, octets.NewUUID16(uint16(d[0])|uint16(d[1])<<8))
		case 4:
			out = append(out, octets.NewUUID32(uint32(d[0])|uint32(d[1])<<8|uint32(d[2])<<16|uint32(d[3])<<24))
		case 16:
			var raw octets.U128
			copy(raw[:], d[:16])
			out = append(out, octets.NewUUID128(raw))
		}
		d = d[width:]
	}
	return out
}
