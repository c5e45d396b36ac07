// Package gattclient implements the per-connection ATT/GATT client state
// machine (spec §4.9): MTU exchange, primary-service/characteristic/
// descriptor discovery, long reads, notify/indicate configuration, and
// the reader-loop/response-ring request correlation. Grounded on the
// teacher's l2cap.go (MTU default, serialized-write send mutex) and
// cross-checked against original_source/src/direct_bt/GATTHandler.cpp
// for the discovery iteration and long-read termination rules.
package gattclient

import (
	"github.com/XC-/direct_bt/octets"
)

// CharacteristicProperty is one bit of a characteristic declaration's
// properties octet.
type CharacteristicProperty uint8

const (
	PropBroadcast          CharacteristicProperty = 1 << 0
	PropRead               CharacteristicProperty = 1 << 1
	PropWriteNoResponse    CharacteristicProperty = 1 << 2
	PropWrite              CharacteristicProperty = 1 << 3
	PropNotify             CharacteristicProperty = 1 << 4
	PropIndicate           CharacteristicProperty = 1 << 5
	PropSignedWrite        CharacteristicProperty = 1 << 6
	PropExtendedProperties CharacteristicProperty = 1 << 7
)

func (p CharacteristicProperty) Has(bit CharacteristicProperty) bool { return p&bit != 0 }

// ClientCharacteristicConfigUUID is the Client Characteristic
// Configuration Descriptor's 16-bit UUID (0x2902).
var ClientCharacteristicConfigUUID = octets.NewUUID16(0x2902)

// PrimaryServiceUUID and CharacteristicDeclarationUUID are the GATT
// attribute types discovery iterates by.
var (
	PrimaryServiceUUID           = octets.NewUUID16(0x2800)
	CharacteristicDeclarationUUID = octets.NewUUID16(0x2803)
)

// Descriptor is one discovered attribute beneath a Characteristic's
// value handle, with its current value cached at discovery time.
type Descriptor struct {
	Handle uint16
	Type   octets.UUID
	Value  []byte
}

// IsClientCharacteristicConfig reports whether this descriptor is the
// CCCD, the only descriptor type the client treats specially (it caches
// the handle on the owning Characteristic for notify/indicate writes).
func (d *Descriptor) IsClientCharacteristicConfig() bool {
	return d.Type.Equal(ClientCharacteristicConfigUUID)
}

// Characteristic is one discovered GATT characteristic: a declaration
// handle, its value handle and type, and the descriptors (if any)
// between its value handle and the next characteristic or service
// boundary.
type Characteristic struct {
	DeclHandle  uint16
	ValueHandle uint16
	Properties  CharacteristicProperty
	Type        octets.UUID
	Descriptors []*Descriptor

	cccdHandle uint16 // 0 if none discovered
}

// CCCDHandle returns the cached Client Characteristic Configuration
// Descriptor handle, or 0 if the characteristic has none.
func (c *Characteristic) CCCDHandle() uint16 { return c.cccdHandle }

// Service is one discovered GATT primary service spanning
// [StartHandle, EndHandle].
type Service struct {
	StartHandle     uint16
	EndHandle       uint16
	Type            octets.UUID
	Characteristics []*Characteristic
}

// FindCharacteristic returns the first characteristic of the given type,
// or nil if the service has none.
func (s *Service) FindCharacteristic(uuid octets.UUID) *Characteristic {
	for _, c := range s.Characteristics {
		if c.Type.Equal(uuid) {
			return c
		}
	}
	return nil
}

// NotificationEvent is delivered to characteristic listeners for both
// notifications and indications; Confirmed is true only for indications
// once the confirmation PDU has been sent.
type NotificationEvent struct {
	Handle      uint16
	Value       []byte
	IsIndication bool
	Confirmed   bool
}
