package profile

import (
	"encoding/binary"

	"github.com/XC-/direct_bt/dbterr"
)

// ConnectionParameters is the Generic Access service's Peripheral
// Preferred Connection Parameters characteristic value.
type ConnectionParameters struct {
	MinInterval       uint16
	MaxInterval       uint16
	Latency           uint16
	SupervisionTimeout uint16
}

// ParseConnectionParameters decodes an 8-byte connection-parameters value.
func ParseConnectionParameters(b []byte) (*ConnectionParameters, error) {
	if len(b) != 8 {
		return nil, dbterr.New(dbterr.ProtocolError, "connection parameters value must be 8 bytes")
	}
	return &ConnectionParameters{
		MinInterval:        binary.LittleEndian.Uint16(b[0:2]),
		MaxInterval:        binary.LittleEndian.Uint16(b[2:4]),
		Latency:            binary.LittleEndian.Uint16(b[4:6]),
		SupervisionTimeout: binary.LittleEndian.Uint16(b[6:8]),
	}, nil
}

// GenericAccess aggregates the Generic Access service's characteristics.
type GenericAccess struct {
	DeviceName               string
	Appearance               uint16
	PreferredConnectionParams *ConnectionParameters
}

// ParseAppearance decodes the 2-byte Appearance value.
func ParseAppearance(b []byte) (uint16, error) {
	if len(b) != 2 {
		return 0, dbterr.New(dbterr.ProtocolError, "appearance value must be 2 bytes")
	}
	return binary.LittleEndian.Uint16(b), nil
}
