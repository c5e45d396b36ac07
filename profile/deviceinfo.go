package profile

import (
	"encoding/binary"

	"github.com/XC-/direct_bt/dbterr"
)

// SystemID is the Device Information service's System ID characteristic
// value: a 5-byte manufacturer identifier and 3-byte organizationally
// unique identifier.
type SystemID struct {
	ManufacturerIdentifier [5]byte
	OrganizationallyUniqueID [3]byte
}

// ParseSystemID decodes an 8-byte System ID value.
func ParseSystemID(b []byte) (*SystemID, error) {
	if len(b) != 8 {
		return nil, dbterr.New(dbterr.ProtocolError, "system id value must be 8 bytes")
	}
	var s SystemID
	copy(s.ManufacturerIdentifier[:], b[0:5])
	copy(s.OrganizationallyUniqueID[:], b[5:8])
	return &s, nil
}

// PnPID is the Device Information service's PnP ID characteristic value.
type PnPID struct {
	VendorIDSource uint8
	VendorID       uint16
	ProductID      uint16
	ProductVersion uint16
}

// ParsePnPID decodes a 7-byte PnP ID value.
func ParsePnPID(b []byte) (*PnPID, error) {
	if len(b) != 7 {
		return nil, dbterr.New(dbterr.ProtocolError, "pnp id value must be 7 bytes")
	}
	return &PnPID{
		VendorIDSource: b[0],
		VendorID:       binary.LittleEndian.Uint16(b[1:3]),
		ProductID:      binary.LittleEndian.Uint16(b[3:5]),
		ProductVersion: binary.LittleEndian.Uint16(b[5:7]),
	}, nil
}

// DeviceInformation aggregates the Device Information service's
// characteristics as read from a connected peer; every field is optional
// since a peer may implement only a subset.
type DeviceInformation struct {
	SystemID                        *SystemID
	ModelNumber                     string
	SerialNumber                    string
	FirmwareRevision                string
	HardwareRevision                string
	SoftwareRevision                string
	ManufacturerName                string
	RegulatoryCertificationDataList []byte
	PnPID                           *PnPID
}
