package profile

import (
	"encoding/binary"

	"github.com/XC-/direct_bt/dbterr"
)

// ParseBatteryLevel decodes the Battery Service's Battery Level
// characteristic value: a single percentage byte, 0-100.
func ParseBatteryLevel(b []byte) (uint8, error) {
	if len(b) != 1 {
		return 0, dbterr.New(dbterr.ProtocolError, "battery level value must be 1 byte")
	}
	if b[0] > 100 {
		return 0, dbterr.Newf(dbterr.ProtocolError, "battery level %d out of range", b[0])
	}
	return b[0], nil
}

const (
	hrFlagValueFormatUint16 = 1 << 0
	hrFlagSensorContact     = 1 << 1
	hrFlagSensorContactSupported = 1 << 2
	hrFlagEnergyExpended    = 1 << 3
	hrFlagRRInterval        = 1 << 4
)

// HeartRateMeasurement is the Heart Rate service's Heart Rate Measurement
// characteristic value.
type HeartRateMeasurement struct {
	BeatsPerMinute       uint16
	SensorContactDetected bool
	SensorContactSupported bool
	EnergyExpended       uint16
	HasEnergyExpended    bool
	RRIntervals          []uint16 // units of 1/1024 second
}

// ParseHeartRateMeasurement decodes a Heart Rate Measurement value.
func ParseHeartRateMeasurement(b []byte) (*HeartRateMeasurement, error) {
	if len(b) < 2 {
		return nil, dbterr.New(dbterr.ProtocolError, "heart rate measurement value too short")
	}
	flags := b[0]
	m := &HeartRateMeasurement{}
	off := 1
	if flags&hrFlagValueFormatUint16 != 0 {
		if len(b) < off+2 {
			return nil, dbterr.New(dbterr.ProtocolError, "truncated heart rate measurement value")
		}
		m.BeatsPerMinute = binary.LittleEndian.Uint16(b[off : off+2])
		off += 2
	} else {
		m.BeatsPerMinute = uint16(b[off])
		off++
	}
	m.SensorContactSupported = flags&hrFlagSensorContactSupported != 0
	m.SensorContactDetected = flags&hrFlagSensorContact != 0
	if flags&hrFlagEnergyExpended != 0 {
		if len(b) < off+2 {
			return nil, dbterr.New(dbterr.ProtocolError, "truncated heart rate measurement energy expended")
		}
		m.EnergyExpended = binary.LittleEndian.Uint16(b[off : off+2])
		m.HasEnergyExpended = true
		off += 2
	}
	if flags&hrFlagRRInterval != 0 {
		for off+2 <= len(b) {
			m.RRIntervals = append(m.RRIntervals, binary.LittleEndian.Uint16(b[off:off+2]))
			off += 2
		}
	}
	return m, nil
}
