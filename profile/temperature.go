package profile

import (
	"encoding/binary"

	"github.com/XC-/direct_bt/dbterr"
)

// TemperatureUnit distinguishes the Temperature Measurement
// characteristic's flags-bit-0 unit selection.
type TemperatureUnit int

const (
	TemperatureCelsius TemperatureUnit = iota
	TemperatureFahrenheit
)

const (
	tempFlagFahrenheit  = 1 << 0
	tempFlagTimestamp   = 1 << 1
	tempFlagMeasurement = 1 << 2
)

// TemperatureMeasurement is the Health Thermometer service's Temperature
// Measurement characteristic value: a flags byte, an IEEE-11073 32-bit
// float, and two optional trailing fields gated by flag bits.
type TemperatureMeasurement struct {
	Unit               TemperatureUnit
	Value              float64
	HasTimestamp       bool
	Timestamp          [7]byte // year(2 LE) month day hour minute second
	HasMeasurementType bool
	MeasurementType    uint8
}

// ParseTemperatureMeasurement decodes a Temperature Measurement value.
func ParseTemperatureMeasurement(b []byte) (*TemperatureMeasurement, error) {
	if len(b) < 5 {
		return nil, dbterr.New(dbterr.ProtocolError, "temperature measurement value too short")
	}
	flags := b[0]
	m := &TemperatureMeasurement{
		Value: float32IEEE(binary.LittleEndian.Uint32(b[1:5])),
	}
	if flags&tempFlagFahrenheit != 0 {
		m.Unit = TemperatureFahrenheit
	}
	off := 5
	if flags&tempFlagTimestamp != 0 {
		if len(b) < off+7 {
			return nil, dbterr.New(dbterr.ProtocolError, "truncated temperature measurement timestamp")
		}
		copy(m.Timestamp[:], b[off:off+7])
		m.HasTimestamp = true
		off += 7
	}
	if flags&tempFlagMeasurement != 0 {
		if len(b) < off+1 {
			return nil, dbterr.New(dbterr.ProtocolError, "truncated temperature measurement type")
		}
		m.MeasurementType = b[off]
		m.HasMeasurementType = true
	}
	return m, nil
}
