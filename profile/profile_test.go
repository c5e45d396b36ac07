package profile

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XC-/direct_bt/octets"
)

func TestServiceAndCharacteristicNames(t *testing.T) {
	assert.Equal(t, "device-information", ServiceName(ServiceDeviceInformation))
	assert.Equal(t, "", ServiceName(octets.NewUUID16(0x9999)))
	assert.Equal(t, "battery-level", CharacteristicName(CharBatteryLevel))
}

func TestFloat16ReservedValues(t *testing.T) {
	assert.True(t, math.IsInf(float16(0x07FE), 1))
	assert.True(t, math.IsNaN(float16(0x07FF)))
	assert.True(t, math.IsInf(float16(0x0802), -1))
}

func TestFloat16OrdinaryValue(t *testing.T) {
	// mantissa=250, exponent=-1 -> 25.0
	raw := uint16(0xF000 | 250) // exponent nibble 0xF = -1 after unbias
	got := float16(raw)
	assert.InDelta(t, 25.0, got, 0.001)
}

func TestParseTemperatureMeasurementCelsiusNoOptional(t *testing.T) {
	b := []byte{0x00, 0x00, 0x00, 0x00, 0x00}
	m, err := ParseTemperatureMeasurement(b)
	require.NoError(t, err)
	assert.Equal(t, TemperatureCelsius, m.Unit)
	assert.False(t, m.HasTimestamp)
	assert.False(t, m.HasMeasurementType)
}

func TestParseTemperatureMeasurementTooShort(t *testing.T) {
	_, err := ParseTemperatureMeasurement([]byte{0x00})
	require.Error(t, err)
}

func TestParseBatteryLevel(t *testing.T) {
	v, err := ParseBatteryLevel([]byte{42})
	require.NoError(t, err)
	assert.Equal(t, uint8(42), v)

	_, err = ParseBatteryLevel([]byte{101})
	require.Error(t, err)
}

func TestParseHeartRateMeasurementUint8WithRR(t *testing.T) {
	flags := byte(hrFlagRRInterval | hrFlagSensorContactSupported | hrFlagSensorContact)
	b := []byte{flags, 72, 0x00, 0x04, 0xE8, 0x03}
	m, err := ParseHeartRateMeasurement(b)
	require.NoError(t, err)
	assert.Equal(t, uint16(72), m.BeatsPerMinute)
	assert.True(t, m.SensorContactDetected)
	require.Len(t, m.RRIntervals, 2)
	assert.Equal(t, uint16(1024), m.RRIntervals[0])
	assert.Equal(t, uint16(1000), m.RRIntervals[1])
}

func TestParsePnPID(t *testing.T) {
	b := []byte{0x01, 0x0D, 0x00, 0x34, 0x12, 0x01, 0x00}
	id, err := ParsePnPID(b)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x000D), id.VendorID)
	assert.Equal(t, uint16(0x1234), id.ProductID)
}

func TestParseConnectionParameters(t *testing.T) {
	b := []byte{0x10, 0x00, 0x20, 0x00, 0x00, 0x00, 0x90, 0x01}
	p, err := ParseConnectionParameters(b)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0010), p.MinInterval)
	assert.Equal(t, uint16(0x0190), p.SupervisionTimeout)
}
