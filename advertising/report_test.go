package advertising

import (
	"testing"

	"github.com/XC-/direct_bt/octets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNameAndFlags(t *testing.T) {
	var payload []byte
	payload = append(payload, 0x02, typeFlags, 0x06)
	payload = append(payload, 0x05, typeCompleteName, 'H', 'e', 'l', 'l')

	addr := octets.Address{1, 2, 3, 4, 5, 6}
	r, err := Parse(SourceAD, addr, octets.AddressRandom, 0x00, -40, payload)
	require.NoError(t, err)
	assert.True(t, r.Fields.Has(FieldFlags))
	assert.Equal(t, uint8(0x06), r.Flags)
	assert.True(t, r.Fields.Has(FieldName))
	assert.Equal(t, "Hell", r.Name)
	assert.False(t, r.Fields.Has(FieldManufacturerData))
	assert.True(t, r.Fields.Has(FieldRSSI))
	assert.Equal(t, int8(-40), r.RSSI)
}

func TestParseServiceUUID16List(t *testing.T) {
	var payload []byte
	payload = append(payload, 0x05, typeAllUUID16, 0x00, 0x18, 0x0F, 0x18)
	r, err := Parse(SourceEIR, octets.Address{}, octets.AddressPublic, 0x04, 0, payload)
	require.NoError(t, err)
	require.True(t, r.Fields.Has(FieldServices))
	require.Len(t, r.Services, 2)
	assert.True(t, r.Services[0].Equal(octets.NewUUID16(0x1800)))
	assert.True(t, r.Services[1].Equal(octets.NewUUID16(0x180F)))
}

func TestParseManufacturerData(t *testing.T) {
	var payload []byte
	payload = append(payload, 0x05, typeManufacturer, 0x4C, 0x00, 0x02, 0x15)
	r, err := Parse(SourceAD, octets.Address{}, octets.AddressRandom, 0, 0, payload)
	require.NoError(t, err)
	require.True(t, r.Fields.Has(FieldManufacturerData))
	assert.Equal(t, uint16(0x004C), r.ManufacturerData.CompanyID)
	assert.Equal(t, []byte{0x02, 0x15}, r.ManufacturerData.Data)
}

func TestParseTxPower(t *testing.T) {
	payload := []byte{0x02, typeTxPower, 0xEC} // -20
	r, err := Parse(SourceAD, octets.Address{}, octets.AddressPublic, 0, 0, payload)
	require.NoError(t, err)
	require.True(t, r.Fields.Has(FieldTxPower))
	assert.Equal(t, int8(-20), r.TxPowerLevel)
}

func TestParseTruncatedRecordStopsCleanly(t *testing.T) {
	payload := []byte{0x10, typeCompleteName, 'a', 'b'} // declares len 16 but only 2 bytes follow
	r, err := Parse(SourceAD, octets.Address{}, octets.AddressPublic, 0, 0, payload)
	require.NoError(t, err)
	assert.False(t, r.Fields.Has(FieldName))
}

func TestParseEmptyPayloadYieldsBaseFieldsOnly(t *testing.T) {
	r, err := Parse(SourceAD, octets.Address{9, 9, 9, 9, 9, 9}, octets.AddressRandom, 0x02, -70, nil)
	require.NoError(t, err)
	assert.True(t, r.Fields.Has(FieldEventType))
	assert.True(t, r.Fields.Has(FieldRSSI))
	assert.False(t, r.Fields.Has(FieldName))
	assert.False(t, r.Fields.Has(FieldServices))
	assert.Equal(t, octets.Address{9, 9, 9, 9, 9, 9}, r.Address)
}

func TestSourceString(t *testing.T) {
	assert.Equal(t, "AD", SourceAD.String())
	assert.Equal(t, "EIR", SourceEIR.String())
}
