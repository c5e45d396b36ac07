package octets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDStrictEquality(t *testing.T) {
	u16 := NewUUID16(0x1800)
	u128 := u16.Promote(BaseUUID)
	assert.False(t, u16.Equal(u128), "16-bit and its 128-bit expansion must not be equal")
	assert.True(t, u16.Equal(NewUUID16(0x1800)))
}

func TestMergeUUID16RoundTrip(t *testing.T) {
	for _, idx := range []int{0, 5, 12, 14} {
		merged, err := MergeUUID16(BaseUUID, 0xDCBA, idx)
		require.NoError(t, err)
		p := NewFromBytes(merged[:])
		v, err := p.GetU16(idx)
		require.NoError(t, err)
		assert.Equal(t, uint16(0xDCBA), v)
	}
}

func TestMergeUUID16OutOfRange(t *testing.T) {
	_, err := MergeUUID16(BaseUUID, 0x1800, 15)
	require.Error(t, err)
	_, err = MergeUUID16(BaseUUID, 0x1800, -1)
	require.Error(t, err)
}

func TestMergeUUID32RoundTrip(t *testing.T) {
	merged, err := MergeUUID32(BaseUUID, 0x87654321, 12)
	require.NoError(t, err)
	p := NewFromBytes(merged[:])
	v, err := p.GetU32(12)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x87654321), v)

	_, err = MergeUUID32(BaseUUID, 0x87654321, 13)
	require.Error(t, err)
}

func TestPromoteExampleFromSpec(t *testing.T) {
	// base_uuid: 00000000-0000-1000-8000-00805F9B34FB, uuid16: DCBA at index 12
	// -> 0000DCBA-0000-1000-8000-00805F9B34FB
	u := NewUUID16(0xDCBA).Promote(BaseUUID)
	assert.Equal(t, "0000dcba-0000-1000-8000-00805f9b34fb", u.String())
}

func TestPutGetUUID(t *testing.T) {
	p := New(16)
	require.NoError(t, p.Resize(16))
	require.NoError(t, p.PutUUID(0, NewUUID16(0x180A)))
	got, err := p.GetUUID(0, UUID16)
	require.NoError(t, err)
	assert.True(t, got.Equal(NewUUID16(0x180A)))
}

func TestUUID128ParseRoundTrip(t *testing.T) {
	u, err := ParseUUID128("0000dcba-0000-1000-8000-00805f9b34fb")
	require.NoError(t, err)
	assert.Equal(t, UUID128, u.Size())
	assert.Equal(t, "0000dcba-0000-1000-8000-00805f9b34fb", u.String())
}
