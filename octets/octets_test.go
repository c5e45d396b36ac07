package octets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetRoundTrip(t *testing.T) {
	p := New(32)
	require.NoError(t, p.Resize(32))

	require.NoError(t, p.PutU8(0, 0xAB))
	v8, err := p.GetU8(0)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xAB), v8)

	require.NoError(t, p.PutU16(2, 0x1234))
	v16, err := p.GetU16(2)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), v16)

	require.NoError(t, p.PutU32(4, 0xDEADBEEF))
	v32, err := p.GetU32(4)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), v32)

	u128 := U128{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	require.NoError(t, p.PutU128(8, u128))
	got, err := p.GetU128(8)
	require.NoError(t, err)
	assert.Equal(t, u128, got)
}

func TestBigEndianRoundTrip(t *testing.T) {
	p := New(8)
	require.NoError(t, p.Resize(8))
	require.NoError(t, p.PutU16BE(0, 0x1234))
	v, err := p.GetU16BE(0)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), v)

	require.NoError(t, p.PutU32BE(2, 0xAABBCCDD))
	v32, err := p.GetU32BE(2)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xAABBCCDD), v32)
}

func TestOutOfBounds(t *testing.T) {
	p := New(4)
	require.NoError(t, p.Resize(4))
	_, err := p.GetU32(2) // offset+width = 6 > size 4
	require.Error(t, err)
}

func TestAppendGrowsAndBounds(t *testing.T) {
	p := New(4)
	require.NoError(t, p.Append([]byte{1, 2}))
	assert.Equal(t, 2, p.Size())
	require.NoError(t, p.Append([]byte{3, 4}))
	assert.Equal(t, 4, p.Size())
	require.Error(t, p.Append([]byte{5}))
}

func TestSliceView(t *testing.T) {
	p := NewFromBytes([]byte{0, 1, 2, 3, 4, 5, 6, 7})
	s, err := NewSlice(p, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Length())
	v, err := s.GetU8(0)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), v)
	_, err = s.GetU8(4)
	require.Error(t, err)

	_, err = NewSlice(p, 6, 4)
	require.Error(t, err)
}

func TestAddressParseAndString(t *testing.T) {
	a, err := ParseAddress("AA:BB:CC:DD:EE:FF")
	require.NoError(t, err)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", a.String())

	p := New(6)
	require.NoError(t, p.Resize(6))
	require.NoError(t, p.PutAddress(0, a))
	got, err := p.GetAddress(0)
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func TestAddressOrdering(t *testing.T) {
	lo := Address{0, 0, 0, 0, 0, 0}
	hi := Address{1, 0, 0, 0, 0, 0}
	assert.True(t, lo.Less(hi))
	assert.False(t, hi.Less(lo))
}
