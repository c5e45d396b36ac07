package octets

import (
	gouuid "github.com/google/uuid"

	"github.com/XC-/direct_bt/dbterr"
)

// UUIDSize names the three wire widths a Bluetooth UUID can take.
type UUIDSize int

const (
	UUID16  UUIDSize = 2
	UUID32  UUIDSize = 4
	UUID128 UUIDSize = 16
)

// BaseUUID is the Bluetooth SIG base UUID (00000000-0000-1000-8000-00805F9B34FB)
// that 16- and 32-bit UUIDs promote into, stored in little-endian wire
// order (reversed relative to the canonical dashed string) like every
// other UUID128 value in this package, so that merging a short UUID in
// at wire octet index 12 and rendering via String agree with each other.
var BaseUUID = U128{
	0xFB, 0x34, 0x9B, 0x5F, 0x80, 0x00, 0x00, 0x80,
	0x00, 0x10, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// UUID is a tagged union over the three Bluetooth UUID widths. Equality is
// strict per-variant: a 16-bit UUID and its expanded 128-bit form are never
// equal, even though they denote the same abstract identifier once merged.
type UUID struct {
	size UUIDSize
	v16  uint16
	v32  uint32
	v128 U128
}

// NewUUID16 constructs a 16-bit UUID.
func NewUUID16(v uint16) UUID { return UUID{size: UUID16, v16: v} }

// NewUUID32 constructs a 32-bit UUID.
func NewUUID32(v uint32) UUID { return UUID{size: UUID32, v32: v} }

// NewUUID128 constructs a 128-bit UUID from raw wire bytes.
func NewUUID128(v U128) UUID { return UUID{size: UUID128, v128: v} }

// Size reports which variant this UUID holds.
func (u UUID) Size() UUIDSize { return u.size }

// Value16 returns the 16-bit value; only meaningful when Size() == UUID16.
func (u UUID) Value16() uint16 { return u.v16 }

// Value32 returns the 32-bit value; only meaningful when Size() == UUID32.
func (u UUID) Value32() uint32 { return u.v32 }

// Value128 returns the raw 128-bit bytes; only meaningful when Size() == UUID128.
func (u UUID) Value128() U128 { return u.v128 }

// Equal implements the spec's strict per-variant equality: two UUIDs are
// equal only if they have the same size and the same value.
func (u UUID) Equal(o UUID) bool {
	if u.size != o.size {
		return false
	}
	switch u.size {
	case UUID16:
		return u.v16 == o.v16
	case UUID32:
		return u.v32 == o.v32
	default:
		return u.v128 == o.v128
	}
}

// Promote expands a 16- or 32-bit UUID into its 128-bit form by merging it
// into the given base UUID at little-endian octet index 12 (the Bluetooth
// SIG default position). A 128-bit UUID is returned unchanged.
func (u UUID) Promote(base U128) UUID {
	switch u.size {
	case UUID16:
		v, _ := MergeUUID16(base, u.v16, 12)
		return NewUUID128(v)
	case UUID32:
		v, _ := MergeUUID32(base, u.v32, 12)
		return NewUUID128(v)
	default:
		return u
	}
}

// String renders the 128-bit (post-promotion) canonical dashed form using
// google/uuid for formatting; 16/32-bit UUIDs are promoted against the
// Bluetooth base UUID first. v128 is stored in little-endian wire order,
// the reverse of the canonical string's byte order, so the bytes are
// reversed before handing them to google/uuid.
func (u UUID) String() string {
	full := u
	if u.size != UUID128 {
		full = u.Promote(BaseUUID)
	}
	var be [16]byte
	for i, b := range full.v128 {
		be[15-i] = b
	}
	g, err := gouuid.FromBytes(be[:])
	if err != nil {
		// FromBytes only fails on wrong length, which can't happen here.
		return ""
	}
	return g.String()
}

// ParseUUID128 parses a canonical dashed 128-bit UUID string into its
// little-endian wire-order form (the reverse of the string's byte order),
// matching every other UUID128 value in this package.
func ParseUUID128(s string) (UUID, error) {
	g, err := gouuid.Parse(s)
	if err != nil {
		return UUID{}, dbterr.Wrap(dbterr.InvalidArgument, "parse uuid128", err)
	}
	var v U128
	for i, b := range g {
		v[15-i] = b
	}
	return NewUUID128(v), nil
}

// MergeUUID16 copies base and writes uuid16 little-endian into bytes
// [octetIndex, octetIndex+1]. octetIndex must be in [0, 14].
func MergeUUID16(base U128, uuid16 uint16, octetIndex int) (U128, error) {
	if octetIndex < 0 || octetIndex > 14 {
		return U128{}, dbterr.Newf(dbterr.InvalidArgument, "uuid16 octet index %d out of range [0,14]", octetIndex)
	}
	out := base
	out[octetIndex] = byte(uuid16)
	out[octetIndex+1] = byte(uuid16 >> 8)
	return out, nil
}

// MergeUUID32 copies base and writes uuid32 little-endian into bytes
// [octetIndex, octetIndex+3]. octetIndex must be in [0, 12].
func MergeUUID32(base U128, uuid32 uint32, octetIndex int) (U128, error) {
	if octetIndex < 0 || octetIndex > 12 {
		return U128{}, dbterr.Newf(dbterr.InvalidArgument, "uuid32 octet index %d out of range [0,12]", octetIndex)
	}
	out := base
	out[octetIndex] = byte(uuid32)
	out[octetIndex+1] = byte(uuid32 >> 8)
	out[octetIndex+2] = byte(uuid32 >> 16)
	out[octetIndex+3] = byte(uuid32 >> 24)
	return out, nil
}

// PutUUID writes u at offset using its native wire width.
func (p *POctets) PutUUID(offset int, u UUID) error {
	switch u.size {
	case UUID16:
		return p.PutU16(offset, u.v16)
	case UUID32:
		return p.PutU32(offset, u.v32)
	default:
		return p.PutU128(offset, u.v128)
	}
}

// GetUUID reads a UUID of the given wire width at offset.
func (p *POctets) GetUUID(offset int, size UUIDSize) (UUID, error) {
	switch size {
	case UUID16:
		v, err := p.GetU16(offset)
		return NewUUID16(v), err
	case UUID32:
		v, err := p.GetU32(offset)
		return NewUUID32(v), err
	case UUID128:
		v, err := p.GetU128(offset)
		return NewUUID128(v), err
	default:
		return UUID{}, dbterr.Newf(dbterr.InvalidArgument, "unsupported uuid size %d", size)
	}
}
