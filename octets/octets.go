// Package octets provides bounds-checked, typed access to the packed,
// interleaved little- and big-endian records the BLE wire formats are made
// of. POctets is an owned, growable buffer; TOctetSlice is a read-only view
// over one.
package octets

import (
	"encoding/binary"

	"github.com/XC-/direct_bt/dbterr"
)

// POctets is an owned byte buffer with a logical size bounded by capacity.
// Zero value is not usable; use New or NewFromBytes.
type POctets struct {
	data []byte // len(data) == capacity
	size int
}

// New allocates a POctets with the given capacity and zero size.
func New(capacity int) *POctets {
	return &POctets{data: make([]byte, capacity)}
}

// NewFromBytes wraps b, taking ownership; size and capacity both equal
// len(b).
func NewFromBytes(b []byte) *POctets {
	return &POctets{data: b, size: len(b)}
}

// Size returns the number of logically valid bytes.
func (p *POctets) Size() int { return p.size }

// Capacity returns the maximum size Append can grow to.
func (p *POctets) Capacity() int { return len(p.data) }

// Bytes returns the logically valid prefix of the buffer. The slice aliases
// the POctets' storage; callers must not retain it across a mutation.
func (p *POctets) Bytes() []byte { return p.data[:p.size] }

// Resize sets the logical size directly, e.g. after an in-place fill by
// an I/O read. newSize must not exceed capacity.
func (p *POctets) Resize(newSize int) error {
	if newSize < 0 || newSize > len(p.data) {
		return dbterr.Newf(dbterr.IndexOutOfBounds, "resize %d exceeds capacity %d", newSize, len(p.data))
	}
	p.size = newSize
	return nil
}

func (p *POctets) checkBounds(offset, width int) error {
	if offset < 0 || width < 0 || offset+width > p.size {
		return dbterr.Newf(dbterr.IndexOutOfBounds, "offset %d width %d size %d", offset, width, p.size)
	}
	return nil
}

// Append grows the logical size by copying b at the current end; fails if
// the result would exceed capacity.
func (p *POctets) Append(b []byte) error {
	if p.size+len(b) > len(p.data) {
		return dbterr.Newf(dbterr.IndexOutOfBounds, "append %d bytes exceeds capacity %d (size %d)", len(b), len(p.data), p.size)
	}
	copy(p.data[p.size:], b)
	p.size += len(b)
	return nil
}

// PutU8 writes a single byte at offset.
func (p *POctets) PutU8(offset int, v uint8) error {
	if err := p.checkBounds(offset, 1); err != nil {
		return err
	}
	p.data[offset] = v
	return nil
}

// GetU8 reads a single byte at offset.
func (p *POctets) GetU8(offset int) (uint8, error) {
	if err := p.checkBounds(offset, 1); err != nil {
		return 0, err
	}
	return p.data[offset], nil
}

// PutU16 writes v little-endian at offset.
func (p *POctets) PutU16(offset int, v uint16) error {
	if err := p.checkBounds(offset, 2); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(p.data[offset:], v)
	return nil
}

// GetU16 reads a little-endian uint16 at offset.
func (p *POctets) GetU16(offset int) (uint16, error) {
	if err := p.checkBounds(offset, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(p.data[offset:]), nil
}

// PutU16BE writes v big-endian at offset, for the handful of BT-defined
// big-endian transports (e.g. IEEE-11073 timestamps embed BE fields).
func (p *POctets) PutU16BE(offset int, v uint16) error {
	if err := p.checkBounds(offset, 2); err != nil {
		return err
	}
	binary.BigEndian.PutUint16(p.data[offset:], v)
	return nil
}

// GetU16BE reads a big-endian uint16 at offset.
func (p *POctets) GetU16BE(offset int) (uint16, error) {
	if err := p.checkBounds(offset, 2); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(p.data[offset:]), nil
}

// PutU32 writes v little-endian at offset.
func (p *POctets) PutU32(offset int, v uint32) error {
	if err := p.checkBounds(offset, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(p.data[offset:], v)
	return nil
}

// GetU32 reads a little-endian uint32 at offset.
func (p *POctets) GetU32(offset int) (uint32, error) {
	if err := p.checkBounds(offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(p.data[offset:]), nil
}

// PutU32BE writes v big-endian at offset.
func (p *POctets) PutU32BE(offset int, v uint32) error {
	if err := p.checkBounds(offset, 4); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(p.data[offset:], v)
	return nil
}

// GetU32BE reads a big-endian uint32 at offset.
func (p *POctets) GetU32BE(offset int) (uint32, error) {
	if err := p.checkBounds(offset, 4); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(p.data[offset:]), nil
}

// U128 is a raw 16-octet value, stored in wire byte order (not reversed).
type U128 [16]byte

// PutU128 writes v at offset, 16 raw bytes, no byte-swapping (128-bit
// values such as UUIDs already carry their own endianness convention).
func (p *POctets) PutU128(offset int, v U128) error {
	if err := p.checkBounds(offset, 16); err != nil {
		return err
	}
	copy(p.data[offset:offset+16], v[:])
	return nil
}

// GetU128 reads 16 raw bytes at offset.
func (p *POctets) GetU128(offset int) (U128, error) {
	var v U128
	if err := p.checkBounds(offset, 16); err != nil {
		return v, err
	}
	copy(v[:], p.data[offset:offset+16])
	return v, nil
}

// TOctetSlice is a read-only view (offset, length) into an existing
// POctets. It must not outlive the referenced buffer.
type TOctetSlice struct {
	ref    *POctets
	offset int
	length int
}

// NewSlice builds a view into ref covering [offset, offset+length).
func NewSlice(ref *POctets, offset, length int) (*TOctetSlice, error) {
	if offset < 0 || length < 0 || offset+length > ref.Size() {
		return nil, dbterr.Newf(dbterr.IndexOutOfBounds, "slice [%d:%d+%d] exceeds size %d", offset, offset, length, ref.Size())
	}
	return &TOctetSlice{ref: ref, offset: offset, length: length}, nil
}

// Length returns the number of bytes visible through this view.
func (s *TOctetSlice) Length() int { return s.length }

func (s *TOctetSlice) checkBounds(offset, width int) error {
	if offset < 0 || width < 0 || offset+width > s.length {
		return dbterr.Newf(dbterr.IndexOutOfBounds, "offset %d width %d length %d", offset, width, s.length)
	}
	return nil
}

// GetU8 reads a byte at offset relative to the view.
func (s *TOctetSlice) GetU8(offset int) (uint8, error) {
	if err := s.checkBounds(offset, 1); err != nil {
		return 0, err
	}
	return s.ref.data[s.offset+offset], nil
}

// GetU16 reads a little-endian uint16 at offset relative to the view.
func (s *TOctetSlice) GetU16(offset int) (uint16, error) {
	if err := s.checkBounds(offset, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(s.ref.data[s.offset+offset:]), nil
}

// GetU32 reads a little-endian uint32 at offset relative to the view.
func (s *TOctetSlice) GetU32(offset int) (uint32, error) {
	if err := s.checkBounds(offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(s.ref.data[s.offset+offset:]), nil
}

// Bytes returns a copy of the viewed range.
func (s *TOctetSlice) Bytes() []byte {
	out := make([]byte, s.length)
	copy(out, s.ref.data[s.offset:s.offset+s.length])
	return out
}
