package octets

import (
	"fmt"

	"github.com/XC-/direct_bt/dbterr"
)

// Address is a fixed 6-byte Bluetooth device identifier (EUI48), immutable
// once set. Equality and ordering are by byte value.
type Address [6]byte

// AddressType distinguishes public vs. random LE addresses.
type AddressType uint8

const (
	AddressPublic AddressType = iota
	AddressRandom
)

// ParseAddress parses the usual colon-separated hex form, e.g.
// "AA:BB:CC:DD:EE:FF".
func ParseAddress(s string) (Address, error) {
	var a Address
	n, err := fmt.Sscanf(s, "%02x:%02x:%02x:%02x:%02x:%02x",
		&a[5], &a[4], &a[3], &a[2], &a[1], &a[0])
	if err != nil || n != 6 {
		return Address{}, dbterr.Newf(dbterr.InvalidArgument, "malformed address %q", s)
	}
	return a, nil
}

// String renders the address in big-endian colon-separated hex, matching
// how Bluetooth addresses are conventionally displayed.
func (a Address) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", a[5], a[4], a[3], a[2], a[1], a[0])
}

// Equal reports byte-for-byte equality.
func (a Address) Equal(o Address) bool { return a == o }

// Less orders addresses by byte value, most significant octet first.
func (a Address) Less(o Address) bool {
	for i := 5; i >= 0; i-- {
		if a[i] != o[i] {
			return a[i] < o[i]
		}
	}
	return false
}

// PutAddress writes a's 6 bytes at offset, wire order (byte 0 first).
func (p *POctets) PutAddress(offset int, a Address) error {
	if err := p.checkBounds(offset, 6); err != nil {
		return err
	}
	copy(p.data[offset:offset+6], a[:])
	return nil
}

// GetAddress reads 6 bytes at offset into an Address.
func (p *POctets) GetAddress(offset int) (Address, error) {
	var a Address
	if err := p.checkBounds(offset, 6); err != nil {
		return a, err
	}
	copy(a[:], p.data[offset:offset+6])
	return a, nil
}
