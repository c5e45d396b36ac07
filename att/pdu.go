// Package att implements the Attribute Protocol PDU taxonomy: parse,
// serialize, and the error-code enumeration, grounded on the opcode table
// in the teacher's att.go and extended from its server-role subset to the
// full client-relevant set spec.md §4.6 names.
package att

import (
	"encoding/binary"

	"github.com/XC-/direct_bt/dbterr"
	"github.com/XC-/direct_bt/octets"
)

// Opcode is the one-byte ATT PDU opcode.
type Opcode uint8

const (
	OpErrorRsp            Opcode = 0x01
	OpExchangeMTUReq      Opcode = 0x02
	OpExchangeMTUResp     Opcode = 0x03
	OpFindInformationReq  Opcode = 0x04
	OpFindInformationResp Opcode = 0x05
	OpFindByTypeValueReq  Opcode = 0x06
	OpFindByTypeValueResp Opcode = 0x07
	OpReadByTypeReq       Opcode = 0x08
	OpReadByTypeResp      Opcode = 0x09
	OpReadReq             Opcode = 0x0A
	OpReadResp            Opcode = 0x0B
	OpReadBlobReq         Opcode = 0x0C
	OpReadBlobResp        Opcode = 0x0D
	OpReadMultipleReq     Opcode = 0x0E
	OpReadMultipleResp    Opcode = 0x0F
	OpReadByGroupTypeReq  Opcode = 0x10
	OpReadByGroupTypeResp Opcode = 0x11
	OpWriteReq            Opcode = 0x12
	OpWriteResp           Opcode = 0x13
	OpPrepareWriteReq     Opcode = 0x16
	OpPrepareWriteResp    Opcode = 0x17
	OpExecuteWriteReq     Opcode = 0x18
	OpExecuteWriteResp    Opcode = 0x19
	OpHandleValueNtf      Opcode = 0x1B
	OpHandleValueInd      Opcode = 0x1D
	OpHandleValueCfm      Opcode = 0x1E
	OpWriteCmd            Opcode = 0x52
	OpSignedWriteCmd      Opcode = 0xD2
)

// PDU is implemented by every concrete ATT PDU variant plus Unknown.
type PDU interface {
	Opcode() Opcode
	Marshal() []byte
}

func putU16(b []byte, off int, v uint16) { binary.LittleEndian.PutUint16(b[off:], v) }
func getU16(b []byte, off int) uint16    { return binary.LittleEndian.Uint16(b[off:]) }

// ErrorRsp carries a peer-reported failure of a previously sent request.
type ErrorRsp struct {
	ReqOpcode Opcode
	Handle    uint16
	Code      ErrorCode
}

func (p ErrorRsp) Opcode() Opcode { return OpErrorRsp }
func (p ErrorRsp) Marshal() []byte {
	b := make([]byte, 5)
	b[0] = byte(OpErrorRsp)
	b[1] = byte(p.ReqOpcode)
	putU16(b, 2, p.Handle)
	b[4] = byte(p.Code)
	return b
}

// ExchangeMTUReq/Resp negotiate the ATT MTU.
type ExchangeMTUReq struct{ MTU uint16 }

func (p ExchangeMTUReq) Opcode() Opcode { return OpExchangeMTUReq }
func (p ExchangeMTUReq) Marshal() []byte {
	b := make([]byte, 3)
	b[0] = byte(OpExchangeMTUReq)
	putU16(b, 1, p.MTU)
	return b
}

type ExchangeMTUResp struct{ MTU uint16 }

func (p ExchangeMTUResp) Opcode() Opcode { return OpExchangeMTUResp }
func (p ExchangeMTUResp) Marshal() []byte {
	b := make([]byte, 3)
	b[0] = byte(OpExchangeMTUResp)
	putU16(b, 1, p.MTU)
	return b
}

// FindInformationReq/Resp enumerate descriptor handle/type pairs.
type FindInformationReq struct{ StartHandle, EndHandle uint16 }

func (p FindInformationReq) Opcode() Opcode { return OpFindInformationReq }
func (p FindInformationReq) Marshal() []byte {
	b := make([]byte, 5)
	b[0] = byte(OpFindInformationReq)
	putU16(b, 1, p.StartHandle)
	putU16(b, 3, p.EndHandle)
	return b
}

// InfoPair is one (handle, type UUID) entry of a FindInformationResp.
type InfoPair struct {
	Handle uint16
	Type   octets.UUID
}

type FindInformationResp struct {
	Format uint8 // 0x01 = 16-bit UUIDs, 0x02 = 128-bit UUIDs
	Pairs  []InfoPair
}

func (p FindInformationResp) Opcode() Opcode { return OpFindInformationResp }
func (p FindInformationResp) Marshal() []byte {
	width := 2
	if p.Format == 0x02 {
		width = 16
	}
	b := make([]byte, 2+len(p.Pairs)*(2+width))
	b[0] = byte(OpFindInformationResp)
	b[1] = p.Format
	off := 2
	for _, pr := range p.Pairs {
		putU16(b, off, pr.Handle)
		if width == 2 {
			putU16(b, off+2, pr.Type.Value16())
		} else {
			v := pr.Type.Value128()
			copy(b[off+2:off+18], v[:])
		}
		off += 2 + width
	}
	return b
}

// FindByTypeValueReq/Resp search by attribute type and value.
type FindByTypeValueReq struct {
	StartHandle, EndHandle uint16
	Type                   uint16
	Value                  []byte
}

func (p FindByTypeValueReq) Opcode() Opcode { return OpFindByTypeValueReq }
func (p FindByTypeValueReq) Marshal() []byte {
	b := make([]byte, 7+len(p.Value))
	b[0] = byte(OpFindByTypeValueReq)
	putU16(b, 1, p.StartHandle)
	putU16(b, 3, p.EndHandle)
	putU16(b, 5, p.Type)
	copy(b[7:], p.Value)
	return b
}

// HandlesInfoGroup is one (found handle, group end handle) pair.
type HandlesInfoGroup struct{ Found, GroupEnd uint16 }

type FindByTypeValueResp struct{ Groups []HandlesInfoGroup }

func (p FindByTypeValueResp) Opcode() Opcode { return OpFindByTypeValueResp }
func (p FindByTypeValueResp) Marshal() []byte {
	b := make([]byte, 1+len(p.Groups)*4)
	b[0] = byte(OpFindByTypeValueResp)
	off := 1
	for _, g := range p.Groups {
		putU16(b, off, g.Found)
		putU16(b, off+2, g.GroupEnd)
		off += 4
	}
	return b
}

// ReadByTypeReq/Resp enumerate attributes of a given type (used for
// characteristic declaration discovery).
type ReadByTypeReq struct {
	StartHandle, EndHandle uint16
	Type                   octets.UUID
}

func (p ReadByTypeReq) Opcode() Opcode { return OpReadByTypeReq }
func (p ReadByTypeReq) Marshal() []byte {
	width := uuidWidth(p.Type)
	b := make([]byte, 5+width)
	b[0] = byte(OpReadByTypeReq)
	putU16(b, 1, p.StartHandle)
	putU16(b, 3, p.EndHandle)
	putUUIDRaw(b[5:], p.Type)
	return b
}

// ReadByTypeResp carries a sequence of fixed-length (handle || value)
// elements; Length is the per-element byte count including the handle.
type ReadByTypeResp struct {
	Length uint8
	Data   []byte
}

func (p ReadByTypeResp) Opcode() Opcode { return OpReadByTypeResp }
func (p ReadByTypeResp) Marshal() []byte {
	b := make([]byte, 2+len(p.Data))
	b[0] = byte(OpReadByTypeResp)
	b[1] = p.Length
	copy(b[2:], p.Data)
	return b
}

// Elements splits Data into Length-sized chunks, each starting with a
// little-endian handle followed by the attribute value.
func (p ReadByTypeResp) Elements() ([]ReadByTypeElement, error) {
	if p.Length < 2 {
		return nil, dbterr.Newf(dbterr.ProtocolError, "read-by-type-resp length %d too small", p.Length)
	}
	if len(p.Data)%int(p.Length) != 0 {
		return nil, dbterr.Newf(dbterr.ProtocolError, "read-by-type-resp data %d not a multiple of length %d", len(p.Data), p.Length)
	}
	var out []ReadByTypeElement
	for off := 0; off < len(p.Data); off += int(p.Length) {
		out = append(out, ReadByTypeElement{
			Handle: getU16(p.Data, off),
			Value:  append([]byte(nil), p.Data[off+2:off+int(p.Length)]...),
		})
	}
	return out, nil
}

type ReadByTypeElement struct {
	Handle uint16
	Value  []byte
}

// ReadReq/Resp read the full value of a single attribute (subject to MTU).
type ReadReq struct{ Handle uint16 }

func (p ReadReq) Opcode() Opcode { return OpReadReq }
func (p ReadReq) Marshal() []byte {
	b := make([]byte, 3)
	b[0] = byte(OpReadReq)
	putU16(b, 1, p.Handle)
	return b
}

type ReadResp struct{ Value []byte }

func (p ReadResp) Opcode() Opcode { return OpReadResp }
func (p ReadResp) Marshal() []byte {
	b := make([]byte, 1+len(p.Value))
	b[0] = byte(OpReadResp)
	copy(b[1:], p.Value)
	return b
}

// ReadBlobReq/Resp continue a long read at a byte offset.
type ReadBlobReq struct {
	Handle uint16
	Offset uint16
}

func (p ReadBlobReq) Opcode() Opcode { return OpReadBlobReq }
func (p ReadBlobReq) Marshal() []byte {
	b := make([]byte, 5)
	b[0] = byte(OpReadBlobReq)
	putU16(b, 1, p.Handle)
	putU16(b, 3, p.Offset)
	return b
}

type ReadBlobResp struct{ Value []byte }

func (p ReadBlobResp) Opcode() Opcode { return OpReadBlobResp }
func (p ReadBlobResp) Marshal() []byte {
	b := make([]byte, 1+len(p.Value))
	b[0] = byte(OpReadBlobResp)
	copy(b[1:], p.Value)
	return b
}

// ReadMultipleReq/Resp read several handles' values in one round trip.
type ReadMultipleReq struct{ Handles []uint16 }

func (p ReadMultipleReq) Opcode() Opcode { return OpReadMultipleReq }
func (p ReadMultipleReq) Marshal() []byte {
	b := make([]byte, 1+2*len(p.Handles))
	b[0] = byte(OpReadMultipleReq)
	for i, h := range p.Handles {
		putU16(b, 1+2*i, h)
	}
	return b
}

type ReadMultipleResp struct{ Values []byte }

func (p ReadMultipleResp) Opcode() Opcode { return OpReadMultipleResp }
func (p ReadMultipleResp) Marshal() []byte {
	b := make([]byte, 1+len(p.Values))
	b[0] = byte(OpReadMultipleResp)
	copy(b[1:], p.Values)
	return b
}

// ReadByGroupTypeReq/Resp enumerate grouping attributes (primary services).
type ReadByGroupTypeReq struct {
	StartHandle, EndHandle uint16
	Type                   octets.UUID
}

func (p ReadByGroupTypeReq) Opcode() Opcode { return OpReadByGroupTypeReq }
func (p ReadByGroupTypeReq) Marshal() []byte {
	width := uuidWidth(p.Type)
	b := make([]byte, 5+width)
	b[0] = byte(OpReadByGroupTypeReq)
	putU16(b, 1, p.StartHandle)
	putU16(b, 3, p.EndHandle)
	putUUIDRaw(b[5:], p.Type)
	return b
}

type ReadByGroupTypeResp struct {
	Length uint8
	Data   []byte
}

func (p ReadByGroupTypeResp) Opcode() Opcode { return OpReadByGroupTypeResp }
func (p ReadByGroupTypeResp) Marshal() []byte {
	b := make([]byte, 2+len(p.Data))
	b[0] = byte(OpReadByGroupTypeResp)
	b[1] = p.Length
	copy(b[2:], p.Data)
	return b
}

// GroupElement is one (start, end, uuid) service tuple from a
// ReadByGroupTypeResp.
type GroupElement struct {
	Start, End uint16
	UUID       octets.UUID
}

// Elements splits Data per Length; the UUID width is Length-4 bytes.
func (p ReadByGroupTypeResp) Elements() ([]GroupElement, error) {
	if p.Length < 6 {
		return nil, dbterr.Newf(dbterr.ProtocolError, "read-by-group-type-resp length %d too small", p.Length)
	}
	if len(p.Data)%int(p.Length) != 0 {
		return nil, dbterr.Newf(dbterr.ProtocolError, "read-by-group-type-resp data %d not a multiple of length %d", len(p.Data), p.Length)
	}
	uuidLen := int(p.Length) - 4
	var out []GroupElement
	for off := 0; off < len(p.Data); off += int(p.Length) {
		start := getU16(p.Data, off)
		end := getU16(p.Data, off+2)
		var u octets.UUID
		if uuidLen == 2 {
			u = octets.NewUUID16(getU16(p.Data, off+4))
		} else {
			var raw octets.U128
			copy(raw[:], p.Data[off+4:off+4+16])
			u = octets.NewUUID128(raw)
		}
		out = append(out, GroupElement{Start: start, End: end, UUID: u})
	}
	return out, nil
}

// WriteReq/Resp perform an acknowledged write.
type WriteReq struct {
	Handle uint16
	Value  []byte
}

func (p WriteReq) Opcode() Opcode { return OpWriteReq }
func (p WriteReq) Marshal() []byte {
	b := make([]byte, 3+len(p.Value))
	b[0] = byte(OpWriteReq)
	putU16(b, 1, p.Handle)
	copy(b[3:], p.Value)
	return b
}

type WriteResp struct{}

func (p WriteResp) Opcode() Opcode  { return OpWriteResp }
func (p WriteResp) Marshal() []byte { return []byte{byte(OpWriteResp)} }

// WriteCmd is an unacknowledged write.
type WriteCmd struct {
	Handle uint16
	Value  []byte
}

func (p WriteCmd) Opcode() Opcode { return OpWriteCmd }
func (p WriteCmd) Marshal() []byte {
	b := make([]byte, 3+len(p.Value))
	b[0] = byte(OpWriteCmd)
	putU16(b, 1, p.Handle)
	copy(b[3:], p.Value)
	return b
}

// SignedWriteCmd is an unacknowledged write carrying an authentication
// signature (surfaced for completeness; signing itself is out of scope).
type SignedWriteCmd struct {
	Handle    uint16
	Value     []byte
	Signature [12]byte
}

func (p SignedWriteCmd) Opcode() Opcode { return OpSignedWriteCmd }
func (p SignedWriteCmd) Marshal() []byte {
	b := make([]byte, 3+len(p.Value)+12)
	b[0] = byte(OpSignedWriteCmd)
	putU16(b, 1, p.Handle)
	off := 3
	copy(b[off:], p.Value)
	off += len(p.Value)
	copy(b[off:], p.Signature[:])
	return b
}

// PrepareWriteReq/Resp queue a write fragment for a later ExecuteWriteReq.
type PrepareWriteReq struct {
	Handle uint16
	Offset uint16
	Value  []byte
}

func (p PrepareWriteReq) Opcode() Opcode { return OpPrepareWriteReq }
func (p PrepareWriteReq) Marshal() []byte {
	b := make([]byte, 5+len(p.Value))
	b[0] = byte(OpPrepareWriteReq)
	putU16(b, 1, p.Handle)
	putU16(b, 3, p.Offset)
	copy(b[5:], p.Value)
	return b
}

type PrepareWriteResp struct {
	Handle uint16
	Offset uint16
	Value  []byte
}

func (p PrepareWriteResp) Opcode() Opcode { return OpPrepareWriteResp }
func (p PrepareWriteResp) Marshal() []byte {
	b := make([]byte, 5+len(p.Value))
	b[0] = byte(OpPrepareWriteResp)
	putU16(b, 1, p.Handle)
	putU16(b, 3, p.Offset)
	copy(b[5:], p.Value)
	return b
}

// ExecuteWriteReq/Resp commit or cancel queued prepared writes.
type ExecuteWriteReq struct{ Flags uint8 } // 0x00 cancel, 0x01 write

func (p ExecuteWriteReq) Opcode() Opcode { return OpExecuteWriteReq }
func (p ExecuteWriteReq) Marshal() []byte {
	return []byte{byte(OpExecuteWriteReq), p.Flags}
}

type ExecuteWriteResp struct{}

func (p ExecuteWriteResp) Opcode() Opcode  { return OpExecuteWriteResp }
func (p ExecuteWriteResp) Marshal() []byte { return []byte{byte(OpExecuteWriteResp)} }

// HandleValueNtf is an unconfirmed server-to-client attribute push.
type HandleValueNtf struct {
	Handle uint16
	Value  []byte
}

func (p HandleValueNtf) Opcode() Opcode { return OpHandleValueNtf }
func (p HandleValueNtf) Marshal() []byte {
	b := make([]byte, 3+len(p.Value))
	b[0] = byte(OpHandleValueNtf)
	putU16(b, 1, p.Handle)
	copy(b[3:], p.Value)
	return b
}

// HandleValueInd is a server-to-client attribute push requiring a
// HandleValueCfm in response.
type HandleValueInd struct {
	Handle uint16
	Value  []byte
}

func (p HandleValueInd) Opcode() Opcode { return OpHandleValueInd }
func (p HandleValueInd) Marshal() []byte {
	b := make([]byte, 3+len(p.Value))
	b[0] = byte(OpHandleValueInd)
	putU16(b, 1, p.Handle)
	copy(b[3:], p.Value)
	return b
}

type HandleValueCfm struct{}

func (p HandleValueCfm) Opcode() Opcode  { return OpHandleValueCfm }
func (p HandleValueCfm) Marshal() []byte { return []byte{byte(OpHandleValueCfm)} }

// Unknown preserves the payload of an opcode this taxonomy does not
// recognize, for forward compatibility.
type Unknown struct {
	OpcodeByte uint8
	Payload    []byte
}

func (p Unknown) Opcode() Opcode { return Opcode(p.OpcodeByte) }
func (p Unknown) Marshal() []byte {
	b := make([]byte, 1+len(p.Payload))
	b[0] = p.OpcodeByte
	copy(b[1:], p.Payload)
	return b
}

func uuidWidth(u octets.UUID) int {
	if u.Size() == octets.UUID128 {
		return 16
	}
	return 2
}

func putUUIDRaw(b []byte, u octets.UUID) {
	if u.Size() == octets.UUID128 {
		v := u.Value128()
		copy(b, v[:])
		return
	}
	putU16(b, 0, u.Value16())
}

// Parse dispatches on the first byte (opcode) to produce a typed PDU.
// Unrecognized opcodes produce an Unknown catch-all rather than failing.
func Parse(b []byte) (PDU, error) {
	if len(b) == 0 {
		return nil, dbterr.New(dbterr.ProtocolError, "empty att pdu")
	}
	op := Opcode(b[0])
	body := b[1:]
	switch op {
	case OpErrorRsp:
		if len(body) < 4 {
			return nil, shortPDU(op, b)
		}
		return ErrorRsp{ReqOpcode: Opcode(body[0]), Handle: getU16(body, 1), Code: ErrorCode(body[3])}, nil
	case OpExchangeMTUReq:
		if len(body) < 2 {
			return nil, shortPDU(op, b)
		}
		return ExchangeMTUReq{MTU: getU16(body, 0)}, nil
	case OpExchangeMTUResp:
		if len(body) < 2 {
			return nil, shortPDU(op, b)
		}
		return ExchangeMTUResp{MTU: getU16(body, 0)}, nil
	case OpFindInformationReq:
		if len(body) < 4 {
			return nil, shortPDU(op, b)
		}
		return FindInformationReq{StartHandle: getU16(body, 0), EndHandle: getU16(body, 2)}, nil
	case OpFindInformationResp:
		return parseFindInformationResp(body)
	case OpFindByTypeValueReq:
		if len(body) < 6 {
			return nil, shortPDU(op, b)
		}
		return FindByTypeValueReq{StartHandle: getU16(body, 0), EndHandle: getU16(body, 2), Type: getU16(body, 4), Value: append([]byte(nil), body[6:]...)}, nil
	case OpFindByTypeValueResp:
		return parseFindByTypeValueResp(body)
	case OpReadByTypeReq:
		return parseReadByTypeReq(body)
	case OpReadByTypeResp:
		if len(body) < 1 {
			return nil, shortPDU(op, b)
		}
		return ReadByTypeResp{Length: body[0], Data: append([]byte(nil), body[1:]...)}, nil
	case OpReadReq:
		if len(body) < 2 {
			return nil, shortPDU(op, b)
		}
		return ReadReq{Handle: getU16(body, 0)}, nil
	case OpReadResp:
		return ReadResp{Value: append([]byte(nil), body...)}, nil
	case OpReadBlobReq:
		if len(body) < 4 {
			return nil, shortPDU(op, b)
		}
		return ReadBlobReq{Handle: getU16(body, 0), Offset: getU16(body, 2)}, nil
	case OpReadBlobResp:
		return ReadBlobResp{Value: append([]byte(nil), body...)}, nil
	case OpReadMultipleReq:
		var handles []uint16
		for i := 0; i+1 < len(body); i += 2 {
			handles = append(handles, getU16(body, i))
		}
		return ReadMultipleReq{Handles: handles}, nil
	case OpReadMultipleResp:
		return ReadMultipleResp{Values: append([]byte(nil), body...)}, nil
	case OpReadByGroupTypeReq:
		return parseReadByGroupTypeReq(body)
	case OpReadByGroupTypeResp:
		if len(body) < 1 {
			return nil, shortPDU(op, b)
		}
		return ReadByGroupTypeResp{Length: body[0], Data: append([]byte(nil), body[1:]...)}, nil
	case OpWriteReq:
		if len(body) < 2 {
			return nil, shortPDU(op, b)
		}
		return WriteReq{Handle: getU16(body, 0), Value: append([]byte(nil), body[2:]...)}, nil
	case OpWriteResp:
		return WriteResp{}, nil
	case OpWriteCmd:
		if len(body) < 2 {
			return nil, shortPDU(op, b)
		}
		return WriteCmd{Handle: getU16(body, 0), Value: append([]byte(nil), body[2:]...)}, nil
	case OpSignedWriteCmd:
		if len(body) < 14 {
			return nil, shortPDU(op, b)
		}
		var sig [12]byte
		copy(sig[:], body[len(body)-12:])
		return SignedWriteCmd{Handle: getU16(body, 0), Value: append([]byte(nil), body[2:len(body)-12]...), Signature: sig}, nil
	case OpPrepareWriteReq:
		if len(body) < 4 {
			return nil, shortPDU(op, b)
		}
		return PrepareWriteReq{Handle: getU16(body, 0), Offset: getU16(body, 2), Value: append([]byte(nil), body[4:]...)}, nil
	case OpPrepareWriteResp:
		if len(body) < 4 {
			return nil, shortPDU(op, b)
		}
		return PrepareWriteResp{Handle: getU16(body, 0), Offset: getU16(body, 2), Value: append([]byte(nil), body[4:]...)}, nil
	case OpExecuteWriteReq:
		if len(body) < 1 {
			return nil, shortPDU(op, b)
		}
		return ExecuteWriteReq{Flags: body[0]}, nil
	case OpExecuteWriteResp:
		return ExecuteWriteResp{}, nil
	case OpHandleValueNtf:
		if len(body) < 2 {
			return nil, shortPDU(op, b)
		}
		return HandleValueNtf{Handle: getU16(body, 0), Value: append([]byte(nil), body[2:]...)}, nil
	case OpHandleValueInd:
		if len(body) < 2 {
			return nil, shortPDU(op, b)
		}
		return HandleValueInd{Handle: getU16(body, 0), Value: append([]byte(nil), body[2:]...)}, nil
	case OpHandleValueCfm:
		return HandleValueCfm{}, nil
	default:
		return Unknown{OpcodeByte: b[0], Payload: append([]byte(nil), body...)}, nil
	}
}

func shortPDU(op Opcode, b []byte) error {
	e := dbterr.Newf(dbterr.ProtocolError, "truncated att pdu opcode 0x%02x", op)
	e.Opcode = int(op)
	e.Bytes = append([]byte(nil), b...)
	return e
}

func parseFindInformationResp(body []byte) (PDU, error) {
	if len(body) < 1 {
		return nil, shortPDU(OpFindInformationResp, body)
	}
	format := body[0]
	width := 2
	if format == 0x02 {
		width = 16
	}
	rest := body[1:]
	if len(rest)%(2+width) != 0 {
		return nil, shortPDU(OpFindInformationResp, body)
	}
	var pairs []InfoPair
	for off := 0; off < len(rest); off += 2 + width {
		h := getU16(rest, off)
		if width == 2 {
			pairs = append(pairs, InfoPair{Handle: h, Type: octets.NewUUID16(getU16(rest, off+2))})
		} else {
			var raw octets.U128
			copy(raw[:], rest[off+2:off+2+16])
			pairs = append(pairs, InfoPair{Handle: h, Type: octets.NewUUID128(raw)})
		}
	}
	return FindInformationResp{Format: format, Pairs: pairs}, nil
}

func parseFindByTypeValueResp(body []byte) (PDU, error) {
	if len(body)%4 != 0 {
		return nil, shortPDU(OpFindByTypeValueResp, body)
	}
	var groups []HandlesInfoGroup
	for off := 0; off < len(body); off += 4 {
		groups = append(groups, HandlesInfoGroup{Found: getU16(body, off), GroupEnd: getU16(body, off+2)})
	}
	return FindByTypeValueResp{Groups: groups}, nil
}

func parseReadByTypeReq(body []byte) (PDU, error) {
	if len(body) < 6 {
		return nil, shortPDU(OpReadByTypeReq, body)
	}
	u, err := parseReqUUID(body[4:])
	if err != nil {
		return nil, err
	}
	return ReadByTypeReq{StartHandle: getU16(body, 0), EndHandle: getU16(body, 2), Type: u}, nil
}

func parseReadByGroupTypeReq(body []byte) (PDU, error) {
	if len(body) < 6 {
		return nil, shortPDU(OpReadByGroupTypeReq, body)
	}
	u, err := parseReqUUID(body[4:])
	if err != nil {
		return nil, err
	}
	return ReadByGroupTypeReq{StartHandle: getU16(body, 0), EndHandle: getU16(body, 2), Type: u}, nil
}

func parseReqUUID(rest []byte) (octets.UUID, error) {
	switch len(rest) {
	case 2:
		return octets.NewUUID16(getU16(rest, 0)), nil
	case 16:
		var raw octets.U128
		copy(raw[:], rest)
		return octets.NewUUID128(raw), nil
	default:
		return octets.UUID{}, dbterr.Newf(dbterr.ProtocolError, "unsupported inline uuid width %d", len(rest))
	}
}
