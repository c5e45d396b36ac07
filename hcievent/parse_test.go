package hcievent

import (
	"testing"

	"github.com/XC-/direct_bt/octets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommandComplete(t *testing.T) {
	b := []byte{0x01, 0x34, 0x12, 0xAA, 0xBB}
	ev := Parse(CodeCommandComplete, b)
	cc, ok := ev.(CommandComplete)
	require.True(t, ok)
	assert.Equal(t, uint8(1), cc.NumHCICommandPackets)
	assert.Equal(t, uint16(0x1234), cc.Opcode)
	assert.Equal(t, []byte{0xAA, 0xBB}, cc.ReturnParameters)
}

func TestParseCommandStatus(t *testing.T) {
	b := []byte{0x00, 0x01, 0x34, 0x12}
	ev := Parse(CodeCommandStatus, b)
	cs, ok := ev.(CommandStatus)
	require.True(t, ok)
	assert.Equal(t, uint8(0), cs.Status)
	assert.Equal(t, uint16(0x1234), cs.Opcode)
}

func TestParseDisconnectionComplete(t *testing.T) {
	b := []byte{0x00, 0x01, 0x00, 0x13}
	ev := Parse(CodeDisconnectComplete, b)
	dc, ok := ev.(DisconnectionComplete)
	require.True(t, ok)
	assert.Equal(t, uint16(1), dc.ConnectionHandle)
	assert.Equal(t, uint8(0x13), dc.Reason)
}

func TestParseNumberOfCompletedPackets(t *testing.T) {
	b := []byte{0x02, 0x01, 0x00, 0x05, 0x00, 0x02, 0x00, 0x03, 0x00}
	ev := Parse(CodeNumCompletedPkts, b)
	n, ok := ev.(NumberOfCompletedPackets)
	require.True(t, ok)
	require.Len(t, n.Packets, 2)
	assert.Equal(t, uint16(1), n.Packets[0].ConnectionHandle)
	assert.Equal(t, uint16(5), n.Packets[0].NumCompleted)
	assert.Equal(t, uint16(2), n.Packets[1].ConnectionHandle)
	assert.Equal(t, uint16(3), n.Packets[1].NumCompleted)
}

func TestParseLEConnectionComplete(t *testing.T) {
	b := make([]byte, 19)
	b[0] = byte(LESubConnectionComplete)
	body := b[1:]
	body[0] = 0x00      // status
	body[1] = 0x01       // handle lo
	body[2] = 0x00       // handle hi
	body[3] = 0x01       // role
	body[4] = 0x00       // peer addr type
	copy(body[5:11], []byte{1, 2, 3, 4, 5, 6})
	body[17] = 0x05 // master clock accuracy
	ev := Parse(CodeLEMeta, b)
	cc, ok := ev.(LEConnectionComplete)
	require.True(t, ok)
	assert.Equal(t, uint16(1), cc.ConnectionHandle)
	assert.Equal(t, octets.Address{1, 2, 3, 4, 5, 6}, cc.PeerAddress)
	assert.Equal(t, uint8(5), cc.MasterClockAccuracy)
}

func TestParseLEAdvertisingReportSingle(t *testing.T) {
	var b []byte
	b = append(b, byte(LESubAdvertisingReport))
	b = append(b, 0x01)       // numReports
	b = append(b, 0x00)       // eventType
	b = append(b, 0x01)       // addressType
	b = append(b, 1, 2, 3, 4, 5, 6) // address
	b = append(b, 0x03)             // length
	b = append(b, 0xAA, 0xBB, 0xCC) // data
	b = append(b, 0xC4)             // rssi (-60)

	ev := Parse(CodeLEMeta, b)
	rep, ok := ev.(LEAdvertisingReport)
	require.True(t, ok)
	require.Len(t, rep.Reports, 1)
	r := rep.Reports[0]
	assert.Equal(t, uint8(1), r.AddressType)
	assert.Equal(t, octets.Address{1, 2, 3, 4, 5, 6}, r.Address)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, r.Data)
	assert.Equal(t, int8(-60), r.RSSI)
}

func TestParseLEAdvertisingReportMultiple(t *testing.T) {
	var b []byte
	b = append(b, byte(LESubAdvertisingReport))
	b = append(b, 0x02) // numReports
	b = append(b, 0x00, 0x02)
	b = append(b, 0x00, 0x01)
	b = append(b, 1, 1, 1, 1, 1, 1)
	b = append(b, 2, 2, 2, 2, 2, 2)
	b = append(b, 0x01, 0x02)
	b = append(b, 0xAA)
	b = append(b, 0xBB, 0xCC)
	b = append(b, 0xFF, 0xFE)

	ev := Parse(CodeLEMeta, b)
	rep, ok := ev.(LEAdvertisingReport)
	require.True(t, ok)
	require.Len(t, rep.Reports, 2)
	assert.Equal(t, []byte{0xAA}, rep.Reports[0].Data)
	assert.Equal(t, []byte{0xBB, 0xCC}, rep.Reports[1].Data)
	assert.Equal(t, int8(-1), rep.Reports[0].RSSI)
	assert.Equal(t, int8(-2), rep.Reports[1].RSSI)
}

func TestParseUnknownEventCode(t *testing.T) {
	ev := Parse(Code(0x99), []byte{1, 2, 3})
	u, ok := ev.(Unknown)
	require.True(t, ok)
	assert.Equal(t, Code(0x99), u.Code())
	assert.Equal(t, []byte{1, 2, 3}, u.Payload)
}

func TestParseUnknownLESubevent(t *testing.T) {
	ev := Parse(CodeLEMeta, []byte{0xFE, 1, 2})
	u, ok := ev.(Unknown)
	require.True(t, ok)
	assert.Equal(t, uint8(0xFE), u.Subevent)
}

func TestParseTruncatedFallsBackToUnknown(t *testing.T) {
	ev := Parse(CodeConnectionComplete, []byte{0x00})
	_, ok := ev.(Unknown)
	assert.True(t, ok)
}
