package adapter

import (
	"context"
	"encoding/binary"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XC-/direct_bt/callback"
	"github.com/XC-/direct_bt/device"
	"github.com/XC-/direct_bt/mgmt"
	"github.com/XC-/direct_bt/octets"
)

// pipeConn mirrors mgmt's own test harness: a duplex io.Pipe standing in
// for a real management socket so the fake controller goroutine below
// can drive the Client with hand-built frames.
type pipeConn struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (p *pipeConn) Read(b []byte, _ time.Duration) (int, error) { return p.r.Read(b) }
func (p *pipeConn) Write(b []byte) (int, error)                 { return p.w.Write(b) }
func (p *pipeConn) Close() error {
	p.r.Close()
	return p.w.Close()
}

const frameHeaderLen = 6

func marshalFrame(code uint16, index uint16, params []byte) []byte {
	b := make([]byte, frameHeaderLen+len(params))
	binary.LittleEndian.PutUint16(b[0:], code)
	binary.LittleEndian.PutUint16(b[2:], index)
	binary.LittleEndian.PutUint16(b[4:], uint16(len(params)))
	copy(b[frameHeaderLen:], params)
	return b
}

func writeFrame(t *testing.T, s *pipeConn, code uint16, index uint16, params []byte) {
	t.Helper()
	_, err := s.Write(marshalFrame(code, index, params))
	require.NoError(t, err)
}

func readFrame(t *testing.T, s *pipeConn) (code uint16, index uint16, params []byte) {
	t.Helper()
	header := make([]byte, frameHeaderLen)
	_, err := io.ReadFull(s.r, header)
	require.NoError(t, err)
	code = binary.LittleEndian.Uint16(header[0:])
	index = binary.LittleEndian.Uint16(header[2:])
	plen := binary.LittleEndian.Uint16(header[4:])
	params = make([]byte, plen)
	if plen > 0 {
		_, err = io.ReadFull(s.r, params)
		require.NoError(t, err)
	}
	return
}

// ackCommand replies to whatever command the adapter just sent with a
// success command-complete carrying no return parameters.
func ackCommand(t *testing.T, srv *pipeConn) {
	t.Helper()
	op, index, _ := readFrame(t, srv)
	writeFrame(t, srv, uint16(mgmt.EvtCommandComplete), index, []byte{byte(op), byte(op >> 8), 0x00})
}

func newTestAdapter(t *testing.T) (*Adapter, *pipeConn) {
	t.Helper()
	toClientR, toClientW := io.Pipe()
	toServerR, toServerW := io.Pipe()
	clientSide := &pipeConn{r: toClientR, w: toServerW}
	serverSide := &pipeConn{r: toServerR, w: toClientW}

	mc := mgmt.New(clientSide)
	mc.Start(context.Background())
	t.Cleanup(func() { mc.Stop() })

	a := New(mc, 0, 185)
	t.Cleanup(func() { a.Close() })
	return a, serverSide
}

func deviceFoundParams(addr octets.Address, rssi int8, data []byte) []byte {
	params := make([]byte, 14+len(data))
	copy(params[0:6], addr[:])
	params[6] = 1 // random
	params[7] = byte(rssi)
	binary.LittleEndian.PutUint16(params[12:], uint16(len(data)))
	copy(params[14:], data)
	return params
}

func nameAD(name string) []byte {
	b := make([]byte, 2+len(name))
	b[0] = byte(1 + len(name))
	b[1] = 0x09 // complete local name
	copy(b[2:], name)
	return b
}

func waitFor[T any](t *testing.T, ch chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for status event")
		var zero T
		return zero
	}
}

func TestDeviceFoundCreatesAndTracksNewDevice(t *testing.T) {
	a, srv := newTestAdapter(t)
	found := make(chan DeviceFoundEvt, 1)
	a.AddStatusListener(callback.Captured(t.Name(), nil, false, func(ev StatusEvent) {
		if fe, ok := ev.(DeviceFoundEvt); ok {
			found <- fe
		}
	}))

	addr := octets.Address{1, 2, 3, 4, 5, 6}
	writeFrame(t, srv, uint16(mgmt.EvtDeviceFound), 0, deviceFoundParams(addr, -60, nameAD("thermo-1")))

	ev := waitFor(t, found)
	assert.Equal(t, addr, ev.Device.Address())
	assert.Equal(t, "thermo-1", ev.Device.Name())
	assert.Equal(t, device.StateDisconnected, ev.Device.State())
	assert.Same(t, ev.Device, a.FindDiscoveredDevice(addr))
}

func TestDeviceFoundUpdateEmitsDeviceUpdated(t *testing.T) {
	a, srv := newTestAdapter(t)
	var foundCount, updatedCount int
	done := make(chan struct{}, 1)
	a.AddStatusListener(callback.Captured(t.Name(), nil, false, func(ev StatusEvent) {
		switch ev.(type) {
		case DeviceFoundEvt:
			foundCount++
		case DeviceUpdatedEvt:
			updatedCount++
			done <- struct{}{}
		}
	}))

	addr := octets.Address{1, 2, 3, 4, 5, 6}
	writeFrame(t, srv, uint16(mgmt.EvtDeviceFound), 0, deviceFoundParams(addr, -60, nameAD("thermo-1")))
	writeFrame(t, srv, uint16(mgmt.EvtDeviceFound), 0, deviceFoundParams(addr, -40, nameAD("thermo-1-renamed")))

	waitFor(t, done)
	assert.Equal(t, 1, foundCount)
	assert.Equal(t, 1, updatedCount)
}

func TestDeviceConnectedSynthesizesUndiscoveredDevice(t *testing.T) {
	a, srv := newTestAdapter(t)
	connected := make(chan DeviceConnectedEvt, 1)
	a.AddStatusListener(callback.Captured(t.Name(), nil, false, func(ev StatusEvent) {
		if ce, ok := ev.(DeviceConnectedEvt); ok {
			connected <- ce
		}
	}))

	addr := octets.Address{9, 9, 9, 9, 9, 9}
	params := make([]byte, 13)
	copy(params[0:6], addr[:])
	params[6] = 0 // public

	// HandleConnected will attempt a real L2CAP socket open and fail in
	// this sandboxed test environment; the synthesis/tracking behavior
	// under test happens before that call, so the failure is expected
	// and does not affect the assertions below.
	writeFrame(t, srv, uint16(mgmt.EvtDeviceConnected), 0, params)

	ev := waitFor(t, connected)
	assert.Equal(t, addr, ev.Device.Address())
	assert.Contains(t, a.GetConnectedDevices(), ev.Device)
}

func TestDeviceDisconnectedRemovesFromConnectedSet(t *testing.T) {
	a, srv := newTestAdapter(t)
	addr := octets.Address{9, 9, 9, 9, 9, 9}

	connectedParams := make([]byte, 13)
	copy(connectedParams[0:6], addr[:])
	writeFrame(t, srv, uint16(mgmt.EvtDeviceConnected), 0, connectedParams)
	time.Sleep(20 * time.Millisecond)

	disconnected := make(chan DeviceDisconnectedEvt, 1)
	a.AddStatusListener(callback.Captured(t.Name(), nil, false, func(ev StatusEvent) {
		if de, ok := ev.(DeviceDisconnectedEvt); ok {
			disconnected <- de
		}
	}))

	disconnectedParams := make([]byte, 8)
	copy(disconnectedParams[0:6], addr[:])
	disconnectedParams[7] = 0x03 // remote user terminated
	writeFrame(t, srv, uint16(mgmt.EvtDeviceDisconnected), 0, disconnectedParams)

	ev := waitFor(t, disconnected)
	assert.Equal(t, uint8(0x03), ev.Reason)
	assert.Empty(t, a.GetConnectedDevices())
}

func TestRequestConnectWhitelistsAndUploadsConnParams(t *testing.T) {
	a, srv := newTestAdapter(t)
	addr := octets.Address{1, 1, 1, 1, 1, 1}

	errc := make(chan error, 1)
	go func() {
		errc <- a.RequestConnect(context.Background(), addr, octets.AddressRandom, device.DefaultConnParams)
	}()

	ackCommand(t, srv) // add-device-to-whitelist
	ackCommand(t, srv) // upload-connection-parameters
	require.NoError(t, <-errc)
}

func TestAdapterSettingsChangedEmitsOnlyOnChange(t *testing.T) {
	a, srv := newTestAdapter(t)
	changes := make(chan AdapterSettingsChangedEvt, 2)
	a.AddStatusListener(callback.Captured(t.Name(), nil, false, func(ev StatusEvent) {
		if se, ok := ev.(AdapterSettingsChangedEvt); ok {
			changes <- se
		}
	}))

	writeFrame(t, srv, uint16(mgmt.EvtNewSettings), 0, []byte{0x03, 0x00, 0x00, 0x00})
	first := waitFor(t, changes)
	assert.Equal(t, uint32(0x03), first.New)

	// Same value again must not emit a second AdapterSettingsChangedEvt.
	writeFrame(t, srv, uint16(mgmt.EvtNewSettings), 0, []byte{0x03, 0x00, 0x00, 0x00})
	select {
	case <-changes:
		t.Fatal("adapter-settings-changed fired on an unchanged settings value")
	case <-time.After(50 * time.Millisecond):
	}
}
