package mgmt

import (
	"context"
	"encoding/binary"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XC-/direct_bt/callback"
	"github.com/XC-/direct_bt/dbterr"
)

// pipeConn adapts an io.Pipe half to the conn interface the client uses,
// ignoring the read timeout (the pipe blocks until data or Close).
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

// newTestClient wires a Client to one end of a duplex in-memory pipe and
// returns the other end for a fake-controller goroutine to drive.
func newTestClient(t *testing.T) (*Client, *pipeConn) {
	t.Helper()
	toClientR, toClientW := io.Pipe()
	toServerR, toServerW := io.Pipe()
	clientSide := &pipeConn{r: toClientR, w: toServerW}
	serverSide := &pipeConn{r: toServerR, w: toClientW}
	cl := New(clientSide)
	cl.Start(context.Background())
	t.Cleanup(func() { cl.Stop() })
	return cl, serverSide
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

func writeFrame(t *testing.T, s *pipeConn, code uint16, index uint16, params []byte) {
	t.Helper()
	_, err := s.Write(marshalFrame(code, index, params))
	require.NoError(t, err)
}

func TestSendCorrelatesCommandComplete(t *testing.T) {
	cl, srv := newTestClient(t)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, index, params := readFrame(t, srv)
		assert.Equal(t, uint16(0), index)
		assert.Equal(t, []byte{0x01}, params)
		// status=0 (success), no return params
		writeFrame(t, srv, uint16(EvtCommandComplete), 0, append([]byte{byte(OpSetPowered), byte(OpSetPowered >> 8), 0x00}))
	}()

	err := cl.SetPowered(context.Background(), 0, true)
	require.NoError(t, err)
	<-done
}

func TestSendSurfacesControllerError(t *testing.T) {
	cl, srv := newTestClient(t)
	go func() {
		readFrame(t, srv)
		writeFrame(t, srv, uint16(EvtCommandComplete), 0, []byte{byte(OpSetPowered), byte(OpSetPowered >> 8), 0x0C})
	}()

	err := cl.SetPowered(context.Background(), 0, true)
	require.Error(t, err)
}

func TestSendHonorsCommandStatus(t *testing.T) {
	cl, srv := newTestClient(t)
	go func() {
		readFrame(t, srv)
		writeFrame(t, srv, uint16(EvtCommandStatus), 0, []byte{byte(OpStartDiscovery), byte(OpStartDiscovery >> 8), 0x00})
	}()
	err := cl.StartDiscovery(context.Background(), 0, ScanTypeLEPublic)
	require.NoError(t, err)
}

func TestDeviceFoundDispatchesToListener(t *testing.T) {
	cl, srv := newTestClient(t)

	got := make(chan DeviceFoundEvt, 1)
	cl.On(EvtDeviceFound, callback.Captured("test", nil, false, func(ev Event) {
		got <- ev.(DeviceFoundEvt)
	}))

	params := make([]byte, 14+2)
	copy(params[0:6], []byte{1, 2, 3, 4, 5, 6})
	params[6] = 1 // random
	params[7] = 0xC4
	binary.LittleEndian.PutUint16(params[12:], 2)
	params[14], params[15] = 0xAA, 0xBB

	go writeFrame(t, srv, uint16(EvtDeviceFound), 3, params)

	select {
	case ev := <-got:
		assert.Equal(t, uint16(3), ev.Index())
		assert.Equal(t, int8(-60), ev.RSSI)
		assert.Equal(t, []byte{0xAA, 0xBB}, ev.Data)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for dispatch")
	}
}

func TestPumpTeardownFailsPendingCommands(t *testing.T) {
	cl, srv := newTestClient(t)
	errc := make(chan error, 1)
	go func() {
		_, _, _ = readFrame(t, srv)
		srv.Close() // simulate a read error tearing the pump down
	}()
	go func() {
		errc <- cl.SetPowered(context.Background(), 0, true)
	}()
	select {
	case err := <-errc:
		require.Error(t, err)
		var dbtErr *dbterr.Error
		require.ErrorAs(t, err, &dbtErr)
		assert.Equal(t, dbterr.Interrupted, dbtErr.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("pending command never completed after pump teardown")
	}
}

func TestConcurrentSendsForSamePairShareOneRoundTrip(t *testing.T) {
	cl, srv := newTestClient(t)
	reqCount := make(chan struct{}, 2)
	go func() {
		_, _, _ = readFrame(t, srv)
		reqCount <- struct{}{}
		// Give the second concurrent caller time to join the same
		// singleflight round trip before the response arrives.
		time.Sleep(50 * time.Millisecond)
		writeFrame(t, srv, uint16(EvtCommandComplete), 0, []byte{byte(OpSetPowered), byte(OpSetPowered >> 8), 0x00})
	}()

	errc := make(chan error, 2)
	go func() { errc <- cl.SetPowered(context.Background(), 0, true) }()
	go func() { errc <- cl.SetPowered(context.Background(), 0, true) }()

	require.NoError(t, <-errc)
	require.NoError(t, <-errc)
	assert.Len(t, reqCount, 1)
}
