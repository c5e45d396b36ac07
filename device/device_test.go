package device

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XC-/direct_bt/octets"
)

// fakeAdapter stands in for the owning Adapter: RequestConnect/
// RequestDisconnect succeed immediately and the test drives the
// resulting state transition explicitly via HandleConnected/
// HandleDisconnected, the same way the real Adapter would from its
// management event-dispatch goroutine.
type fakeAdapter struct {
	connectErr    error
	disconnectErr error
	connectCalls  int
	disconnectCalls int
}

func (f *fakeAdapter) Index() uint16 { return 0 }

func (f *fakeAdapter) RequestConnect(ctx context.Context, addr octets.Address, addrType octets.AddressType, params ConnParams) error {
	f.connectCalls++
	return f.connectErr
}

func (f *fakeAdapter) RequestDisconnect(ctx context.Context, addr octets.Address, addrType octets.AddressType) error {
	f.disconnectCalls++
	return f.disconnectErr
}

func testAddr() octets.Address { return octets.Address{0x01, 0x02, 0x03, 0x04, 0x05, 0x06} }

func TestConnectBlocksUntilHandleConnected(t *testing.T) {
	fa := &fakeAdapter{}
	d := New(fa, testAddr(), octets.AddressRandom, 185)

	done := make(chan error, 1)
	go func() {
		done <- d.Connect(context.Background(), DefaultConnParams)
	}()

	// Give Connect a chance to reach its wait point before resolving it.
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, StateConnecting, d.State())
	assert.Equal(t, 1, fa.connectCalls)

	// Synthesize the successful outcome of HandleConnected without
	// opening a real L2CAP socket.
	d.mu.Lock()
	d.state = StateConnected
	wait := d.connectWait
	d.connectWait = nil
	d.mu.Unlock()
	wait <- nil

	require.NoError(t, <-done)
	assert.Equal(t, StateConnected, d.State())
}

func TestConnectRejectedOutsideDisconnectedState(t *testing.T) {
	fa := &fakeAdapter{}
	d := New(fa, testAddr(), octets.AddressRandom, 185)
	d.mu.Lock()
	d.state = StateConnected
	d.mu.Unlock()

	err := d.Connect(context.Background(), DefaultConnParams)
	assert.Error(t, err)
	assert.Equal(t, 0, fa.connectCalls)
}

func TestConnectReturnsAdapterRequestError(t *testing.T) {
	fa := &fakeAdapter{connectErr: assert.AnError}
	d := New(fa, testAddr(), octets.AddressRandom, 185)

	err := d.Connect(context.Background(), DefaultConnParams)
	assert.Error(t, err)
	assert.Equal(t, StateDisconnected, d.State())
}

func TestConnectCanceledByContext(t *testing.T) {
	fa := &fakeAdapter{}
	d := New(fa, testAddr(), octets.AddressRandom, 185)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := d.Connect(ctx, DefaultConnParams)
	assert.Error(t, err)
}

func TestDisconnectBlocksUntilHandleDisconnected(t *testing.T) {
	fa := &fakeAdapter{}
	d := New(fa, testAddr(), octets.AddressRandom, 185)
	d.mu.Lock()
	d.state = StateConnected
	d.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- d.Disconnect(context.Background(), 0x00)
	}()

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, StateDisconnecting, d.State())

	d.HandleDisconnected()

	require.NoError(t, <-done)
	assert.Equal(t, StateDisconnected, d.State())
}

func TestHandleDisconnectedWhileConnectingFailsThePendingConnect(t *testing.T) {
	fa := &fakeAdapter{}
	d := New(fa, testAddr(), octets.AddressRandom, 185)

	done := make(chan error, 1)
	go func() {
		done <- d.Connect(context.Background(), DefaultConnParams)
	}()
	time.Sleep(10 * time.Millisecond)

	d.HandleDisconnected()

	err := <-done
	assert.Error(t, err)
	assert.Equal(t, StateDisconnected, d.State())
}

func TestRemoveIsNoOpWhenDisconnected(t *testing.T) {
	fa := &fakeAdapter{}
	d := New(fa, testAddr(), octets.AddressRandom, 185)
	assert.NoError(t, d.Remove())
	assert.Equal(t, 0, fa.disconnectCalls)
}

func TestNameAccessors(t *testing.T) {
	fa := &fakeAdapter{}
	d := New(fa, testAddr(), octets.AddressRandom, 185)
	assert.Equal(t, "", d.Name())
	d.SetName("thermometer-1")
	assert.Equal(t, "thermometer-1", d.Name())
}

func TestGATTHandlerNilWhenDisconnected(t *testing.T) {
	fa := &fakeAdapter{}
	d := New(fa, testAddr(), octets.AddressRandom, 185)
	assert.Nil(t, d.GATTHandler())
}

func TestGetServicesRequiresConnection(t *testing.T) {
	fa := &fakeAdapter{}
	d := New(fa, testAddr(), octets.AddressRandom, 185)
	_, err := d.GetServices(context.Background())
	assert.Error(t, err)
}
