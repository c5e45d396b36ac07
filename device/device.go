// Package device implements the per-peer connection state machine (spec
// §4.8): connect/disconnect driven by management events relayed from the
// owning adapter, lazy GATT service discovery on first access after
// connect, and the Generic Access / Device Information convenience
// accessors built on the profile registry. Grounded on the connect/
// disconnect driving style of paypal-gatt/central_linux_test.go and the
// state-machine contract in original_source/src/direct_bt/HCIDevice.cpp
// and src/BluetoothDevice.cpp.
package device

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/XC-/direct_bt/advertising"
	"github.com/XC-/direct_bt/dbterr"
	"github.com/XC-/direct_bt/gattclient"
	"github.com/XC-/direct_bt/octets"
	"github.com/XC-/direct_bt/transport"
)

// State is the connection state machine spec §4.8 describes.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateDisconnecting
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnecting:
		return "disconnecting"
	default:
		return "unknown"
	}
}

// ConnParams is the LE connection-interval/latency/supervision-timeout
// preference passed to the owning adapter's connect request.
type ConnParams struct {
	MinInterval        uint16
	MaxInterval        uint16
	Latency            uint16
	SupervisionTimeout uint16
}

// DefaultConnParams mirrors the Bluetooth SIG's commonly used defaults
// (30-50ms interval, no slave latency, 2s supervision timeout - values
// expressed in the mgmt wire's 1.25ms/10ms units respectively).
var DefaultConnParams = ConnParams{MinInterval: 24, MaxInterval: 40, Latency: 0, SupervisionTimeout: 200}

// AdapterHandle is the weak back-reference a Device holds to its owning
// Adapter: only the operations Device needs to drive a connection
// attempt or teardown, kept narrow so the device package never imports
// adapter and risks an import cycle (Adapter owns Device strongly; this
// interface is the only direction pointing back).
type AdapterHandle interface {
	Index() uint16
	RequestConnect(ctx context.Context, addr octets.Address, addrType octets.AddressType, params ConnParams) error
	RequestDisconnect(ctx context.Context, addr octets.Address, addrType octets.AddressType) error
}

// Device is one tracked peer, owned by its Adapter.
type Device struct {
	address     octets.Address
	addressType octets.AddressType
	adapter     AdapterHandle
	clientMaxMTU int
	log         *logrus.Entry

	name string // best-known name, from advertising or GATT

	mu           sync.Mutex
	state        State
	l2cap        *transport.Socket
	gatt         *gattclient.Client
	services     []*gattclient.Service
	connectWait  chan error
	disconnWait  chan error

	createdAt   time.Time
	updatedAt   time.Time
	advertising *advertising.EInfoReport
}

// New constructs a Device in the Disconnected state. clientMaxMTU bounds
// the MTU this peer's GATT client will request.
func New(adapter AdapterHandle, addr octets.Address, addrType octets.AddressType, clientMaxMTU int) *Device {
	now := time.Now()
	return &Device{
		address:      addr,
		addressType:  addrType,
		adapter:      adapter,
		clientMaxMTU: clientMaxMTU,
		log:          logrus.WithField("component", "device").WithField("address", addr.String()),
		createdAt:    now,
		updatedAt:    now,
	}
}

// CreatedAt and UpdatedAt report when this Device was first tracked and
// last had its advertising data refreshed, respectively.
func (d *Device) CreatedAt() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.createdAt
}

func (d *Device) UpdatedAt() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.updatedAt
}

// Advertising returns the most recently observed advertising/EIR report,
// or nil if this Device was synthesized from a connection event without
// ever being discovered.
func (d *Device) Advertising() *advertising.EInfoReport {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.advertising
}

// UpdateAdvertising replaces the cached advertising report and returns
// the set of fields that changed relative to the previous one (spec
// §4.7 "device-updated(device, changed-field-mask)"). The first report
// returns every field r populates. Later reports are compared on name,
// RSSI, TX power, flags and the number of service UUIDs only; manufacturer
// data and the service UUID values are not compared, so a change confined
// to them yields a zero Set. Also refreshes the cached display name when
// the report carries one.
func (d *Device) UpdateAdvertising(r *advertising.EInfoReport) advertising.Set {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev := d.advertising
	d.advertising = r
	d.updatedAt = time.Now()
	if r.Fields.Has(advertising.FieldName) {
		d.name = r.Name
	}
	if prev == nil {
		return r.Fields
	}
	var changed advertising.Set
	if prev.Name != r.Name {
		changed |= advertising.Set(advertising.FieldName)
	}
	if prev.RSSI != r.RSSI {
		changed |= advertising.Set(advertising.FieldRSSI)
	}
	if prev.TxPowerLevel != r.TxPowerLevel {
		changed |= advertising.Set(advertising.FieldTxPower)
	}
	if prev.Flags != r.Flags {
		changed |= advertising.Set(advertising.FieldFlags)
	}
	if len(prev.Services) != len(r.Services) {
		changed |= advertising.Set(advertising.FieldServices)
	}
	return changed
}

func (d *Device) Address() octets.Address         { return d.address }
func (d *Device) AddressType() octets.AddressType { return d.addressType }

func (d *Device) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Name returns the best-known display name (from advertising data or a
// prior Generic Access read).
func (d *Device) Name() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.name
}

// SetName lets the owning adapter cache a name observed in advertising
// data before any GATT connection exists.
func (d *Device) SetName(name string) {
	d.mu.Lock()
	d.name = name
	d.mu.Unlock()
}

// ConnectDefault connects using DefaultConnParams.
func (d *Device) ConnectDefault(ctx context.Context) error {
	return d.Connect(ctx, DefaultConnParams)
}

// Connect requests the owning adapter establish a connection, then
// blocks until the management layer reports DeviceConnected (or
// DeviceDisconnected on failure) for this address, or ctx is canceled.
func (d *Device) Connect(ctx context.Context, params ConnParams) error {
	d.mu.Lock()
	if d.state != StateDisconnected {
		d.mu.Unlock()
		return dbterr.New(dbterr.InvalidState, "connect called outside the disconnected state")
	}
	d.state = StateConnecting
	wait := make(chan error, 1)
	d.connectWait = wait
	d.mu.Unlock()

	if err := d.adapter.RequestConnect(ctx, d.address, d.addressType, params); err != nil {
		d.mu.Lock()
		d.state = StateDisconnected
		d.connectWait = nil
		d.mu.Unlock()
		return err
	}

	select {
	case err := <-wait:
		return err
	case <-ctx.Done():
		d.mu.Lock()
		d.connectWait = nil
		d.mu.Unlock()
		return dbterr.Wrap(dbterr.Timeout, "connect canceled", ctx.Err())
	}
}

// Disconnect requests teardown of an active connection and blocks until
// DeviceDisconnected arrives for this address, or ctx is canceled.
func (d *Device) Disconnect(ctx context.Context, reason uint8) error {
	d.mu.Lock()
	if d.state != StateConnected {
		d.mu.Unlock()
		return dbterr.New(dbterr.InvalidState, "disconnect called outside the connected state")
	}
	d.state = StateDisconnecting
	wait := make(chan error, 1)
	d.disconnWait = wait
	d.mu.Unlock()

	if err := d.adapter.RequestDisconnect(ctx, d.address, d.addressType); err != nil {
		return err
	}

	select {
	case err := <-wait:
		return err
	case <-ctx.Done():
		return dbterr.Wrap(dbterr.Timeout, "disconnect canceled", ctx.Err())
	}
}

// Remove calls Disconnect when the device is Connected or Disconnecting
// and returns its result (from Disconnecting that is an InvalidState
// error); in any other state it returns nil. It does not mark the device
// as removed: a later Connect is still accepted.
func (d *Device) Remove() error {
	d.mu.Lock()
	state := d.state
	d.mu.Unlock()
	if state == StateConnected || state == StateDisconnecting {
		return d.Disconnect(context.Background(), 0x00)
	}
	return nil
}

// HandleConnected is invoked by the owning adapter's event-dispatch
// goroutine when management reports DeviceConnected for this address:
// spec §4.8 "Connecting -> Connected ... Opens the L2CAP fixed-CID
// channel for ATT and constructs a GATT client."
func (d *Device) HandleConnected() {
	sock, err := transport.OpenL2CAP()
	if err != nil {
		d.failConnect(err)
		return
	}
	if err := sock.ConnectL2CAP(d.address, d.addressType); err != nil {
		sock.Close()
		d.failConnect(err)
		return
	}

	gc := gattclient.New(sock, d.clientMaxMTU)
	gc.Start()
	if _, err := gc.ExchangeMTU(); err != nil {
		gc.Close()
		d.failConnect(err)
		return
	}

	d.mu.Lock()
	d.l2cap = sock
	d.gatt = gc
	d.state = StateConnected
	wait := d.connectWait
	d.connectWait = nil
	d.mu.Unlock()

	if wait != nil {
		wait <- nil
	}
}

func (d *Device) failConnect(cause error) {
	d.mu.Lock()
	d.state = StateDisconnected
	wait := d.connectWait
	d.connectWait = nil
	d.mu.Unlock()
	if wait != nil {
		wait <- dbterr.Wrap(dbterr.IoError, "failed to establish att channel", cause)
	}
}

// HandleDisconnected is invoked by the owning adapter whenever
// management reports DeviceDisconnected for this address, whether the
// application requested it or the peer/controller initiated it: spec
// §4.8 "Any -> Disconnected on DeviceDisconnected. Tears down ATT
// channel and GATT client."
func (d *Device) HandleDisconnected() {
	d.mu.Lock()
	gc := d.gatt
	sock := d.l2cap
	d.gatt = nil
	d.l2cap = nil
	d.services = nil
	d.state = StateDisconnected
	connectWait := d.connectWait
	disconnWait := d.disconnWait
	d.connectWait = nil
	d.disconnWait = nil
	d.mu.Unlock()

	if gc != nil {
		gc.Close()
	} else if sock != nil {
		sock.Close()
	}
	if connectWait != nil {
		connectWait <- dbterr.New(dbterr.Interrupted, "disconnected while connecting")
	}
	if disconnWait != nil {
		disconnWait <- nil
	}
}

// GATTHandler returns the active GATT client, or nil if not connected:
// spec §4.8 "get-gatt-handler()".
func (d *Device) GATTHandler() *gattclient.Client {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gatt
}
