// Package adapter implements spec §4.7: the per-controller owner that
// routes management events to tracked Devices, drives discovery, and
// dispatches ordered status notifications to application listeners.
// Grounded on the controller-ownership shape of
// paypal-gatt/device_linux.go (one struct owning the HCI handle and
// dispatching Accept/Advertisement handlers into per-peer objects) and
// the device tracking tie-break rules of
// original_source/src/direct_bt/DBTAdapter.cpp.
package adapter

import (
	"context"
	"sync"

	"github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/XC-/direct_bt/callback"
	"github.com/XC-/direct_bt/device"
	"github.com/XC-/direct_bt/mgmt"
	"github.com/XC-/direct_bt/octets"
)

// sharedSetSize bounds the historical (once-discovered, no longer in
// the live discovered set) device cache.
const sharedSetSize = 256

// Adapter owns one controller by index.
type Adapter struct {
	index        uint16
	clientMaxMTU int
	mc           *mgmt.Client
	log          *logrus.Entry

	settings atomic.Uint32

	discovering  atomic.Bool
	keepAlive    atomic.Bool
	discoveryTypes atomic.Uint32 // uint8 scan-type bitmask, widened for atomic.Uint32
	discoveryCancel context.CancelFunc

	mu         sync.Mutex
	discovered map[octets.Address]*device.Device
	connected  map[octets.Address]*device.Device
	shared     *lru.Cache[octets.Address, *device.Device]

	listeners *callback.Registry[StatusEvent]

	unsubscribe []func()
}

// New constructs an Adapter for controller index and subscribes to the
// management events it reacts to. mc must already be Start'd.
func New(mc *mgmt.Client, index uint16, clientMaxMTU int) *Adapter {
	shared, _ := lru.New[octets.Address, *device.Device](sharedSetSize)
	a := &Adapter{
		index:        index,
		clientMaxMTU: clientMaxMTU,
		mc:           mc,
		log:          logrus.WithField("component", "adapter").WithField("index", index),
		discovered:   map[octets.Address]*device.Device{},
		connected:    map[octets.Address]*device.Device{},
		shared:       shared,
		listeners:    callback.NewRegistry[StatusEvent]("adapter-status"),
	}

	a.unsubscribe = append(a.unsubscribe,
		mc.On(mgmt.EvtNewSettings, callback.Captured("adapter-settings", a, true, func(ev mgmt.Event) { a.onNewSettings(ev) })),
		mc.On(mgmt.EvtDiscovering, callback.Captured("adapter-discovering", a, true, func(ev mgmt.Event) { a.onDiscovering(ev) })),
		mc.On(mgmt.EvtDeviceFound, callback.Captured("adapter-device-found", a, true, func(ev mgmt.Event) { a.onDeviceFound(ev) })),
		mc.On(mgmt.EvtDeviceConnected, callback.Captured("adapter-device-connected", a, true, func(ev mgmt.Event) { a.onDeviceConnected(ev) })),
		mc.On(mgmt.EvtDeviceDisconnected, callback.Captured("adapter-device-disconnected", a, true, func(ev mgmt.Event) { a.onDeviceDisconnected(ev) })),
	)
	return a
}

// Index returns the controller index this Adapter owns: satisfies
// device.AdapterHandle.
func (a *Adapter) Index() uint16 { return a.index }

// Close unregisters every management listener and stops any in-flight
// discovery keep-alive loop. It does not touch tracked Devices.
func (a *Adapter) Close() error {
	for _, f := range a.unsubscribe {
		f()
	}
	a.mu.Lock()
	cancel := a.discoveryCancel
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return nil
}

// AddStatusListener registers l to receive every StatusEvent variant in
// the canonical order spec §4.7 lists.
func (a *Adapter) AddStatusListener(l callback.Fn[StatusEvent]) { a.listeners.Add(l) }

// RemoveStatusListener reverses AddStatusListener.
func (a *Adapter) RemoveStatusListener(l callback.Fn[StatusEvent]) bool {
	return a.listeners.Remove(l)
}

// FindDiscoveredDevice returns the tracked Device for addr from the live
// discovered set, or nil.
func (a *Adapter) FindDiscoveredDevice(addr octets.Address) *device.Device {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.discovered[addr]
}

// GetDiscoveredDevices returns every Device currently in the live
// discovered set.
func (a *Adapter) GetDiscoveredDevices() []*device.Device {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*device.Device, 0, len(a.discovered))
	for _, d := range a.discovered {
		out = append(out, d)
	}
	return out
}

// GetConnectedDevices returns every Device currently in the connected set.
func (a *Adapter) GetConnectedDevices() []*device.Device {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*device.Device, 0, len(a.connected))
	for _, d := range a.connected {
		out = append(out, d)
	}
	return out
}

func (a *Adapter) fromThisController(index uint16) bool { return index == a.index }
