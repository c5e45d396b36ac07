package adapter

import (
	"github.com/XC-/direct_bt/advertising"
	"github.com/XC-/direct_bt/device"
	"github.com/XC-/direct_bt/mgmt"
)

// StatusEvent is implemented by every status-listener notification
// variant spec §4.7 names, in the canonical order listeners observe
// them: AdapterSettingsChanged, DiscoveringChanged, DeviceFound,
// DeviceUpdated, DeviceConnected, DeviceDisconnected.
type StatusEvent interface {
	statusEvent()
}

// AdapterSettingsChangedEvt reports a controller current-settings
// transition.
type AdapterSettingsChangedEvt struct {
	Old, New, Changed uint32
}

func (AdapterSettingsChangedEvt) statusEvent() {}

// DiscoveringChangedEvt reports whether this Adapter is actively
// scanning, and whether keep-alive is enabled for the current session.
type DiscoveringChangedEvt struct {
	Enabled   bool
	KeepAlive bool
}

func (DiscoveringChangedEvt) statusEvent() {}

// DeviceFoundEvt reports a newly tracked Device (first observation, or
// re-observation after being flushed from the discovered set).
type DeviceFoundEvt struct {
	Device *device.Device
}

func (DeviceFoundEvt) statusEvent() {}

// DeviceUpdatedEvt reports a change to an already-tracked Device's
// advertising data.
type DeviceUpdatedEvt struct {
	Device  *device.Device
	Changed advertising.Set
}

func (DeviceUpdatedEvt) statusEvent() {}

// DeviceConnectedEvt reports a Device's transition into the connected set.
type DeviceConnectedEvt struct {
	Device *device.Device
}

func (DeviceConnectedEvt) statusEvent() {}

// DeviceDisconnectedEvt reports a Device's removal from the connected set.
type DeviceDisconnectedEvt struct {
	Device *device.Device
	Reason uint8
}

func (DeviceDisconnectedEvt) statusEvent() {}

func (a *Adapter) emit(ev StatusEvent) { a.listeners.Dispatch(ev) }

func (a *Adapter) onNewSettings(raw mgmt.Event) {
	ev, ok := raw.(mgmt.NewSettingsEvt)
	if !ok || !a.fromThisController(ev.Index()) {
		return
	}
	old := a.settings.Swap(ev.Settings)
	if old == ev.Settings {
		return
	}
	a.emit(AdapterSettingsChangedEvt{Old: old, New: ev.Settings, Changed: old ^ ev.Settings})
}

func (a *Adapter) onDiscovering(raw mgmt.Event) {
	ev, ok := raw.(mgmt.DiscoveringChangedEvt)
	if !ok || !a.fromThisController(ev.Index()) {
		return
	}
	a.discovering.Store(ev.Enabled)
	a.emit(DiscoveringChangedEvt{Enabled: ev.Enabled, KeepAlive: a.keepAlive.Load()})

	if !ev.Enabled && a.keepAlive.Load() {
		a.restartDiscovery()
	}
}

// onDeviceFound implements spec §4.7 device tracking policy rule 1.
func (a *Adapter) onDeviceFound(raw mgmt.Event) {
	ev, ok := raw.(mgmt.DeviceFoundEvt)
	if !ok || !a.fromThisController(ev.Index()) {
		return
	}
	report, err := advertising.Parse(advertising.SourceAD, ev.Address, ev.AddressType, 0, ev.RSSI, ev.Data)
	if err != nil {
		a.log.WithError(err).Warn("malformed advertising report")
		return
	}

	a.mu.Lock()
	d, inDiscovered := a.discovered[ev.Address]
	if !inDiscovered {
		if cached, ok := a.shared.Get(ev.Address); ok {
			d = cached
			a.discovered[ev.Address] = d
		}
	}
	isNew := d == nil
	if isNew {
		d = device.New(a, ev.Address, ev.AddressType, a.clientMaxMTU)
		a.discovered[ev.Address] = d
		a.shared.Add(ev.Address, d)
	}
	a.mu.Unlock()

	changed := d.UpdateAdvertising(report)
	if isNew {
		a.emit(DeviceFoundEvt{Device: d})
		return
	}
	if !inDiscovered {
		a.emit(DeviceFoundEvt{Device: d})
	}
	if changed != 0 {
		a.emit(DeviceUpdatedEvt{Device: d, Changed: changed})
	}
}

// onDeviceConnected implements spec §4.7 device tracking policy rule 2.
func (a *Adapter) onDeviceConnected(raw mgmt.Event) {
	ev, ok := raw.(mgmt.DeviceConnectedEvt)
	if !ok || !a.fromThisController(ev.Index()) {
		return
	}

	a.mu.Lock()
	d, ok := a.discovered[ev.Address]
	if !ok {
		if cached, ok := a.shared.Get(ev.Address); ok {
			d = cached
		}
	}
	synthesized := d == nil
	if synthesized {
		d = device.New(a, ev.Address, ev.AddressType, a.clientMaxMTU)
		a.shared.Add(ev.Address, d)
	}
	a.connected[ev.Address] = d
	a.mu.Unlock()

	var changed advertising.Set
	if len(ev.Data) > 0 {
		if report, err := advertising.Parse(advertising.SourceEIR, ev.Address, ev.AddressType, 0, 0, ev.Data); err == nil {
			changed = d.UpdateAdvertising(report)
		}
	}
	if changed != 0 {
		a.emit(DeviceUpdatedEvt{Device: d, Changed: changed})
	}
	d.HandleConnected()
	a.emit(DeviceConnectedEvt{Device: d})
}

// onDeviceDisconnected implements spec §4.7 device tracking policy rule 3.
func (a *Adapter) onDeviceDisconnected(raw mgmt.Event) {
	ev, ok := raw.(mgmt.DeviceDisconnectedEvt)
	if !ok || !a.fromThisController(ev.Index()) {
		return
	}

	a.mu.Lock()
	d, ok := a.connected[ev.Address]
	delete(a.connected, ev.Address)
	a.mu.Unlock()
	if !ok {
		return
	}

	d.HandleDisconnected()
	a.emit(DeviceDisconnectedEvt{Device: d, Reason: ev.Reason})
}
