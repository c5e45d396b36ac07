package adapter

import "context"

// Current-settings bitset values, per the management protocol's
// Read Controller Information reply and New Settings event.
const (
	SettingPowered      uint32 = 1 << 0
	SettingConnectable  uint32 = 1 << 1
	SettingDiscoverable uint32 = 1 << 3
	SettingBondable     uint32 = 1 << 4
	SettingBREDR        uint32 = 1 << 7
	SettingLE           uint32 = 1 << 9
	SettingAdvertising  uint32 = 1 << 10
)

// CurrentSettings returns the last-observed current-settings bitset.
func (a *Adapter) CurrentSettings() uint32 { return a.settings.Load() }

// IsDiscovering reports whether the controller is currently scanning.
func (a *Adapter) IsDiscovering() bool { return a.discovering.Load() }

// SetPowered toggles the controller's radio.
func (a *Adapter) SetPowered(ctx context.Context, on bool) error {
	return a.mc.SetPowered(ctx, a.index, on)
}

// SetDiscoverable toggles classic/LE discoverability for timeoutSeconds
// (0 means until explicitly disabled).
func (a *Adapter) SetDiscoverable(ctx context.Context, on bool, timeoutSeconds uint16) error {
	return a.mc.SetDiscoverable(ctx, a.index, on, timeoutSeconds)
}

// SetBondable toggles whether the controller accepts pairing requests.
func (a *Adapter) SetBondable(ctx context.Context, on bool) error {
	return a.mc.SetBondable(ctx, a.index, on)
}

// SetLocalName sets the advertised name and its truncated short form.
func (a *Adapter) SetLocalName(ctx context.Context, name, shortName string) error {
	return a.mc.SetLocalName(ctx, a.index, name, shortName)
}
