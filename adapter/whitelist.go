package adapter

import (
	"context"

	"github.com/XC-/direct_bt/device"
	"github.com/XC-/direct_bt/octets"
)

// Whitelist auto-connect actions, per the management protocol's Add
// Device opcode.
const (
	AutoConnectDisabled uint8 = 0x00
	AutoConnectDirect   uint8 = 0x01
	AutoConnectReport   uint8 = 0x02
)

// AddDeviceToWhitelist enables whitelist-triggered auto-connect for a
// peer, optionally uploading preferred connection parameters up front.
func (a *Adapter) AddDeviceToWhitelist(ctx context.Context, addr octets.Address, addrType octets.AddressType, action uint8, params *device.ConnParams) error {
	if err := a.mc.AddDeviceToWhitelist(ctx, a.index, addr, addrType, action); err != nil {
		return err
	}
	if params == nil {
		return nil
	}
	return a.mc.UploadConnectionParameters(ctx, a.index, addr, addrType, params.MinInterval, params.MaxInterval, params.Latency, params.SupervisionTimeout)
}

// RemoveDeviceFromWhitelist reverses AddDeviceToWhitelist.
func (a *Adapter) RemoveDeviceFromWhitelist(ctx context.Context, addr octets.Address, addrType octets.AddressType) error {
	return a.mc.RemoveDeviceFromWhitelist(ctx, a.index, addr, addrType)
}

// RequestConnect implements device.AdapterHandle. The real management
// protocol has no literal LE create-connection opcode; whitelisting the
// peer with direct auto-connect plus uploading the preferred connection
// parameters is the mgmt-api's actual mechanism for the spec's abstract
// "issues management create-connection".
func (a *Adapter) RequestConnect(ctx context.Context, addr octets.Address, addrType octets.AddressType, params device.ConnParams) error {
	return a.AddDeviceToWhitelist(ctx, addr, addrType, AutoConnectDirect, &params)
}

// RequestDisconnect implements device.AdapterHandle.
func (a *Adapter) RequestDisconnect(ctx context.Context, addr octets.Address, addrType octets.AddressType) error {
	return a.mc.Disconnect(ctx, a.index, addr, addrType)
}
