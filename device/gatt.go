package device

import (
	"context"

	"github.com/XC-/direct_bt/dbterr"
	"github.com/XC-/direct_bt/gattclient"
	"github.com/XC-/direct_bt/octets"
	"github.com/XC-/direct_bt/profile"
)

// GetServices returns the peer's primary services, discovering them on
// first call after connect and caching the result thereafter: spec §4.8
// "get-services() (lazy: triggers GATT primary-service discovery on
// first call after connect)".
func (d *Device) GetServices(ctx context.Context) ([]*gattclient.Service, error) {
	d.mu.Lock()
	gc := d.gatt
	cached := d.services
	d.mu.Unlock()

	if gc == nil {
		return nil, dbterr.New(dbterr.InvalidState, "get-services requires an active connection")
	}
	if cached != nil {
		return cached, nil
	}

	services, err := gc.DiscoverServices()
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.services = services
	d.mu.Unlock()
	return services, nil
}

// GetGATTGenericAccess reads and parses the peer's Generic Access
// service characteristics, where present.
func (d *Device) GetGATTGenericAccess(ctx context.Context) (*profile.GenericAccess, error) {
	services, err := d.GetServices(ctx)
	if err != nil {
		return nil, err
	}
	svc := findService(services, profile.ServiceGenericAccess)
	if svc == nil {
		return nil, dbterr.New(dbterr.InvalidState, "peer does not expose the generic access service")
	}

	d.mu.Lock()
	gc := d.gatt
	d.mu.Unlock()
	if gc == nil {
		return nil, dbterr.New(dbterr.InvalidState, "get-gatt-generic-access requires an active connection")
	}

	ga := &profile.GenericAccess{}
	if ch := svc.FindCharacteristic(profile.CharDeviceName); ch != nil {
		b, err := gc.ReadCharacteristic(ch.ValueHandle)
		if err != nil {
			return nil, err
		}
		ga.DeviceName = string(b)
		d.SetName(ga.DeviceName)
	}
	if ch := svc.FindCharacteristic(profile.CharAppearance); ch != nil {
		b, err := gc.ReadCharacteristic(ch.ValueHandle)
		if err != nil {
			return nil, err
		}
		if ga.Appearance, err = profile.ParseAppearance(b); err != nil {
			return nil, err
		}
	}
	if ch := svc.FindCharacteristic(profile.CharPeripheralPreferredConnParams); ch != nil {
		b, err := gc.ReadCharacteristic(ch.ValueHandle)
		if err != nil {
			return nil, err
		}
		if ga.PreferredConnectionParams, err = profile.ParseConnectionParameters(b); err != nil {
			return nil, err
		}
	}
	return ga, nil
}

// GetGATTDeviceInformation reads and parses the peer's Device
// Information service characteristics, where present.
func (d *Device) GetGATTDeviceInformation(ctx context.Context) (*profile.DeviceInformation, error) {
	services, err := d.GetServices(ctx)
	if err != nil {
		return nil, err
	}
	svc := findService(services, profile.ServiceDeviceInformation)
	if svc == nil {
		return nil, dbterr.New(dbterr.InvalidState, "peer does not expose the device information service")
	}

	d.mu.Lock()
	gc := d.gatt
	d.mu.Unlock()
	if gc == nil {
		return nil, dbterr.New(dbterr.InvalidState, "get-gatt-device-information requires an active connection")
	}

	info := &profile.DeviceInformation{}

	if ch := svc.FindCharacteristic(profile.CharSystemID); ch != nil {
		if b, err := gc.ReadCharacteristic(ch.ValueHandle); err == nil {
			info.SystemID, _ = profile.ParseSystemID(b)
		} else {
			return nil, err
		}
	}
	if ch := svc.FindCharacteristic(profile.CharModelNumberString); ch != nil {
		b, err := gc.ReadCharacteristic(ch.ValueHandle)
		if err != nil {
			return nil, err
		}
		info.ModelNumber = string(b)
	}
	if ch := svc.FindCharacteristic(profile.CharSerialNumberString); ch != nil {
		b, err := gc.ReadCharacteristic(ch.ValueHandle)
		if err != nil {
			return nil, err
		}
		info.SerialNumber = string(b)
	}
	if ch := svc.FindCharacteristic(profile.CharFirmwareRevisionString); ch != nil {
		b, err := gc.ReadCharacteristic(ch.ValueHandle)
		if err != nil {
			return nil, err
		}
		info.FirmwareRevision = string(b)
	}
	if ch := svc.FindCharacteristic(profile.CharHardwareRevisionString); ch != nil {
		b, err := gc.ReadCharacteristic(ch.ValueHandle)
		if err != nil {
			return nil, err
		}
		info.HardwareRevision = string(b)
	}
	if ch := svc.FindCharacteristic(profile.CharSoftwareRevisionString); ch != nil {
		b, err := gc.ReadCharacteristic(ch.ValueHandle)
		if err != nil {
			return nil, err
		}
		info.SoftwareRevision = string(b)
	}
	if ch := svc.FindCharacteristic(profile.CharManufacturerNameString); ch != nil {
		b, err := gc.ReadCharacteristic(ch.ValueHandle)
		if err != nil {
			return nil, err
		}
		info.ManufacturerName = string(b)
	}
	if ch := svc.FindCharacteristic(profile.CharRegulatoryCertificationDataList); ch != nil {
		b, err := gc.ReadCharacteristic(ch.ValueHandle)
		if err != nil {
			return nil, err
		}
		info.RegulatoryCertificationDataList = b
	}
	if ch := svc.FindCharacteristic(profile.CharPnPID); ch != nil {
		b, err := gc.ReadCharacteristic(ch.ValueHandle)
		if err != nil {
			return nil, err
		}
		if info.PnPID, err = profile.ParsePnPID(b); err != nil {
			return nil, err
		}
	}
	return info, nil
}

func findService(services []*gattclient.Service, uuid octets.UUID) *gattclient.Service {
	for _, s := range services {
		if s.Type.Equal(uuid) {
			return s
		}
	}
	return nil
}
