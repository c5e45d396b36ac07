// Package profile is the closed registry of standard GATT service and
// characteristic UUIDs this stack recognizes, plus value parsers for the
// specification-defined structures carried by a handful of them. Grounded
// on the closed-enum-of-known-UUIDs idiom in
// srgg-blecli/internal/device/characteristic_known_types.go, generalized
// from a single parsable characteristic to the full set spec.md §4.10
// names; parser semantics cross-checked against
// original_source/src/ieee11073/DataTypes.cpp and
// original_source/src/tinyb_hci/DataTypes.cpp.
package profile

import "github.com/XC-/direct_bt/octets"

// Well-known service UUIDs (Bluetooth SIG assigned numbers).
var (
	ServiceGenericAccess     = octets.NewUUID16(0x1800)
	ServiceDeviceInformation = octets.NewUUID16(0x180A)
	ServiceBattery           = octets.NewUUID16(0x180F)
	ServiceHeartRate         = octets.NewUUID16(0x180D)
	ServiceHealthThermometer = octets.NewUUID16(0x1809)
)

// Well-known characteristic UUIDs.
var (
	CharDeviceName                       = octets.NewUUID16(0x2A00)
	CharAppearance                       = octets.NewUUID16(0x2A01)
	CharPeripheralPreferredConnParams    = octets.NewUUID16(0x2A04)
	CharSystemID                         = octets.NewUUID16(0x2A23)
	CharModelNumberString                = octets.NewUUID16(0x2A24)
	CharSerialNumberString                = octets.NewUUID16(0x2A25)
	CharFirmwareRevisionString            = octets.NewUUID16(0x2A26)
	CharHardwareRevisionString            = octets.NewUUID16(0x2A27)
	CharSoftwareRevisionString            = octets.NewUUID16(0x2A28)
	CharManufacturerNameString            = octets.NewUUID16(0x2A29)
	CharRegulatoryCertificationDataList   = octets.NewUUID16(0x2A2A)
	CharPnPID                             = octets.NewUUID16(0x2A50)
	CharBatteryLevel                      = octets.NewUUID16(0x2A19)
	CharTemperatureMeasurement            = octets.NewUUID16(0x2A1C)
	CharHeartRateMeasurement               = octets.NewUUID16(0x2A37)
)

var serviceNames = map[octets.UUID]string{
	ServiceGenericAccess:     "generic-access",
	ServiceDeviceInformation: "device-information",
	ServiceBattery:           "battery",
	ServiceHeartRate:         "heart-rate",
	ServiceHealthThermometer: "health-thermometer",
}

// ServiceName returns the registry's human-readable name for a known
// service UUID, or "" if u is not recognized.
func ServiceName(u octets.UUID) string { return serviceNames[u] }

var characteristicNames = map[octets.UUID]string{
	CharDeviceName:                     "device-name",
	CharAppearance:                     "appearance",
	CharPeripheralPreferredConnParams:  "peripheral-preferred-connection-parameters",
	CharSystemID:                       "system-id",
	CharModelNumberString:              "model-number-string",
	CharSerialNumberString:             "serial-number-string",
	CharFirmwareRevisionString:         "firmware-revision-string",
	CharHardwareRevisionString:         "hardware-revision-string",
	CharSoftwareRevisionString:         "software-revision-string",
	CharManufacturerNameString:         "manufacturer-name-string",
	CharRegulatoryCertificationDataList: "ieee-11073-20601-regulatory-certification-data-list",
	CharPnPID:                          "pnp-id",
	CharBatteryLevel:                   "battery-level",
	CharTemperatureMeasurement:         "temperature-measurement",
	CharHeartRateMeasurement:           "heart-rate-measurement",
}

// CharacteristicName returns the registry's human-readable name for a
// known characteristic UUID, or "" if u is not recognized.
func CharacteristicName(u octets.UUID) string { return characteristicNames[u] }
