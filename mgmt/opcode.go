// Package mgmt implements the management-protocol client (spec §4.5): a
// process-wide singleton that owns one management socket, correlates
// command/response traffic, and fans out asynchronous controller events.
// Grounded on the command/response correlation pattern in the teacher's
// linux/internal/cmd/cmd.go, generalized from an HCI command channel to
// the management-socket wire format.
package mgmt

// Opcode is the two-byte management-command opcode.
type Opcode uint16

const (
	OpReadControllerIndexList Opcode = 0x0003
	OpReadControllerInfo      Opcode = 0x0004
	OpSetPowered              Opcode = 0x0005
	OpSetDiscoverable         Opcode = 0x0006
	OpSetBondable             Opcode = 0x0009
	OpSetLocalName            Opcode = 0x000F
	OpDisconnect              Opcode = 0x0014
	OpStartDiscovery          Opcode = 0x0023
	OpStopDiscovery           Opcode = 0x0024
	OpAddDevice               Opcode = 0x0033
	OpRemoveDevice            Opcode = 0x0034
	OpLoadConnParam           Opcode = 0x0035
)

func (o Opcode) String() string {
	switch o {
	case OpReadControllerIndexList:
		return "read-controller-index-list"
	case OpReadControllerInfo:
		return "read-controller-info"
	case OpSetPowered:
		return "set-powered"
	case OpSetDiscoverable:
		return "set-discoverable"
	case OpSetBondable:
		return "set-bondable"
	case OpSetLocalName:
		return "set-local-name"
	case OpDisconnect:
		return "disconnect"
	case OpStartDiscovery:
		return "start-discovery"
	case OpStopDiscovery:
		return "stop-discovery"
	case OpAddDevice:
		return "add-device-to-whitelist"
	case OpRemoveDevice:
		return "remove-device-from-whitelist"
	case OpLoadConnParam:
		return "upload-connection-parameters"
	default:
		return "unknown-opcode"
	}
}

// NonControllerIndex addresses commands that target no specific
// controller (e.g. ReadControllerIndexList).
const NonControllerIndex = 0xFFFF

// ScanTypeBREDR/LEPublic/LERandom form the discovery/scan address-type bitmask the
// management protocol expects for StartDiscovery.
const (
	ScanTypeBREDR    uint8 = 1 << 0
	ScanTypeLEPublic  uint8 = 1 << 1
	ScanTypeLERandom  uint8 = 1 << 2
)
