package mgmt

import (
	"context"
	"encoding/binary"

	"github.com/XC-/direct_bt/dbterr"
	"github.com/XC-/direct_bt/octets"
)

// Inventory enumerates controllers and caches their static and current
// attributes: spec §4.5 responsibility 1.
func (cl *Client) Inventory(ctx context.Context) ([]*ControllerInfo, error) {
	resp, err := cl.Send(ctx, NonControllerIndex, OpReadControllerIndexList, nil)
	if err != nil {
		return nil, err
	}
	if len(resp) < 2 {
		return nil, dbterr.New(dbterr.ProtocolError, "truncated controller index list")
	}
	n := int(binary.LittleEndian.Uint16(resp[0:]))
	if len(resp) < 2+2*n {
		return nil, dbterr.New(dbterr.ProtocolError, "truncated controller index list")
	}
	var out []*ControllerInfo
	for i := 0; i < n; i++ {
		idx := binary.LittleEndian.Uint16(resp[2+2*i:])
		ci, err := cl.readControllerInfo(ctx, idx)
		if err != nil {
			return nil, err
		}
		out = append(out, ci)
	}
	return out, nil
}

func (cl *Client) readControllerInfo(ctx context.Context, index uint16) (*ControllerInfo, error) {
	resp, err := cl.Send(ctx, index, OpReadControllerInfo, nil)
	if err != nil {
		return nil, err
	}
	// Address(6) BTVersion(1) Manufacturer(2) SupportedSettings(4)
	// CurrentSettings(4) ClassOfDevice(3) Name(249) ShortName(11)
	if len(resp) < 6+1+2+4+4+3+249+11 {
		return nil, dbterr.New(dbterr.ProtocolError, "truncated controller info")
	}
	ci := &ControllerInfo{
		Index:             index,
		Version:           resp[6],
		Manufacturer:      binary.LittleEndian.Uint16(resp[7:]),
		SupportedSettings: binary.LittleEndian.Uint32(resp[9:]),
		CurrentSettings:   binary.LittleEndian.Uint32(resp[13:]),
		Name:              cString(resp[20:269]),
		ShortName:         cString(resp[269:280]),
	}
	copy(ci.Address[:], resp[0:6])
	copy(ci.ClassOfDevice[:], resp[17:20])

	cl.mu.Lock()
	cl.controllers[index] = ci
	cl.mu.Unlock()
	return ci, nil
}

func boolByte(v bool) []byte {
	if v {
		return []byte{0x01}
	}
	return []byte{0x00}
}

// SetPowered toggles the controller's radio.
func (cl *Client) SetPowered(ctx context.Context, index uint16, on bool) error {
	_, err := cl.Send(ctx, index, OpSetPowered, boolByte(on))
	return err
}

// SetDiscoverable toggles classic/LE discoverability.
func (cl *Client) SetDiscoverable(ctx context.Context, index uint16, on bool, timeoutSeconds uint16) error {
	params := make([]byte, 3)
	if on {
		params[0] = 0x01
	}
	binary.LittleEndian.PutUint16(params[1:], timeoutSeconds)
	_, err := cl.Send(ctx, index, OpSetDiscoverable, params)
	return err
}

// SetBondable toggles whether the controller accepts pairing requests.
func (cl *Client) SetBondable(ctx context.Context, index uint16, on bool) error {
	_, err := cl.Send(ctx, index, OpSetBondable, boolByte(on))
	return err
}

// SetLocalName sets the advertised name and its truncated short form.
func (cl *Client) SetLocalName(ctx context.Context, index uint16, name, shortName string) error {
	params := make([]byte, 249+11)
	copy(params, name)
	copy(params[249:], shortName)
	_, err := cl.Send(ctx, index, OpSetLocalName, params)
	return err
}

// StartDiscovery begins scanning for the given address-type bitmask
// (ScanTypeBREDR | ScanTypeLEPublic | ScanTypeLERandom).
func (cl *Client) StartDiscovery(ctx context.Context, index uint16, addressTypes uint8) error {
	_, err := cl.Send(ctx, index, OpStartDiscovery, []byte{addressTypes})
	return err
}

// StopDiscovery halts an in-progress scan.
func (cl *Client) StopDiscovery(ctx context.Context, index uint16, addressTypes uint8) error {
	_, err := cl.Send(ctx, index, OpStopDiscovery, []byte{addressTypes})
	return err
}

// AddDeviceToWhitelist enables whitelist-triggered auto-connect for addr.
func (cl *Client) AddDeviceToWhitelist(ctx context.Context, index uint16, addr octets.Address, addrType octets.AddressType, action uint8) error {
	params := make([]byte, 8)
	copy(params, addr[:])
	params[6] = addressTypeByte(addrType)
	params[7] = action
	_, err := cl.Send(ctx, index, OpAddDevice, params)
	return err
}

// RemoveDeviceFromWhitelist reverses AddDeviceToWhitelist.
func (cl *Client) RemoveDeviceFromWhitelist(ctx context.Context, index uint16, addr octets.Address, addrType octets.AddressType) error {
	params := make([]byte, 7)
	copy(params, addr[:])
	params[6] = addressTypeByte(addrType)
	_, err := cl.Send(ctx, index, OpRemoveDevice, params)
	return err
}

// UploadConnectionParameters sets the preferred LE connection interval,
// latency, and supervision timeout range used on future connects.
func (cl *Client) UploadConnectionParameters(ctx context.Context, index uint16, addr octets.Address, addrType octets.AddressType, minInterval, maxInterval, latency, timeout uint16) error {
	params := make([]byte, 15)
	copy(params, addr[:])
	params[6] = addressTypeByte(addrType)
	binary.LittleEndian.PutUint16(params[7:], minInterval)
	binary.LittleEndian.PutUint16(params[9:], maxInterval)
	binary.LittleEndian.PutUint16(params[11:], latency)
	binary.LittleEndian.PutUint16(params[13:], timeout)
	_, err := cl.Send(ctx, index, OpLoadConnParam, params)
	return err
}

// Disconnect tears down the connection to addr.
func (cl *Client) Disconnect(ctx context.Context, index uint16, addr octets.Address, addrType octets.AddressType) error {
	params := make([]byte, 7)
	copy(params, addr[:])
	params[6] = addressTypeByte(addrType)
	_, err := cl.Send(ctx, index, OpDisconnect, params)
	return err
}

func addressTypeByte(t octets.AddressType) uint8 {
	if t == octets.AddressRandom {
		return 1
	}
	return 0
}
