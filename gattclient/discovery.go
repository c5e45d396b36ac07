package gattclient

import (
	"encoding/binary"

	"github.com/XC-/direct_bt/att"
	"github.com/XC-/direct_bt/dbterr"
	"github.com/XC-/direct_bt/octets"
)

// ExchangeMTU is the first operation on a freshly opened channel: it
// negotiates usedMTU = min(clientMaxMTU, serverMTU). A failed exchange
// closes the channel, mirroring the teacher's l2cap behavior of tearing
// the connection down on a malformed first frame.
func (c *Client) ExchangeMTU() (int, error) {
	rsp, err := c.sendWithReply(att.ExchangeMTUReq{MTU: uint16(c.clientMaxMTU)})
	if err != nil {
		c.ch.Close()
		return 0, err
	}
	resp, ok := rsp.(att.ExchangeMTUResp)
	if !ok || resp.MTU == 0 {
		c.ch.Close()
		return 0, dbterr.New(dbterr.ProtocolError, "malformed exchange-mtu response")
	}

	c.mu.Lock()
	c.serverMTU = int(resp.MTU)
	used := c.clientMaxMTU
	if c.serverMTU < used {
		used = c.serverMTU
	}
	c.usedMTU = used
	c.mu.Unlock()
	return used, nil
}

// DiscoverServices enumerates every primary service, then every
// characteristic and descriptor beneath it, caching the result on the
// Client and returning it.
func (c *Client) DiscoverServices() ([]*Service, error) {
	services, err := c.discoverPrimaryServices()
	if err != nil {
		return nil, err
	}
	for _, svc := range services {
		chars, err := c.discoverCharacteristics(svc)
		if err != nil {
			return nil, err
		}
		svc.Characteristics = chars
		for i, ch := range chars {
			boundary := svc.EndHandle
			if i+1 < len(chars) {
				boundary = chars[i+1].DeclHandle - 1
			}
			descs, err := c.discoverDescriptors(ch, boundary)
			if err != nil {
				return nil, err
			}
			ch.Descriptors = descs
			for _, d := range descs {
				if d.IsClientCharacteristicConfig() {
					ch.cccdHandle = d.Handle
				}
			}
		}
	}

	c.mu.Lock()
	c.services = services
	c.mu.Unlock()
	return services, nil
}

// discoverPrimaryServices walks handles [1, 0xFFFF] with
// read-by-group-type requests against the primary-service UUID,
// terminating cleanly on attribute-not-found or when a group's end
// handle reaches 0xFFFF.
func (c *Client) discoverPrimaryServices() ([]*Service, error) {
	var out []*Service
	start := uint16(1)
	for {
		rsp, err := c.sendWithReply(att.ReadByGroupTypeReq{
			StartHandle: start,
			EndHandle:   0xFFFF,
			Type:        PrimaryServiceUUID,
		})
		if err != nil {
			if isAttrNotFound(err) {
				break
			}
			return nil, err
		}
		resp, ok := rsp.(att.ReadByGroupTypeResp)
		if !ok {
			return nil, dbterr.New(dbterr.ProtocolError, "unexpected reply to read-by-group-type-req")
		}
		elems, err := resp.Elements()
		if err != nil {
			return nil, err
		}
		if len(elems) == 0 {
			break
		}
		for _, e := range elems {
			out = append(out, &Service{StartHandle: e.Start, EndHandle: e.End, Type: e.UUID})
		}
		last := elems[len(elems)-1]
		if last.End == 0xFFFF {
			break
		}
		start = last.End + 1
	}
	return out, nil
}

// discoverCharacteristics walks a service's handle range with
// read-by-type requests against the characteristic-declaration UUID.
// The declaration value is properties(1) || value-handle(2 LE) ||
// type(2 or 16 bytes).
func (c *Client) discoverCharacteristics(svc *Service) ([]*Characteristic, error) {
	var out []*Characteristic
	start := svc.StartHandle
	for start <= svc.EndHandle {
		rsp, err := c.sendWithReply(att.ReadByTypeReq{
			StartHandle: start,
			EndHandle:   svc.EndHandle,
			Type:        CharacteristicDeclarationUUID,
		})
		if err != nil {
			if isAttrNotFound(err) {
				break
			}
			return nil, err
		}
		resp, ok := rsp.(att.ReadByTypeResp)
		if !ok {
			return nil, dbterr.New(dbterr.ProtocolError, "unexpected reply to read-by-type-req")
		}
		elems, err := resp.Elements()
		if err != nil {
			return nil, err
		}
		if len(elems) == 0 {
			break
		}
		for _, e := range elems {
			if len(e.Value) < 3 {
				return nil, dbterr.New(dbterr.ProtocolError, "truncated characteristic declaration value")
			}
			props := CharacteristicProperty(e.Value[0])
			valueHandle := binary.LittleEndian.Uint16(e.Value[1:3])
			typ, err := decodeInlineUUID(e.Value[3:])
			if err != nil {
				return nil, err
			}
			out = append(out, &Characteristic{
				DeclHandle:  e.Handle,
				ValueHandle: valueHandle,
				Properties:  props,
				Type:        typ,
			})
		}
		last := elems[len(elems)-1]
		if last.Handle == 0xFFFF {
			break
		}
		start = last.Handle + 1
	}
	return out, nil
}

// discoverDescriptors walks the handles strictly between a
// characteristic's value handle and the next boundary (the following
// characteristic's declaration handle minus one, or the owning
// service's end handle) with find-information requests, reading each
// descriptor's current value.
func (c *Client) discoverDescriptors(ch *Characteristic, boundary uint16) ([]*Descriptor, error) {
	if ch.ValueHandle >= boundary {
		return nil, nil
	}
	var out []*Descriptor
	start := ch.ValueHandle + 1
	for start <= boundary {
		rsp, err := c.sendWithReply(att.FindInformationReq{StartHandle: start, EndHandle: boundary})
		if err != nil {
			if isAttrNotFound(err) {
				break
			}
			return nil, err
		}
		resp, ok := rsp.(att.FindInformationResp)
		if !ok {
			return nil, dbterr.New(dbterr.ProtocolError, "unexpected reply to find-information-req")
		}
		if len(resp.Pairs) == 0 {
			break
		}
		for _, pr := range resp.Pairs {
			if pr.Handle <= ch.ValueHandle || pr.Handle > boundary {
				return nil, dbterr.New(dbterr.ProtocolError, "descriptor handle outside characteristic boundary")
			}
			value, err := c.readAttribute(pr.Handle)
			if err != nil {
				return nil, err
			}
			out = append(out, &Descriptor{Handle: pr.Handle, Type: pr.Type, Value: value})
		}
		last := resp.Pairs[len(resp.Pairs)-1]
		if last.Handle == 0xFFFF {
			break
		}
		start = last.Handle + 1
	}
	return out, nil
}

// readAttribute reads handle's full value, issuing read-blob-req
// continuations while the response fills the negotiated MTU, the only
// signal (short of an explicit attribute-not-long error) that more data
// remains.
func (c *Client) readAttribute(handle uint16) ([]byte, error) {
	rsp, err := c.sendWithReply(att.ReadReq{Handle: handle})
	if err != nil {
		return nil, err
	}
	resp, ok := rsp.(att.ReadResp)
	if !ok {
		return nil, dbterr.New(dbterr.ProtocolError, "unexpected reply to read-req")
	}
	value := append([]byte(nil), resp.Value...)

	c.mu.Lock()
	mtu := c.usedMTU
	c.mu.Unlock()

	for len(resp.Value) == mtu-1 {
		rsp, err = c.sendWithReply(att.ReadBlobReq{Handle: handle, Offset: uint16(len(value))})
		if err != nil {
			if isAttrNotLong(err) {
				break
			}
			return nil, err
		}
		blob, ok := rsp.(att.ReadBlobResp)
		if !ok {
			return nil, dbterr.New(dbterr.ProtocolError, "unexpected reply to read-blob-req")
		}
		if len(blob.Value) == 0 {
			break
		}
		value = append(value, blob.Value...)
		resp.Value = blob.Value
	}
	return value, nil
}

// FindService returns the first cached primary service of the given
// type discovered by the last DiscoverServices call, or nil.
func (c *Client) FindService(uuid octets.UUID) *Service {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.services {
		if s.Type.Equal(uuid) {
			return s
		}
	}
	return nil
}

// ReadCharacteristic reads a characteristic's (or descriptor's) full
// value by handle, following read-blob continuations as needed.
func (c *Client) ReadCharacteristic(handle uint16) ([]byte, error) {
	return c.readAttribute(handle)
}

// WriteValue issues a write-req (with response) to handle.
func (c *Client) WriteValue(handle uint16, value []byte) error {
	_, err := c.sendWithReply(att.WriteReq{Handle: handle, Value: value})
	return err
}

// WriteValueNoResponse issues a write-cmd; the peer sends no reply, so
// this does not touch the send lock's response correlation.
func (c *Client) WriteValueNoResponse(handle uint16, value []byte) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	_, err := c.ch.Write(att.WriteCmd{Handle: handle, Value: value}.Marshal())
	return err
}

// ConfigureNotifications writes the CCCD combining the notify and
// indicate bits, requiring the peer's write-resp acknowledgement.
func (c *Client) ConfigureNotifications(ch *Characteristic, notify, indicate bool) error {
	if ch.cccdHandle == 0 {
		return dbterr.New(dbterr.InvalidState, "characteristic has no client characteristic configuration descriptor")
	}
	var bits uint16
	if notify {
		bits |= 0x0001
	}
	if indicate {
		bits |= 0x0002
	}
	value := make([]byte, 2)
	binary.LittleEndian.PutUint16(value, bits)
	return c.WriteValue(ch.cccdHandle, value)
}

func decodeInlineUUID(b []byte) (octets.UUID, error) {
	switch len(b) {
	case 2:
		return octets.NewUUID16(binary.LittleEndian.Uint16(b)), nil
	case 16:
		var u octets.U128
		copy(u[:], b)
		return octets.NewUUID128(u), nil
	default:
		return octets.UUID{}, dbterr.Newf(dbterr.ProtocolError, "unsupported inline uuid width %d", len(b))
	}
}

func isAttrNotFound(err error) bool {
	return attErrorCodeIs(err, att.ErrAttributeNotFound)
}

func isAttrNotLong(err error) bool {
	return attErrorCodeIs(err, att.ErrAttributeNotLong)
}

func attErrorCodeIs(err error, code att.ErrorCode) bool {
	e, ok := err.(*dbterr.Error)
	if !ok || e.Kind != dbterr.AttError {
		return false
	}
	return e.Code == int(code)
}
