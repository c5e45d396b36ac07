package transport

import (
	"github.com/XC-/direct_bt/dbterr"
	"github.com/XC-/direct_bt/octets"
)

// attCID is the fixed L2CAP channel identifier BLE reserves for the
// Attribute Protocol.
const attCID = 0x0004

// rawSockaddrL2 mirrors the kernel's struct sockaddr_l2 (bluetooth/l2cap.h):
// family, PSM, peer address, CID, and (LE-only) address type.
type rawSockaddrL2 struct {
	Family     uint16
	PSM        uint16
	BdAddr     [6]byte
	CID        uint16
	BdAddrType uint8
}

// ConnectL2CAP connects an already-open L2CAP socket to a peer's ATT
// fixed channel. The kernel performs the full L2CAP connect handshake;
// on return the socket is ready for ATT PDU read/write.
func (s *Socket) ConnectL2CAP(addr octets.Address, addrType octets.AddressType) error {
	s.setState(StateConnecting)
	var typeByte uint8
	if addrType == octets.AddressRandom {
		typeByte = 1
	}
	sa := &rawSockaddrL2{Family: afBluetooth, CID: attCID, BdAddrType: typeByte}
	copy(sa.BdAddr[:], addr[:])
	if err := connectL2CAPRaw(s.fd, sa); err != nil {
		s.setState(StateError)
		return dbterr.Wrap(dbterr.IoError, "connect l2cap att channel", err)
	}
	s.setState(StateConnected)
	return nil
}
