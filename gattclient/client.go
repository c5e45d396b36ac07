package gattclient

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/XC-/direct_bt/att"
	"github.com/XC-/direct_bt/callback"
	"github.com/XC-/direct_bt/dbterr"
	"github.com/XC-/direct_bt/ringbuffer"
)

// minMTU is the ATT specification's minimum MTU, used until a successful
// exchange negotiates a larger value.
const minMTU = 23

// defaultRequestTimeout bounds send-with-reply; spec §4.9 "on timeout
// disconnects and returns an error."
const defaultRequestTimeout = 20 * time.Second

// channel is the L2CAP fixed-CID connection the client reads/writes ATT
// PDUs over; satisfied by *transport.Socket. Each Read is expected to
// return one complete PDU (the kernel preserves L2CAP SDU boundaries on a
// SOCK_SEQPACKET channel), matching the teacher's per-frame l2cap read
// loop.
type channel interface {
	Read(b []byte, timeout time.Duration) (int, error)
	Write(b []byte) (int, error)
	Close() error
}

// Client owns one L2CAP channel to a peer's ATT fixed CID and the one
// reader goroutine draining it: spec §4.9.
type Client struct {
	ch  channel
	log *logrus.Entry

	sendMu sync.Mutex // serializes all outbound ATT requests

	mu          sync.Mutex
	serverMTU   int
	usedMTU     int
	clientMaxMTU int

	responseRing *ringbuffer.Ringbuffer[att.PDU]

	listeners *callback.Registry[NotificationEvent]

	confirmIndications bool

	services []*Service

	readerDone chan struct{}
	readerErr  error
}

// New constructs a Client bound to an already-open L2CAP channel.
// clientMaxMTU is the largest MTU this implementation will request
// during MTU exchange.
func New(ch channel, clientMaxMTU int) *Client {
	if clientMaxMTU < minMTU {
		clientMaxMTU = minMTU
	}
	return &Client{
		ch:                  ch,
		log:                 logrus.WithField("component", "gattclient"),
		serverMTU:           minMTU,
		usedMTU:             minMTU,
		clientMaxMTU:        clientMaxMTU,
		responseRing:        ringbuffer.New[att.PDU](1),
		listeners:           callback.NewRegistry[NotificationEvent]("gattclient"),
		confirmIndications: true,
		readerDone:          make(chan struct{}),
	}
}

// UsedMTU reports min(clientMaxMTU, serverMTU) as negotiated by
// ExchangeMTU.
func (c *Client) UsedMTU() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usedMTU
}

// Services returns the cached primary-service list from the last
// DiscoverServices call, or nil if discovery has not run.
func (c *Client) Services() []*Service {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.services
}

// Start launches the reader goroutine. Call after constructing the
// Client and before ExchangeMTU.
func (c *Client) Start() {
	go c.readLoop()
}

// AddListener registers fn to receive every notification/indication
// regardless of characteristic.
func (c *Client) AddListener(fn func(NotificationEvent)) func() {
	l := callback.Captured("*", nil, false, fn)
	c.listeners.Add(l)
	return func() { c.listeners.Remove(l) }
}

// AddCharacteristicListener registers fn for notifications/indications
// on one characteristic's value handle only.
func (c *Client) AddCharacteristicListener(handle uint16, fn func(NotificationEvent)) func() {
	wrapped := func(ev NotificationEvent) {
		if ev.Handle == handle {
			fn(ev)
		}
	}
	l := callback.Captured(handleListenerID(handle), handle, true, wrapped)
	c.listeners.Add(l)
	return func() { c.listeners.Remove(l) }
}

func handleListenerID(h uint16) string {
	return "char:" + itoa(int(h))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Close tears down the L2CAP channel and stops the reader goroutine.
func (c *Client) Close() error {
	err := c.ch.Close()
	<-c.readerDone
	return err
}

// sendWithReply writes req then blocks on the response ring for the
// correlated reply PDU; only one caller may hold the send lock at a
// time, so ATT requests serialize strictly (spec §4.9).
func (c *Client) sendWithReply(req att.PDU) (att.PDU, error) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if _, err := c.ch.Write(req.Marshal()); err != nil {
		return nil, dbterr.Wrap(dbterr.IoError, "write att pdu", err)
	}
	rsp, ok := c.responseRing.GetBlocking(int(defaultRequestTimeout / time.Millisecond))
	if !ok {
		c.ch.Close()
		return nil, dbterr.New(dbterr.Timeout, "att request timed out")
	}
	if errRsp, ok := rsp.(att.ErrorRsp); ok {
		return nil, &dbterr.Error{
			Kind: dbterr.AttError,
			Msg:  "att error: " + errRsp.Code.String(),
			Code: int(errRsp.Code),
		}
	}
	return rsp, nil
}

// readLoop classifies each frame by opcode: notifications and
// indications dispatch immediately without touching the response ring;
// everything else is enqueued for a blocked sendWithReply caller.
func (c *Client) readLoop() {
	defer close(c.readerDone)
	buf := make([]byte, 65535)
	for {
		n, err := c.ch.Read(buf, 0)
		if err != nil {
			c.readerErr = err
			return
		}
		pdu, err := att.Parse(buf[:n])
		if err != nil {
			c.log.WithError(err).Warn("dropping unparseable att pdu")
			continue
		}
		switch p := pdu.(type) {
		case att.HandleValueNtf:
			c.listeners.Dispatch(NotificationEvent{Handle: p.Handle, Value: p.Value})
		case att.HandleValueInd:
			confirmed := false
			if c.confirmIndications {
				if _, err := c.ch.Write(att.HandleValueCfm{}.Marshal()); err != nil {
					c.log.WithError(err).Warn("failed to confirm indication")
				} else {
					confirmed = true
				}
			}
			c.listeners.Dispatch(NotificationEvent{Handle: p.Handle, Value: p.Value, IsIndication: true, Confirmed: confirmed})
		default:
			c.responseRing.PutBlocking(pdu, 0)
		}
	}
}

// Err reports the error that ended the reader loop, if any.
func (c *Client) Err() error { return c.readerErr }
