package mgmt

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/cskr/pubsub/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/XC-/direct_bt/callback"
	"github.com/XC-/direct_bt/dbterr"
)

// conn is the subset of transport.Socket the client needs; satisfied
// directly by *transport.Socket; a fake is used in tests so they need
// not open a real AF_BLUETOOTH socket.
type conn interface {
	Read(b []byte, timeout time.Duration) (int, error)
	Write(b []byte) (int, error)
	Close() error
}

// ControllerInfo is the cached inventory record for one controller index
// (spec §4.5 "Inventory").
type ControllerInfo struct {
	Index             uint16
	Address           [6]byte
	Version           uint8
	Manufacturer      uint16
	SupportedSettings uint32
	CurrentSettings   uint32
	ClassOfDevice     [3]byte
	Name              string
	ShortName         string
}

// Client is the process-wide management-socket singleton: spec §4.5.
// Exactly one command per (opcode, index) is in flight at a time;
// additional callers for the same pair block on the same in-flight
// result via singleflight rather than issuing a second command.
type Client struct {
	c conn

	log *logrus.Entry

	inflight singleflight.Group

	mu          sync.Mutex
	controllers map[uint16]*ControllerInfo
	pending     map[pendingKey]chan pendingResult

	bus *pubsub.PubSub[EventCode, Event]

	listeners   map[EventCode]*callback.Registry[Event]
	listenersMu sync.Mutex

	eg     *errgroup.Group
	cancel context.CancelFunc
	errMu  sync.Mutex
	pumpErr error
}

type pendingKey struct {
	op    Opcode
	index uint16
}

type pendingResult struct {
	status      uint8
	params      []byte
	interrupted bool // pump tore down before a real reply arrived
}

// New constructs a Client around an already-open management socket
// connection. Call Start to launch the event pump before issuing
// commands.
func New(c conn) *Client {
	return &Client{
		c:           c,
		log:         logrus.WithField("component", "mgmt"),
		controllers: map[uint16]*ControllerInfo{},
		pending:     map[pendingKey]chan pendingResult{},
		bus:         pubsub.New[EventCode, Event](64),
		listeners:   map[EventCode]*callback.Registry[Event]{},
	}
}

// allEventCodes lists every code the dispatch fan-out subscribes to at
// Start; On may register listeners for any of them before or after Start.
var allEventCodes = []EventCode{
	EvtCommandComplete, EvtCommandStatus, EvtControllerError, EvtNewSettings,
	EvtLocalNameChanged, EvtNewLongTermKey, EvtDeviceConnected,
	EvtDeviceDisconnected, EvtUserConfirmRequest, EvtDeviceFound, EvtDiscovering,
}

// Start launches the event-pump goroutine and one fan-out goroutine per
// event code. The pump only parses frames and publishes them on the
// internal bus; fan-out runs independently so a slow public listener
// cannot stall the socket reader. When the pump's socket read fails,
// every pending command completes with Interrupted and the context shared
// by the pump and fan-out goroutines is canceled.
func (cl *Client) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	cl.cancel = cancel
	eg, egCtx := errgroup.WithContext(ctx)
	cl.eg = eg

	for _, code := range allEventCodes {
		code := code
		ch := cl.bus.Sub(code)
		eg.Go(func() error {
			for {
				select {
				case ev, ok := <-ch:
					if !ok {
						return nil
					}
					cl.dispatch(ev)
				case <-egCtx.Done():
					return nil
				}
			}
		})
	}
	eg.Go(func() error { return cl.pump(egCtx) })
}

// Stop tears down the event pump and closes the underlying socket.
func (cl *Client) Stop() error {
	if cl.cancel != nil {
		cl.cancel()
	}
	err := cl.c.Close()
	if cl.eg != nil {
		_ = cl.eg.Wait()
	}
	return err
}

// On registers l to receive every event of the given code. Returns a
// function that removes it.
func (cl *Client) On(code EventCode, l callback.Fn[Event]) func() {
	cl.listenersMu.Lock()
	r, ok := cl.listeners[code]
	if !ok {
		r = callback.NewRegistry[Event](code.String())
		cl.listeners[code] = r
	}
	cl.listenersMu.Unlock()
	r.Add(l)
	return func() { r.Remove(l) }
}

func (c EventCode) String() string {
	switch c {
	case EvtCommandComplete:
		return "command-complete"
	case EvtCommandStatus:
		return "command-status"
	case EvtControllerError:
		return "controller-error"
	case EvtNewSettings:
		return "new-settings"
	case EvtLocalNameChanged:
		return "local-name-changed"
	case EvtNewLongTermKey:
		return "new-long-term-key"
	case EvtDeviceConnected:
		return "device-connected"
	case EvtDeviceDisconnected:
		return "device-disconnected"
	case EvtUserConfirmRequest:
		return "user-confirmation-request"
	case EvtDeviceFound:
		return "device-found"
	case EvtDiscovering:
		return "discovering-changed"
	default:
		return "unknown"
	}
}

// frameHeader is the 6-byte management wire header shared by commands
// and events: opcode/event-code (2 LE), controller index (2 LE), and
// parameter length (2 LE).
const frameHeaderLen = 6

func marshalFrame(code uint16, index uint16, params []byte) []byte {
	b := make([]byte, frameHeaderLen+len(params))
	binary.LittleEndian.PutUint16(b[0:], code)
	binary.LittleEndian.PutUint16(b[2:], index)
	binary.LittleEndian.PutUint16(b[4:], uint16(len(params)))
	copy(b[frameHeaderLen:], params)
	return b
}

// Send issues a command and blocks for its correlated response. Only one
// command per (opcode, index) is ever in flight; concurrent callers for
// the same pair share the single underlying round trip.
func (cl *Client) Send(ctx context.Context, index uint16, op Opcode, params []byte) ([]byte, error) {
	key := pendingKey{op: op, index: index}
	sfKey := fmt.Sprintf("%04x:%04x", uint16(op), index)

	v, err, _ := cl.inflight.Do(sfKey, func() (interface{}, error) {
		ch := make(chan pendingResult, 1)
		cl.mu.Lock()
		cl.pending[key] = ch
		cl.mu.Unlock()
		defer func() {
			cl.mu.Lock()
			delete(cl.pending, key)
			cl.mu.Unlock()
		}()

		frame := marshalFrame(uint16(op), index, params)
		if _, err := cl.c.Write(frame); err != nil {
			return nil, dbterr.Wrap(dbterr.IoError, "write mgmt command", err)
		}

		select {
		case res := <-ch:
			if res.interrupted {
				return nil, dbterr.New(dbterr.Interrupted, "mgmt event pump terminated")
			}
			if res.status != 0 {
				return nil, dbterr.Newf(dbterr.ControllerError, "%s failed with status 0x%02x", op, res.status)
			}
			return res.params, nil
		case <-ctx.Done():
			return nil, dbterr.Wrap(dbterr.Timeout, "mgmt command canceled", ctx.Err())
		}
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// pump reads framed packets until the socket errors or ctx is canceled,
// dispatching each to command correlation and to public listeners.
func (cl *Client) pump(ctx context.Context) error {
	header := make([]byte, frameHeaderLen)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if err := cl.readFull(header, 0); err != nil {
			cl.failPending(err)
			return err
		}
		code := EventCode(binary.LittleEndian.Uint16(header[0:]))
		index := binary.LittleEndian.Uint16(header[2:])
		plen := binary.LittleEndian.Uint16(header[4:])
		body := make([]byte, plen)
		if plen > 0 {
			if err := cl.readFull(body, 0); err != nil {
				cl.failPending(err)
				return err
			}
		}
		ev := ParseEvent(code, index, body)
		cl.correlate(ev)
		cl.bus.Pub(ev, ev.Code())
	}
}

func (cl *Client) readFull(b []byte, timeout time.Duration) error {
	off := 0
	for off < len(b) {
		n, err := cl.c.Read(b[off:], timeout)
		if err != nil {
			return err
		}
		off += n
	}
	return nil
}

func (cl *Client) correlate(ev Event) {
	var key pendingKey
	var res pendingResult
	switch e := ev.(type) {
	case CommandCompleteEvt:
		key = pendingKey{op: e.Opcode, index: e.Index()}
		res = pendingResult{status: e.Status, params: e.Params}
	case CommandStatusEvt:
		key = pendingKey{op: e.Opcode, index: e.Index()}
		res = pendingResult{status: e.Status}
	default:
		return
	}
	cl.mu.Lock()
	ch, ok := cl.pending[key]
	cl.mu.Unlock()
	if ok {
		select {
		case ch <- res:
		default:
		}
	}
}

func (cl *Client) dispatch(ev Event) {
	cl.listenersMu.Lock()
	r, ok := cl.listeners[ev.Code()]
	cl.listenersMu.Unlock()
	if ok {
		r.Dispatch(ev)
	}
}

// failPending completes every outstanding command with Interrupted: spec
// §4.5 "an event-pump read error tears the pump down ... every pending
// command completes with interrupted."
func (cl *Client) failPending(cause error) {
	cl.mu.Lock()
	pending := cl.pending
	cl.pending = map[pendingKey]chan pendingResult{}
	cl.mu.Unlock()
	for _, ch := range pending {
		select {
		case ch <- pendingResult{interrupted: true}:
		default:
		}
	}
	cl.errMu.Lock()
	cl.pumpErr = dbterr.Wrap(dbterr.Interrupted, "mgmt event pump terminated", cause)
	cl.errMu.Unlock()
}

// Err reports the error that tore down the event pump, if any.
func (cl *Client) Err() error {
	cl.errMu.Lock()
	defer cl.errMu.Unlock()
	return cl.pumpErr
}
