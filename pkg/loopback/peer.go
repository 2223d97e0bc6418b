// Package loopback is an in-process transport for an attribute table. A Peer plays the
// part of a single connected central: it reads and writes attributes by handle, toggles
// notifications through the configuration descriptors and records what it is notified.
package loopback

import (
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Krajiyah/ble-services/pkg/gatt"
	"github.com/Krajiyah/ble-services/pkg/models"
	"github.com/Krajiyah/ble-services/pkg/util"
)

// DefaultMTU is the ATT MTU before any exchange
const DefaultMTU = 23

// Notification is a payload delivered to the peer
type Notification struct {
	Handle  uint16
	Payload []byte
}

type Peer struct {
	table     *gatt.Table
	listener  models.BLEPeerListener
	mutex     sync.Mutex
	mtu       int
	connected bool
	received  []Notification
}

// NewPeer builds the attribute table of defs with the peer as its transport. listener
// may be nil; it is called with a subscription locked and must not send notifications.
func NewPeer(listener models.BLEPeerListener, defs ...gatt.ServiceDef) (*Peer, error) {
	p := &Peer{listener: listener, mtu: DefaultMTU, connected: true}
	table, err := gatt.NewTable(p, defs...)
	if err != nil {
		return nil, errors.Wrap(err, "NewTable issue: ")
	}
	p.table = table
	return p, nil
}

func (p *Peer) Table() *gatt.Table { return p.table }

// SetMTU simulates an MTU exchange
func (p *Peer) SetMTU(mtu int) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.mtu = mtu
}

func (p *Peer) Connected() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.connected
}

func (p *Peer) checkConnected() error {
	if !p.Connected() {
		return errors.New("peer is disconnected")
	}
	return nil
}

// Read reads the attribute at handle the way a read blob request does
func (p *Peer) Read(handle uint16, offset int) ([]byte, error) {
	if err := p.checkConnected(); err != nil {
		return nil, err
	}
	p.mutex.Lock()
	capacity := p.mtu - 1
	p.mutex.Unlock()
	return p.table.Read(handle, offset, capacity)
}

func (p *Peer) Write(handle uint16, data []byte, offset int) error {
	if err := p.checkConnected(); err != nil {
		return err
	}
	_, err := p.table.Write(handle, data, offset)
	return err
}

func (p *Peer) configHandle(handle uint16) (uint16, error) {
	value, ok := p.table.Lookup(handle)
	if !ok || value.Kind != gatt.KindValue {
		return 0, gatt.FmtAccessError(gatt.ErrInvalidHandle, "no characteristic value at handle %d", handle)
	}
	ccc, ok := p.table.Find(value.Service, value.Characteristic, gatt.KindClientConfig)
	if !ok {
		return 0, errors.Errorf("%s/%s does not notify", value.Service, value.Characteristic)
	}
	return ccc.Handle, nil
}

// Subscribe enables notifications of the characteristic whose value is at handle
func (p *Peer) Subscribe(handle uint16) error {
	return p.writeConfig(handle, util.CCCNotify)
}

// Unsubscribe disables notifications of the characteristic whose value is at handle
func (p *Peer) Unsubscribe(handle uint16) error {
	return p.writeConfig(handle, util.CCCDisabled)
}

func (p *Peer) writeConfig(handle uint16, code uint16) error {
	ccc, err := p.configHandle(handle)
	if err != nil {
		return err
	}
	return p.Write(ccc, gatt.EncodeConfig(code), 0)
}

// Disconnect drops the link. Every subscription is reset.
func (p *Peer) Disconnect() {
	p.mutex.Lock()
	p.connected = false
	p.mutex.Unlock()
	p.table.Reset()
	log.Debugf("Loopback peer disconnected")
}

// Connect restores the link with no subscription
func (p *Peer) Connect() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.connected = true
}

// Notifications returns every payload received so far
func (p *Peer) Notifications() []Notification {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return append([]Notification{}, p.received...)
}

// Notify is the transport side: it delivers payload to the peer
func (p *Peer) Notify(handle uint16, payload []byte) error {
	p.mutex.Lock()
	if !p.connected {
		p.mutex.Unlock()
		return errors.New("peer is disconnected")
	}
	if len(payload) > p.mtu-3 {
		p.mutex.Unlock()
		return errors.Errorf("payload of %d bytes exceeds mtu %d", len(payload), p.mtu)
	}
	n := Notification{Handle: handle, Payload: append([]byte{}, payload...)}
	p.received = append(p.received, n)
	p.mutex.Unlock()

	if p.listener != nil {
		p.listener.OnNotification(n.Handle, n.Payload)
	}
	return nil
}
