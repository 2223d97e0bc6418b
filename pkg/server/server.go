package server

import (
	"sync"

	mapset "github.com/deckarep/golang-set"
	"github.com/go-ble/ble"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Krajiyah/ble-services/pkg/gatt"
	. "github.com/Krajiyah/ble-services/pkg/models"
	"github.com/Krajiyah/ble-services/pkg/util"
)

// BLEServer is the struct used for exposing gatt services over a go-ble device. It is
// the notification transport of its attribute table.
type BLEServer struct {
	name     string
	status   BLEServerStatus
	table    *gatt.Table
	services []*ble.Service
	listener BLEServerStatusListener

	// cccMutex orders peer set changes with the descriptor writes they trigger
	cccMutex  sync.Mutex
	mutex     sync.Mutex
	peers     map[uint16]mapset.Set
	notifiers map[uint16]map[string]ble.Notifier
}

func NewBLEServer(name string, listener BLEServerStatusListener, defs ...gatt.ServiceDef) (*BLEServer, error) {
	server := newBLEServer(name, listener)
	table, err := gatt.NewTable(server, defs...)
	if err != nil {
		return nil, errors.Wrap(err, "NewTable issue: ")
	}
	server.table = table
	for _, def := range table.Services() {
		server.services = append(server.services, getService(server, def))
	}
	return server, nil
}

func newBLEServer(name string, listener BLEServerStatusListener) *BLEServer {
	return &BLEServer{
		name:      name,
		status:    Running,
		listener:  listener,
		peers:     map[uint16]mapset.Set{},
		notifiers: map[uint16]map[string]ble.Notifier{},
	}
}

func (server *BLEServer) Name() string { return server.name }

func (server *BLEServer) Table() *gatt.Table { return server.table }

// Services returns the go-ble services to register with the device
func (server *BLEServer) Services() []*ble.Service { return server.services }

// UUIDs returns the service UUIDs to advertise
func (server *BLEServer) UUIDs() []ble.UUID {
	uuids := []ble.UUID{}
	for _, s := range server.services {
		uuids = append(uuids, s.UUID)
	}
	return uuids
}

func (server *BLEServer) Status() BLEServerStatus {
	server.mutex.Lock()
	defer server.mutex.Unlock()
	return server.status
}

// SetStatus records the device status. A crash forgets every subscriber.
func (server *BLEServer) SetStatus(status BLEServerStatus, err error) {
	server.mutex.Lock()
	server.status = status
	server.mutex.Unlock()
	if status == Crashed {
		server.Reset()
	}
	server.listener.OnServerStatusChanged(status, err)
}

// Reset drops every subscribed peer and disables all notifications
func (server *BLEServer) Reset() {
	server.cccMutex.Lock()
	defer server.cccMutex.Unlock()
	server.mutex.Lock()
	server.peers = map[uint16]mapset.Set{}
	server.notifiers = map[uint16]map[string]ble.Notifier{}
	server.mutex.Unlock()
	server.table.Reset()
}

// Subscribers counts the peers with notifications enabled on the value at handle
func (server *BLEServer) Subscribers(handle uint16) int {
	server.mutex.Lock()
	defer server.mutex.Unlock()
	if peers, ok := server.peers[handle]; ok {
		return peers.Cardinality()
	}
	return 0
}

// Notify fans payload out to every peer subscribed to the value at handle. It is called
// with the characteristic's subscription locked and must not call back into it.
// Peer writes run outside the server lock.
func (server *BLEServer) Notify(handle uint16, payload []byte) error {
	server.mutex.Lock()
	notifiers := make(map[string]ble.Notifier, len(server.notifiers[handle]))
	for addr, n := range server.notifiers[handle] {
		notifiers[addr] = n
	}
	server.mutex.Unlock()

	var result error
	for addr, n := range notifiers {
		if _, err := n.Write(payload); err != nil {
			log.Debugf("Notify handle %d to %s failed: %s", handle, addr, err)
			if result == nil {
				result = errors.Wrapf(err, "notify %s", addr)
			}
		}
	}
	return result
}

// addPeer returns true when addr is the first subscriber of handle
func (server *BLEServer) addPeer(handle uint16, addr string, n ble.Notifier) bool {
	server.mutex.Lock()
	defer server.mutex.Unlock()
	peers, ok := server.peers[handle]
	if !ok {
		peers = mapset.NewSet()
		server.peers[handle] = peers
		server.notifiers[handle] = map[string]ble.Notifier{}
	}
	peers.Add(addr)
	server.notifiers[handle][addr] = n
	return peers.Cardinality() == 1
}

// removePeer returns true when addr was the last subscriber of handle. A notifier that
// was already replaced by a newer subscription of the same peer is ignored.
func (server *BLEServer) removePeer(handle uint16, addr string, n ble.Notifier) bool {
	server.mutex.Lock()
	defer server.mutex.Unlock()
	peers, ok := server.peers[handle]
	if !ok || server.notifiers[handle][addr] != n {
		return false
	}
	peers.Remove(addr)
	delete(server.notifiers[handle], addr)
	return peers.Cardinality() == 0
}

func (server *BLEServer) subscribe(service, characteristic string, ccc, handle uint16, addr string, n ble.Notifier) {
	server.cccMutex.Lock()
	defer server.cccMutex.Unlock()
	if server.addPeer(handle, addr, n) {
		server.writeConfig(service, characteristic, ccc, util.CCCNotify)
	}
	log.Debugf("%s/%s: %s subscribed", service, characteristic, addr)
}

func (server *BLEServer) unsubscribe(service, characteristic string, ccc, handle uint16, addr string, n ble.Notifier) {
	server.cccMutex.Lock()
	defer server.cccMutex.Unlock()
	if server.removePeer(handle, addr, n) {
		server.writeConfig(service, characteristic, ccc, util.CCCDisabled)
	}
	log.Debugf("%s/%s: %s unsubscribed", service, characteristic, addr)
}

func (server *BLEServer) writeConfig(service, characteristic string, ccc uint16, code uint16) {
	if _, err := server.table.Write(ccc, gatt.EncodeConfig(code), 0); err != nil {
		server.listener.OnInternalError(errors.Wrap(err, "writeConfig issue: "))
		return
	}
	state := Unsubscribed
	if code == util.CCCNotify {
		state = Subscribed
	}
	server.listener.OnSubscriptionChanged(service, characteristic, state)
}

func (server *BLEServer) reject(service, characteristic string, err error) {
	if gatt.IsAccessError(err) {
		log.Debugf("%s/%s: %s", service, characteristic, err)
		server.listener.OnAccessRejected(service, characteristic, err)
		return
	}
	log.Errorf("%s/%s: %s", service, characteristic, err)
	server.listener.OnInternalError(err)
}
