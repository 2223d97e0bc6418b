package gatt

import (
	"encoding/binary"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/Krajiyah/ble-services/pkg/models"
	"github.com/Krajiyah/ble-services/pkg/util"
)

const cccSize = 2

// SubscriptionStatus is the read-only side of a notification gate
type SubscriptionStatus interface {
	State() models.SubscriptionState
	Subscribed() bool
}

// Subscription is the notification gate of one notifiable characteristic. It only changes
// through the characteristic's configuration descriptor (or a transport reset).
type Subscription struct {
	name  string
	mutex sync.Mutex
	code  uint16
	state models.SubscriptionState
}

func NewSubscription(name string) *Subscription {
	return &Subscription{name: name}
}

// configChanged applies a new descriptor value. Anything but the notify code disables.
func (s *Subscription) configChanged(code uint16) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.apply(code)
}

func (s *Subscription) apply(code uint16) {
	prev := s.state
	s.code = code
	if code == util.CCCNotify {
		s.state = models.Subscribed
	} else {
		s.state = models.Unsubscribed
	}
	if prev != s.state {
		log.Infof("%s notifications: %s -> %s (ccc=0x%04x)",
			s.name, prev, s.state, code)
	}
}

// reset is the connection-reset path: the peer's configuration is forgotten.
func (s *Subscription) reset() {
	s.configChanged(util.CCCDisabled)
}

func (s *Subscription) State() models.SubscriptionState {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state
}

func (s *Subscription) Subscribed() bool {
	return s.State() == models.Subscribed
}

// writeConfig is the descriptor write handler. The value is a little-endian uint16; a
// one byte write at offset 0 sets the low byte.
func (s *Subscription) writeConfig(data []byte, offset int) (int, error) {
	if offset < 0 || offset > cccSize {
		return 0, FmtAccessError(ErrInvalidOffset,
			"%s configuration offset %d", s.name, offset)
	}
	if offset+len(data) > cccSize {
		return 0, FmtAccessError(ErrInvalidLength,
			"%s configuration is %d bytes, got %d at offset %d",
			s.name, cccSize, len(data), offset)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	buf := make([]byte, cccSize)
	binary.LittleEndian.PutUint16(buf, s.code)
	copy(buf[offset:], data)
	s.apply(binary.LittleEndian.Uint16(buf))
	return len(data), nil
}

// readConfig is the descriptor read handler
func (s *Subscription) readConfig(offset int, capacity int) ([]byte, error) {
	s.mutex.Lock()
	code := s.code
	s.mutex.Unlock()
	return readValue(EncodeConfig(code), offset, capacity)
}

// EncodeConfig renders a descriptor value as written on the wire
func EncodeConfig(code uint16) []byte {
	buf := make([]byte, cccSize)
	binary.LittleEndian.PutUint16(buf, code)
	return buf
}
