package gatt

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Krajiyah/ble-services/pkg/models"
)

// Transport is the collaborator that delivers notification payloads to every peer
// subscribed to the attribute with the given value handle.
type Transport interface {
	Notify(handle uint16, payload []byte) error
}

// Notifier gates notifications of one characteristic on its Subscription
type Notifier struct {
	name      string
	sub       *Subscription
	transport Transport
	handle    uint16
}

func NewNotifier(name string) *Notifier {
	return &Notifier{name: name, sub: NewSubscription(name)}
}

func (n *Notifier) Subscription() SubscriptionStatus { return n.sub }

// Handle returns the value handle the notifier was bound to by NewTable
func (n *Notifier) Handle() uint16 { return n.handle }

func (n *Notifier) bind(t Transport, handle uint16) {
	n.sub.mutex.Lock()
	defer n.sub.mutex.Unlock()
	n.transport = t
	n.handle = handle
}

// Send submits v as a one byte notification. Every call while subscribed produces exactly
// one submission. The subscription lock is held across the submission so a concurrent
// disable cannot slip between the check and the send.
func (n *Notifier) Send(v byte) error {
	n.sub.mutex.Lock()
	defer n.sub.mutex.Unlock()

	if n.sub.state != models.Subscribed {
		log.Debugf("Notify %s: no subscriber, dropping 0x%02x", n.name, v)
		return NewNotSubscribedError(n.name + " notifications are not enabled")
	}
	if n.transport == nil {
		return errors.Errorf("%s is not bound to a transport", n.name)
	}

	if err := n.transport.Notify(n.handle, []byte{v}); err != nil {
		return errors.Wrap(err, "Notify issue: ")
	}
	return nil
}
