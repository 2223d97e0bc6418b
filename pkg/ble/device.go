package ble

import (
	"context"
	"sync"
	"time"

	"github.com/go-ble/ble"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	stopDelay             = 500 * time.Millisecond
	setDefaultDeviceDelay = 250 * time.Millisecond
)

// Peripheral brings up the local adapter and advertises a set of go-ble services
type Peripheral struct {
	timeout time.Duration
	methods coreMethods
	mutex   sync.Mutex
}

func NewPeripheral(timeout time.Duration) *Peripheral {
	return &Peripheral{timeout: timeout, methods: &realCoreMethods{}}
}

// Start resets the device, registers services and advertises name with uuids until ctx
// is done. A cancelled ctx is a clean shutdown.
func (p *Peripheral) Start(ctx context.Context, name string, services []*ble.Service, uuids ...ble.UUID) error {
	if err := p.resetDevice(services); err != nil {
		return err
	}
	log.Infof("Advertising %s with %d services", name, len(uuids))
	err := p.methods.AdvertiseNameAndServices(ctx, name, uuids...)
	if err != nil && errors.Cause(err) != context.Canceled && errors.Cause(err) != context.DeadlineExceeded {
		return errors.Wrap(err, "AdvertiseNameAndServices issue: ")
	}
	return nil
}

// Stop releases the device
func (p *Peripheral) Stop() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.methods.Stop()
}

func (p *Peripheral) resetDevice(services []*ble.Service) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	err := p.methods.Stop()
	time.Sleep(stopDelay)
	if err != nil {
		log.Debugf("Stop issue: %s", err)
	}
	err = retryAndCatch("SetDefaultDevice", func() error {
		return p.methods.SetDefaultDevice(p.timeout)
	})
	time.Sleep(setDefaultDeviceDelay)
	if err != nil {
		return errors.Wrap(err, "SetDefaultDevice issue")
	}
	for _, s := range services {
		if err := p.methods.AddService(s); err != nil {
			return errors.Wrap(err, "AddService issue: ")
		}
	}
	return nil
}
