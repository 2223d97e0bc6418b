package ble

import (
	"context"
	"testing"
	"time"

	"github.com/go-ble/ble"
	"github.com/pkg/errors"
	"gotest.tools/assert"
)

type dummyCoreMethods struct {
	deviceFailures int
	deviceCalls    int
	stopCalls      int
	services       []*ble.Service
	addErr         error
	advertised     string
	advertiseErr   error
}

func (d *dummyCoreMethods) SetDefaultDevice(time.Duration) error {
	d.deviceCalls++
	if d.deviceCalls <= d.deviceFailures {
		return errors.New("hci busy")
	}
	return nil
}

func (d *dummyCoreMethods) Stop() error {
	d.stopCalls++
	return errors.New("not started")
}

func (d *dummyCoreMethods) AddService(s *ble.Service) error {
	if d.addErr != nil {
		return d.addErr
	}
	d.services = append(d.services, s)
	return nil
}

func (d *dummyCoreMethods) AdvertiseNameAndServices(ctx context.Context, name string, _ ...ble.UUID) error {
	d.advertised = name
	if d.advertiseErr != nil {
		return d.advertiseErr
	}
	<-ctx.Done()
	return ctx.Err()
}

func getTestPeripheral(m *dummyCoreMethods) *Peripheral {
	stopDelay = 0
	setDefaultDeviceDelay = 0
	return &Peripheral{timeout: time.Second, methods: m}
}

func getTestServices() []*ble.Service {
	return []*ble.Service{ble.NewService(ble.UUID16(0x180F)), ble.NewService(ble.UUID16(0x181D))}
}

func TestStart(t *testing.T) {
	m := &dummyCoreMethods{deviceFailures: 2}
	p := getTestPeripheral(m)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Start(ctx, "SomeName", getTestServices(), ble.UUID16(0x180F))
	assert.NilError(t, err)
	assert.Equal(t, m.deviceCalls, 3)
	assert.Equal(t, m.stopCalls, 1)
	assert.Equal(t, len(m.services), 2)
	assert.Equal(t, m.advertised, "SomeName")
}

func TestStartDeviceFailure(t *testing.T) {
	m := &dummyCoreMethods{deviceFailures: maxRetryAttempts}
	p := getTestPeripheral(m)
	err := p.Start(context.Background(), "SomeName", getTestServices())
	assert.ErrorContains(t, err, "Exceeded attempts issue")
	assert.ErrorContains(t, err, "hci busy")
	assert.Equal(t, m.deviceCalls, maxRetryAttempts)
	assert.Equal(t, m.advertised, "")
}

func TestStartAddServiceFailure(t *testing.T) {
	m := &dummyCoreMethods{addErr: errors.New("duplicate handle")}
	p := getTestPeripheral(m)
	err := p.Start(context.Background(), "SomeName", getTestServices())
	assert.ErrorContains(t, err, "AddService issue")
	assert.Equal(t, m.advertised, "")
}

func TestStartAdvertiseFailure(t *testing.T) {
	m := &dummyCoreMethods{advertiseErr: errors.New("adv rejected")}
	p := getTestPeripheral(m)
	err := p.Start(context.Background(), "SomeName", getTestServices())
	assert.ErrorContains(t, err, "AdvertiseNameAndServices issue")
}

func TestRetryRecoversPanic(t *testing.T) {
	calls := 0
	err := retryAndCatch("Flaky", func() error {
		calls++
		if calls == 1 {
			panic("boom")
		}
		return nil
	})
	assert.NilError(t, err)
	assert.Equal(t, calls, 2)
}
