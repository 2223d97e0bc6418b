package ble

import (
	"context"
	"time"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
	"github.com/pkg/errors"

	"github.com/Krajiyah/ble-services/pkg/util"
)

type coreMethods interface {
	SetDefaultDevice(time.Duration) error
	Stop() error
	AddService(*ble.Service) error
	AdvertiseNameAndServices(context.Context, string, ...ble.UUID) error
}

type realCoreMethods struct{}

func (bc *realCoreMethods) AdvertiseNameAndServices(ctx context.Context, name string, uuids ...ble.UUID) error {
	return util.CatchErrs(func() error {
		return ble.AdvertiseNameAndServices(ctx, name, uuids...)
	})
}

func (bc *realCoreMethods) AddService(s *ble.Service) error {
	return util.CatchErrs(func() error {
		return ble.AddService(s)
	})
}

func (bc *realCoreMethods) Stop() error {
	return util.CatchErrs(ble.Stop)
}

func (bc *realCoreMethods) newLinuxDevice(timeout time.Duration) (ble.Device, error) {
	opts := []ble.Option{
		ble.OptPeripheralRole(),
		ble.OptListenerTimeout(timeout), // central to peripheral timeout
	}
	return linux.NewDevice(opts...)
}

// SetDefaultDevice opens the HCI device. Opening a busy adapter can block, so it is
// bounded by timeout.
func (bc *realCoreMethods) SetDefaultDevice(timeout time.Duration) error {
	var device ble.Device
	err := util.Timeout(func() error {
		return util.CatchErrs(func() error {
			d, e := bc.newLinuxDevice(timeout)
			device = d
			return e
		})
	}, timeout)
	if err != nil {
		return errors.Wrap(err, "newLinuxDevice issue")
	}
	ble.SetDefaultDevice(device)
	return nil
}
