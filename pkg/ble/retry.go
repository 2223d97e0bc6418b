package ble

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Krajiyah/ble-services/pkg/util"
)

const maxRetryAttempts = 5

func retry(fn func() error) error {
	err := errors.New("not error")
	attempts := 0
	for err != nil && attempts < maxRetryAttempts {
		if attempts > 0 {
			log.Warnf("Attempt: %d Error: %s Retrying...", attempts, err.Error())
		}
		attempts += 1
		err = fn()
	}
	if err != nil {
		return errors.Wrap(err, "Exceeded attempts issue: ")
	}
	return nil
}

func retryAndCatch(method string, fn func() error) error {
	return retry(func() error {
		e := util.CatchErrs(fn)
		if e == nil {
			return nil
		}
		return errors.Wrap(e, method+" issue: ")
	})
}
