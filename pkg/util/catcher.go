package util

import (
	"github.com/pkg/errors"
)

// TryCatchBlock represents struct for try-catch-finally control flow
type TryCatchBlock struct {
	Try     func()
	Catch   func(error)
	Finally func()
}

// Do executes TryCatchBlock try-catch-finally control flow
func (tcf TryCatchBlock) Do() {
	if tcf.Finally != nil {
		defer tcf.Finally()
	}
	if tcf.Catch != nil {
		defer func() {
			if r := recover(); r != nil {
				tcf.Catch(panicToErr(r))
			}
		}()
	}
	tcf.Try()
}

func panicToErr(r interface{}) error {
	if err, ok := r.(error); ok {
		return errors.Wrap(err, "recovered panic: ")
	}
	return errors.Errorf("recovered panic: %v", r)
}

// CatchErrs runs fn and converts a panic raised inside it into a returned error
func CatchErrs(fn func() error) error {
	var err error
	TryCatchBlock{
		Try:   func() { err = fn() },
		Catch: func(e error) { err = e },
	}.Do()
	return err
}
