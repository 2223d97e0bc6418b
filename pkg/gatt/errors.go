package gatt

import (
	"fmt"

	"github.com/pkg/errors"
)

// ATTError is an attribute protocol error code reported back to the requesting peer
type ATTError uint8

const (
	ErrSuccess           ATTError = 0x00
	ErrInvalidHandle     ATTError = 0x01
	ErrReadNotPermitted  ATTError = 0x02
	ErrWriteNotPermitted ATTError = 0x03
	ErrInvalidOffset     ATTError = 0x07
	ErrInvalidLength     ATTError = 0x0D
	ErrUnlikely          ATTError = 0x0E
	ErrValueNotAllowed   ATTError = 0x13
)

var attErrorNames = map[ATTError]string{
	ErrSuccess:           "success",
	ErrInvalidHandle:     "invalid handle",
	ErrReadNotPermitted:  "read not permitted",
	ErrWriteNotPermitted: "write not permitted",
	ErrInvalidOffset:     "invalid offset",
	ErrInvalidLength:     "invalid attribute value length",
	ErrUnlikely:          "unlikely error",
	ErrValueNotAllowed:   "value not allowed",
}

func (e ATTError) String() string {
	if s, ok := attErrorNames[e]; ok {
		return s
	}
	return fmt.Sprintf("att error 0x%02x", uint8(e))
}

// AccessError is a rejected read or write. The attempted operation left no trace.
type AccessError struct {
	Code ATTError
	Text string
}

func NewAccessError(code ATTError, text string) *AccessError {
	return &AccessError{
		Code: code,
		Text: text,
	}
}

func FmtAccessError(code ATTError, format string,
	args ...interface{}) *AccessError {

	return NewAccessError(code, fmt.Sprintf(format, args...))
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%s (0x%02x): %s", e.Code.String(), uint8(e.Code), e.Text)
}

func IsAccessError(err error) bool {
	if err == nil {
		return false
	}

	_, ok := errors.Cause(err).(*AccessError)
	return ok
}

// AccessCode maps err onto the ATT code a transport should answer with
func AccessCode(err error) ATTError {
	if err == nil {
		return ErrSuccess
	}

	if ae, ok := errors.Cause(err).(*AccessError); ok {
		return ae.Code
	}
	return ErrUnlikely
}

// NotSubscribedError is returned when a notification is attempted while no peer has
// enabled notifications. It is an expected condition, not a fault.
type NotSubscribedError struct {
	Text string
}

func NewNotSubscribedError(text string) *NotSubscribedError {
	return &NotSubscribedError{
		Text: text,
	}
}

func (e *NotSubscribedError) Error() string {
	return e.Text
}

func IsNotSubscribed(err error) bool {
	if err == nil {
		return false
	}

	_, ok := errors.Cause(err).(*NotSubscribedError)
	return ok
}
