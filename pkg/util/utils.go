package util

import (
	"fmt"
	"strings"

	"github.com/go-ble/ble"
	"github.com/google/uuid"
)

var base = uuid.MustParse(BaseUUID)

// AddrEqualAddr compares two bluetooth addresses ignoring case
func AddrEqualAddr(a string, b string) bool {
	return strings.ToUpper(a) == strings.ToUpper(b)
}

// UUID16 expands a 16-bit assigned number over the bluetooth base UUID
func UUID16(short uint16) uuid.UUID {
	u := base
	u[2] = byte(short >> 8)
	u[3] = byte(short)
	return u
}

// Short16 returns the 16-bit assigned number of u when u lies on the bluetooth base UUID
func Short16(u uuid.UUID) (uint16, bool) {
	if u[0] != 0 || u[1] != 0 {
		return 0, false
	}
	for i := 4; i < len(u); i++ {
		if u[i] != base[i] {
			return 0, false
		}
	}
	return uint16(u[2])<<8 | uint16(u[3]), true
}

// ToBLE converts u to the go-ble representation, keeping assigned numbers in their short form
func ToBLE(u uuid.UUID) ble.UUID {
	if short, ok := Short16(u); ok {
		return ble.UUID16(short)
	}
	return ble.MustParse(u.String())
}

// ShortString renders u as 0xNNNN for assigned numbers and in canonical form otherwise
func ShortString(u uuid.UUID) string {
	if short, ok := Short16(u); ok {
		return fmt.Sprintf("0x%04X", short)
	}
	return strings.ToUpper(u.String())
}
