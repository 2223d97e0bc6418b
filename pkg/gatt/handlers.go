package gatt

import (
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// ReadHandler serves a peer read of one attribute. capacity < 0 means unbounded.
type ReadHandler func(offset int, capacity int) ([]byte, error)

// WriteHandler serves a peer write of one attribute and returns the bytes consumed
type WriteHandler func(data []byte, offset int) (int, error)

// ValueCheck is the semantic check applied to a structurally valid single byte write
type ValueCheck func(v byte) bool

// Binary accepts 0x00 and 0x01 only
func Binary(v byte) bool {
	return v == 0x00 || v == 0x01
}

// Range accepts min <= v <= max
func Range(min, max byte) ValueCheck {
	return func(v byte) bool {
		return v >= min && v <= max
	}
}

// valueCell caches the last known value of a stateful characteristic
type valueCell struct {
	v uint32
}

func (c *valueCell) store(v byte) { atomic.StoreUint32(&c.v, uint32(v)) }
func (c *valueCell) load() byte   { return byte(atomic.LoadUint32(&c.v)) }

// decodeWrite checks a single byte write: length, then offset, then value.
func decodeWrite(name string, data []byte, offset int, check ValueCheck) (byte, error) {
	if len(data) != 1 {
		log.Debugf("Write %s: Incorrect data length (%d)", name, len(data))
		return 0, FmtAccessError(ErrInvalidLength,
			"%s expects exactly 1 byte, got %d", name, len(data))
	}

	if offset != 0 {
		log.Debugf("Write %s: Incorrect data offset (%d)", name, offset)
		return 0, FmtAccessError(ErrInvalidOffset,
			"%s does not support offset writes (offset=%d)", name, offset)
	}

	v := data[0]
	if !check(v) {
		log.Debugf("Write %s: Incorrect value (0x%02x)", name, v)
		return 0, FmtAccessError(ErrValueNotAllowed,
			"%s rejects value 0x%02x", name, v)
	}

	return v, nil
}

// newWriteHandler validates every write and passes accepted bytes to sink.
// A nil sink accepts and discards.
func newWriteHandler(name string, check ValueCheck, sink func(byte)) WriteHandler {
	return func(data []byte, offset int) (int, error) {
		v, err := decodeWrite(name, data, offset, check)
		if err != nil {
			return 0, err
		}
		if sink != nil {
			sink(v)
		}
		return len(data), nil
	}
}

// readValue applies generic attribute read semantics to value
func readValue(value []byte, offset int, capacity int) ([]byte, error) {
	if offset < 0 || offset > len(value) {
		return nil, FmtAccessError(ErrInvalidOffset,
			"read offset %d beyond value length %d", offset, len(value))
	}

	out := value[offset:]
	if capacity >= 0 && len(out) > capacity {
		out = out[:capacity]
	}
	return append([]byte{}, out...), nil
}

// newPollReadHandler refreshes the cache from the binding's read source on every read.
// Without a read source it reads zero bytes.
func newPollReadHandler(b *Binding, cache *valueCell) ReadHandler {
	return func(offset int, capacity int) ([]byte, error) {
		v, ok := b.InvokeRead()
		if !ok {
			return []byte{}, nil
		}
		cache.store(v)
		return readValue([]byte{v}, offset, capacity)
	}
}

// newStaticReadHandler serves the cached value without calling into the application
func newStaticReadHandler(cache *valueCell) ReadHandler {
	return func(offset int, capacity int) ([]byte, error) {
		return readValue([]byte{cache.load()}, offset, capacity)
	}
}

func newReadHandler(pollOnRead bool, b *Binding, cache *valueCell) ReadHandler {
	if pollOnRead {
		return newPollReadHandler(b, cache)
	}
	return newStaticReadHandler(cache)
}
