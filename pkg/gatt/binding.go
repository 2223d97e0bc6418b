package gatt

import (
	"sync"
)

// ReadSource produces the physical value behind a characteristic on demand
type ReadSource func() byte

// WriteSink consumes a validated value written by a peer
type WriteSink func(byte)

// Binding holds the optional application hooks of one service instance.
// A nil slot is unset: reads fall back to a default, writes are dropped.
type Binding struct {
	mutex sync.RWMutex
	read  ReadSource
	write WriteSink
}

// Register stores both slots. A later call overwrites both, never one.
func (b *Binding) Register(read ReadSource, write WriteSink) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.read = read
	b.write = write
}

func (b *Binding) HasReadSource() bool {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return b.read != nil
}

func (b *Binding) HasWriteSink() bool {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return b.write != nil
}

// InvokeRead calls the read source; ok is false and v is 0 when none is registered
func (b *Binding) InvokeRead() (v byte, ok bool) {
	b.mutex.RLock()
	read := b.read
	b.mutex.RUnlock()
	if read == nil {
		return 0, false
	}
	return read(), true
}

// InvokeWrite hands v to the write sink and reports whether one was registered
func (b *Binding) InvokeWrite(v byte) bool {
	b.mutex.RLock()
	write := b.write
	b.mutex.RUnlock()
	if write == nil {
		return false
	}
	write(v)
	return true
}
