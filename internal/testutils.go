package internal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-ble/ble"
	"gotest.tools/assert"
)

// DummyConn is a go-ble connection of a simulated central. Only the methods the
// server binding touches are implemented.
type DummyConn struct {
	ble.Conn
	ctx          context.Context
	addr         string
	disconnected chan struct{}
	once         sync.Once
}

func NewDummyConn(addr string) *DummyConn {
	return &DummyConn{ctx: context.Background(), addr: addr, disconnected: make(chan struct{})}
}

func (c *DummyConn) Context() context.Context       { return c.ctx }
func (c *DummyConn) SetContext(ctx context.Context) { c.ctx = ctx }
func (c *DummyConn) RemoteAddr() ble.Addr           { return ble.NewAddr(c.addr) }
func (c *DummyConn) Disconnected() <-chan struct{}  { return c.disconnected }

// Disconnect simulates the link going down
func (c *DummyConn) Disconnect() {
	c.once.Do(func() { close(c.disconnected) })
}

// WaitFor polls cond until it holds or a second has passed
func WaitFor(t *testing.T, cond func() bool) {
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			assert.Assert(t, cond(), "condition not met in time")
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
}
