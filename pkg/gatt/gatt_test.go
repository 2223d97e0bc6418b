package gatt

import (
	"sync"
	"testing"

	"github.com/pkg/errors"
	"gotest.tools/assert"
)

type notification struct {
	handle  uint16
	payload []byte
}

type testTransport struct {
	mutex sync.Mutex
	sent  []notification
	err   error
}

func (t *testTransport) Notify(handle uint16, payload []byte) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if t.err != nil {
		return t.err
	}
	t.sent = append(t.sent, notification{handle, append([]byte{}, payload...)})
	return nil
}

func (t *testTransport) count() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return len(t.sent)
}

var errTransportDown = errors.New("transport down")

func newTestTable(defs ...ServiceDef) (*Table, *testTransport) {
	tr := &testTransport{}
	tbl, err := NewTable(tr, defs...)
	if err != nil {
		panic(err)
	}
	return tbl, tr
}

// writeCCC writes code to the configuration descriptor of a characteristic, the way a peer does
func writeCCC(t *testing.T, tbl *Table, service, characteristic string, code uint16) {
	ccc, ok := tbl.Find(service, characteristic, KindClientConfig)
	assert.Assert(t, ok)
	_, err := tbl.Write(ccc.Handle, EncodeConfig(code), 0)
	assert.NilError(t, err)
}
