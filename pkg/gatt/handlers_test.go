package gatt

import (
	"testing"

	"gotest.tools/assert"

	"github.com/Krajiyah/ble-services/pkg/util"
)

func recordLED(s *ActuatorService) *[]bool {
	calls := []bool{}
	s.Init(&ActuatorCallbacks{LEDChanged: func(on bool) { calls = append(calls, on) }})
	return &calls
}

func TestWriteLEDValidation(t *testing.T) {
	cases := []struct {
		name   string
		data   []byte
		offset int
		code   ATTError
	}{
		{"empty", []byte{}, 0, ErrInvalidLength},
		{"two bytes", []byte{0, 1}, 0, ErrInvalidLength},
		{"two bytes bad offset", []byte{0, 1}, 3, ErrInvalidLength},
		{"offset", []byte{1}, 1, ErrInvalidOffset},
		{"offset bad value", []byte{9}, 1, ErrInvalidOffset},
		{"value 2", []byte{2}, 0, ErrValueNotAllowed},
		{"value ff", []byte{0xff}, 0, ErrValueNotAllowed},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := NewActuatorService(ActuatorConfig{})
			calls := recordLED(s)
			n, err := s.WriteLED(c.data, c.offset)
			assert.Equal(t, n, 0)
			assert.Assert(t, IsAccessError(err))
			assert.Equal(t, AccessCode(err), c.code)
			assert.Equal(t, len(*calls), 0)
			assert.Assert(t, !s.LED())
		})
	}
}

func TestWriteLEDAccepted(t *testing.T) {
	for _, v := range []byte{0, 1} {
		s := NewActuatorService(ActuatorConfig{})
		calls := recordLED(s)
		n, err := s.WriteLED([]byte{v}, 0)
		assert.NilError(t, err)
		assert.Equal(t, n, 1)
		assert.DeepEqual(t, *calls, []bool{v == 1})
		assert.Equal(t, s.LED(), v == 1)
	}
}

func TestWriteLEDWithoutSink(t *testing.T) {
	s := NewActuatorService(ActuatorConfig{})
	assert.NilError(t, s.Init(nil))
	n, err := s.WriteLED([]byte{0x01}, 0)
	assert.NilError(t, err)
	assert.Equal(t, n, 1)
	assert.Assert(t, s.LED())

	_, err = s.WriteLED([]byte{0x02}, 0)
	assert.Equal(t, AccessCode(err), ErrValueNotAllowed)
}

func TestWriteLEDRejectedValueSkipsSink(t *testing.T) {
	s := NewActuatorService(ActuatorConfig{})
	called := false
	s.Init(&ActuatorCallbacks{LEDChanged: func(bool) { called = true }})
	_, err := s.WriteLED([]byte{0x02}, 0)
	assert.Equal(t, AccessCode(err), ErrValueNotAllowed)
	assert.Assert(t, !called)
}

func TestWriteLevelRange(t *testing.T) {
	s := NewSensorService(SensorConfig{WritableLevel: true, InitialLevel: 42})
	polled := false
	s.Init(&SensorCallbacks{Level: func() uint8 { polled = true; return 1 }})

	n, err := s.WriteLevel([]byte{0x64}, 0)
	assert.NilError(t, err)
	assert.Equal(t, n, 1)

	_, err = s.WriteLevel([]byte{0x65}, 0)
	assert.Equal(t, AccessCode(err), ErrValueNotAllowed)
	_, err = s.WriteLevel([]byte{0x00, 0x01}, 0)
	assert.Equal(t, AccessCode(err), ErrInvalidLength)
	_, err = s.WriteLevel([]byte{0x10}, 2)
	assert.Equal(t, AccessCode(err), ErrInvalidOffset)

	// accepted writes are discarded
	assert.Equal(t, s.Level(), uint8(42))
	assert.Assert(t, !polled)
}

func TestPollReadWithoutSource(t *testing.T) {
	s := NewActuatorService(ActuatorConfig{PollOnRead: true})
	s.Init(nil)
	b, err := s.ReadButton(0, 20)
	assert.NilError(t, err)
	assert.Equal(t, len(b), 0)
}

func TestPollReadRefreshesCache(t *testing.T) {
	s := NewSensorService(SensorConfig{PollOnRead: true, InitialLevel: 10})
	level := uint8(80)
	s.Init(&SensorCallbacks{Level: func() uint8 { return level }})
	b, err := s.ReadLevel(0, 20)
	assert.NilError(t, err)
	assert.DeepEqual(t, b, []byte{80})
	assert.Equal(t, s.Level(), uint8(80))

	level = 79
	b, err = s.ReadLevel(0, 20)
	assert.NilError(t, err)
	assert.DeepEqual(t, b, []byte{79})
}

func TestStaticReadServesCache(t *testing.T) {
	s := NewActuatorService(ActuatorConfig{})
	polled := false
	s.Init(&ActuatorCallbacks{ButtonState: func() bool { polled = true; return true }})
	b, err := s.ReadButton(0, 20)
	assert.NilError(t, err)
	assert.DeepEqual(t, b, []byte{0})

	assert.Assert(t, IsNotSubscribed(s.SendButtonState(true)))
	b, err = s.ReadButton(0, 20)
	assert.NilError(t, err)
	assert.DeepEqual(t, b, []byte{0})

	tbl, _ := newTestTable(s.Definition())
	writeCCC(t, tbl, ActuatorServiceName, ButtonName, util.CCCNotify)
	assert.NilError(t, s.SendButtonState(true))
	b, err = s.ReadButton(0, 20)
	assert.NilError(t, err)
	assert.DeepEqual(t, b, []byte{1})
	assert.Assert(t, !polled)
}

func TestReadOffsetAndCapacity(t *testing.T) {
	s := NewSensorService(SensorConfig{InitialLevel: 55})
	b, err := s.ReadLevel(1, 20)
	assert.NilError(t, err)
	assert.Equal(t, len(b), 0)

	_, err = s.ReadLevel(2, 20)
	assert.Equal(t, AccessCode(err), ErrInvalidOffset)

	b, err = s.ReadLevel(0, 0)
	assert.NilError(t, err)
	assert.Equal(t, len(b), 0)

	b, err = s.ReadLevel(0, -1)
	assert.NilError(t, err)
	assert.DeepEqual(t, b, []byte{55})
}

func TestReadValueTruncates(t *testing.T) {
	b, err := readValue([]byte("hello"), 1, 3)
	assert.NilError(t, err)
	assert.DeepEqual(t, b, []byte("ell"))
}
