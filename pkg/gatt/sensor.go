package gatt

import (
	"github.com/pkg/errors"

	"github.com/Krajiyah/ble-services/pkg/util"
)

const (
	SensorServiceName = "battery"
	LevelName         = "level"

	maxLevel = 100
)

// battery level: uint8, exponent 0, unit percentage (0x27AD), bluetooth SIG namespace
var levelFormat = []byte{0x04, 0x00, 0xAD, 0x27, 0x01, 0x00, 0x00}

type SensorConfig struct {
	// PollOnRead refreshes the level from the application on every peer read instead of
	// serving the last value sent.
	PollOnRead bool
	// WritableLevel adds write to the level characteristic. Accepted writes are discarded.
	WritableLevel bool
	InitialLevel  uint8
}

// SensorCallbacks are the application hooks of the sensor service. Any of them may be nil.
type SensorCallbacks struct {
	Level func() uint8
}

// SensorService exposes one numeric reading (0-100) over read and notify
type SensorService struct {
	cfg      SensorConfig
	binding  Binding
	level    valueCell
	notifier *Notifier
	read     ReadHandler
	write    WriteHandler
}

func NewSensorService(cfg SensorConfig) *SensorService {
	s := &SensorService{cfg: cfg, notifier: NewNotifier(SensorServiceName + "/" + LevelName)}
	s.level.store(cfg.InitialLevel)
	s.read = newReadHandler(cfg.PollOnRead, &s.binding, &s.level)
	s.write = newWriteHandler(LevelName, Range(0, maxLevel), nil)
	return s
}

// Init registers the application hooks. It always succeeds; cb may be nil.
func (s *SensorService) Init(cb *SensorCallbacks) error {
	var read ReadSource
	if cb != nil && cb.Level != nil {
		level := cb.Level
		read = func() byte { return level() }
	}
	s.binding.Register(read, nil)
	return nil
}

func (s *SensorService) Definition() ServiceDef {
	level := CharacteristicDef{
		Name:        LevelName,
		UUID:        util.UUID16(util.BatteryLevelUUID),
		Properties:  PropRead | PropNotify,
		Permissions: PermRead,
		Description: "Battery level between 0 and 100 percent",
		Format:      levelFormat,
		Read:        s.read,
		Notify:      s.notifier,
	}
	if s.cfg.WritableLevel {
		level.Properties |= PropWrite
		level.Permissions |= PermWrite
		level.Write = s.write
	}
	return ServiceDef{
		Name:            SensorServiceName,
		UUID:            util.UUID16(util.BatteryServiceUUID),
		Characteristics: []CharacteristicDef{level},
	}
}

// ReadLevel is the level read handler
func (s *SensorService) ReadLevel(offset int, capacity int) ([]byte, error) {
	return s.read(offset, capacity)
}

// WriteLevel is the level write validator. Values outside 0-100 are rejected; accepted
// values are acknowledged and not applied.
func (s *SensorService) WriteLevel(data []byte, offset int) (int, error) {
	return s.write(data, offset)
}

// SendLevel notifies level to subscribed peers. The last known level only changes when
// the notification was submitted; a failed send leaves it untouched.
func (s *SensorService) SendLevel(level uint8) error {
	if level > maxLevel {
		return errors.Errorf("battery level %d out of range 0-%d", level, maxLevel)
	}
	if err := s.notifier.Send(level); err != nil {
		return err
	}
	s.level.store(level)
	return nil
}

// Level is the last known level
func (s *SensorService) Level() uint8 { return s.level.load() }

// Subscription reports whether a peer has notifications enabled. Only the configuration
// descriptor changes it.
func (s *SensorService) Subscription() SubscriptionStatus { return s.notifier.Subscription() }
