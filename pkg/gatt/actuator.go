package gatt

import (
	"github.com/Krajiyah/ble-services/pkg/util"
)

const (
	ActuatorServiceName = "actuator"
	ButtonName          = "button"
	LEDName             = "led"
)

type ActuatorConfig struct {
	// PollOnRead asks the application for the button state on every peer read instead of
	// serving the last state sent.
	PollOnRead bool
}

// ActuatorCallbacks are the application hooks of the actuator service. Any of them may be nil.
type ActuatorCallbacks struct {
	LEDChanged  func(on bool)
	ButtonState func() bool
}

// ActuatorService exposes a binary output (LED, write) and a binary input (button,
// read and notify)
type ActuatorService struct {
	cfg      ActuatorConfig
	binding  Binding
	button   valueCell
	led      valueCell
	notifier *Notifier
	read     ReadHandler
	write    WriteHandler
}

func NewActuatorService(cfg ActuatorConfig) *ActuatorService {
	s := &ActuatorService{cfg: cfg, notifier: NewNotifier(ActuatorServiceName + "/" + ButtonName)}
	s.read = newReadHandler(cfg.PollOnRead, &s.binding, &s.button)
	s.write = newWriteHandler(LEDName, Binary, func(v byte) {
		s.led.store(v)
		s.binding.InvokeWrite(v)
	})
	return s
}

// Init registers the application hooks. It always succeeds; cb may be nil.
func (s *ActuatorService) Init(cb *ActuatorCallbacks) error {
	var read ReadSource
	var write WriteSink
	if cb != nil && cb.ButtonState != nil {
		button := cb.ButtonState
		read = func() byte { return boolToByte(button()) }
	}
	if cb != nil && cb.LEDChanged != nil {
		led := cb.LEDChanged
		write = func(v byte) { led(v != 0) }
	}
	s.binding.Register(read, write)
	return nil
}

func (s *ActuatorService) Definition() ServiceDef {
	return ServiceDef{
		Name: ActuatorServiceName,
		UUID: util.UUID16(util.WeightScaleServiceUUID),
		Characteristics: []CharacteristicDef{
			{
				Name:        ButtonName,
				UUID:        util.UUID16(util.ButtonStateUUID),
				Properties:  PropRead | PropNotify,
				Permissions: PermRead,
				Description: "Button state",
				Read:        s.read,
				Notify:      s.notifier,
			},
			{
				Name:        LEDName,
				UUID:        util.UUID16(util.LEDStateUUID),
				Properties:  PropWrite,
				Permissions: PermWrite,
				Description: "LED state",
				Write:       s.write,
			},
		},
	}
}

// ReadButton is the button read handler
func (s *ActuatorService) ReadButton(offset int, capacity int) ([]byte, error) {
	return s.read(offset, capacity)
}

// WriteLED is the LED write handler: exactly one byte, offset 0, value 0 or 1
func (s *ActuatorService) WriteLED(data []byte, offset int) (int, error) {
	return s.write(data, offset)
}

// SendButtonState notifies pressed to subscribed peers. The last known state only
// changes when the notification was submitted; a failed send leaves it untouched.
func (s *ActuatorService) SendButtonState(pressed bool) error {
	v := boolToByte(pressed)
	if err := s.notifier.Send(v); err != nil {
		return err
	}
	s.button.store(v)
	return nil
}

func (s *ActuatorService) Button() bool { return s.button.load() != 0 }

// LED is the last state accepted from a peer
func (s *ActuatorService) LED() bool { return s.led.load() != 0 }

// Subscription reports whether a peer has notifications enabled. Only the configuration
// descriptor changes it.
func (s *ActuatorService) Subscription() SubscriptionStatus { return s.notifier.Subscription() }

func boolToByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
