package util

const (
	// BatteryServiceUUID is the assigned number of the sensor-style (battery) service
	BatteryServiceUUID uint16 = 0x180F
	// BatteryLevelUUID is the assigned number of the battery level characteristic (read, notify)
	BatteryLevelUUID uint16 = 0x2A19
	// WeightScaleServiceUUID is the assigned number of the actuator-style service
	WeightScaleServiceUUID uint16 = 0x181D
	// ButtonStateUUID is the characteristic carrying the binary input (read, notify)
	ButtonStateUUID uint16 = 0x2A9D
	// LEDStateUUID is the characteristic carrying the binary output (write)
	LEDStateUUID uint16 = 0x2A9E

	// ClientConfigUUID is the client characteristic configuration descriptor
	ClientConfigUUID uint16 = 0x2902
	// UserDescriptionUUID is the characteristic user description descriptor
	UserDescriptionUUID uint16 = 0x2901
	// PresentationFormatUUID is the characteristic presentation format descriptor
	PresentationFormatUUID uint16 = 0x2904

	// BaseUUID is the Bluetooth base UUID 16-bit assigned numbers are expanded over
	BaseUUID = "00000000-0000-1000-8000-00805F9B34FB"
)

// CCC descriptor values
const (
	CCCDisabled uint16 = 0x0000
	CCCNotify   uint16 = 0x0001
	CCCIndicate uint16 = 0x0002
)
