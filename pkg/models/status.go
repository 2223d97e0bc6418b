package models

// BLEServerStatus is an enum for all possible status conditions for ble server
type BLEServerStatus int

const (
	// Running indicates ble server is healthy and running
	Running BLEServerStatus = iota
	// Crashed indicates ble server is not running and has returned error in execution
	Crashed
)

func (s BLEServerStatus) String() string {
	return []string{"Running", "Crashed"}[s]
}

// SubscriptionState is the notification gate of one notifiable characteristic
type SubscriptionState int

const (
	// Unsubscribed indicates no peer has notifications enabled (initial state)
	Unsubscribed SubscriptionState = iota
	// Subscribed indicates a peer enabled notifications through the configuration descriptor
	Subscribed
)

func (s SubscriptionState) String() string {
	return []string{"Unsubscribed", "Subscribed"}[s]
}
