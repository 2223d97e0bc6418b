package models

// BLEServerStatusListener receives peripheral level events from the go-ble server binding
type BLEServerStatusListener interface {
	OnServerStatusChanged(BLEServerStatus, error)
	OnSubscriptionChanged(service string, characteristic string, state SubscriptionState)
	OnAccessRejected(service string, characteristic string, err error)
	OnInternalError(error)
}

// BLEPeerListener receives notifications delivered to a simulated peer
type BLEPeerListener interface {
	OnNotification(handle uint16, payload []byte)
}
