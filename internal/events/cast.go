package events

// DeviceDiscovered is emitted when a cast-capable device shows up.
type DeviceDiscovered struct {
	BaseEvent
	DeviceID string `json:"device_id"`
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
}

// DeviceConnected is emitted when a session to a device is established.
type DeviceConnected struct {
	BaseEvent
	DeviceID string `json:"device_id"`
	Name     string `json:"name"`
}

// DeviceDisconnected is emitted when a device session ends.
type DeviceDisconnected struct {
	BaseEvent
	DeviceID string `json:"device_id"`
	Reason   string `json:"reason,omitempty"`
}

// MediaStateChanged is emitted on every playback state transition of a
// cast session.
type MediaStateChanged struct {
	BaseEvent
	DeviceID string  `json:"device_id"`
	RecordID int64   `json:"record_id"`
	State    string  `json:"state"`
	Position float64 `json:"position"`
}
