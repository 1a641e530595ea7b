package events

// Entity types
const (
	EntityRecord = "record"
	EntityTrack  = "track"
	EntityDevice = "device"
)

// Event type constants
const (
	EventRecordAdded       = "record.added"
	EventRecordRemoved     = "record.removed"
	EventRecordSeen        = "record.seen"
	EventTrackAdded        = "track.added"
	EventDeviceDiscovered  = "device.discovered"
	EventDeviceConnected   = "device.connected"
	EventDeviceDisconnect  = "device.disconnected"
	EventMediaStateChanged = "media.state.changed"
)

// RecordAdded is emitted when a new record lands in the library.
type RecordAdded struct {
	BaseEvent
	RecordID int64    `json:"record_id"`
	Title    string   `json:"title"`
	PageURL  string   `json:"page_url"`
	Genres   []string `json:"genres,omitempty"`
}

// RecordRemoved is emitted when a record is deleted from the library.
type RecordRemoved struct {
	BaseEvent
	RecordID int64  `json:"record_id"`
	Title    string `json:"title"`
}

// RecordSeen is emitted the first time playback progress is recorded
// for a record.
type RecordSeen struct {
	BaseEvent
	RecordID int64   `json:"record_id"`
	Position float64 `json:"position"`
}

// TrackAdded is emitted when a track is appended to a record.
type TrackAdded struct {
	BaseEvent
	RecordID int64  `json:"record_id"`
	TrackID  int64  `json:"track_id"`
	Name     string `json:"name"`
}
