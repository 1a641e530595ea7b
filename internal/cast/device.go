// Package cast drives playback sessions on remote media devices. The
// Device interface is the transport boundary; the Controller above it
// owns session lifecycle, event publication, and progress persistence.
package cast

import (
	"context"
	"errors"
)

// State is a device's playback state.
type State string

const (
	StateIdle      State = "idle"
	StateBuffering State = "buffering"
	StatePlaying   State = "playing"
	StatePaused    State = "paused"
	StateStopped   State = "stopped"
)

// ErrNotConnected is returned for media operations outside a session.
var ErrNotConnected = errors.New("device not connected")

// ErrNoMedia is returned for transport operations before a Load.
var ErrNoMedia = errors.New("no media loaded")

// LoadRequest describes the media to start on a device.
type LoadRequest struct {
	ContentURL  string
	ContentType string
	Title       string
	StartAt     float64 // resume offset in seconds
}

// Status is a point-in-time snapshot of device playback.
type Status struct {
	State    State
	Position float64 // seconds into the current media
}

// Device is one cast-capable endpoint. Implementations are not
// required to be safe for concurrent use; the Controller serializes
// access.
type Device interface {
	ID() string
	Name() string

	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error

	Load(ctx context.Context, req LoadRequest) error
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Stop(ctx context.Context) error
	Seek(ctx context.Context, seconds float64) error

	Status(ctx context.Context) (Status, error)
}
