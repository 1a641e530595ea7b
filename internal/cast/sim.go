package cast

import (
	"context"
	"sync"
	"time"
)

// SimDevice is an in-process Device that advances playback position
// with wall-clock time. It exists for local testing and for driving
// sessions without real hardware on the network.
type SimDevice struct {
	id   string
	name string

	mu        sync.Mutex
	connected bool
	loaded    bool
	state     State
	position  float64   // position at the last state change
	playingAt time.Time // when playback last started, valid while playing

	now func() time.Time // injectable clock
}

// NewSimDevice creates a disconnected simulator.
func NewSimDevice(id, name string) *SimDevice {
	return &SimDevice{id: id, name: name, state: StateIdle, now: time.Now}
}

func (d *SimDevice) ID() string   { return d.id }
func (d *SimDevice) Name() string { return d.name }

func (d *SimDevice) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connected = true
	return nil
}

func (d *SimDevice) Disconnect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connected = false
	d.loaded = false
	d.state = StateIdle
	d.position = 0
	return nil
}

func (d *SimDevice) Load(ctx context.Context, req LoadRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.connected {
		return ErrNotConnected
	}
	d.loaded = true
	d.position = req.StartAt
	d.state = StatePlaying
	d.playingAt = d.now()
	return nil
}

func (d *SimDevice) Play(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkMedia(); err != nil {
		return err
	}
	if d.state != StatePlaying {
		d.state = StatePlaying
		d.playingAt = d.now()
	}
	return nil
}

func (d *SimDevice) Pause(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkMedia(); err != nil {
		return err
	}
	d.position = d.positionLocked()
	d.state = StatePaused
	return nil
}

func (d *SimDevice) Stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkMedia(); err != nil {
		return err
	}
	d.position = d.positionLocked()
	d.state = StateStopped
	d.loaded = false
	return nil
}

func (d *SimDevice) Seek(ctx context.Context, seconds float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkMedia(); err != nil {
		return err
	}
	if seconds < 0 {
		seconds = 0
	}
	d.position = seconds
	if d.state == StatePlaying {
		d.playingAt = d.now()
	}
	return nil
}

func (d *SimDevice) Status(ctx context.Context) (Status, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.connected {
		return Status{}, ErrNotConnected
	}
	return Status{State: d.state, Position: d.positionLocked()}, nil
}

func (d *SimDevice) checkMedia() error {
	if !d.connected {
		return ErrNotConnected
	}
	if !d.loaded {
		return ErrNoMedia
	}
	return nil
}

// positionLocked computes the live position, adding elapsed wall time
// while playing. Callers hold d.mu.
func (d *SimDevice) positionLocked() float64 {
	if d.state == StatePlaying {
		return d.position + d.now().Sub(d.playingAt).Seconds()
	}
	return d.position
}
