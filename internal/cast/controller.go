package cast

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/castkeep/castkeep/internal/events"
	"github.com/castkeep/castkeep/internal/library"
	"github.com/castkeep/castkeep/internal/service"
)

// Controller runs one playback session at a time against a Device.
// It publishes session and state events on the bus and persists
// playback progress through the service when the session ends, so a
// later session resumes where this one stopped.
type Controller struct {
	svc *service.Library
	bus *events.Bus
	log *slog.Logger

	mu         sync.Mutex
	device     Device
	record     *library.MediaRecord
	trackIndex int
}

// NewController creates a controller with no active session. The bus
// is optional.
func NewController(svc *service.Library, bus *events.Bus, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{svc: svc, bus: bus, log: log.With("component", "cast")}
}

// StartSession connects to the device and makes it the session target.
// An existing session ends first, persisting its progress.
func (c *Controller) StartSession(ctx context.Context, d Device) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil {
		if err := c.endSessionLocked(ctx, "replaced"); err != nil {
			return err
		}
	}
	if err := d.Connect(ctx); err != nil {
		return fmt.Errorf("connect %s: %w", d.Name(), err)
	}
	c.device = d

	c.log.Info("session started", "device", d.Name())
	c.publish(ctx, &events.DeviceConnected{
		BaseEvent: events.NewBaseEvent(events.EventDeviceConnected, events.EntityDevice, 0),
		DeviceID:  d.ID(),
		Name:      d.Name(),
	})
	return nil
}

// CastRecord loads the record's track at trackIndex on the session
// device and starts playback from the record's stored resume offset.
func (c *Controller) CastRecord(ctx context.Context, rec *library.MediaRecord, trackIndex int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device == nil {
		return ErrNotConnected
	}
	tr, err := rec.TrackAt(trackIndex)
	if err != nil {
		return fmt.Errorf("cast %q: %w", rec.Title, err)
	}

	var startAt float64
	if rec.StartTime != nil {
		startAt = *rec.StartTime
	}
	req := LoadRequest{
		ContentURL:  tr.Address,
		ContentType: rec.MimeType,
		Title:       rec.Title,
		StartAt:     startAt,
	}
	if err := c.device.Load(ctx, req); err != nil {
		return fmt.Errorf("cast %q: %w", rec.Title, err)
	}
	c.record = rec
	c.trackIndex = trackIndex

	c.log.Info("casting", "title", rec.Title, "track", tr.Name, "start_at", startAt)
	c.publishState(ctx, StatePlaying, startAt)
	return nil
}

// Play resumes the current media.
func (c *Controller) Play(ctx context.Context) error {
	return c.transport(ctx, StatePlaying, Device.Play)
}

// Pause pauses the current media.
func (c *Controller) Pause(ctx context.Context) error {
	return c.transport(ctx, StatePaused, Device.Pause)
}

// Stop stops the current media; the session stays connected.
func (c *Controller) Stop(ctx context.Context) error {
	return c.transport(ctx, StateStopped, Device.Stop)
}

// Seek jumps to an absolute position in the current media.
func (c *Controller) Seek(ctx context.Context, seconds float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return ErrNotConnected
	}
	if err := c.device.Seek(ctx, seconds); err != nil {
		return err
	}
	st, err := c.device.Status(ctx)
	if err != nil {
		return err
	}
	c.publishState(ctx, st.State, st.Position)
	return nil
}

// Status reports the session device's playback snapshot.
func (c *Controller) Status(ctx context.Context) (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return Status{}, ErrNotConnected
	}
	return c.device.Status(ctx)
}

// EndSession persists playback progress, disconnects the device, and
// clears the session.
func (c *Controller) EndSession(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return nil
	}
	return c.endSessionLocked(ctx, "requested")
}

func (c *Controller) endSessionLocked(ctx context.Context, reason string) error {
	d := c.device

	if c.record != nil {
		if st, err := d.Status(ctx); err == nil && st.Position > 0 {
			if err := c.svc.RecordProgress(ctx, c.record.ID, c.trackIndex, st.Position); err != nil {
				c.log.Error("persist progress", "record_id", c.record.ID, "error", err)
			}
		}
	}
	if err := d.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect %s: %w", d.Name(), err)
	}
	c.device = nil
	c.record = nil
	c.trackIndex = 0

	c.log.Info("session ended", "device", d.Name(), "reason", reason)
	c.publish(ctx, &events.DeviceDisconnected{
		BaseEvent: events.NewBaseEvent(events.EventDeviceDisconnect, events.EntityDevice, 0),
		DeviceID:  d.ID(),
		Reason:    reason,
	})
	return nil
}

// transport runs one transport call and publishes the resulting state.
func (c *Controller) transport(ctx context.Context, want State, op func(Device, context.Context) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return ErrNotConnected
	}
	if err := op(c.device, ctx); err != nil {
		return err
	}

	position := 0.0
	if st, err := c.device.Status(ctx); err == nil {
		position = st.Position
	}
	c.publishState(ctx, want, position)
	return nil
}

func (c *Controller) publishState(ctx context.Context, state State, position float64) {
	if c.record == nil {
		return
	}
	c.publish(ctx, &events.MediaStateChanged{
		BaseEvent: events.NewBaseEvent(events.EventMediaStateChanged, events.EntityRecord, c.record.ID),
		DeviceID:  c.device.ID(),
		RecordID:  c.record.ID,
		State:     string(state),
		Position:  position,
	})
}

func (c *Controller) publish(ctx context.Context, e events.Event) {
	if c.bus == nil {
		return
	}
	if err := c.bus.Publish(ctx, e); err != nil {
		c.log.Error("publish event", "type", e.EventType(), "error", err)
	}
}
