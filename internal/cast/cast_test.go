package cast

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castkeep/castkeep/internal/events"
	"github.com/castkeep/castkeep/internal/library"
	"github.com/castkeep/castkeep/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock lets tests advance a SimDevice's playback deterministically.
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func simWithClock(id, name string) (*SimDevice, *fakeClock) {
	clk := &fakeClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	d := NewSimDevice(id, name)
	d.now = clk.now
	return d, clk
}

func setupController(t *testing.T) (*Controller, *service.Library, *events.Bus) {
	t.Helper()

	store, err := library.Open(filepath.Join(t.TempDir(), "media.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	bus := events.NewBus(nil, testLogger())
	t.Cleanup(func() { _ = bus.Close() })

	svc := service.NewLibrary(store, bus, testLogger())
	return NewController(svc, bus, testLogger()), svc, bus
}

func seedRecordWithTrack(t *testing.T, svc *service.Library) *library.MediaRecord {
	t.Helper()
	ctx := context.Background()

	rec, err := svc.Save(ctx, service.SaveParams{
		PageURL:  "http://example.com/bunny",
		Title:    "Big Buck Bunny",
		MimeType: "video/mp4",
	})
	require.NoError(t, err)
	_, err = svc.CreateTrack(ctx, rec.ID, "http://cdn.example.com/bunny.mp4", "1080p")
	require.NoError(t, err)

	got, err := svc.CheckItemForURL(ctx, rec.PageURL)
	require.NoError(t, err)
	return got
}

func TestSimDevice_PositionAdvancesWhilePlaying(t *testing.T) {
	d, clk := simWithClock("sim-1", "Living Room")
	ctx := context.Background()

	require.NoError(t, d.Connect(ctx))
	require.NoError(t, d.Load(ctx, LoadRequest{ContentURL: "http://x", StartAt: 10}))

	clk.advance(5 * time.Second)
	st, err := d.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatePlaying, st.State)
	assert.InDelta(t, 15, st.Position, 0.001)

	require.NoError(t, d.Pause(ctx))
	clk.advance(30 * time.Second)
	st, err = d.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatePaused, st.State)
	assert.InDelta(t, 15, st.Position, 0.001)

	require.NoError(t, d.Seek(ctx, 60))
	require.NoError(t, d.Play(ctx))
	clk.advance(2 * time.Second)
	st, err = d.Status(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 62, st.Position, 0.001)
}

func TestSimDevice_RequiresConnection(t *testing.T) {
	d := NewSimDevice("sim-1", "Living Room")
	ctx := context.Background()

	require.ErrorIs(t, d.Load(ctx, LoadRequest{}), ErrNotConnected)
	_, err := d.Status(ctx)
	require.ErrorIs(t, err, ErrNotConnected)

	require.NoError(t, d.Connect(ctx))
	require.ErrorIs(t, d.Play(ctx), ErrNoMedia)
}

func TestController_SessionLifecycle(t *testing.T) {
	ctrl, svc, bus := setupController(t)
	ctx := context.Background()
	rec := seedRecordWithTrack(t, svc)

	connected := bus.Subscribe(events.EventDeviceConnected, 4)
	stateChanged := bus.Subscribe(events.EventMediaStateChanged, 8)
	disconnected := bus.Subscribe(events.EventDeviceDisconnect, 4)

	d, clk := simWithClock("sim-1", "Living Room")
	require.NoError(t, ctrl.StartSession(ctx, d))

	e := <-connected
	dc, ok := e.(*events.DeviceConnected)
	require.True(t, ok)
	assert.Equal(t, "sim-1", dc.DeviceID)

	require.NoError(t, ctrl.CastRecord(ctx, rec, 0))
	e = <-stateChanged
	sc, ok := e.(*events.MediaStateChanged)
	require.True(t, ok)
	assert.Equal(t, string(StatePlaying), sc.State)
	assert.Equal(t, rec.ID, sc.RecordID)

	clk.advance(90 * time.Second)
	require.NoError(t, ctrl.Pause(ctx))
	e = <-stateChanged
	sc = e.(*events.MediaStateChanged)
	assert.Equal(t, string(StatePaused), sc.State)
	assert.InDelta(t, 90, sc.Position, 0.001)

	require.NoError(t, ctrl.EndSession(ctx))
	e = <-disconnected
	dd, ok := e.(*events.DeviceDisconnected)
	require.True(t, ok)
	assert.Equal(t, "sim-1", dd.DeviceID)

	// Progress persisted: record is seen and resumes at the pause point.
	got, err := svc.CheckItemForURL(ctx, rec.PageURL)
	require.NoError(t, err)
	assert.True(t, got.HasBeenSeen())
	require.NotNil(t, got.StartTime)
	assert.InDelta(t, 90, *got.StartTime, 0.001)
}

func TestController_ResumeFromStoredOffset(t *testing.T) {
	ctrl, svc, _ := setupController(t)
	ctx := context.Background()
	rec := seedRecordWithTrack(t, svc)

	require.NoError(t, svc.RecordProgress(ctx, rec.ID, 0, 42))
	rec, err := svc.CheckItemForURL(ctx, rec.PageURL)
	require.NoError(t, err)

	d, _ := simWithClock("sim-1", "Living Room")
	require.NoError(t, ctrl.StartSession(ctx, d))
	require.NoError(t, ctrl.CastRecord(ctx, rec, 0))

	st, err := ctrl.Status(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 42, st.Position, 0.001)
}

func TestController_CastWithoutSession(t *testing.T) {
	ctrl, svc, _ := setupController(t)
	rec := seedRecordWithTrack(t, svc)

	require.ErrorIs(t, ctrl.CastRecord(context.Background(), rec, 0), ErrNotConnected)
	require.ErrorIs(t, ctrl.Pause(context.Background()), ErrNotConnected)
}

func TestController_CastBadTrackIndex(t *testing.T) {
	ctrl, svc, _ := setupController(t)
	ctx := context.Background()
	rec := seedRecordWithTrack(t, svc)

	d, _ := simWithClock("sim-1", "Living Room")
	require.NoError(t, ctrl.StartSession(ctx, d))
	require.ErrorIs(t, ctrl.CastRecord(ctx, rec, 3), library.ErrNotFound)
}

func TestController_StartSessionReplacesExisting(t *testing.T) {
	ctrl, _, bus := setupController(t)
	ctx := context.Background()

	disconnected := bus.Subscribe(events.EventDeviceDisconnect, 4)

	first, _ := simWithClock("sim-1", "Living Room")
	second, _ := simWithClock("sim-2", "Bedroom")
	require.NoError(t, ctrl.StartSession(ctx, first))
	require.NoError(t, ctrl.StartSession(ctx, second))

	e := <-disconnected
	dd := e.(*events.DeviceDisconnected)
	assert.Equal(t, "sim-1", dd.DeviceID)
	assert.Equal(t, "replaced", dd.Reason)
}
