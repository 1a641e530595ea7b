package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/castkeep/castkeep/internal/events"
	"github.com/castkeep/castkeep/internal/library"
	"github.com/castkeep/castkeep/internal/resolver"
	"github.com/castkeep/castkeep/internal/resolver/mocks"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupService(t *testing.T) (*Library, *events.Bus) {
	t.Helper()

	store, err := library.Open(filepath.Join(t.TempDir(), "media.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	bus := events.NewBus(nil, testLogger())
	t.Cleanup(func() { _ = bus.Close() })

	return NewLibrary(store, bus, testLogger()), bus
}

func sampleParams(pageURL string) SaveParams {
	return SaveParams{
		PageURL:     pageURL,
		Title:       "Stalker",
		Description: "Three men enter the Zone",
		Genre:       "Drama",
		SubGenre:    "Sci-Fi",
		MimeType:    "video/mp4",
	}
}

func TestSave_CreatesRecordWithGenres(t *testing.T) {
	svc, bus := setupService(t)
	ctx := context.Background()

	added := bus.Subscribe(events.EventRecordAdded, 4)

	rec, err := svc.Save(ctx, sampleParams("http://example.com/stalker"))
	require.NoError(t, err)
	require.NotZero(t, rec.ID)
	assert.Equal(t, "Stalker", rec.Title)
	assert.True(t, rec.NeverPlayed)

	genres, err := svc.store.GenresForRecord(rec.ID)
	require.NoError(t, err)
	require.Len(t, genres, 2)
	assert.Equal(t, "Drama", genres[0].Name)
	assert.Equal(t, "Sci-Fi", genres[1].Name)

	e := <-added
	ra, ok := e.(*events.RecordAdded)
	require.True(t, ok)
	assert.Equal(t, rec.ID, ra.RecordID)
	assert.Equal(t, []string{"Drama", "Sci-Fi"}, ra.Genres)
}

func TestSave_SamePageURLResolvesExisting(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	first, err := svc.Save(ctx, sampleParams("http://example.com/stalker"))
	require.NoError(t, err)

	// Second save with different metadata must not create or mutate.
	p := sampleParams("http://example.com/stalker")
	p.Title = "Something Else"
	second, err := svc.Save(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Stalker", second.Title)

	records, total, err := svc.ListRecordsPage(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, records, 1)
}

func TestSave_EmptyGenreSkipped(t *testing.T) {
	svc, _ := setupService(t)

	p := sampleParams("http://example.com/no-genre")
	p.Genre = ""
	p.SubGenre = ""
	rec, err := svc.Save(context.Background(), p)
	require.NoError(t, err)

	genres, err := svc.store.GenresForRecord(rec.ID)
	require.NoError(t, err)
	assert.Empty(t, genres)
}

func TestSave_InvalidRecordRollsBack(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	p := sampleParams("http://example.com/broken")
	p.Title = ""
	_, err := svc.Save(ctx, p)
	require.ErrorIs(t, err, library.ErrConstraint)

	_, total, err := svc.ListRecordsPage(ctx, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)

	// The failed save must not leave genre entities behind either.
	genres, err := svc.store.ListGenres()
	require.NoError(t, err)
	assert.Empty(t, genres)
}

func TestCheckItemForURL(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.CheckItemForURL(ctx, "http://example.com/stalker")
	require.ErrorIs(t, err, library.ErrNotFound)

	rec, err := svc.Save(ctx, sampleParams("http://example.com/stalker"))
	require.NoError(t, err)

	got, err := svc.CheckItemForURL(ctx, "http://example.com/stalker")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
}

func TestListRecords_OrderedByDateAdded(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	for _, u := range []string{"http://e.com/a", "http://e.com/b", "http://e.com/c"} {
		p := sampleParams(u)
		p.Title = u
		_, err := svc.Save(ctx, p)
		require.NoError(t, err)
	}

	records, err := svc.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "http://e.com/a", records[0].PageURL)
	assert.Equal(t, "http://e.com/c", records[2].PageURL)

	page, total, err := svc.ListRecordsPage(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "http://e.com/b", page[0].PageURL)
}

func TestCreateTrack(t *testing.T) {
	svc, bus := setupService(t)
	ctx := context.Background()

	added := bus.Subscribe(events.EventTrackAdded, 4)

	rec, err := svc.Save(ctx, sampleParams("http://example.com/stalker"))
	require.NoError(t, err)

	tr1, err := svc.CreateTrack(ctx, rec.ID, "http://cdn.example.com/480", "480p")
	require.NoError(t, err)
	tr2, err := svc.CreateTrack(ctx, rec.ID, "http://cdn.example.com/1080", "1080p")
	require.NoError(t, err)
	assert.Equal(t, 0, tr1.Position)
	assert.Equal(t, 1, tr2.Position)

	e := <-added
	ta, ok := e.(*events.TrackAdded)
	require.True(t, ok)
	assert.Equal(t, tr1.ID, ta.TrackID)

	_, err = svc.CreateTrack(ctx, rec.ID+99, "http://cdn.example.com/x", "x")
	require.ErrorIs(t, err, library.ErrNotFound)
}

func TestDeleteAllTracks(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	rec, err := svc.Save(ctx, sampleParams("http://example.com/stalker"))
	require.NoError(t, err)
	_, err = svc.CreateTrack(ctx, rec.ID, "http://cdn.example.com/480", "480p")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAllTracks(ctx, rec.ID))

	got, err := svc.store.GetRecord(rec.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tracks)
}

func TestDeleteRecord(t *testing.T) {
	svc, bus := setupService(t)
	ctx := context.Background()

	removed := bus.Subscribe(events.EventRecordRemoved, 4)

	rec, err := svc.Save(ctx, sampleParams("http://example.com/stalker"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRecord(ctx, rec.ID))
	_, err = svc.CheckItemForURL(ctx, rec.PageURL)
	require.ErrorIs(t, err, library.ErrNotFound)

	e := <-removed
	rr, ok := e.(*events.RecordRemoved)
	require.True(t, ok)
	assert.Equal(t, rec.ID, rr.RecordID)
	assert.Equal(t, "Stalker", rr.Title)

	// Deleting again is a no-op.
	require.NoError(t, svc.DeleteRecord(ctx, rec.ID))
}

func TestRecordProgress(t *testing.T) {
	svc, bus := setupService(t)
	ctx := context.Background()

	seen := bus.Subscribe(events.EventRecordSeen, 4)

	rec, err := svc.Save(ctx, sampleParams("http://example.com/stalker"))
	require.NoError(t, err)
	tr, err := svc.CreateTrack(ctx, rec.ID, "http://cdn.example.com/480", "480p")
	require.NoError(t, err)

	require.NoError(t, svc.RecordProgress(ctx, rec.ID, 0, 42.5))

	got, err := svc.store.GetRecord(rec.ID)
	require.NoError(t, err)
	assert.False(t, got.NeverPlayed)
	require.NotNil(t, got.StartTime)
	assert.Equal(t, 42.5, *got.StartTime)
	assert.True(t, got.HasBeenSeen())

	track, err := svc.store.TrackAt(rec.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, tr.ID, track.ID)
	require.NotNil(t, track.PlayTime)
	assert.Equal(t, 42.5, *track.PlayTime)

	e := <-seen
	rs, ok := e.(*events.RecordSeen)
	require.True(t, ok)
	assert.Equal(t, rec.ID, rs.RecordID)
	assert.Equal(t, 42.5, rs.Position)

	// Subsequent progress updates the offset without a second event.
	require.NoError(t, svc.RecordProgress(ctx, rec.ID, 0, 120))
	select {
	case e := <-seen:
		t.Fatalf("unexpected second seen event: %v", e)
	default:
	}

	require.ErrorIs(t, svc.RecordProgress(ctx, rec.ID, 5, 1), library.ErrNotFound)
}

func TestImportFromURL(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	r := mocks.NewMockResolver(ctrl)
	r.EXPECT().Resolve(gomock.Any(), "http://example.com/solaris").Return(&resolver.Metadata{
		Title:    "Solaris",
		MimeType: "video/mp4",
		Tracks: []resolver.TrackMeta{
			{Name: "480p", Address: "http://cdn.example.com/480"},
			{Name: "1080p", Address: "http://cdn.example.com/1080"},
		},
	}, nil)

	rec, err := svc.ImportFromURL(ctx, r, "http://example.com/solaris")
	require.NoError(t, err)
	assert.Equal(t, "Solaris", rec.Title)
	require.Len(t, rec.Tracks, 2)

	tracks, err := svc.store.ListTracks(rec.ID)
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "480p", tracks[0].Name)
	assert.Equal(t, "1080p", tracks[1].Name)
}

func TestImportFromURL_ResolveFailurePersistsNothing(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	r := mocks.NewMockResolver(ctrl)
	r.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(nil, resolver.ErrUnresolvable)

	_, err := svc.ImportFromURL(ctx, r, "http://example.com/unknown")
	require.ErrorIs(t, err, resolver.ErrUnresolvable)

	_, total, err := svc.ListRecordsPage(ctx, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestImportFromURL_KnownURLSkipsTracks(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	existing, err := svc.Save(ctx, sampleParams("http://example.com/stalker"))
	require.NoError(t, err)

	r := mocks.NewMockResolver(ctrl)
	r.EXPECT().Resolve(gomock.Any(), "http://example.com/stalker").Return(&resolver.Metadata{
		Title:  "Stalker (remux)",
		Tracks: []resolver.TrackMeta{{Name: "4K", Address: "http://cdn.example.com/4k"}},
	}, nil)

	rec, err := svc.ImportFromURL(ctx, r, "http://example.com/stalker")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, rec.ID)

	tracks, err := svc.store.ListTracks(existing.ID)
	require.NoError(t, err)
	assert.Empty(t, tracks)
}

func TestSave_ContextCancelled(t *testing.T) {
	svc, _ := setupService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Save(ctx, sampleParams("http://example.com/x"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestSave_ConcurrentCallersSerialize(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	const n = 8
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := svc.Save(ctx, sampleParams("http://example.com/same"))
			errs <- err
		}()
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-errs)
	}

	_, total, err := svc.ListRecordsPage(ctx, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}
