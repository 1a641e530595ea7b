// Package service coordinates library mutations behind a single-writer
// discipline. Every composite operation runs in one transaction so its
// disk visibility is all-or-nothing; reads go straight to the store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/castkeep/castkeep/internal/events"
	"github.com/castkeep/castkeep/internal/library"
	"github.com/castkeep/castkeep/internal/resolver"
)

// SaveParams carries the fields of a composite "add to library" call.
type SaveParams struct {
	PageURL      string
	Title        string
	Description  string
	Genre        string
	SubGenre     string
	ThumbnailURL string
	MimeType     string
}

// Library is the asynchronous-CRUD service over the media store.
// Mutating operations are serialized; concurrent callers queue on the
// writer lock and apply in acquisition order.
type Library struct {
	store *library.Store
	bus   *events.Bus
	log   *slog.Logger

	mu sync.Mutex // single-writer discipline for mutating operations
}

// NewLibrary creates the service. The bus is optional - pass nil to
// disable event publication.
func NewLibrary(store *library.Store, bus *events.Bus, log *slog.Logger) *Library {
	if log == nil {
		log = slog.Default()
	}
	return &Library{store: store, bus: bus, log: log}
}

// ListRecords returns every valid record ordered by date added then ID.
func (s *Library) ListRecords(ctx context.Context) ([]*library.MediaRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, _, err := s.store.ListRecords(library.RecordFilter{Valid: ptr(true)})
	return records, err
}

// ListRecordsPage returns one page of valid records plus the total
// count, for staged loading.
func (s *Library) ListRecordsPage(ctx context.Context, limit, offset int) ([]*library.MediaRecord, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	return s.store.ListRecords(library.RecordFilter{Valid: ptr(true), Limit: limit, Offset: offset})
}

// CheckItemForURL looks up the record whose page URL matches exactly.
// Returns library.ErrNotFound when absent - a normal outcome callers
// use for upsert decisions, not a failure.
func (s *Library) CheckItemForURL(ctx context.Context, pageURL string) (*library.MediaRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.GetRecordByPageURL(pageURL)
}

// Save is the composite add: find-or-create both genre entities, create
// the record, attach it, all in one transaction. When a valid record
// with the same page URL already exists, Save resolves with it instead
// of creating a duplicate.
func (s *Library) Save(ctx context.Context, p SaveParams) (*library.MediaRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, created, err := s.saveLocked(p, nil)
	if err != nil {
		return nil, err
	}
	if created {
		s.publish(ctx, recordAddedEvent(rec, p))
	}
	return rec, nil
}

// saveLocked runs the upsert inside one transaction. Tracks, when
// given, are appended in order for newly created records only. Callers
// hold s.mu.
func (s *Library) saveLocked(p SaveParams, tracks []resolver.TrackMeta) (*library.MediaRecord, bool, error) {
	existing, err := s.store.GetRecordByPageURL(p.PageURL)
	if err == nil {
		s.log.Debug("record already in library", "page_url", p.PageURL, "record_id", existing.ID)
		return existing, false, nil
	}
	if !errors.Is(err, library.ErrNotFound) {
		return nil, false, err
	}

	tx, err := s.store.Begin()
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = tx.Rollback() }()

	rec := &library.MediaRecord{
		Title:        p.Title,
		Details:      p.Description,
		PageURL:      p.PageURL,
		ThumbnailURL: p.ThumbnailURL,
		MimeType:     p.MimeType,
		NeverPlayed:  true,
	}
	if err := tx.AddRecord(rec); err != nil {
		return nil, false, fmt.Errorf("save record: %w", err)
	}

	for _, name := range genreNames(p.Genre, p.SubGenre) {
		g, _, err := tx.FindOrCreateGenre(name)
		if err != nil {
			return nil, false, fmt.Errorf("save record: %w", err)
		}
		if err := tx.AttachGenre(rec.ID, g.ID); err != nil {
			return nil, false, fmt.Errorf("save record: %w", err)
		}
	}

	for _, tm := range tracks {
		tr := &library.Track{RecordID: rec.ID, Name: tm.Name, Address: tm.Address}
		if err := tx.AddTrack(tr); err != nil {
			return nil, false, fmt.Errorf("save record: %w", err)
		}
		rec.Tracks = append(rec.Tracks, tr)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("save record: %w", err)
	}
	s.log.Info("record added", "record_id", rec.ID, "title", rec.Title, "tracks", len(rec.Tracks))
	return rec, true, nil
}

// ImportFromURL resolves a page URL through the given resolver and
// saves the result with its tracks, as one logical operation: a
// resolution failure persists nothing, and an already-known URL
// resolves to the existing record untouched.
func (s *Library) ImportFromURL(ctx context.Context, r resolver.Resolver, pageURL string) (*library.MediaRecord, error) {
	meta, err := r.Resolve(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", pageURL, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := SaveParams{
		PageURL:      pageURL,
		Title:        meta.Title,
		Description:  meta.Description,
		ThumbnailURL: meta.ThumbnailURL,
		MimeType:     meta.MimeType,
	}
	rec, created, err := s.saveLocked(p, meta.Tracks)
	if err != nil {
		return nil, err
	}
	if created {
		s.publish(ctx, recordAddedEvent(rec, p))
	}
	return rec, nil
}

// CreateTrack appends a new track at the end of the record's ordered
// sequence and resolves with it.
func (s *Library) CreateTrack(ctx context.Context, recordID int64, url, name string) (*library.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.store.Begin()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.GetRecord(recordID); err != nil {
		return nil, fmt.Errorf("create track: %w", err)
	}
	tr := &library.Track{RecordID: recordID, Name: name, Address: url}
	if err := tx.AddTrack(tr); err != nil {
		return nil, fmt.Errorf("create track: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create track: %w", err)
	}

	s.publish(ctx, &events.TrackAdded{
		BaseEvent: events.NewBaseEvent(events.EventTrackAdded, events.EntityTrack, tr.ID),
		RecordID:  recordID,
		TrackID:   tr.ID,
		Name:      name,
	})
	return tr, nil
}

// DeleteAllTracks removes every track owned by the record; the record
// itself is untouched.
func (s *Library) DeleteAllTracks(ctx context.Context, recordID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteTracks(recordID); err != nil {
		return fmt.Errorf("delete tracks: %w", err)
	}
	return nil
}

// DeleteRecord removes the record, its tracks (cascade), and its genre
// memberships. Genre entities survive.
func (s *Library) DeleteRecord(ctx context.Context, recordID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.store.GetRecord(recordID)
	if err != nil {
		if errors.Is(err, library.ErrNotFound) {
			return nil // already gone
		}
		return err
	}
	if err := s.store.DeleteRecord(recordID); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	s.log.Info("record removed", "record_id", recordID, "title", rec.Title)
	s.publish(ctx, &events.RecordRemoved{
		BaseEvent: events.NewBaseEvent(events.EventRecordRemoved, events.EntityRecord, recordID),
		RecordID:  recordID,
		Title:     rec.Title,
	})
	return nil
}

// RecordProgress stores playback progress: the track's play time, the
// record's resume offset, and the seen flag, in one transaction. The
// first recorded progress publishes a RecordSeen event.
func (s *Library) RecordProgress(ctx context.Context, recordID int64, trackIndex int, seconds float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.store.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	rec, err := tx.GetRecord(recordID)
	if err != nil {
		return fmt.Errorf("record progress: %w", err)
	}
	tr, err := tx.TrackAt(recordID, trackIndex)
	if err != nil {
		return fmt.Errorf("record progress: %w", err)
	}
	if err := tx.SetTrackProgress(tr.ID, seconds); err != nil {
		return fmt.Errorf("record progress: %w", err)
	}

	firstPlay := rec.NeverPlayed
	rec.NeverPlayed = false
	rec.StartTime = &seconds
	if err := tx.UpdateRecord(rec); err != nil {
		return fmt.Errorf("record progress: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record progress: %w", err)
	}

	if firstPlay {
		s.publish(ctx, &events.RecordSeen{
			BaseEvent: events.NewBaseEvent(events.EventRecordSeen, events.EntityRecord, recordID),
			RecordID:  recordID,
			Position:  seconds,
		})
	}
	return nil
}

func (s *Library) publish(ctx context.Context, e events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, e); err != nil {
		s.log.Error("publish event", "type", e.EventType(), "error", err)
	}
}

func recordAddedEvent(rec *library.MediaRecord, p SaveParams) *events.RecordAdded {
	return &events.RecordAdded{
		BaseEvent: events.NewBaseEvent(events.EventRecordAdded, events.EntityRecord, rec.ID),
		RecordID:  rec.ID,
		Title:     rec.Title,
		PageURL:   rec.PageURL,
		Genres:    genreNames(p.Genre, p.SubGenre),
	}
}

// genreNames returns the non-empty, deduplicated genre names of a save
// call, genre before sub-genre.
func genreNames(genre, subGenre string) []string {
	var names []string
	if genre != "" {
		names = append(names, genre)
	}
	if subGenre != "" && subGenre != genre {
		names = append(names, subGenre)
	}
	return names
}

func ptr[T any](v T) *T { return &v }
