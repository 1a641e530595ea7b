// Package medialist is the in-memory, index-addressable view of the
// media library that UIs bind to. It loads from the service in stages
// so a first screenful appears fast, and applies mutations
// optimistically: the visible list changes immediately while the
// write completes in the background.
package medialist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/castkeep/castkeep/internal/library"
	"github.com/castkeep/castkeep/internal/service"
	"github.com/castkeep/castkeep/pkg/title"
)

// ErrIndexOutOfRange is returned for positional access past the end of
// the list.
var ErrIndexOutOfRange = errors.New("index out of range")

// firstPageSize is how many records the first load stage fetches.
const firstPageSize = 32

// ProgressFunc observes staged loading. It is called once per
// completed stage; final is true on the last call, when the list holds
// every record.
type ProgressFunc func(count int, final bool)

// List is an ordered snapshot of the library. Order matches the
// service listing (date added, then ID); optimistic additions go to
// the end until the next Load.
type List struct {
	svc *service.Library
	log *slog.Logger

	mu      sync.RWMutex
	records []*library.MediaRecord

	pending sync.WaitGroup // in-flight background writes
}

// New creates an empty list bound to the service.
func New(svc *service.Library, log *slog.Logger) *List {
	if log == nil {
		log = slog.Default()
	}
	return &List{svc: svc, log: log.With("component", "medialist")}
}

// Load replaces the list contents from the service in stages: a first
// page sized for an initial screen, then the remainder. progress may
// be nil. Load reports completion only when every record is present.
func (l *List) Load(ctx context.Context, progress ProgressFunc) error {
	first, total, err := l.svc.ListRecordsPage(ctx, firstPageSize, 0)
	if err != nil {
		return fmt.Errorf("load library: %w", err)
	}

	l.mu.Lock()
	l.records = first
	l.mu.Unlock()

	if progress != nil {
		progress(len(first), total <= len(first))
	}
	if total <= len(first) {
		return nil
	}

	rest, _, err := l.svc.ListRecordsPage(ctx, total-len(first), len(first))
	if err != nil {
		return fmt.Errorf("load library: %w", err)
	}

	l.mu.Lock()
	l.records = append(l.records, rest...)
	count := len(l.records)
	l.mu.Unlock()

	l.log.Debug("library loaded", "records", count)
	if progress != nil {
		progress(count, true)
	}
	return nil
}

// Count returns the number of records currently in the view,
// optimistic entries included.
func (l *List) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// MediaAt returns the record at position i.
func (l *List) MediaAt(i int) (*library.MediaRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 || i >= len(l.records) {
		return nil, fmt.Errorf("media at %d: %w", i, ErrIndexOutOfRange)
	}
	return l.records[i], nil
}

// Add appends a provisional record to the view immediately and
// persists it in the background. When the write lands, the provisional
// entry is swapped for the stored record; when it fails, the entry is
// rolled back out of the view. Use Flush to wait for the write.
func (l *List) Add(ctx context.Context, p service.SaveParams) *library.MediaRecord {
	provisional := &library.MediaRecord{
		Title:        p.Title,
		Details:      p.Description,
		PageURL:      p.PageURL,
		ThumbnailURL: p.ThumbnailURL,
		MimeType:     p.MimeType,
		NeverPlayed:  true,
		Valid:        true,
	}

	l.mu.Lock()
	l.records = append(l.records, provisional)
	l.mu.Unlock()

	l.pending.Add(1)
	go func() {
		defer l.pending.Done()
		rec, err := l.svc.Save(ctx, p)
		if err != nil {
			l.log.Error("background save failed, rolling back", "page_url", p.PageURL, "error", err)
			l.removeEntry(provisional)
			return
		}
		l.replaceEntry(provisional, rec)
	}()
	return provisional
}

// RemoveAt drops the record at position i from the view immediately
// and deletes it in the background. Provisional entries that have not
// been persisted yet are only dropped locally.
func (l *List) RemoveAt(ctx context.Context, i int) error {
	l.mu.Lock()
	if i < 0 || i >= len(l.records) {
		l.mu.Unlock()
		return fmt.Errorf("remove at %d: %w", i, ErrIndexOutOfRange)
	}
	rec := l.records[i]
	l.records = append(l.records[:i], l.records[i+1:]...)
	l.mu.Unlock()

	if rec.ID == 0 {
		return nil
	}

	l.pending.Add(1)
	go func() {
		defer l.pending.Done()
		if err := l.svc.DeleteRecord(ctx, rec.ID); err != nil {
			l.log.Error("background delete failed", "record_id", rec.ID, "error", err)
		}
	}()
	return nil
}

// Flush blocks until every in-flight background write has settled.
func (l *List) Flush() {
	l.pending.Wait()
}

// IndexOfTitle returns the position of the first record whose title
// matches exactly, or -1.
func (l *List) IndexOfTitle(t string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i, rec := range l.records {
		if rec.Title == t {
			return i
		}
	}
	return -1
}

// FindByTitle returns the record whose title best matches the query,
// using fuzzy comparison on normalized titles. Returns
// library.ErrNotFound when nothing scores above the match threshold.
func (l *List) FindByTitle(query string) (*library.MediaRecord, error) {
	l.mu.RLock()
	titles := make([]string, len(l.records))
	for i, rec := range l.records {
		titles[i] = rec.Title
	}
	l.mu.RUnlock()

	m := title.BestMatch(query, titles)
	if m.NoMatch() {
		return nil, fmt.Errorf("find %q: %w", query, library.ErrNotFound)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if m.Index >= len(l.records) || l.records[m.Index].Title != m.Title {
		// List changed between the snapshot and now.
		for _, rec := range l.records {
			if rec.Title == m.Title {
				return rec, nil
			}
		}
		return nil, fmt.Errorf("find %q: %w", query, library.ErrNotFound)
	}
	return l.records[m.Index], nil
}

func (l *List) removeEntry(target *library.MediaRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, rec := range l.records {
		if rec == target {
			l.records = append(l.records[:i], l.records[i+1:]...)
			return
		}
	}
}

func (l *List) replaceEntry(target, stored *library.MediaRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, rec := range l.records {
		if rec == target {
			l.records[i] = stored
			return
		}
	}
}
