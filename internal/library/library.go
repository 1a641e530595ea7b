// Package library manages the persistent media library (records, tracks, genres).
package library

import (
	"net/url"
	"time"
)

// MediaRecord is one library entry: a playable media item sourced from a
// page URL. PageURL is the natural key within the valid-record set.
type MediaRecord struct {
	ID           int64
	Title        string
	Details      string
	PageURL      string
	ThumbnailURL string
	MimeType     string
	DateAdded    time.Time
	Valid        bool
	NeverPlayed  bool
	StartTime    *float64 // resume offset in seconds, nil when playback never stopped mid-stream

	// Tracks is the ordered track sequence, populated by GetRecord and
	// ListRecords. The first track is the default playback source.
	Tracks []*Track
}

// HasBeenSeen reports whether this record was played at least once:
// either the stored flag was cleared or any track has recorded progress.
func (r *MediaRecord) HasBeenSeen() bool {
	if !r.NeverPlayed {
		return true
	}
	for _, t := range r.Tracks {
		if t.PlayTime != nil && *t.PlayTime > 0 {
			return true
		}
	}
	return false
}

// Page returns the parsed page URL. A malformed stored URL yields nil
// rather than an error; bad data must not break the load path.
func (r *MediaRecord) Page() *url.URL { return parseLenient(r.PageURL) }

// Thumbnail returns the parsed thumbnail URL, or nil when absent or malformed.
func (r *MediaRecord) Thumbnail() *url.URL { return parseLenient(r.ThumbnailURL) }

// TrackAt returns the track at ordinal n in the record's ordered
// sequence. Returns ErrNotFound when n is outside [0, len).
func (r *MediaRecord) TrackAt(n int) (*Track, error) {
	if n < 0 || n >= len(r.Tracks) {
		return nil, ErrNotFound
	}
	return r.Tracks[n], nil
}

// Track is a single playable stream belonging to exactly one record.
// Position among siblings is significant.
type Track struct {
	ID       int64
	RecordID int64
	Position int
	Name     string
	Address  string
	PlayTime *float64 // seconds of recorded playback, nil when never played
}

// URL returns the parsed track address, or nil when malformed.
func (t *Track) URL() *url.URL { return parseLenient(t.Address) }

// Genre is a named category shared many-to-many across records. Genres
// are created lazily on first reference and never deleted here; orphan
// genres are tolerated.
type Genre struct {
	ID   int64
	Name string
}

func parseLenient(s string) *url.URL {
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil
	}
	return u
}
