package library

import (
	"fmt"
)

func addTrack(q querier, tr *Track) error {
	if tr.Name == "" {
		return fmt.Errorf("track name is empty: %w", ErrConstraint)
	}
	if tr.Address == "" {
		return fmt.Errorf("track address is empty: %w", ErrConstraint)
	}
	// Append at the end of the record's ordered sequence.
	err := q.QueryRow(`
		SELECT COALESCE(MAX(position) + 1, 0) FROM tracks WHERE record_id = ?`,
		tr.RecordID,
	).Scan(&tr.Position)
	if err != nil {
		return fmt.Errorf("next track position: %w", err)
	}
	result, err := q.Exec(`
		INSERT INTO tracks (record_id, position, name, address, play_time)
		VALUES (?, ?, ?, ?, ?)`,
		tr.RecordID, tr.Position, tr.Name, tr.Address, tr.PlayTime,
	)
	if err != nil {
		return fmt.Errorf("insert track: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	tr.ID = id
	return nil
}

// AddTrack appends a track to its record's ordered sequence.
// Sets ID and Position on the struct.
func (s *Store) AddTrack(tr *Track) error { return addTrack(s.db, tr) }

// AddTrack appends a track within a transaction.
func (t *Tx) AddTrack(tr *Track) error { return addTrack(t.tx, tr) }

func listTracks(q querier, recordID int64) ([]*Track, error) {
	rows, err := q.Query(`
		SELECT id, record_id, position, name, address, play_time
		FROM tracks WHERE record_id = ?
		ORDER BY position, id`, recordID)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Track
	for rows.Next() {
		tr := &Track{}
		if err := rows.Scan(&tr.ID, &tr.RecordID, &tr.Position, &tr.Name, &tr.Address, &tr.PlayTime); err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		results = append(results, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracks: %w", err)
	}
	return results, nil
}

// ListTracks returns a record's tracks in playback order.
func (s *Store) ListTracks(recordID int64) ([]*Track, error) { return listTracks(s.db, recordID) }

// ListTracks returns a record's tracks within a transaction.
func (t *Tx) ListTracks(recordID int64) ([]*Track, error) { return listTracks(t.tx, recordID) }

func trackAt(q querier, recordID int64, n int) (*Track, error) {
	if n < 0 {
		return nil, fmt.Errorf("track %d of record %d: %w", n, recordID, ErrNotFound)
	}
	tr := &Track{}
	err := q.QueryRow(`
		SELECT id, record_id, position, name, address, play_time
		FROM tracks WHERE record_id = ?
		ORDER BY position, id LIMIT 1 OFFSET ?`, recordID, n,
	).Scan(&tr.ID, &tr.RecordID, &tr.Position, &tr.Name, &tr.Address, &tr.PlayTime)
	if err != nil {
		return nil, fmt.Errorf("track %d of record %d: %w", n, recordID, mapSQLiteError(err))
	}
	return tr, nil
}

// TrackAt returns the track at ordinal n in the record's sequence.
// Returns ErrNotFound when n is out of range.
func (s *Store) TrackAt(recordID int64, n int) (*Track, error) { return trackAt(s.db, recordID, n) }

// TrackAt returns the track at ordinal n within a transaction.
func (t *Tx) TrackAt(recordID int64, n int) (*Track, error) { return trackAt(t.tx, recordID, n) }

func insertTrackAt(q querier, tr *Track, n int) error {
	tracks, err := listTracks(q, tr.RecordID)
	if err != nil {
		return err
	}
	if n < 0 || n > len(tracks) {
		return fmt.Errorf("insert track at %d of record %d: %w", n, tr.RecordID, ErrNotFound)
	}
	if n == len(tracks) {
		return addTrack(q, tr)
	}
	if _, err := q.Exec(`
		UPDATE tracks SET position = position + 1
		WHERE record_id = ? AND position >= ?`,
		tr.RecordID, tracks[n].Position,
	); err != nil {
		return fmt.Errorf("shift tracks up: %w", mapSQLiteError(err))
	}
	tr.Position = tracks[n].Position
	result, err := q.Exec(`
		INSERT INTO tracks (record_id, position, name, address, play_time)
		VALUES (?, ?, ?, ?, ?)`,
		tr.RecordID, tr.Position, tr.Name, tr.Address, tr.PlayTime,
	)
	if err != nil {
		return fmt.Errorf("insert track: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	tr.ID = id
	return nil
}

// InsertTrackAt places a track at ordinal n, shifting later tracks
// down. n equal to the current count appends.
func (s *Store) InsertTrackAt(tr *Track, n int) error { return insertTrackAt(s.db, tr, n) }

// InsertTrackAt places a track at ordinal n within a transaction.
func (t *Tx) InsertTrackAt(tr *Track, n int) error { return insertTrackAt(t.tx, tr, n) }

func removeTrackAt(q querier, recordID int64, n int) error {
	tr, err := trackAt(q, recordID, n)
	if err != nil {
		return err
	}
	if _, err := q.Exec("DELETE FROM tracks WHERE id = ?", tr.ID); err != nil {
		return fmt.Errorf("delete track %d: %w", tr.ID, mapSQLiteError(err))
	}
	if _, err := q.Exec(`
		UPDATE tracks SET position = position - 1
		WHERE record_id = ? AND position > ?`,
		recordID, tr.Position,
	); err != nil {
		return fmt.Errorf("shift tracks down: %w", mapSQLiteError(err))
	}
	return nil
}

// RemoveTrackAt deletes the track at ordinal n, closing the gap.
// Returns ErrNotFound when n is out of range.
func (s *Store) RemoveTrackAt(recordID int64, n int) error { return removeTrackAt(s.db, recordID, n) }

// RemoveTrackAt deletes the track at ordinal n within a transaction.
func (t *Tx) RemoveTrackAt(recordID int64, n int) error { return removeTrackAt(t.tx, recordID, n) }

func replaceTrackAt(q querier, tr *Track, n int) error {
	existing, err := trackAt(q, tr.RecordID, n)
	if err != nil {
		return err
	}
	if _, err := q.Exec(`
		UPDATE tracks SET name = ?, address = ?, play_time = ?
		WHERE id = ?`,
		tr.Name, tr.Address, tr.PlayTime, existing.ID,
	); err != nil {
		return fmt.Errorf("replace track %d: %w", existing.ID, mapSQLiteError(err))
	}
	tr.ID = existing.ID
	tr.Position = existing.Position
	return nil
}

// ReplaceTrackAt overwrites the track at ordinal n with tr's content,
// keeping identity and position. Returns ErrNotFound when n is out of
// range.
func (s *Store) ReplaceTrackAt(tr *Track, n int) error { return replaceTrackAt(s.db, tr, n) }

// ReplaceTrackAt overwrites the track at ordinal n within a transaction.
func (t *Tx) ReplaceTrackAt(tr *Track, n int) error { return replaceTrackAt(t.tx, tr, n) }

func deleteTracks(q querier, recordID int64) error {
	_, err := q.Exec("DELETE FROM tracks WHERE record_id = ?", recordID)
	if err != nil {
		return fmt.Errorf("delete tracks of record %d: %w", recordID, mapSQLiteError(err))
	}
	return nil
}

// DeleteTracks removes every track owned by the record; the record
// itself is untouched. Idempotent.
func (s *Store) DeleteTracks(recordID int64) error { return deleteTracks(s.db, recordID) }

// DeleteTracks removes a record's tracks within a transaction.
func (t *Tx) DeleteTracks(recordID int64) error { return deleteTracks(t.tx, recordID) }

func setTrackProgress(q querier, trackID int64, seconds float64) error {
	result, err := q.Exec("UPDATE tracks SET play_time = ? WHERE id = ?", seconds, trackID)
	if err != nil {
		return fmt.Errorf("set track progress %d: %w", trackID, mapSQLiteError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("set track progress %d: %w", trackID, ErrNotFound)
	}
	return nil
}

// SetTrackProgress records playback progress on a track.
// Returns ErrNotFound if the track does not exist.
func (s *Store) SetTrackProgress(trackID int64, seconds float64) error {
	return setTrackProgress(s.db, trackID, seconds)
}

// SetTrackProgress records playback progress within a transaction.
func (t *Tx) SetTrackProgress(trackID int64, seconds float64) error {
	return setTrackProgress(t.tx, trackID, seconds)
}
