package library

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// mapSQLiteError converts SQLite errors to custom error types.
func mapSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	// modernc.org/sqlite wraps errors; check error message for constraint violations
	errStr := err.Error()
	if strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "PRIMARY KEY constraint failed") {
		return ErrDuplicate
	}
	if strings.Contains(errStr, "FOREIGN KEY constraint failed") ||
		strings.Contains(errStr, "CHECK constraint failed") {
		return ErrConstraint
	}
	return err
}

// validateRecord enforces the entity boundary before anything reaches
// the database: a record without a title or source locator is never
// persisted.
func validateRecord(r *MediaRecord) error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("record title is empty: %w", ErrConstraint)
	}
	if strings.TrimSpace(r.PageURL) == "" {
		return fmt.Errorf("record page url is empty: %w", ErrConstraint)
	}
	return nil
}

func addRecord(q querier, r *MediaRecord) error {
	if err := validateRecord(r); err != nil {
		return err
	}
	if r.DateAdded.IsZero() {
		r.DateAdded = time.Now()
	}
	// Records are always created valid; removal is a hard delete.
	r.Valid = true
	result, err := q.Exec(`
		INSERT INTO records (title, details, page_url, thumbnail_url, mime_type, date_added, valid, never_played, start_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Title, r.Details, r.PageURL, r.ThumbnailURL, r.MimeType, r.DateAdded, r.Valid, r.NeverPlayed, r.StartTime,
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	r.ID = id
	return nil
}

// AddRecord inserts a new record into the database.
// Sets ID and DateAdded on the struct. Tracks are persisted separately.
func (s *Store) AddRecord(r *MediaRecord) error { return addRecord(s.db, r) }

// AddRecord inserts a new record within a transaction.
func (t *Tx) AddRecord(r *MediaRecord) error { return addRecord(t.tx, r) }

func getRecord(q querier, id int64) (*MediaRecord, error) {
	r := &MediaRecord{}
	err := q.QueryRow(`
		SELECT id, title, details, page_url, thumbnail_url, mime_type, date_added, valid, never_played, start_time
		FROM records WHERE id = ?`, id,
	).Scan(&r.ID, &r.Title, &r.Details, &r.PageURL, &r.ThumbnailURL, &r.MimeType, &r.DateAdded, &r.Valid, &r.NeverPlayed, &r.StartTime)
	if err != nil {
		return nil, fmt.Errorf("get record %d: %w", id, mapSQLiteError(err))
	}
	tracks, err := listTracks(q, id)
	if err != nil {
		return nil, err
	}
	r.Tracks = tracks
	return r, nil
}

// GetRecord retrieves a record by ID with its ordered tracks.
// Returns ErrNotFound if the record does not exist.
func (s *Store) GetRecord(id int64) (*MediaRecord, error) { return getRecord(s.db, id) }

// GetRecord retrieves a record by ID within a transaction.
func (t *Tx) GetRecord(id int64) (*MediaRecord, error) { return getRecord(t.tx, id) }

func getRecordByPageURL(q querier, pageURL string) (*MediaRecord, error) {
	r := &MediaRecord{}
	err := q.QueryRow(`
		SELECT id, title, details, page_url, thumbnail_url, mime_type, date_added, valid, never_played, start_time
		FROM records WHERE page_url = ? AND valid = 1`, pageURL,
	).Scan(&r.ID, &r.Title, &r.Details, &r.PageURL, &r.ThumbnailURL, &r.MimeType, &r.DateAdded, &r.Valid, &r.NeverPlayed, &r.StartTime)
	if err != nil {
		return nil, fmt.Errorf("get record by url %q: %w", pageURL, mapSQLiteError(err))
	}
	tracks, err := listTracks(q, r.ID)
	if err != nil {
		return nil, err
	}
	r.Tracks = tracks
	return r, nil
}

// GetRecordByPageURL finds the valid record whose page URL matches
// exactly. Returns ErrNotFound if none exists; callers build upsert
// semantics on top of this.
func (s *Store) GetRecordByPageURL(pageURL string) (*MediaRecord, error) {
	return getRecordByPageURL(s.db, pageURL)
}

// GetRecordByPageURL finds a record by page URL within a transaction.
func (t *Tx) GetRecordByPageURL(pageURL string) (*MediaRecord, error) {
	return getRecordByPageURL(t.tx, pageURL)
}

func listRecords(q querier, f RecordFilter) ([]*MediaRecord, int, error) {
	var conditions []string
	var args []any

	if f.Valid != nil {
		conditions = append(conditions, "valid = ?")
		args = append(args, *f.Valid)
	}
	if f.Title != nil {
		conditions = append(conditions, "title = ?")
		args = append(args, *f.Title)
	}
	if f.PageURL != nil {
		conditions = append(conditions, "page_url = ?")
		args = append(args, *f.PageURL)
	}
	if f.Genre != nil {
		conditions = append(conditions, `id IN (
			SELECT rg.record_id FROM record_genres rg
			JOIN genres g ON g.id = rg.genre_id
			WHERE g.name = ?)`)
		args = append(args, *f.Genre)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := q.QueryRow("SELECT COUNT(*) FROM records "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count records: %w", err)
	}

	// Insertion order must be stable across calls so list UIs never reshuffle.
	query := "SELECT id, title, details, page_url, thumbnail_url, mime_type, date_added, valid, never_played, start_time FROM records " +
		whereClause + " ORDER BY date_added, id"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*MediaRecord
	for rows.Next() {
		r := &MediaRecord{}
		if err := rows.Scan(&r.ID, &r.Title, &r.Details, &r.PageURL, &r.ThumbnailURL, &r.MimeType, &r.DateAdded, &r.Valid, &r.NeverPlayed, &r.StartTime); err != nil {
			return nil, 0, fmt.Errorf("scan record: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate records: %w", err)
	}

	if err := attachTracks(q, results); err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// attachTracks loads the ordered track lists for a batch of records in
// one query instead of one query per record.
func attachTracks(q querier, records []*MediaRecord) error {
	if len(records) == 0 {
		return nil
	}

	byID := make(map[int64]*MediaRecord, len(records))
	placeholders := make([]string, len(records))
	args := make([]any, len(records))
	for i, r := range records {
		byID[r.ID] = r
		placeholders[i] = "?"
		args[i] = r.ID
	}

	rows, err := q.Query(fmt.Sprintf(`
		SELECT id, record_id, position, name, address, play_time
		FROM tracks WHERE record_id IN (%s)
		ORDER BY record_id, position, id`, strings.Join(placeholders, ",")), args...)
	if err != nil {
		return fmt.Errorf("list tracks batch: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		t := &Track{}
		if err := rows.Scan(&t.ID, &t.RecordID, &t.Position, &t.Name, &t.Address, &t.PlayTime); err != nil {
			return fmt.Errorf("scan track: %w", err)
		}
		if r, ok := byID[t.RecordID]; ok {
			r.Tracks = append(r.Tracks, t)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate tracks batch: %w", err)
	}
	return nil
}

// ListRecords returns records matching the filter with pagination,
// ordered by date added then ID ascending. Returns (results,
// totalCount, error).
func (s *Store) ListRecords(f RecordFilter) ([]*MediaRecord, int, error) { return listRecords(s.db, f) }

// ListRecords returns records matching the filter within a transaction.
func (t *Tx) ListRecords(f RecordFilter) ([]*MediaRecord, int, error) { return listRecords(t.tx, f) }

func updateRecord(q querier, r *MediaRecord) error {
	if err := validateRecord(r); err != nil {
		return err
	}
	result, err := q.Exec(`
		UPDATE records SET title = ?, details = ?, page_url = ?, thumbnail_url = ?, mime_type = ?, valid = ?, never_played = ?, start_time = ?
		WHERE id = ?`,
		r.Title, r.Details, r.PageURL, r.ThumbnailURL, r.MimeType, r.Valid, r.NeverPlayed, r.StartTime, r.ID,
	)
	if err != nil {
		return fmt.Errorf("update record %d: %w", r.ID, mapSQLiteError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update record %d: %w", r.ID, ErrNotFound)
	}
	return nil
}

// UpdateRecord updates an existing record in place. DateAdded is
// immutable. Returns ErrNotFound if the record does not exist.
func (s *Store) UpdateRecord(r *MediaRecord) error { return updateRecord(s.db, r) }

// UpdateRecord updates an existing record within a transaction.
func (t *Tx) UpdateRecord(r *MediaRecord) error { return updateRecord(t.tx, r) }

func deleteRecord(q querier, id int64) error {
	_, err := q.Exec("DELETE FROM records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete record %d: %w", id, mapSQLiteError(err))
	}
	return nil
}

// DeleteRecord removes a record by ID. Owned tracks and genre
// memberships cascade; genre entities survive. Idempotent - no error
// is returned if the record does not exist.
func (s *Store) DeleteRecord(id int64) error { return deleteRecord(s.db, id) }

// DeleteRecord removes a record by ID within a transaction.
func (t *Tx) DeleteRecord(id int64) error { return deleteRecord(t.tx, id) }
