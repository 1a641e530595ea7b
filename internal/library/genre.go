package library

import (
	"fmt"
	"strings"
)

func getGenre(q querier, name string) (*Genre, error) {
	g := &Genre{}
	err := q.QueryRow("SELECT id, name FROM genres WHERE name = ?", name).Scan(&g.ID, &g.Name)
	if err != nil {
		return nil, fmt.Errorf("get genre %q: %w", name, mapSQLiteError(err))
	}
	return g, nil
}

// GetGenre retrieves a genre by its unique name.
// Returns ErrNotFound if the genre does not exist.
func (s *Store) GetGenre(name string) (*Genre, error) { return getGenre(s.db, name) }

// GetGenre retrieves a genre by name within a transaction.
func (t *Tx) GetGenre(name string) (*Genre, error) { return getGenre(t.tx, name) }

func findOrCreateGenre(q querier, name string) (*Genre, bool, error) {
	if strings.TrimSpace(name) == "" {
		return nil, false, fmt.Errorf("genre name is empty: %w", ErrConstraint)
	}
	g, err := getGenre(q, name)
	if err == nil {
		return g, false, nil
	}
	result, err := q.Exec("INSERT INTO genres (name) VALUES (?)", name)
	if err != nil {
		return nil, false, fmt.Errorf("insert genre %q: %w", name, mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("get last insert id: %w", err)
	}
	return &Genre{ID: id, Name: name}, true, nil
}

// FindOrCreateGenre returns the genre with the given name, creating it
// lazily on first reference. Returns (genre, created, error).
func (s *Store) FindOrCreateGenre(name string) (*Genre, bool, error) {
	return findOrCreateGenre(s.db, name)
}

// FindOrCreateGenre finds or creates a genre within a transaction.
func (t *Tx) FindOrCreateGenre(name string) (*Genre, bool, error) {
	return findOrCreateGenre(t.tx, name)
}

func listGenres(q querier) ([]*Genre, error) {
	rows, err := q.Query("SELECT id, name FROM genres ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Genre
	for rows.Next() {
		g := &Genre{}
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		results = append(results, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genres: %w", err)
	}
	return results, nil
}

// ListGenres returns all genres ordered by name.
func (s *Store) ListGenres() ([]*Genre, error) { return listGenres(s.db) }

// ListGenres returns all genres within a transaction.
func (t *Tx) ListGenres() ([]*Genre, error) { return listGenres(t.tx) }

func genresForRecord(q querier, recordID int64) ([]*Genre, error) {
	rows, err := q.Query(`
		SELECT g.id, g.name FROM genres g
		JOIN record_genres rg ON rg.genre_id = g.id
		WHERE rg.record_id = ?
		ORDER BY g.name`, recordID)
	if err != nil {
		return nil, fmt.Errorf("genres for record %d: %w", recordID, err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Genre
	for rows.Next() {
		g := &Genre{}
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		results = append(results, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genres: %w", err)
	}
	return results, nil
}

// GenresForRecord returns the genres a record is attached to, by name.
func (s *Store) GenresForRecord(recordID int64) ([]*Genre, error) {
	return genresForRecord(s.db, recordID)
}

// GenresForRecord returns a record's genres within a transaction.
func (t *Tx) GenresForRecord(recordID int64) ([]*Genre, error) {
	return genresForRecord(t.tx, recordID)
}

func attachGenre(q querier, recordID, genreID int64) error {
	// Attaching an existing pair is a no-op.
	_, err := q.Exec(`
		INSERT OR IGNORE INTO record_genres (record_id, genre_id)
		VALUES (?, ?)`, recordID, genreID)
	if err != nil {
		return fmt.Errorf("attach genre %d to record %d: %w", genreID, recordID, mapSQLiteError(err))
	}
	return nil
}

// AttachGenre links a record to a genre. Idempotent.
func (s *Store) AttachGenre(recordID, genreID int64) error {
	return attachGenre(s.db, recordID, genreID)
}

// AttachGenre links a record to a genre within a transaction.
func (t *Tx) AttachGenre(recordID, genreID int64) error {
	return attachGenre(t.tx, recordID, genreID)
}

func detachGenre(q querier, recordID, genreID int64) error {
	_, err := q.Exec(`
		DELETE FROM record_genres WHERE record_id = ? AND genre_id = ?`,
		recordID, genreID)
	if err != nil {
		return fmt.Errorf("detach genre %d from record %d: %w", genreID, recordID, mapSQLiteError(err))
	}
	return nil
}

// DetachGenre unlinks a record from a genre; the genre entity survives.
// Idempotent.
func (s *Store) DetachGenre(recordID, genreID int64) error {
	return detachGenre(s.db, recordID, genreID)
}

// DetachGenre unlinks a record from a genre within a transaction.
func (t *Tx) DetachGenre(recordID, genreID int64) error {
	return detachGenre(t.tx, recordID, genreID)
}
