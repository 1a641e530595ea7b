package library

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/castkeep/castkeep/internal/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// A pooled second connection would see a different empty :memory: db.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(migrations.InitialSQL); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

func mustAddRecord(t *testing.T, store *Store, title, pageURL string) *MediaRecord {
	t.Helper()
	r := &MediaRecord{Title: title, PageURL: pageURL, NeverPlayed: true}
	if err := store.AddRecord(r); err != nil {
		t.Fatalf("AddRecord(%q): %v", title, err)
	}
	return r
}

// ptr is a helper to create pointer to value
func ptr[T any](v T) *T {
	return &v
}
