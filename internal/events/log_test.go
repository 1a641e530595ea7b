package events

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/castkeep/castkeep/internal/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(migrations.InitialSQL); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

func TestEventLog_AppendAndSince(t *testing.T) {
	log := NewEventLog(setupTestDB(t))

	e := &RecordAdded{
		BaseEvent: NewBaseEvent(EventRecordAdded, EntityRecord, 3),
		RecordID:  3,
		Title:     "Stalker",
		PageURL:   "http://example.com/stalker",
	}
	id, err := log.Append(e)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if id == 0 {
		t.Error("Append should return a row id")
	}

	raws, err := log.Since(time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("Since: %v", err)
	}
	if len(raws) != 1 {
		t.Fatalf("got %d events, want 1", len(raws))
	}
	if raws[0].EventType != EventRecordAdded {
		t.Errorf("EventType = %q, want %q", raws[0].EventType, EventRecordAdded)
	}
}

func TestEventLog_ForEntity(t *testing.T) {
	log := NewEventLog(setupTestDB(t))

	for i := int64(1); i <= 3; i++ {
		e := &RecordSeen{BaseEvent: NewBaseEvent(EventRecordSeen, EntityRecord, i), RecordID: i}
		if _, err := log.Append(e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	raws, err := log.ForEntity(EntityRecord, 2)
	if err != nil {
		t.Fatalf("ForEntity: %v", err)
	}
	if len(raws) != 1 || raws[0].EntityID != 2 {
		t.Fatalf("unexpected events: %+v", raws)
	}
}

func TestEventLog_Prune(t *testing.T) {
	log := NewEventLog(setupTestDB(t))

	old := &RecordAdded{BaseEvent: BaseEvent{
		Type: EventRecordAdded, Entity: EntityRecord, ID: 1,
		Timestamp: time.Now().Add(-48 * time.Hour),
	}}
	recent := &RecordAdded{BaseEvent: NewBaseEvent(EventRecordAdded, EntityRecord, 2)}
	for _, e := range []Event{old, recent} {
		if _, err := log.Append(e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	pruned, err := log.Prune(24 * time.Hour)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if pruned != 1 {
		t.Errorf("pruned %d events, want 1", pruned)
	}

	raws, err := log.Since(time.Time{})
	if err != nil {
		t.Fatalf("Since: %v", err)
	}
	if len(raws) != 1 || raws[0].EntityID != 2 {
		t.Errorf("unexpected surviving events: %+v", raws)
	}
}

func TestBus_PersistsThroughLog(t *testing.T) {
	log := NewEventLog(setupTestDB(t))
	bus := NewBus(log, testLogger())
	defer bus.Close()

	e := &TrackAdded{BaseEvent: NewBaseEvent(EventTrackAdded, EntityTrack, 5), RecordID: 1, TrackID: 5, Name: "720p"}
	if err := bus.Publish(context.Background(), e); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	raws, err := log.ForEntity(EntityTrack, 5)
	if err != nil {
		t.Fatalf("ForEntity: %v", err)
	}
	if len(raws) != 1 {
		t.Fatalf("published event not persisted, got %d rows", len(raws))
	}
}
