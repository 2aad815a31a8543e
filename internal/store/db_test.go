package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/setevik/nodescan/internal/event"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func makeEvent(task string, cat event.Category, sev event.Severity, desc string) *event.Event {
	ev := event.New(cat, sev, desc)
	ev.Task = task
	return ev
}

func TestInsertAndQuery(t *testing.T) {
	db := testDB(t)

	ev := makeEvent("DmesgAnalyzer", event.CatMemory, event.SevCritical, "Out of memory: Killed process")
	ev.Data["count"] = 3

	if err := db.Insert("run-1", ev); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	events, err := db.Query(QueryFilter{
		Since: time.Now().Add(-1 * time.Hour),
		Limit: 10,
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	got := events[0]
	if got.ID != ev.ID {
		t.Errorf("ID = %q, want %q", got.ID, ev.ID)
	}
	if got.Task != "DmesgAnalyzer" {
		t.Errorf("Task = %q", got.Task)
	}
	if got.Category != event.CatMemory {
		t.Errorf("Category = %q", got.Category)
	}
	if got.Severity != event.SevCritical {
		t.Errorf("Severity = %s", got.Severity)
	}
	if got.Description != "Out of memory: Killed process" {
		t.Errorf("Description = %q", got.Description)
	}
	// JSON numbers come back as float64.
	if got.Data["count"] != float64(3) {
		t.Errorf("Data[count] = %v", got.Data["count"])
	}
}

func TestQueryFilters(t *testing.T) {
	db := testDB(t)

	ev1 := makeEvent("DmesgAnalyzer", event.CatMemory, event.SevCritical, "OOM")
	ev2 := makeEvent("DmesgAnalyzer", event.CatIO, event.SevError, "I/O error")
	ev3 := makeEvent("JournalAnalyzer", event.CatOS, event.SevWarning, "service flapping")
	ev4 := makeEvent("KmodAnalyzer", event.CatOS, event.SevError, "module missing")

	for i, ev := range []*event.Event{ev1, ev2, ev3, ev4} {
		runID := "run-1"
		if i == 3 {
			runID = "run-2"
		}
		if err := db.Insert(runID, ev); err != nil {
			t.Fatal(err)
		}
	}

	since := time.Now().Add(-1 * time.Hour)

	tests := []struct {
		name   string
		filter QueryFilter
		want   int
	}{
		{"by category", QueryFilter{Since: since, Category: "OS"}, 2},
		{"by task", QueryFilter{Since: since, Task: "DmesgAnalyzer"}, 2},
		{"by min severity", QueryFilter{Since: since, MinSeverity: event.SevError}, 3},
		{"by run", QueryFilter{Since: since, RunID: "run-2"}, 1},
		{"by limit", QueryFilter{Since: since, Limit: 2}, 2},
		{"all", QueryFilter{Since: since}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := db.Query(tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(events) != tt.want {
				t.Errorf("got %d events, want %d", len(events), tt.want)
			}
		})
	}
}

func TestSaveRun(t *testing.T) {
	db := testDB(t)

	run := Run{
		ID:         "run-1",
		InstanceID: "host1",
		StartTime:  time.Now().Add(-time.Minute),
		EndTime:    time.Now(),
		Status:     "ERROR",
	}
	if err := db.SaveRun(run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	// Duplicate run IDs are rejected by the primary key.
	if err := db.SaveRun(run); err == nil {
		t.Error("expected error for duplicate run ID")
	}
}

func TestPurge(t *testing.T) {
	db := testDB(t)

	old := makeEvent("DmesgAnalyzer", event.CatMemory, event.SevCritical, "Old OOM")
	old.Timestamp = time.Now().Add(-100 * 24 * time.Hour)
	if err := db.Insert("run-old", old); err != nil {
		t.Fatal(err)
	}

	recent := makeEvent("DmesgAnalyzer", event.CatMemory, event.SevCritical, "Recent OOM")
	if err := db.Insert("run-new", recent); err != nil {
		t.Fatal(err)
	}

	purged, err := db.Purge(90 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged %d events, want 1", purged)
	}

	events, err := db.Query(QueryFilter{Since: time.Now().Add(-365 * 24 * time.Hour)})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Errorf("after purge: %d events remain, want 1", len(events))
	}
}

func TestCount(t *testing.T) {
	db := testDB(t)

	count, err := db.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Errorf("empty db count = %d, want 0", count)
	}

	for i := 0; i < 5; i++ {
		ev := makeEvent("DmesgAnalyzer", event.CatMemory, event.SevCritical, "OOM")
		if err := db.Insert("run-1", ev); err != nil {
			t.Fatal(err)
		}
	}

	count, err = db.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 5 {
		t.Errorf("count = %d, want 5", count)
	}
}

func TestInsertAll(t *testing.T) {
	db := testDB(t)

	events := []*event.Event{
		makeEvent("DmesgAnalyzer", event.CatMemory, event.SevCritical, "OOM"),
		makeEvent("DmesgAnalyzer", event.CatIO, event.SevError, "I/O error"),
	}
	if err := db.InsertAll("run-1", events); err != nil {
		t.Fatalf("InsertAll: %v", err)
	}

	count, err := db.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}
