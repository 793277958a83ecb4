package scorelog

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/ariadne-cps/pExplore/score"
	"github.com/ariadne-cps/pExplore/space"
)

func sampleGeneration(t *testing.T) score.Generation {
	t.Helper()
	s, err := space.New(
		space.Parameter{Name: "order", Lower: 1, Upper: 5},
		space.Parameter{Name: "level", Lower: 0, Upper: 2},
	)
	if err != nil {
		t.Fatalf("space.New failed: %v", err)
	}
	p1, _ := s.Point([]int{2, 0})
	p2, _ := s.Point([]int{3, 1})
	return score.NewGeneration(
		score.NewPointScore(p1, score.New(score.NewIndexSet(0), nil, score.NewIndexSet(1), 0.5)),
		score.NewPointScore(p2, score.New(nil, score.NewIndexSet(0), nil, 1.5)),
	)
}

func TestRecordsFlattening(t *testing.T) {
	g := sampleGeneration(t)
	records := Records("session", 3, g)

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if !records[0].Best {
		t.Error("Expected the first record to be flagged best")
	}
	if records[1].Best {
		t.Error("Expected the second record to not be flagged best")
	}
	if records[0].Generation != 3 {
		t.Errorf("Expected generation 3, got %d", records[0].Generation)
	}
	if len(records[0].Coordinates) != 2 {
		t.Errorf("Expected 2 coordinates, got %v", records[0].Coordinates)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	records := Records("session", 0, sampleGeneration(t))

	var sb strings.Builder
	if err := WriteCSV(&sb, records); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	parsed, err := ReadCSV(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(parsed) != len(records) {
		t.Fatalf("Expected %d records, got %d", len(records), len(parsed))
	}
	for i := range records {
		if parsed[i].Objective != records[i].Objective {
			t.Errorf("Record %d: expected objective %v, got %v", i, records[i].Objective, parsed[i].Objective)
		}
		if len(parsed[i].Coordinates) != len(records[i].Coordinates) {
			t.Errorf("Record %d: coordinate count mismatch", i)
		}
		if parsed[i].Best != records[i].Best {
			t.Errorf("Record %d: best flag mismatch", i)
		}
	}
}

func TestJSONLRoundTrip(t *testing.T) {
	var sb strings.Builder
	writer := NewJSONLWriter(&sb, "session")

	g := sampleGeneration(t)
	if err := writer.RecordGeneration(0, g); err != nil {
		t.Fatalf("RecordGeneration failed: %v", err)
	}
	if err := writer.RecordGeneration(1, g); err != nil {
		t.Fatalf("RecordGeneration failed: %v", err)
	}

	records, err := ReadJSONL(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("ReadJSONL failed: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("Expected 4 records, got %d", len(records))
	}
	if records[2].Generation != 1 {
		t.Errorf("Expected generation 1, got %d", records[2].Generation)
	}
	if records[0].SessionID != "session" {
		t.Errorf("Expected session id to round-trip, got %q", records[0].SessionID)
	}
}

func TestSQLiteStore(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	if err := store.RecordGeneration(0, sampleGeneration(t)); err == nil {
		t.Error("Expected error recording without a session")
	}

	id, err := store.StartSession("test run")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if id == "" {
		t.Fatal("Expected a non-empty session id")
	}

	g := sampleGeneration(t)
	if err := store.RecordGeneration(0, g); err != nil {
		t.Fatalf("RecordGeneration failed: %v", err)
	}
	if err := store.RecordGeneration(1, g); err != nil {
		t.Fatalf("RecordGeneration failed: %v", err)
	}

	sessions, err := store.Sessions()
	if err != nil {
		t.Fatalf("Sessions failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("Expected 1 session, got %d", len(sessions))
	}
	if sessions[0].Name != "test run" {
		t.Errorf("Expected session name 'test run', got %q", sessions[0].Name)
	}

	records, err := store.SessionRecords(id)
	if err != nil {
		t.Fatalf("SessionRecords failed: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("Expected 4 records, got %d", len(records))
	}
	if !records[0].Best || records[0].Generation != 0 {
		t.Errorf("Expected the best record of generation 0 first, got %+v", records[0])
	}
	if records[0].Coordinates[0] != 2 {
		t.Errorf("Expected coordinates to round-trip, got %v", records[0].Coordinates)
	}
}
