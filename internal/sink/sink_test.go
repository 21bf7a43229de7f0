package sink

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"elevsim/internal/simconsts"
	"elevsim/internal/simevent"
)

var testTime = time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)

func testEvent(elevatorID int, eventType simconsts.EventType) simevent.Event {
	return simevent.Event{
		Timestamp:    testTime,
		ElevatorID:   elevatorID,
		Type:         eventType,
		CurrentFloor: 2,
		Direction:    simconsts.Up,
		PendingCount: 1,
		HourOfDay:    8,
	}
}

func TestMemoryKeepsAppendOrder(t *testing.T) {
	m := NewMemory()
	for i := 0; i < 3; i++ {
		if err := m.Append(testEvent(i, simconsts.EventMoving)); err != nil {
			t.Fatalf("Append() = %v", err)
		}
	}

	if m.Len() != 3 {
		t.Fatalf("Len() = %d, expected 3", m.Len())
	}
	for i, event := range m.Events() {
		if event.ElevatorID != i {
			t.Errorf("events[%d].ElevatorID = %d, expected %d", i, event.ElevatorID, i)
		}
	}
}

type failing struct{}

func (failing) Append(simevent.Event) error { return errors.New("disk full") }

func TestMultiFansOutAndReportsFirstError(t *testing.T) {
	m := NewMemory()
	multi := NewMulti(failing{}, m)

	err := multi.Append(testEvent(0, simconsts.EventArrived))
	if err == nil {
		t.Error("Append() = nil, expected the failing sink's error")
	}
	if m.Len() != 1 {
		t.Errorf("healthy sink got %d events, expected 1 despite the failure", m.Len())
	}
}

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.db")
	s, err := OpenSQLite(path, uuid.NewString(), "test-run", testTime)
	if err != nil {
		t.Fatalf("OpenSQLite() = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := openTestSQLite(t)

	for i := 0; i < 5; i++ {
		if err := s.Append(testEvent(0, simconsts.EventMoving)); err != nil {
			t.Fatalf("Append() = %v", err)
		}
	}

	// nothing visible until flushed
	count, err := s.EventCount()
	if err != nil {
		t.Fatalf("EventCount() = %v", err)
	}
	if count != 0 {
		t.Errorf("EventCount() before flush = %d, expected 0", count)
	}

	if err := s.Flush(); err != nil {
		t.Fatalf("Flush() = %v", err)
	}
	count, err = s.EventCount()
	if err != nil {
		t.Fatalf("EventCount() = %v", err)
	}
	if count != 5 {
		t.Errorf("EventCount() = %d, expected 5", count)
	}

	// flushing an empty buffer is a no-op
	if err := s.Flush(); err != nil {
		t.Fatalf("second Flush() = %v", err)
	}
	count, _ = s.EventCount()
	if count != 5 {
		t.Errorf("EventCount() after empty flush = %d, expected 5", count)
	}
}

func TestSQLiteExportCSVColumnOrder(t *testing.T) {
	s := openTestSQLite(t)

	event := testEvent(1, simconsts.EventRequestRejected)
	event.Occupancy = 7
	if err := s.Append(event); err != nil {
		t.Fatalf("Append() = %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush() = %v", err)
	}

	csvPath := filepath.Join(t.TempDir(), "events.csv")
	if err := s.ExportCSV(csvPath); err != nil {
		t.Fatalf("ExportCSV() = %v", err)
	}

	file, err := os.Open(csvPath)
	if err != nil {
		t.Fatalf("opening exported csv: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("reading exported csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("csv has %d rows, expected header + 1 event", len(records))
	}

	header := records[0]
	if len(header) != len(simevent.Columns) {
		t.Fatalf("header has %d columns, expected %d", len(header), len(simevent.Columns))
	}
	for i, column := range simevent.Columns {
		if header[i] != column {
			t.Errorf("header[%d] = %q, expected %q", i, header[i], column)
		}
	}

	row := records[1]
	if row[1] != "1" {
		t.Errorf("elevator_id column = %q, expected \"1\"", row[1])
	}
	if row[2] != "request_rejected" {
		t.Errorf("event_type column = %q, expected \"request_rejected\"", row[2])
	}
	if row[6] != "7" {
		t.Errorf("occupancy column = %q, expected \"7\"", row[6])
	}
}

func TestSQLiteSeparatesRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")

	first, err := OpenSQLite(path, uuid.NewString(), "run-a", testTime)
	if err != nil {
		t.Fatalf("OpenSQLite() = %v", err)
	}
	first.Append(testEvent(0, simconsts.EventMoving))
	if err := first.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	second, err := OpenSQLite(path, uuid.NewString(), "run-b", testTime)
	if err != nil {
		t.Fatalf("OpenSQLite() second run = %v", err)
	}
	defer second.Close()

	count, err := second.EventCount()
	if err != nil {
		t.Fatalf("EventCount() = %v", err)
	}
	if count != 0 {
		t.Errorf("second run sees %d events, expected 0 (runs are separate)", count)
	}
}
