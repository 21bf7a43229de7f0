package sink

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"elevsim/internal/simevent"
)

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	started_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS elevator_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	timestamp REAL NOT NULL,
	elevator_id INTEGER NOT NULL,
	event_type TEXT NOT NULL,
	current_floor INTEGER NOT NULL,
	direction INTEGER NOT NULL,
	pending_count INTEGER NOT NULL,
	occupancy INTEGER NOT NULL,
	time_since_last_request REAL NOT NULL,
	hour_of_day INTEGER NOT NULL,
	day_of_week INTEGER NOT NULL
);
`

const insertEventSQL = `
INSERT INTO elevator_events (
	run_id, timestamp, elevator_id, event_type, current_floor,
	direction, pending_count, occupancy, time_since_last_request,
	hour_of_day, day_of_week
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// SQLite stores events in an embedded database, one row per event with the
// ten dataset columns in stable order. Appends are buffered and written as
// one transaction per Flush.
type SQLite struct {
	db     *sql.DB
	runID  string
	buffer []simevent.Event
}

// OpenSQLite opens (creating if needed) the database at path and registers
// a run row for runID.
func OpenSQLite(path, runID, runName string, startedAt time.Time) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	if _, err := db.Exec(createTablesSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}
	if _, err := db.Exec(
		"INSERT INTO runs (run_id, name, started_at) VALUES (?, ?, ?)",
		runID, runName, startedAt.UTC(),
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("registering run %s: %w", runID, err)
	}
	return &SQLite{db: db, runID: runID}, nil
}

func (s *SQLite) Append(event simevent.Event) error {
	s.buffer = append(s.buffer, event)
	return nil
}

// Flush writes the buffered events in one transaction. The buffer is kept
// on failure so a later flush can retry.
func (s *SQLite) Flush() error {
	if len(s.buffer) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	stmt, err := tx.Prepare(insertEventSQL)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, event := range s.buffer {
		if _, err := stmt.Exec(
			s.runID,
			unixSeconds(event.Timestamp),
			event.ElevatorID,
			event.Type.String(),
			event.CurrentFloor,
			int(event.Direction),
			event.PendingCount,
			event.Occupancy,
			event.TimeSinceLastRequest,
			event.HourOfDay,
			event.DayOfWeek,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting event: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing events: %w", err)
	}

	s.buffer = s.buffer[:0]
	return nil
}

// EventCount returns the number of stored rows for this run.
func (s *SQLite) EventCount() (int, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM elevator_events WHERE run_id = ?", s.runID,
	).Scan(&count)
	return count, err
}

// ExportCSV writes this run's events to path with the dataset columns in
// stable order, matching the database schema one to one.
func (s *SQLite) ExportCSV(path string) error {
	rows, err := s.db.Query(`
		SELECT timestamp, elevator_id, event_type, current_floor, direction,
		       pending_count, occupancy, time_since_last_request, hour_of_day, day_of_week
		FROM elevator_events WHERE run_id = ? ORDER BY id`, s.runID)
	if err != nil {
		return fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv file %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(simevent.Columns); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for rows.Next() {
		var (
			timestamp, sinceRequest                          float64
			elevatorID, floor, direction, pending, occupancy int
			hour, day                                        int
			eventType                                        string
		)
		if err := rows.Scan(&timestamp, &elevatorID, &eventType, &floor, &direction,
			&pending, &occupancy, &sinceRequest, &hour, &day); err != nil {
			return fmt.Errorf("scanning event row: %w", err)
		}
		record := []string{
			strconv.FormatFloat(timestamp, 'f', -1, 64),
			strconv.Itoa(elevatorID),
			eventType,
			strconv.Itoa(floor),
			strconv.Itoa(direction),
			strconv.Itoa(pending),
			strconv.Itoa(occupancy),
			strconv.FormatFloat(sinceRequest, 'f', -1, 64),
			strconv.Itoa(hour),
			strconv.Itoa(day),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating events: %w", err)
	}

	writer.Flush()
	return writer.Error()
}

func (s *SQLite) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}
	return s.db.Close()
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
