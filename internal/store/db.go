// Package store provides SQLite-backed history for scan runs and the
// diagnostic events they produce.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/setevik/nodescan/internal/event"
)

// DB wraps an SQLite connection for run and event storage.
type DB struct {
	db *sql.DB
}

// Open opens or creates an SQLite database at the given path.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Single writer connection to avoid SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Run is one recorded scan run.
type Run struct {
	ID         string
	InstanceID string
	StartTime  time.Time
	EndTime    time.Time
	Status     string
}

// SaveRun records a completed scan run.
func (d *DB) SaveRun(run Run) error {
	_, err := d.db.Exec(`
		INSERT INTO runs (id, instance_id, start_time, end_time, status)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID,
		run.InstanceID,
		run.StartTime.UTC().Format(time.RFC3339Nano),
		run.EndTime.UTC().Format(time.RFC3339Nano),
		run.Status,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// Insert stores one diagnostic event under the given run.
func (d *DB) Insert(runID string, ev *event.Event) error {
	dataJSON, err := json.Marshal(ev.Data)
	if err != nil {
		dataJSON = []byte("{}")
	}

	_, err = d.db.Exec(`
		INSERT INTO events (id, run_id, task, timestamp, category, severity, description, data_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID,
		runID,
		ev.Task,
		ev.Timestamp.UTC().Format(time.RFC3339Nano),
		string(ev.Category),
		int(ev.Severity),
		ev.Description,
		string(dataJSON),
	)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

// InsertAll stores a batch of events under the given run.
func (d *DB) InsertAll(runID string, events []*event.Event) error {
	for _, ev := range events {
		if err := d.Insert(runID, ev); err != nil {
			return err
		}
	}
	return nil
}

// QueryFilter controls which events are returned by Query.
type QueryFilter struct {
	Since       time.Time
	Until       time.Time
	Category    string
	Task        string
	MinSeverity event.Severity
	RunID       string
	Limit       int
}

// Query returns events matching the filter, ordered by timestamp descending.
func (d *DB) Query(f QueryFilter) ([]*event.Event, error) {
	query := `SELECT id, task, timestamp, category, severity, description, data_json
		FROM events WHERE 1=1`
	var args []interface{}

	if !f.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, f.Since.UTC().Format(time.RFC3339Nano))
	}
	if !f.Until.IsZero() {
		query += " AND timestamp <= ?"
		args = append(args, f.Until.UTC().Format(time.RFC3339Nano))
	}
	if f.Category != "" {
		query += " AND category = ?"
		args = append(args, f.Category)
	}
	if f.Task != "" {
		query += " AND task = ?"
		args = append(args, f.Task)
	}
	if f.MinSeverity > 0 {
		query += " AND severity >= ?"
		args = append(args, int(f.MinSeverity))
	}
	if f.RunID != "" {
		query += " AND run_id = ?"
		args = append(args, f.RunID)
	}

	query += " ORDER BY timestamp DESC"

	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []*event.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Purge deletes events and runs older than the given retention duration.
func (d *DB) Purge(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UTC().Format(time.RFC3339Nano)
	result, err := d.db.Exec(`DELETE FROM events WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging old events: %w", err)
	}
	if _, err := d.db.Exec(`DELETE FROM runs WHERE end_time < ?`, cutoff); err != nil {
		return 0, fmt.Errorf("purging old runs: %w", err)
	}
	return result.RowsAffected()
}

// Count returns the total number of stored events.
func (d *DB) Count() (int64, error) {
	var count int64
	err := d.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting events: %w", err)
	}
	return count, nil
}

func scanEvent(rows *sql.Rows) (*event.Event, error) {
	var ev event.Event
	var tsStr, category, dataJSON string
	var severity int

	err := rows.Scan(
		&ev.ID,
		&ev.Task,
		&tsStr,
		&category,
		&severity,
		&ev.Description,
		&dataJSON,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning event row: %w", err)
	}

	ev.Timestamp, _ = time.Parse(time.RFC3339Nano, tsStr)
	ev.Category = event.Category(category)
	ev.Severity = event.Severity(severity)
	ev.Data = make(map[string]any)
	if dataJSON != "" {
		_ = json.Unmarshal([]byte(dataJSON), &ev.Data)
	}

	return &ev, nil
}

func migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			instance_id TEXT NOT NULL,
			start_time  TEXT NOT NULL,
			end_time    TEXT NOT NULL,
			status      TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id          TEXT PRIMARY KEY,
			run_id      TEXT NOT NULL,
			task        TEXT NOT NULL,
			timestamp   TEXT NOT NULL,
			category    TEXT NOT NULL,
			severity    INTEGER NOT NULL,
			description TEXT NOT NULL,
			data_json   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_ts ON events(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_events_category ON events(category, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	slog.Debug("database schema up to date")
	return nil
}
