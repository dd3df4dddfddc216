// Package journal persists delivered events to SQLite so a run can be
// inspected after the fact.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"winwatch/internal/winevent"
)

// Schema for the winwatch event journal.
const schema = `
CREATE TABLE IF NOT EXISTS events (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    received_ns     INTEGER NOT NULL,
    hook            INTEGER NOT NULL,
    event_id        INTEGER NOT NULL,
    event_name      TEXT NOT NULL,
    window_handle   INTEGER NOT NULL,
    object_id       INTEGER NOT NULL,
    child_id        INTEGER NOT NULL,
    thread          INTEGER NOT NULL,
    time_ms         INTEGER NOT NULL,
    idle_ms         INTEGER
);

CREATE INDEX IF NOT EXISTS idx_events_received ON events(received_ns);
CREATE INDEX IF NOT EXISTS idx_events_event ON events(event_id, received_ns);
`

// Entry is one journaled event.
type Entry struct {
	ID           int64
	ReceivedAt   time.Time
	Hook         uintptr
	Event        winevent.ID
	EventName    string
	WindowHandle uintptr
	ObjectID     int32
	ChildID      int32
	Thread       uint32
	TimeMS       uint32
	IdleMS       sql.NullInt64
}

// Journal is the SQLite-backed event journal.
type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal database at the given path.
// busyTimeoutMs bounds lock waits; pass 0 for the driver default.
func Open(path string, busyTimeoutMs int) (*Journal, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	dsn := path + "?_journal_mode=WAL"
	if busyTimeoutMs > 0 {
		dsn += fmt.Sprintf("&_busy_timeout=%d", busyTimeoutMs)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Record appends one delivered payload. Implements the dispatch loop's
// recorder contract.
func (j *Journal) Record(p *winevent.Payload) error {
	if p == nil {
		return nil
	}

	var idleMS sql.NullInt64
	if p.Context != nil {
		if d, ok := p.Context[winevent.ContextIdleDuration].(time.Duration); ok {
			idleMS = sql.NullInt64{Int64: d.Milliseconds(), Valid: true}
		}
	}

	_, err := j.db.Exec(`
		INSERT INTO events (received_ns, hook, event_id, event_name, window_handle, object_id, child_id, thread, time_ms, idle_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UnixNano(), int64(p.Hook), uint32(p.Event), p.EventName,
		int64(p.WindowHandle), p.ObjectID, p.ChildID, p.Thread, p.TimeMS, idleMS,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	rows, err := j.db.Query(`
		SELECT id, received_ns, hook, event_id, event_name, window_handle, object_id, child_id, thread, time_ms, idle_ms
		FROM events ORDER BY received_ns DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var receivedNs, hook, handle int64
		var eventID uint32
		if err := rows.Scan(&e.ID, &receivedNs, &hook, &eventID, &e.EventName,
			&handle, &e.ObjectID, &e.ChildID, &e.Thread, &e.TimeMS, &e.IdleMS); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.ReceivedAt = time.Unix(0, receivedNs)
		e.Hook = uintptr(hook)
		e.Event = winevent.ID(eventID)
		e.WindowHandle = uintptr(handle)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the total number of journaled events.
func (j *Journal) Count() (int64, error) {
	var n int64
	if err := j.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// CountByEvent returns per-event totals keyed by event name.
func (j *Journal) CountByEvent() (map[string]int64, error) {
	rows, err := j.db.Query(`SELECT event_name, COUNT(*) FROM events GROUP BY event_name`)
	if err != nil {
		return nil, fmt.Errorf("count by event: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var name string
		var n int64
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[name] = n
	}
	return counts, rows.Err()
}

// Prune removes entries older than maxAge and returns how many went.
func (j *Journal) Prune(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).UnixNano()
	res, err := j.db.Exec(`DELETE FROM events WHERE received_ns < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune events: %w", err)
	}
	return res.RowsAffected()
}
