// Package sqlite is the durable Store implementation: sessions and events
// persisted to a SQLite file, with compare-and-swap status transitions and
// an atomic spawn_and_sleep composite.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/j-tyler/ken/internal/ken"
	"github.com/j-tyler/ken/internal/kenerr"
)

// Store is a ken.Store backed by a SQLite file.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	ken TEXT NOT NULL,
	task TEXT NOT NULL,
	status TEXT NOT NULL,
	parent_id TEXT REFERENCES sessions(id),
	trigger TEXT,
	checkpoint TEXT,
	result TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status);
CREATE INDEX IF NOT EXISTS idx_sessions_parent_id ON sessions(parent_id);

CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts DATETIME NOT NULL,
	session_id TEXT REFERENCES sessions(id),
	event_type TEXT NOT NULL,
	data TEXT
);
CREATE INDEX IF NOT EXISTS idx_events_session_id ON events(session_id);
CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts);
`

// Create opens (and, if necessary, initializes) the store at path. It
// enables write-ahead logging so that a crash between writes leaves the
// file consistent.
func Create(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, kenerr.Wrap(kenerr.Database, "failed to open database", err)
	}
	// A single connection avoids SQLITE_BUSY between this process's own
	// statements; the coordinator is a short-lived, mostly-sequential
	// process anyway. A CAS that loses a race is reported, not retried.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, kenerr.Wrap(kenerr.Database, "failed to enable WAL", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, kenerr.Wrap(kenerr.Database, "failed to create schema", err)
	}
	return &Store{db: db}, nil
}

// Open attaches to an existing store at path without re-asserting schema
// creation is new (CREATE TABLE IF NOT EXISTS makes Create idempotent, so
// Open is Create in practice; kept distinct to mirror the store contract).
func Open(path string) (*Store, error) {
	return Create(path)
}

func (s *Store) Close() error { return s.db.Close() }

func nullableString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func ptrFromNullable(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}

func (s *Store) InsertSession(sess *ken.Session) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (id, ken, task, status, parent_id, trigger, checkpoint, result, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sess.ID, sess.Ken, sess.Task, string(sess.Status), nullableString(sess.ParentID),
		nullableString(sess.Trigger), nullableString(sess.Checkpoint), nullableString(sess.Result),
		sess.CreatedAt.UTC(), sess.UpdatedAt.UTC())
	if err != nil {
		return kenerr.Wrap(kenerr.Database, fmt.Sprintf("failed to insert session %s", sess.ID), err)
	}
	return nil
}

func scanSession(row *sql.Row) (*ken.Session, error) {
	var id, kenLabel, task, status string
	var parentID, trigger, checkpoint, result sql.NullString
	var createdAt, updatedAt time.Time

	if err := row.Scan(&id, &kenLabel, &task, &status, &parentID, &trigger, &checkpoint, &result, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return ken.ReconstructSession(id, kenLabel, task, ken.ParseStatus(status),
		ptrFromNullable(parentID), ptrFromNullable(trigger), ptrFromNullable(checkpoint), ptrFromNullable(result),
		createdAt, updatedAt), nil
}

func (s *Store) GetSession(id string) (*ken.Session, error) {
	row := s.db.QueryRow(`
		SELECT id, ken, task, status, parent_id, trigger, checkpoint, result, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id)
	sess, err := scanSession(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, kenerr.New(kenerr.SessionNotFound, fmt.Sprintf("session %s not found", id))
		}
		return nil, kenerr.Wrap(kenerr.Database, fmt.Sprintf("failed to load session %s", id), err)
	}
	return sess, nil
}

func (s *Store) querySessions(query string, args ...interface{}) ([]*ken.Session, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, kenerr.Wrap(kenerr.Database, "failed to query sessions", err)
	}
	defer rows.Close()

	var out []*ken.Session
	for rows.Next() {
		var id, kenLabel, task, status string
		var parentID, trigger, checkpoint, result sql.NullString
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&id, &kenLabel, &task, &status, &parentID, &trigger, &checkpoint, &result, &createdAt, &updatedAt); err != nil {
			return nil, kenerr.Wrap(kenerr.Database, "failed to scan session row", err)
		}
		out = append(out, ken.ReconstructSession(id, kenLabel, task, ken.ParseStatus(status),
			ptrFromNullable(parentID), ptrFromNullable(trigger), ptrFromNullable(checkpoint), ptrFromNullable(result),
			createdAt, updatedAt))
	}
	return out, rows.Err()
}

func (s *Store) GetSessionsByStatus(status ken.Status) ([]*ken.Session, error) {
	return s.querySessions(`
		SELECT id, ken, task, status, parent_id, trigger, checkpoint, result, created_at, updated_at
		FROM sessions WHERE status = ? ORDER BY created_at ASC
	`, string(status))
}

func (s *Store) GetAllSessions() ([]*ken.Session, error) {
	return s.querySessions(`
		SELECT id, ken, task, status, parent_id, trigger, checkpoint, result, created_at, updated_at
		FROM sessions ORDER BY created_at ASC
	`)
}

func (s *Store) GetChildren(parentID string) ([]*ken.Session, error) {
	return s.querySessions(`
		SELECT id, ken, task, status, parent_id, trigger, checkpoint, result, created_at, updated_at
		FROM sessions WHERE parent_id = ? ORDER BY created_at ASC
	`, parentID)
}

func (s *Store) UpdateSessionStatus(id string, newStatus ken.Status, now time.Time) error {
	res, err := s.db.Exec(`UPDATE sessions SET status = ?, updated_at = ? WHERE id = ?`, string(newStatus), now.UTC(), id)
	if err != nil {
		return kenerr.Wrap(kenerr.Database, fmt.Sprintf("failed to update session %s", id), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return kenerr.Wrap(kenerr.Database, "failed to read rows affected", err)
	}
	if n == 0 {
		return kenerr.New(kenerr.SessionNotFound, fmt.Sprintf("session %s not found", id))
	}
	return nil
}

func (s *Store) TryUpdateSessionStatus(id string, expected, newStatus ken.Status, now time.Time) (bool, error) {
	res, err := s.db.Exec(`
		UPDATE sessions SET status = ?, updated_at = ? WHERE id = ? AND status = ?
	`, string(newStatus), now.UTC(), id, string(expected))
	if err != nil {
		return false, kenerr.Wrap(kenerr.Database, fmt.Sprintf("failed to CAS session %s", id), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, kenerr.Wrap(kenerr.Database, "failed to read rows affected", err)
	}
	return n == 1, nil
}

func (s *Store) CompleteSession(id string, result string, now time.Time) error {
	res, err := s.db.Exec(`
		UPDATE sessions SET status = ?, result = ?, updated_at = ? WHERE id = ?
	`, string(ken.StatusComplete), result, now.UTC(), id)
	if err != nil {
		return kenerr.Wrap(kenerr.Database, fmt.Sprintf("failed to complete session %s", id), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return kenerr.Wrap(kenerr.Database, "failed to read rows affected", err)
	}
	if n == 0 {
		return kenerr.New(kenerr.SessionNotFound, fmt.Sprintf("session %s not found", id))
	}
	return nil
}

func (s *Store) SleepSession(id string, trigger, checkpoint string, now time.Time) error {
	res, err := s.db.Exec(`
		UPDATE sessions SET status = ?, trigger = ?, checkpoint = ?, updated_at = ? WHERE id = ?
	`, string(ken.StatusSleeping), trigger, checkpoint, now.UTC(), id)
	if err != nil {
		return kenerr.Wrap(kenerr.Database, fmt.Sprintf("failed to sleep session %s", id), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return kenerr.Wrap(kenerr.Database, "failed to read rows affected", err)
	}
	if n == 0 {
		return kenerr.New(kenerr.SessionNotFound, fmt.Sprintf("session %s not found", id))
	}
	return nil
}

func (s *Store) InsertEvent(e ken.Event) error {
	_, err := s.db.Exec(`
		INSERT INTO events (ts, session_id, event_type, data) VALUES (?, ?, ?, ?)
	`, e.Timestamp.UTC(), nullableString(e.SessionID), string(e.Type), nullableString(e.Data))
	if err != nil {
		return kenerr.Wrap(kenerr.Database, "failed to insert event", err)
	}
	return nil
}

// SpawnAndSleep inserts every child as pending, transitions the parent to
// sleeping, and logs a children_spawned event, all inside one transaction:
// a concurrent reader never observes a parent sleeping without its
// children, or children without a sleeping parent.
func (s *Store) SpawnAndSleep(parentID string, children []ken.ChildSpec, trigger, checkpoint string, now time.Time) ([]string, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, kenerr.Wrap(kenerr.Database, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	childIDs := make([]string, 0, len(children))
	for _, c := range children {
		if _, err := tx.Exec(`
			INSERT INTO sessions (id, ken, task, status, parent_id, trigger, checkpoint, result, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, NULL, NULL, NULL, ?, ?)
		`, c.ID, c.Ken, c.Task, string(ken.StatusPending), parentID, now.UTC(), now.UTC()); err != nil {
			return nil, kenerr.Wrap(kenerr.Database, "failed to insert child session", err)
		}
		childIDs = append(childIDs, c.ID)
	}

	res, err := tx.Exec(`
		UPDATE sessions SET status = ?, trigger = ?, checkpoint = ?, updated_at = ? WHERE id = ?
	`, string(ken.StatusSleeping), trigger, checkpoint, now.UTC(), parentID)
	if err != nil {
		return nil, kenerr.Wrap(kenerr.Database, fmt.Sprintf("failed to sleep parent %s", parentID), err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, kenerr.Wrap(kenerr.Database, "failed to read rows affected", err)
	} else if n == 0 {
		return nil, kenerr.New(kenerr.SessionNotFound, fmt.Sprintf("session %s not found", parentID))
	}

	eventData, err := eventDataForChildren(childIDs)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(`
		INSERT INTO events (ts, session_id, event_type, data) VALUES (?, ?, ?, ?)
	`, now.UTC(), parentID, string(ken.EventChildrenSpawned), eventData); err != nil {
		return nil, kenerr.Wrap(kenerr.Database, "failed to log children_spawned event", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, kenerr.Wrap(kenerr.Database, "failed to commit spawn_and_sleep", err)
	}
	return childIDs, nil
}

func eventDataForChildren(childIDs []string) (string, error) {
	data, err := json.Marshal(map[string][]string{"children": childIDs})
	if err != nil {
		return "", kenerr.Wrap(kenerr.Json, "failed to encode children_spawned event data", err)
	}
	return string(data), nil
}
