package ken

import "time"

// ChildSpec describes one child session requested by a spawn_and_sleep
// request. ID is minted by the caller (not the store) so that the trigger's
// __CHILDREN__ placeholder can be resolved to the same ids the store will
// persist.
type ChildSpec struct {
	ID   string
	Ken  string
	Task string
}

// Store is the durable, transactional record of sessions and events. It is
// the only component that mutates persisted state; everything else in this
// package operates on a Store.
//
// try_update_session_status is the sole concurrency-safe transition
// primitive: every status change driven by the tick or the request handler
// under potential contention goes through it. update_session_status is
// reserved for callers that already hold exclusivity through a transaction
// boundary. SpawnAndSleep does not call it: it transitions the parent
// inside its own transaction.
type Store interface {
	// InsertSession persists a new session. Implementations fail if id
	// collides with an existing row.
	InsertSession(s *Session) error

	// GetSession returns the session or a kenerr.SessionNotFound error.
	GetSession(id string) (*Session, error)

	// GetSessionsByStatus returns sessions with the given status, ordered
	// by created_at ascending.
	GetSessionsByStatus(status Status) ([]*Session, error)

	// GetAllSessions returns every session in the store.
	GetAllSessions() ([]*Session, error)

	// GetChildren returns every session whose parent_id is parentID.
	GetChildren(parentID string) ([]*Session, error)

	// UpdateSessionStatus unconditionally sets status and bumps
	// updated_at. Reserved for composites that already hold exclusivity.
	UpdateSessionStatus(id string, newStatus Status, now time.Time) error

	// TryUpdateSessionStatus performs a compare-and-swap on status: it
	// updates the row only if its current status equals expected, and
	// reports whether the swap happened.
	TryUpdateSessionStatus(id string, expected, newStatus Status, now time.Time) (bool, error)

	// CompleteSession transitions a session to complete and stores result.
	CompleteSession(id string, result string, now time.Time) error

	// SleepSession transitions a session to sleeping and stores trigger
	// and checkpoint.
	SleepSession(id string, trigger, checkpoint string, now time.Time) error

	// InsertEvent appends an event; events are never updated.
	InsertEvent(e Event) error

	// SpawnAndSleep is the atomic composite: insert every child as
	// pending, transition the parent to sleeping, and log a
	// children_spawned event, all under one transaction. Readers observe
	// either the pre-state or the post-state, never a partial one. It
	// returns the minted child ids in the order of children.
	SpawnAndSleep(parentID string, children []ChildSpec, trigger, checkpoint string, now time.Time) ([]string, error)

	// Close releases underlying resources.
	Close() error
}
