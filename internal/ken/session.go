package ken

import (
	"time"

	"github.com/google/uuid"
)

// Session is the unit of durable work: a single named task handed to an
// agent, tracked from wake through completion.
type Session struct {
	ID         string
	Ken        string
	Task       string
	Status     Status
	ParentID   *string
	Trigger    *string
	Checkpoint *string
	Result     *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewSession constructs a fresh root or child session with a newly minted
// id, status pending.
func NewSession(kenLabel, task string, parentID *string, now time.Time) *Session {
	return newSessionWithID(uuid.NewString(), kenLabel, task, parentID, now)
}

// ReconstructSession builds a Session from an explicit id, for rehydrating
// rows read back from the store.
func ReconstructSession(id, kenLabel, task string, status Status, parentID, trigger, checkpoint, result *string, createdAt, updatedAt time.Time) *Session {
	return &Session{
		ID:         id,
		Ken:        kenLabel,
		Task:       task,
		Status:     status,
		ParentID:   parentID,
		Trigger:    trigger,
		Checkpoint: checkpoint,
		Result:     result,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}
}

func newSessionWithID(id, kenLabel, task string, parentID *string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Ken:       kenLabel,
		Task:      task,
		Status:    StatusPending,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// EventType is the closed vocabulary of append-only event log entries.
type EventType string

const (
	EventSessionCreated    EventType = "session_created"
	EventSessionActivated  EventType = "session_activated"
	EventSessionSleeping   EventType = "session_sleeping"
	EventSessionCompleted  EventType = "session_completed"
	EventChildrenSpawned   EventType = "children_spawned"
	EventTriggerSatisfied  EventType = "trigger_satisfied"
	EventTriggerParseError EventType = "trigger_parse_error"
)

// Event is an append-only log entry. SessionID is nil for system-level
// events not tied to any one session.
type Event struct {
	ID        int64
	Timestamp time.Time
	SessionID *string
	Type      EventType
	Data      *string
}

// NewEvent stamps Timestamp at construction time.
func NewEvent(sessionID *string, eventType EventType, data *string, now time.Time) Event {
	return Event{
		Timestamp: now,
		SessionID: sessionID,
		Type:      eventType,
		Data:      data,
	}
}

// StrPtr is a small helper for building optional string fields inline.
func StrPtr(s string) *string { return &s }
