package ken

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/j-tyler/ken/internal/kenerr"
)

// Response is the envelope returned for every request: the protocol-level
// failure (the session exists but is not active) is carried here rather
// than as a Go error, so the caller can always marshal and print it. An
// unknown request type is returned as a kenerr.InvalidRequest Go error.
type Response struct {
	OK    bool        `json:"ok"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// notActive builds the non-fatal response for a request against a session
// that isn't currently active. The store is never touched in this case.
func notActive(sess *Session) Response {
	return Response{OK: false, Error: fmt.Sprintf("Session %s is not active (status: %s)", sess.ID, sess.Status)}
}

// Handle applies one agent request atomically against store. Structural
// failures (store errors, an unknown session id) are returned as Go
// errors; protocol failures (session exists but isn't active) are carried
// in the returned Response with OK=false and a nil error.
func Handle(store Store, req Request, now time.Time) (Response, error) {
	sess, err := store.GetSession(req.SessionID)
	if err != nil {
		return Response{}, err
	}
	if sess.Status != StatusActive {
		return notActive(sess), nil
	}

	switch req.Type {
	case RequestComplete:
		return handleComplete(store, sess, req, now)
	case RequestSleep:
		return handleSleep(store, sess, req, now)
	case RequestSpawnAndSleep:
		return handleSpawnAndSleep(store, sess, req, now)
	default:
		return Response{}, kenerr.New(kenerr.InvalidRequest, fmt.Sprintf("unknown request type %q", req.Type))
	}
}

func handleComplete(store Store, sess *Session, req Request, now time.Time) (Response, error) {
	if err := store.CompleteSession(sess.ID, req.Result, now); err != nil {
		return Response{}, err
	}
	data := StrPtr(req.Result)
	if err := store.InsertEvent(NewEvent(&sess.ID, EventSessionCompleted, data, now)); err != nil {
		return Response{}, err
	}
	return Response{OK: true}, nil
}

func handleSleep(store Store, sess *Session, req Request, now time.Time) (Response, error) {
	triggerJSON, err := json.Marshal(req.Trigger)
	if err != nil {
		return Response{}, kenerr.Wrap(kenerr.Json, "failed to encode trigger", err)
	}
	if err := store.SleepSession(sess.ID, string(triggerJSON), req.Checkpoint, now); err != nil {
		return Response{}, err
	}
	data := StrPtr(string(triggerJSON))
	if err := store.InsertEvent(NewEvent(&sess.ID, EventSessionSleeping, data, now)); err != nil {
		return Response{}, err
	}
	return Response{OK: true}, nil
}

func handleSpawnAndSleep(store Store, sess *Session, req Request, now time.Time) (Response, error) {
	// Child ids are minted here, before the trigger is resolved, so that
	// the __CHILDREN__ placeholder substitutes the exact ids the store
	// will persist inside SpawnAndSleep's transaction.
	children := make([]ChildSpec, len(req.Children))
	plannedIDs := make([]string, len(req.Children))
	for i, c := range req.Children {
		id := uuid.NewString()
		children[i] = ChildSpec{ID: id, Ken: c.Ken, Task: c.Task}
		plannedIDs[i] = id
	}

	resolvedTrigger, err := ResolveChildrenPlaceholder(req.triggerRaw, plannedIDs)
	if err != nil {
		return Response{}, err
	}
	if _, err := ParseTrigger(resolvedTrigger); err != nil {
		return Response{}, err
	}

	childIDs, err := store.SpawnAndSleep(sess.ID, children, resolvedTrigger, req.Checkpoint, now)
	if err != nil {
		return Response{}, err
	}
	return Response{OK: true, Data: map[string]interface{}{"children": childIDs}}, nil
}
