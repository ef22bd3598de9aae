package ken

import "time"

// Wake creates a new root session (parent_id nil) in the pending state and
// logs its creation. It is the sole entry point that creates a session
// outside of spawn_and_sleep.
func Wake(store Store, kenLabel, task string, now time.Time) (*Session, error) {
	sess := NewSession(kenLabel, task, nil, now)
	if err := store.InsertSession(sess); err != nil {
		return nil, err
	}
	if err := store.InsertEvent(NewEvent(&sess.ID, EventSessionCreated, nil, now)); err != nil {
		return nil, err
	}
	return sess, nil
}
