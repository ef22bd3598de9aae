package ken

import (
	"sort"
	"time"
)

// memStore is an in-memory Store used only by this package's tests, so the
// request handler and tick logic can be exercised without a SQLite file.
// The CAS and spawn_and_sleep atomicity guarantees are re-verified against
// the real driver in internal/kenstore/sqlite.
type memStore struct {
	sessions map[string]*Session
	events   []Event
}

func newMemStore() *memStore {
	return &memStore{sessions: map[string]*Session{}}
}

func cloneSession(s *Session) *Session {
	c := *s
	return &c
}

func (m *memStore) InsertSession(s *Session) error {
	if _, exists := m.sessions[s.ID]; exists {
		return &mockErr{"session already exists"}
	}
	m.sessions[s.ID] = cloneSession(s)
	return nil
}

type mockErr struct{ msg string }

func (e *mockErr) Error() string { return e.msg }

func (m *memStore) GetSession(id string) (*Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, notFoundErr(id)
	}
	return cloneSession(s), nil
}

func notFoundErr(id string) error {
	return &mockErr{"session " + id + " not found"}
}

func (m *memStore) GetSessionsByStatus(status Status) ([]*Session, error) {
	var out []*Session
	for _, s := range m.sessions {
		if s.Status == status {
			out = append(out, cloneSession(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) GetAllSessions() ([]*Session, error) {
	var out []*Session
	for _, s := range m.sessions {
		out = append(out, cloneSession(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) GetChildren(parentID string) ([]*Session, error) {
	var out []*Session
	for _, s := range m.sessions {
		if s.ParentID != nil && *s.ParentID == parentID {
			out = append(out, cloneSession(s))
		}
	}
	return out, nil
}

func (m *memStore) UpdateSessionStatus(id string, newStatus Status, now time.Time) error {
	s, ok := m.sessions[id]
	if !ok {
		return notFoundErr(id)
	}
	s.Status = newStatus
	s.UpdatedAt = now
	return nil
}

func (m *memStore) TryUpdateSessionStatus(id string, expected, newStatus Status, now time.Time) (bool, error) {
	s, ok := m.sessions[id]
	if !ok {
		return false, notFoundErr(id)
	}
	if s.Status != expected {
		return false, nil
	}
	s.Status = newStatus
	s.UpdatedAt = now
	return true, nil
}

func (m *memStore) CompleteSession(id string, result string, now time.Time) error {
	s, ok := m.sessions[id]
	if !ok {
		return notFoundErr(id)
	}
	s.Status = StatusComplete
	s.Result = &result
	s.UpdatedAt = now
	return nil
}

func (m *memStore) SleepSession(id string, trigger, checkpoint string, now time.Time) error {
	s, ok := m.sessions[id]
	if !ok {
		return notFoundErr(id)
	}
	s.Status = StatusSleeping
	s.Trigger = &trigger
	s.Checkpoint = &checkpoint
	s.UpdatedAt = now
	return nil
}

func (m *memStore) InsertEvent(e Event) error {
	m.events = append(m.events, e)
	return nil
}

func (m *memStore) SpawnAndSleep(parentID string, children []ChildSpec, trigger, checkpoint string, now time.Time) ([]string, error) {
	parent, ok := m.sessions[parentID]
	if !ok {
		return nil, notFoundErr(parentID)
	}

	ids := make([]string, 0, len(children))
	for _, c := range children {
		child := ReconstructSession(c.ID, c.Ken, c.Task, StatusPending, &parentID, nil, nil, nil, now, now)
		m.sessions[child.ID] = child
		ids = append(ids, child.ID)
	}

	parent.Status = StatusSleeping
	parent.Trigger = &trigger
	parent.Checkpoint = &checkpoint
	parent.UpdatedAt = now

	m.events = append(m.events, NewEvent(&parentID, EventChildrenSpawned, StrPtr(""), now))
	return ids, nil
}

func (m *memStore) Close() error { return nil }
