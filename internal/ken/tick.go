package ken

import "time"

// TickResult is the outcome of one Tick invocation: either a session to
// spawn, or none.
type TickResult struct {
	Spawned *Session
}

// Tick performs a single invocation's worth of work: a wake scan over every
// sleeping session, followed by an activation scan that promotes at most
// one pending session to active. It is the only path that may promote
// sleeping→pending or pending→active.
func Tick(store Store, now time.Time) (TickResult, error) {
	if err := wakeScan(store, now); err != nil {
		return TickResult{}, err
	}
	return activationScan(store, now)
}

// wakeScan parses and evaluates the trigger of every sleeping session.
// Sessions whose trigger fails to parse are left untouched (the failure is
// logged as trigger_parse_error); sessions whose trigger is satisfied are
// raced back to pending via compare-and-swap, so a concurrent tick losing
// the race is not an error.
func wakeScan(store Store, now time.Time) error {
	sleepers, err := store.GetSessionsByStatus(StatusSleeping)
	if err != nil {
		return err
	}

	for _, s := range sleepers {
		if s.Trigger == nil {
			continue
		}
		trigger, err := ParseTrigger(*s.Trigger)
		if err != nil {
			if logErr := store.InsertEvent(NewEvent(&s.ID, EventTriggerParseError, StrPtr(err.Error()), now)); logErr != nil {
				return logErr
			}
			continue
		}

		satisfied := Evaluate(trigger, now, s.UpdatedAt, func(id string) (Status, bool) {
			other, err := store.GetSession(id)
			if err != nil {
				return "", false
			}
			return other.Status, true
		})
		if !satisfied {
			continue
		}

		ok, err := store.TryUpdateSessionStatus(s.ID, StatusSleeping, StatusPending, now)
		if err != nil {
			return err
		}
		if !ok {
			// Another concurrent tick already woke this session.
			continue
		}
		if err := store.InsertEvent(NewEvent(&s.ID, EventTriggerSatisfied, nil, now)); err != nil {
			return err
		}
	}
	return nil
}

// activationScan enumerates pending sessions and attempts to CAS each to
// active in turn; the first success wins and is returned. At most one
// session is activated per Tick.
func activationScan(store Store, now time.Time) (TickResult, error) {
	pending, err := store.GetSessionsByStatus(StatusPending)
	if err != nil {
		return TickResult{}, err
	}

	for _, s := range pending {
		ok, err := store.TryUpdateSessionStatus(s.ID, StatusPending, StatusActive, now)
		if err != nil {
			return TickResult{}, err
		}
		if !ok {
			continue
		}
		if err := store.InsertEvent(NewEvent(&s.ID, EventSessionActivated, nil, now)); err != nil {
			return TickResult{}, err
		}
		s.Status = StatusActive
		s.UpdatedAt = now
		return TickResult{Spawned: s}, nil
	}
	return TickResult{}, nil
}
