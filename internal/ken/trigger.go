package ken

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/j-tyler/ken/internal/kenerr"
)

// TriggerKind is the closed tag of the Trigger union.
type TriggerKind string

const (
	TriggerAllComplete    TriggerKind = "all_complete"
	TriggerAnyComplete    TriggerKind = "any_complete"
	TriggerTimeoutSeconds TriggerKind = "timeout_seconds"
)

// childrenPlaceholder is the literal token a spawn_and_sleep request may use
// in place of a concrete child-id list; it must be resolved (see
// ResolveChildrenPlaceholder) before the trigger is persisted or parsed.
const childrenPlaceholder = "__CHILDREN__"

// Trigger is the condition under which a sleeping session returns to
// pending. Exactly one of SessionIDs / TimeoutSeconds is meaningful,
// selected by Kind.
type Trigger struct {
	Kind           TriggerKind
	SessionIDs     []string
	TimeoutSeconds int64
}

// MarshalJSON encodes the trigger as the single-key tagged object described
// in the request/response contract.
func (t Trigger) MarshalJSON() ([]byte, error) {
	switch t.Kind {
	case TriggerAllComplete:
		return json.Marshal(map[string][]string{string(TriggerAllComplete): t.SessionIDs})
	case TriggerAnyComplete:
		return json.Marshal(map[string][]string{string(TriggerAnyComplete): t.SessionIDs})
	case TriggerTimeoutSeconds:
		return json.Marshal(map[string]int64{string(TriggerTimeoutSeconds): t.TimeoutSeconds})
	default:
		return nil, kenerr.New(kenerr.InvalidRequest, fmt.Sprintf("unknown trigger kind %q", t.Kind))
	}
}

// UnmarshalJSON decodes a single-key tagged trigger object. An unresolved
// "__CHILDREN__" placeholder is reported as a parse error rather than
// silently treated as an empty all_complete trigger.
func (t *Trigger) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return kenerr.Wrap(kenerr.Json, "trigger is not a JSON object", err)
	}
	if len(raw) != 1 {
		return kenerr.New(kenerr.Json, fmt.Sprintf("trigger must have exactly one key, got %d", len(raw)))
	}

	for key, payload := range raw {
		switch TriggerKind(key) {
		case TriggerAllComplete, TriggerAnyComplete:
			if isUnresolvedPlaceholder(payload) {
				return kenerr.New(kenerr.Json, fmt.Sprintf("trigger %q still contains an unresolved %s placeholder", key, childrenPlaceholder))
			}
			var ids []string
			if err := json.Unmarshal(payload, &ids); err != nil {
				return kenerr.Wrap(kenerr.Json, fmt.Sprintf("trigger %q payload must be a list of session ids", key), err)
			}
			t.Kind = TriggerKind(key)
			t.SessionIDs = ids
			return nil
		case TriggerTimeoutSeconds:
			var n int64
			if err := json.Unmarshal(payload, &n); err != nil {
				return kenerr.Wrap(kenerr.Json, "timeout_seconds payload must be an integer", err)
			}
			if n < 0 {
				return kenerr.New(kenerr.Json, "timeout_seconds must be non-negative")
			}
			t.Kind = TriggerTimeoutSeconds
			t.TimeoutSeconds = n
			return nil
		default:
			return kenerr.New(kenerr.Json, fmt.Sprintf("unknown trigger variant %q", key))
		}
	}
	return kenerr.New(kenerr.Json, "unreachable")
}

func isUnresolvedPlaceholder(payload json.RawMessage) bool {
	var s string
	if err := json.Unmarshal(payload, &s); err != nil {
		return false
	}
	return s == childrenPlaceholder
}

// ParseTrigger decodes a trigger from its JSON-encoded string form, as
// stored on Session.Trigger.
func ParseTrigger(raw string) (Trigger, error) {
	var t Trigger
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return Trigger{}, err
	}
	return t, nil
}

// ResolveChildrenPlaceholder performs the textual substitution described in
// the request contract: every occurrence of the quoted token
// "__CHILDREN__" within raw is replaced with the JSON array encoding of
// childIDs. This runs on the serialized trigger before it is ever parsed,
// so the evaluator never observes the placeholder.
func ResolveChildrenPlaceholder(raw string, childIDs []string) (string, error) {
	encoded, err := json.Marshal(childIDs)
	if err != nil {
		return "", kenerr.Wrap(kenerr.Json, "failed to encode child ids", err)
	}
	needle := `"` + childrenPlaceholder + `"`
	return strings.ReplaceAll(raw, needle, string(encoded)), nil
}

// StatusLookup answers "what is this session's current status" during
// trigger evaluation.
type StatusLookup func(id string) (Status, bool)

// Evaluate is a pure function of the trigger, the current time, the
// reference time (the session's updated_at at the moment it went to
// sleep), and a status oracle. Unknown or absent ids are treated as
// not-complete.
func Evaluate(t Trigger, now, referenceTime time.Time, lookup StatusLookup) bool {
	switch t.Kind {
	case TriggerAllComplete:
		for _, id := range t.SessionIDs {
			status, ok := lookup(id)
			if !ok || status != StatusComplete {
				return false
			}
		}
		return true
	case TriggerAnyComplete:
		for _, id := range t.SessionIDs {
			if status, ok := lookup(id); ok && status == StatusComplete {
				return true
			}
		}
		return false
	case TriggerTimeoutSeconds:
		elapsed := now.Sub(referenceTime)
		return elapsed >= time.Duration(t.TimeoutSeconds)*time.Second
	default:
		return false
	}
}
