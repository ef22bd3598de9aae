package ken

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/j-tyler/ken/internal/kenerr"
)

func TestTriggerRoundTrip(t *testing.T) {
	cases := []Trigger{
		{Kind: TriggerAllComplete, SessionIDs: []string{"a", "b"}},
		{Kind: TriggerAnyComplete, SessionIDs: []string{"c"}},
		{Kind: TriggerAnyComplete, SessionIDs: []string{}},
		{Kind: TriggerTimeoutSeconds, TimeoutSeconds: 30},
		{Kind: TriggerTimeoutSeconds, TimeoutSeconds: 0},
	}
	for _, want := range cases {
		data, err := json.Marshal(want)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var got Trigger
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if got.Kind != want.Kind || got.TimeoutSeconds != want.TimeoutSeconds || !stringSlicesEqual(got.SessionIDs, want.SessionIDs) {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
		}
	}
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestUnresolvedPlaceholderIsParseError(t *testing.T) {
	raw := `{"all_complete":"__CHILDREN__"}`
	_, err := ParseTrigger(raw)
	if err == nil {
		t.Fatal("expected parse error for unresolved __CHILDREN__ placeholder, got nil")
	}
	if !kenerr.Is(err, kenerr.Json) {
		t.Fatalf("expected kenerr.Json, got %v", err)
	}
}

func TestResolveChildrenPlaceholder(t *testing.T) {
	raw := `{"all_complete":"__CHILDREN__"}`
	resolved, err := ResolveChildrenPlaceholder(raw, []string{"c1", "c2"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if strings.Contains(resolved, "__CHILDREN__") {
		t.Fatalf("resolved trigger still contains placeholder: %s", resolved)
	}
	if !strings.Contains(resolved, `["c1","c2"]`) {
		t.Fatalf("resolved trigger missing encoded child ids: %s", resolved)
	}

	trigger, err := ParseTrigger(resolved)
	if err != nil {
		t.Fatalf("parse resolved trigger: %v", err)
	}
	if trigger.Kind != TriggerAllComplete || !stringSlicesEqual(trigger.SessionIDs, []string{"c1", "c2"}) {
		t.Fatalf("unexpected resolved trigger: %+v", trigger)
	}
}

func TestEvaluateAllComplete(t *testing.T) {
	statuses := map[string]Status{"a": StatusComplete, "b": StatusComplete}
	lookup := func(id string) (Status, bool) { s, ok := statuses[id]; return s, ok }

	trigger := Trigger{Kind: TriggerAllComplete, SessionIDs: []string{"a", "b"}}
	if !Evaluate(trigger, time.Now(), time.Now(), lookup) {
		t.Fatal("expected all_complete satisfied when both ids complete")
	}

	statuses["b"] = StatusActive
	if Evaluate(trigger, time.Now(), time.Now(), lookup) {
		t.Fatal("expected all_complete unsatisfied when one id is not complete")
	}

	unknown := Trigger{Kind: TriggerAllComplete, SessionIDs: []string{"missing"}}
	if Evaluate(unknown, time.Now(), time.Now(), lookup) {
		t.Fatal("unknown id should be treated as not-complete")
	}
}

func TestEvaluateAnyComplete(t *testing.T) {
	statuses := map[string]Status{"a": StatusActive, "b": StatusComplete}
	lookup := func(id string) (Status, bool) { s, ok := statuses[id]; return s, ok }

	trigger := Trigger{Kind: TriggerAnyComplete, SessionIDs: []string{"a", "b"}}
	if !Evaluate(trigger, time.Now(), time.Now(), lookup) {
		t.Fatal("expected any_complete satisfied when one id complete")
	}

	empty := Trigger{Kind: TriggerAnyComplete, SessionIDs: nil}
	if Evaluate(empty, time.Now(), time.Now(), lookup) {
		t.Fatal("any_complete over an empty list should never be satisfied")
	}
}

func TestEvaluateTimeoutSeconds(t *testing.T) {
	reference := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	trigger := Trigger{Kind: TriggerTimeoutSeconds, TimeoutSeconds: 30}

	before := reference.Add(29 * time.Second)
	if Evaluate(trigger, before, reference, nil) {
		t.Fatal("expected unsatisfied before 30 seconds elapsed")
	}

	after := reference.Add(30 * time.Second)
	if !Evaluate(trigger, after, reference, nil) {
		t.Fatal("expected satisfied at exactly 30 seconds elapsed")
	}
}
