package ken

import (
	"testing"
	"time"
)

func TestWakeCreatesPendingRootSession(t *testing.T) {
	store := newMemStore()
	sess, err := Wake(store, "core/cli", "build parser", time.Now())
	if err != nil {
		t.Fatalf("Wake: %v", err)
	}
	if sess.Status != StatusPending {
		t.Fatalf("status = %s, want pending", sess.Status)
	}
	if sess.ParentID != nil {
		t.Fatalf("root session should have a nil parent_id, got %v", sess.ParentID)
	}
	if len(store.events) != 1 || store.events[0].Type != EventSessionCreated {
		t.Fatalf("expected a single session_created event, got %v", store.events)
	}
}
