package kenerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMatchesKind(t *testing.T) {
	err := New(SessionNotFound, "session x not found")
	if !Is(err, SessionNotFound) {
		t.Fatal("expected Is to match SessionNotFound")
	}
	if Is(err, Database) {
		t.Fatal("expected Is not to match Database")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(Io, "failed to write", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to find the wrapped cause")
	}
}

func TestOfReportsKind(t *testing.T) {
	err := fmt.Errorf("context: %w", New(InvalidRequest, "bad"))
	kind, ok := Of(err)
	if !ok || kind != InvalidRequest {
		t.Fatalf("Of = %v, %v, want InvalidRequest, true", kind, ok)
	}
}

func TestOfFalseForPlainError(t *testing.T) {
	if _, ok := Of(errors.New("plain")); ok {
		t.Fatal("expected ok=false for a plain error")
	}
}
