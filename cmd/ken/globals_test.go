package main

import (
	"errors"
	"testing"

	"github.com/j-tyler/ken/internal/kenerr"
)

func TestExitCodeForStructuralError(t *testing.T) {
	if got := exitCodeFor(kenerr.New(kenerr.Database, "boom")); got != 1 {
		t.Fatalf("exitCodeFor(Database) = %d, want 1", got)
	}
	if got := exitCodeFor(errors.New("plain")); got != 1 {
		t.Fatalf("exitCodeFor(plain) = %d, want 1", got)
	}
	if got := exitCodeFor(nil); got != 0 {
		t.Fatalf("exitCodeFor(nil) = %d, want 0", got)
	}
}
