package ken

import "testing"

func TestParseStatusRoundTrip(t *testing.T) {
	legal := []Status{StatusPending, StatusActive, StatusSleeping, StatusComplete, StatusFailed}
	for _, s := range legal {
		t.Run(string(s), func(t *testing.T) {
			if got := ParseStatus(s.String()); got != s {
				t.Fatalf("ParseStatus(%q) = %q, want %q", s, got, s)
			}
		})
	}
}

func TestParseStatusUnknownDefaultsToPending(t *testing.T) {
	for _, s := range []string{"", "bogus", "PENDING", "deleted"} {
		if got := ParseStatus(s); got != StatusPending {
			t.Fatalf("ParseStatus(%q) = %q, want pending", s, got)
		}
	}
}
