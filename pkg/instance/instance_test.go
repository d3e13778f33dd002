package instance

import "testing"

func TestIDPrefersDyno(t *testing.T) {
	t.Setenv("DYNO", "web.2")
	if got := ID(); got != "web.2" {
		t.Fatalf("expected dyno name, got %q", got)
	}
}

func TestIDFallsBack(t *testing.T) {
	t.Setenv("DYNO", "")
	if ID() == "" {
		t.Fatalf("expected non-empty instance id")
	}
}
