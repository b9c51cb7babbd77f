package notifications

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNewEntityRefRejectsUnknownKind(t *testing.T) {
	if _, err := NewEntityRef("project", "abc"); !errors.Is(err, ErrUnknownEntityKind) {
		t.Fatalf("expected ErrUnknownEntityKind, got %v", err)
	}
	ref, err := NewEntityRef(EntityKeyResult, "kr-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Kind != EntityKeyResult || ref.ID != "kr-1" {
		t.Fatalf("unexpected ref %+v", ref)
	}
}

func TestEntityRefURL(t *testing.T) {
	cases := map[EntityKind]string{
		EntityObjective: "/objectives/x",
		EntityKeyResult: "/key-results/x",
		EntityCheckIn:   "/check-ins/x",
		EntityComment:   "/comments/x",
		EntityMeeting:   "/meetings/x",
		EntityResource:  "/resources/x",
		EntityTeam:      "/teams/x",
		EntityUser:      "/users/x",
		EntityCycle:     "/cycles/x",
	}
	for kind, want := range cases {
		got := EntityRef{Kind: kind, ID: "x"}.URL()
		if got != want {
			t.Errorf("URL for %s = %q, want %q", kind, got, want)
		}
	}
	if got := (EntityRef{Kind: "bogus", ID: "x"}).URL(); got != "" {
		t.Errorf("URL for unknown kind = %q, want empty", got)
	}
}

func TestEntityRefUnmarshalValidatesKind(t *testing.T) {
	var ref EntityRef
	if err := json.Unmarshal([]byte(`{"kind":"objective","id":"o-1"}`), &ref); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Kind != EntityObjective {
		t.Fatalf("unexpected kind %q", ref.Kind)
	}
	if err := json.Unmarshal([]byte(`{"kind":"widget","id":"w-1"}`), &ref); !errors.Is(err, ErrUnknownEntityKind) {
		t.Fatalf("expected ErrUnknownEntityKind, got %v", err)
	}
}
