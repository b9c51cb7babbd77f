package search

import "testing"

func sampleCollections() map[string][]Candidate {
	return map[string][]Candidate{
		ResultUser: {
			{ID: "u1", Title: "Alice Martin", Description: "alice@acme.io", Fields: []string{"Alice Martin", "amartin", "alice@acme.io", "admin"}},
			{ID: "u2", Title: "Bob Stone", Description: "bob@acme.io", Fields: []string{"Bob Stone", "bstone", "bob@acme.io", "user"}},
		},
		ResultTeam: {
			{ID: "t1", Title: "Marketing", Description: "Brand and growth", Fields: []string{"Marketing", "Brand and growth"}},
		},
		ResultObjective: {
			{ID: "o1", Title: "Grow market share", Description: "Expand into two regions", Fields: []string{"Grow market share", "Expand into two regions"}},
			{ID: "o2", Title: "Ship billing v2", Description: "", Fields: []string{"Ship billing v2", ""}},
		},
		ResultResource: {
			{ID: "r1", Title: "Marketing playbook", Description: "Templates", Fields: []string{"Marketing playbook", "Templates"}},
		},
	}
}

var order = []string{ResultUser, ResultTeam, ResultObjective, ResultResource}

func TestMatchShortTermReturnsNothing(t *testing.T) {
	for _, term := range []string{"", "a", "ma", "  ma  "} {
		got := Match(term, sampleCollections(), order, DefaultLimit)
		if len(got.Items) != 0 || got.Total != 0 {
			t.Errorf("term %q: expected empty results, got %+v", term, got)
		}
	}
}

func TestMatchIsCaseInsensitiveSubstring(t *testing.T) {
	got := Match("MARKET", sampleCollections(), order, DefaultLimit)
	// Team "Marketing", objective "Grow market share", resource
	// "Marketing playbook".
	if got.Total != 3 {
		t.Fatalf("expected 3 matches, got %d (%+v)", got.Total, got.Items)
	}
	wantOrder := []string{"t1", "o1", "r1"}
	for i, want := range wantOrder {
		if got.Items[i].ID != want {
			t.Errorf("item %d: got %s, want %s", i, got.Items[i].ID, want)
		}
	}
}

func TestMatchCollectionOrderBeatsPosition(t *testing.T) {
	got := Match("acme", sampleCollections(), order, DefaultLimit)
	if got.Total != 2 {
		t.Fatalf("expected 2 matches, got %d", got.Total)
	}
	if got.Items[0].Type != ResultUser || got.Items[1].Type != ResultUser {
		t.Fatalf("expected user results first, got %+v", got.Items)
	}
}

func TestMatchSearchesRoleField(t *testing.T) {
	got := Match("admin", sampleCollections(), order, DefaultLimit)
	if got.Total != 1 || got.Items[0].ID != "u1" {
		t.Fatalf("expected only the admin user, got %+v", got)
	}
}

func TestMatchTruncatesButCountsTotal(t *testing.T) {
	collections := map[string][]Candidate{ResultObjective: {}}
	for i := 0; i < 10; i++ {
		collections[ResultObjective] = append(collections[ResultObjective], Candidate{
			ID:     "o" + string(rune('0'+i)),
			Title:  "Quarterly target",
			Fields: []string{"Quarterly target"},
		})
	}
	got := Match("quarterly", collections, []string{ResultObjective}, DefaultLimit)
	if len(got.Items) != DefaultLimit {
		t.Errorf("expected %d items, got %d", DefaultLimit, len(got.Items))
	}
	if got.Total != 10 {
		t.Errorf("expected total 10, got %d", got.Total)
	}
}

func TestMatchResultShape(t *testing.T) {
	got := Match("alice", sampleCollections(), order, DefaultLimit)
	if got.Total != 1 {
		t.Fatalf("expected 1 match, got %d", got.Total)
	}
	item := got.Items[0]
	if item.URL != "/users/u1" || item.Type != ResultUser || item.Title != "Alice Martin" {
		t.Fatalf("unexpected result %+v", item)
	}
}
