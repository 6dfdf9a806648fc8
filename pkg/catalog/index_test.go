package catalog

import (
	"reflect"
	"testing"
)

func testEntries() []Entry {
	price := func(v float64) *float64 { return &v }
	return []Entry{
		{ID: "p1", Name: "V5 XL Kit", Category: CategoryMainProduct, Group: "devices", Description: "Concentrate vaporizer kit with glass bubbler", Price: price(120), InStock: true},
		{ID: "p2", Name: "Hemp Hoodie", Category: CategoryAccessory, Group: "hemp_clothing", Description: "Heavyweight hemp hoodie", Price: price(60), InStock: true},
		{ID: "p3", Name: "UV Stash Jar", Category: CategoryAccessory, Group: "uv_jars", Description: "Airtight UV glass jar", Price: price(15), InStock: true},
		{ID: "p4", Name: "Replacement Glass Bubbler", Category: CategoryReplacementPart, Group: "glass", Description: "Spare hydratube for the V5", Price: price(25), InStock: true},
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"lowercases and splits", "Hemp Hoodie", []string{"hemp", "hoodie"}},
		{"drops single chars", "a V5 kit", []string{"v5", "kit"}},
		{"strips punctuation", "jars, glass & hoodies!", []string{"jars", "glass", "hoodies"}},
		{"empty input", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSnapshotLookup(t *testing.T) {
	idx := NewIndex(testEntries(), nil)
	snap := idx.Snapshot()

	if got := snap.Lookup("hoodie"); len(got) != 1 || snap.Entries[got[0]].ID != "p2" {
		t.Errorf("Lookup(hoodie) = %v, want [p2]", got)
	}
	// Name token pairs are indexed too.
	if got := snap.Lookup("stash jar"); len(got) != 1 || snap.Entries[got[0]].ID != "p3" {
		t.Errorf("Lookup(%q) = %v, want [p3]", "stash jar", got)
	}
	// Description tokens reach the entry as well.
	if got := snap.Lookup("hydratube"); len(got) != 1 || snap.Entries[got[0]].ID != "p4" {
		t.Errorf("Lookup(hydratube) = %v, want [p4]", got)
	}
}

func TestSnapshotGroupsMatching(t *testing.T) {
	idx := NewIndex(testEntries(), nil)
	snap := idx.Snapshot()

	got := snap.GroupsMatching("clothing")
	if len(got) != 1 || snap.Entries[got[0]].ID != "p2" {
		t.Errorf("GroupsMatching(clothing) = %v, want [p2]", got)
	}
}

func TestReloadSwapsSnapshot(t *testing.T) {
	idx := NewIndex(testEntries(), nil)
	old := idx.Snapshot()

	idx.Reload([]Entry{{ID: "n1", Name: "Core 2.0 Deluxe Kit", Category: CategoryMainProduct, Group: "devices"}})
	fresh := idx.Snapshot()

	if fresh == old {
		t.Fatal("Reload did not publish a new snapshot")
	}
	// The old snapshot keeps serving its own data.
	if len(old.Entries) != 4 {
		t.Errorf("old snapshot mutated: %d entries", len(old.Entries))
	}
	if fresh.ByID("n1") == nil {
		t.Error("new snapshot missing reloaded entry")
	}
	if fresh.ByID("p1") != nil {
		t.Error("new snapshot still contains old entry")
	}
}

func TestSynonymExpansionSymmetry(t *testing.T) {
	table := NewSynonymTable(DefaultSynonyms)

	if !contains(table.Expand("bubbler"), "hydratube") {
		t.Error("bubbler does not expand to hydratube")
	}
	if !contains(table.Expand("hydratube"), "bubbler") {
		t.Error("hydratube does not expand to bubbler")
	}
}

func TestExpandPlurals(t *testing.T) {
	table := NewSynonymTable(DefaultSynonyms)

	tests := []struct {
		token string
		want  string
	}{
		{"hoodies", "hoodie"},
		{"jar", "jars"},
		{"batteries", "battery"},
		{"glasses", "glass"},
	}
	for _, tt := range tests {
		if !contains(table.Expand(tt.token), tt.want) {
			t.Errorf("Expand(%q) missing %q: %v", tt.token, tt.want, table.Expand(tt.token))
		}
	}
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
