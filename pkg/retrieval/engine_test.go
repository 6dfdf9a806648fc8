package retrieval

import (
	"context"
	"log"
	"os"
	"testing"

	"ai-support-be/pkg/catalog"
	"ai-support-be/pkg/query"
)

func testCatalog() []catalog.Entry {
	return []catalog.Entry{
		{ID: "p1", Name: "V5 XL Kit", Category: catalog.CategoryMainProduct, Group: "devices", Description: "Flagship concentrate vaporizer kit"},
		{ID: "p2", Name: "V5 Kit", Category: catalog.CategoryMainProduct, Group: "devices", Description: "Portable concentrate kit"},
		{ID: "p3", Name: "Core 2.0 Deluxe Kit", Category: catalog.CategoryMainProduct, Group: "devices", Description: "All in one concentrate kit"},
		{ID: "p4", Name: "Hemp Hoodie", Category: catalog.CategoryAccessory, Group: "hemp_clothing", Description: "Heavyweight hemp hoodie"},
		{ID: "p5", Name: "Hemp T-Shirt", Category: catalog.CategoryAccessory, Group: "hemp_clothing", Description: "Organic hemp tee"},
		{ID: "p6", Name: "Replacement Drawstring", Category: catalog.CategoryReplacementPart, Group: "hemp_clothing", Description: "Spare drawstring for the hemp hoodie"},
		{ID: "p7", Name: "Glass Bubbler", Category: catalog.CategoryAccessory, Group: "glass", Description: "Water attachment for smoother hits"},
		{ID: "p8", Name: "Replacement Glass Bubbler", Category: catalog.CategoryReplacementPart, Group: "glass", Description: "Spare bubbler glass"},
		{ID: "p9", Name: "UV Stash Jar", Category: catalog.CategoryAccessory, Group: "uv_jars", Description: "Airtight storage jar"},
		{ID: "p10", Name: "18650 Battery", Category: catalog.CategoryAccessory, Group: "batteries", Description: "High drain cell"},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	idx := catalog.NewIndex(testCatalog(), nil)
	return NewEngine(idx, nil, DefaultConfig(), log.New(os.Stdout, "", 0))
}

func retrieve(t *testing.T, e *Engine, text string) []catalog.Entry {
	t.Helper()
	return e.Retrieve(context.Background(), query.Normalize(text), 5, SessionHint{})
}

func ids(entries []catalog.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func assertOrder(t *testing.T, got []catalog.Entry, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", ids(got), want)
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("got %v, want %v", ids(got), want)
		}
	}
}

func TestClothingQueryReturnsOnlyClothing(t *testing.T) {
	e := newTestEngine(t)
	got := retrieve(t, e, "do you sell hoodies")

	if len(got) == 0 {
		t.Fatal("no results for hoodies")
	}
	for _, entry := range got {
		if entry.Group != "hemp_clothing" {
			t.Errorf("non-clothing entry %s in results", entry.ID)
		}
		if entry.Category == catalog.CategoryReplacementPart {
			t.Errorf("replacement part %s surfaced for a clothing query", entry.ID)
		}
	}
	if got[0].ID != "p4" {
		t.Errorf("first result = %s, want the hoodie itself", got[0].ID)
	}
}

func TestReplacementPartsSuppressedByDefault(t *testing.T) {
	e := newTestEngine(t)
	got := retrieve(t, e, "glass bubbler")

	assertOrder(t, got, "p7")
}

func TestReplacementPartsReturnedWhenAskedFor(t *testing.T) {
	e := newTestEngine(t)
	got := retrieve(t, e, "replacement glass bubbler")

	found := false
	for _, entry := range got {
		if entry.ID == "p8" {
			found = true
		}
	}
	if !found {
		t.Errorf("explicit parts request missing the part: %v", ids(got))
	}
}

func TestSynonymsResolveToSameEntries(t *testing.T) {
	e := newTestEngine(t)
	a := retrieve(t, e, "bubbler")
	b := retrieve(t, e, "hydratube")

	if len(a) == 0 || len(b) == 0 {
		t.Fatalf("synonym lookup came back empty: %v / %v", ids(a), ids(b))
	}
	if len(a) != len(b) {
		t.Fatalf("synonym results differ: %v vs %v", ids(a), ids(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Errorf("synonym results differ: %v vs %v", ids(a), ids(b))
		}
	}
}

func TestNoMatchesReturnsEmpty(t *testing.T) {
	e := newTestEngine(t)

	if got := retrieve(t, e, "quantum flux capacitor"); len(got) != 0 {
		t.Errorf("nonsense query returned %v", ids(got))
	}
	if got := retrieve(t, e, ""); len(got) != 0 {
		t.Errorf("empty query returned %v", ids(got))
	}
}

func TestEmptyCatalogReturnsEmpty(t *testing.T) {
	idx := catalog.NewIndex(nil, nil)
	e := NewEngine(idx, nil, DefaultConfig(), log.New(os.Stdout, "", 0))

	if got := retrieve(t, e, "hoodies"); len(got) != 0 {
		t.Errorf("empty catalog returned %v", ids(got))
	}
}

func TestFlagshipShortcutOrdersKits(t *testing.T) {
	e := newTestEngine(t)
	got := retrieve(t, e, "what do you sell")

	// Hand-tuned kit priority, not catalog order: XL first, then Core,
	// then the base V5.
	assertOrder(t, got, "p1", "p3", "p2")
}

func TestMaterialQueryPromotesFlagships(t *testing.T) {
	e := newTestEngine(t)
	got := retrieve(t, e, "concentrate vaporizer")

	assertOrder(t, got, "p1", "p3", "p2")
}

func TestSessionMaterialPreferenceShapesRanking(t *testing.T) {
	idx := catalog.NewIndex(testCatalog(), nil)
	e := NewEngine(idx, nil, DefaultConfig(), log.New(os.Stdout, "", 0))
	q := query.Normalize("kit")

	plain := e.Retrieve(context.Background(), q, 5, SessionHint{})
	assertOrder(t, plain, "p1", "p2", "p3")

	hinted := e.Retrieve(context.Background(), q, 5, SessionHint{
		Preferences: map[string]string{"material": "concentrate"},
	})
	assertOrder(t, hinted, "p1", "p3", "p2")
}

func TestTiesBreakByCatalogOrder(t *testing.T) {
	e := newTestEngine(t)
	got := retrieve(t, e, "hemp")

	// p4 and p5 score identically; insertion order decides.
	assertOrder(t, got, "p4", "p5")
}

func TestTopKBoundsResults(t *testing.T) {
	e := newTestEngine(t)
	got := e.Retrieve(context.Background(), query.Normalize("kit"), 2, SessionHint{})

	if len(got) != 2 {
		t.Fatalf("topK=2 returned %d results", len(got))
	}
}
