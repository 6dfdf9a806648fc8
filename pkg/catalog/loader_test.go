package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeCatalogFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileSourceAcceptsBothShapes(t *testing.T) {
	bare := writeCatalogFile(t, `[{"id":"p1","name":"V5 Kit","category":"main_product","group":"devices"}]`)
	wrapped := writeCatalogFile(t, `{"products":[{"id":"p1","name":"V5 Kit","category":"main_product","group":"devices"}]}`)

	for _, path := range []string{bare, wrapped} {
		entries, err := NewFileSource(path).Load(context.Background())
		if err != nil {
			t.Fatalf("Load(%s): %v", path, err)
		}
		if len(entries) != 1 || entries[0].ID != "p1" {
			t.Errorf("Load(%s) = %v", path, entries)
		}
	}
}

func TestFileSourceRejectsDuplicateIds(t *testing.T) {
	path := writeCatalogFile(t, `[{"id":"p1","name":"A"},{"id":"p1","name":"B"}]`)

	if _, err := NewFileSource(path).Load(context.Background()); err == nil {
		t.Fatal("duplicate ids accepted")
	}
}

func TestFileSourceSkipsIncompleteRows(t *testing.T) {
	path := writeCatalogFile(t, `[{"id":"","name":"nameless"},{"id":"p2","name":""},{"id":"p3","name":"Glass Globe"}]`)

	entries, err := NewFileSource(path).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].ID != "p3" {
		t.Errorf("entries = %v", entries)
	}
	// Missing category defaults to accessory.
	if entries[0].Category != CategoryAccessory {
		t.Errorf("default category = %s", entries[0].Category)
	}
}
