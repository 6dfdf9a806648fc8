package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Source loads a full catalog. Implementations: FileSource for the JSON
// export, GormSource for the storefront database.
type Source interface {
	Load(ctx context.Context) ([]Entry, error)
}

// FileSource reads the catalog from a JSON export file.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

type catalogFile struct {
	Products []Entry `json:"products"`
}

func (s *FileSource) Load(_ context.Context) ([]Entry, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	// Accept either a bare array or a {"products": [...]} wrapper.
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err == nil {
		return validateEntries(entries)
	}
	var file catalogFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", s.Path, err)
	}
	return validateEntries(file.Products)
}

func validateEntries(entries []Entry) ([]Entry, error) {
	seen := make(map[string]bool, len(entries))
	out := entries[:0]
	for _, e := range entries {
		if e.ID == "" || e.Name == "" {
			continue
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("duplicate catalog entry id %q", e.ID)
		}
		seen[e.ID] = true
		if e.Category == "" {
			e.Category = CategoryAccessory
		}
		out = append(out, e)
	}
	return out, nil
}
