package retrieval

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"ai-support-be/pkg/catalog"
	"ai-support-be/pkg/embedding"
)

// Match is one semantic hit: an entry id and a similarity in [0,1].
type Match struct {
	EntryID string
	Score   float64
}

// SemanticIndex contributes embedding-similarity scores to the hybrid
// stage. The engine works without one; implementations must tolerate
// being asked before any entries are indexed.
type SemanticIndex interface {
	Search(ctx context.Context, text string, topK int) ([]Match, error)
}

// MemoryIndex keeps normalized entry vectors in memory and scores queries
// by dot product (cosine similarity, since vectors are unit length).
type MemoryIndex struct {
	provider embedding.EmbeddingProvider

	mu      sync.RWMutex
	vectors map[string][]float32
}

func NewMemoryIndex(provider embedding.EmbeddingProvider) *MemoryIndex {
	return &MemoryIndex{
		provider: provider,
		vectors:  make(map[string][]float32),
	}
}

// IndexEntries embeds name + description for each entry and replaces the
// vector table wholesale, mirroring the catalog's snapshot-swap semantics.
func (m *MemoryIndex) IndexEntries(ctx context.Context, entries []catalog.Entry) error {
	vectors := make(map[string][]float32, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		resp, err := m.provider.Generate(e.Name+". "+e.Description, "search_document")
		if err != nil {
			return fmt.Errorf("embed entry %s: %w", e.ID, err)
		}
		vectors[e.ID] = resp.Embedding.Values
	}
	m.mu.Lock()
	m.vectors = vectors
	m.mu.Unlock()
	return nil
}

func (m *MemoryIndex) Search(_ context.Context, text string, topK int) ([]Match, error) {
	resp, err := m.provider.Generate(text, "search_query")
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	qv := resp.Embedding.Values

	m.mu.RLock()
	matches := make([]Match, 0, len(m.vectors))
	for id, vec := range m.vectors {
		matches = append(matches, Match{EntryID: id, Score: dot(qv, vec)})
	}
	m.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].EntryID < matches[j].EntryID
	})
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func dot(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
