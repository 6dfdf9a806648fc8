package retrieval

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"ai-support-be/pkg/catalog"
	"ai-support-be/pkg/embedding"
)

// productEmbeddingRow is the pgvector-backed embeddings table. One row per
// catalog entry, refreshed together with the catalog.
type productEmbeddingRow struct {
	EntryID   string          `gorm:"column:entry_id;primaryKey"`
	Embedding pgvector.Vector `gorm:"column:embedding;type:vector(768)"`
}

func (productEmbeddingRow) TableName() string { return "product_embeddings" }

// PgvectorIndex stores entry vectors in Postgres and searches with the
// cosine-distance operator, for deployments that already run pgvector.
type PgvectorIndex struct {
	db       *gorm.DB
	provider embedding.EmbeddingProvider
}

func NewPgvectorIndex(db *gorm.DB, provider embedding.EmbeddingProvider) *PgvectorIndex {
	return &PgvectorIndex{db: db, provider: provider}
}

// IndexEntries re-embeds the catalog and upserts the embeddings table.
func (p *PgvectorIndex) IndexEntries(ctx context.Context, entries []catalog.Entry) error {
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		resp, err := p.provider.Generate(e.Name+". "+e.Description, "search_document")
		if err != nil {
			return fmt.Errorf("embed entry %s: %w", e.ID, err)
		}
		row := productEmbeddingRow{
			EntryID:   e.ID,
			Embedding: pgvector.NewVector(resp.Embedding.Values),
		}
		if err := p.db.WithContext(ctx).Save(&row).Error; err != nil {
			return fmt.Errorf("save embedding %s: %w", e.ID, err)
		}
	}
	return nil
}

func (p *PgvectorIndex) Search(ctx context.Context, text string, topK int) ([]Match, error) {
	resp, err := p.provider.Generate(text, "search_query")
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if topK <= 0 {
		topK = 10
	}

	var rows []struct {
		EntryID  string  `gorm:"column:entry_id"`
		Distance float64 `gorm:"column:distance"`
	}
	err = p.db.WithContext(ctx).
		Table("product_embeddings").
		Select("entry_id, embedding <=> ? AS distance", pgvector.NewVector(resp.Embedding.Values)).
		Order("distance").
		Limit(topK).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("pgvector search: %w", err)
	}

	matches := make([]Match, 0, len(rows))
	for _, r := range rows {
		// Cosine distance -> similarity.
		matches = append(matches, Match{EntryID: r.EntryID, Score: 1 - r.Distance})
	}
	return matches, nil
}
