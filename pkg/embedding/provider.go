package embedding

// EmbeddingResponse wraps one generated vector.
type EmbeddingResponse struct {
	Embedding Values
}

type Values struct {
	Values []float32
}

// EmbeddingProvider generates text embeddings. taskType distinguishes
// document indexing from query embedding for providers that care.
type EmbeddingProvider interface {
	Generate(text string, taskType string) (*EmbeddingResponse, error)
}
