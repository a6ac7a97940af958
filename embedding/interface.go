package embedding

import "context"

// EmbeddingModel is the interface for generating text embeddings.
type EmbeddingModel interface {
	// GetQueryEmbedding generates an embedding for a search query.
	// Some providers treat queries differently from documents.
	GetQueryEmbedding(ctx context.Context, query string) ([]float64, error)
	// GetTextEmbeddingsBatch generates embeddings for multiple texts in
	// one round-trip. Failure for any item fails the whole call; there
	// are no partial results.
	GetTextEmbeddingsBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// EmbeddingModelWithInfo extends EmbeddingModel with metadata used for
// the startup dimension check against the vector index.
type EmbeddingModelWithInfo interface {
	EmbeddingModel
	Info() EmbeddingInfo
}

// EmbeddingInfo contains metadata about an embedding model.
type EmbeddingInfo struct {
	ModelName  string `json:"model_name"`
	Dimensions int    `json:"dimensions"`
	MaxTokens  int    `json:"max_tokens"`
}
