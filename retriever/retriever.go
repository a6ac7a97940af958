package retriever

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aqua777/docbot/embedding"
	"github.com/aqua777/docbot/schema"
	"github.com/aqua777/docbot/store"
)

// DefaultTopK is the number of chunks fetched per question.
const DefaultTopK = 10

// Retriever embeds a question and fetches the most similar chunks from
// the session's namespace. An empty result is not an error; it signals
// that the answer should fall back to general knowledge.
type Retriever struct {
	embedder embedding.EmbeddingModel
	index    store.VectorIndex
	topK     int
	logger   *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithTopK sets how many chunks are fetched per question.
func WithTopK(topK int) Option {
	return func(r *Retriever) {
		if topK > 0 {
			r.topK = topK
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) {
		r.logger = logger
	}
}

// New creates a Retriever over the given embedder and index.
func New(embedder embedding.EmbeddingModel, index store.VectorIndex, opts ...Option) *Retriever {
	r := &Retriever{
		embedder: embedder,
		index:    index,
		topK:     DefaultTopK,
		logger:   slog.New(slog.NewJSONHandler(os.Stderr, nil)),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Retrieve embeds the question and returns the topK most similar
// chunks from the session's namespace, most similar first.
func (r *Retriever) Retrieve(ctx context.Context, sessionID, question string) (schema.RetrievalResult, error) {
	vector, err := r.embedder.GetQueryEmbedding(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	result, err := r.index.Query(ctx, sessionID, vector, r.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieval query failed: %w", err)
	}

	r.logger.Debug("retrieved chunks",
		"session_id", sessionID, "top_k", r.topK, "returned", len(result))
	return result, nil
}
