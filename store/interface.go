// Package store defines the vector index abstraction: namespace-scoped
// upsert and top-k similarity query over an external (or embedded)
// index. Namespaces are the session isolation boundary; nothing else in
// the system enforces it.
package store

import (
	"context"

	"github.com/aqua777/docbot/schema"
)

// UpsertBatchSize bounds the number of records written per request.
const UpsertBatchSize = 100

// VectorIndex is the interface for a similarity-search index.
type VectorIndex interface {
	// EnsureReady creates the backing index if absent and verifies the
	// configured dimension. Idempotent; safe to call concurrently at
	// process start.
	EnsureReady(ctx context.Context, dimension int) error

	// Upsert writes records under the namespace in batches of
	// UpsertBatchSize. A failed batch is logged and skipped rather than
	// aborting the rest, so the returned count may be smaller than
	// len(records). The error is non-nil only when nothing was stored.
	Upsert(ctx context.Context, namespace string, records []schema.VectorRecord) (int, error)

	// Query returns the topK records most similar to vector within the
	// namespace, highest score first. A namespace with no data yields
	// an empty result, not an error.
	Query(ctx context.Context, namespace string, vector []float64, topK int) (schema.RetrievalResult, error)
}
