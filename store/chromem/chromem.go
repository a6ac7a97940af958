// Package chromem implements the vector index on top of chromem-go, an
// embedded pure-Go vector database. Each namespace maps to its own
// collection, which gives the same isolation guarantee a hosted index
// provides with server-side namespaces. Used for local development and
// tests; the hosted alternative is store/pinecone.
package chromem

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"github.com/philippgille/chromem-go"

	"github.com/aqua777/docbot/schema"
	"github.com/aqua777/docbot/store"
)

const collectionPrefix = "session-"

// Store is a chromem-go backed vector index.
type Store struct {
	db        *chromem.DB
	logger    *slog.Logger
	mu        sync.Mutex
	dimension int
}

// New creates a Store. If persistPath is empty the index lives in
// memory only.
func New(persistPath string) (*Store, error) {
	var db *chromem.DB
	if persistPath != "" {
		var err error
		db, err = chromem.NewPersistentDB(persistPath, false)
		if err != nil {
			return nil, fmt.Errorf("failed to open persistent chromem db: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}
	return &Store{
		db:     db,
		logger: slog.New(slog.NewJSONHandler(os.Stdout, nil)),
	}, nil
}

// EnsureReady records the expected dimension. Collections are created
// lazily per namespace; there is no backing service to provision.
func (s *Store) EnsureReady(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid index dimension %d", dimension)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension != 0 && s.dimension != dimension {
		return fmt.Errorf("index dimension mismatch: configured %d, requested %d", s.dimension, dimension)
	}
	s.dimension = dimension
	return nil
}

// Upsert writes records to the namespace's collection in batches.
// Failed batches are logged and skipped; the returned count reflects
// what was actually stored.
func (s *Store) Upsert(ctx context.Context, namespace string, records []schema.VectorRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	collection, err := s.db.GetOrCreateCollection(collectionPrefix+namespace, nil, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to open collection for namespace %s: %w", namespace, err)
	}

	stored := 0
	var lastErr error
	for start := 0; start < len(records); start += store.UpsertBatchSize {
		end := start + store.UpsertBatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		docs, err := s.toDocuments(batch)
		if err == nil {
			err = collection.AddDocuments(ctx, docs, runtime.NumCPU())
		}
		if err != nil {
			s.logger.Error("upsert batch failed",
				"namespace", namespace, "batch_start", start, "batch_size", len(batch), "error", err)
			lastErr = err
			continue
		}
		stored += len(batch)
	}

	if stored == 0 && lastErr != nil {
		return 0, fmt.Errorf("all upsert batches failed: %w", lastErr)
	}
	return stored, nil
}

// Query returns the topK closest records in the namespace. An unknown
// or empty namespace yields an empty result.
func (s *Store) Query(ctx context.Context, namespace string, vector []float64, topK int) (schema.RetrievalResult, error) {
	collection := s.db.GetCollection(collectionPrefix+namespace, nil)
	if collection == nil {
		return schema.RetrievalResult{}, nil
	}
	count := collection.Count()
	if count == 0 {
		return schema.RetrievalResult{}, nil
	}
	if topK > count {
		topK = count
	}

	results, err := collection.QueryEmbedding(ctx, toFloat32(vector), topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query failed: %w", err)
	}

	out := make(schema.RetrievalResult, len(results))
	for i, r := range results {
		out[i] = schema.RetrievedChunk{
			Text:     r.Content,
			Filename: r.Metadata["filename"],
			Score:    float64(r.Similarity),
		}
	}
	return out, nil
}

func (s *Store) toDocuments(records []schema.VectorRecord) ([]chromem.Document, error) {
	docs := make([]chromem.Document, len(records))
	for i, rec := range records {
		if len(rec.Values) == 0 {
			return nil, fmt.Errorf("record %s has no embedding", rec.ID)
		}
		if s.dimension != 0 && len(rec.Values) != s.dimension {
			return nil, fmt.Errorf("record %s has dimension %d, index expects %d", rec.ID, len(rec.Values), s.dimension)
		}
		docs[i] = chromem.Document{
			ID:        rec.ID,
			Content:   rec.Metadata.Text,
			Metadata:  map[string]string{"filename": rec.Metadata.Filename},
			Embedding: toFloat32(rec.Values),
		}
	}
	return docs, nil
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}

var _ store.VectorIndex = (*Store)(nil)
