package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aqua777/docbot/embedding"
	"github.com/aqua777/docbot/schema"
	"github.com/aqua777/docbot/store"
	"github.com/aqua777/docbot/textsplitter"
)

// Pipeline turns raw document text into vector records inside a
// session's namespace: split into chunks, embed all chunks in one batch
// call, upsert under deterministic chunk IDs.
type Pipeline struct {
	splitter textsplitter.TextSplitter
	embedder embedding.EmbeddingModel
	index    store.VectorIndex
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a Pipeline over the given splitter, embedder and index.
func New(splitter textsplitter.TextSplitter, embedder embedding.EmbeddingModel, index store.VectorIndex, opts ...Option) *Pipeline {
	p := &Pipeline{
		splitter: splitter,
		embedder: embedder,
		index:    index,
		logger:   slog.New(slog.NewJSONHandler(os.Stderr, nil)),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Ingest processes one document for a session and returns the number of
// chunks actually stored. A document whose text yields no chunks is
// skipped without error. Chunk IDs are derived from the filename and
// chunk position, so re-ingesting a file overwrites its previous chunks
// instead of duplicating them.
func (p *Pipeline) Ingest(ctx context.Context, sessionID, filename, text string) (int, error) {
	chunks := p.splitter.SplitText(text)
	if len(chunks) == 0 {
		p.logger.Info("document produced no chunks, skipping",
			"session_id", sessionID, "filename", filename)
		return 0, nil
	}

	vectors, err := p.embedder.GetTextEmbeddingsBatch(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("failed to embed %s: %w", filename, err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embedding count mismatch for %s: %d chunks, %d embeddings", filename, len(chunks), len(vectors))
	}

	records := make([]schema.VectorRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = schema.VectorRecord{
			ID:     schema.ChunkRecordID(filename, i),
			Values: vectors[i],
			Metadata: schema.RecordMetadata{
				Text:     chunk,
				Filename: filename,
			},
		}
	}

	stored, err := p.index.Upsert(ctx, sessionID, records)
	if err != nil {
		return 0, fmt.Errorf("failed to store chunks for %s: %w", filename, err)
	}

	p.logger.Info("document ingested",
		"session_id", sessionID, "filename", filename,
		"chunks", len(chunks), "stored", stored)
	return stored, nil
}
