package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqua777/docbot/embedding"
	"github.com/aqua777/docbot/schema"
)

// fakeIndex serves canned query results and records the call.
type fakeIndex struct {
	result    schema.RetrievalResult
	queryErr  error
	namespace string
	vector    []float64
	topK      int
}

func (f *fakeIndex) EnsureReady(ctx context.Context, dimension int) error { return nil }

func (f *fakeIndex) Upsert(ctx context.Context, namespace string, records []schema.VectorRecord) (int, error) {
	return len(records), nil
}

func (f *fakeIndex) Query(ctx context.Context, namespace string, vector []float64, topK int) (schema.RetrievalResult, error) {
	f.namespace = namespace
	f.vector = vector
	f.topK = topK
	return f.result, f.queryErr
}

func TestRetrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("queries the session namespace with the question embedding", func(t *testing.T) {
		index := &fakeIndex{result: schema.RetrievalResult{
			{Text: "Revenue was $10M.", Filename: "report.pdf", Score: 0.9},
		}}
		r := New(&embedding.MockEmbeddingModel{Embedding: []float64{0.5, 0.5}}, index)

		result, err := r.Retrieve(ctx, "sess-1", "What was the revenue?")
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, "report.pdf", result[0].Filename)

		assert.Equal(t, "sess-1", index.namespace)
		assert.Equal(t, []float64{0.5, 0.5}, index.vector)
		assert.Equal(t, DefaultTopK, index.topK)
	})

	t.Run("empty result is not an error", func(t *testing.T) {
		index := &fakeIndex{result: schema.RetrievalResult{}}
		r := New(&embedding.MockEmbeddingModel{Embedding: []float64{1}}, index)

		result, err := r.Retrieve(ctx, "fresh-session", "Anything?")
		require.NoError(t, err)
		assert.True(t, result.Empty())
	})

	t.Run("custom topK", func(t *testing.T) {
		index := &fakeIndex{}
		r := New(&embedding.MockEmbeddingModel{Embedding: []float64{1}}, index, WithTopK(3))

		_, err := r.Retrieve(ctx, "sess-1", "q")
		require.NoError(t, err)
		assert.Equal(t, 3, index.topK)
	})

	t.Run("embedding failure is propagated", func(t *testing.T) {
		r := New(&embedding.MockEmbeddingModel{Err: errors.New("quota exceeded")}, &fakeIndex{})

		_, err := r.Retrieve(ctx, "sess-1", "q")
		assert.Error(t, err)
	})

	t.Run("query failure is propagated", func(t *testing.T) {
		index := &fakeIndex{queryErr: errors.New("index down")}
		r := New(&embedding.MockEmbeddingModel{Embedding: []float64{1}}, index)

		_, err := r.Retrieve(ctx, "sess-1", "q")
		assert.Error(t, err)
	})
}
