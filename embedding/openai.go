package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEmbedding implements EmbeddingModel using the OpenAI embeddings
// API. The request pins the Dimensions field so the output matches the
// vector index regardless of the model's native width; text-embedding-3
// models support down-projection server-side.
type OpenAIEmbedding struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	logger     *slog.Logger
}

// NewOpenAIEmbedding creates a new OpenAI embedding client. An empty
// apiKey falls back to OPENAI_API_KEY; an empty modelName defaults to
// text-embedding-3-small.
func NewOpenAIEmbedding(apiKey, modelName string, dimensions int) *OpenAIEmbedding {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	var model openai.EmbeddingModel
	if modelName == "" {
		model = openai.SmallEmbedding3
	} else {
		model = openai.EmbeddingModel(modelName)
	}

	return &OpenAIEmbedding{
		client:     openai.NewClient(apiKey),
		model:      model,
		dimensions: dimensions,
		logger:     slog.New(slog.NewJSONHandler(os.Stdout, nil)),
	}
}

// NewOpenAIEmbeddingWithClient creates a client around an existing
// openai.Client, used by tests to point at a fake server.
func NewOpenAIEmbeddingWithClient(client *openai.Client, modelName string, dimensions int) *OpenAIEmbedding {
	var model openai.EmbeddingModel
	if modelName == "" {
		model = openai.SmallEmbedding3
	} else {
		model = openai.EmbeddingModel(modelName)
	}
	return &OpenAIEmbedding{
		client:     client,
		model:      model,
		dimensions: dimensions,
		logger:     slog.New(slog.NewJSONHandler(os.Stdout, nil)),
	}
}

// Info returns the model metadata with the configured dimensions.
func (o *OpenAIEmbedding) Info() EmbeddingInfo {
	return EmbeddingInfo{
		ModelName:  string(o.model),
		Dimensions: o.dimensions,
		MaxTokens:  8191,
	}
}

// GetQueryEmbedding embeds a single query string.
func (o *OpenAIEmbedding) GetQueryEmbedding(ctx context.Context, query string) ([]float64, error) {
	vectors, err := o.embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// GetTextEmbeddingsBatch embeds all texts in one request.
func (o *OpenAIEmbedding) GetTextEmbeddingsBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return o.embed(ctx, texts)
}

func (o *OpenAIEmbedding) embed(ctx context.Context, inputs []string) ([][]float64, error) {
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      inputs,
		Model:      o.model,
		Dimensions: o.dimensions,
	})
	if err != nil {
		o.logger.Error("openai embedding failed", "model", o.model, "error", err)
		return nil, fmt.Errorf("openai embedding failed: %w", err)
	}
	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d inputs", len(resp.Data), len(inputs))
	}

	out := make([][]float64, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float64, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float64(v)
		}
		out[i] = vec
	}
	return out, nil
}

var _ EmbeddingModelWithInfo = (*OpenAIEmbedding)(nil)
