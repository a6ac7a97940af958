package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
)

const (
	// GeminiAPIURL is the default Google Generative Language API endpoint.
	GeminiAPIURL = "https://generativelanguage.googleapis.com/v1beta"

	// GeminiTextEmbedding004 is the default embedding model: 768
	// dimensions, cosine-friendly.
	GeminiTextEmbedding004 = "text-embedding-004"
)

// GeminiTaskType hints the API about the intended use of the embedding.
type GeminiTaskType string

const (
	GeminiTaskRetrievalDocument GeminiTaskType = "RETRIEVAL_DOCUMENT"
	GeminiTaskRetrievalQuery    GeminiTaskType = "RETRIEVAL_QUERY"
)

// GeminiEmbedding implements EmbeddingModel for the Google Generative
// Language embedding API.
type GeminiEmbedding struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// GeminiEmbeddingOption configures a GeminiEmbedding.
type GeminiEmbeddingOption func(*GeminiEmbedding)

// WithGeminiAPIKey sets the API key.
func WithGeminiAPIKey(apiKey string) GeminiEmbeddingOption {
	return func(g *GeminiEmbedding) {
		g.apiKey = apiKey
	}
}

// WithGeminiBaseURL sets the base URL.
func WithGeminiBaseURL(baseURL string) GeminiEmbeddingOption {
	return func(g *GeminiEmbedding) {
		g.baseURL = baseURL
	}
}

// WithGeminiModel sets the embedding model name.
func WithGeminiModel(model string) GeminiEmbeddingOption {
	return func(g *GeminiEmbedding) {
		g.model = model
	}
}

// WithGeminiHTTPClient sets a custom HTTP client.
func WithGeminiHTTPClient(client *http.Client) GeminiEmbeddingOption {
	return func(g *GeminiEmbedding) {
		g.httpClient = client
	}
}

// NewGeminiEmbedding creates a new Gemini embedding client. The API key
// defaults to the GOOGLE_API_KEY environment variable.
func NewGeminiEmbedding(opts ...GeminiEmbeddingOption) *GeminiEmbedding {
	g := &GeminiEmbedding{
		apiKey:     os.Getenv("GOOGLE_API_KEY"),
		baseURL:    GeminiAPIURL,
		model:      GeminiTextEmbedding004,
		httpClient: http.DefaultClient,
		logger:     slog.New(slog.NewJSONHandler(os.Stdout, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Info returns the model metadata.
func (g *GeminiEmbedding) Info() EmbeddingInfo {
	return EmbeddingInfo{
		ModelName:  g.model,
		Dimensions: 768,
		MaxTokens:  2048,
	}
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiEmbedRequest struct {
	Model    string        `json:"model"`
	Content  geminiContent `json:"content"`
	TaskType string        `json:"taskType,omitempty"`
}

type geminiEmbedding struct {
	Values []float64 `json:"values"`
}

// GetQueryEmbedding generates an embedding for a search query.
func (g *GeminiEmbedding) GetQueryEmbedding(ctx context.Context, query string) ([]float64, error) {
	url := fmt.Sprintf("%s/models/%s:embedContent", g.baseURL, g.model)
	body := geminiEmbedRequest{
		Model:    "models/" + g.model,
		Content:  geminiContent{Parts: []geminiPart{{Text: query}}},
		TaskType: string(GeminiTaskRetrievalQuery),
	}

	var resp struct {
		Embedding geminiEmbedding `json:"embedding"`
	}
	if err := g.post(ctx, url, body, &resp); err != nil {
		return nil, fmt.Errorf("gemini query embedding failed: %w", err)
	}
	if len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("gemini returned an empty embedding")
	}
	return resp.Embedding.Values, nil
}

// GetTextEmbeddingsBatch embeds all texts in a single batchEmbedContents
// call. A failure for any item fails the whole batch.
func (g *GeminiEmbedding) GetTextEmbeddingsBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	url := fmt.Sprintf("%s/models/%s:batchEmbedContents", g.baseURL, g.model)
	reqs := make([]geminiEmbedRequest, len(texts))
	for i, text := range texts {
		reqs[i] = geminiEmbedRequest{
			Model:    "models/" + g.model,
			Content:  geminiContent{Parts: []geminiPart{{Text: text}}},
			TaskType: string(GeminiTaskRetrievalDocument),
		}
	}

	var resp struct {
		Embeddings []geminiEmbedding `json:"embeddings"`
	}
	if err := g.post(ctx, url, map[string]any{"requests": reqs}, &resp); err != nil {
		return nil, fmt.Errorf("gemini batch embedding failed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini returned %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}

	out := make([][]float64, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if len(e.Values) == 0 {
			return nil, fmt.Errorf("gemini returned an empty embedding at index %d", i)
		}
		out[i] = e.Values
	}
	return out, nil
}

func (g *GeminiEmbedding) post(ctx context.Context, url string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Error("gemini request failed", "url", url, "error", err)
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		g.logger.Error("gemini request rejected", "url", url, "status", resp.StatusCode)
		return fmt.Errorf("gemini API returned status %d: %s", resp.StatusCode, string(raw))
	}
	return json.Unmarshal(raw, out)
}

var _ EmbeddingModelWithInfo = (*GeminiEmbedding)(nil)
