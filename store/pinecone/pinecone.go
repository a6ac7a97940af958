// Package pinecone implements the vector index against Pinecone's REST
// API: the control plane creates the serverless index once, the data
// plane handles namespace-scoped upserts and queries.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aqua777/docbot/schema"
	"github.com/aqua777/docbot/store"
)

const (
	// ControlPlaneURL is the Pinecone control plane endpoint.
	ControlPlaneURL = "https://api.pinecone.io"

	// DefaultMetric is the similarity metric the index is created with.
	DefaultMetric = "cosine"

	defaultTimeout = 30 * time.Second
)

// Index is a Pinecone-backed vector index.
type Index struct {
	apiKey     string
	controlURL string
	indexName  string
	metric     string
	httpClient *http.Client
	logger     *slog.Logger

	mu   sync.Mutex
	host string // data plane host, resolved by EnsureReady
}

// Option configures an Index.
type Option func(*Index)

// WithAPIKey sets the API key.
func WithAPIKey(apiKey string) Option {
	return func(i *Index) {
		i.apiKey = apiKey
	}
}

// WithControlPlaneURL overrides the control plane endpoint.
func WithControlPlaneURL(url string) Option {
	return func(i *Index) {
		i.controlURL = url
	}
}

// WithMetric sets the similarity metric used at index creation.
func WithMetric(metric string) Option {
	return func(i *Index) {
		i.metric = metric
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(i *Index) {
		i.httpClient = client
	}
}

// New creates an Index client for the named Pinecone index. The API key
// defaults to the PINECONE_API_KEY environment variable.
func New(indexName string, opts ...Option) *Index {
	idx := &Index{
		apiKey:     os.Getenv("PINECONE_API_KEY"),
		controlURL: ControlPlaneURL,
		indexName:  indexName,
		metric:     DefaultMetric,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.New(slog.NewJSONHandler(os.Stdout, nil)),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

type indexDescription struct {
	Name string `json:"name"`
	Host string `json:"host"`
	Dim  int    `json:"dimension"`
}

// EnsureReady describes the index, creating it if absent, and resolves
// the data plane host. A dimension mismatch with an existing index is a
// configuration error.
func (i *Index) EnsureReady(ctx context.Context, dimension int) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.host != "" {
		return nil
	}

	desc, err := i.describeIndex(ctx)
	if err == nil {
		if desc.Dim != 0 && desc.Dim != dimension {
			return fmt.Errorf("index %s has dimension %d, configured embedding dimension is %d", i.indexName, desc.Dim, dimension)
		}
		i.host = desc.Host
		return nil
	}

	i.logger.Info("creating pinecone index", "name", i.indexName, "dimension", dimension, "metric", i.metric)
	desc, err = i.createIndex(ctx, dimension)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", i.indexName, err)
	}
	i.host = desc.Host
	return nil
}

func (i *Index) describeIndex(ctx context.Context) (*indexDescription, error) {
	var desc indexDescription
	err := i.doJSON(ctx, http.MethodGet, i.controlURL+"/indexes/"+i.indexName, nil, &desc)
	if err != nil {
		return nil, err
	}
	return &desc, nil
}

func (i *Index) createIndex(ctx context.Context, dimension int) (*indexDescription, error) {
	body := map[string]any{
		"name":      i.indexName,
		"dimension": dimension,
		"metric":    i.metric,
		"spec": map[string]any{
			"serverless": map[string]any{"cloud": "aws", "region": "us-east-1"},
		},
	}
	var desc indexDescription
	if err := i.doJSON(ctx, http.MethodPost, i.controlURL+"/indexes", body, &desc); err != nil {
		return nil, err
	}
	return &desc, nil
}

type pineconeVector struct {
	ID       string            `json:"id"`
	Values   []float64         `json:"values"`
	Metadata map[string]string `json:"metadata"`
}

// Upsert writes records under the namespace in batches of
// store.UpsertBatchSize. A failed batch is logged and skipped; the
// returned count is the number of records actually stored.
func (i *Index) Upsert(ctx context.Context, namespace string, records []schema.VectorRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	host, err := i.dataURL()
	if err != nil {
		return 0, err
	}

	stored := 0
	var lastErr error
	for start := 0; start < len(records); start += store.UpsertBatchSize {
		end := start + store.UpsertBatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		vectors := make([]pineconeVector, len(batch))
		for j, rec := range batch {
			vectors[j] = pineconeVector{
				ID:     rec.ID,
				Values: rec.Values,
				Metadata: map[string]string{
					"text":     rec.Metadata.Text,
					"filename": rec.Metadata.Filename,
				},
			}
		}

		body := map[string]any{"vectors": vectors, "namespace": namespace}
		if err := i.doJSON(ctx, http.MethodPost, host+"/vectors/upsert", body, nil); err != nil {
			i.logger.Error("upsert batch failed",
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

// Query returns the topK most similar records within the namespace.
func (i *Index) Query(ctx context.Context, namespace string, vector []float64, topK int) (schema.RetrievalResult, error) {
	host, err := i.dataURL()
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"vector":          vector,
		"topK":            topK,
		"namespace":       namespace,
		"includeMetadata": true,
	}
	var resp struct {
		Matches []struct {
			ID       string            `json:"id"`
			Score    float64           `json:"score"`
			Metadata map[string]string `json:"metadata"`
		} `json:"matches"`
	}
	if err := i.doJSON(ctx, http.MethodPost, host+"/query", body, &resp); err != nil {
		return nil, fmt.Errorf("pinecone query failed: %w", err)
	}

	out := make(schema.RetrievalResult, len(resp.Matches))
	for j, m := range resp.Matches {
		out[j] = schema.RetrievedChunk{
			Text:     m.Metadata["text"],
			Filename: m.Metadata["filename"],
			Score:    m.Score,
		}
	}
	return out, nil
}

// dataURL returns the data plane base URL resolved by EnsureReady.
func (i *Index) dataURL() (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.host == "" {
		return "", fmt.Errorf("index %s is not ready; call EnsureReady first", i.indexName)
	}
	if strings.Contains(i.host, "://") {
		return i.host, nil
	}
	return "https://" + i.host, nil
}

func (i *Index) doJSON(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Api-Key", i.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("pinecone %s %s returned status %d: %s", method, url, resp.StatusCode, string(raw))
	}
	if out != nil && len(raw) > 0 {
		return json.Unmarshal(raw, out)
	}
	return nil
}

var _ store.VectorIndex = (*Index)(nil)
