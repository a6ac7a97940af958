package embedding

import "context"

// MockEmbeddingModel is a test double. If EmbedFunc is set it is used
// for every text; otherwise Embedding is returned verbatim.
type MockEmbeddingModel struct {
	Embedding []float64
	EmbedFunc func(text string) []float64
	Err       error
	Dim       int
}

func (m *MockEmbeddingModel) GetQueryEmbedding(ctx context.Context, query string) ([]float64, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.EmbedFunc != nil {
		return m.EmbedFunc(query), nil
	}
	return m.Embedding, nil
}

func (m *MockEmbeddingModel) GetTextEmbeddingsBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		if m.EmbedFunc != nil {
			out[i] = m.EmbedFunc(text)
		} else {
			out[i] = m.Embedding
		}
	}
	return out, nil
}

func (m *MockEmbeddingModel) Info() EmbeddingInfo {
	dim := m.Dim
	if dim == 0 {
		dim = len(m.Embedding)
	}
	return EmbeddingInfo{ModelName: "mock-embedding", Dimensions: dim}
}
