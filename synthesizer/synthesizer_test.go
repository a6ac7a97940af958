package synthesizer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqua777/docbot/llm"
	"github.com/aqua777/docbot/outputparser"
	"github.com/aqua777/docbot/schema"
)

const validResponse = `{
	"answer": {"summary": "Revenue was $10M.", "data": null},
	"reasoning": "Stated directly in the report.",
	"source_documents": ["report.pdf"]
}`

func chunks() schema.RetrievalResult {
	return schema.RetrievalResult{
		{Text: "Revenue was $10M.", Filename: "report.pdf", Score: 0.9},
	}
}

func TestSynthesize(t *testing.T) {
	ctx := context.Background()

	t.Run("produces one candidate per temperature", func(t *testing.T) {
		var mu sync.Mutex
		var temps []float32
		model := &llm.MockLLM{RespondFunc: func(messages []llm.ChatMessage, format *llm.ResponseFormat, opts *llm.ChatOptions) (string, error) {
			if format == nil || opts == nil || opts.Temperature == nil {
				return "", errors.New("missing format or sampling options")
			}
			assert.Equal(t, "json_object", format.Type)
			mu.Lock()
			temps = append(temps, *opts.Temperature)
			mu.Unlock()
			return validResponse, nil
		}}

		s := New(model)
		candidates := s.Synthesize(ctx, "What was the revenue?", WithContext(chunks()))

		require.Len(t, candidates, 3)
		assert.ElementsMatch(t, []float32{0.2, 0.7, 1.0}, temps)
		for _, c := range candidates {
			assert.Equal(t, "Revenue was $10M.", c.Answer.Summary)
			assert.Equal(t, []string{"report.pdf"}, c.SourceDocuments)
		}
	})

	t.Run("grounded prompt includes the retrieved chunks", func(t *testing.T) {
		model := &llm.MockLLM{RespondFunc: func(messages []llm.ChatMessage, format *llm.ResponseFormat, opts *llm.ChatOptions) (string, error) {
			if len(messages) != 1 {
				return "", errors.New("expected a single prompt message")
			}
			assert.Contains(t, messages[0].Content, "Revenue was $10M.")
			assert.Contains(t, messages[0].Content, "report.pdf")
			assert.Contains(t, messages[0].Content, "What was the revenue?")
			return validResponse, nil
		}}

		New(model).Synthesize(ctx, "What was the revenue?", WithContext(chunks()))
	})

	t.Run("empty retrieval falls back to general knowledge prompt", func(t *testing.T) {
		model := &llm.MockLLM{RespondFunc: func(messages []llm.ChatMessage, format *llm.ResponseFormat, opts *llm.ChatOptions) (string, error) {
			if len(messages) != 1 {
				return "", errors.New("expected a single prompt message")
			}
			assert.Contains(t, messages[0].Content, "no relevant information was found")
			return validResponse, nil
		}}

		s := New(model)
		s.Synthesize(ctx, "What is Go?", NoContext())
		s.Synthesize(ctx, "What is Go?", WithContext(schema.RetrievalResult{}))
	})

	t.Run("general knowledge candidates never carry data or sources", func(t *testing.T) {
		// The prompt forbids both, but the contract cannot rely on the
		// model obeying it.
		model := llm.NewMockLLM(`{
			"answer": {"summary": "Go is a programming language.", "data": {"fabricated": true}},
			"reasoning": "General knowledge.",
			"source_documents": ["made-up.pdf"]
		}`)

		candidates := New(model).Synthesize(ctx, "What is Go?", NoContext())
		require.Len(t, candidates, 3)
		for _, c := range candidates {
			assert.Equal(t, "Go is a programming language.", c.Answer.Summary)
			assert.Nil(t, c.Answer.Data)
			assert.Equal(t, []string{}, c.SourceDocuments)
		}
	})

	t.Run("grounded candidates keep structured data", func(t *testing.T) {
		model := llm.NewMockLLM(`{
			"answer": {"summary": "Revenue was $10M.", "data": {"revenue": "10M"}},
			"reasoning": "From the report.",
			"source_documents": ["report.pdf"]
		}`)

		candidates := New(model).Synthesize(ctx, "What was the revenue?", WithContext(chunks()))
		for _, c := range candidates {
			assert.Equal(t, map[string]any{"revenue": "10M"}, c.Answer.Data)
			assert.Equal(t, []string{"report.pdf"}, c.SourceDocuments)
		}
	})

	t.Run("unparseable output keeps its raw data even without context", func(t *testing.T) {
		model := llm.NewMockLLM("definitely not json")

		candidates := New(model).Synthesize(ctx, "What is Go?", NoContext())
		for _, c := range candidates {
			assert.Equal(t, outputparser.SentinelSummary, c.Answer.Summary)
			assert.Equal(t, "definitely not json", c.Answer.Data)
		}
	})

	t.Run("one failing temperature does not take down the others", func(t *testing.T) {
		model := &llm.MockLLM{RespondFunc: func(messages []llm.ChatMessage, format *llm.ResponseFormat, opts *llm.ChatOptions) (string, error) {
			if *opts.Temperature == 0.7 {
				return "", errors.New("rate limited")
			}
			return validResponse, nil
		}}

		candidates := New(model).Synthesize(ctx, "q", WithContext(chunks()))
		require.Len(t, candidates, 3)
		assert.Equal(t, "Revenue was $10M.", candidates[0].Answer.Summary)
		assert.Contains(t, candidates[1].Reasoning, "rate limited")
		assert.Equal(t, "Revenue was $10M.", candidates[2].Answer.Summary)
	})

	t.Run("invalid JSON becomes a sentinel candidate preserving raw output", func(t *testing.T) {
		model := llm.NewMockLLM("definitely not json")

		candidates := New(model).Synthesize(ctx, "q", WithContext(chunks()))
		for _, c := range candidates {
			assert.Equal(t, outputparser.SentinelSummary, c.Answer.Summary)
			assert.Equal(t, "definitely not json", c.Answer.Data)
			assert.Empty(t, c.SourceDocuments)
		}
	})

	t.Run("candidates run in parallel", func(t *testing.T) {
		model := &llm.MockLLM{RespondFunc: func(messages []llm.ChatMessage, format *llm.ResponseFormat, opts *llm.ChatOptions) (string, error) {
			time.Sleep(50 * time.Millisecond)
			return validResponse, nil
		}}

		start := time.Now()
		New(model).Synthesize(ctx, "q", WithContext(chunks()))
		assert.Less(t, time.Since(start), 120*time.Millisecond)
	})

	t.Run("candidate timeout turns into a failure candidate", func(t *testing.T) {
		blocked := &contextAwareLLM{}
		candidates := New(blocked, WithCandidateTimeout(10*time.Millisecond)).Synthesize(ctx, "q", WithContext(chunks()))
		require.Len(t, candidates, 3)
		for _, c := range candidates {
			assert.True(t, strings.HasPrefix(c.Reasoning, "The generation request failed"))
		}
	})
}

// contextAwareLLM blocks until the request context is cancelled.
type contextAwareLLM struct{}

func (c *contextAwareLLM) Complete(ctx context.Context, prompt string) (string, error) {
	return c.ChatWithFormat(ctx, nil, nil, nil)
}

func (c *contextAwareLLM) Chat(ctx context.Context, messages []llm.ChatMessage) (string, error) {
	return c.ChatWithFormat(ctx, messages, nil, nil)
}

func (c *contextAwareLLM) ChatWithFormat(ctx context.Context, messages []llm.ChatMessage, format *llm.ResponseFormat, opts *llm.ChatOptions) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}
