package outputparser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCandidate(t *testing.T) {
	t.Run("full contract", func(t *testing.T) {
		raw := `{
			"answer": {"summary": "Revenue was $10M.", "data": {"revenue": "10M"}},
			"reasoning": "Found it in the report.",
			"source_documents": ["report.pdf"]
		}`
		c := ParseCandidate(raw)
		assert.Equal(t, "Revenue was $10M.", c.Answer.Summary)
		assert.Equal(t, map[string]any{"revenue": "10M"}, c.Answer.Data)
		assert.Equal(t, "Found it in the report.", c.Reasoning)
		assert.Equal(t, []string{"report.pdf"}, c.SourceDocuments)
	})

	t.Run("missing keys get defaults", func(t *testing.T) {
		c := ParseCandidate(`{"reasoning": "only reasoning"}`)
		assert.Equal(t, DefaultSummary, c.Answer.Summary)
		assert.Nil(t, c.Answer.Data)
		assert.Equal(t, "only reasoning", c.Reasoning)
		assert.Equal(t, []string{}, c.SourceDocuments)
	})

	t.Run("missing answer summary gets default, data kept", func(t *testing.T) {
		c := ParseCandidate(`{"answer": {"data": [1, 2]}, "reasoning": "r", "source_documents": []}`)
		assert.Equal(t, DefaultSummary, c.Answer.Summary)
		assert.Equal(t, []any{float64(1), float64(2)}, c.Answer.Data)
	})

	t.Run("missing reasoning gets default", func(t *testing.T) {
		c := ParseCandidate(`{"answer": {"summary": "s", "data": null}}`)
		assert.Equal(t, DefaultReasoning, c.Reasoning)
	})

	t.Run("json inside code fence", func(t *testing.T) {
		raw := "Here you go:\n```json\n{\"answer\": {\"summary\": \"ok\", \"data\": null}, \"reasoning\": \"r\", \"source_documents\": []}\n```"
		c := ParseCandidate(raw)
		assert.Equal(t, "ok", c.Answer.Summary)
	})

	t.Run("json surrounded by prose", func(t *testing.T) {
		raw := `Sure! {"answer": {"summary": "ok", "data": null}, "reasoning": "r", "source_documents": []} Hope that helps.`
		c := ParseCandidate(raw)
		assert.Equal(t, "ok", c.Answer.Summary)
	})

	t.Run("malformed json yields sentinel with raw preserved", func(t *testing.T) {
		raw := `{"answer": broken`
		c := ParseCandidate(raw)
		assert.Equal(t, SentinelSummary, c.Answer.Summary)
		assert.Equal(t, raw, c.Answer.Data)
		assert.Equal(t, SentinelReasoning, c.Reasoning)
		assert.Empty(t, c.SourceDocuments)
	})

	t.Run("plain prose yields sentinel", func(t *testing.T) {
		raw := "I cannot answer that."
		c := ParseCandidate(raw)
		assert.Equal(t, SentinelSummary, c.Answer.Summary)
		assert.Equal(t, raw, c.Answer.Data)
	})

	t.Run("empty string yields sentinel", func(t *testing.T) {
		c := ParseCandidate("")
		assert.Equal(t, SentinelSummary, c.Answer.Summary)
	})
}

func TestFailureCandidate(t *testing.T) {
	c := FailureCandidate(errors.New("context deadline exceeded"))
	assert.Equal(t, SentinelSummary, c.Answer.Summary)
	assert.Contains(t, c.Reasoning, "context deadline exceeded")
	assert.Nil(t, c.Answer.Data)
	assert.Empty(t, c.SourceDocuments)
}
