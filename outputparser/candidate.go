// Package outputparser turns raw model output into the structured
// candidate contract. Parsing never fails the request: every malformed
// response degrades to a well-defined sentinel candidate instead.
package outputparser

import (
	"encoding/json"
	"strings"

	"github.com/aqua777/docbot/schema"
)

// Defaults substituted for individually missing contract keys.
const (
	DefaultSummary   = "Could not parse answer."
	DefaultReasoning = "Could not parse reasoning."
)

// Sentinel candidate text used when the whole response is unparseable.
const (
	SentinelSummary   = "The model returned an invalid JSON response."
	SentinelReasoning = "The model's output could not be parsed as JSON."
)

// ParseCandidate parses one raw model response against the three-key
// contract. Missing keys are filled with defaults; a response that is
// not a JSON object at all yields the sentinel candidate, with the raw
// output preserved in the data field so nothing is lost.
func ParseCandidate(raw string) schema.Candidate {
	jsonStr := extractJSON(raw)
	if jsonStr == "" {
		return SentinelCandidate(raw)
	}

	var parsed struct {
		Answer          json.RawMessage `json:"answer"`
		Reasoning       *string         `json:"reasoning"`
		SourceDocuments []string        `json:"source_documents"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return SentinelCandidate(raw)
	}

	c := schema.Candidate{
		Answer:          schema.Answer{Summary: DefaultSummary},
		Reasoning:       DefaultReasoning,
		SourceDocuments: []string{},
	}

	if len(parsed.Answer) > 0 {
		var answer struct {
			Summary *string `json:"summary"`
			Data    any     `json:"data"`
		}
		if err := json.Unmarshal(parsed.Answer, &answer); err == nil {
			if answer.Summary != nil {
				c.Answer.Summary = *answer.Summary
			}
			c.Answer.Data = answer.Data
		}
	}
	if parsed.Reasoning != nil {
		c.Reasoning = *parsed.Reasoning
	}
	if parsed.SourceDocuments != nil {
		c.SourceDocuments = parsed.SourceDocuments
	}
	return c
}

// SentinelCandidate is the fallback for unparseable output. The raw
// output rides along in the data field.
func SentinelCandidate(raw string) schema.Candidate {
	return schema.Candidate{
		Answer: schema.Answer{
			Summary: SentinelSummary,
			Data:    raw,
		},
		Reasoning:       SentinelReasoning,
		SourceDocuments: []string{},
	}
}

// FailureCandidate is the degraded form for a generation call that
// failed outright (timeout, provider error) before producing output. It
// reuses the sentinel shape; with no model output there is nothing to
// preserve in data, and the reasoning carries the underlying error.
func FailureCandidate(err error) schema.Candidate {
	return schema.Candidate{
		Answer: schema.Answer{
			Summary: SentinelSummary,
		},
		Reasoning:       "The generation request failed: " + err.Error(),
		SourceDocuments: []string{},
	}
}

// extractJSON pulls a JSON object out of model output, tolerating
// markdown code fences and prose around the object.
func extractJSON(text string) string {
	if start := strings.Index(text, "```json"); start != -1 {
		rest := text[start+7:]
		if end := strings.Index(rest, "```"); end != -1 {
			return strings.TrimSpace(rest[:end])
		}
	}
	if start := strings.Index(text, "```"); start != -1 {
		rest := text[start+3:]
		if end := strings.Index(rest, "```"); end != -1 {
			return strings.TrimSpace(rest[:end])
		}
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}
	return ""
}
