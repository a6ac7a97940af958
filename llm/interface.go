package llm

import "context"

// LLM is the interface for interacting with Large Language Models.
type LLM interface {
	// Complete generates a completion for a given prompt.
	Complete(ctx context.Context, prompt string) (string, error)
	// Chat generates a response for a list of chat messages.
	Chat(ctx context.Context, messages []ChatMessage) (string, error)
	// ChatWithFormat generates a response constrained to the given
	// format, with per-request sampling options. format and opts may be
	// nil.
	ChatWithFormat(ctx context.Context, messages []ChatMessage, format *ResponseFormat, opts *ChatOptions) (string, error)
}
