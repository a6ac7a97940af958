package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// OpenAIAPIURL is the standard OpenAI endpoint.
	OpenAIAPIURL = "https://api.openai.com/v1"
	// GroqAPIURL is Groq's OpenAI-compatible endpoint.
	GroqAPIURL = "https://api.groq.com/openai/v1"

	// DefaultGroqModel is the generation model used when none is
	// configured.
	DefaultGroqModel = "llama-3.1-8b-instant"
)

// OpenAILLM talks to any OpenAI-compatible chat completion API. The
// service uses it against Groq by default.
type OpenAILLM struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAILLM creates a client for an OpenAI-compatible endpoint. An
// empty baseURL targets the OpenAI API; an empty apiKey falls back to
// OPENAI_API_KEY.
func NewOpenAILLM(baseURL, model, apiKey string) *OpenAILLM {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if baseURL == "" {
		baseURL = OpenAIAPIURL
	}
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL

	return &OpenAILLM{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: slog.New(slog.NewJSONHandler(os.Stdout, nil)),
	}
}

// NewGroqLLM creates a client for Groq's OpenAI-compatible API. An
// empty apiKey falls back to GROQ_API_KEY; an empty model defaults to
// DefaultGroqModel.
func NewGroqLLM(model, apiKey string) *OpenAILLM {
	if apiKey == "" {
		apiKey = os.Getenv("GROQ_API_KEY")
	}
	if model == "" {
		model = DefaultGroqModel
	}
	return NewOpenAILLM(GroqAPIURL, model, apiKey)
}

func (o *OpenAILLM) Complete(ctx context.Context, prompt string) (string, error) {
	return o.Chat(ctx, []ChatMessage{NewUserMessage(prompt)})
}

func (o *OpenAILLM) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	return o.ChatWithFormat(ctx, messages, nil, nil)
}

func (o *OpenAILLM) ChatWithFormat(ctx context.Context, messages []ChatMessage, format *ResponseFormat, opts *ChatOptions) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: convertMessages(messages),
	}

	if format != nil && format.Type == "json_object" {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	if opts != nil {
		if opts.Temperature != nil {
			req.Temperature = *opts.Temperature
		}
		if opts.MaxTokens != nil {
			req.MaxTokens = *opts.MaxTokens
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		o.logger.Error("chat completion failed", "model", o.model, "error", err)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("provider returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func convertMessages(messages []ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		}
	}
	return out
}

var _ LLM = (*OpenAILLM)(nil)
