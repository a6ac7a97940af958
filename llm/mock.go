package llm

import "context"

// MockLLM is a mock implementation of the LLM interface. RespondFunc,
// when set, decides the response per call and sees the sampling options,
// which lets tests fail a single temperature while others succeed.
type MockLLM struct {
	Response    string
	Err         error
	RespondFunc func(messages []ChatMessage, format *ResponseFormat, opts *ChatOptions) (string, error)
}

// NewMockLLM creates a MockLLM with a fixed response.
func NewMockLLM(response string) *MockLLM {
	return &MockLLM{Response: response}
}

// NewMockLLMWithError creates a MockLLM that always fails.
func NewMockLLMWithError(err error) *MockLLM {
	return &MockLLM{Err: err}
}

func (m *MockLLM) Complete(ctx context.Context, prompt string) (string, error) {
	return m.ChatWithFormat(ctx, []ChatMessage{NewUserMessage(prompt)}, nil, nil)
}

func (m *MockLLM) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	return m.ChatWithFormat(ctx, messages, nil, nil)
}

func (m *MockLLM) ChatWithFormat(ctx context.Context, messages []ChatMessage, format *ResponseFormat, opts *ChatOptions) (string, error) {
	if m.RespondFunc != nil {
		return m.RespondFunc(messages, format, opts)
	}
	return m.Response, m.Err
}

var _ LLM = (*MockLLM)(nil)
