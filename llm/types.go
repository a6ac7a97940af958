package llm

// MessageRole represents the role of a message sender.
type MessageRole string

const (
	// MessageRoleSystem is for system instructions.
	MessageRoleSystem MessageRole = "system"
	// MessageRoleUser is for user messages.
	MessageRoleUser MessageRole = "user"
	// MessageRoleAssistant is for assistant responses.
	MessageRoleAssistant MessageRole = "assistant"
)

// ChatMessage represents a message in a chat conversation.
type ChatMessage struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) ChatMessage {
	return ChatMessage{Role: MessageRoleUser, Content: content}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) ChatMessage {
	return ChatMessage{Role: MessageRoleSystem, Content: content}
}

// ResponseFormat requests a constrained output format from providers
// that support one. Asking for json_object makes the provider refuse to
// emit anything but valid JSON; callers must still parse defensively.
type ResponseFormat struct {
	// Type is "json_object" or "text".
	Type string `json:"type"`
}

// JSONResponseFormat returns a ResponseFormat requesting JSON mode.
func JSONResponseFormat() *ResponseFormat {
	return &ResponseFormat{Type: "json_object"}
}

// ChatOptions carries per-request sampling options. Nil fields leave
// the provider default in place.
type ChatOptions struct {
	Temperature *float32
	MaxTokens   *int
}

// WithTemperature returns ChatOptions with the given temperature.
func WithTemperature(t float32) *ChatOptions {
	return &ChatOptions{Temperature: &t}
}
