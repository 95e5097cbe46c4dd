package agentrt

import (
	"context"

	"github.com/hal9000y/research-mail/internal/fault"
)

// Message is one turn of model conversation in provider-neutral form.
type Message struct {
	Role       string     `json:"role"` // user, assistant, tool
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a model-requested tool invocation.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolSpec declares a tool to the model.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request is a provider-neutral model request.
type Request struct {
	Model        string
	SystemPrompt string
	Messages     []Message
	Tools        []ToolSpec
	MaxTokens    int
	Temperature  float64
}

// Response is a provider-neutral model response.
type Response struct {
	Content   string
	ToolCalls []ToolCall
	Usage     TokenUsage
}

// Provider abstracts an LLM API.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	Name() string
}

// NewProvider selects a provider implementation by name. baseURL only
// applies to OpenAI-compatible endpoints and may be empty.
func NewProvider(name, apiKey, baseURL string) (Provider, error) {
	switch name {
	case "openai", "":
		return NewOpenAIProvider(apiKey, baseURL), nil
	case "anthropic":
		return NewAnthropicProvider(apiKey), nil
	default:
		return nil, fault.Invalidf("unsupported LLM provider %q", name)
	}
}
