package llm

import (
	"context"
	"fmt"
)

// Provider constants for LLM provider selection.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds LLM client configuration.
type Config struct {
	Provider string // "openai" or "anthropic"
	APIKey   string // Required: API key for the provider
	BaseURL  string // Optional: custom API endpoint
	Model    string // Model name (e.g., "gpt-4o-mini", "claude-3-5-haiku-latest")
}

// ChatClient produces a single-shot natural-language answer from a system
// instruction, prior conversation turns, and the current question. There is
// no partial or streaming output at this layer.
type ChatClient interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Model() string
}

// ChatRequest contains everything one generation call needs.
type ChatRequest struct {
	SystemPrompt string
	History      []Message // prior conversation turns, oldest first
	UserPrompt   string
	MaxTokens    int
	Temperature  *float64 // nil = model default, explicit 0 = deterministic
}

// Message is one turn of conversation history.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// ChatResponse contains the generated text and token usage.
type ChatResponse struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

// GenerationError wraps any backend failure (unreachable endpoint, quota,
// invalid credentials). Callers with a fallback catch it; everyone else
// lets it surface to the orchestrator boundary.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// NewChatClient creates a ChatClient for the configured provider.
// Defaults to OpenAI if no provider is specified.
func NewChatClient(cfg Config) (ChatClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	provider := cfg.Provider
	if provider == "" {
		provider = ProviderOpenAI
	}

	switch provider {
	case ProviderOpenAI:
		return newOpenAIChatClient(cfg)
	case ProviderAnthropic:
		return newAnthropicChatClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// Temp returns a pointer for inline temperature values.
func Temp(t float64) *float64 {
	return &t
}
