// LLM Provider interface - the abstract interface for LLM providers.
// Each provider implementation hides:
// - API client initialization and authentication
// - Request/response format conversion
// - Provider-specific error handling

package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider defines the abstract interface for LLM providers.
// Implementations hide provider-specific details while exposing
// a consistent interface for chat completions.
type Provider interface {
	// Name returns the provider name (for logging/debugging).
	Name() string

	// Model returns the current model being used.
	Model() string

	// Chat sends a chat completion request.
	Chat(ctx context.Context, messages []ChatMessage) (Response, error)

	// ChatWithTools sends a chat completion request with tool definitions.
	// The LLM may respond with tool calls in Response.ToolCalls.
	ChatWithTools(ctx context.Context, messages []ChatMessage, tools []ToolDefinition) (Response, error)
}

// NewProvider creates a provider by name. Known names: openai, anthropic,
// deepseek, gemini. Aliases (claude, gpt, google) are normalized first.
func NewProvider(name, apiKey, model string, maxTokens int, temperature float32) (Provider, error) {
	switch normalizeProviderName(name) {
	case "openai":
		return NewOpenAIProvider(apiKey, model, maxTokens, temperature), nil
	case "anthropic":
		return NewAnthropicProvider(apiKey, model, maxTokens, temperature), nil
	case "deepseek":
		return NewDeepSeekProvider(apiKey, model, maxTokens, temperature), nil
	case "gemini":
		return NewGeminiProvider(apiKey, model, maxTokens, temperature), nil
	default:
		return nil, fmt.Errorf("unknown provider: %q", name)
	}
}

var providerAliases = map[string]string{
	"claude": "anthropic",
	"google": "gemini",
	"gpt":    "openai",
}

func normalizeProviderName(name string) string {
	name = strings.ToLower(name)
	if canonical, ok := providerAliases[name]; ok {
		return canonical
	}
	return name
}
