// Per-model context-window limits.
//
// Providers do not expose window sizes over the wire, so the registry keeps
// the published numbers for the models the agent supports. Unknown models
// fall back to a conservative default rather than failing.

package llm

// DefaultToolResultPercent is the share of the context window a single tool
// result may occupy before the overflow policy kicks in.
const DefaultToolResultPercent = 25

// ModelLimits describes the context-window geometry of one model.
type ModelLimits struct {
	ContextWindow   int // maximum tokens per request
	MaxOutputTokens int // reservation for the model's response
}

// defaultLimits is used for models missing from the registry.
var defaultLimits = ModelLimits{ContextWindow: 128_000, MaxOutputTokens: 4096}

var modelLimits = map[string]ModelLimits{
	// OpenAI
	"gpt-4o":      {ContextWindow: 128_000, MaxOutputTokens: 16_384},
	"gpt-4o-mini": {ContextWindow: 128_000, MaxOutputTokens: 16_384},
	"gpt-4.1":     {ContextWindow: 1_047_576, MaxOutputTokens: 32_768},
	"o3":          {ContextWindow: 200_000, MaxOutputTokens: 100_000},

	// Anthropic
	"claude-sonnet-4-20250514": {ContextWindow: 200_000, MaxOutputTokens: 64_000},
	"claude-opus-4-20250514":   {ContextWindow: 200_000, MaxOutputTokens: 32_000},
	"claude-3-5-haiku-latest":  {ContextWindow: 200_000, MaxOutputTokens: 8192},

	// DeepSeek
	"deepseek-chat":     {ContextWindow: 64_000, MaxOutputTokens: 8192},
	"deepseek-reasoner": {ContextWindow: 64_000, MaxOutputTokens: 64_000},

	// Gemini
	"gemini-2.5-flash": {ContextWindow: 1_048_576, MaxOutputTokens: 65_536},
	"gemini-2.5-pro":   {ContextWindow: 1_048_576, MaxOutputTokens: 65_536},
}

// LookupModelLimits returns the limits for the given model, or the
// conservative default when the model is not in the registry.
func LookupModelLimits(model string) ModelLimits {
	if limits, ok := modelLimits[model]; ok {
		return limits
	}
	return defaultLimits
}
