// Token accounting for context-window budgeting.
//
// The agent supports multiple LLM backends with different tokenizers, so
// counting uses a conservative character-based heuristic: 1 token ≈ 4
// characters of English prose or code. The same ratio is the single named
// conversion policy used anywhere tokens are translated back into a
// character budget.

package llm

// DefaultCharsPerToken is the character-to-token ratio used for estimation.
// 4 chars/token is standard for English text and code.
const DefaultCharsPerToken = 4

// messageOverheadTokens is the per-message protocol overhead most chat APIs
// charge on top of the content itself.
const messageOverheadTokens = 4

// TokenAccountant counts tokens and exposes the model's context-window
// geometry. The budgeting core depends only on this contract, never on a
// concrete provider.
type TokenAccountant interface {
	// CountTokens returns the token count for a list of chat messages.
	CountTokens(messages []ChatMessage) TokenCount

	// ContextWindowSize returns the maximum tokens a request may contain.
	ContextWindowSize() int

	// MaxOutputTokens returns the reservation for the model's response.
	MaxOutputTokens() int

	// MaxTokensPerToolResult returns the maximum tokens allowed for a
	// single tool result before it must be spilled or dropped.
	MaxTokensPerToolResult() int
}

// Estimator implements TokenAccountant with the chars-per-token heuristic
// and a per-model limits registry.
type Estimator struct {
	limits            ModelLimits
	charsPerToken     int
	toolResultPercent float64
}

// EstimatorOption configures an Estimator.
type EstimatorOption func(*Estimator)

// WithCharsPerToken overrides the chars-per-token ratio.
func WithCharsPerToken(ratio int) EstimatorOption {
	return func(e *Estimator) {
		if ratio > 0 {
			e.charsPerToken = ratio
		}
	}
}

// WithToolResultPercent sets the share of the context window a single tool
// result may occupy, in percent. Values outside (0, 100] mean the whole
// window.
func WithToolResultPercent(pct float64) EstimatorOption {
	return func(e *Estimator) {
		e.toolResultPercent = pct
	}
}

// NewEstimator creates an estimator for the given model, resolving limits
// from the model registry.
func NewEstimator(model string, opts ...EstimatorOption) *Estimator {
	e := &Estimator{
		limits:            LookupModelLimits(model),
		charsPerToken:     DefaultCharsPerToken,
		toolResultPercent: DefaultToolResultPercent,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CountTokens estimates the token count of the given messages.
func (e *Estimator) CountTokens(messages []ChatMessage) TokenCount {
	total := 0
	for _, msg := range messages {
		total += messageOverheadTokens
		total += e.estimate(msg.Role)
		total += e.estimate(msg.TextContent())
		for _, tc := range msg.ToolCalls {
			total += e.estimate(tc.Name)
			total += e.estimate(string(tc.Arguments))
		}
	}
	return TokenCount{TotalTokens: total}
}

// ContextWindowSize returns the model's context window in tokens.
func (e *Estimator) ContextWindowSize() int {
	return e.limits.ContextWindow
}

// MaxOutputTokens returns the model's maximum output token reservation.
func (e *Estimator) MaxOutputTokens() int {
	return e.limits.MaxOutputTokens
}

// MaxTokensPerToolResult returns the single-tool-result token ceiling as a
// percentage of the context window.
func (e *Estimator) MaxTokensPerToolResult() int {
	window := e.limits.ContextWindow
	if e.toolResultPercent > 0 && e.toolResultPercent <= 100 {
		return int(float64(window) * e.toolResultPercent / 100)
	}
	return window
}

// CharsPerToken returns the ratio used to translate token budgets into
// character budgets.
func (e *Estimator) CharsPerToken() int {
	return e.charsPerToken
}

func (e *Estimator) estimate(s string) int {
	if s == "" {
		return 0
	}
	n := len(s) / e.charsPerToken
	if n == 0 {
		return 1
	}
	return n
}
