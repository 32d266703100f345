package llm

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestEstimatorCountTokens(t *testing.T) {
	e := NewEstimator("gpt-4o")

	// 4 overhead + 1 for role "user" + 40/4 for content
	count := e.CountTokens([]ChatMessage{
		UserMessage(strings.Repeat("a", 40)),
	})
	if count.TotalTokens != 15 {
		t.Errorf("expected 15 tokens, got %d", count.TotalTokens)
	}
}

func TestEstimatorShortStringsCountAtLeastOne(t *testing.T) {
	e := NewEstimator("gpt-4o")

	// 4 overhead + 1 role + 1 for the two-char content
	count := e.CountTokens([]ChatMessage{UserMessage("hi")})
	if count.TotalTokens != 6 {
		t.Errorf("expected 6 tokens, got %d", count.TotalTokens)
	}
}

func TestEstimatorCountsToolCalls(t *testing.T) {
	e := NewEstimator("gpt-4o")

	plain := e.CountTokens([]ChatMessage{AssistantMessage("")})
	withCall := e.CountTokens([]ChatMessage{{
		Role: RoleAssistant,
		ToolCalls: []ToolCall{
			{ID: "call_1", Name: strings.Repeat("n", 8), Arguments: json.RawMessage(strings.Repeat("a", 16))},
		},
	}})

	if withCall.TotalTokens <= plain.TotalTokens {
		t.Errorf("tool calls must add tokens: %d vs %d", withCall.TotalTokens, plain.TotalTokens)
	}
}

func TestEstimatorCustomCharsPerToken(t *testing.T) {
	e := NewEstimator("gpt-4o", WithCharsPerToken(2))

	// 4 overhead + 4/2 role + 40/2 content
	count := e.CountTokens([]ChatMessage{UserMessage(strings.Repeat("a", 40))})
	if count.TotalTokens != 26 {
		t.Errorf("expected 26 tokens with 2 chars/token, got %d", count.TotalTokens)
	}
}

func TestMaxTokensPerToolResult(t *testing.T) {
	e := NewEstimator("gpt-4o") // 128k window, default 25%
	if got := e.MaxTokensPerToolResult(); got != 32_000 {
		t.Errorf("expected 32000, got %d", got)
	}

	half := NewEstimator("gpt-4o", WithToolResultPercent(50))
	if got := half.MaxTokensPerToolResult(); got != 64_000 {
		t.Errorf("expected 64000, got %d", got)
	}
}

func TestMaxTokensPerToolResultOutOfRangeMeansWholeWindow(t *testing.T) {
	e := NewEstimator("gpt-4o", WithToolResultPercent(0))
	if got := e.MaxTokensPerToolResult(); got != e.ContextWindowSize() {
		t.Errorf("expected whole window %d, got %d", e.ContextWindowSize(), got)
	}

	over := NewEstimator("gpt-4o", WithToolResultPercent(150))
	if got := over.MaxTokensPerToolResult(); got != over.ContextWindowSize() {
		t.Errorf("expected whole window for >100%%, got %d", got)
	}
}

func TestLookupModelLimitsFallback(t *testing.T) {
	limits := LookupModelLimits("some-future-model")
	if limits.ContextWindow != 128_000 {
		t.Errorf("expected fallback window 128000, got %d", limits.ContextWindow)
	}
	if limits.MaxOutputTokens != 4096 {
		t.Errorf("expected fallback output reservation 4096, got %d", limits.MaxOutputTokens)
	}
}

func TestNormalizeProviderName(t *testing.T) {
	cases := map[string]string{
		"claude":    "anthropic",
		"GPT":       "openai",
		"google":    "gemini",
		"anthropic": "anthropic",
	}
	for alias, want := range cases {
		if got := normalizeProviderName(alias); got != want {
			t.Errorf("normalizeProviderName(%q) = %q, want %q", alias, got, want)
		}
	}
}
