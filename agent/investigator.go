// Tool-calling investigation loop.
//
// This is THE canonical implementation of the investigation loop.
// All agent execution goes through this module.
//
// Information Hiding:
// - LLM communication hidden
// - Tool execution coordination hidden
// - Oversized-result handling hidden

package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mailprak/holmesgpt/llm"
	"github.com/mailprak/holmesgpt/overflow"
	"github.com/mailprak/holmesgpt/tools"
)

// DefaultMaxIterations bounds the tool-calling loop when the caller
// does not configure a limit.
const DefaultMaxIterations = 10

// Investigator runs the tool-calling loop: it sends the conversation to
// the LLM, executes any requested tools, reins in oversized tool results,
// and repeats until the LLM produces an analysis or the iteration limit
// is reached.
type Investigator struct {
	provider      llm.Provider
	accountant    llm.TokenAccountant
	executor      *tools.Executor
	registry      *tools.Registry
	policy        *overflow.Policy
	logger        *slog.Logger
	maxIterations int
}

// NewInvestigator creates an investigator with the given provider and tools.
func NewInvestigator(provider llm.Provider, accountant llm.TokenAccountant, registry *tools.Registry, policy *overflow.Policy, logger *slog.Logger) *Investigator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Investigator{
		provider:      provider,
		accountant:    accountant,
		executor:      tools.NewDefaultExecutor(registry),
		registry:      registry,
		policy:        policy,
		logger:        logger,
		maxIterations: DefaultMaxIterations,
	}
}

// WithToolConfig overrides the tool execution configuration.
func (v *Investigator) WithToolConfig(config tools.ToolConfig) *Investigator {
	v.executor = tools.NewExecutor(v.registry, config)
	return v
}

// WithMaxIterations overrides the tool-calling iteration limit.
func (v *Investigator) WithMaxIterations(n int) *Investigator {
	if n > 0 {
		v.maxIterations = n
	}
	return v
}

// Outcome is the result of a completed investigation run.
type Outcome struct {
	// Analysis is the LLM's final text response.
	Analysis string

	// ToolResults holds every tool invocation made during the run, with
	// outputs as they were sent to the LLM (post size handling).
	ToolResults []tools.ToolCallConversationResult

	// Messages is the full conversation including tool calls and results,
	// suitable for persisting as session history.
	Messages []llm.ChatMessage

	// Usage is the cumulative token usage across all LLM calls.
	Usage llm.TokenUsage

	// LLMCalls is the number of chat completions made.
	LLMCalls int

	// Truncated reports whether the iteration limit stopped the run
	// before the LLM produced a final analysis.
	Truncated bool
}

// Investigate runs the loop starting from the given conversation.
// Oversized tool results are spilled to the scratch scope (or dropped
// when scratch is nil or storage is disabled) before being appended to
// the conversation.
func (v *Investigator) Investigate(ctx context.Context, messages []llm.ChatMessage, scratch *overflow.Scope) (Outcome, error) {
	outcome := Outcome{Messages: messages}
	defs := v.registry.Definitions()

	for iteration := 0; iteration < v.maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return outcome, fmt.Errorf("investigation cancelled: %w", err)
		}

		count := v.accountant.CountTokens(outcome.Messages)
		v.logger.Debug("calling LLM",
			"iteration", iteration,
			"messages", len(outcome.Messages),
			"estimated_tokens", count.TotalTokens)

		start := time.Now()
		resp, err := v.provider.ChatWithTools(ctx, outcome.Messages, defs)
		if err != nil {
			return outcome, fmt.Errorf("LLM chat failed: %w", err)
		}
		outcome.LLMCalls++
		if resp.Usage != nil {
			outcome.Usage.PromptTokens += resp.Usage.PromptTokens
			outcome.Usage.CompletionTokens += resp.Usage.CompletionTokens
			outcome.Usage.TotalTokens += resp.Usage.TotalTokens
		}
		v.logger.Debug("LLM responded",
			"duration_ms", time.Since(start).Milliseconds(),
			"tool_calls", len(resp.ToolCalls))

		if len(resp.ToolCalls) == 0 {
			outcome.Analysis = resp.Content
			return outcome, nil
		}

		outcome.Messages = append(outcome.Messages, llm.ChatMessage{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, call := range resp.ToolCalls {
			result := v.executor.ExecuteCall(ctx, call)
			v.policy.HandleOversizedToolResult(&result, scratch)

			msg := result.AsToolCallMessage()
			outcome.Messages = append(outcome.Messages, msg)
			outcome.ToolResults = append(outcome.ToolResults, tools.ToolCallConversationResult{
				Name:        result.ToolName,
				Description: result.Description,
				Output:      msg.Content,
			})
		}
	}

	v.logger.Warn("investigation stopped at iteration limit", "max_iterations", v.maxIterations)
	outcome.Truncated = true
	outcome.Analysis = "Investigation stopped before completion: the tool-calling iteration limit was reached."
	return outcome, nil
}
