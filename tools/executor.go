// Tool Executor with Retry Logic.
//
// Information Hiding:
// - Retry strategy implementation hidden
// - Backoff algorithm hidden
// - Error classification logic hidden

package tools

import (
	"context"
	"strings"
	"time"

	"github.com/mailprak/holmesgpt/llm"
)

// Executor resolves LLM tool calls against a registry and runs them with
// retry and timeout support.
type Executor struct {
	registry *Registry
	config   ToolConfig
}

// NewExecutor creates a tool executor over the given registry.
func NewExecutor(registry *Registry, config ToolConfig) *Executor {
	return &Executor{registry: registry, config: config}
}

// NewDefaultExecutor creates an executor with default configuration.
func NewDefaultExecutor(registry *Registry) *Executor {
	return &Executor{registry: registry, config: DefaultToolConfig()}
}

// ExecuteCall resolves and runs one tool call requested by the LLM.
// The returned result always carries the call's name and ID so it can be
// matched back to the conversation; failures surface as ERROR-status
// results, never as a panic or dropped call.
func (e *Executor) ExecuteCall(ctx context.Context, call llm.ToolCall) ToolCallResult {
	result := ToolCallResult{
		ToolName:   call.Name,
		ToolCallID: call.ID,
	}

	tool, ok := e.registry.Get(call.Name)
	if !ok {
		result.Result = ErrorResult("unknown tool: %s", call.Name)
		return result
	}
	result.Description = tool.Metadata().Description

	if err := tool.Validate(call.Arguments); err != nil {
		result.Result = ErrorResult("invalid arguments for %s: %v", call.Name, err)
		return result
	}

	timeout := time.Duration(e.config.Timeout()) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result.Result = e.invokeWithRetry(ctx, tool, call)
	return result
}

func (e *Executor) invokeWithRetry(ctx context.Context, tool Tool, call llm.ToolCall) StructuredToolResult {
	var last StructuredToolResult
	maxRetries := e.config.Retries()

	for attempt := uint32(0); attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := calculateBackoff(attempt)
			select {
			case <-ctx.Done():
				return ErrorResult("tool '%s' cancelled: %v", call.Name, ctx.Err())
			case <-time.After(backoff):
			}
		}

		last = tool.Invoke(ctx, call.Arguments)
		if last.Status == StatusSuccess {
			return last
		}
		if !retryable(last.Error) {
			return last
		}
	}
	return last
}

// calculateBackoff returns the backoff duration for the given attempt.
func calculateBackoff(attempt uint32) time.Duration {
	const (
		baseDelay = 100 * time.Millisecond
		maxDelay  = 5 * time.Second
	)

	delay := baseDelay * time.Duration(1<<attempt)
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

// retryable determines if a failure is worth retrying.
func retryable(errMsg string) bool {
	errLower := strings.ToLower(errMsg)

	// Don't retry validation errors or permission issues
	nonRetryable := []string{"validation", "not allowed", "permission", "invalid"}
	for _, s := range nonRetryable {
		if strings.Contains(errLower, s) {
			return false
		}
	}

	// Always retry timeouts and network errors
	retryableHints := []string{"timeout", "connection", "network"}
	for _, s := range retryableHints {
		if strings.Contains(errLower, s) {
			return true
		}
	}

	return true
}
