// Tool output truncation.

package conversation

import (
	"github.com/mailprak/holmesgpt/llm"
	"github.com/mailprak/holmesgpt/tools"
)

// TruncateToolOutputs returns a new slice in which each tool output keeps
// only its first budget characters. Name and description are preserved
// unchanged and the input slice is not mutated. A budget below zero is
// treated as zero.
func TruncateToolOutputs(results []tools.ToolCallConversationResult, budget int) []tools.ToolCallConversationResult {
	truncated := make([]tools.ToolCallConversationResult, len(results))
	for i, r := range results {
		truncated[i] = tools.ToolCallConversationResult{
			Name:        r.Name,
			Description: r.Description,
			Output:      head(r.Output, budget),
		}
	}
	return truncated
}

// TruncateToolMessages shrinks the content of every tool-role message in
// history to at most budget characters.
//
// This mutates history in place; callers share the slice with the return
// point and must treat it as modified. Not internally synchronized — a
// caller running this concurrently against the same conversation must
// serialize access.
func TruncateToolMessages(history []llm.ChatMessage, budget int) {
	for i := range history {
		if history[i].Role == llm.RoleTool {
			history[i].Content = head(history[i].Content, budget)
		}
	}
}

// head returns the first n bytes of s, clamping n into [0, len(s)].
// The clamp to zero is load-bearing: budgets can go negative when the
// baseline conversation already overflows the context window.
func head(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if n >= len(s) {
		return s
	}
	return s[:n]
}
