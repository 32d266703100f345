// Per-tool-output size budgeting.
//
// The budget is computed from token counts but consumed as a character
// count by the truncators. That mismatch is deliberate: an exact mapping
// would require the provider's tokenizer, and 1 token ≈ 4 characters makes
// truncation err on the side of shorter content.

package conversation

import (
	"github.com/mailprak/holmesgpt/llm"
)

// DefaultToolBudget is the per-tool budget used when no tool content needs
// to be sized against the window.
const DefaultToolBudget = 10000

// CalculateToolBudget derives the per-tool-output budget from the context
// window space left after the baseline messages and the output reservation.
//
// baseline must be the tool-free view of the conversation: the budget for
// tool content is only meaningful when measured against a conversation
// that does not yet contain any.
//
// The result may be negative when the baseline alone overflows the window;
// callers must clamp to zero before slicing (the truncators do).
func CalculateToolBudget(accountant llm.TokenAccountant, baseline []llm.ChatMessage, toolSlots int) int {
	if toolSlots == 0 {
		return DefaultToolBudget
	}

	used := accountant.CountTokens(baseline).TotalTokens
	available := accountant.ContextWindowSize() - used - accountant.MaxOutputTokens()

	budget := available / toolSlots
	if budget > DefaultToolBudget {
		return DefaultToolBudget
	}
	return budget
}
