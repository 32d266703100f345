// Package conversation assembles LLM message lists that fit the model's
// context window.
//
// The assembler renders prompts twice per conversation: once without tool
// content to measure the baseline, then again with tool outputs truncated
// to the budget derived from that measurement. The two-pass order is
// mandatory — the final render is sized against the without-tools
// measurement, never against itself.
package conversation

import (
	"github.com/mailprak/holmesgpt/llm"
	"github.com/mailprak/holmesgpt/prompt"
	"github.com/mailprak/holmesgpt/tools"
)

// InvestigationResult holds the analysis and tool outputs of a completed
// investigation, ready to be embedded into follow-up conversations.
type InvestigationResult struct {
	Analysis string
	Tools    []tools.ToolCallConversationResult
}

// IssueChatRequest is a user turn in a conversation about an investigated
// issue.
type IssueChatRequest struct {
	Ask           string
	IssueType     string
	History       []llm.ChatMessage
	Investigation InvestigationResult
}

// Assembler builds conversations for the LLM-calling layer.
type Assembler struct {
	renderer    prompt.Renderer
	accountant  llm.TokenAccountant
	toolsets    []prompt.ToolsetInfo
	clusterName string
}

// NewAssembler creates an assembler over the given renderer and accountant.
func NewAssembler(renderer prompt.Renderer, accountant llm.TokenAccountant) *Assembler {
	return &Assembler{renderer: renderer, accountant: accountant}
}

// WithToolsets sets the toolsets advertised in system prompts.
func (a *Assembler) WithToolsets(toolsets []prompt.ToolsetInfo) *Assembler {
	a.toolsets = toolsets
	return a
}

// WithClusterName sets the cluster name rendered into system prompts.
func (a *Assembler) WithClusterName(name string) *Assembler {
	a.clusterName = name
	return a
}

// BuildIssueChatMessages builds the message list for an issue conversation,
// truncating tool outputs to fit the context window.
//
// For a new conversation (empty history) it returns [system, user]. For a
// follow-up it appends the user turn to req.History, rewrites the system
// prompt at position 0, truncates tool-role messages in place, and returns
// the mutated history — callers share the slice with the return value.
func (a *Assembler) BuildIssueChatMessages(req IssueChatRequest, instructions prompt.Instructions) ([]llm.ChatMessage, error) {
	userPrompt, err := prompt.GenerateUserPrompt(a.renderer, req.Ask, instructions)
	if err != nil {
		return nil, err
	}
	runbooksEnabled := instructions != (prompt.Instructions{})

	if len(req.History) == 0 {
		return a.buildNewIssueConversation(req, userPrompt, runbooksEnabled)
	}
	return a.buildFollowupIssueConversation(req, userPrompt, runbooksEnabled)
}

func (a *Assembler) buildNewIssueConversation(req IssueChatRequest, userPrompt string, runbooksEnabled bool) ([]llm.ChatMessage, error) {
	investigationTools := req.Investigation.Tools

	// No tool output means nothing to budget: render once and return.
	if len(investigationTools) == 0 {
		systemPrompt, err := a.renderIssueSystemPrompt(req, investigationTools, runbooksEnabled)
		if err != nil {
			return nil, err
		}
		return []llm.ChatMessage{
			llm.SystemMessage(systemPrompt),
			llm.UserMessage(userPrompt),
		}, nil
	}

	// First pass: measure the conversation without any tool content.
	systemWithoutTools, err := a.renderIssueSystemPrompt(req, nil, runbooksEnabled)
	if err != nil {
		return nil, err
	}
	messagesWithoutTools := []llm.ChatMessage{
		llm.SystemMessage(systemWithoutTools),
		llm.UserMessage(userPrompt),
	}
	budget := CalculateToolBudget(a.accountant, messagesWithoutTools, len(investigationTools))

	// Second pass: embed tool outputs truncated to the budget.
	truncated := TruncateToolOutputs(investigationTools, budget)
	systemWithTools, err := a.renderIssueSystemPrompt(req, truncated, runbooksEnabled)
	if err != nil {
		return nil, err
	}
	return []llm.ChatMessage{
		llm.SystemMessage(systemWithTools),
		llm.UserMessage(userPrompt),
	}, nil
}

func (a *Assembler) buildFollowupIssueConversation(req IssueChatRequest, userPrompt string, runbooksEnabled bool) ([]llm.ChatMessage, error) {
	history := append(req.History, llm.UserMessage(userPrompt))

	toolSlots := len(req.Investigation.Tools) + countToolMessages(history)
	if toolSlots == 0 {
		return history, nil
	}

	// Measure against a tool-free view whose system prompt carries no
	// tool content either.
	systemWithoutTools, err := a.renderIssueSystemPrompt(req, nil, runbooksEnabled)
	if err != nil {
		return nil, err
	}
	withoutTools := dropToolMessages(history)
	if len(withoutTools) > 0 {
		withoutTools[0].Content = systemWithoutTools
	}
	budget := CalculateToolBudget(a.accountant, withoutTools, toolSlots)

	truncated := TruncateToolOutputs(req.Investigation.Tools, budget)
	systemWithTools, err := a.renderIssueSystemPrompt(req, truncated, runbooksEnabled)
	if err != nil {
		return nil, err
	}
	// Only the content at position 0 is rewritten; the role is left as-is.
	history[0].Content = systemWithTools

	TruncateToolMessages(history, budget)
	return history, nil
}

func (a *Assembler) renderIssueSystemPrompt(req IssueChatRequest, investigationTools []tools.ToolCallConversationResult, runbooksEnabled bool) (string, error) {
	context := map[string]interface{}{
		"investigation":                  req.Investigation.Analysis,
		"tools_called_for_investigation": investigationTools,
		"issue":                          req.IssueType,
		"toolsets":                       a.toolsets,
		"cluster_name":                   a.clusterName,
		"runbooks_enabled":               runbooksEnabled,
	}
	return a.renderer.Render("issue_conversation", context)
}

// ChatOptions carries the per-request inputs of a general chat turn.
type ChatOptions struct {
	SystemPromptAdditions string
	Instructions          prompt.Instructions
	FilePaths             []string
	Images                []llm.ImageURL
	IncludeTodoReminder   bool
	Overrides             map[prompt.Component]bool
}

// BuildChatMessages builds the message list for a general chat turn,
// truncating tool outputs in the history to fit the context window.
//
// The input history is copied; the returned slice is the caller's to keep.
func (a *Assembler) BuildChatMessages(ask string, history []llm.ChatMessage, opts ChatOptions) ([]llm.ChatMessage, error) {
	systemPrompt, userMessage, err := prompt.BuildPrompts(a.renderer, ask, prompt.BuildOptions{
		Toolsets:              a.toolsets,
		Instructions:          opts.Instructions,
		SystemPromptAdditions: opts.SystemPromptAdditions,
		ClusterName:           a.clusterName,
		FilePaths:             opts.FilePaths,
		IncludeTodoReminder:   opts.IncludeTodoReminder,
		Images:                opts.Images,
		Overrides:             opts.Overrides,
	})
	if err != nil {
		return nil, err
	}

	conversation := make([]llm.ChatMessage, len(history))
	copy(conversation, history)

	conversation = AddOrUpdateSystemPrompt(conversation, systemPrompt)
	conversation = append(conversation, userMessage)

	toolSlots := countToolMessages(conversation)
	if toolSlots == 0 {
		// No tool content anywhere: skip the token-counting call.
		return conversation, nil
	}

	budget := CalculateToolBudget(a.accountant, dropToolMessages(conversation), toolSlots)
	TruncateToolMessages(conversation, budget)
	return conversation, nil
}

// AddOrUpdateSystemPrompt adds or replaces the system prompt in a
// conversation history. An empty prompt is a no-op.
//
// Only a system message at position 0 is replaced. If a system message
// exists anywhere else, the history is left untouched — it is neither
// moved nor duplicated.
func AddOrUpdateSystemPrompt(history []llm.ChatMessage, systemPrompt string) []llm.ChatMessage {
	if systemPrompt == "" {
		return history
	}
	if len(history) == 0 {
		return append(history, llm.SystemMessage(systemPrompt))
	}
	if history[0].Role == llm.RoleSystem {
		history[0].Content = systemPrompt
		return history
	}
	for _, msg := range history {
		if msg.Role == llm.RoleSystem {
			return history
		}
	}
	return append([]llm.ChatMessage{llm.SystemMessage(systemPrompt)}, history...)
}

// countToolMessages returns the number of tool-role messages in history.
func countToolMessages(history []llm.ChatMessage) int {
	count := 0
	for _, msg := range history {
		if msg.Role == llm.RoleTool {
			count++
		}
	}
	return count
}

// dropToolMessages returns a copy of history without tool-role messages.
func dropToolMessages(history []llm.ChatMessage) []llm.ChatMessage {
	filtered := make([]llm.ChatMessage, 0, len(history))
	for _, msg := range history {
		if msg.Role != llm.RoleTool {
			filtered = append(filtered, msg)
		}
	}
	return filtered
}
