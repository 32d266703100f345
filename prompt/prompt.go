// Package prompt builds the system and user prompts fed to the LLM.
//
// Prompt text is assembled from optional components (see components.go)
// and rendered through embedded templates. The budgeting core treats this
// package as a collaborator: it only ever sees the rendered strings.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mailprak/holmesgpt/llm"
)

// ToolsetInfo is the name/description pair of a toolset advertised in the
// system prompt.
type ToolsetInfo struct {
	Name        string
	Description string
}

// Instructions carries runbook and operator-supplied guidance rendered
// into the user prompt.
type Instructions struct {
	RunbookCatalog     string
	GlobalInstructions string
	CustomInstructions string
}

func (i Instructions) empty() bool {
	return i.RunbookCatalog == "" && i.GlobalInstructions == "" && i.CustomInstructions == ""
}

// todoReminder nudges the model to track multi-step investigations.
const todoReminder = "\n\n<system-reminder>\nBreak the question into sub-problems before calling any tools, track them as a todo list, and update the list after every tool call. Verify your solution before answering.\n</system-reminder>"

// BuildOptions controls prompt assembly.
type BuildOptions struct {
	Toolsets              []ToolsetInfo
	Instructions          Instructions
	SystemPromptAdditions string
	ClusterName           string
	AskUserEnabled        bool
	FilePaths             []string
	IncludeTodoReminder   bool
	Images                []llm.ImageURL
	Overrides             map[Component]bool
}

// BuildPrompts builds both the system prompt and the user message.
// An empty system prompt string means "no system prompt".
func BuildPrompts(r Renderer, userPrompt string, opts BuildOptions) (string, llm.ChatMessage, error) {
	systemPrompt, err := BuildSystemPrompt(r, opts)
	if err != nil {
		return "", llm.ChatMessage{}, err
	}
	userMessage, err := BuildUserPrompt(r, userPrompt, opts)
	if err != nil {
		return "", llm.ChatMessage{}, err
	}
	return systemPrompt, userMessage, nil
}

// BuildSystemPrompt renders the system prompt from its enabled components.
// Returns "" when the rendered prompt is empty — treated as "no system
// prompt", not an error.
func BuildSystemPrompt(r Renderer, opts BuildOptions) (string, error) {
	enabled := func(c Component) bool {
		return Enabled(c, opts.Overrides)
	}

	toolsetInstructions := enabled(ComponentToolsetInstructions)
	toolsets := opts.Toolsets
	if !toolsetInstructions {
		toolsets = nil
	}

	clusterName := ""
	if enabled(ComponentClusterName) {
		clusterName = opts.ClusterName
	}
	additions := ""
	if enabled(ComponentSystemPromptAdditions) {
		additions = opts.SystemPromptAdditions
	}

	context := map[string]interface{}{
		"intro_enabled":                enabled(ComponentIntro),
		"ask_user_enabled":             opts.AskUserEnabled && enabled(ComponentAskUser),
		"ai_safety_enabled":            enabled(ComponentAISafety),
		"toolset_instructions_enabled": toolsetInstructions,
		"permission_errors_enabled":    enabled(ComponentPermissionErrors),
		"general_instructions_enabled": enabled(ComponentGeneralInstructions),
		"style_guide_enabled":          enabled(ComponentStyleGuide),
		"toolsets":                     toolsets,
		"cluster_name":                 clusterName,
		"system_prompt_additions":      additions,
	}

	rendered, err := r.Render("generic_ask", context)
	if err != nil {
		return "", err
	}
	return trimRendered(rendered), nil
}

// BuildUserPrompt builds the user message with all enrichments: attached
// files, the todo reminder, runbook context, and vision content.
func BuildUserPrompt(r Renderer, userPrompt string, opts BuildOptions) (llm.ChatMessage, error) {
	enabled := func(c Component) bool {
		return Enabled(c, opts.Overrides)
	}

	if len(opts.FilePaths) > 0 && enabled(ComponentFiles) {
		var err error
		userPrompt, err = AppendFilesToUserPrompt(userPrompt, opts.FilePaths)
		if err != nil {
			return llm.ChatMessage{}, err
		}
	}

	if opts.IncludeTodoReminder && enabled(ComponentTodoReminder) {
		userPrompt += todoReminder
	}

	if enabled(ComponentTimeRunbooks) {
		var err error
		userPrompt, err = GenerateUserPrompt(r, userPrompt, opts.Instructions)
		if err != nil {
			return llm.ChatMessage{}, err
		}
	}

	if len(opts.Images) > 0 {
		return buildVisionMessage(userPrompt, opts.Images), nil
	}
	return llm.UserMessage(userPrompt), nil
}

// GenerateUserPrompt renders the base user prompt template with runbook
// and instruction context.
func GenerateUserPrompt(r Renderer, userPrompt string, instructions Instructions) (string, error) {
	context := map[string]interface{}{
		"user_prompt":         userPrompt,
		"runbooks_enabled":    !instructions.empty(),
		"runbook_catalog":     instructions.RunbookCatalog,
		"global_instructions": instructions.GlobalInstructions,
		"custom_instructions": instructions.CustomInstructions,
	}
	rendered, err := r.Render("base_user_prompt", context)
	if err != nil {
		return "", err
	}
	return trimRendered(rendered), nil
}

// AppendFilesToUserPrompt appends each file's content to the prompt inside
// an attached-file block.
func AppendFilesToUserPrompt(userPrompt string, filePaths []string) (string, error) {
	for _, path := range filePaths {
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read attached file %s: %w", path, err)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		userPrompt += fmt.Sprintf("\n\n<attached-file path='%s'>\n%s\n</attached-file>", abs, content)
	}
	return userPrompt, nil
}

// buildVisionMessage builds a structured content list for vision models.
func buildVisionMessage(text string, images []llm.ImageURL) llm.ChatMessage {
	parts := []llm.ContentPart{{Type: "text", Text: text}}
	for _, img := range images {
		imageURL := img
		parts = append(parts, llm.ContentPart{Type: "image_url", ImageURL: &imageURL})
	}
	return llm.ChatMessage{Role: llm.RoleUser, ContentParts: parts}
}
