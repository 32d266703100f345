// Prompt component toggles.
//
// Components can be switched off globally through the ENABLED_PROMPTS
// environment variable or per-request through API overrides. Resolution is
// a fixed precedence, not nested conditionals: env-disables-always,
// API-overrides-when-env-allows, default-enabled.

package prompt

import (
	"os"
	"strings"
)

// Component identifies one optional section of the system or user prompt.
type Component string

// User prompt components.
const (
	ComponentFiles        Component = "files"
	ComponentTodoReminder Component = "todowrite_reminder"
	ComponentTimeRunbooks Component = "time_runbooks"
)

// System prompt components.
const (
	ComponentIntro                 Component = "intro"
	ComponentAskUser               Component = "ask_user"
	ComponentTodoInstructions      Component = "todowrite_instructions"
	ComponentAISafety              Component = "ai_safety"
	ComponentToolsetInstructions   Component = "toolset_instructions"
	ComponentPermissionErrors      Component = "permission_errors"
	ComponentGeneralInstructions   Component = "general_instructions"
	ComponentStyleGuide            Component = "style_guide"
	ComponentClusterName           Component = "cluster_name"
	ComponentSystemPromptAdditions Component = "system_prompt_additions"
)

// AllowedByEnv reports whether the ENABLED_PROMPTS environment variable
// permits the component.
//
//   - unset or empty: all components allowed (production default)
//   - "none": all components disabled
//   - comma-separated names: only the listed components allowed
func AllowedByEnv(c Component) bool {
	enabled := os.Getenv("ENABLED_PROMPTS")
	if enabled == "" {
		return true
	}
	if strings.EqualFold(enabled, "none") {
		return false
	}
	for _, name := range strings.Split(enabled, ",") {
		if strings.EqualFold(strings.TrimSpace(name), string(c)) {
			return true
		}
	}
	return false
}

// Enabled resolves whether a component is active, considering both the
// environment gate and per-request overrides.
//
// Precedence: env var > API override > default (enabled). When the env var
// disables a component, overrides cannot re-enable it.
func Enabled(c Component, overrides map[Component]bool) bool {
	if !AllowedByEnv(c) {
		return false
	}
	if overrides != nil {
		if v, ok := overrides[c]; ok {
			return v
		}
	}
	return true
}
