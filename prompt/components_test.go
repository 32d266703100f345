package prompt

import "testing"

func TestAllowedByEnvUnsetAllowsAll(t *testing.T) {
	t.Setenv("ENABLED_PROMPTS", "")

	if !AllowedByEnv(ComponentIntro) {
		t.Error("unset env must allow every component")
	}
	if !AllowedByEnv(ComponentFiles) {
		t.Error("unset env must allow every component")
	}
}

func TestAllowedByEnvNoneDisablesAll(t *testing.T) {
	t.Setenv("ENABLED_PROMPTS", "none")

	if AllowedByEnv(ComponentIntro) {
		t.Error("'none' must disable every component")
	}
	if AllowedByEnv(ComponentTodoReminder) {
		t.Error("'none' must disable every component")
	}
}

func TestAllowedByEnvList(t *testing.T) {
	t.Setenv("ENABLED_PROMPTS", "intro, style_guide")

	if !AllowedByEnv(ComponentIntro) {
		t.Error("listed component must be allowed")
	}
	if !AllowedByEnv(ComponentStyleGuide) {
		t.Error("listed component must be allowed, whitespace ignored")
	}
	if AllowedByEnv(ComponentAISafety) {
		t.Error("unlisted component must be disabled")
	}
}

func TestEnabledPrecedence(t *testing.T) {
	// Env disables always: an override cannot re-enable.
	t.Setenv("ENABLED_PROMPTS", "intro")
	if Enabled(ComponentStyleGuide, map[Component]bool{ComponentStyleGuide: true}) {
		t.Error("override must not re-enable an env-disabled component")
	}

	// When env allows, the override decides.
	if Enabled(ComponentIntro, map[Component]bool{ComponentIntro: false}) {
		t.Error("override false must disable an env-allowed component")
	}
	if !Enabled(ComponentIntro, map[Component]bool{ComponentIntro: true}) {
		t.Error("override true must enable an env-allowed component")
	}
}

func TestEnabledDefault(t *testing.T) {
	t.Setenv("ENABLED_PROMPTS", "")

	if !Enabled(ComponentIntro, nil) {
		t.Error("components default to enabled")
	}
	if !Enabled(ComponentIntro, map[Component]bool{}) {
		t.Error("an override map without the component keeps the default")
	}
}
