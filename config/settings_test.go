package config

import (
	"testing"
)

func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LLM_PROVIDER", "LLM_MAX_TOKENS", "LLM_TEMPERATURE", "LLM_CHARS_PER_TOKEN",
		"TOOL_RESULT_CONTEXT_PCT", "HOLMES_TOOL_RESULT_STORAGE_ENABLED",
		"HOLMES_TOOL_RESULT_STORAGE_PATH", "HOLMES_DB_PATH",
		"AGENT_MAX_ITERATIONS", "CLUSTER_NAME", "OPENAI_MODEL",
	} {
		t.Setenv(key, "")
	}
}

func TestNewDefaults(t *testing.T) {
	clearLLMEnv(t)

	settings, err := New("openai")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if settings.LLM.Provider != "openai" {
		t.Errorf("expected provider openai, got %q", settings.LLM.Provider)
	}
	if settings.LLM.Model != "gpt-4o" {
		t.Errorf("expected default model gpt-4o, got %q", settings.LLM.Model)
	}
	if settings.LLM.MaxTokens != 4096 {
		t.Errorf("expected default max tokens 4096, got %d", settings.LLM.MaxTokens)
	}
	if settings.LLM.CharsPerToken != 4 {
		t.Errorf("expected default 4 chars/token, got %d", settings.LLM.CharsPerToken)
	}
	if settings.LLM.ToolResultPercent != 25 {
		t.Errorf("expected default tool result percent 25, got %v", settings.LLM.ToolResultPercent)
	}
	if !settings.Storage.SpilloverEnabled {
		t.Error("spillover must be enabled by default")
	}
	if settings.Storage.SpilloverPath == "" {
		t.Error("spillover path must have a default")
	}
	if settings.Agent.MaxIterations != 10 {
		t.Errorf("expected default 10 iterations, got %d", settings.Agent.MaxIterations)
	}
}

func TestNewEnvOverrides(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("LLM_MAX_TOKENS", "2048")
	t.Setenv("TOOL_RESULT_CONTEXT_PCT", "10")
	t.Setenv("HOLMES_TOOL_RESULT_STORAGE_ENABLED", "false")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("CLUSTER_NAME", "prod-eu-1")

	settings, err := New("openai")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if settings.LLM.MaxTokens != 2048 {
		t.Errorf("expected max tokens 2048, got %d", settings.LLM.MaxTokens)
	}
	if settings.LLM.ToolResultPercent != 10 {
		t.Errorf("expected tool result percent 10, got %v", settings.LLM.ToolResultPercent)
	}
	if settings.Storage.SpilloverEnabled {
		t.Error("spillover must be disabled by env")
	}
	if settings.LLM.Model != "gpt-4o-mini" {
		t.Errorf("expected model override, got %q", settings.LLM.Model)
	}
	if settings.Agent.ClusterName != "prod-eu-1" {
		t.Errorf("expected cluster name, got %q", settings.Agent.ClusterName)
	}
}

func TestNewInvalidEnvValue(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("LLM_MAX_TOKENS", "not-a-number")

	if _, err := New("openai"); err == nil {
		t.Fatal("expected error for invalid LLM_MAX_TOKENS")
	}
}

func TestNewProviderAliases(t *testing.T) {
	clearLLMEnv(t)

	settings, err := New("claude")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if settings.LLM.Provider != "anthropic" {
		t.Errorf("expected alias resolved to anthropic, got %q", settings.LLM.Provider)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	if _, err := New("fancy-llm"); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewEmptyProviderFallsBack(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("LLM_PROVIDER", "deepseek")

	settings, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if settings.LLM.Provider != "deepseek" {
		t.Errorf("expected provider from LLM_PROVIDER, got %q", settings.LLM.Provider)
	}
}

func TestAPIKeyFor(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	key, err := APIKeyFor("openai")
	if err != nil {
		t.Fatalf("APIKeyFor failed: %v", err)
	}
	if key != "sk-test" {
		t.Errorf("expected sk-test, got %q", key)
	}

	t.Setenv("OPENAI_API_KEY", "")
	if _, err := APIKeyFor("openai"); err == nil {
		t.Fatal("expected error for missing API key")
	}
}
