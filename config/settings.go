// Package config provides application settings loaded from environment variables.
//
// Settings are created via New() which handles:
// - Environment variable parsing with validation
// - Default value application
// - Provider-specific configuration lookup

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Settings holds all application configuration.
type Settings struct {
	LLM     LLMConfig
	Storage StorageConfig
	Agent   AgentConfig
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	Provider          string
	Model             string
	MaxTokens         int
	Temperature       float64
	CharsPerToken     int
	ToolResultPercent float64
}

// StorageConfig holds filesystem and database configuration.
type StorageConfig struct {
	// SpilloverEnabled controls whether oversized tool results are
	// written to scratch storage instead of being dropped.
	SpilloverEnabled bool
	// SpilloverPath is the base directory for scratch scopes.
	SpilloverPath string
	// DatabasePath is the SQLite file holding conversation history.
	DatabasePath string
}

// AgentConfig holds agent execution configuration.
type AgentConfig struct {
	MaxIterations int
	ClusterName   string
}

// providerInfo holds configuration for a specific LLM provider.
type providerInfo struct {
	modelEnv     string
	defaultModel string
	apiKeyEnv    string
}

// Supported providers and their configuration.
var providers = map[string]providerInfo{
	"openai":    {"OPENAI_MODEL", "gpt-4o", "OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_MODEL", "claude-sonnet-4-20250514", "ANTHROPIC_API_KEY"},
	"deepseek":  {"DEEPSEEK_MODEL", "deepseek-chat", "DEEPSEEK_API_KEY"},
	"gemini":    {"GEMINI_MODEL", "gemini-2.5-flash", "GEMINI_API_KEY"},
}

// Provider aliases map to canonical names.
var providerAliases = map[string]string{
	"claude": "anthropic",
	"google": "gemini",
	"gpt":    "openai",
}

// New creates settings for the specified provider, loading values from environment variables.
// An empty provider falls back to LLM_PROVIDER, then to openai.
// Returns an error if the provider is unknown or environment variables contain invalid values.
func New(provider string) (Settings, error) {
	if provider == "" {
		provider = os.Getenv("LLM_PROVIDER")
	}
	if provider == "" {
		provider = "openai"
	}
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return Settings{}, err
	}

	maxTokens, err := getEnvInt("LLM_MAX_TOKENS", 4096)
	if err != nil {
		return Settings{}, err
	}
	temperature, err := getEnvFloat64("LLM_TEMPERATURE", 0.7)
	if err != nil {
		return Settings{}, err
	}
	charsPerToken, err := getEnvInt("LLM_CHARS_PER_TOKEN", 4)
	if err != nil {
		return Settings{}, err
	}
	toolResultPercent, err := getEnvFloat64("TOOL_RESULT_CONTEXT_PCT", 25)
	if err != nil {
		return Settings{}, err
	}

	spilloverEnabled, err := getEnvBool("HOLMES_TOOL_RESULT_STORAGE_ENABLED", true)
	if err != nil {
		return Settings{}, err
	}
	spilloverPath := os.Getenv("HOLMES_TOOL_RESULT_STORAGE_PATH")
	if spilloverPath == "" {
		spilloverPath = filepath.Join(os.TempDir(), "holmes")
	}
	databasePath := os.Getenv("HOLMES_DB_PATH")
	if databasePath == "" {
		databasePath = filepath.Join(ConfigDir(), "history.db")
	}

	maxIterations, err := getEnvInt("AGENT_MAX_ITERATIONS", 10)
	if err != nil {
		return Settings{}, err
	}

	// Get model from environment or use default
	model := os.Getenv(info.modelEnv)
	if model == "" {
		model = info.defaultModel
	}

	return Settings{
		LLM: LLMConfig{
			Provider:          provider,
			Model:             model,
			MaxTokens:         maxTokens,
			Temperature:       temperature,
			CharsPerToken:     charsPerToken,
			ToolResultPercent: toolResultPercent,
		},
		Storage: StorageConfig{
			SpilloverEnabled: spilloverEnabled,
			SpilloverPath:    spilloverPath,
			DatabasePath:     databasePath,
		},
		Agent: AgentConfig{
			MaxIterations: maxIterations,
			ClusterName:   os.Getenv("CLUSTER_NAME"),
		},
	}, nil
}

// ConfigDir returns the directory holding persistent agent state.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".holmes"
	}
	return filepath.Join(home, ".holmes")
}

// normalizeProvider converts provider aliases to canonical names.
func normalizeProvider(provider string) string {
	provider = strings.ToLower(provider)
	if canonical, ok := providerAliases[provider]; ok {
		return canonical
	}
	return provider
}

// getProviderInfo returns configuration for a provider.
func getProviderInfo(provider string) (providerInfo, error) {
	info, ok := providers[provider]
	if !ok {
		return providerInfo{}, fmt.Errorf("unknown provider: %q", provider)
	}
	return info, nil
}

// APIKeyFor returns the API key for a provider from environment variables.
func APIKeyFor(provider string) (string, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return "", err
	}

	key := os.Getenv(info.apiKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", info.apiKeyEnv)
	}
	return key, nil
}

// SupportedProviders returns the list of supported provider names.
func SupportedProviders() []string {
	result := make([]string, 0, len(providers))
	for name := range providers {
		result = append(result, name)
	}
	return result
}

// Environment variable helpers with proper error handling

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}

func getEnvFloat64(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return f, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return b, nil
}
