package llm

import "strings"

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o"

// ModelInfo describes a known model in the catalog.
type ModelInfo struct {
	ID            string   `json:"id"`
	Provider      string   `json:"provider"`
	DisplayName   string   `json:"display_name"`
	ContextWindow int      `json:"context_window"`
	MaxOutput     *int     `json:"max_output,omitempty"`
	SupportsTools bool     `json:"supports_tools"`
	Aliases       []string `json:"aliases,omitempty"`
}

// Models is the built-in model catalog. Only chat models with function
// calling are listed; the loop depends on native tool-call support.
var Models = []ModelInfo{
	// OpenAI
	{
		ID: "gpt-4o", Provider: "openai", DisplayName: "GPT-4o",
		ContextWindow: 128000, MaxOutput: intPtr(16384),
		SupportsTools: true,
		Aliases:       []string{"4o"},
	},
	{
		ID: "gpt-4o-mini", Provider: "openai", DisplayName: "GPT-4o Mini",
		ContextWindow: 128000, MaxOutput: intPtr(16384),
		SupportsTools: true,
		Aliases:       []string{"4o-mini"},
	},
	{
		ID: "gpt-4.1", Provider: "openai", DisplayName: "GPT-4.1",
		ContextWindow: 1047576, MaxOutput: intPtr(32768),
		SupportsTools: true,
	},
	{
		ID: "gpt-4.1-mini", Provider: "openai", DisplayName: "GPT-4.1 Mini",
		ContextWindow: 1047576, MaxOutput: intPtr(32768),
		SupportsTools: true,
	},

	// Anthropic (served through the gollm provider)
	{
		ID: "claude-sonnet-4-5", Provider: "anthropic", DisplayName: "Claude Sonnet 4.5",
		ContextWindow: 200000, MaxOutput: intPtr(16384),
		SupportsTools: true,
		Aliases:       []string{"sonnet"},
	},

	// Ollama (served through the gollm provider)
	{
		ID: "llama3.3", Provider: "ollama", DisplayName: "Llama 3.3",
		ContextWindow: 128000,
		SupportsTools: true,
	},
}

// GetModelInfo returns the catalog entry for a model, or nil if unknown.
// Lookup matches the exact ID first, then aliases.
func GetModelInfo(modelID string) *ModelInfo {
	for i := range Models {
		if Models[i].ID == modelID {
			return &Models[i]
		}
		for _, alias := range Models[i].Aliases {
			if alias == modelID {
				return &Models[i]
			}
		}
	}
	return nil
}

// ListModels returns all known models, optionally filtered by provider.
func ListModels(provider string) []ModelInfo {
	if provider == "" {
		result := make([]ModelInfo, len(Models))
		copy(result, Models)
		return result
	}
	var result []ModelInfo
	for _, m := range Models {
		if m.Provider == provider {
			result = append(result, m)
		}
	}
	return result
}

// InferProvider guesses the provider for a model id not present in the
// catalog, falling back to name-prefix conventions. Returns "" when no
// convention matches.
func InferProvider(modelID string) string {
	if info := GetModelInfo(modelID); info != nil {
		return info.Provider
	}
	switch {
	case strings.HasPrefix(modelID, "gpt-"), strings.HasPrefix(modelID, "o1"),
		strings.HasPrefix(modelID, "o3"), strings.HasPrefix(modelID, "o4"):
		return "openai"
	case strings.HasPrefix(modelID, "claude-"):
		return "anthropic"
	case strings.HasPrefix(modelID, "llama"), strings.HasPrefix(modelID, "mistral"),
		strings.HasPrefix(modelID, "qwen"):
		return "ollama"
	default:
		return ""
	}
}
