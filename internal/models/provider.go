package models

// ProviderID identifies one of the supported LLM vendors.
type ProviderID string

const (
	ProviderDeepSeek ProviderID = "deepseek"
	ProviderGemini   ProviderID = "gemini"
	ProviderChatGPT  ProviderID = "chatgpt"
	ProviderGrok     ProviderID = "grok"
	ProviderClaude   ProviderID = "claude"
)

// AllProviders returns the closed set of known provider identifiers.
// Order matches the default priority ordering.
func AllProviders() []ProviderID {
	return []ProviderID{
		ProviderDeepSeek,
		ProviderGemini,
		ProviderChatGPT,
		ProviderGrok,
		ProviderClaude,
	}
}

// Valid reports whether p is one of the known provider identifiers.
// Matching is exact: case variants of a valid identifier are invalid.
func (p ProviderID) Valid() bool {
	switch p {
	case ProviderDeepSeek, ProviderGemini, ProviderChatGPT, ProviderGrok, ProviderClaude:
		return true
	}
	return false
}

// DisplayName returns a human-readable name for the provider.
func (p ProviderID) DisplayName() string {
	switch p {
	case ProviderDeepSeek:
		return "DeepSeek"
	case ProviderGemini:
		return "Gemini"
	case ProviderChatGPT:
		return "ChatGPT"
	case ProviderGrok:
		return "Grok"
	case ProviderClaude:
		return "Claude"
	}
	return string(p)
}

// ProviderSettings holds the static per-provider configuration read at
// startup. Priority is informational ordering only; the manager performs no
// priority-based fallback.
type ProviderSettings struct {
	Enabled  bool
	Priority int
}

// DefaultProviderSettings returns the settings the original deployment ships
// with: every provider enabled, priorities 1..5 in declaration order.
func DefaultProviderSettings() map[ProviderID]ProviderSettings {
	settings := make(map[ProviderID]ProviderSettings, len(AllProviders()))
	for i, p := range AllProviders() {
		settings[p] = ProviderSettings{Enabled: true, Priority: i + 1}
	}
	return settings
}
