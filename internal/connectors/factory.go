package connectors

import (
	"fmt"

	"ai_sdlc/internal/models"
)

// New constructs the connector variant for the given provider identifier.
// The switch is exhaustive over the closed provider set; anything else,
// including case variants of a valid identifier, is an error rather than a
// silent default.
func New(provider models.ProviderID, apiKey string, opts ...Option) (Connector, error) {
	switch provider {
	case models.ProviderDeepSeek:
		return NewDeepSeek(apiKey, opts...), nil
	case models.ProviderGemini:
		return NewGemini(apiKey, opts...), nil
	case models.ProviderChatGPT:
		return NewChatGPT(apiKey, opts...), nil
	case models.ProviderGrok:
		return NewGrok(apiKey, opts...), nil
	case models.ProviderClaude:
		return NewClaude(apiKey, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, string(provider))
	}
}
