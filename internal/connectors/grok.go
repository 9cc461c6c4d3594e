package connectors

import "ai_sdlc/internal/models"

const (
	grokBaseURL      = "https://api.grok.com/v1"
	grokDefaultModel = "grok-2"
)

// GrokConnector adapts the capabilities onto Grok's API, which follows the
// OpenAI chat-completions schema with bearer-token auth.
type GrokConnector struct {
	*chatConnector
}

func NewGrok(apiKey string, opts ...Option) *GrokConnector {
	return &GrokConnector{newChatConnector(
		models.ProviderGrok, grokBaseURL, grokDefaultModel, apiKey,
		bearerAuth{}, openAIStylePayload, openAIStyleContent, opts...,
	)}
}
