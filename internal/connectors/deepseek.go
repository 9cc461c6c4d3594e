package connectors

import "ai_sdlc/internal/models"

const (
	deepSeekBaseURL      = "https://api.deepseek.com/v1"
	deepSeekDefaultModel = "deepseek-coder"
)

// DeepSeekConnector adapts the capabilities onto DeepSeek's API, which
// follows the OpenAI chat-completions schema with bearer-token auth.
type DeepSeekConnector struct {
	*chatConnector
}

func NewDeepSeek(apiKey string, opts ...Option) *DeepSeekConnector {
	return &DeepSeekConnector{newChatConnector(
		models.ProviderDeepSeek, deepSeekBaseURL, deepSeekDefaultModel, apiKey,
		bearerAuth{}, openAIStylePayload, openAIStyleContent, opts...,
	)}
}
