package connectors

import (
	"encoding/json"
	"errors"

	"ai_sdlc/internal/models"
)

const (
	claudeBaseURL      = "https://api.anthropic.com/v1"
	claudeDefaultModel = "claude-3-opus"
	claudeAPIVersion   = "2023-06-01"
	claudeMaxTokens    = 4096
)

// ClaudeConnector adapts the capabilities onto Anthropic's messages API.
// Auth uses the vendor's x-api-key header plus a pinned API version.
type ClaudeConnector struct {
	*chatConnector
}

func NewClaude(apiKey string, opts ...Option) *ClaudeConnector {
	return &ClaudeConnector{newChatConnector(
		models.ProviderClaude, claudeBaseURL, claudeDefaultModel, apiKey,
		headerAuth{
			name:  "x-api-key",
			extra: map[string]string{"anthropic-version": claudeAPIVersion},
		},
		claudePayload, claudeContent, opts...,
	)}
}

func claudePayload(model, prompt string, temperature float64) (string, map[string]any) {
	return "/messages", map[string]any{
		"model": model,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
		"temperature": temperature,
		"max_tokens":  claudeMaxTokens,
	}
}

func claudeContent(body []byte) (string, error) {
	var resp struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", err
	}
	if len(resp.Content) == 0 {
		return "", errors.New("response contains no content blocks")
	}
	return resp.Content[0].Text, nil
}
