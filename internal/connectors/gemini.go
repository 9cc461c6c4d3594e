package connectors

import (
	"encoding/json"
	"errors"
	"fmt"

	"ai_sdlc/internal/models"
)

const (
	geminiBaseURL      = "https://generativelanguage.googleapis.com/v1"
	geminiDefaultModel = "gemini-pro-code"
)

// GeminiConnector adapts the capabilities onto Google's Generative Language
// API. The API key travels in the URL query string, not a header.
type GeminiConnector struct {
	*chatConnector
}

func NewGemini(apiKey string, opts ...Option) *GeminiConnector {
	return &GeminiConnector{newChatConnector(
		models.ProviderGemini, geminiBaseURL, geminiDefaultModel, apiKey,
		queryAuth{param: "key"}, geminiPayload, geminiContent, opts...,
	)}
}

func geminiPayload(model, prompt string, temperature float64) (string, map[string]any) {
	path := fmt.Sprintf("/models/%s:generateContent", model)
	return path, map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]any{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"temperature": temperature,
		},
	}
}

func geminiContent(body []byte) (string, error) {
	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("response contains no candidates")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
