package connectors

import (
	"encoding/json"
	"errors"

	"ai_sdlc/internal/models"
)

const (
	chatGPTBaseURL      = "https://api.openai.com/v1"
	chatGPTDefaultModel = "gpt-5"
)

// ChatGPTConnector adapts the capabilities onto OpenAI's chat completions
// API with bearer-token auth.
type ChatGPTConnector struct {
	*chatConnector
}

func NewChatGPT(apiKey string, opts ...Option) *ChatGPTConnector {
	return &ChatGPTConnector{newChatConnector(
		models.ProviderChatGPT, chatGPTBaseURL, chatGPTDefaultModel, apiKey,
		bearerAuth{}, openAIStylePayload, openAIStyleContent, opts...,
	)}
}

// openAIStylePayload builds the messages payload shared by the OpenAI,
// DeepSeek and Grok chat-completions schemas.
func openAIStylePayload(model, prompt string, temperature float64) (string, map[string]any) {
	return "/chat/completions", map[string]any{
		"model": model,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
		"temperature": temperature,
	}
}

// openAIStyleContent extracts the completion text from a chat-completions
// response.
func openAIStyleContent(body []byte) (string, error) {
	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("response contains no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
