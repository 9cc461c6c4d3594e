package connectors

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai_sdlc/internal/models"
)

// capturedRequest holds everything the fake vendor saw for assertions.
type capturedRequest struct {
	path   string
	query  string
	header http.Header
	body   map[string]any
}

// fakeVendor serves a canned completion and records the request.
func fakeVendor(t *testing.T, status int, response string) (*httptest.Server, *capturedRequest, *int64) {
	t.Helper()

	captured := &capturedRequest{}
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		captured.path = r.URL.Path
		captured.query = r.URL.RawQuery
		captured.header = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&captured.body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, captured, &calls
}

func openAIResponse(content string) string {
	data, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(data)
}

func geminiResponse(content string) string {
	data, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": content}}}},
		},
	})
	return string(data)
}

func claudeResponse(content string) string {
	data, _ := json.Marshal(map[string]any{
		"content": []map[string]any{{"type": "text", "text": content}},
	})
	return string(data)
}

func TestChatGPTRequestShape(t *testing.T) {
	srv, captured, _ := fakeVendor(t, http.StatusOK, openAIResponse("```go\npackage main\n```\ndone"))

	conn := NewChatGPT("sk-test", WithBaseURL(srv.URL))
	res, err := conn.GenerateCode(context.Background(), CodeRequest{Prompt: "hello world", Language: "go"})
	require.NoError(t, err)

	assert.Equal(t, "/chat/completions", captured.path)
	assert.Equal(t, "Bearer sk-test", captured.header.Get("Authorization"))
	assert.Equal(t, "application/json", captured.header.Get("Content-Type"))
	assert.Equal(t, "gpt-5", captured.body["model"])
	assert.Equal(t, 0.3, captured.body["temperature"])
	assert.Equal(t, "package main", res.Output)
	assert.Equal(t, "done", res.Explanation)
}

func TestDeepSeekAndGrokShareTheChatCompletionsShape(t *testing.T) {
	t.Run("deepseek", func(t *testing.T) {
		srv, captured, _ := fakeVendor(t, http.StatusOK, openAIResponse("ok"))
		conn := NewDeepSeek("ds-key", WithBaseURL(srv.URL))
		_, err := conn.GenerateDocumentation(context.Background(), DocRequest{Code: "x = 1", Language: "python"})
		require.NoError(t, err)
		assert.Equal(t, "/chat/completions", captured.path)
		assert.Equal(t, "Bearer ds-key", captured.header.Get("Authorization"))
		assert.Equal(t, "deepseek-coder", captured.body["model"])
	})

	t.Run("grok", func(t *testing.T) {
		srv, captured, _ := fakeVendor(t, http.StatusOK, openAIResponse("ok"))
		conn := NewGrok("grok-key", WithBaseURL(srv.URL))
		_, err := conn.GenerateTests(context.Background(), TestRequest{Code: "x = 1", Language: "python"})
		require.NoError(t, err)
		assert.Equal(t, "/chat/completions", captured.path)
		assert.Equal(t, "Bearer grok-key", captured.header.Get("Authorization"))
		assert.Equal(t, "grok-2", captured.body["model"])
	})
}

func TestGeminiSendsKeyInQuery(t *testing.T) {
	srv, captured, _ := fakeVendor(t, http.StatusOK, geminiResponse("ok"))

	conn := NewGemini("gm-key", WithBaseURL(srv.URL))
	_, err := conn.GenerateCode(context.Background(), CodeRequest{Prompt: "sort a list", Language: "python"})
	require.NoError(t, err)

	assert.Equal(t, "/models/gemini-pro-code:generateContent", captured.path)
	assert.Equal(t, "key=gm-key", captured.query)
	assert.Empty(t, captured.header.Get("Authorization"))

	contents, ok := captured.body["contents"].([]any)
	require.True(t, ok)
	require.Len(t, contents, 1)
	genCfg, ok := captured.body["generationConfig"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 0.3, genCfg["temperature"])
}

func TestClaudeSendsVendorHeaders(t *testing.T) {
	srv, captured, _ := fakeVendor(t, http.StatusOK, claudeResponse("ok"))

	conn := NewClaude("cl-key", WithBaseURL(srv.URL))
	_, err := conn.FixBugs(context.Background(), BugFixRequest{Code: "x", ErrorMessage: "boom", Language: "python"})
	require.NoError(t, err)

	assert.Equal(t, "/messages", captured.path)
	assert.Equal(t, "cl-key", captured.header.Get("x-api-key"))
	assert.Equal(t, "2023-06-01", captured.header.Get("anthropic-version"))
	assert.Empty(t, captured.header.Get("Authorization"))
	assert.Equal(t, "claude-3-opus", captured.body["model"])
	assert.Equal(t, float64(4096), captured.body["max_tokens"])
}

func TestDocumentationReturnsWholeCompletion(t *testing.T) {
	content := "# Overview\n```python\nexample()\n```\nMore prose."
	srv, _, _ := fakeVendor(t, http.StatusOK, openAIResponse(content))

	conn := NewChatGPT("sk-test", WithBaseURL(srv.URL))
	res, err := conn.GenerateDocumentation(context.Background(), DocRequest{Code: "def f(): pass", Language: "python"})
	require.NoError(t, err)

	// Documentation is not split; embedded code blocks stay in place.
	assert.Equal(t, content, res.Output)
	assert.Empty(t, res.Explanation)
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		status int
		kind   ErrorKind
	}{
		{http.StatusUnauthorized, KindAuthentication},
		{http.StatusForbidden, KindAuthentication},
		{http.StatusTooManyRequests, KindRateLimit},
		{http.StatusBadRequest, KindInvalidRequest},
		{http.StatusNotFound, KindInvalidRequest},
		{http.StatusUnprocessableEntity, KindInvalidRequest},
		{http.StatusInternalServerError, KindServiceUnavailable},
		{http.StatusServiceUnavailable, KindServiceUnavailable},
		{http.StatusTeapot, KindUnknown},
	}

	for _, tc := range cases {
		srv, _, _ := fakeVendor(t, tc.status, `{"error":"nope"}`)
		conn := NewChatGPT("sk-test", WithBaseURL(srv.URL))

		_, err := conn.GenerateCode(context.Background(), CodeRequest{Prompt: "x", Language: "go"})
		require.Error(t, err, "status %d", tc.status)
		assert.True(t, IsKind(err, tc.kind), "status %d should map to %s, got %v", tc.status, tc.kind, err)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, tc.status, apiErr.StatusCode)
		assert.Equal(t, models.ProviderChatGPT, apiErr.Provider)
		assert.Equal(t, `{"error":"nope"}`, apiErr.Body)
	}
}

func TestMissingAPIKeyFailsBeforeNetwork(t *testing.T) {
	srv, _, calls := fakeVendor(t, http.StatusOK, openAIResponse("ok"))

	conn := NewChatGPT("", WithBaseURL(srv.URL))
	_, err := conn.GenerateCode(context.Background(), CodeRequest{Prompt: "x", Language: "go"})

	require.Error(t, err)
	assert.True(t, IsKind(err, KindAuthentication))
	assert.Equal(t, int64(0), atomic.LoadInt64(calls))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.StatusCode)
}

func TestEmptyInputFailsBeforeNetwork(t *testing.T) {
	srv, _, calls := fakeVendor(t, http.StatusOK, openAIResponse("ok"))
	conn := NewClaude("cl-key", WithBaseURL(srv.URL))
	ctx := context.Background()

	_, err := conn.GenerateCode(ctx, CodeRequest{Prompt: "", Language: "go"})
	assert.True(t, IsKind(err, KindInvalidRequest))

	_, err = conn.GenerateCode(ctx, CodeRequest{Prompt: "x", Language: ""})
	assert.True(t, IsKind(err, KindInvalidRequest))

	_, err = conn.GenerateDocumentation(ctx, DocRequest{Code: "", Language: "go"})
	assert.True(t, IsKind(err, KindInvalidRequest))

	_, err = conn.GenerateTests(ctx, TestRequest{Code: "", Language: "go"})
	assert.True(t, IsKind(err, KindInvalidRequest))

	_, err = conn.FixBugs(ctx, BugFixRequest{Code: "", ErrorMessage: "boom", Language: "go"})
	assert.True(t, IsKind(err, KindInvalidRequest))

	_, err = conn.OptimizeCode(ctx, OptimizeRequest{Code: "", Language: "go"})
	assert.True(t, IsKind(err, KindInvalidRequest))

	assert.Equal(t, int64(0), atomic.LoadInt64(calls))
}

func TestPromptDefaults(t *testing.T) {
	t.Run("documentation format defaults to markdown", func(t *testing.T) {
		srv, captured, _ := fakeVendor(t, http.StatusOK, openAIResponse("ok"))
		conn := NewChatGPT("sk-test", WithBaseURL(srv.URL))
		_, err := conn.GenerateDocumentation(context.Background(), DocRequest{Code: "x = 1", Language: "python"})
		require.NoError(t, err)

		prompt := extractChatPrompt(t, captured.body)
		assert.Contains(t, prompt, "in markdown format")
	})

	t.Run("optimize target defaults to performance", func(t *testing.T) {
		srv, captured, _ := fakeVendor(t, http.StatusOK, openAIResponse("ok"))
		conn := NewChatGPT("sk-test", WithBaseURL(srv.URL))
		_, err := conn.OptimizeCode(context.Background(), OptimizeRequest{Code: "x = 1", Language: "python"})
		require.NoError(t, err)

		prompt := extractChatPrompt(t, captured.body)
		assert.Contains(t, prompt, "for performance")
	})

	t.Run("explicit values are kept", func(t *testing.T) {
		srv, captured, _ := fakeVendor(t, http.StatusOK, openAIResponse("ok"))
		conn := NewChatGPT("sk-test", WithBaseURL(srv.URL))
		_, err := conn.OptimizeCode(context.Background(), OptimizeRequest{Code: "x = 1", Language: "python", Target: "memory"})
		require.NoError(t, err)

		prompt := extractChatPrompt(t, captured.body)
		assert.Contains(t, prompt, "for memory")
	})
}

func TestMalformedVendorResponse(t *testing.T) {
	srv, _, _ := fakeVendor(t, http.StatusOK, `{"choices":[]}`)
	conn := NewChatGPT("sk-test", WithBaseURL(srv.URL))

	_, err := conn.GenerateCode(context.Background(), CodeRequest{Prompt: "x", Language: "go"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func extractChatPrompt(t *testing.T, body map[string]any) string {
	t.Helper()
	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, messages)
	first, ok := messages[0].(map[string]any)
	require.True(t, ok)
	prompt, ok := first["content"].(string)
	require.True(t, ok)
	return prompt
}
