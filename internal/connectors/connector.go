package connectors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai_sdlc/internal/models"
)

const (
	defaultTimeout     = 60 * time.Second
	defaultTemperature = 0.3
)

// CodeRequest asks for code satisfying free-text requirements.
type CodeRequest struct {
	Prompt    string `json:"prompt"`
	Language  string `json:"language"`
	Framework string `json:"framework,omitempty"`
}

// DocRequest asks for documentation of existing code.
// Format defaults to "markdown" when empty.
type DocRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	Format   string `json:"format,omitempty"`
}

// TestRequest asks for test cases covering existing code.
type TestRequest struct {
	Code      string `json:"code"`
	Language  string `json:"language"`
	Framework string `json:"framework,omitempty"`
}

// BugFixRequest asks for a fix of code that produced an error.
type BugFixRequest struct {
	Code         string `json:"code"`
	ErrorMessage string `json:"error_message"`
	Language     string `json:"language"`
}

// OptimizeRequest asks for an optimized rewrite of existing code.
// Target defaults to "performance" when empty.
type OptimizeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	Target   string `json:"target,omitempty"`
}

// Result is the normalized outcome of a capability call. For documentation
// and test generation the whole completion lands in Output and Explanation
// is empty; for the code-producing capabilities Output holds the first code
// block and Explanation the surrounding prose.
type Result struct {
	Output      string `json:"output"`
	Explanation string `json:"explanation,omitempty"`
}

// Connector adapts the five SDLC capabilities onto one vendor's chat API.
// Every call issues exactly one outbound HTTP request; retries, caching and
// rate limiting are caller concerns.
type Connector interface {
	Provider() models.ProviderID
	Endpoint() string

	GenerateCode(ctx context.Context, req CodeRequest) (*Result, error)
	GenerateDocumentation(ctx context.Context, req DocRequest) (*Result, error)
	GenerateTests(ctx context.Context, req TestRequest) (*Result, error)
	FixBugs(ctx context.Context, req BugFixRequest) (*Result, error)
	OptimizeCode(ctx context.Context, req OptimizeRequest) (*Result, error)
}

// payloadFunc builds the vendor request path and JSON body for a prompt.
type payloadFunc func(model, prompt string, temperature float64) (path string, body map[string]any)

// contentFunc extracts the completion text from a vendor 2xx response body.
type contentFunc func(body []byte) (string, error)

// chatConnector is the shared plumbing behind every vendor variant. Variants
// differ only in endpoint, auth shape and payload/response schema, supplied
// as the auth strategy and the two schema funcs.
type chatConnector struct {
	provider models.ProviderID
	baseURL  string
	model    string
	apiKey   string
	auth     requestAuth
	client   *http.Client
	payload  payloadFunc
	content  contentFunc
}

func newChatConnector(provider models.ProviderID, baseURL, model, apiKey string, auth requestAuth, payload payloadFunc, content contentFunc, opts ...Option) *chatConnector {
	c := &chatConnector{
		provider: provider,
		baseURL:  baseURL,
		model:    model,
		apiKey:   apiKey,
		auth:     auth,
		client: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		payload: payload,
		content: content,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option customizes a connector; used by tests and by deployments that front
// a vendor with a proxy.
type Option func(*chatConnector)

// WithBaseURL overrides the vendor endpoint base address.
func WithBaseURL(baseURL string) Option {
	return func(c *chatConnector) { c.baseURL = baseURL }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *chatConnector) { c.client = client }
}

// WithModel overrides the vendor model name.
func WithModel(model string) Option {
	return func(c *chatConnector) { c.model = model }
}

func (c *chatConnector) Provider() models.ProviderID { return c.provider }

func (c *chatConnector) Endpoint() string { return c.baseURL }

func (c *chatConnector) GenerateCode(ctx context.Context, req CodeRequest) (*Result, error) {
	if err := requireInput(c.provider, req.Prompt, req.Language); err != nil {
		return nil, err
	}
	content, err := c.complete(ctx, codePrompt(req))
	if err != nil {
		return nil, err
	}
	return splitResult(content), nil
}

func (c *chatConnector) GenerateDocumentation(ctx context.Context, req DocRequest) (*Result, error) {
	if err := requireInput(c.provider, req.Code, req.Language); err != nil {
		return nil, err
	}
	content, err := c.complete(ctx, docPrompt(req))
	if err != nil {
		return nil, err
	}
	return &Result{Output: content}, nil
}

func (c *chatConnector) GenerateTests(ctx context.Context, req TestRequest) (*Result, error) {
	if err := requireInput(c.provider, req.Code, req.Language); err != nil {
		return nil, err
	}
	content, err := c.complete(ctx, testPrompt(req))
	if err != nil {
		return nil, err
	}
	return &Result{Output: content}, nil
}

func (c *chatConnector) FixBugs(ctx context.Context, req BugFixRequest) (*Result, error) {
	if err := requireInput(c.provider, req.Code, req.Language); err != nil {
		return nil, err
	}
	content, err := c.complete(ctx, bugFixPrompt(req))
	if err != nil {
		return nil, err
	}
	return splitResult(content), nil
}

func (c *chatConnector) OptimizeCode(ctx context.Context, req OptimizeRequest) (*Result, error) {
	if err := requireInput(c.provider, req.Code, req.Language); err != nil {
		return nil, err
	}
	content, err := c.complete(ctx, optimizePrompt(req))
	if err != nil {
		return nil, err
	}
	return splitResult(content), nil
}

// complete issues the single outbound request for a capability call and
// returns the completion text.
func (c *chatConnector) complete(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", &APIError{
			Kind:     KindAuthentication,
			Provider: c.provider,
			Message:  "no API key configured",
		}
	}

	path, payload := c.payload(c.model, prompt, defaultTemperature)

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.auth.apply(httpReq, c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request to %s failed: %w", c.provider, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", newAPIError(c.provider, resp.StatusCode, respBody)
	}

	content, err := c.content(respBody)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s response: %w", c.provider, err)
	}
	return content, nil
}

// requireInput enforces the shared input constraints: non-empty primary text
// and a language tag. Violations never reach the network.
func requireInput(provider models.ProviderID, primary, language string) error {
	if primary == "" {
		return &APIError{
			Kind:     KindInvalidRequest,
			Provider: provider,
			Message:  "primary text must not be empty",
		}
	}
	if language == "" {
		return &APIError{
			Kind:     KindInvalidRequest,
			Provider: provider,
			Message:  "language must not be empty",
		}
	}
	return nil
}
