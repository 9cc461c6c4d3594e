package connectors

import (
	"errors"
	"fmt"

	"ai_sdlc/internal/models"
)

// ErrorKind classifies vendor failures into the gateway taxonomy.
type ErrorKind string

const (
	KindAuthentication     ErrorKind = "authentication"
	KindRateLimit          ErrorKind = "rate_limit"
	KindInvalidRequest     ErrorKind = "invalid_request"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindUnknown            ErrorKind = "unknown"
)

// ErrUnknownProvider is returned by the factory for identifiers outside the
// known set.
var ErrUnknownProvider = errors.New("unknown provider")

// APIError is a classified vendor (or local validation) failure. StatusCode
// is zero when the error was raised before any network interaction. Body
// carries the raw vendor response for unknown failures.
type APIError struct {
	Kind       ErrorKind
	Provider   models.ProviderID
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s error (status %d): %s", e.Provider, e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s error: %s", e.Provider, e.Kind, e.Message)
}

// newAPIError maps a non-2xx vendor status to the taxonomy, preserving the
// raw status and body.
func newAPIError(provider models.ProviderID, status int, body []byte) *APIError {
	apiErr := &APIError{
		Provider:   provider,
		StatusCode: status,
		Body:       string(body),
	}

	switch {
	case status == 401 || status == 403:
		apiErr.Kind = KindAuthentication
		apiErr.Message = "vendor rejected credentials"
	case status == 429:
		apiErr.Kind = KindRateLimit
		apiErr.Message = "vendor throttled the request"
	case status == 400 || status == 404 || status == 422:
		apiErr.Kind = KindInvalidRequest
		apiErr.Message = "vendor rejected the request as malformed"
	case status >= 500:
		apiErr.Kind = KindServiceUnavailable
		apiErr.Message = "vendor-side outage"
	default:
		apiErr.Kind = KindUnknown
		apiErr.Message = fmt.Sprintf("unexpected vendor response: %s", truncate(string(body), 200))
	}
	return apiErr
}

// IsKind reports whether err is an APIError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
