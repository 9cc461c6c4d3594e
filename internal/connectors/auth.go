package connectors

import "net/http"

// requestAuth applies one vendor's credential shape to an outgoing request.
type requestAuth interface {
	apply(req *http.Request, apiKey string)
}

// bearerAuth sends the key as "Authorization: Bearer <key>" (OpenAI-style).
type bearerAuth struct{}

func (bearerAuth) apply(req *http.Request, apiKey string) {
	req.Header.Set("Authorization", "Bearer "+apiKey)
}

// headerAuth sends the key in a vendor custom header, optionally with fixed
// extra headers such as a version pin.
type headerAuth struct {
	name  string
	extra map[string]string
}

func (a headerAuth) apply(req *http.Request, apiKey string) {
	req.Header.Set(a.name, apiKey)
	for k, v := range a.extra {
		req.Header.Set(k, v)
	}
}

// queryAuth embeds the key in the request URL (Gemini-style).
type queryAuth struct {
	param string
}

func (a queryAuth) apply(req *http.Request, apiKey string) {
	q := req.URL.Query()
	q.Set(a.param, apiKey)
	req.URL.RawQuery = q.Encode()
}
