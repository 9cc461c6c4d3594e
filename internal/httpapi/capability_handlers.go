package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"ai_sdlc/internal/audit"
	"ai_sdlc/internal/connectors"
)

// capabilityResponse is the envelope returned by every capability endpoint.
type capabilityResponse struct {
	Result      string `json:"result"`
	Explanation string `json:"explanation,omitempty"`
	Provider    string `json:"provider"`
	RequestID   string `json:"request_id"`
}

// The capability handlers all follow the same flow: validate method, decode
// the envelope, delegate to the manager, audit, respond. Overlapping calls
// are neither deduplicated nor serialized; each produces its own vendor
// request.

func (d *Dependencies) handleGenerateCode(w http.ResponseWriter, r *http.Request) {
	var req connectors.CodeRequest
	if !d.decode(w, r, &req) {
		return
	}
	d.invoke(w, r, "generate_code", func(ctx context.Context) (*connectors.Result, error) {
		return d.Manager.GenerateCode(ctx, req)
	})
}

func (d *Dependencies) handleGenerateDocumentation(w http.ResponseWriter, r *http.Request) {
	var req connectors.DocRequest
	if !d.decode(w, r, &req) {
		return
	}
	d.invoke(w, r, "generate_documentation", func(ctx context.Context) (*connectors.Result, error) {
		return d.Manager.GenerateDocumentation(ctx, req)
	})
}

func (d *Dependencies) handleGenerateTests(w http.ResponseWriter, r *http.Request) {
	var req connectors.TestRequest
	if !d.decode(w, r, &req) {
		return
	}
	d.invoke(w, r, "generate_tests", func(ctx context.Context) (*connectors.Result, error) {
		return d.Manager.GenerateTests(ctx, req)
	})
}

func (d *Dependencies) handleFixBugs(w http.ResponseWriter, r *http.Request) {
	var req connectors.BugFixRequest
	if !d.decode(w, r, &req) {
		return
	}
	d.invoke(w, r, "fix_bugs", func(ctx context.Context) (*connectors.Result, error) {
		return d.Manager.FixBugs(ctx, req)
	})
}

func (d *Dependencies) handleOptimizeCode(w http.ResponseWriter, r *http.Request) {
	var req connectors.OptimizeRequest
	if !d.decode(w, r, &req) {
		return
	}
	d.invoke(w, r, "optimize_code", func(ctx context.Context) (*connectors.Result, error) {
		return d.Manager.OptimizeCode(ctx, req)
	})
}

func (d *Dependencies) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

func (d *Dependencies) invoke(w http.ResponseWriter, r *http.Request, capability string, call func(context.Context) (*connectors.Result, error)) {
	start := time.Now()
	reqID := uuid.New().String()

	provider := ""
	if active, ok := d.Manager.ActiveProvider(); ok {
		provider = string(active)
	}

	result, err := call(r.Context())

	rec := &audit.Record{
		Timestamp:  time.Now(),
		RequestID:  reqID,
		Provider:   provider,
		Capability: capability,
		DurationMs: time.Since(start).Milliseconds(),
		Status:     "ok",
	}
	if err != nil {
		rec.Status = "error"
		rec.Error = err.Error()
	}
	_ = d.Audit.Enqueue(rec)

	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, capabilityResponse{
		Result:      result.Output,
		Explanation: result.Explanation,
		Provider:    provider,
		RequestID:   reqID,
	})
}
