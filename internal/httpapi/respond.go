package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"ai_sdlc/internal/connectors"
	"ai_sdlc/internal/manager"
)

// errorBody is the envelope every error response uses.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message  string `json:"message"`
	Type     string `json:"type"`
	Provider string `json:"provider,omitempty"`
	Status   int    `json:"status,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, code int, errType, message string) {
	writeJSON(w, code, errorBody{Error: errorDetail{
		Message: message,
		Type:    errType,
	}})
}

// writeDomainError maps gateway and vendor errors to HTTP statuses. Vendor
// failures pass through with their taxonomy kind, provider and raw status.
func writeDomainError(w http.ResponseWriter, err error) {
	var apiErr *connectors.APIError
	if errors.As(err, &apiErr) {
		writeJSON(w, apiErrorStatus(apiErr), errorBody{Error: errorDetail{
			Message:  apiErr.Message,
			Type:     string(apiErr.Kind),
			Provider: string(apiErr.Provider),
			Status:   apiErr.StatusCode,
		}})
		return
	}

	switch {
	case errors.Is(err, manager.ErrNoActiveModel):
		writeError(w, http.StatusConflict, "no_active_model", err.Error())
	case errors.Is(err, manager.ErrProviderNotConfigured):
		writeError(w, http.StatusConflict, "provider_not_configured", err.Error())
	case errors.Is(err, manager.ErrProviderDisabled):
		writeError(w, http.StatusForbidden, "provider_disabled", err.Error())
	case errors.Is(err, connectors.ErrUnknownProvider):
		writeError(w, http.StatusBadRequest, "unknown_provider", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func apiErrorStatus(apiErr *connectors.APIError) int {
	switch apiErr.Kind {
	case connectors.KindAuthentication:
		return http.StatusUnauthorized
	case connectors.KindRateLimit:
		return http.StatusTooManyRequests
	case connectors.KindInvalidRequest:
		return http.StatusBadRequest
	case connectors.KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
