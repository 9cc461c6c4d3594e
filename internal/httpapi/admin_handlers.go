package httpapi

import (
	"encoding/json"
	"net/http"

	"ai_sdlc/internal/auth"
	"ai_sdlc/internal/models"
)

// handleAdminLogin exchanges the admin password for a short-lived JWT.
func (d *Dependencies) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if d.Config.AdminPasswordHash == "" {
		writeError(w, http.StatusForbidden, "forbidden", "admin access is not configured")
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if !auth.CheckPassword(d.Config.AdminPasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid password")
		return
	}

	token, expiresAt, err := auth.GenerateAdminToken(d.Config.JWTSecret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_at": expiresAt,
	})
}

// handleAdminProviders lists every known provider with its settings and
// current state, ordered by priority.
func (d *Dependencies) handleAdminProviders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"providers": d.Manager.Providers(),
	})
}

// handleAdminCredentials sets or clears a provider credential. An empty
// api_key removes the stored credential and the provider's connector.
func (d *Dependencies) handleAdminCredentials(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	var req struct {
		Provider string `json:"provider"`
		APIKey   string `json:"api_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := d.Manager.SetCredential(r.Context(), models.ProviderID(req.Provider), req.APIKey); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// handleAdminActivate selects the active provider.
func (d *Dependencies) handleAdminActivate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	var req struct {
		Provider string `json:"provider"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := d.Manager.Activate(models.ProviderID(req.Provider)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "active": req.Provider})
}

// handleAdminDeactivate clears the active provider.
func (d *Dependencies) handleAdminDeactivate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	d.Manager.Deactivate()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
