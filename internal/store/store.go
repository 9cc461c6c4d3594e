package store

import (
	"context"

	"ai_sdlc/internal/models"
)

// CredentialStore persists provider API keys. Implementations must treat an
// absent credential as a normal state: Get returns ok=false, never an error,
// for a key that was simply never set.
type CredentialStore interface {
	// Put stores the credential for the provider, overwriting any prior
	// value.
	Put(ctx context.Context, provider models.ProviderID, apiKey string) error

	// Get returns the stored credential. ok is false when no credential is
	// set; err is reserved for backend failures.
	Get(ctx context.Context, provider models.ProviderID) (apiKey string, ok bool, err error)

	// Delete removes the credential for the provider. Deleting an absent
	// credential is not an error.
	Delete(ctx context.Context, provider models.ProviderID) error

	// Close releases backend resources.
	Close() error
}

// credentialKey is the storage key for a provider's API key. The format is
// shared by every backend and matches the original persistence layout.
func credentialKey(provider models.ProviderID) string {
	return string(provider) + "_api_key"
}
