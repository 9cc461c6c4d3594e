package store

import (
	"context"
	"sync"

	"ai_sdlc/internal/models"
)

// MemoryStore keeps credentials for the lifetime of the process. It is the
// default backend and the session-scoped analogue of the original system's
// per-profile storage.
type MemoryStore struct {
	mu   sync.RWMutex
	keys map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{keys: make(map[string]string)}
}

func (s *MemoryStore) Put(_ context.Context, provider models.ProviderID, apiKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[credentialKey(provider)] = apiKey
	return nil
}

func (s *MemoryStore) Get(_ context.Context, provider models.ProviderID) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	apiKey, ok := s.keys[credentialKey(provider)]
	return apiKey, ok, nil
}

func (s *MemoryStore) Delete(_ context.Context, provider models.ProviderID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, credentialKey(provider))
	return nil
}

func (s *MemoryStore) Close() error { return nil }
