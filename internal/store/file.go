package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"ai_sdlc/internal/models"
)

// FileStore persists credentials to a JSON file, written synchronously on
// every mutation. Writes go through a temp file and rename so a crash never
// leaves a half-written credentials file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("credentials file path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create credentials directory: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Put(_ context.Context, provider models.ProviderID, apiKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.load()
	if err != nil {
		return err
	}
	keys[credentialKey(provider)] = apiKey
	return s.save(keys)
}

func (s *FileStore) Get(_ context.Context, provider models.ProviderID) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.load()
	if err != nil {
		return "", false, err
	}
	apiKey, ok := keys[credentialKey(provider)]
	return apiKey, ok, nil
}

func (s *FileStore) Delete(_ context.Context, provider models.ProviderID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.load()
	if err != nil {
		return err
	}
	delete(keys, credentialKey(provider))
	return s.save(keys)
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	keys := map[string]string{}
	if len(data) == 0 {
		return keys, nil
	}
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	return keys, nil
}

func (s *FileStore) save(keys map[string]string) error {
	data, err := json.MarshalIndent(keys, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace credentials file: %w", err)
	}
	return nil
}
