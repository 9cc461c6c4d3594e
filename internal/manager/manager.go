package manager

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"ai_sdlc/internal/connectors"
	"ai_sdlc/internal/logging"
	"ai_sdlc/internal/models"
	"ai_sdlc/internal/store"
)

var (
	// ErrNoActiveModel is returned by capability calls when no provider is
	// active. It is raised before any network interaction.
	ErrNoActiveModel = errors.New("no active model")

	// ErrProviderNotConfigured is returned by Activate when the provider has
	// no credential set.
	ErrProviderNotConfigured = errors.New("provider not configured")

	// ErrProviderDisabled is returned when the provider is disabled in the
	// static configuration.
	ErrProviderDisabled = errors.New("provider disabled")
)

// connectorFunc constructs a connector for a provider and credential. The
// default is the factory; tests substitute their own.
type connectorFunc func(provider models.ProviderID, apiKey string) (connectors.Connector, error)

// Manager owns the provider-to-connector mapping and the active-provider
// selection, and forwards capability calls to the active connector. It is an
// explicit object constructed per session, not a package singleton, so tests
// never share hidden state.
type Manager struct {
	mu         sync.RWMutex
	connectors map[models.ProviderID]connectors.Connector
	active     models.ProviderID // zero value means no active provider

	creds        store.CredentialStore
	settings     map[models.ProviderID]models.ProviderSettings
	newConnector connectorFunc
}

// Option customizes a Manager.
type Option func(*Manager)

// WithConnectorFunc replaces the connector constructor; used by tests to
// substitute transport mocks.
func WithConnectorFunc(fn func(models.ProviderID, string) (connectors.Connector, error)) Option {
	return func(m *Manager) { m.newConnector = fn }
}

// New creates a manager in the no-active-provider state with an empty
// mapping.
func New(creds store.CredentialStore, settings map[models.ProviderID]models.ProviderSettings, opts ...Option) *Manager {
	if settings == nil {
		settings = models.DefaultProviderSettings()
	}
	m := &Manager{
		connectors: make(map[models.ProviderID]connectors.Connector),
		creds:      creds,
		settings:   settings,
		newConnector: func(provider models.ProviderID, apiKey string) (connectors.Connector, error) {
			return connectors.New(provider, apiKey)
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Hydrate constructs connectors for every provider that already has a
// credential in the store. Called once at startup.
func (m *Manager) Hydrate(ctx context.Context) error {
	for _, provider := range models.AllProviders() {
		if !m.settings[provider].Enabled {
			continue
		}
		apiKey, ok, err := m.creds.Get(ctx, provider)
		if err != nil {
			return fmt.Errorf("failed to load credential for %s: %w", provider, err)
		}
		if !ok || apiKey == "" {
			continue
		}
		conn, err := m.newConnector(provider, apiKey)
		if err != nil {
			return fmt.Errorf("failed to construct connector for %s: %w", provider, err)
		}
		m.mu.Lock()
		m.connectors[provider] = conn
		m.mu.Unlock()
		logging.Infof("loaded credential for %s", provider)
	}
	return nil
}

// SetCredential persists the credential and constructs (or reconstructs) the
// provider's connector. A credential change is a full reconstruction, never
// an in-place mutation. An empty key removes the connector and the stored
// credential; the active provider is only touched when its own connector is
// removed. Which provider is active is otherwise unchanged.
func (m *Manager) SetCredential(ctx context.Context, provider models.ProviderID, apiKey string) error {
	if !provider.Valid() {
		return fmt.Errorf("%w: %q", connectors.ErrUnknownProvider, string(provider))
	}
	if !m.settings[provider].Enabled {
		return fmt.Errorf("%w: %s", ErrProviderDisabled, provider)
	}

	if apiKey == "" {
		if err := m.creds.Delete(ctx, provider); err != nil {
			return fmt.Errorf("failed to delete credential: %w", err)
		}
		m.mu.Lock()
		delete(m.connectors, provider)
		if m.active == provider {
			m.active = ""
		}
		m.mu.Unlock()
		logging.Infof("removed credential for %s", provider)
		return nil
	}

	conn, err := m.newConnector(provider, apiKey)
	if err != nil {
		return err
	}
	if err := m.creds.Put(ctx, provider, apiKey); err != nil {
		return fmt.Errorf("failed to persist credential: %w", err)
	}

	m.mu.Lock()
	m.connectors[provider] = conn
	m.mu.Unlock()
	logging.Infof("set credential for %s", provider)
	return nil
}

// Activate selects the provider to service capability calls. The transition
// is rejected, leaving the state unchanged, when the provider has no
// connector (no credential was set).
func (m *Manager) Activate(provider models.ProviderID) error {
	if !provider.Valid() {
		return fmt.Errorf("%w: %q", connectors.ErrUnknownProvider, string(provider))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.connectors[provider]; !ok {
		return fmt.Errorf("%w: %s", ErrProviderNotConfigured, provider)
	}
	m.active = provider
	logging.Infof("active model set to %s", provider)
	return nil
}

// Deactivate unconditionally clears the active provider.
func (m *Manager) Deactivate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = ""
}

// ActiveProvider returns the currently active provider, if any.
func (m *Manager) ActiveProvider() (models.ProviderID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active, m.active != ""
}

// ProviderStatus describes one provider for listing surfaces.
type ProviderStatus struct {
	ID          models.ProviderID `json:"id"`
	DisplayName string            `json:"display_name"`
	Enabled     bool              `json:"enabled"`
	Priority    int               `json:"priority"`
	Configured  bool              `json:"configured"`
	Active      bool              `json:"active"`
}

// Providers lists every known provider ordered by configured priority.
func (m *Manager) Providers() []ProviderStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	statuses := make([]ProviderStatus, 0, len(models.AllProviders()))
	for _, p := range models.AllProviders() {
		_, configured := m.connectors[p]
		statuses = append(statuses, ProviderStatus{
			ID:          p,
			DisplayName: p.DisplayName(),
			Enabled:     m.settings[p].Enabled,
			Priority:    m.settings[p].Priority,
			Configured:  configured,
			Active:      m.active == p,
		})
	}
	sort.SliceStable(statuses, func(i, j int) bool {
		return statuses[i].Priority < statuses[j].Priority
	})
	return statuses
}

// activeConnector snapshots the active connector. The lock is released
// before any network call so overlapping capability calls proceed
// independently.
func (m *Manager) activeConnector() (connectors.Connector, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.active == "" {
		return nil, ErrNoActiveModel
	}
	conn, ok := m.connectors[m.active]
	if !ok {
		// Active pointer is weak: the mapping entry was removed underneath it.
		return nil, ErrNoActiveModel
	}
	return conn, nil
}

// The capability methods delegate verbatim to the active connector and
// propagate its result or error unchanged. There is no retry and no fallback
// to another provider.

func (m *Manager) GenerateCode(ctx context.Context, req connectors.CodeRequest) (*connectors.Result, error) {
	conn, err := m.activeConnector()
	if err != nil {
		return nil, err
	}
	return conn.GenerateCode(ctx, req)
}

func (m *Manager) GenerateDocumentation(ctx context.Context, req connectors.DocRequest) (*connectors.Result, error) {
	conn, err := m.activeConnector()
	if err != nil {
		return nil, err
	}
	return conn.GenerateDocumentation(ctx, req)
}

func (m *Manager) GenerateTests(ctx context.Context, req connectors.TestRequest) (*connectors.Result, error) {
	conn, err := m.activeConnector()
	if err != nil {
		return nil, err
	}
	return conn.GenerateTests(ctx, req)
}

func (m *Manager) FixBugs(ctx context.Context, req connectors.BugFixRequest) (*connectors.Result, error) {
	conn, err := m.activeConnector()
	if err != nil {
		return nil, err
	}
	return conn.FixBugs(ctx, req)
}

func (m *Manager) OptimizeCode(ctx context.Context, req connectors.OptimizeRequest) (*connectors.Result, error) {
	conn, err := m.activeConnector()
	if err != nil {
		return nil, err
	}
	return conn.OptimizeCode(ctx, req)
}
