package manager

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai_sdlc/internal/connectors"
	"ai_sdlc/internal/models"
	"ai_sdlc/internal/store"
)

// stubConnector records calls so tests can assert on delegation.
type stubConnector struct {
	provider models.ProviderID
	apiKey   string
	calls    int64
	result   *connectors.Result
	err      error
}

func (s *stubConnector) Provider() models.ProviderID { return s.provider }
func (s *stubConnector) Endpoint() string            { return "stub://" + string(s.provider) }

func (s *stubConnector) invoke() (*connectors.Result, error) {
	atomic.AddInt64(&s.calls, 1)
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &connectors.Result{Output: "stub output"}, nil
}

func (s *stubConnector) GenerateCode(context.Context, connectors.CodeRequest) (*connectors.Result, error) {
	return s.invoke()
}
func (s *stubConnector) GenerateDocumentation(context.Context, connectors.DocRequest) (*connectors.Result, error) {
	return s.invoke()
}
func (s *stubConnector) GenerateTests(context.Context, connectors.TestRequest) (*connectors.Result, error) {
	return s.invoke()
}
func (s *stubConnector) FixBugs(context.Context, connectors.BugFixRequest) (*connectors.Result, error) {
	return s.invoke()
}
func (s *stubConnector) OptimizeCode(context.Context, connectors.OptimizeRequest) (*connectors.Result, error) {
	return s.invoke()
}

// newStubManager wires a manager whose connectors are recording stubs. The
// returned map fills in as credentials are set.
func newStubManager(t *testing.T) (*Manager, map[models.ProviderID]*stubConnector, store.CredentialStore) {
	t.Helper()

	stubs := make(map[models.ProviderID]*stubConnector)
	var mu sync.Mutex
	creds := store.NewMemoryStore()

	mgr := New(creds, nil, WithConnectorFunc(func(provider models.ProviderID, apiKey string) (connectors.Connector, error) {
		stub := &stubConnector{provider: provider, apiKey: apiKey}
		mu.Lock()
		stubs[provider] = stub
		mu.Unlock()
		return stub, nil
	}))
	return mgr, stubs, creds
}

func TestActivateWithoutCredentialFails(t *testing.T) {
	mgr, _, _ := newStubManager(t)

	err := mgr.Activate(models.ProviderClaude)
	assert.ErrorIs(t, err, ErrProviderNotConfigured)

	_, active := mgr.ActiveProvider()
	assert.False(t, active)

	_, err = mgr.GenerateCode(context.Background(), connectors.CodeRequest{Prompt: "x", Language: "go"})
	assert.ErrorIs(t, err, ErrNoActiveModel)
}

func TestSetCredentialThenActivateDelegates(t *testing.T) {
	mgr, stubs, creds := newStubManager(t)
	ctx := context.Background()

	require.NoError(t, mgr.SetCredential(ctx, models.ProviderChatGPT, "sk-test"))
	require.NoError(t, mgr.Activate(models.ProviderChatGPT))

	active, ok := mgr.ActiveProvider()
	require.True(t, ok)
	assert.Equal(t, models.ProviderChatGPT, active)

	res, err := mgr.GenerateCode(ctx, connectors.CodeRequest{Prompt: "x", Language: "go"})
	require.NoError(t, err)
	assert.Equal(t, "stub output", res.Output)

	stub := stubs[models.ProviderChatGPT]
	assert.Equal(t, "sk-test", stub.apiKey)
	assert.Equal(t, int64(1), atomic.LoadInt64(&stub.calls))

	// The credential itself landed in the store.
	apiKey, found, err := creds.Get(ctx, models.ProviderChatGPT)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "sk-test", apiKey)
}

func TestDeactivateStopsDelegation(t *testing.T) {
	mgr, stubs, _ := newStubManager(t)
	ctx := context.Background()

	require.NoError(t, mgr.SetCredential(ctx, models.ProviderGemini, "gm-key"))
	require.NoError(t, mgr.Activate(models.ProviderGemini))
	mgr.Deactivate()

	_, ok := mgr.ActiveProvider()
	assert.False(t, ok)

	_, err := mgr.OptimizeCode(ctx, connectors.OptimizeRequest{Code: "x", Language: "go"})
	assert.ErrorIs(t, err, ErrNoActiveModel)
	assert.Equal(t, int64(0), atomic.LoadInt64(&stubs[models.ProviderGemini].calls))
}

func TestSetCredentialOverwriteReconstructsConnector(t *testing.T) {
	mgr, stubs, creds := newStubManager(t)
	ctx := context.Background()

	require.NoError(t, mgr.SetCredential(ctx, models.ProviderDeepSeek, "old-key"))
	first := stubs[models.ProviderDeepSeek]

	require.NoError(t, mgr.SetCredential(ctx, models.ProviderDeepSeek, "new-key"))
	second := stubs[models.ProviderDeepSeek]

	assert.NotSame(t, first, second)
	assert.Equal(t, "new-key", second.apiKey)

	apiKey, found, err := creds.Get(ctx, models.ProviderDeepSeek)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "new-key", apiKey)
}

func TestSetCredentialDoesNotChangeActiveProvider(t *testing.T) {
	mgr, _, _ := newStubManager(t)
	ctx := context.Background()

	require.NoError(t, mgr.SetCredential(ctx, models.ProviderClaude, "cl-key"))
	require.NoError(t, mgr.Activate(models.ProviderClaude))

	require.NoError(t, mgr.SetCredential(ctx, models.ProviderGrok, "grok-key"))

	active, ok := mgr.ActiveProvider()
	require.True(t, ok)
	assert.Equal(t, models.ProviderClaude, active)
}

func TestEmptyCredentialRemovesConnector(t *testing.T) {
	mgr, _, creds := newStubManager(t)
	ctx := context.Background()

	require.NoError(t, mgr.SetCredential(ctx, models.ProviderClaude, "cl-key"))
	require.NoError(t, mgr.Activate(models.ProviderClaude))

	require.NoError(t, mgr.SetCredential(ctx, models.ProviderClaude, ""))

	_, ok := mgr.ActiveProvider()
	assert.False(t, ok, "removing the active provider's credential clears the selection")

	_, found, err := creds.Get(ctx, models.ProviderClaude)
	require.NoError(t, err)
	assert.False(t, found)

	assert.ErrorIs(t, mgr.Activate(models.ProviderClaude), ErrProviderNotConfigured)
}

func TestUnknownProviderIsRejected(t *testing.T) {
	mgr, _, _ := newStubManager(t)
	ctx := context.Background()

	for _, id := range []string{"", "mistral", "Claude"} {
		err := mgr.SetCredential(ctx, models.ProviderID(id), "key")
		assert.ErrorIs(t, err, connectors.ErrUnknownProvider, "SetCredential %q", id)

		err = mgr.Activate(models.ProviderID(id))
		assert.ErrorIs(t, err, connectors.ErrUnknownProvider, "Activate %q", id)
	}
}

func TestDisabledProviderIsRejected(t *testing.T) {
	settings := models.DefaultProviderSettings()
	settings[models.ProviderGrok] = models.ProviderSettings{Enabled: false, Priority: 4}

	mgr := New(store.NewMemoryStore(), settings, WithConnectorFunc(func(provider models.ProviderID, apiKey string) (connectors.Connector, error) {
		return &stubConnector{provider: provider, apiKey: apiKey}, nil
	}))

	err := mgr.SetCredential(context.Background(), models.ProviderGrok, "grok-key")
	assert.ErrorIs(t, err, ErrProviderDisabled)
}

func TestHydrateLoadsPersistedCredentials(t *testing.T) {
	creds := store.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, creds.Put(ctx, models.ProviderClaude, "cl-key"))
	require.NoError(t, creds.Put(ctx, models.ProviderGemini, "gm-key"))

	stubs := make(map[models.ProviderID]*stubConnector)
	mgr := New(creds, nil, WithConnectorFunc(func(provider models.ProviderID, apiKey string) (connectors.Connector, error) {
		stub := &stubConnector{provider: provider, apiKey: apiKey}
		stubs[provider] = stub
		return stub, nil
	}))

	require.NoError(t, mgr.Hydrate(ctx))
	assert.Len(t, stubs, 2)
	assert.Equal(t, "cl-key", stubs[models.ProviderClaude].apiKey)

	// Hydration never selects an active provider on its own.
	_, ok := mgr.ActiveProvider()
	assert.False(t, ok)

	require.NoError(t, mgr.Activate(models.ProviderClaude))
}

func TestProvidersOrderedByPriority(t *testing.T) {
	mgr, _, _ := newStubManager(t)
	require.NoError(t, mgr.SetCredential(context.Background(), models.ProviderClaude, "cl-key"))
	require.NoError(t, mgr.Activate(models.ProviderClaude))

	statuses := mgr.Providers()
	require.Len(t, statuses, 5)
	for i := 1; i < len(statuses); i++ {
		assert.LessOrEqual(t, statuses[i-1].Priority, statuses[i].Priority)
	}
	for _, st := range statuses {
		if st.ID == models.ProviderClaude {
			assert.True(t, st.Configured)
			assert.True(t, st.Active)
		} else {
			assert.False(t, st.Active)
		}
	}
}

func TestVendorAuthFailurePropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"type":"authentication_error"}}`))
	}))
	defer srv.Close()

	mgr := New(store.NewMemoryStore(), nil, WithConnectorFunc(func(provider models.ProviderID, apiKey string) (connectors.Connector, error) {
		return connectors.New(provider, apiKey, connectors.WithBaseURL(srv.URL))
	}))
	ctx := context.Background()

	require.NoError(t, mgr.SetCredential(ctx, models.ProviderClaude, "expired-key"))
	require.NoError(t, mgr.Activate(models.ProviderClaude))

	_, err := mgr.FixBugs(ctx, connectors.BugFixRequest{Code: "x", ErrorMessage: "boom", Language: "python"})
	require.Error(t, err)
	assert.True(t, connectors.IsKind(err, connectors.KindAuthentication))

	// The failure does not deactivate the provider.
	active, ok := mgr.ActiveProvider()
	require.True(t, ok)
	assert.Equal(t, models.ProviderClaude, active)
}

func TestConcurrentCallsAreIndependent(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	mgr := New(store.NewMemoryStore(), nil, WithConnectorFunc(func(provider models.ProviderID, apiKey string) (connectors.Connector, error) {
		return connectors.New(provider, apiKey, connectors.WithBaseURL(srv.URL))
	}))
	ctx := context.Background()

	require.NoError(t, mgr.SetCredential(ctx, models.ProviderChatGPT, "sk-test"))
	require.NoError(t, mgr.Activate(models.ProviderChatGPT))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = mgr.GenerateCode(ctx, connectors.CodeRequest{Prompt: "x", Language: "go"})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}
