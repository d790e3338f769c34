package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versecraft/versecraft/internal/cache"
	"github.com/versecraft/versecraft/internal/generation"
	"github.com/versecraft/versecraft/internal/notify"
	"github.com/versecraft/versecraft/internal/prompts"
	"github.com/versecraft/versecraft/internal/provider"
	"github.com/versecraft/versecraft/internal/settings"
)

// mockAdapter is a test double for provider.Client.
type mockAdapter struct {
	name     provider.Provider
	response string
	err      error
	calls    int
}

func (m *mockAdapter) Name() provider.Provider { return m.name }

func (m *mockAdapter) Invoke(ctx context.Context, cfg provider.Config, prompt string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

type fixture struct {
	srv    *Server
	openai *mockAdapter
	repo   *prompts.MemoryRepository
}

func newTestServer(t *testing.T, values map[string]string) *fixture {
	t.Helper()

	c := cache.New(time.Minute)
	t.Cleanup(c.Close)
	bus := notify.NewBus()

	settingsSvc := settings.NewService(settings.NewMemoryStore(values), c, bus, time.Minute)
	repo := prompts.NewMemoryRepository()
	promptsSvc := prompts.NewService(repo, c, bus, time.Minute)

	f := &fixture{
		openai: &mockAdapter{name: provider.ProviderOpenAI},
		repo:   repo,
	}

	registry := provider.NewRegistry()
	registry.Register(f.openai)
	registry.Register(&mockAdapter{name: provider.ProviderGemini, err: provider.ErrNoAPIKey})
	registry.Register(&mockAdapter{name: provider.ProviderGroq, err: provider.ErrNoAPIKey})

	generator := generation.NewService(registry, generation.NewResolver(settingsSvc), promptsSvc, generation.NewComposer(nil))

	f.srv = NewServer(generator, promptsSvc, settingsSvc)
	return f
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	f := newTestServer(t, nil)

	rec := doJSON(t, f.srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestGenerateRequiresCategory(t *testing.T) {
	f := newTestServer(t, nil)

	rec := doJSON(t, f.srv, http.MethodPost, "/api/v1/generate", GenerateRequest{ContentType: "quote"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateUnconfiguredServesStatic(t *testing.T) {
	f := newTestServer(t, nil)

	rec := doJSON(t, f.srv, http.MethodPost, "/api/v1/generate", GenerateRequest{
		Category: "wisdom",
		Quantity: 2,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 2)
	assert.Zero(t, f.openai.calls, "unconfigured provider must not be invoked")
}

func TestGenerateWithConfiguredProvider(t *testing.T) {
	f := newTestServer(t, map[string]string{"openai_api_key": "sk-test-key-123"})
	f.openai.response = `{"items":[{"content":"The obstacle is the way forward.","author":"Marcus"}]}`

	rec := doJSON(t, f.srv, http.MethodPost, "/api/v1/generate", GenerateRequest{
		Category:    "wisdom",
		Quantity:    1,
		WritingMode: "knownWriters",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "The obstacle is the way forward.", resp.Items[0].Content)
	assert.Equal(t, 1, f.openai.calls)
}

func TestFindSourceRequiresContent(t *testing.T) {
	f := newTestServer(t, nil)

	rec := doJSON(t, f.srv, http.MethodPost, "/api/v1/source", ContentRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFindSourceUnknownOnFailure(t *testing.T) {
	f := newTestServer(t, map[string]string{"openai_api_key": "sk-test-key-123"})
	f.openai.err = &provider.TransportError{Provider: provider.ProviderOpenAI, Status: 500}

	rec := doJSON(t, f.srv, http.MethodPost, "/api/v1/source", ContentRequest{Content: "to be or not to be"})
	require.Equal(t, http.StatusOK, rec.Code)

	var res generation.SourceResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Unknown", res.Author)
}

func TestPromptLifecycle(t *testing.T) {
	f := newTestServer(t, nil)

	// No prompt saved yet.
	rec := doJSON(t, f.srv, http.MethodGet, "/api/v1/prompts/generate/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// First save creates version 1.
	rec = doJSON(t, f.srv, http.MethodPut, "/api/v1/prompts/generate/", SavePromptRequest{
		Content: "Write {{quantity}} items about {{category}}.",
		Editor:  "ana",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var saved PromptResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Equal(t, 1, saved.Version)

	// Stale expected version is rejected.
	stale := 5
	rec = doJSON(t, f.srv, http.MethodPut, "/api/v1/prompts/generate/", SavePromptRequest{
		Content:         "second draft",
		Editor:          "bea",
		ExpectedVersion: &stale,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Matching expected version advances to 2.
	current := 1
	rec = doJSON(t, f.srv, http.MethodPut, "/api/v1/prompts/generate/", SavePromptRequest{
		Content:         "second draft",
		Editor:          "bea",
		ExpectedVersion: &current,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Equal(t, 2, saved.Version)

	// Rollback to version 1 creates version 3 with the old content.
	rec = doJSON(t, f.srv, http.MethodPost, "/api/v1/prompts/generate/rollback", RollbackRequest{
		Version: 1,
		Editor:  "ana",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Equal(t, 3, saved.Version)
	assert.Equal(t, "Write {{quantity}} items about {{category}}.", saved.Content)

	// Rollback to a version that never existed.
	rec = doJSON(t, f.srv, http.MethodPost, "/api/v1/prompts/generate/rollback", RollbackRequest{
		Version: 99,
		Editor:  "ana",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, f.srv, http.MethodGet, "/api/v1/prompts/generate/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var hist struct {
		Snapshots []prompts.Snapshot `json:"snapshots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	assert.Len(t, hist.Snapshots, 3)
}

func TestPromptInvalidUseCase(t *testing.T) {
	f := newTestServer(t, nil)

	rec := doJSON(t, f.srv, http.MethodGet, "/api/v1/prompts/bogus/", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettingsRoundTrip(t *testing.T) {
	f := newTestServer(t, nil)

	rec := doJSON(t, f.srv, http.MethodPut, "/api/v1/settings", map[string]string{
		"ai_provider":    "gemini",
		"openai_api_key": "sk-test-key-123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, f.srv, http.MethodGet, "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Settings map[string]string `json:"settings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "gemini", resp.Settings["ai_provider"])
	assert.Equal(t, "****-123", resp.Settings["openai_api_key"], "api keys are masked")
}

func TestUpdateSettingsRejectsEmpty(t *testing.T) {
	f := newTestServer(t, nil)

	rec := doJSON(t, f.srv, http.MethodPut, "/api/v1/settings", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
