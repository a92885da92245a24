package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-studio/internal/server/ratelimit"
	"github.com/jonathan/cv-studio/internal/store"
	"github.com/jonathan/cv-studio/internal/types"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer creates a server over the illustrative CV with rate limiting
// disabled.
func newTestServer(t *testing.T, exporter Exporter) (*Server, *store.Store) {
	t.Helper()
	st := store.NewDefault()
	s := New(st, exporter, Config{
		Logger:    discardLogger(),
		RateLimit: &ratelimit.Config{Enabled: false},
	})
	t.Cleanup(func() { s.close() })
	return s, st
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t, nil)

	w := do(t, s.Handler(), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[map[string]any](t, w)
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, false, resp["export"])
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t, nil)

	w := do(t, s.Handler(), http.MethodOptions, "/api/cv/experiences", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}

func TestRateLimit_ExportBudget(t *testing.T) {
	st := store.NewDefault()
	s := New(st, &fakeExporter{}, Config{
		Logger: discardLogger(),
		RateLimit: &ratelimit.Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			EndpointConfigs: []ratelimit.EndpointConfig{{Path: "/api/export", Method: "POST", Limit: 1, Window: time.Minute, Burst: 1}},
		},
	})
	defer s.close()

	first := do(t, s.Handler(), http.MethodPost, "/api/export", nil)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := do(t, s.Handler(), http.MethodPost, "/api/export", nil)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	resp := decodeBody[map[string]any](t, second)
	assert.Equal(t, "rate_limit_exceeded", resp["error"])

	// Other endpoints keep their own budget.
	other := do(t, s.Handler(), http.MethodGet, "/api/cv", nil)
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestStart_StopsWithContext(t *testing.T) {
	st := store.NewDefault()
	s := New(st, nil, Config{
		Port:      0,
		Logger:    discardLogger(),
		RateLimit: &ratelimit.Config{Enabled: false},
	})
	s.httpServer.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	select {
	case <-s.done:
	default:
		t.Fatal("event streams were not released")
	}
}

func TestGetCV_ReturnsState(t *testing.T) {
	s, _ := newTestServer(t, nil)

	w := do(t, s.Handler(), http.MethodGet, "/api/cv", nil)

	require.Equal(t, http.StatusOK, w.Code)
	state := decodeBody[store.State](t, w)
	require.NotNil(t, state.CV.PersonalInfo)
	assert.Equal(t, "Jean Dupont", state.CV.PersonalInfo.FullName)
	assert.Equal(t, types.DefaultTemplate, state.Templates.SelectedTemplate)
}

func TestResetAndClear(t *testing.T) {
	s, st := newTestServer(t, nil)
	st.SelectTemplate("model3")

	w := do(t, s.Handler(), http.MethodPost, "/api/cv/clear", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, st.Snapshot().PersonalInfo)
	assert.Empty(t, st.Snapshot().Experiences)
	assert.Equal(t, "model3", st.SelectedTemplate())

	w = do(t, s.Handler(), http.MethodPost, "/api/cv/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.DefaultCVData(), st.Snapshot())
	assert.Equal(t, "model3", st.SelectedTemplate())
}

func TestNotFoundRoutes(t *testing.T) {
	s, _ := newTestServer(t, nil)

	w := do(t, s.Handler(), http.MethodGet, "/api/cv/hobbies", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s.Handler(), http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDecodeJSON_RejectsUnknownFields(t *testing.T) {
	s, _ := newTestServer(t, nil)

	w := do(t, s.Handler(), http.MethodPut, "/api/template", `{"template":"model2","colour":"red"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
