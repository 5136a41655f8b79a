package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/mcp-google-workspace/internal/dispatch"
)

func registerNoop(t *testing.T, sc *ServerContext) {
	t.Helper()
	require.NoError(t, sc.Registry().Register(dispatch.Descriptor{
		Name:     "noop",
		Service:  "drive",
		ReadOnly: true,
		Handler: dispatch.HandlerFunc(func(context.Context, dispatch.Args) (any, error) {
			return "ok", nil
		}),
	}))
}

func serve(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthChecker_Liveness(t *testing.T) {
	h := NewHealthChecker(nil)

	rec := serve(h.LivenessHandler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, healthStatusOK, resp.Status)
}

func TestHealthChecker_Readiness(t *testing.T) {
	sc := newTestServerContext(t)
	h := NewHealthChecker(sc)

	rec := serve(h.ReadinessHandler(), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "none registered", resp.Checks["commands"])

	registerNoop(t, sc)
	rec = serve(h.ReadinessHandler(), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)

	h.SetReady(false)
	assert.False(t, h.IsReady())
	rec = serve(h.ReadinessHandler(), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthChecker_ReadinessDuringShutdown(t *testing.T) {
	sc := newTestServerContext(t)
	registerNoop(t, sc)
	h := NewHealthChecker(sc)

	require.NoError(t, sc.Shutdown())

	rec := serve(h.ReadinessHandler(), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, healthStatusShuttingDown, resp.Checks["shutdown"])
}

func TestHealthChecker_Detailed(t *testing.T) {
	sc := newTestServerContext(t)
	registerNoop(t, sc)
	sc.SetCurrentSpreadsheet("ss-42")
	h := NewHealthChecker(sc)

	rec := serve(h.DetailedHealthHandler(), "/healthz/detailed")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp DetailedHealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, healthStatusOK, resp.Status)
	assert.Equal(t, 1, resp.Commands)
	assert.Equal(t, "ss-42", resp.CurrentSpreadsheet)
	assert.NotEmpty(t, resp.Uptime)
}
