package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPServer_HealthAndMetrics(t *testing.T) {
	provider := createTestProvider(t)
	sc := newTestServerContext(t, WithInstrumentation(provider))
	registerNoop(t, sc)

	mcpSrv := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(true))
	srv := NewHTTPServer(mcpSrv, HTTPServerConfig{
		Addr:    ":0",
		Health:  NewHealthChecker(sc),
		Metrics: sc.Metrics(),
	})

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	rec := httptest.NewRecorder()
	provider.PrometheusHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `path="/readyz"`)
}

func TestHTTPServer_MCPEndpoint(t *testing.T) {
	mcpSrv := mcpserver.NewMCPServer("test", "0.0.0", mcpserver.WithToolCapabilities(true))
	srv := NewHTTPServer(mcpSrv, HTTPServerConfig{Addr: ":0"})

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	payload := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`
	req, err := http.NewRequest(http.MethodPost, ts.URL+DefaultMCPEndpoint, strings.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"serverInfo"`)
}

func TestHTTPServer_DefaultEndpoint(t *testing.T) {
	mcpSrv := mcpserver.NewMCPServer("test", "0.0.0")
	srv := NewHTTPServer(mcpSrv, HTTPServerConfig{Addr: "127.0.0.1:8080"})
	assert.Equal(t, "127.0.0.1:8080", srv.Addr())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
