package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixge/httpsnoop"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/teemow/mcp-google-workspace/internal/instrumentation"
)

// DefaultMCPEndpoint is the path the streamable HTTP transport is mounted on.
const DefaultMCPEndpoint = "/mcp"

// HTTPServerConfig configures the streamable HTTP transport.
type HTTPServerConfig struct {
	Addr             string
	EndpointPath     string
	DisableStreaming bool
	Health           *HealthChecker
	Metrics          *instrumentation.Metrics
}

// HTTPServer exposes an MCP server over streamable HTTP next to the health
// endpoints. Requests are traced with otelhttp and counted in the HTTP
// request metrics.
type HTTPServer struct {
	httpServer *http.Server
	handler    http.Handler
	addr       string
}

// NewHTTPServer mounts mcpSrv on config.EndpointPath.
func NewHTTPServer(mcpSrv *mcpserver.MCPServer, config HTTPServerConfig) *HTTPServer {
	if config.EndpointPath == "" {
		config.EndpointPath = DefaultMCPEndpoint
	}

	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath(config.EndpointPath),
		mcpserver.WithDisableStreaming(config.DisableStreaming),
	)

	mux := http.NewServeMux()
	mux.Handle(config.EndpointPath, otelhttp.NewHandler(streamable, "mcp"))
	if config.Health != nil {
		config.Health.RegisterHealthEndpoints(mux)
	}

	handler := requestMetrics(config.Metrics, mux)
	return &HTTPServer{
		addr:    config.Addr,
		handler: handler,
		httpServer: &http.Server{
			Addr:              config.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Handler returns the root handler, for tests and embedding.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// Addr returns the configured listen address.
func (s *HTTPServer) Addr() string {
	return s.addr
}

// Start serves until Shutdown is called, in which case it returns nil.
func (s *HTTPServer) Start() error {
	slog.Info("starting streamable HTTP server", slog.String("addr", s.addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func requestMetrics(m *instrumentation.Metrics, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stats := httpsnoop.CaptureMetrics(next, w, r)
		m.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, stats.Code, stats.Duration)
	})
}
