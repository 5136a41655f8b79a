package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/mcp-google-workspace/internal/instrumentation"
	"github.com/teemow/mcp-google-workspace/internal/logging"
	"github.com/teemow/mcp-google-workspace/internal/server"
	"github.com/teemow/mcp-google-workspace/internal/tools/common"
)

const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

// serveOptions holds the serve flags.
type serveOptions struct {
	transport        string
	httpAddr         string
	metricsAddr      string
	readOnly         bool
	disableStreaming bool
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server. Every registered command
is exposed as an MCP tool with the same name and parameters.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport on /mcp, with /healthz and /readyz

Safety Mode:
  --read-only exposes only the commands that do not modify anything.

Metrics:
  With the prometheus exporter (METRICS_EXPORTER=prometheus, the default) and
  the streamable-http transport, metrics are served on --metrics-addr/metrics.
  Set --metrics-addr "" to disable the metrics server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("metrics-addr") {
				if addr, ok := os.LookupEnv("METRICS_ADDR"); ok {
					opts.metricsAddr = addr
				}
			}
			return runServe(opts)
		},
	}

	cmd.Flags().StringVar(&opts.transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")
	cmd.Flags().BoolVar(&opts.readOnly, "read-only", false, "Expose only read-only commands as MCP tools")
	cmd.Flags().BoolVar(&opts.disableStreaming, "disable-streaming", false, "Disable streaming for HTTP transport (for compatibility with certain clients)")

	return cmd
}

func runServe(opts serveOptions) error {
	if opts.transport != transportStdio && opts.transport != transportStreamableHTTP {
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", opts.transport)
	}

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			slog.Warn("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	serverContext, err := newServerContext(shutdownCtx,
		server.WithInstrumentation(provider),
		server.WithLogger(slog.Default()),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			slog.Warn("error during server context shutdown", logging.Err(err))
		}
	}()

	mcpSrv := mcpserver.NewMCPServer("mcp-google-workspace", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)
	count := common.RegisterMCPTools(mcpSrv, serverContext, opts.readOnly)
	slog.Info("registered MCP tools",
		slog.Int("tools", count),
		slog.Bool("read_only", opts.readOnly),
		slog.String("transport", opts.transport))

	return serve(shutdownCtx, mcpSrv, serverContext, provider, opts)
}

// serve runs the MCP transport and, when available, the metrics server until
// ctx is canceled or the transport stops.
func serve(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, provider *instrumentation.Provider, opts serveOptions) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	health := server.NewHealthChecker(sc)
	g, gctx := errgroup.WithContext(ctx)

	var shutdowns []func(context.Context) error

	if opts.transport == transportStreamableHTTP && opts.metricsAddr != "" && provider.PrometheusHandler() != nil {
		metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    opts.metricsAddr,
			InstrumentationProvider: provider,
			Health:                  health,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		g.Go(metricsServer.Start)
		shutdowns = append(shutdowns, metricsServer.Shutdown)
	}

	switch opts.transport {
	case transportStdio:
		g.Go(func() error {
			defer stop()
			err := mcpserver.NewStdioServer(mcpSrv).Listen(gctx, os.Stdin, os.Stdout)
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("server stopped with error: %w", err)
			}
			return nil
		})
	case transportStreamableHTTP:
		httpServer := server.NewHTTPServer(mcpSrv, server.HTTPServerConfig{
			Addr:             opts.httpAddr,
			DisableStreaming: opts.disableStreaming,
			Health:           health,
			Metrics:          sc.Metrics(),
		})
		g.Go(httpServer.Start)
		shutdowns = append(shutdowns, httpServer.Shutdown)
	}

	g.Go(func() error {
		<-gctx.Done()
		health.SetReady(false)

		ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		var errs []error
		for _, shutdown := range shutdowns {
			if err := shutdown(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
