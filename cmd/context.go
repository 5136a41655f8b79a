package cmd

import (
	"context"
	"fmt"

	"github.com/teemow/mcp-google-workspace/internal/config"
	"github.com/teemow/mcp-google-workspace/internal/dispatch"
	"github.com/teemow/mcp-google-workspace/internal/server"
	"github.com/teemow/mcp-google-workspace/internal/tools"
)

// newServerContext loads the configuration from the environment and returns a
// server context with every command registered.
func newServerContext(ctx context.Context, opts ...server.Option) (*server.ServerContext, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	sc, err := server.NewServerContext(ctx, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create server context: %w", err)
	}
	if err := tools.RegisterAll(sc); err != nil {
		_ = sc.Shutdown()
		return nil, err
	}
	return sc, nil
}

// catalog returns the registered command descriptors without reading any
// configuration. Handlers in the result are bound to a closed context and
// must not be called; use newServerContext to run commands.
func catalog() ([]*dispatch.Descriptor, error) {
	sc, err := server.NewServerContext(context.Background(), config.Config{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = sc.Shutdown() }()

	if err := tools.RegisterAll(sc); err != nil {
		return nil, err
	}
	return sc.Registry().Descriptors(), nil
}
