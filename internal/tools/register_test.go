package tools

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/mcp-google-workspace/internal/config"
	"github.com/teemow/mcp-google-workspace/internal/dispatch"
	"github.com/teemow/mcp-google-workspace/internal/server"
)

func TestRegisterAll(t *testing.T) {
	sc, err := server.NewServerContext(context.Background(), config.Config{
		TokenPath: filepath.Join(t.TempDir(), "token.json"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	require.NoError(t, RegisterAll(sc))

	perService := make(map[string]int)
	for _, d := range sc.Registry().Descriptors() {
		perService[d.Service]++
	}
	assert.Equal(t, map[string]int{
		"auth":   2,
		"drive":  6,
		"sheets": 12,
		"docs":   8,
		"slides": 15,
		"batch":  1,
	}, perService)

	// The registry is frozen once everything is registered.
	err = sc.Registry().Register(dispatch.Descriptor{
		Name:    "late",
		Service: "test",
		Handler: dispatch.HandlerFunc(func(context.Context, dispatch.Args) (any, error) { return nil, nil }),
	})
	assert.ErrorIs(t, err, dispatch.ErrRegistryFrozen)
}

func TestRegisterAll_Twice(t *testing.T) {
	sc, err := server.NewServerContext(context.Background(), config.Config{
		TokenPath: filepath.Join(t.TempDir(), "token.json"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	require.NoError(t, RegisterAll(sc))
	assert.Error(t, RegisterAll(sc))
}
