package batch

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/mcp-google-workspace/internal/config"
	"github.com/teemow/mcp-google-workspace/internal/dispatch"
	"github.com/teemow/mcp-google-workspace/internal/server"
)

func newTestContext(t *testing.T, extra ...dispatch.Descriptor) *server.ServerContext {
	t.Helper()
	dir := t.TempDir()
	sc, err := server.NewServerContext(context.Background(), config.Config{
		ClientSecretPath: filepath.Join(dir, "secret.json"),
		TokenPath:        filepath.Join(dir, "token.json"),
		FolderID:         "folder",
		RetryMaxAttempts: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	require.NoError(t, sc.Registry().RegisterAll(extra...))
	require.NoError(t, RegisterBatchCommands(sc))
	return sc
}

func echo() dispatch.Descriptor {
	return dispatch.Descriptor{
		Name:    "echo",
		Service: "test",
		Params:  []dispatch.Param{dispatch.String("text", dispatch.Required())},
		Handler: dispatch.HandlerFunc(func(_ context.Context, args dispatch.Args) (any, error) {
			return args.String("text"), nil
		}),
	}
}

func run(sc *server.ServerContext, args map[string]any) *dispatch.Response {
	return sc.Dispatcher().Dispatch(context.Background(), dispatch.Invocation{Command: CommandName, Args: args})
}

func TestRunBatch_OrderAndCounts(t *testing.T) {
	sc := newTestContext(t, echo())

	resp := run(sc, map[string]any{
		"commands": []any{
			map[string]any{"command": "echo", "args": map[string]any{"text": "one"}},
			map[string]any{"command": "nope"},
			map[string]any{"command": "echo"},
			map[string]any{"command": "echo", "args": map[string]any{"text": "four"}},
		},
	})
	require.True(t, resp.Success, "%+v", resp.Error)

	result := resp.Payload.(*Result)
	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 2, result.Failed)

	require.Len(t, result.Results, 4)
	assert.Equal(t, "one", result.Results[0].Payload)
	assert.Equal(t, dispatch.KindUnknownCommand, result.Results[1].Error.Kind)
	assert.Equal(t, dispatch.KindInvalidArgument, result.Results[2].Error.Kind)
	assert.Equal(t, "text", result.Results[2].Error.Param)
	assert.Equal(t, "four", result.Results[3].Payload)
}

func TestRunBatch_JSONString(t *testing.T) {
	sc := newTestContext(t, echo())

	resp := run(sc, map[string]any{
		"commands":    `[{"command": "echo", "args": {"text": "hi"}}]`,
		"parallelism": "1",
	})
	require.True(t, resp.Success, "%+v", resp.Error)
	assert.Equal(t, "hi", resp.Payload.(*Result).Results[0].Payload)
}

func TestRunBatch_RespectsParallelism(t *testing.T) {
	var inFlight, peak atomic.Int32
	slow := dispatch.Descriptor{
		Name:    "slow",
		Service: "test",
		Handler: dispatch.HandlerFunc(func(context.Context, dispatch.Args) (any, error) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			return nil, nil
		}),
	}
	sc := newTestContext(t, slow)

	commands := make([]any, 6)
	for i := range commands {
		commands[i] = map[string]any{"command": "slow"}
	}
	resp := run(sc, map[string]any{"commands": commands, "parallelism": 2})
	require.True(t, resp.Success, "%+v", resp.Error)
	assert.Equal(t, 6, resp.Payload.(*Result).Successful)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRunBatch_InvalidArguments(t *testing.T) {
	sc := newTestContext(t, echo())

	tests := []struct {
		name  string
		args  map[string]any
		param string
	}{
		{
			name:  "nested batch",
			args:  map[string]any{"commands": []any{map[string]any{"command": CommandName}}},
			param: "commands",
		},
		{
			name:  "empty list",
			args:  map[string]any{"commands": []any{}},
			param: "commands",
		},
		{
			name:  "entry without command",
			args:  map[string]any{"commands": []any{map[string]any{"args": map[string]any{}}}},
			param: "commands",
		},
		{
			name:  "args not an object",
			args:  map[string]any{"commands": []any{map[string]any{"command": "echo", "args": "text=hi"}}},
			param: "commands",
		},
		{
			name:  "parallelism too high",
			args:  map[string]any{"commands": []any{map[string]any{"command": "echo"}}, "parallelism": 17},
			param: "parallelism",
		},
		{
			name:  "parallelism zero",
			args:  map[string]any{"commands": []any{map[string]any{"command": "echo"}}, "parallelism": 0},
			param: "parallelism",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := run(sc, tt.args)
			require.False(t, resp.Success)
			assert.Equal(t, dispatch.KindInvalidArgument, resp.Error.Kind)
			assert.Equal(t, tt.param, resp.Error.Param)
		})
	}
}
