package batch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/teemow/mcp-google-workspace/internal/dispatch"
	"github.com/teemow/mcp-google-workspace/internal/server"
	"github.com/teemow/mcp-google-workspace/internal/tools/common"
)

const (
	service = "batch"

	// CommandName is the name of the batch command itself.
	CommandName = "run_batch"

	// DefaultParallelism is how many entries run at once by default.
	DefaultParallelism = 4
	// MaxParallelism caps the parallelism argument.
	MaxParallelism = 16

	commandsExpected = "array of {\"command\": name, \"args\": {...}} objects"
)

// Entry is one command of a batch.
type Entry struct {
	Command string         `json:"command"`
	Args    map[string]any `json:"args,omitempty"`
}

// Result aggregates the responses of a batch.
type Result struct {
	Total      int                  `json:"total"`
	Successful int                  `json:"successful"`
	Failed     int                  `json:"failed"`
	Results    []*dispatch.Response `json:"results"`
}

// RegisterBatchCommands adds run_batch to the registry of sc.
func RegisterBatchCommands(sc *server.ServerContext) error {
	return sc.Registry().Register(Descriptor(sc))
}

// Descriptor returns the run_batch descriptor bound to sc.
func Descriptor(sc *server.ServerContext) dispatch.Descriptor {
	return dispatch.Descriptor{
		Name:    CommandName,
		Service: service,
		Description: "Run several commands in one call. Entries run in parallel up to the given limit, " +
			"each with its own retries; the result lists every response in input order",
		Params: []dispatch.Param{
			dispatch.JSON("commands", dispatch.Required(), dispatch.Description(
				`Commands to run, e.g. [{"command": "add_sheet", "args": {"sheet_name": "Q1"}}]`)),
			dispatch.Int("parallelism", dispatch.Default(DefaultParallelism),
				dispatch.Description(fmt.Sprintf("Entries run at once, 1 to %d", MaxParallelism))),
		},
		// Entries carry their own per-attempt timeouts.
		Timeout: -1,
		Handler: handleRunBatch(sc),
	}
}

// ParseEntries converts the decoded commands argument into entries.
func ParseEntries(raw any) ([]Entry, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, common.Invalid("commands", commandsExpected, fmt.Sprintf("got %T", raw))
	}
	if len(list) == 0 {
		return nil, common.Invalid("commands", commandsExpected, "no commands")
	}

	entries := make([]Entry, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, common.Invalid("commands", commandsExpected, fmt.Sprintf("entry %d is %T, not an object", i, item))
		}
		name, _ := obj["command"].(string)
		if name == "" {
			return nil, common.Invalid("commands", commandsExpected, fmt.Sprintf("entry %d has no command", i))
		}
		if name == CommandName {
			return nil, common.Invalid("commands", commandsExpected, fmt.Sprintf("entry %d: %s cannot be nested", i, CommandName))
		}

		entry := Entry{Command: name}
		switch args := obj["args"].(type) {
		case nil:
		case map[string]any:
			entry.Args = args
		default:
			return nil, common.Invalid("commands", commandsExpected, fmt.Sprintf("entry %d: args is %T, not an object", i, args))
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Run dispatches entries with at most parallelism in flight.
func Run(ctx context.Context, d *dispatch.Dispatcher, entries []Entry, parallelism int) *Result {
	responses := make([]*dispatch.Response, len(entries))

	var g errgroup.Group
	g.SetLimit(parallelism)
	for i, e := range entries {
		g.Go(func() error {
			responses[i] = d.Dispatch(ctx, dispatch.Invocation{Command: e.Command, Args: e.Args})
			return nil
		})
	}
	_ = g.Wait()

	result := &Result{Total: len(responses), Results: responses}
	for _, r := range responses {
		if r.Success {
			result.Successful++
		} else {
			result.Failed++
		}
	}
	return result
}

func handleRunBatch(sc *server.ServerContext) dispatch.HandlerFunc {
	return func(ctx context.Context, args dispatch.Args) (any, error) {
		entries, err := ParseEntries(args.JSON("commands"))
		if err != nil {
			return nil, err
		}
		parallelism := args.Int("parallelism")
		if parallelism < 1 || parallelism > MaxParallelism {
			return nil, common.Invalid("parallelism", fmt.Sprintf("an integer from 1 to %d", MaxParallelism),
				fmt.Sprintf("got %d", parallelism))
		}
		return Run(ctx, sc.Dispatcher(), entries, int(parallelism)), nil
	}
}
