package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/mcp-google-workspace/internal/config"
	"github.com/teemow/mcp-google-workspace/internal/dispatch"
	"github.com/teemow/mcp-google-workspace/internal/logging"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <command>",
		Short: "Run a single command and print its result as JSON",
		Long: `Run one command through the dispatcher. Every command has its own
subcommand whose flags match the command parameters one to one.

On success the result is printed as JSON to stdout and the exit code is 0.
On failure the error descriptor is printed as JSON to stderr and the exit
code is 1.

JSON parameters (such as values) take a JSON document:

  mcp-google-workspace run update_cells --range 'Data!A1:B2' \
    --values '[["Name","Total"],["Q1",42]]'`,
		Args:               cobra.ArbitraryArgs,
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			// Not a registered subcommand; let the dispatcher report it.
			return runCommand(args[0], nil, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	descriptors, err := catalog()
	if err != nil {
		slog.Error("failed to build command catalog", logging.Err(err))
		return cmd
	}
	for _, desc := range descriptors {
		cmd.AddCommand(newCommandCmd(desc))
	}
	return cmd
}

// newCommandCmd builds the subcommand for desc. Flag values are handed to the
// dispatcher as strings, which coerces them to the declared parameter types.
func newCommandCmd(desc *dispatch.Descriptor) *cobra.Command {
	name := desc.Name
	params := desc.Params

	cmd := &cobra.Command{
		Use:   name,
		Short: desc.Description,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			args := make(map[string]any, len(params))
			for _, p := range params {
				if f := cmd.Flags().Lookup(p.Name); f != nil && f.Changed {
					args[p.Name] = f.Value.String()
				}
			}
			return runCommand(name, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	for _, p := range params {
		cmd.Flags().String(p.Name, "", flagUsage(p))
		if p.Type == dispatch.TypeBool {
			cmd.Flags().Lookup(p.Name).NoOptDefVal = "true"
		}
	}
	return cmd
}

func flagUsage(p dispatch.Param) string {
	var sb strings.Builder
	if p.Description != "" {
		sb.WriteString(p.Description)
	} else {
		sb.WriteString(p.Expected())
	}
	if len(p.Enum) > 0 {
		sb.WriteString(fmt.Sprintf(" (one of %s)", strings.Join(p.Enum, ", ")))
	}
	if p.Required {
		sb.WriteString(" [required]")
	} else if p.Default != nil {
		sb.WriteString(fmt.Sprintf(" (default %v)", p.Default))
	}
	return sb.String()
}

// runCommand dispatches one command with a context that is canceled on
// SIGINT or SIGTERM.
func runCommand(name string, args map[string]any, stdout, stderr io.Writer) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sc, err := newServerContext(ctx)
	if err != nil {
		return writeResponse(&dispatch.Response{
			Command: name,
			State:   dispatch.StateFailed,
			Error:   setupFailure(err),
		}, stdout, stderr)
	}
	defer func() { _ = sc.Shutdown() }()

	resp := sc.Dispatcher().Dispatch(ctx, dispatch.Invocation{Command: name, Args: args})
	return writeResponse(resp, stdout, stderr)
}

// setupFailure describes an error raised before a command could be
// dispatched. Unset variables are reported like a missing client secret.
func setupFailure(err error) *dispatch.ErrorDescriptor {
	var missing *config.MissingVariableError
	if errors.As(err, &missing) {
		return &dispatch.ErrorDescriptor{Kind: dispatch.KindAuthentication, Message: err.Error()}
	}
	return dispatch.Describe(err)
}

// writeResponse prints the payload of a successful response to stdout, or
// the error descriptor of a failed one to stderr and returns errCommandFailed.
func writeResponse(resp *dispatch.Response, stdout, stderr io.Writer) error {
	if resp.Success {
		return writeJSON(stdout, resp.Payload)
	}
	if err := writeJSON(stderr, resp.Error); err != nil {
		return err
	}
	return errCommandFailed
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
