package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/mcp-google-workspace/internal/dispatch"
	"github.com/teemow/mcp-google-workspace/internal/tools/google_tools"
)

func newAuthCmd() *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google Workspace",
		Long: `Authorize access to Google Workspace with the OAuth client in
CLIENT_SECRET_PATH.

Without --code, prints the consent URL, or reports that the cached token is
still valid. Open the URL, grant access, then run again with the code Google
shows:

  mcp-google-workspace auth --code 4/0Ab...

The token is stored at TOKEN_PATH and refreshed automatically afterwards.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runAuth(ctx, code, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Authorization code from the consent page")

	return cmd
}

func runAuth(ctx context.Context, code string, stdout, stderr io.Writer) error {
	sc, err := newServerContext(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = sc.Shutdown() }()

	if code == "" {
		resp := sc.Dispatcher().Dispatch(ctx, dispatch.Invocation{Command: "get_auth_url"})
		if !resp.Success {
			return writeResponse(resp, stdout, stderr)
		}
		printAuthStatus(stdout, resp.Payload.(*google_tools.AuthStatus))
		return nil
	}

	resp := sc.Dispatcher().Dispatch(ctx, dispatch.Invocation{
		Command: "save_auth_code",
		Args:    map[string]any{"code": code},
	})
	if !resp.Success {
		return writeResponse(resp, stdout, stderr)
	}
	result := resp.Payload.(*google_tools.AuthResult)
	fmt.Fprintf(stdout, "Token saved to %s\n", result.TokenPath)
	if len(result.Scopes) > 0 {
		fmt.Fprintf(stdout, "Granted scopes: %s\n", strings.Join(result.Scopes, ", "))
	}
	return nil
}

func printAuthStatus(w io.Writer, status *google_tools.AuthStatus) {
	if status.TokenValid {
		fmt.Fprintf(w, "Token at %s is valid", status.TokenPath)
		if status.Expiry != nil {
			fmt.Fprintf(w, " (access token expires %s)", status.Expiry.Local().Format("2006-01-02 15:04:05"))
		}
		fmt.Fprintln(w)
		return
	}

	if status.TokenError != "" {
		fmt.Fprintf(w, "No usable token: %s\n\n", status.TokenError)
	}
	fmt.Fprintln(w, "Open this URL in your browser and grant access:")
	fmt.Fprintf(w, "\n  %s\n\n", status.AuthURL)
	fmt.Fprintln(w, "Then run: mcp-google-workspace auth --code <code>")
}
