// Package logging provides structured logging utilities for mcp-google-workspace.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Usage Patterns
//
// Create a logger scoped to one command:
//
//	logger := logging.WithCommand(slog.Default(), "add_rows")
//	logger.Info("command finished",
//	    logging.State("SUCCEEDED"),
//	    logging.Attempt(1))
//
// Tokens are never logged directly:
//
//	logger.Debug("refreshed token",
//	    slog.String("access_token", logging.SanitizeToken(tok.AccessToken)))
package logging
