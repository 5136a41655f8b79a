// Package cmd implements the command-line interface for mcp-google-workspace.
//
// This package provides the following commands:
//   - serve: Start the MCP server over stdio or streamable HTTP
//   - run: Run one registered command and print its result as JSON
//   - auth: Obtain and store the Google OAuth token
//   - generate-docs: Generate markdown documentation for all commands
//   - version: Display version information
//
// Without a subcommand the help text is printed.
package cmd
