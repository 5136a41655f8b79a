// Package common connects the command registry to MCP and holds argument
// helpers shared by the tool packages.
//
// Every registered command becomes one MCP tool whose input schema is derived
// from the command's parameters. Calls go through the dispatcher, so MCP
// clients get the same validation, retries and error descriptors as the CLI.
package common
