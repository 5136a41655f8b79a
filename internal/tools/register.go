// Package tools wires every command group into a server context.
package tools

import (
	"fmt"

	"github.com/teemow/mcp-google-workspace/internal/server"
	"github.com/teemow/mcp-google-workspace/internal/tools/batch"
	"github.com/teemow/mcp-google-workspace/internal/tools/docs_tools"
	"github.com/teemow/mcp-google-workspace/internal/tools/drive_tools"
	"github.com/teemow/mcp-google-workspace/internal/tools/google_tools"
	"github.com/teemow/mcp-google-workspace/internal/tools/sheets_tools"
	"github.com/teemow/mcp-google-workspace/internal/tools/slides_tools"
)

type registration struct {
	name     string
	register func(*server.ServerContext) error
}

var registrations = []registration{
	{name: "Auth", register: google_tools.RegisterGoogleCommands},
	{name: "Drive", register: drive_tools.RegisterDriveCommands},
	{name: "Sheets", register: sheets_tools.RegisterSheetsCommands},
	{name: "Docs", register: docs_tools.RegisterDocsCommands},
	{name: "Slides", register: slides_tools.RegisterSlidesCommands},
	{name: "Batch", register: batch.RegisterBatchCommands},
}

// RegisterAll registers every command group with the registry of sc and
// freezes it. A duplicate name across groups fails here, before anything is
// served.
func RegisterAll(sc *server.ServerContext) error {
	for _, reg := range registrations {
		if err := reg.register(sc); err != nil {
			return fmt.Errorf("failed to register %s commands: %w", reg.name, err)
		}
	}
	sc.Registry().Freeze()
	return nil
}
